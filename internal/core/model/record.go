package model

// Entry types that can carry usage data in a session log
const (
	EntryMessage   = "message"
	EntryAssistant = "assistant"
)

// LogRecord is the wire shape of one session-log line. Only the fields
// needed for usage aggregation are mapped; everything else in the record is
// ignored by the decoder.
type LogRecord struct {
	Timestamp string     `json:"timestamp"`
	Type      string     `json:"type"`
	RequestID string     `json:"requestId,omitempty"`
	UUID      string     `json:"uuid,omitempty"`
	Message   LogMessage `json:"message"`
}

// LogMessage is the nested message body of a LogRecord
type LogMessage struct {
	ID    string      `json:"id,omitempty"`
	Model string      `json:"model,omitempty"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage carries the token counters of a single turn. A nil *TokenUsage
// on LogMessage distinguishes "no usage block" from an all-zero one.
type TokenUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}
