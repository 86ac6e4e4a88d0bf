package parser

import (
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/bytedance/sonic"

	"github.com/quotatray/quotatray/internal/core/model"
)

// Parse failure categories. Callers skip ErrIrrelevant silently and log
// ErrMalformed at debug level; neither ever aborts a scan.
var (
	ErrMalformed  = errors.New("malformed log line")
	ErrIrrelevant = errors.New("not a usage record")
)

// ParseLine decodes one session-log line into a UsageEvent tagged with the
// source file it came from. It is a pure function: same line, same result.
//
// A line qualifies as a usage record when it is an assistant or message
// entry carrying both a usage block and a timestamp. Token fields missing
// from the usage block decode as zero, which is valid.
func ParseLine(source string, line []byte) (model.UsageEvent, error) {
	var record model.LogRecord
	if err := sonic.Unmarshal(line, &record); err != nil {
		return model.UsageEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if record.Type != model.EntryAssistant && record.Type != model.EntryMessage {
		return model.UsageEvent{}, ErrIrrelevant
	}

	usage := record.Message.Usage
	if usage == nil || record.Timestamp == "" {
		return model.UsageEvent{}, ErrIrrelevant
	}

	ts, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return model.UsageEvent{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformed, record.Timestamp)
	}

	return model.UsageEvent{
		Timestamp:           ts.UTC(),
		InputTokens:         usage.InputTokens,
		OutputTokens:        usage.OutputTokens,
		CacheCreationTokens: usage.CacheCreationInputTokens,
		CacheReadTokens:     usage.CacheReadInputTokens,
		Model:               record.Message.Model,
		SourceFile:          source,
		RecordID:            recordID(record, line),
	}, nil
}

// recordID derives a stable identity for a record. Message id plus request
// id is the native identity pair; records carrying neither fall back to the
// line uuid, then to a checksum of the raw bytes. Re-parsing the same
// logical record always yields the same id.
func recordID(record model.LogRecord, line []byte) string {
	if record.Message.ID != "" || record.RequestID != "" {
		return record.Message.ID + ":" + record.RequestID
	}
	if record.UUID != "" {
		return "uuid:" + record.UUID
	}
	return fmt.Sprintf("line:%08x", crc32.ChecksumIEEE(line))
}
