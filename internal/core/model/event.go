package model

import "time"

// UsageEvent is one parsed usage record. Immutable once parsed; RecordID is
// derived from record content so the same logical record always carries the
// same id, which is what de-duplication across overlapping files relies on.
type UsageEvent struct {
	Timestamp           time.Time
	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int
	Model               string
	SourceFile          string
	RecordID            string
}

// TotalTokens sums all four token counters of the event
func (e UsageEvent) TotalTokens() int {
	return e.InputTokens + e.OutputTokens + e.CacheCreationTokens + e.CacheReadTokens
}
