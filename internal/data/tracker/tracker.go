package tracker

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/data/parser"
	"github.com/quotatray/quotatray/internal/util"
)

// maxLineBytes is the longest line still treated as a candidate record.
// Anything beyond it is counted as malformed and skipped.
const maxLineBytes = 10 * 1024 * 1024

// Stats counts tracker work. FilesDiscovered reflects the latest scan; the
// remaining counters accumulate since construction.
type Stats struct {
	FilesDiscovered int
	FilesRead       int
	SkippedFiles    int
	BytesRead       int64
	LinesParsed     int
	MalformedLines  int
	EventsEmitted   int
}

// Tracker incrementally reads usage records from the .jsonl files under a
// root directory. Each file gets a cursor, so a scan only touches bytes
// appended since the previous one. Not safe for concurrent use; the monitor
// loop is its only caller.
type Tracker struct {
	root    string
	cursors map[string]*Cursor
	stats   Stats
}

// New creates a Tracker rooted at dir. The directory does not have to exist
// yet; scans simply find nothing until it does.
func New(dir string) *Tracker {
	return &Tracker{
		root:    dir,
		cursors: make(map[string]*Cursor),
	}
}

func (t *Tracker) Root() string { return t.root }

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats { return t.stats }

// Scan reads newly appended content from every changed file under the root
// and returns the usage events parsed out of it, oldest file first. Files
// that cannot be statted or opened are skipped and picked up again on a
// later scan; their cursors are left untouched.
func (t *Tracker) Scan() []model.UsageEvent {
	start := time.Now()
	files := t.discover()
	t.stats.FilesDiscovered = len(files)

	alive := make(map[string]struct{}, len(files))
	var events []model.UsageEvent
	for _, path := range files {
		alive[path] = struct{}{}
		events = append(events, t.scanFile(path)...)
	}

	for path := range t.cursors {
		if _, ok := alive[path]; !ok {
			util.LogDebugf("Dropping cursor for removed file: %s", path)
			delete(t.cursors, path)
		}
	}

	util.LogDebugf("Scan completed: duration %v, %d files, %d new events",
		time.Since(start), len(files), len(events))
	return events
}

// HasChanges reports whether a scan would find anything new, using stat
// calls only. New files, vanished files, and size/mtime/inode drift all
// count as changes.
func (t *Tracker) HasChanges() bool {
	files := t.discover()
	if len(files) != len(t.cursors) {
		return true
	}
	for _, path := range files {
		cursor, ok := t.cursors[path]
		if !ok {
			return true
		}
		info, err := util.GetFileInfo(path)
		if err != nil {
			// Unreadable now; Scan will retry it once it recovers.
			continue
		}
		if !cursor.unchanged(info) {
			return true
		}
	}
	return false
}

// discover walks the root and collects .jsonl paths in lexical order.
func (t *Tracker) discover() []string {
	var files []string
	_ = filepath.Walk(t.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebugf("Skip path (error): %s - %v", path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func (t *Tracker) scanFile(path string) []model.UsageEvent {
	info, err := util.GetFileInfo(path)
	if err != nil {
		t.stats.SkippedFiles++
		util.LogWarnf("Skip file (stat failed): %s - %v", path, err)
		return nil
	}

	cursor, ok := t.cursors[path]
	if !ok {
		cursor = newCursor(path)
		t.cursors[path] = cursor
	} else if cursor.unchanged(info) {
		return nil
	}

	if cursor.needsReset(info) {
		util.LogInfof("File rotated or truncated, rereading: %s", path)
		cursor.Offset = 0
	}

	events, seen, consumed, err := t.readFrom(path, cursor)
	if err != nil {
		t.stats.SkippedFiles++
		util.LogWarnf("Skip file (read failed): %s - %v", path, err)
		return nil
	}

	for id := range seen {
		cursor.SeenRecords[id] = struct{}{}
	}
	cursor.advance(consumed, info)
	t.stats.FilesRead++
	t.stats.BytesRead += consumed
	t.stats.EventsEmitted += len(events)
	return events
}

// readFrom reads complete lines starting at the cursor offset. It returns
// the parsed events, the record ids they carry, and the number of bytes
// consumed. A trailing line with no newline is a write in progress and is
// left for the next scan. Nothing is committed to the cursor here, so a
// failed read costs nothing.
func (t *Tracker) readFrom(path string, cursor *Cursor) ([]model.UsageEvent, map[string]struct{}, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer file.Close()

	if cursor.Offset > 0 {
		if _, err := file.Seek(cursor.Offset, io.SeekStart); err != nil {
			return nil, nil, 0, err
		}
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	seen := make(map[string]struct{})
	var events []model.UsageEvent
	var consumed int64
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// Partial tail: the writer has not finished this line yet.
			break
		}
		if err != nil {
			return nil, nil, 0, err
		}
		consumed += int64(len(line))
		event, ok := t.parseLine(path, cursor, seen, line)
		if ok {
			events = append(events, event)
		}
	}
	return events, seen, consumed, nil
}

// parseLine turns one raw line into an event, dropping blanks, irrelevant
// records, malformed records, and duplicates of anything already seen.
func (t *Tracker) parseLine(path string, cursor *Cursor, seen map[string]struct{}, raw []byte) (model.UsageEvent, bool) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return model.UsageEvent{}, false
	}
	if len(line) > maxLineBytes {
		t.stats.MalformedLines++
		util.LogDebugf("Skip oversized line (%d bytes): %s", len(line), path)
		return model.UsageEvent{}, false
	}

	t.stats.LinesParsed++
	event, err := parser.ParseLine(path, line)
	if errors.Is(err, parser.ErrIrrelevant) {
		return model.UsageEvent{}, false
	}
	if err != nil {
		t.stats.MalformedLines++
		util.LogDebugf("Skip malformed line: %s - %v", path, err)
		return model.UsageEvent{}, false
	}

	if _, dup := cursor.SeenRecords[event.RecordID]; dup {
		return model.UsageEvent{}, false
	}
	if _, dup := seen[event.RecordID]; dup {
		return model.UsageEvent{}, false
	}
	seen[event.RecordID] = struct{}{}
	return event, true
}
