package tracker

import (
	"time"

	"github.com/quotatray/quotatray/internal/util"
)

// Cursor is the per-file read position. Owned exclusively by the Tracker;
// mutated only on its goroutine.
//
// SeenRecords survives a rotation reset on purpose: record ids are derived
// from content, so a record observed again after truncate-and-rewrite is the
// same logical record and must not be handed to the caller twice.
type Cursor struct {
	Path        string
	Offset      int64
	Size        int64
	ModTime     time.Time
	Inode       uint64
	SeenRecords map[string]struct{}
}

func newCursor(path string) *Cursor {
	return &Cursor{
		Path:        path,
		SeenRecords: make(map[string]struct{}),
	}
}

// unchanged reports whether the file looks identical to the last scan
func (c *Cursor) unchanged(info *util.FileInfo) bool {
	return c.Size == info.Size && c.ModTime.Equal(info.ModTime) && c.Inode == info.Inode
}

// needsReset reports whether the file's content can no longer be assumed to
// be an append continuation: it shrank, or its identity changed underneath
// the same path (rotation).
func (c *Cursor) needsReset(info *util.FileInfo) bool {
	if c.Inode != 0 && info.Inode != c.Inode {
		return true
	}
	return info.Size < c.Size
}

// advance records the post-read position and file attributes
func (c *Cursor) advance(consumed int64, info *util.FileInfo) {
	c.Offset += consumed
	c.Size = info.Size
	c.ModTime = info.ModTime
	c.Inode = info.Inode
}
