package util

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// FileInfo carries the file attributes used for change and rotation
// detection: modification time, size, and inode number.
type FileInfo struct {
	ModTime time.Time // Last modification time, nanosecond precision
	Size    int64     // File size in bytes
	Inode   uint64    // Inode number (identity; changes on rotation)
}

// GetFileInfo retrieves file information including the inode number.
// Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", path)
	}

	return &FileInfo{
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Inode:   sysStat.Ino,
	}, nil
}
