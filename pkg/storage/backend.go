package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/sdejongh/incrbackup/pkg/models"
)

// ErrMetadata marks a Create whose content was written in full but whose
// timestamps or permissions could not be applied
var ErrMetadata = errors.New("metadata not preserved")

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Entry converts the metadata into a backup file entry
func (fi FileInfo) Entry() models.FileEntry {
	return models.FileEntry{
		AbsolutePath: fi.Path,
		Name:         filepath.Base(fi.Path),
		RelativePath: fi.RelativePath,
		Size:         fi.Size,
		ModTime:      fi.ModTime,
		Permissions:  fi.Permissions,
	}
}

// Backend defines the interface for storage operations on one backup root.
// Paths passed to the methods are relative to Root.
type Backend interface {
	// Root returns the absolute root path of the backend
	Root() string

	// List returns every regular file under the root, recursively
	List(ctx context.Context) ([]FileInfo, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create writes a new file with the given content, creating parent
	// directories. It never overwrites: an existing file yields an error
	// matching fs.ErrExist. If metadata is provided, timestamps and
	// permissions are preserved; failing that, the file is kept and the
	// error matches ErrMetadata.
	Create(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Close releases any resources held by the backend
	Close() error
}
