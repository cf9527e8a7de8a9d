package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local is a filesystem-based storage backend rooted at a directory
type Local struct {
	fs       afero.Fs
	rootPath string
}

// NewLocal creates a backend over the operating system filesystem
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return NewLocalFs(afero.NewOsFs(), absPath)
}

// NewLocalFs creates a backend over an arbitrary afero filesystem.
// rootPath must already be absolute for that filesystem.
func NewLocalFs(afs afero.Fs, rootPath string) (*Local, error) {
	rootPath = filepath.Clean(rootPath)

	info, err := afs.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", rootPath)
	}

	return &Local{fs: afs, rootPath: rootPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// List returns all regular files in the directory recursively.
// Symbolic links and other special files are not followed or reported.
func (l *Local) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	err := afero.Walk(l.fs, l.rootPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// A link to a regular file is listed with the target's metadata;
		// links to directories are not followed and dangling links are skipped
		if info.Mode()&os.ModeSymlink != 0 {
			target, statErr := l.fs.Stat(p)
			if statErr != nil {
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Permissions:  uint32(info.Mode().Perm()),
			RelativePath: relPath,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := l.fs.Open(l.abs(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Create writes a new file; it refuses to replace an existing one
func (l *Local) Create(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error) {
	fullPath := l.abs(path)

	if err := l.fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	// Not every afero filesystem honours O_EXCL, so check first as well.
	if _, err := l.fs.Stat(fullPath); err == nil {
		return 0, fmt.Errorf("failed to create file: %w", &fs.PathError{Op: "create", Path: fullPath, Err: fs.ErrExist})
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("failed to check destination: %w", err)
	}

	file, err := l.fs.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, &contextReader{ctx: ctx, r: reader})
	if err != nil {
		file.Close()
		l.fs.Remove(fullPath)
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Close(); err != nil {
		l.fs.Remove(fullPath)
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	// The content is complete from here on; metadata failures are reported
	// as ErrMetadata so callers can keep the copy
	if metadata != nil {
		if !metadata.ModTime.IsZero() {
			if err := l.fs.Chtimes(fullPath, metadata.ModTime, metadata.ModTime); err != nil {
				return written, fmt.Errorf("%w: failed to set modification time: %w", ErrMetadata, err)
			}
		}

		if metadata.Permissions != 0 {
			if err := l.fs.Chmod(fullPath, os.FileMode(metadata.Permissions)); err != nil {
				return written, fmt.Errorf("%w: failed to set permissions: %w", ErrMetadata, err)
			}
		}
	}

	return written, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.abs(path)

	info, err := l.fs.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	relPath, err := filepath.Rel(l.rootPath, fullPath)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:         fullPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Permissions:  uint32(info.Mode().Perm()),
		RelativePath: relPath,
	}, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func (l *Local) abs(path string) string {
	return filepath.Join(l.rootPath, path)
}

// contextReader makes a copy loop stop once the context is cancelled
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
		return r.r.Read(p)
	}
}
