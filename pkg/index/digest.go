package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/incrbackup/pkg/models"
	"github.com/sdejongh/incrbackup/pkg/storage"
)

// digestIndex matches files by SHA-256 of their content. Destination
// digests are computed lazily and only for files whose size equals the
// size of a source file being looked up.
type digestIndex struct {
	source  storage.Backend
	dest    storage.Backend
	hasher  *Hasher
	bySize  map[int64][]models.FileEntry
	digests map[string]string // destination relative path -> digest
	size    int
}

func newDigestIndex(files []models.FileEntry, opts Options) *digestIndex {
	idx := &digestIndex{
		source:  opts.Source,
		dest:    opts.Dest,
		hasher:  NewHasher(opts.BufferSize),
		bySize:  make(map[int64][]models.FileEntry),
		digests: make(map[string]string),
		size:    len(files),
	}
	for _, f := range files {
		idx.bySize[f.Size] = append(idx.bySize[f.Size], f)
	}
	return idx
}

func (i *digestIndex) Contains(ctx context.Context, entry models.FileEntry) (bool, error) {
	candidates := i.bySize[entry.Size]
	if len(candidates) == 0 {
		return false, nil
	}

	sum, err := i.hasher.Sum(ctx, i.source, entry.RelativePath)
	if err != nil {
		return false, fmt.Errorf("failed to hash source file: %w", err)
	}

	for _, c := range candidates {
		d, ok := i.digests[c.RelativePath]
		if !ok {
			d, err = i.hasher.Sum(ctx, i.dest, c.RelativePath)
			if err != nil {
				return false, fmt.Errorf("failed to hash destination file: %w", err)
			}
			i.digests[c.RelativePath] = d
		}
		if d == sum {
			return true, nil
		}
	}
	return false, nil
}

func (i *digestIndex) Len() int {
	return i.size
}

func (i *digestIndex) Policy() models.MatchPolicy {
	return models.MatchDigest
}

// Hasher computes SHA-256 digests with pooled read buffers
type Hasher struct {
	bufferPool *sync.Pool
}

// NewHasher creates a hasher; buffers smaller than 4KB are rounded up
func NewHasher(bufferSize int) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Sum returns the hex SHA-256 of the file at path on backend
func (h *Hasher) Sum(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
