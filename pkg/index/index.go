// Package index answers "is this source file already in the destination?"
// for the different match policies.
package index

import (
	"context"
	"fmt"

	"github.com/sdejongh/incrbackup/pkg/models"
	"github.com/sdejongh/incrbackup/pkg/storage"
)

// Index is a membership set built once over the destination tree
type Index interface {
	// Contains reports whether entry (a source file) has a match
	Contains(ctx context.Context, entry models.FileEntry) (bool, error)

	// Len returns the number of destination files indexed
	Len() int

	// Policy returns the match policy implemented by the index
	Policy() models.MatchPolicy
}

// Options carries what the content-based policies need to read files
type Options struct {
	Source     storage.Backend
	Dest       storage.Backend
	BufferSize int
}

// Build creates the index for policy over the destination entries
func Build(policy models.MatchPolicy, destFiles []models.FileEntry, opts Options) (Index, error) {
	switch policy {
	case models.MatchName, "":
		return newKeyIndex(models.MatchName, destFiles, func(e models.FileEntry) string { return e.Name }), nil
	case models.MatchPath:
		return newKeyIndex(models.MatchPath, destFiles, func(e models.FileEntry) string { return e.RelativePath }), nil
	case models.MatchDigest:
		if opts.Source == nil || opts.Dest == nil {
			return nil, fmt.Errorf("digest index requires source and destination backends")
		}
		return newDigestIndex(destFiles, opts), nil
	default:
		return nil, fmt.Errorf("unsupported match policy: %s (use: name, path, digest)", policy)
	}
}

// keyIndex is a plain string set keyed by a property of the entry
type keyIndex struct {
	policy models.MatchPolicy
	key    func(models.FileEntry) string
	keys   map[string]struct{}
	size   int
}

func newKeyIndex(policy models.MatchPolicy, files []models.FileEntry, key func(models.FileEntry) string) *keyIndex {
	idx := &keyIndex{
		policy: policy,
		key:    key,
		keys:   make(map[string]struct{}, len(files)),
		size:   len(files),
	}
	for _, f := range files {
		idx.keys[key(f)] = struct{}{}
	}
	return idx
}

func (i *keyIndex) Contains(ctx context.Context, entry models.FileEntry) (bool, error) {
	_, ok := i.keys[i.key(entry)]
	return ok, nil
}

func (i *keyIndex) Len() int {
	return i.size
}

func (i *keyIndex) Policy() models.MatchPolicy {
	return i.policy
}
