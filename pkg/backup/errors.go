package backup

import (
	"errors"
	"fmt"

	"github.com/sdejongh/incrbackup/pkg/models"
)

var (
	// ErrSourceMissing matches copy errors caused by a vanished source file
	ErrSourceMissing = errors.New("source file missing")
	// ErrDestinationExists matches copy errors caused by an existing destination file
	ErrDestinationExists = errors.New("destination file exists")
)

// CopyError describes a copy that did not succeed
type CopyError struct {
	Kind        models.FailureKind
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %v", e.Kind, e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by failure kind
func (e *CopyError) Is(target error) bool {
	switch target {
	case ErrSourceMissing:
		return e.Kind == models.FailureSourceMissing
	case ErrDestinationExists:
		return e.Kind == models.FailureDestinationExists
	default:
		return false
	}
}
