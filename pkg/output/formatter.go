package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/incrbackup/pkg/models"
)

// Formatter renders the final backup report
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Write renders report to w
	Write(w io.Writer, report *models.BackupReport) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "human":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: human, json)", name)
	}
}
