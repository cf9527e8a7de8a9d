package output

import (
	"fmt"
	"io"
	"time"

	"github.com/docker/go-units"

	"github.com/sdejongh/incrbackup/pkg/models"
)

// HumanFormatter formats the report in human-readable form
type HumanFormatter struct {
	// MaxListed caps how many missing files a dry run lists (0 = all)
	MaxListed int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{MaxListed: 50}
}

// Write prints the summary
func (f *HumanFormatter) Write(w io.Writer, report *models.BackupReport) error {
	title := "Backup"
	if report.DryRun {
		title = "Backup plan"
	}

	fmt.Fprintf(w, "\n%s finished in %s\n\n", title, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Source:       %s\n", report.SourceRoot)
	fmt.Fprintf(w, "  Destination:  %s\n", report.DestRoot)
	fmt.Fprintf(w, "  Match:        %s\n", report.Match)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Source:         %d files (%s)\n", report.Stats.SourceFilesScanned, units.BytesSize(float64(report.Stats.BytesScanned)))
	fmt.Fprintf(w, "    Destination:    %d files\n", report.Stats.DestFilesScanned)
	fmt.Fprintf(w, "    Excluded:       %d files\n", report.Stats.FilesExcluded)
	fmt.Fprintf(w, "    Missing:        %d files\n", report.Stats.FilesMissing)

	if report.DryRun {
		f.writeMissing(w, report.Missing)
	} else {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Operations:\n")
		fmt.Fprintf(w, "    Files copied:   %d\n", report.Stats.FilesCopied)
		fmt.Fprintf(w, "    Files skipped:  %d\n", report.Stats.FilesSkipped)
		fmt.Fprintf(w, "    Files errored:  %d\n", report.Stats.FilesErrored)
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Transfer:\n")
		fmt.Fprintf(w, "    Data:           %s\n", units.BytesSize(float64(report.Stats.BytesTransferred)))

		if report.Duration.Seconds() > 0 {
			avgSpeed := float64(report.Stats.BytesTransferred) / report.Duration.Seconds()
			fmt.Fprintf(w, "    Average speed:  %s/s\n", units.BytesSize(avgSpeed))
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\nNot copied:\n")
		for _, e := range report.Failures {
			fmt.Fprintf(w, "  %s\n", e.Error)
		}
	}

	return nil
}

func (f *HumanFormatter) writeMissing(w io.Writer, missing []models.FileEntry) {
	if len(missing) == 0 {
		return
	}

	fmt.Fprintf(w, "\n  Would copy:\n")
	for i, e := range missing {
		if f.MaxListed > 0 && i == f.MaxListed {
			fmt.Fprintf(w, "    ... and %d more\n", len(missing)-i)
			break
		}
		fmt.Fprintf(w, "    %s (%s)\n", e.RelativePath, units.BytesSize(float64(e.Size)))
	}
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
