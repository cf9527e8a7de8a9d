// Package backup implements the one-way incremental backup walker: it diffs
// a source tree against a destination tree and copies what is missing.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdejongh/incrbackup/pkg/index"
	"github.com/sdejongh/incrbackup/pkg/logging"
	"github.com/sdejongh/incrbackup/pkg/models"
	"github.com/sdejongh/incrbackup/pkg/output"
	"github.com/sdejongh/incrbackup/pkg/ratelimit"
	"github.com/sdejongh/incrbackup/pkg/storage"
)

// Walker orchestrates a backup session
type Walker struct {
	source   storage.Backend
	dest     storage.Backend
	logger   logging.Logger
	progress output.Progress
	session  *models.BackupSession
	excluder *Excluder
	limiter  *ratelimit.Limiter
}

// NewWalker creates a backup walker. A nil logger or progress discards
// the corresponding output.
func NewWalker(
	source, dest storage.Backend,
	logger logging.Logger,
	progress output.Progress,
	session *models.BackupSession,
) (*Walker, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	excluder, err := NewExcluder(session.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if progress == nil {
		progress = output.NopProgress{}
	}

	return &Walker{
		source:   source,
		dest:     dest,
		logger:   logger.WithFields(logging.Fields{"session_id": session.ID}),
		progress: progress,
		session:  session,
		excluder: excluder,
		limiter:  ratelimit.NewLimiter(session.BandwidthLimit),
	}, nil
}

// DestinationPath maps a path under sourceRoot to the same relative
// location under destRoot
func DestinationPath(sourceRoot, destRoot, path string) (string, error) {
	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		return "", fmt.Errorf("failed to map %s to destination: %w", path, err)
	}
	if escapes(rel) {
		return "", fmt.Errorf("path %s is outside source root %s", path, sourceRoot)
	}
	return filepath.Join(destRoot, rel), nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}

// MissingFiles returns the source files that have no match in the destination
func (w *Walker) MissingFiles(ctx context.Context) ([]models.FileEntry, error) {
	return w.scan(ctx, &models.BackupReport{})
}

// scan lists both trees, builds the destination index and collects the
// source files it does not contain
func (w *Walker) scan(ctx context.Context, report *models.BackupReport) ([]models.FileEntry, error) {
	sourceFiles, err := w.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source: %w", err)
	}

	destFiles, err := w.dest.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination: %w", err)
	}

	destEntries := make([]models.FileEntry, 0, len(destFiles))
	for _, f := range destFiles {
		destEntries = append(destEntries, f.Entry())
	}
	report.Stats.DestFilesScanned = len(destEntries)

	idx, err := index.Build(w.session.Match, destEntries, index.Options{
		Source:     w.source,
		Dest:       w.dest,
		BufferSize: w.session.BufferSize,
	})
	if err != nil {
		return nil, err
	}

	w.logger.Debug(ctx, "destination indexed", logging.Fields{
		"match":   string(idx.Policy()),
		"entries": idx.Len(),
	})

	var missing []models.FileEntry
	for _, f := range sourceFiles {
		if w.excluder.Match(f.RelativePath) {
			report.Stats.FilesExcluded++
			continue
		}

		entry := f.Entry()
		report.Stats.SourceFilesScanned++
		report.Stats.BytesScanned += entry.Size

		found, err := idx.Contains(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to match %s: %w", entry.RelativePath, err)
		}
		if !found {
			missing = append(missing, entry)
		}
	}

	report.Stats.FilesMissing = len(missing)
	return missing, nil
}

// CopyFile copies one source entry to destination, an absolute path under
// the destination root. It never overwrites an existing file.
func (w *Walker) CopyFile(ctx context.Context, entry models.FileEntry, destination string) models.CopyOutcome {
	start := time.Now()
	outcome := models.CopyOutcome{
		Source:      entry.AbsolutePath,
		Destination: destination,
	}

	finish := func(status models.CopyStatus, kind models.FailureKind, err error) models.CopyOutcome {
		outcome.Status = status
		outcome.Kind = kind
		outcome.Duration = time.Since(start)
		if err != nil {
			outcome.Err = &CopyError{Kind: kind, Source: entry.AbsolutePath, Destination: destination, Err: err}
		}
		w.logOutcome(ctx, outcome)
		return outcome
	}

	destRel, err := filepath.Rel(w.dest.Root(), destination)
	if err != nil || escapes(destRel) {
		return finish(models.StatusFailed, models.FailureIO,
			fmt.Errorf("destination %s is outside destination root %s", destination, w.dest.Root()))
	}

	srcRel := entry.RelativePath
	if srcRel == "" {
		if srcRel, err = filepath.Rel(w.source.Root(), entry.AbsolutePath); err != nil || escapes(srcRel) {
			return finish(models.StatusFailed, models.FailureIO,
				fmt.Errorf("source %s is outside source root %s", entry.AbsolutePath, w.source.Root()))
		}
	}

	info, err := w.source.Stat(ctx, srcRel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return finish(models.StatusSkipped, models.FailureSourceMissing, err)
		}
		return finish(models.StatusFailed, models.FailureIO, err)
	}
	if info.IsDir {
		return finish(models.StatusSkipped, models.FailureSourceMissing,
			fmt.Errorf("source %s is no longer a regular file", entry.AbsolutePath))
	}

	reader, err := w.source.Open(ctx, srcRel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return finish(models.StatusSkipped, models.FailureSourceMissing, err)
		}
		return finish(models.StatusFailed, models.FailureIO, err)
	}
	defer reader.Close()

	w.progress.FileStarted(entry)

	var r io.Reader = ratelimit.NewReader(ctx, reader, w.limiter)
	r = newProgressReader(r, w.progress.Transferred)

	written, err := w.dest.Create(ctx, destRel, r, info)
	outcome.BytesCopied = written
	if errors.Is(err, storage.ErrMetadata) {
		// Content is in place; only timestamps or permissions differ
		w.logger.Warn(ctx, "file metadata not preserved", logging.Fields{
			"source":      entry.AbsolutePath,
			"destination": destination,
			"error":       err.Error(),
		})
		err = nil
	}
	if err != nil {
		outcome.BytesCopied = 0
		if errors.Is(err, fs.ErrExist) {
			return finish(models.StatusSkipped, models.FailureDestinationExists, err)
		}
		return finish(models.StatusFailed, models.FailureIO, err)
	}

	return finish(models.StatusCopied, models.FailureNone, nil)
}

func (w *Walker) logOutcome(ctx context.Context, outcome models.CopyOutcome) {
	fields := logging.Fields{
		"source":      outcome.Source,
		"destination": outcome.Destination,
	}

	switch outcome.Status {
	case models.StatusCopied:
		fields["bytes"] = outcome.BytesCopied
		fields["duration_ms"] = outcome.Duration.Milliseconds()
		w.logger.Info(ctx, "file copied", fields)
	case models.StatusSkipped:
		fields["kind"] = string(outcome.Kind)
		w.logger.Error(ctx, "file skipped", outcome.Err, fields)
	default:
		fields["kind"] = string(outcome.Kind)
		w.logger.Error(ctx, "copy failed", outcome.Err, fields)
	}
}

// Run performs the backup: every missing source file is copied to the same
// relative location under the destination root. The first fatal copy error
// aborts the session; the returned error wraps it.
func (w *Walker) Run(ctx context.Context) (*models.BackupReport, error) {
	report := &models.BackupReport{
		SessionID:  w.session.ID,
		SourceRoot: w.source.Root(),
		DestRoot:   w.dest.Root(),
		Match:      w.session.Match,
		DryRun:     w.session.DryRun,
		StartTime:  time.Now(),
	}
	defer func() {
		report.EndTime = time.Now()
		report.Duration = report.EndTime.Sub(report.StartTime)
	}()

	w.logger.Info(ctx, "backup started", logging.Fields{
		"source_root": report.SourceRoot,
		"dest_root":   report.DestRoot,
		"match":       string(report.Match),
		"dry_run":     report.DryRun,
	})

	missing, err := w.scan(ctx, report)
	if err != nil {
		if ctx.Err() != nil {
			return w.cancelled(ctx, report)
		}
		report.Status = models.StatusAborted
		w.logger.Error(ctx, "backup aborted", err, nil)
		return report, fmt.Errorf("backup aborted: %w", err)
	}
	report.Missing = missing

	if report.DryRun {
		report.Status = models.StatusSuccess
		w.logger.Info(ctx, "backup plan computed", logging.Fields{
			"files_missing": len(missing),
		})
		return report, nil
	}

	var totalBytes int64
	for _, e := range missing {
		totalBytes += e.Size
	}
	w.progress.Start(len(missing), totalBytes)
	defer w.progress.Finish()

	for _, entry := range missing {
		if ctx.Err() != nil {
			return w.cancelled(ctx, report)
		}

		var outcome models.CopyOutcome
		destination, err := DestinationPath(report.SourceRoot, report.DestRoot, entry.AbsolutePath)
		if err != nil {
			outcome = models.CopyOutcome{
				Source: entry.AbsolutePath,
				Status: models.StatusFailed,
				Kind:   models.FailureIO,
				Err:    &CopyError{Kind: models.FailureIO, Source: entry.AbsolutePath, Err: err},
			}
		} else {
			outcome = w.CopyFile(ctx, entry, destination)
		}

		if outcome.Fatal() && ctx.Err() != nil {
			return w.cancelled(ctx, report)
		}

		report.Record(outcome)
		w.progress.FileDone(entry, outcome)

		if outcome.Fatal() {
			report.Status = models.StatusAborted
			w.logger.Error(ctx, "backup aborted", outcome.Err, logging.Fields{
				"files_copied": report.Stats.FilesCopied,
			})
			return report, fmt.Errorf("backup aborted: %w", outcome.Err)
		}
	}

	report.Status = models.StatusSuccess
	if report.Stats.FilesSkipped > 0 {
		report.Status = models.StatusPartial
	}

	w.logger.Info(ctx, "backup completed", logging.Fields{
		"files_copied":  report.Stats.FilesCopied,
		"files_skipped": report.Stats.FilesSkipped,
		"bytes":         report.Stats.BytesTransferred,
	})

	return report, nil
}

func (w *Walker) cancelled(ctx context.Context, report *models.BackupReport) (*models.BackupReport, error) {
	report.Status = models.StatusCancelled
	w.logger.Warn(ctx, "backup cancelled", logging.Fields{
		"files_copied": report.Stats.FilesCopied,
	})
	return report, ctx.Err()
}
