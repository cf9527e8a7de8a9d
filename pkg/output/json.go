package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/docker/go-units"

	"github.com/sdejongh/incrbackup/pkg/models"
)

// JSONFormatter formats the report as JSON for automation and scripting
type JSONFormatter struct{}

// JSONReportData represents the final report data
type JSONReportData struct {
	SessionID   string          `json:"session_id"`
	Status      string          `json:"status"`
	DryRun      bool            `json:"dry_run"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Match       string          `json:"match"`
	StartedAt   string          `json:"started_at"`
	Duration    string          `json:"duration"`
	DurationMs  int64           `json:"duration_ms"`
	Stats       JSONStatsData   `json:"stats"`
	Missing     []JSONFileData  `json:"missing,omitempty"`
	Failures    []JSONErrorData `json:"failures,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	SourceFiles      int    `json:"source_files"`
	DestFiles        int    `json:"dest_files"`
	Excluded         int    `json:"excluded"`
	Missing          int    `json:"missing"`
	Copied           int    `json:"copied"`
	Skipped          int    `json:"skipped"`
	Errored          int    `json:"errored"`
	BytesScanned     int64  `json:"bytes_scanned"`
	BytesTransferred int64  `json:"bytes_transferred"`
	AverageSpeed     int64  `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr  string `json:"average_speed,omitempty"`
}

// JSONFileData represents a file the backup would copy
type JSONFileData struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// JSONErrorData represents a file that was not copied
type JSONErrorData struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Kind        string `json:"kind"`
	Error       string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Write encodes the report as indented JSON
func (f *JSONFormatter) Write(w io.Writer, report *models.BackupReport) error {
	var avgSpeed int64
	var avgSpeedStr string
	if !report.DryRun && report.Duration.Seconds() > 0 {
		avgSpeed = int64(float64(report.Stats.BytesTransferred) / report.Duration.Seconds())
		avgSpeedStr = units.BytesSize(float64(avgSpeed)) + "/s"
	}

	data := JSONReportData{
		SessionID:   report.SessionID,
		Status:      string(report.Status),
		DryRun:      report.DryRun,
		Source:      report.SourceRoot,
		Destination: report.DestRoot,
		Match:       string(report.Match),
		StartedAt:   report.StartTime.Format(time.RFC3339),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			SourceFiles:      report.Stats.SourceFilesScanned,
			DestFiles:        report.Stats.DestFilesScanned,
			Excluded:         report.Stats.FilesExcluded,
			Missing:          report.Stats.FilesMissing,
			Copied:           report.Stats.FilesCopied,
			Skipped:          report.Stats.FilesSkipped,
			Errored:          report.Stats.FilesErrored,
			BytesScanned:     report.Stats.BytesScanned,
			BytesTransferred: report.Stats.BytesTransferred,
			AverageSpeed:     avgSpeed,
			AverageSpeedStr:  avgSpeedStr,
		},
	}

	if report.DryRun {
		for _, e := range report.Missing {
			data.Missing = append(data.Missing, JSONFileData{Path: e.RelativePath, Size: e.Size})
		}
	}

	for _, e := range report.Failures {
		data.Failures = append(data.Failures, JSONErrorData{
			Source:      e.Source,
			Destination: e.Destination,
			Kind:        string(e.Kind),
			Error:       e.Error,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
