package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/incrbackup/pkg/models"
)

// Progress receives copy progress from the backup walker
type Progress interface {
	// Start is called once the missing files are known
	Start(totalFiles int, totalBytes int64)
	// FileStarted is called before each copy
	FileStarted(entry models.FileEntry)
	// Transferred reports n more bytes written for the current file
	Transferred(n int64)
	// FileDone is called after each copy attempt
	FileDone(entry models.FileEntry, outcome models.CopyOutcome)
	// Finish releases the display
	Finish()
}

// NopProgress discards progress
type NopProgress struct{}

func (NopProgress) Start(int, int64)                              {}
func (NopProgress) FileStarted(models.FileEntry)                  {}
func (NopProgress) Transferred(int64)                             {}
func (NopProgress) FileDone(models.FileEntry, models.CopyOutcome) {}
func (NopProgress) Finish()                                       {}

const barTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . }} {{string . "file" }}`

// BarProgress draws a byte-based progress bar
type BarProgress struct {
	writer  io.Writer
	bar     *pb.ProgressBar
	current int64 // bytes reported for the file in flight
}

// NewBarProgress creates a progress bar writing to w
func NewBarProgress(w io.Writer) *BarProgress {
	return &BarProgress{writer: w}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start creates and starts the bar
func (p *BarProgress) Start(totalFiles int, totalBytes int64) {
	p.bar = pb.New64(totalBytes).
		SetTemplateString(barTemplate).
		SetWriter(p.writer).
		Set(pb.Bytes, true)

	if f, ok := p.writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.bar.SetMaxWidth(width)
		}
	}

	p.bar.Start()
}

// FileStarted shows the file name next to the bar
func (p *BarProgress) FileStarted(entry models.FileEntry) {
	if p.bar == nil {
		return
	}
	p.current = 0
	p.bar.Set("file", filepath.Base(entry.RelativePath))
}

// Transferred advances the bar
func (p *BarProgress) Transferred(n int64) {
	if p.bar == nil {
		return
	}
	p.current += n
	p.bar.Add64(n)
}

// FileDone accounts for bytes a skipped file will never transfer
func (p *BarProgress) FileDone(entry models.FileEntry, outcome models.CopyOutcome) {
	if p.bar == nil {
		return
	}
	if rest := entry.Size - p.current; rest > 0 {
		p.bar.Add64(rest)
	}
	p.current = 0
}

// Finish stops the bar
func (p *BarProgress) Finish() {
	if p.bar == nil {
		return
	}
	p.bar.Set("file", "")
	p.bar.Finish()
}
