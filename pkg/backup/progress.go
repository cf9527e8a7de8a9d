package backup

import (
	"io"
	"time"
)

// progressReader wraps an io.Reader to report transferred bytes
type progressReader struct {
	reader         io.Reader
	pending        int64
	lastReportTime time.Time
	onProgress     func(delta int64)
}

// Progress reporting thresholds
const (
	progressReportInterval = 50 * time.Millisecond
	progressReportBytes    = 64 * 1024
)

func newProgressReader(r io.Reader, onProgress func(delta int64)) *progressReader {
	return &progressReader{
		reader:         r,
		lastReportTime: time.Now(),
		onProgress:     onProgress,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.pending += int64(n)
	}

	// Report after enough bytes, enough time, or at the end of the stream
	if pr.pending > 0 && (pr.pending >= progressReportBytes ||
		time.Since(pr.lastReportTime) >= progressReportInterval ||
		err != nil) {
		pr.onProgress(pr.pending)
		pr.pending = 0
		pr.lastReportTime = time.Now()
	}
	return n, err
}
