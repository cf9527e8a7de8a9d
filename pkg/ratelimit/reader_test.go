package ratelimit

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"
)

// TestNewLimiter tests the Limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024) // 1 MB/s
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.BytesPerSecond() != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", limiter.BytesPerSecond(), 1024*1024)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(0); limiter != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(-100); limiter != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.Burst() < minBurst {
			t.Errorf("Burst() = %d, want at least %d", limiter.Burst(), minBurst)
		}
	})

	t.Run("LargeBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(100 * 1024 * 1024)
		if limiter.Burst() != 100*1024*1024 {
			t.Errorf("Burst() = %d, want %d", limiter.Burst(), 100*1024*1024)
		}
	})

	t.Run("NilLimiterRate", func(t *testing.T) {
		var limiter *Limiter
		if limiter.BytesPerSecond() != 0 {
			t.Error("nil limiter should report 0")
		}
	})
}

// TestNewReader tests the Reader constructor
func TestNewReader(t *testing.T) {
	base := bytes.NewReader([]byte("data"))

	if r := NewReader(context.Background(), base, nil); r != io.Reader(base) {
		t.Error("NewReader() with nil limiter should return the original reader")
	}

	if _, ok := NewReader(context.Background(), base, NewLimiter(1024)).(*Reader); !ok {
		t.Error("NewReader() should wrap the reader when limiting")
	}
}

// TestReaderRead tests the Read method
func TestReaderRead(t *testing.T) {
	t.Run("BasicRead", func(t *testing.T) {
		content := []byte("hello world")
		reader := NewReader(context.Background(), bytes.NewReader(content), NewLimiter(1024*1024))

		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("ReadAll() = %s, want %s", got, content)
		}
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader := NewReader(ctx, bytes.NewReader(make([]byte, 1024)), NewLimiter(1024*1024))

		buf := make([]byte, 100)
		if _, err := reader.Read(buf); err == nil {
			t.Error("Read() should return error on cancelled context")
		}
	})

	t.Run("MultipleReads", func(t *testing.T) {
		content := []byte("0123456789abcdef")
		reader := NewReader(context.Background(), bytes.NewReader(content), NewLimiter(1024*1024))

		var result []byte
		buf := make([]byte, 4)
		for {
			n, err := reader.Read(buf)
			result = append(result, buf[:n]...)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
		}

		if !bytes.Equal(result, content) {
			t.Errorf("accumulated = %s, want %s", result, content)
		}
	})

	t.Run("ReadCappedAtBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)
		reader := NewReader(context.Background(), bytes.NewReader(make([]byte, 2*minBurst)), limiter)

		buf := make([]byte, 2*minBurst)
		n, err := reader.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n > limiter.Burst() {
			t.Errorf("Read() n = %d, want at most %d", n, limiter.Burst())
		}
	})
}

// TestRateLimiting verifies that reads beyond the burst are throttled
func TestRateLimiting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	limiter := NewLimiter(minBurst * 10) // burst = 640KB
	content := make([]byte, limiter.Burst()+minBurst)
	reader := NewReader(context.Background(), bytes.NewReader(content), limiter)

	start := time.Now()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	// 64KB over the full bucket at 640KB/s needs roughly 100ms
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("elapsed = %v, expected throttling", elapsed)
	}
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1024", 1024, false},
		{"512K", 512 * 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBandwidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBandwidth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBandwidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
