// Package querylog appends unanswered customer questions to a rotated text file.
//
// Each line has the form
//
//	[2006-01-02 15:04:05] UNANSWERED: <query>
//
// so the restaurant can extend its knowledge base from real questions.
package querylog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tafel/internal/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampLayout = "2006-01-02 15:04:05"

// Config controls file location and rotation.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Recorder writes one line per unanswered query. Failures are logged, never returned.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets the logger that receives write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// New creates a Recorder backed by a lumberjack rotating file.
func New(cfg Config, opts ...Option) *Recorder {
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return NewWriter(lj, append([]Option{withCloser(lj)}, opts...)...)
}

// NewWriter creates a Recorder writing to w.
func NewWriter(w io.Writer, opts ...Option) *Recorder {
	r := &Recorder{
		w:      w,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func withCloser(c io.Closer) Option {
	return func(r *Recorder) {
		r.closer = c
	}
}

// Record appends query to the log.
func (r *Recorder) Record(query string) {
	// One entry per line.
	query = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(query)
	line := fmt.Sprintf("[%s] UNANSWERED: %s\n", r.now().Format(timestampLayout), query)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.w, line); err != nil {
		r.logger.Warn("failed to record unanswered query", "error", err)
	}
}

// Close releases the underlying file, if any.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closer.Close()
}
