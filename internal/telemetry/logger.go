package telemetry

import (
	"io"
	"os"
	"sort"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger is the event sink every package writes to. Events are dotted names
// such as "relay.exit_failed"; fields are flat key/value pairs.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// JSONLogger writes one JSON object per event.
type JSONLogger struct {
	mu  sync.Mutex
	out *clog.Logger
	c   io.Closer
}

// NewJSONLogger appends to path when set. Without a path it writes to
// fallback, or discards everything when fallback is nil.
func NewJSONLogger(path string, fallback io.Writer) (*JSONLogger, error) {
	if path == "" {
		if fallback == nil {
			fallback = io.Discard
		}
		return newLogger(fallback, nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return newLogger(f, f), nil
}

// NewWriterLogger logs to w and never closes it.
func NewWriterLogger(w io.Writer) *JSONLogger {
	return newLogger(w, nil)
}

func newLogger(w io.Writer, c io.Closer) *JSONLogger {
	return &JSONLogger{
		out: clog.NewWithOptions(w, clog.Options{
			Formatter:       clog.JSONFormatter,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339Nano,
			TimeFunction:    clog.NowUTC,
			Level:           clog.InfoLevel,
		}),
		c: c,
	}
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Info(msg, keyvals(fields)...)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Error(msg, keyvals(fields)...)
}

func (l *JSONLogger) Close() error {
	if l == nil || l.c == nil {
		return nil
	}
	return l.c.Close()
}

func keyvals(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}

// Nop drops every event.
type Nop struct{}

func (Nop) Info(string, map[string]any)  {}
func (Nop) Error(string, map[string]any) {}
