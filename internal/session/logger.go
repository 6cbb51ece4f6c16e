package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrClosed is returned by JSONLogger.Log after Close.
var ErrClosed = errors.New("session log is closed")

// Logger receives the events of one wizard session.
type Logger interface {
	Log(event Event) error
	Close() error
}

// JSONLogger appends events to a file, one JSON object per line. It is safe
// for concurrent use.
type JSONLogger struct {
	path string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

var (
	_ Logger = (*JSONLogger)(nil)
	_ Logger = NopLogger{}
)

// NewJSONLogger opens path for appending, creating parent directories.
func NewJSONLogger(path string) (*JSONLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	return &JSONLogger{path: path, file: f, enc: json.NewEncoder(f)}, nil
}

// Log writes event as one line. A zero timestamp is set to now.
func (l *JSONLogger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ErrClosed
	}
	if err := l.enc.Encode(event); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

// Close closes the file. Further calls are no-ops.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file, l.enc = nil, nil
	return err
}

// Path returns the file path of the session log.
func (l *JSONLogger) Path() string {
	return l.path
}

// NopLogger discards all events.
type NopLogger struct{}

func (NopLogger) Log(Event) error { return nil }
func (NopLogger) Close() error    { return nil }

// DefaultLogPath names a new log inside dir, e.g.
// 20250115T100000Z-bulk-session.jsonl.
func DefaultLogPath(dir, mode string) string {
	name := time.Now().UTC().Format("20060102T150405Z")
	if mode != "" {
		name += "-" + mode
	}
	return filepath.Join(dir, name+LogSuffix)
}
