package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one line in the append-only JSONL log.
type Event struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	EventType string `json:"event_type"`
	Trigger   string `json:"trigger,omitempty"`
	Path      string `json:"path,omitempty"`
	ExitCode  int    `json:"exit_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Log struct {
	mu   sync.Mutex
	file *os.File
}

func New(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	return &Log{file: file}, nil
}

func (l *Log) Emit(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.TS == "" {
		event.TS = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return err
	}

	return nil
}

func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
