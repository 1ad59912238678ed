package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/digest/pkg/domain"
)

// DefaultLogPath is the history file used when none is configured.
const DefaultLogPath = "research_memory.jsonl"

// Log implements ports.MemoryLog as a JSON Lines file.
//
// Each entry is written with a single O_APPEND write of one line, and writers
// in this process are serialized, so entries never interleave.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog creates a log backed by path. The file is created on first append.
func NewLog(path string) *Log {
	if path == "" {
		path = DefaultLogPath
	}
	return &Log{path: path}
}

// Path returns the backing file.
func (l *Log) Path() string {
	return l.path
}

// Append writes entry as one line at the end of the file.
func (l *Log) Append(ctx context.Context, entry domain.MemoryEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure memory directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open memory file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return f.Sync()
}

// ReadAll parses every line of the file. A missing file is an empty history.
func (l *Log) ReadAll(ctx context.Context) ([]domain.MemoryEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.MemoryEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	entries := []domain.MemoryEntry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e domain.MemoryEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("corrupt memory entry at line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan memory file: %w", err)
	}
	return entries, nil
}

// Clear truncates the history.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear memory file: %w", err)
	}
	return nil
}
