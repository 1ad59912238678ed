package memory

import (
	"context"
	"sync"

	"github.com/aretw0/digest/pkg/domain"
)

// Log implements ports.MemoryLog in memory.
// Safe for concurrent use.
type Log struct {
	entries []domain.MemoryEntry
	mu      sync.RWMutex
}

// NewLog creates an empty in-memory history.
func NewLog(entries ...domain.MemoryEntry) *Log {
	return &Log{entries: append([]domain.MemoryEntry(nil), entries...)}
}

// Append adds an entry at the end of the history.
func (l *Log) Append(ctx context.Context, entry domain.MemoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// ReadAll returns a snapshot of the history.
func (l *Log) ReadAll(ctx context.Context) ([]domain.MemoryEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.MemoryEntry(nil), l.entries...), nil
}

// Clear drops every entry.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
