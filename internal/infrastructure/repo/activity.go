package repo

import (
	"context"
	"sync"

	"cafe-orders/internal/domain"
)

const defaultActivityLimit = 1000

// MemoryActivityLog keeps the most recent entries in memory.
type MemoryActivityLog struct {
	mu      sync.Mutex
	limit   int
	entries []domain.ActivityEntry
}

func NewMemoryActivityLog(limit int) *MemoryActivityLog {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return &MemoryActivityLog{limit: limit}
}

func (l *MemoryActivityLog) Record(_ context.Context, e domain.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append([]domain.ActivityEntry(nil), l.entries[over:]...)
	}
	return nil
}

// ListActivity returns up to n entries, newest first. n <= 0 returns all.
func (l *MemoryActivityLog) ListActivity(_ context.Context, n int) ([]domain.ActivityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]domain.ActivityEntry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}
