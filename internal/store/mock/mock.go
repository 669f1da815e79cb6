// Package mock provides an in-memory run store for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/reverse-prompt/internal/store"
)

// RunStore is an in-memory implementation of store.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []store.Run

	// Error injection.
	SaveError  error
	ListError  error
	CountError error
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Save stores a run in memory.
func (m *RunStore) Save(ctx context.Context, run *store.Run) error {
	if m.SaveError != nil {
		return m.SaveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	m.runs = append(m.runs, *run)
	return nil
}

// List returns stored runs, newest first.
func (m *RunStore) List(ctx context.Context, limit, offset int) ([]store.Run, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Stored in insertion order, so walk backwards.
	var out []store.Run
	for i := len(m.runs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// Count returns the number of stored runs.
func (m *RunStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs), nil
}
