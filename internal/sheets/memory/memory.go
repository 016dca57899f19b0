// Package memory is an in-process Mirror used by tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"tally/internal/core"
	"tally/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows map[string]core.Expense
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[string]core.Expense)}
}

func (m *Mirror) AppendExpense(_ context.Context, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[e.ID] = e
	return nil
}

func (m *Mirror) RemoveExpense(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// Get returns the mirrored row for an ID. Test helper.
func (m *Mirror) Get(id string) (core.Expense, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	return e, ok
}

// Len reports the number of mirrored rows. Test helper.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
