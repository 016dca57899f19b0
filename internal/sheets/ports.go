// Package sheets declares the outbound port for mirroring the expense
// ledger to an external spreadsheet.
package sheets

import (
	"context"

	"tally/internal/core"
)

// Mirror receives expense mutations so an external copy of the ledger
// stays in step with the store. Implementations must be idempotent on
// AppendExpense: the worker may replay an event after a failed ack.
type Mirror interface {
	// AppendExpense writes or rewrites one expense row, keyed by ID.
	AppendExpense(ctx context.Context, e core.Expense) error

	// RemoveExpense drops the row for the given expense ID. Removing an
	// unknown ID is not an error.
	RemoveExpense(ctx context.Context, id string) error
}
