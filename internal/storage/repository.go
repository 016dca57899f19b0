// Package storage implements the store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tally/internal/core"
	"tally/internal/store"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// storeErr classifies driver errors: connectivity-class failures are
// surfaced as store.ErrUnavailable so the HTTP boundary answers 503
// instead of a generic 500.
func storeErr(err error) error {
	if errors.Is(err, sql.ErrConnDone) || isConnectivityErr(err) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

func isConnectivityErr(err error) bool {
	s := err.Error()
	return strings.Contains(s, "database is closed") ||
		strings.Contains(s, "unable to open database") ||
		strings.Contains(s, "disk I/O error") ||
		strings.Contains(s, "database is locked")
}

// CreateExpense implements store.ExpenseStore. The repository assigns
// the identifier; identifiers are unique and never reused.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	row := expenseRow{
		ID:          e.ID,
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Date:        formatDate(e.Date),
	}
	if err := r.queries.insertExpense(ctx, row); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", storeErr(err))
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	e.Date = e.Date.UTC()
	return e, nil
}

// ListExpenses implements store.ExpenseStore, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.selectExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", storeErr(err))
	}

	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := row.toCore()
		if err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", row.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// GetExpense implements store.ExpenseStore.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row, err := r.queries.selectExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", storeErr(err))
	}
	e, err := row.toCore()
	if err != nil {
		return core.Expense{}, fmt.Errorf("decode expense %s: %w", id, err)
	}
	return e, nil
}

// UpdateExpense implements store.ExpenseStore. The date column is never
// touched; an update also re-queues the row for the sheet mirror.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id string, upd core.ExpenseUpdate) (core.Expense, error) {
	affected, err := r.queries.updateExpense(ctx, id, upd.Description, upd.Amount.Cents, string(upd.Category))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", storeErr(err))
	}
	if affected == 0 {
		return core.Expense{}, store.ErrNotFound
	}
	return r.GetExpense(ctx, id)
}

// DeleteExpense implements store.ExpenseStore. Deletion is permanent.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	affected, err := r.queries.deleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", storeErr(err))
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// GetBudget implements store.BudgetStore. Absence self-heals: the
// singleton is created with amount 0 on first read.
func (r *SQLiteRepository) GetBudget(ctx context.Context) (core.Budget, error) {
	cents, err := r.queries.selectBudget(ctx, core.BudgetIdentifier)
	if errors.Is(err, sql.ErrNoRows) {
		if err := r.queries.insertBudgetIfAbsent(ctx, core.BudgetIdentifier); err != nil {
			return core.Budget{}, fmt.Errorf("create default budget: %w", storeErr(err))
		}
		// Re-read: a concurrent set may have won the insert race.
		cents, err = r.queries.selectBudget(ctx, core.BudgetIdentifier)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", storeErr(err))
	}
	return core.Budget{Identifier: core.BudgetIdentifier, Amount: core.Money{Cents: cents}}, nil
}

// SetBudget implements store.BudgetStore. The upsert is one atomic
// statement; concurrent sets resolve last write wins.
func (r *SQLiteRepository) SetBudget(ctx context.Context, amount core.Money) (core.Budget, error) {
	if err := r.queries.upsertBudget(ctx, core.BudgetIdentifier, amount.Cents); err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", storeErr(err))
	}
	slog.InfoContext(ctx, "Budget set", "amount_cents", amount.Cents)
	return core.Budget{Identifier: core.BudgetIdentifier, Amount: amount}, nil
}

// ListPendingSync returns expenses the mirror worker still has to push.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.queries.selectPendingSync(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", storeErr(err))
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := row.toCore()
		if err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", row.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// MarkSynced records a successful mirror of an expense.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.queries.setSyncStatus(ctx, id, syncDone); err != nil {
		return fmt.Errorf("mark expense synced: %w", storeErr(err))
	}
	return nil
}

// MarkSyncError flags a row whose mirror attempt failed; the periodic
// rescan does not retry it until the status is cleared by an update.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.setSyncStatus(ctx, id, syncError); err != nil {
		return fmt.Errorf("mark expense sync error: %w", storeErr(err))
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}
