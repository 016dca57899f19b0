package storage

import (
	"context"
	"database/sql"
	"time"

	"tally/internal/core"
)

// Sync bookkeeping states for the sheet mirror worker.
const (
	syncPending = "pending"
	syncDone    = "synced"
	syncError   = "error"
)

// expenseRow mirrors one row of the expenses table.
type expenseRow struct {
	ID          string
	Description string
	AmountCents int64
	Category    string
	Date        string
}

const expenseColumns = "id, description, amount_cents, category, date"

// Queries is the thin SQL layer under the repository.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) insertExpense(ctx context.Context, row expenseRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount_cents, category, date) VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.Description, row.AmountCents, row.Category, row.Date)
	return err
}

func (q *Queries) selectExpenses(ctx context.Context) ([]expenseRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []expenseRow
	for rows.Next() {
		var r expenseRow
		if err := rows.Scan(&r.ID, &r.Description, &r.AmountCents, &r.Category, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) selectExpense(ctx context.Context, id string) (expenseRow, error) {
	var r expenseRow
	err := q.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.AmountCents, &r.Category, &r.Date)
	return r, err
}

func (q *Queries) updateExpense(ctx context.Context, id, description string, amountCents int64, category string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount_cents = ?, category = ?,
		     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'),
		     sync_status = ?
		 WHERE id = ?`,
		description, amountCents, category, syncPending, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) deleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) selectBudget(ctx context.Context, identifier string) (int64, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT amount_cents FROM budget WHERE identifier = ?`, identifier).Scan(&cents)
	return cents, err
}

func (q *Queries) insertBudgetIfAbsent(ctx context.Context, identifier string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budget (identifier, amount_cents) VALUES (?, 0)
		 ON CONFLICT (identifier) DO NOTHING`, identifier)
	return err
}

func (q *Queries) upsertBudget(ctx context.Context, identifier string, amountCents int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budget (identifier, amount_cents) VALUES (?, ?)
		 ON CONFLICT (identifier) DO UPDATE SET amount_cents = excluded.amount_cents`,
		identifier, amountCents)
	return err
}

func (q *Queries) selectPendingSync(ctx context.Context, limit int) ([]expenseRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE sync_status = ? ORDER BY created_at LIMIT ?`, syncPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []expenseRow
	for rows.Next() {
		var r expenseRow
		if err := rows.Scan(&r.ID, &r.Description, &r.AmountCents, &r.Category, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) setSyncStatus(ctx context.Context, id, status string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, status, id)
	return err
}

// dateLayout is fixed width so that lexicographic ORDER BY on the text
// column matches chronological order, sub-second included. RFC3339Nano
// would trim trailing zeros and break that.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

func (r expenseRow) toCore() (core.Expense, error) {
	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          r.ID,
		Description: r.Description,
		Amount:      core.Money{Cents: r.AmountCents},
		Category:    core.Category(r.Category),
		Date:        date,
	}, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
