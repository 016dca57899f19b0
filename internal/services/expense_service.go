// Package services orchestrates store operations and event publishing.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
)

// ErrValidation marks request payloads that fail domain validation.
// The HTTP boundary translates it to a 400 response.
var ErrValidation = errors.New("invalid expense")

// EventPublisher pushes expense mutation events to the bus. Satisfied
// by *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id, action string) error
}

// ExpenseService owns the expense CRUD contract: coercion of missing
// fields, validation, persistence, and best-effort event publishing.
type ExpenseService struct {
	store     store.ExpenseStore
	publisher EventPublisher
}

func NewExpenseService(st store.ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{store: st, publisher: publisher}
}

// List returns every expense, newest first.
func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// Create persists a new expense. A zero date defaults to the current
// server time; the store assigns the identifier.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// Update overwrites the mutable fields of an existing expense. The date
// is never touched. Returns store.ErrNotFound for unknown identifiers.
func (s *ExpenseService) Update(ctx context.Context, id string, upd core.ExpenseUpdate) (core.Expense, error) {
	// Validate the mutable fields against the same rules as creation.
	probe := core.Expense{
		Description: upd.Description,
		Amount:      upd.Amount,
		Category:    upd.Category,
		Date:        time.Now(),
	}
	if err := probe.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	updated, err := s.store.UpdateExpense(ctx, id, upd)
	if err != nil {
		return core.Expense{}, err
	}

	s.publish(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

// Delete removes an expense permanently. Returns store.ErrNotFound for
// unknown identifiers.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// publish is best-effort: the expense is already persisted, so a bus
// failure must not fail the request.
func (s *ExpenseService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", action, "error", err)
	}
}
