// Package store holds the in-memory expense collection and mirrors it to the
// persistent key-value collaborator on every mutation.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"satang/internal/core"
	applog "satang/internal/log"
	"satang/internal/storage"
)

// ExpenseStore is an ordered collection of expenses, newest-first by
// insertion. The whole collection is persisted on every mutation; expected
// record counts are small (personal use), so a full rewrite is fine.
//
// Persistence failures are logged and swallowed: the in-memory state stays
// the source of truth for the running session.
type ExpenseStore struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *applog.Logger
	items  []core.Expense
}

func New(kv storage.KV) *ExpenseStore {
	return &ExpenseStore{
		kv:     kv,
		logger: applog.Default(applog.ComponentStore),
	}
}

// Load reads the persisted collection into memory. An absent or malformed
// value yields an empty collection; malformed input is logged and discarded,
// never fatal.
func (s *ExpenseStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, storage.ExpensesKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed reading persisted expenses, starting empty",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		s.items = nil
		return
	}
	if !ok || raw == "" {
		s.items = nil
		return
	}

	var items []core.Expense
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.ErrorContext(ctx, "Malformed persisted expenses discarded",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		s.items = nil
		return
	}
	s.items = items
	s.logger.InfoContext(ctx, "Expenses loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCount, len(items))
}

// Add prepends the expense and persists the new collection state. The
// generated ID is trusted; no uniqueness check is performed.
func (s *ExpenseStore) Add(ctx context.Context, e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]core.Expense{e}, s.items...)
	s.persistLocked(ctx)
}

// Delete removes the first record with the given ID and persists. A missing
// ID is a no-op.
func (s *ExpenseStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current collection, newest-first.
func (s *ExpenseStore) Snapshot() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of records in memory.
func (s *ExpenseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *ExpenseStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed serializing expenses",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldError, err,
			applog.FieldCount, len(s.items))
		return
	}
	if err := s.kv.Set(ctx, storage.ExpensesKey, string(data)); err != nil {
		// Loss is limited to "this session's changes are not saved";
		// the running session keeps its state.
		s.logger.ErrorContext(ctx, "Failed persisting expenses",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldError, err,
			applog.FieldCount, len(s.items))
	}
}
