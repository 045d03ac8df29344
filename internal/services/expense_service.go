// Package services wires the expense store, the exchange rate holder, and
// the optional receipt scanner behind one application controller. All state
// is owned here and passed down to the view layer; there are no ambient
// globals.
package services

import (
	"context"
	"time"

	"satang/internal/core"
	"satang/internal/rate"
	"satang/internal/scan"
	"satang/internal/store"
)

// LogInput carries the raw form fields of one expense submission.
type LogInput struct {
	Amount      string
	Description string
	Category    string
	Payment     string
	IsSplit     bool
	SplitCount  int
}

// Summary is the stats view model: historical THB totals plus the HKD
// equivalents recomputed live from the current rate.
type Summary struct {
	TotalTHB   float64
	TotalHKD   float64
	Rate       float64
	ByCategory []core.CategoryAmount
}

type ExpenseService struct {
	store   *store.ExpenseStore
	rates   *rate.Holder
	scanner scan.Scanner
	loc     *time.Location
}

func NewExpenseService(st *store.ExpenseStore, rates *rate.Holder, scanner scan.Scanner, loc *time.Location) *ExpenseService {
	if scanner == nil {
		scanner = scan.Disabled{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExpenseService{store: st, rates: rates, scanner: scanner, loc: loc}
}

// Log validates the submission and commits a new expense record. A
// non-positive or unparsable amount returns core.ErrInvalidAmount and
// creates nothing. The HKD amount is frozen at the current rate.
func (s *ExpenseService) Log(ctx context.Context, in LogInput) (core.Expense, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	e, err := core.NewExpense(
		amount,
		in.Description,
		core.ParseCategory(in.Category),
		core.ParsePaymentMethod(in.Payment),
		in.IsSplit,
		in.SplitCount,
		s.rates.Get(),
		time.Now(),
	)
	if err != nil {
		return core.Expense{}, err
	}

	s.store.Add(ctx, e)
	return e, nil
}

// Delete removes the record with the given ID; missing IDs are a no-op.
func (s *ExpenseService) Delete(ctx context.Context, id string) bool {
	return s.store.Delete(ctx, id)
}

// Expenses returns a snapshot of the collection, newest-first.
func (s *ExpenseService) Expenses() []core.Expense {
	return s.store.Snapshot()
}

// Location returns the display timezone used for day grouping.
func (s *ExpenseService) Location() *time.Location {
	return s.loc
}

// History groups the collection by local calendar day for the history view.
func (s *ExpenseService) History() []core.DayGroup {
	return core.GroupByDay(s.store.Snapshot(), s.loc)
}

// Summarize recomputes the stats view from the current snapshot. HKD totals
// use the current rate, not the per-record frozen one: historical records
// keep the rate at time of spend, current totals reflect today's conversion.
func (s *ExpenseService) Summarize() Summary {
	items := s.store.Snapshot()
	total := core.TotalSpend(items)
	r := s.rates.Get()
	return Summary{
		TotalTHB:   total,
		TotalHKD:   core.ToDisplayCurrency(total, r),
		Rate:       r,
		ByCategory: core.ByCategory(items),
	}
}

// Rate returns the current THB→HKD rate.
func (s *ExpenseService) Rate() float64 {
	return s.rates.Get()
}

// SetRate overrides the rate and persists it.
func (s *ExpenseService) SetRate(ctx context.Context, v float64) error {
	return s.rates.Set(ctx, v)
}

// RefreshRate triggers a live fetch and reports whether the rate changed.
func (s *ExpenseService) RefreshRate(ctx context.Context) bool {
	return s.rates.FetchLive(ctx)
}

// ScanEnabled reports whether the receipt-scanning collaborator is
// configured.
func (s *ExpenseService) ScanEnabled() bool {
	_, disabled := s.scanner.(scan.Disabled)
	return !disabled
}

// ScanReceipt runs the optional scanner over a receipt image. A nil result
// means the feature is unavailable or nothing could be extracted; the caller
// leaves the form untouched.
func (s *ExpenseService) ScanReceipt(ctx context.Context, imageBase64, mimeType string) (*scan.Result, error) {
	return s.scanner.Scan(ctx, imageBase64, mimeType)
}
