// Package rate holds the process-wide THB→HKD conversion rate.
package rate

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	applog "satang/internal/log"
	"satang/internal/storage"
)

// ErrInvalidRate rejects non-finite or non-positive conversion rates.
var ErrInvalidRate = errors.New("invalid exchange rate")

// DefaultTHBToHKD is the built-in fallback rate (1 THB ≈ 0.225 HKD).
const DefaultTHBToHKD = 0.225

const targetCurrency = "HKD"

// Source fetches latest rates keyed by base currency.
type Source interface {
	Latest(ctx context.Context, base string) (map[string]float64, error)
}

// Holder keeps the current conversion rate in memory and persists every
// overwrite. Only the current value matters; no history is kept.
type Holder struct {
	mu     sync.RWMutex
	value  float64
	kv     storage.KV
	source Source
	logger *applog.Logger

	// Overlapping fetch triggers share one authoritative in-flight call.
	fetches singleflight.Group
}

func NewHolder(kv storage.KV, source Source) *Holder {
	return &Holder{
		value:  DefaultTHBToHKD,
		kv:     kv,
		source: source,
		logger: applog.Default(applog.ComponentRate),
	}
}

// Startup loads the persisted rate if present. On first run (nothing
// persisted) it attempts one live fetch; the outcome is not surfaced, since
// the default value remains valid either way.
func (h *Holder) Startup(ctx context.Context) {
	raw, ok, err := h.kv.Get(ctx, storage.RateKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed reading persisted rate, keeping default",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldError, err,
			applog.FieldRate, DefaultTHBToHKD)
		return
	}
	if ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !valid(v) {
			h.logger.WarnContext(ctx, "Malformed persisted rate discarded",
				applog.FieldOperation, applog.OpStartup,
				"value", raw)
			return
		}
		h.mu.Lock()
		h.value = v
		h.mu.Unlock()
		h.logger.InfoContext(ctx, "Exchange rate loaded",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldRate, v)
		return
	}
	h.FetchLive(ctx)
}

// Get returns the current in-memory rate.
func (h *Holder) Get() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value
}

// Set replaces the in-memory rate and persists immediately. Non-finite and
// non-positive rates are rejected.
func (h *Holder) Set(ctx context.Context, v float64) error {
	if !valid(v) {
		return ErrInvalidRate
	}
	h.mu.Lock()
	h.value = v
	h.mu.Unlock()
	h.persist(ctx, v)
	return nil
}

// FetchLive calls the external rate collaborator once and reports whether the
// rate was updated. On any network error, malformed response, or missing
// target-currency field the current value is left unchanged and false is
// returned; failure is a reported outcome, never a panic past this boundary.
func (h *Holder) FetchLive(ctx context.Context) bool {
	v, err, _ := h.fetches.Do(targetCurrency, func() (any, error) {
		rates, err := h.source.Latest(ctx, "THB")
		if err != nil {
			return 0.0, err
		}
		r, ok := rates[targetCurrency]
		if !ok || !valid(r) {
			return 0.0, ErrInvalidRate
		}
		return r, nil
	})
	if err != nil {
		h.logger.WarnContext(ctx, "Live rate fetch failed, keeping current value",
			applog.FieldOperation, applog.OpFetch,
			applog.FieldError, err,
			applog.FieldRate, h.Get())
		return false
	}

	r := v.(float64)
	h.mu.Lock()
	h.value = r
	h.mu.Unlock()
	h.persist(ctx, r)
	h.logger.InfoContext(ctx, "Live rate fetched",
		applog.FieldOperation, applog.OpFetch,
		applog.FieldRate, r)
	return true
}

func (h *Holder) persist(ctx context.Context, v float64) {
	if err := h.kv.Set(ctx, storage.RateKey, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		h.logger.ErrorContext(ctx, "Failed persisting rate",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldKey, storage.RateKey,
			applog.FieldError, err,
			applog.FieldRate, v)
	}
}

func valid(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
