package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Transport Category = "Transport"
	Food      Category = "Food"
	Drink     Category = "Drink"
	Weed      Category = "Weed"
	Purchase  Category = "Purchase"
	Play      Category = "Play"
	Other     Category = "Other"
)

const (
	Cash       PaymentMethod = "Cash"
	CreditCard PaymentMethod = "Credit Card"
)

type (
	Category string

	PaymentMethod string

	// Expense is one logged spending event. Records are immutable after
	// creation; the only lifecycle transition is deletion by ID.
	Expense struct {
		ID          string        `json:"id"`
		Timestamp   int64         `json:"timestamp"` // milliseconds since epoch
		AmountTHB   float64       `json:"amountTHB"`
		AmountHKD   float64       `json:"amountHKD"`
		Category    Category      `json:"category"`
		Description string        `json:"description"`
		Payment     PaymentMethod `json:"paymentMethod"`
		IsSplit     bool          `json:"isSplit"`
		SplitCount  int           `json:"splitCount"`
		SplitTHB    float64       `json:"splitAmountTHB"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidSplitCount = errors.New("invalid split count")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrEmptyID           = errors.New("empty id")
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{Transport, Food, Drink, Weed, Purchase, Play, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Transport, Food, Drink, Weed, Purchase, Play, Other:
		return true
	}
	return false
}

// ParseCategory maps a string to a known category, falling back to Other.
func ParseCategory(s string) Category {
	c := Category(strings.TrimSpace(s))
	if c.Valid() {
		return c
	}
	return Other
}

func (p PaymentMethod) Valid() bool {
	return p == Cash || p == CreditCard
}

// ParsePaymentMethod maps a string to a payment method, defaulting to cash.
func ParsePaymentMethod(s string) PaymentMethod {
	p := PaymentMethod(strings.TrimSpace(s))
	if p.Valid() {
		return p
	}
	return Cash
}

// NewExpense builds an immutable expense record. The HKD amount is baked in
// from the rate at creation time and never recomputed. When isSplit is false
// the split count is normalized to 1 and the split amount equals the full
// amount; otherwise the split amount is the user's own share.
func NewExpense(amountTHB float64, description string, cat Category, pay PaymentMethod, isSplit bool, splitCount int, rate float64, now time.Time) (Expense, error) {
	if amountTHB <= 0 || math.IsNaN(amountTHB) || math.IsInf(amountTHB, 0) {
		return Expense{}, ErrInvalidAmount
	}
	if isSplit {
		if splitCount < 2 {
			return Expense{}, ErrInvalidSplitCount
		}
	} else {
		splitCount = 1
	}
	if !cat.Valid() {
		return Expense{}, ErrInvalidCategory
	}
	if !pay.Valid() {
		return Expense{}, ErrInvalidPayment
	}

	split := amountTHB
	if isSplit {
		split = amountTHB / float64(splitCount)
	}

	return Expense{
		ID:          uuid.NewString(),
		Timestamp:   now.UnixMilli(),
		AmountTHB:   amountTHB,
		AmountHKD:   amountTHB * rate,
		Category:    cat,
		Description: strings.TrimSpace(description),
		Payment:     pay,
		IsSplit:     isSplit,
		SplitCount:  splitCount,
		SplitTHB:    split,
	}, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if e.AmountTHB <= 0 || math.IsNaN(e.AmountTHB) || math.IsInf(e.AmountTHB, 0) {
		return ErrInvalidAmount
	}
	if e.SplitCount < 1 {
		return ErrInvalidSplitCount
	}
	if !e.IsSplit && e.SplitCount != 1 {
		return ErrInvalidSplitCount
	}
	if e.IsSplit && e.SplitCount < 2 {
		return ErrInvalidSplitCount
	}
	if e.SplitTHB > e.AmountTHB {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Payment.Valid() {
		return ErrInvalidPayment
	}
	return nil
}

// Time returns the creation instant of the record.
func (e Expense) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
