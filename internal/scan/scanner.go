// Package scan provides the optional receipt-scanning collaborator. Given a
// base64-encoded image it either extracts structured expense fields or
// reports nothing; callers treat nothing as a no-op, leaving the form
// untouched.
package scan

import (
	"context"

	"satang/internal/core"
)

// Result is the structured extraction from a receipt image.
type Result struct {
	AmountTHB   float64
	Category    core.Category
	Description string
}

// Scanner extracts expense fields from a receipt image. A nil Result with a
// nil error means "could not extract"; an error means the collaborator
// failed. Both are treated the same by the calling flow.
type Scanner interface {
	Scan(ctx context.Context, imageBase64, mimeType string) (*Result, error)
}

// Disabled is the scanner used when no API key is configured; the feature is
// simply unavailable.
type Disabled struct{}

func (Disabled) Scan(context.Context, string, string) (*Result, error) {
	return nil, nil
}
