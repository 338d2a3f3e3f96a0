/*
errors.go - Error types for the tax engine

ERROR CATEGORIES:
  1. Configuration errors - Invalid rates at construction or update time
  2. Validation errors - Malformed line items in cart calculations

Everything else is valid input: zero amounts, negative amounts (refunds),
very large amounts, and a 100% rate are all handled by the arithmetic and
never escalate to an error.

USAGE:
  Callers can match with errors.Is / errors.As:

    if errors.Is(err, taxes.ErrInvalidConfiguration) { ... }

    var verr *taxes.ValidationError
    if errors.As(err, &verr) { ... }
*/
package taxes

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned when a configuration violates the
	// rate invariants (VAT rate outside [0,1], negative turnover rate).
	// Callers should treat it as a programming/configuration-data error,
	// not something to retry.
	ErrInvalidConfiguration = errors.New("invalid tax configuration")

	// ErrInvalidLineItem is returned when a cart line item is malformed
	// (unknown VAT category, missing or non-numeric quantity/unit price).
	ErrInvalidLineItem = errors.New("invalid line item")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError reports which configuration field violated an invariant.
type ConfigurationError struct {
	Field  string
	Value  decimal.Decimal
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration field %s = %s: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ValidationError reports a malformed line item. ProductID may be empty when
// the item had none.
type ValidationError struct {
	ProductID string
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("line item field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("line item %s field %s: %s", e.ProductID, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidLineItem
}
