/*
calculator.go - The calculation core

PURPOSE:
  Pure functions computing a tax Result from a single amount or a cart of
  line items. All arithmetic runs on decimal.Decimal; native floats never
  touch money here.

ROUNDING CONTRACT:
  Intermediate values are kept exact. When RoundToCents is set, every
  monetary field of the Result is rounded independently to 2 decimal
  places (half away from zero), exactly once, as the final step. For
  carts this means: sum exact per-line values first, round the aggregate.
  Rounding per line before summing produces different totals and is wrong.

SIGN CONTRACT:
  The formulas are sign-agnostic. A negative amount (refund/credit)
  yields a Result with every field negated consistently.

SEE ALSO:
  - config.go: Configuration
  - format.go: Currency display strings
*/
package taxes

import "github.com/shopspring/decimal"

// =============================================================================
// RESULT
// =============================================================================

// Result is the immutable outcome of a tax calculation.
type Result struct {
	// Subtotal is the pre-tax amount.
	Subtotal decimal.Decimal

	// VATAmount is the VAT charged on the subtotal.
	VATAmount decimal.Decimal

	// TurnoverTaxAmount is zero when the turnover tax is not active.
	TurnoverTaxAmount decimal.Decimal

	// TotalTaxes = VATAmount + TurnoverTaxAmount.
	TotalTaxes decimal.Decimal

	// TotalAmount = Subtotal + TotalTaxes.
	TotalAmount decimal.Decimal

	// EffectiveTaxRate = TotalTaxes / Subtotal, or zero when the subtotal
	// is zero. A ratio, not currency: it is never rounded to cents.
	EffectiveTaxRate decimal.Decimal
}

// LineItem is one cart line. Quantity may be fractional (e.g. 0.5 kg).
type LineItem struct {
	ProductID string

	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal

	// VATCategory, when non-empty, overrides the configured VAT rate for
	// this line only, resolved through the rate table.
	VATCategory VATCategory
}

// =============================================================================
// SINGLE-AMOUNT CALCULATION
// =============================================================================

// CalculateForAmount computes the tax breakdown for one amount.
//
// With TaxIncludedInPrice set, amount is a final price and the subtotal is
// backed out of it; otherwise amount is the subtotal and taxes are added
// on top.
func CalculateForAmount(amount decimal.Decimal, cfg Configuration) Result {
	effectiveRate := cfg.VATRate
	if cfg.IncludeTurnoverTax {
		effectiveRate = effectiveRate.Add(cfg.TurnoverTaxRate)
	}

	subtotal := amount
	if cfg.TaxIncludedInPrice {
		subtotal = amount.Div(one.Add(effectiveRate))
	}

	vat := subtotal.Mul(cfg.VATRate)
	turnover := decimal.Zero
	if cfg.IncludeTurnoverTax {
		turnover = subtotal.Mul(cfg.TurnoverTaxRate)
	}

	return assemble(subtotal, vat, turnover, cfg.RoundToCents)
}

// ReverseCalculation decomposes a known amount into subtotal and taxes.
//
// It is a semantic alias of CalculateForAmount: the behavior is driven
// entirely by TaxIncludedInPrice. It exists as a distinct entry point for
// callers who conceptually already hold the total, not as a different
// algorithm.
func ReverseCalculation(amount decimal.Decimal, cfg Configuration) Result {
	return CalculateForAmount(amount, cfg)
}

// =============================================================================
// CART CALCULATION
// =============================================================================

// CalculateForItems computes the aggregate tax breakdown for a cart.
//
// Each line resolves its own VAT rate (category override, else the
// configured rate) and is split into exact subtotal and VAT using that
// rate. The exact per-line values are summed before any rounding. Turnover
// tax, when active, is computed once on the aggregate subtotal; it is not
// a per-line concept.
func CalculateForItems(items []LineItem, cfg Configuration) (Result, error) {
	subtotal := decimal.Zero
	vat := decimal.Zero

	for _, item := range items {
		lineSubtotal, lineVAT, err := lineBreakdown(item, cfg)
		if err != nil {
			return Result{}, err
		}
		subtotal = subtotal.Add(lineSubtotal)
		vat = vat.Add(lineVAT)
	}

	turnover := decimal.Zero
	if cfg.IncludeTurnoverTax {
		turnover = subtotal.Mul(cfg.TurnoverTaxRate)
	}

	return assemble(subtotal, vat, turnover, cfg.RoundToCents), nil
}

// lineBreakdown returns the exact (unrounded) subtotal and VAT for one line.
func lineBreakdown(item LineItem, cfg Configuration) (decimal.Decimal, decimal.Decimal, error) {
	vatRate := cfg.VATRate
	if item.VATCategory != "" {
		rate, ok := VATRateFor(item.VATCategory)
		if !ok {
			return decimal.Zero, decimal.Zero, &ValidationError{
				ProductID: item.ProductID,
				Field:     "vat_category",
				Reason:    "unknown category " + string(item.VATCategory),
			}
		}
		vatRate = rate
	}

	lineTotal := item.Quantity.Mul(item.UnitPrice)

	lineSubtotal := lineTotal
	if cfg.TaxIncludedInPrice {
		// The line's own effective rate, turnover included when active,
		// backs the subtotal out of the inclusive line total.
		effectiveRate := vatRate
		if cfg.IncludeTurnoverTax {
			effectiveRate = effectiveRate.Add(cfg.TurnoverTaxRate)
		}
		lineSubtotal = lineTotal.Div(one.Add(effectiveRate))
	}

	return lineSubtotal, lineSubtotal.Mul(vatRate), nil
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// assemble derives the dependent fields from exact subtotal/vat/turnover
// and applies the single terminal rounding step.
func assemble(subtotal, vat, turnover decimal.Decimal, roundToCents bool) Result {
	totalTaxes := vat.Add(turnover)
	totalAmount := subtotal.Add(totalTaxes)

	effectiveRate := decimal.Zero
	if !subtotal.IsZero() {
		effectiveRate = totalTaxes.Div(subtotal)
	}

	r := Result{
		Subtotal:          subtotal,
		VATAmount:         vat,
		TurnoverTaxAmount: turnover,
		TotalTaxes:        totalTaxes,
		TotalAmount:       totalAmount,
		EffectiveTaxRate:  effectiveRate,
	}

	if roundToCents {
		// Each monetary field rounds independently from its exact value, so
		// TotalAmount may differ from Subtotal+TotalTaxes by a cent.
		r.Subtotal = r.Subtotal.Round(2)
		r.VATAmount = r.VATAmount.Round(2)
		r.TurnoverTaxAmount = r.TurnoverTaxAmount.Round(2)
		r.TotalTaxes = r.TotalTaxes.Round(2)
		r.TotalAmount = r.TotalAmount.Round(2)
	}

	return r
}
