/*
Package taxes implements the sales-tax calculation engine.

PURPOSE:
  This package computes tax breakdowns (VAT plus an optional turnover tax)
  for single amounts and multi-line carts, in both tax-inclusive and
  tax-exclusive pricing regimes. The same formulas run forward (add taxes
  on top of a subtotal) and in reverse (back taxes out of a known total).

KEY CONCEPTS IN THIS FILE (rates.go):
  - VATCategory: Named VAT tiers (standard, reduced, exempt)
  - TurnoverRegion: Jurisdictions for the secondary turnover tax
  - Rate lookups: Static registry, no runtime failure modes

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal everywhere; rounding happens exactly
     once, at the end of a calculation, never per intermediate step
  2. Immutability: Results are values; the engine keeps no reference to them
  3. Sign-agnostic: Negative amounts (refunds) flow through every formula

USAGE:
  cfg := taxes.DefaultConfiguration()
  result := taxes.CalculateForAmount(decimal.NewFromInt(100), cfg)
  display := taxes.FormatDisplay(result)

SEE ALSO:
  - config.go: Configuration value object and validation
  - calculator.go: The calculation core
  - service.go: Stateful facade with a mutable default configuration
*/
package taxes

import "github.com/shopspring/decimal"

// =============================================================================
// VAT TIERS
// =============================================================================

// VATCategory names a VAT tier. Line items may carry one to override the
// configured rate for that line only.
type VATCategory string

const (
	VATStandard VATCategory = "standard"
	VATReduced  VATCategory = "reduced"
	VATExempt   VATCategory = "exempt"
)

var vatRates = map[VATCategory]decimal.Decimal{
	VATStandard: decimal.New(21, -2),  // 0.21
	VATReduced:  decimal.New(105, -3), // 0.105
	VATExempt:   decimal.Zero,
}

// VATRateFor looks up the rate for a VAT category. The registry itself never
// fails; unknown categories are rejected at the configuration/line-item
// boundary, which is why this returns an ok flag instead of an error.
func VATRateFor(category VATCategory) (decimal.Decimal, bool) {
	rate, ok := vatRates[category]
	return rate, ok
}

// =============================================================================
// TURNOVER TAX TIERS
// =============================================================================

// TurnoverRegion names a jurisdiction for the turnover tax.
type TurnoverRegion string

const (
	TurnoverRegionA TurnoverRegion = "region_a"
	TurnoverRegionB TurnoverRegion = "region_b"
)

var turnoverRates = map[TurnoverRegion]decimal.Decimal{
	TurnoverRegionA: decimal.New(3, -2),  // 0.03
	TurnoverRegionB: decimal.New(35, -3), // 0.035
}

// TurnoverRateFor looks up the turnover-tax rate for a region.
func TurnoverRateFor(region TurnoverRegion) (decimal.Decimal, bool) {
	rate, ok := turnoverRates[region]
	return rate, ok
}

// VATCategories returns every known VAT category with its rate.
// Used by the settings UI to populate rate pickers.
func VATCategories() map[VATCategory]decimal.Decimal {
	out := make(map[VATCategory]decimal.Decimal, len(vatRates))
	for k, v := range vatRates {
		out[k] = v
	}
	return out
}

// TurnoverRegions returns every known turnover-tax region with its rate.
func TurnoverRegions() map[TurnoverRegion]decimal.Decimal {
	out := make(map[TurnoverRegion]decimal.Decimal, len(turnoverRates))
	for k, v := range turnoverRates {
		out[k] = v
	}
	return out
}
