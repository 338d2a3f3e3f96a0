/*
config.go - Tax configuration value object

PURPOSE:
  Configuration describes which taxes are active, their rates, and whether
  incoming amounts already include tax. It is a plain value: calculations
  take a copy, and the Service facade replaces its stored copy wholesale
  on update rather than mutating fields in place.

INVARIANTS (enforced at construction and update):
  - VATRate in [0, 1] inclusive (1.0 is a valid 100% tax)
  - TurnoverTaxRate >= 0

SEE ALSO:
  - rates.go: Default rates
  - service.go: Mutable default configuration with partial updates
*/
package taxes

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// Configuration describes the active taxes for a calculation.
type Configuration struct {
	// VATRate is applied to the subtotal. Must be in [0, 1].
	VATRate decimal.Decimal

	// IncludeTurnoverTax enables the secondary turnover tax.
	IncludeTurnoverTax bool

	// TurnoverTaxRate is ignored unless IncludeTurnoverTax is set. Must be >= 0.
	TurnoverTaxRate decimal.Decimal

	// TaxIncludedInPrice treats incoming amounts as tax-inclusive final
	// prices; when false they are pre-tax subtotals.
	TaxIncludedInPrice bool

	// RoundToCents rounds the monetary fields of a Result to 2 decimal
	// places. The effective tax rate is never rounded.
	RoundToCents bool
}

// DefaultConfiguration returns the standard setup: standard VAT, no turnover
// tax, tax-exclusive prices, rounding on.
func DefaultConfiguration() Configuration {
	return Configuration{
		VATRate:      vatRates[VATStandard],
		RoundToCents: true,
	}
}

// NewConfiguration builds a validated configuration.
func NewConfiguration(vatRate decimal.Decimal, includeTurnoverTax bool, turnoverTaxRate decimal.Decimal, taxIncludedInPrice bool) (Configuration, error) {
	cfg := Configuration{
		VATRate:            vatRate,
		IncludeTurnoverTax: includeTurnoverTax,
		TurnoverTaxRate:    turnoverTaxRate,
		TaxIncludedInPrice: taxIncludedInPrice,
		RoundToCents:       true,
	}
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Validate checks the rate invariants.
func (c Configuration) Validate() error {
	if c.VATRate.IsNegative() || c.VATRate.GreaterThan(one) {
		return &ConfigurationError{Field: "vat_rate", Value: c.VATRate, Reason: "must be between 0 and 1"}
	}
	if c.TurnoverTaxRate.IsNegative() {
		return &ConfigurationError{Field: "turnover_tax_rate", Value: c.TurnoverTaxRate, Reason: "must not be negative"}
	}
	return nil
}

// ConfigUpdate is a partial configuration: nil fields are left unchanged
// when merged into an existing configuration.
type ConfigUpdate struct {
	VATRate            *decimal.Decimal
	IncludeTurnoverTax *bool
	TurnoverTaxRate    *decimal.Decimal
	TaxIncludedInPrice *bool
	RoundToCents       *bool
}

// Merge applies the update on top of c and validates the merged result.
// c itself is never modified; an invalid merge leaves the caller's
// configuration untouched.
func (c Configuration) Merge(u ConfigUpdate) (Configuration, error) {
	merged := c
	if u.VATRate != nil {
		merged.VATRate = *u.VATRate
	}
	if u.IncludeTurnoverTax != nil {
		merged.IncludeTurnoverTax = *u.IncludeTurnoverTax
	}
	if u.TurnoverTaxRate != nil {
		merged.TurnoverTaxRate = *u.TurnoverTaxRate
	}
	if u.TaxIncludedInPrice != nil {
		merged.TaxIncludedInPrice = *u.TaxIncludedInPrice
	}
	if u.RoundToCents != nil {
		merged.RoundToCents = *u.RoundToCents
	}
	if err := merged.Validate(); err != nil {
		return Configuration{}, err
	}
	return merged, nil
}
