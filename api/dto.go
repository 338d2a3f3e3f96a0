/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY OVER THE WIRE:
  Amounts, prices and rates travel as JSON numbers (or numeric strings)
  and are parsed straight into decimal.Decimal from their literal text,
  never through a float64. Responses carry decimals as strings so clients
  receive the exact values the engine produced.

MISSING VS INVALID:
  Numeric request fields are *json.Number pointers: a missing field stays
  nil and maps to a validation error, a non-numeric value fails at decode
  or parse time. Both surface as HTTP 400.

SEE ALSO:
  - handlers.go: Uses these types
  - taxes: Domain types these convert to/from
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gastroboard/tax-engine/store/sqlite"
	"github.com/gastroboard/tax-engine/taxes"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CalculateRequest asks for a single-amount breakdown. Config, when
// present, is merged over the facade's current default for this call only.
type CalculateRequest struct {
	Amount *json.Number     `json:"amount"`
	Config *ConfigUpdateDTO `json:"config,omitempty"`
}

// CartRequest asks for an aggregate cart breakdown.
type CartRequest struct {
	Items  []LineItemDTO    `json:"items"`
	Config *ConfigUpdateDTO `json:"config,omitempty"`
}

// LineItemDTO is one cart line as sent by the checkout UI.
type LineItemDTO struct {
	ProductID   string       `json:"product_id"`
	Quantity    *json.Number `json:"quantity"`
	UnitPrice   *json.Number `json:"unit_price"`
	VATCategory string       `json:"vat_category,omitempty"`
}

func (d LineItemDTO) toDomain() (taxes.LineItem, error) {
	quantity, err := requireNumber(d.Quantity, d.ProductID, "quantity")
	if err != nil {
		return taxes.LineItem{}, err
	}
	unitPrice, err := requireNumber(d.UnitPrice, d.ProductID, "unit_price")
	if err != nil {
		return taxes.LineItem{}, err
	}
	return taxes.LineItem{
		ProductID:   d.ProductID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		VATCategory: taxes.VATCategory(d.VATCategory),
	}, nil
}

func requireNumber(n *json.Number, productID, field string) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Zero, &taxes.ValidationError{ProductID: productID, Field: field, Reason: "missing"}
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, &taxes.ValidationError{ProductID: productID, Field: field, Reason: "not a number"}
	}
	return d, nil
}

// ConfigUpdateDTO is a partial configuration, used both as a per-request
// override and as the PUT /api/tax/config body. Nil fields stay unchanged.
type ConfigUpdateDTO struct {
	VATRate            *json.Number `json:"vat_rate,omitempty"`
	IncludeTurnoverTax *bool        `json:"include_turnover_tax,omitempty"`
	TurnoverTaxRate    *json.Number `json:"turnover_tax_rate,omitempty"`
	TaxIncludedInPrice *bool        `json:"tax_included_in_price,omitempty"`
	RoundToCents       *bool        `json:"round_to_cents,omitempty"`
}

func (d ConfigUpdateDTO) toUpdate() (taxes.ConfigUpdate, error) {
	update := taxes.ConfigUpdate{
		IncludeTurnoverTax: d.IncludeTurnoverTax,
		TaxIncludedInPrice: d.TaxIncludedInPrice,
		RoundToCents:       d.RoundToCents,
	}
	if d.VATRate != nil {
		rate, err := decimal.NewFromString(d.VATRate.String())
		if err != nil {
			return taxes.ConfigUpdate{}, &taxes.ValidationError{Field: "vat_rate", Reason: "not a number"}
		}
		update.VATRate = &rate
	}
	if d.TurnoverTaxRate != nil {
		rate, err := decimal.NewFromString(d.TurnoverTaxRate.String())
		if err != nil {
			return taxes.ConfigUpdate{}, &taxes.ValidationError{Field: "turnover_tax_rate", Reason: "not a number"}
		}
		update.TurnoverTaxRate = &rate
	}
	return update, nil
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultDTO carries a tax breakdown: exact decimal strings plus the
// ready-to-render display variant.
type ResultDTO struct {
	Subtotal          string        `json:"subtotal"`
	VATAmount         string        `json:"vat_amount"`
	TurnoverTaxAmount string        `json:"turnover_tax_amount"`
	TotalTaxes        string        `json:"total_taxes"`
	TotalAmount       string        `json:"total_amount"`
	EffectiveTaxRate  string        `json:"effective_tax_rate"`
	Display           taxes.Display `json:"display"`
}

func toResultDTO(r taxes.Result) ResultDTO {
	return ResultDTO{
		Subtotal:          r.Subtotal.String(),
		VATAmount:         r.VATAmount.String(),
		TurnoverTaxAmount: r.TurnoverTaxAmount.String(),
		TotalTaxes:        r.TotalTaxes.String(),
		TotalAmount:       r.TotalAmount.String(),
		EffectiveTaxRate:  r.EffectiveTaxRate.String(),
		Display:           taxes.FormatDisplay(r),
	}
}

// ConfigDTO is the full current configuration in API responses.
type ConfigDTO struct {
	VATRate            string `json:"vat_rate"`
	IncludeTurnoverTax bool   `json:"include_turnover_tax"`
	TurnoverTaxRate    string `json:"turnover_tax_rate"`
	TaxIncludedInPrice bool   `json:"tax_included_in_price"`
	RoundToCents       bool   `json:"round_to_cents"`
}

func toConfigDTO(cfg taxes.Configuration) ConfigDTO {
	return ConfigDTO{
		VATRate:            cfg.VATRate.String(),
		IncludeTurnoverTax: cfg.IncludeTurnoverTax,
		TurnoverTaxRate:    cfg.TurnoverTaxRate.String(),
		TaxIncludedInPrice: cfg.TaxIncludedInPrice,
		RoundToCents:       cfg.RoundToCents,
	}
}

// RatesDTO lists the static rate table for the settings UI.
type RatesDTO struct {
	VAT         map[string]string `json:"vat"`
	TurnoverTax map[string]string `json:"turnover_tax"`
}

// SaleItemDTO is one persisted cart line in sale responses.
type SaleItemDTO struct {
	ProductID   string `json:"product_id"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	VATCategory string `json:"vat_category,omitempty"`
}

// SaleDTO is a finalized sale with its stored breakdown.
type SaleDTO struct {
	ID        string        `json:"id"`
	CreatedAt string        `json:"created_at"`
	Items     []SaleItemDTO `json:"items"`
	Totals    ResultDTO     `json:"totals"`
}

func toSaleDTO(sale sqlite.SaleRecord) SaleDTO {
	items := make([]SaleItemDTO, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemDTO{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			VATCategory: item.VATCategory,
		}
	}
	return SaleDTO{
		ID:        sale.ID,
		CreatedAt: sale.CreatedAt.Format(time.RFC3339),
		Items:     items,
		Totals:    toResultDTO(sale.Result),
	}
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
