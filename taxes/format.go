// format.go - Currency display strings for a Result.
//
// The formatter is the only place the engine produces display-oriented
// values; everything upstream stays in decimal.Decimal.
package taxes

const currencySymbol = "$"

// Display holds the currency-formatted fields of a Result. Every field is
// always present: an inactive turnover tax formats as the zero string, it
// is never omitted.
type Display struct {
	Subtotal          string `json:"subtotal"`
	VATAmount         string `json:"vat_amount"`
	TurnoverTaxAmount string `json:"turnover_tax_amount"`
	TotalTaxes        string `json:"total_taxes"`
	TotalAmount       string `json:"total_amount"`
}

// FormatDisplay renders each monetary field with a currency symbol and
// exactly two decimal places.
func FormatDisplay(r Result) Display {
	return Display{
		Subtotal:          currencySymbol + r.Subtotal.StringFixed(2),
		VATAmount:         currencySymbol + r.VATAmount.StringFixed(2),
		TurnoverTaxAmount: currencySymbol + r.TurnoverTaxAmount.StringFixed(2),
		TotalTaxes:        currencySymbol + r.TotalTaxes.StringFixed(2),
		TotalAmount:       currencySymbol + r.TotalAmount.StringFixed(2),
	}
}
