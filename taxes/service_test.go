package taxes_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastroboard/tax-engine/taxes"
)

// =============================================================================
// FACADE CONFIGURATION LIFECYCLE
// =============================================================================

func TestService_UpdateConfiguration_ReplacesDefault(t *testing.T) {
	svc := taxes.NewDefaultService()

	err := svc.UpdateConfiguration(taxes.ConfigUpdate{
		VATRate:            decPtr("0.105"),
		TaxIncludedInPrice: boolPtr(true),
	})
	require.NoError(t, err)

	cfg := svc.Configuration()
	assert.True(t, cfg.VATRate.Equal(dec("0.105")))
	assert.True(t, cfg.TaxIncludedInPrice)

	// Calculations now use the updated default.
	r := svc.CalculateForAmount(dec("110.5"))
	assert.Equal(t, "100.00", r.Subtotal.StringFixed(2))
	assert.Equal(t, "10.50", r.VATAmount.StringFixed(2))
}

func TestService_UpdateConfiguration_InvalidMergeKeepsOldConfig(t *testing.T) {
	svc := taxes.NewDefaultService()
	before := svc.Configuration()

	err := svc.UpdateConfiguration(taxes.ConfigUpdate{VATRate: decPtr("2")})

	require.Error(t, err)
	assert.ErrorIs(t, err, taxes.ErrInvalidConfiguration)
	assert.Equal(t, before, svc.Configuration(), "failed update must not change state")
}

func TestService_Configuration_ReturnsDetachedCopy(t *testing.T) {
	svc := taxes.NewDefaultService()

	cfg := svc.Configuration()
	cfg.VATRate = dec("0.99")
	cfg.TaxIncludedInPrice = true

	fresh := svc.Configuration()
	assert.True(t, fresh.VATRate.Equal(taxes.DefaultConfiguration().VATRate),
		"mutating the returned copy must not leak into the facade")
	assert.False(t, fresh.TaxIncludedInPrice)
}

func TestNewService_RejectsInvalidConfiguration(t *testing.T) {
	cfg := taxes.DefaultConfiguration()
	cfg.VATRate = dec("-1")

	_, err := taxes.NewService(cfg)

	assert.ErrorIs(t, err, taxes.ErrInvalidConfiguration)
}

func TestService_ConcurrentUpdatesAndCalculations(t *testing.T) {
	// Readers must always observe a complete configuration: every
	// calculation comes out internally consistent even while the default
	// is being swapped.

	svc := taxes.NewDefaultService()
	rates := []string{"0", "0.105", "0.21", "1"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = svc.UpdateConfiguration(taxes.ConfigUpdate{
					VATRate: decPtr(rates[(i+j)%len(rates)]),
				})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r := svc.CalculateForAmount(dec("100"))
				// Whatever rate was in force, the result is self-consistent.
				assert.True(t, r.TotalAmount.Equal(r.Subtotal.Add(r.TotalTaxes)))
			}
		}()
	}
	wg.Wait()

	assert.NoError(t, svc.Configuration().Validate())
}

// =============================================================================
// STATELESS HELPERS
// =============================================================================

func TestCalculateTaxes_NilConfigUsesDefault(t *testing.T) {
	r := taxes.CalculateTaxes(dec("100"), nil)

	assert.Equal(t, "21.00", r.VATAmount.StringFixed(2))
	assert.Equal(t, "121.00", r.TotalAmount.StringFixed(2))
}

func TestCalculateTaxes_ExplicitConfig(t *testing.T) {
	cfg := inclusiveConfig("0.21")

	r := taxes.CalculateTaxes(dec("121"), &cfg)

	assertDecimalEqual(t, "100", r.Subtotal, "subtotal")
}

func TestCalculateCartTaxes_NilConfigUsesDefault(t *testing.T) {
	items := []taxes.LineItem{
		{ProductID: "a", Quantity: dec("2"), UnitPrice: dec("50")},
	}

	r, err := taxes.CalculateCartTaxes(items, nil)
	require.NoError(t, err)

	assertDecimalEqual(t, "100", r.Subtotal, "subtotal")
	assertDecimalEqual(t, "21", r.VATAmount, "vat")
}

func TestGetTaxAmountAndSubtotal_TaxInclusiveInterpretation(t *testing.T) {
	// Both helpers read their argument as a tax-inclusive total at the
	// default VAT rate.

	assertDecimalEqual(t, "21", taxes.GetTaxAmount(dec("121")), "tax amount")
	assertDecimalEqual(t, "100", taxes.GetSubtotal(dec("121")), "subtotal")

	// They decompose the same total consistently.
	sum := taxes.GetTaxAmount(dec("121")).Add(taxes.GetSubtotal(dec("121")))
	assertDecimalEqual(t, "121", sum, "decomposition")
}
