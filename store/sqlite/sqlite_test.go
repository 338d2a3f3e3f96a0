package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastroboard/tax-engine/store/sqlite"
	"github.com/gastroboard/tax-engine/taxes"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSaveSale_RoundTripsResultVerbatim(t *testing.T) {
	// GIVEN: A finalized sale with a computed breakdown
	store := newTestStore(t)
	ctx := context.Background()

	cfg := taxes.DefaultConfiguration()
	cfg.TaxIncludedInPrice = true
	items := []taxes.LineItem{
		{ProductID: "espresso", Quantity: dec("2"), UnitPrice: dec("3.30"), VATCategory: taxes.VATStandard},
		{ProductID: "croissant", Quantity: dec("1"), UnitPrice: dec("2.21"), VATCategory: taxes.VATReduced},
	}
	result, err := taxes.CalculateForItems(items, cfg)
	require.NoError(t, err)

	sale := sqlite.SaleRecord{
		ID:        "sale-1",
		CreatedAt: time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC),
		Items: []sqlite.SaleItemRecord{
			{ProductID: "espresso", Quantity: dec("2"), UnitPrice: dec("3.30"), VATCategory: string(taxes.VATStandard)},
			{ProductID: "croissant", Quantity: dec("1"), UnitPrice: dec("2.21"), VATCategory: string(taxes.VATReduced)},
		},
		Result: result,
	}

	// WHEN: Saving and reloading
	require.NoError(t, store.SaveSale(ctx, sale))
	loaded, err := store.GetSale(ctx, "sale-1")
	require.NoError(t, err)

	// THEN: Every numeric field comes back exactly as computed
	assert.True(t, loaded.Result.Subtotal.Equal(result.Subtotal), "subtotal")
	assert.True(t, loaded.Result.VATAmount.Equal(result.VATAmount), "vat")
	assert.True(t, loaded.Result.TurnoverTaxAmount.Equal(result.TurnoverTaxAmount), "turnover")
	assert.True(t, loaded.Result.TotalTaxes.Equal(result.TotalTaxes), "total taxes")
	assert.True(t, loaded.Result.TotalAmount.Equal(result.TotalAmount), "total")
	assert.True(t, loaded.Result.EffectiveTaxRate.Equal(result.EffectiveTaxRate), "effective rate")

	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "espresso", loaded.Items[0].ProductID)
	assert.True(t, loaded.Items[0].Quantity.Equal(dec("2")))
	assert.True(t, loaded.Items[1].UnitPrice.Equal(dec("2.21")))
	assert.True(t, loaded.CreatedAt.Equal(sale.CreatedAt))
}

func TestGetSale_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSale(context.Background(), "nope")

	assert.ErrorIs(t, err, sqlite.ErrSaleNotFound)
}

func TestListSales_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"sale-old", "sale-mid", "sale-new"} {
		sale := sqlite.SaleRecord{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Result:    taxes.CalculateForAmount(dec("100"), taxes.DefaultConfiguration()),
		}
		require.NoError(t, store.SaveSale(ctx, sale))
	}

	sales, err := store.ListSales(ctx)
	require.NoError(t, err)

	require.Len(t, sales, 3)
	assert.Equal(t, "sale-new", sales[0].ID)
	assert.Equal(t, "sale-old", sales[2].ID)
}

func TestSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Nothing persisted yet.
	_, found, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	cfg, err := taxes.NewConfiguration(dec("0.105"), true, dec("0.035"), true)
	require.NoError(t, err)
	require.NoError(t, store.SaveSettings(ctx, cfg))

	loaded, found, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, loaded.VATRate.Equal(dec("0.105")))
	assert.True(t, loaded.IncludeTurnoverTax)
	assert.True(t, loaded.TurnoverTaxRate.Equal(dec("0.035")))
	assert.True(t, loaded.TaxIncludedInPrice)
	assert.True(t, loaded.RoundToCents)

	// Upsert replaces, never accumulates rows.
	cfg.IncludeTurnoverTax = false
	require.NoError(t, store.SaveSettings(ctx, cfg))
	loaded, found, err = store.LoadSettings(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, loaded.IncludeTurnoverTax)
}
