package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooladgaran/campane-backend/pkg/enums"
)

var (
	productA = uuid.New()
	productB = uuid.New()
)

func catalog() []CatalogEntry {
	return []CatalogEntry{
		{ID: productA, Name: "Press 20T", UnitPrice: 50_000},
		{ID: productB, Name: "Lathe 1.5m", UnitPrice: 250_000},
	}
}

func dualRateTiers() []Tier {
	return []Tier{
		{Title: "Bronze", MinQty: 12, CashDiscountPercent: 5, CheckDiscountPercent: 7},
		{Title: "Silver", MinQty: 24, CashDiscountPercent: 10, CheckDiscountPercent: 12},
	}
}

func TestPriceCashDiscountAtFirstTier(t *testing.T) {
	// 10×50k + 2×250k = 1,000,000 at 12 units.
	items := map[uuid.UUID]int{productA: 10, productB: 2}

	summary := Price(items, catalog(), dualRateTiers(), enums.PaymentTypeCash)

	assert.Equal(t, 12, summary.TotalQuantity)
	assert.Equal(t, int64(1_000_000), summary.Subtotal)
	require.NotNil(t, summary.Achieved)
	assert.Equal(t, "Bronze", summary.Achieved.Title)
	assert.Equal(t, float64(5), summary.DiscountPercent)
	assert.Equal(t, int64(50_000), summary.DiscountAmount)
	assert.Equal(t, int64(950_000), summary.PayableAmount)
}

func TestPriceCheckDiscountUsesDeferredRate(t *testing.T) {
	items := map[uuid.UUID]int{productA: 10, productB: 2}

	summary := Price(items, catalog(), dualRateTiers(), enums.PaymentTypeCheck)

	assert.Equal(t, float64(7), summary.DiscountPercent)
	assert.Equal(t, int64(70_000), summary.DiscountAmount)
	assert.Equal(t, int64(930_000), summary.PayableAmount)
}

func TestPricePreviewDefaultsToCashRate(t *testing.T) {
	items := map[uuid.UUID]int{productA: 10, productB: 2}

	summary := Price(items, catalog(), dualRateTiers(), "")

	assert.Nil(t, summary.PaymentType)
	assert.Equal(t, float64(5), summary.DiscountPercent)
}

func TestPriceBelowSecondTier(t *testing.T) {
	items := map[uuid.UUID]int{productA: 23}

	summary := Price(items, catalog(), dualRateTiers(), enums.PaymentTypeCash)

	require.NotNil(t, summary.Achieved)
	assert.Equal(t, "Bronze", summary.Achieved.Title)
	require.NotNil(t, summary.Next)
	assert.Equal(t, "Silver", summary.Next.Title)
	assert.Equal(t, 1, summary.RemainingToNext)
	assert.InDelta(t, 23.0/24.0*100, summary.ProgressPercent, 1e-9)
}

func TestPriceZeroQuantities(t *testing.T) {
	summary := Price(map[uuid.UUID]int{}, catalog(), dualRateTiers(), enums.PaymentTypeCash)

	assert.Equal(t, 0, summary.TotalQuantity)
	assert.Equal(t, int64(0), summary.Subtotal)
	assert.Nil(t, summary.Achieved)
	assert.Equal(t, int64(0), summary.DiscountAmount)
	assert.Equal(t, int64(0), summary.PayableAmount)
}

func TestPriceIgnoresNonPositiveAndUnknownProducts(t *testing.T) {
	items := map[uuid.UUID]int{
		productA:   6,
		productB:   0,
		uuid.New(): 40, // not in catalog
	}

	summary := Price(items, catalog(), dualRateTiers(), enums.PaymentTypeCash)

	assert.Equal(t, 6, summary.TotalQuantity)
	assert.Equal(t, int64(300_000), summary.Subtotal)
	assert.Nil(t, summary.Achieved)
}

func TestPricePayableNeverNegative(t *testing.T) {
	tiers := []Tier{{Title: "Everything", MinQty: 1, CashDiscountPercent: 100, CheckDiscountPercent: 100}}
	items := map[uuid.UUID]int{productA: 3}

	summary := Price(items, catalog(), tiers, enums.PaymentTypeCash)

	assert.Equal(t, summary.Subtotal, summary.DiscountAmount)
	assert.Equal(t, int64(0), summary.PayableAmount)
}

func TestPriceFractionalRateRoundsToWholeToman(t *testing.T) {
	tiers := []Tier{{Title: "Odd", MinQty: 1, CashDiscountPercent: 7.5, CheckDiscountPercent: 7.5}}
	items := map[uuid.UUID]int{productA: 1} // subtotal 50,000

	summary := Price(items, catalog(), tiers, enums.PaymentTypeCash)

	assert.Equal(t, int64(3_750), summary.DiscountAmount)
	assert.Equal(t, int64(46_250), summary.PayableAmount)
}
