package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ladder() []Tier {
	return []Tier{
		{Title: "Bronze", MinQty: 12, CashDiscountPercent: 5, CheckDiscountPercent: 7},
		{Title: "Silver", MinQty: 24, CashDiscountPercent: 10, CheckDiscountPercent: 12},
		{Title: "Gold", MinQty: 48, CashDiscountPercent: 15, CheckDiscountPercent: 18},
	}
}

func TestResolveEmptyLadder(t *testing.T) {
	res := Resolve(10, nil)
	assert.Nil(t, res.Achieved)
	assert.Nil(t, res.Next)
	assert.Equal(t, 0, res.RemainingToNext)
	assert.Equal(t, float64(0), res.ProgressPercent)
}

func TestResolveBelowFirstThreshold(t *testing.T) {
	res := Resolve(5, ladder())
	assert.Nil(t, res.Achieved)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Bronze", res.Next.Title)
	assert.Equal(t, 7, res.RemainingToNext)
	assert.InDelta(t, 5.0/12.0*100, res.ProgressPercent, 1e-9)
}

func TestResolveThresholdIsInclusive(t *testing.T) {
	res := Resolve(12, ladder())
	require.NotNil(t, res.Achieved)
	assert.Equal(t, "Bronze", res.Achieved.Title)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Silver", res.Next.Title)
	assert.Equal(t, 12, res.RemainingToNext)
}

func TestResolveJustBelowSecondTier(t *testing.T) {
	res := Resolve(23, ladder())
	require.NotNil(t, res.Achieved)
	assert.Equal(t, "Bronze", res.Achieved.Title)
	require.NotNil(t, res.Next)
	assert.Equal(t, "Silver", res.Next.Title)
	assert.Equal(t, 1, res.RemainingToNext)
	assert.InDelta(t, 23.0/24.0*100, res.ProgressPercent, 1e-9)
}

func TestResolveTopTier(t *testing.T) {
	res := Resolve(60, ladder())
	require.NotNil(t, res.Achieved)
	assert.Equal(t, "Gold", res.Achieved.Title)
	assert.Nil(t, res.Next)
	assert.Equal(t, 0, res.RemainingToNext)
	assert.Equal(t, float64(100), res.ProgressPercent)
}

func TestResolveDuplicateThresholdTakesLaterEntry(t *testing.T) {
	tiers := []Tier{
		{Title: "A", MinQty: 12, CashDiscountPercent: 5, CheckDiscountPercent: 5},
		{Title: "B", MinQty: 12, CashDiscountPercent: 6, CheckDiscountPercent: 6},
	}
	res := Resolve(12, tiers)
	require.NotNil(t, res.Achieved)
	assert.Equal(t, "B", res.Achieved.Title)
}

func TestResolveAchievedNeverDowngrades(t *testing.T) {
	tiers := ladder()
	prev := -1
	for qty := 0; qty <= 100; qty++ {
		res := Resolve(qty, tiers)
		rank := -1
		if res.Achieved != nil {
			for i := range tiers {
				if tiers[i].Title == res.Achieved.Title {
					rank = i
				}
			}
		}
		require.GreaterOrEqual(t, rank, prev, "achieved tier downgraded at qty=%d", qty)
		prev = rank
	}
}

func TestSpanProgress(t *testing.T) {
	tiers := ladder()

	// 18 sits halfway between the 12 and 24 thresholds.
	assert.InDelta(t, 50, SpanProgress(18, tiers), 1e-9)
	// Below the first tier the span starts at zero.
	assert.InDelta(t, 6.0/12.0*100, SpanProgress(6, tiers), 1e-9)
	// Top tier reached.
	assert.Equal(t, float64(100), SpanProgress(48, tiers))
	assert.Equal(t, float64(0), SpanProgress(10, nil))
}

func TestMinThresholdAndDualRates(t *testing.T) {
	assert.Equal(t, 12, MinThreshold(ladder()))
	assert.Equal(t, 0, MinThreshold(nil))
	assert.True(t, HasDualRates(ladder()))
	assert.False(t, HasDualRates([]Tier{{Title: "Flat", MinQty: 10, CashDiscountPercent: 5, CheckDiscountPercent: 5}}))
}
