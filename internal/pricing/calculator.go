package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// CatalogEntry is the priced product surface the calculator works against.
// UnitPrice is in whole toman.
type CatalogEntry struct {
	ID        uuid.UUID
	Name      string
	UnitPrice int64
}

// Summary is the full pricing picture for one desired-quantity map. All
// amounts are whole toman.
type Summary struct {
	TotalQuantity   int                `json:"total_quantity"`
	Subtotal        int64              `json:"subtotal"`
	Achieved        *Tier              `json:"achieved_tier,omitempty"`
	Next            *Tier              `json:"next_tier,omitempty"`
	RemainingToNext int                `json:"remaining_to_next"`
	ProgressPercent float64            `json:"progress_percent"`
	DiscountPercent float64            `json:"discount_percent"`
	DiscountAmount  int64              `json:"discount_amount"`
	PayableAmount   int64              `json:"payable_amount"`
	PaymentType     *enums.PaymentType `json:"payment_type,omitempty"`
}

var oneHundred = decimal.NewFromInt(100)

// Price combines desired quantities with the catalog and tier ladder into a
// payable amount. Pure: no I/O, safe to run on every keystroke. Quantities
// below 1 and ids absent from the catalog contribute nothing. An empty
// method previews with the cash rate; once the buyer settles on a method the
// matching rate replaces the preview.
func Price(items map[uuid.UUID]int, catalog []CatalogEntry, tiers []Tier, method enums.PaymentType) Summary {
	summary := Summary{}
	if method.IsValid() {
		m := method
		summary.PaymentType = &m
	}

	for _, entry := range catalog {
		qty := items[entry.ID]
		if qty <= 0 {
			continue
		}
		summary.TotalQuantity += qty
		summary.Subtotal += int64(qty) * entry.UnitPrice
	}

	res := Resolve(summary.TotalQuantity, tiers)
	summary.Achieved = res.Achieved
	summary.Next = res.Next
	summary.RemainingToNext = res.RemainingToNext
	summary.ProgressPercent = res.ProgressPercent

	if res.Achieved != nil && summary.Subtotal > 0 {
		summary.DiscountPercent = res.Achieved.Rate(method)
		summary.DiscountAmount = discountAmount(summary.Subtotal, summary.DiscountPercent)
	}

	summary.PayableAmount = summary.Subtotal - summary.DiscountAmount
	if summary.PayableAmount < 0 {
		summary.PayableAmount = 0
	}

	return summary
}

// discountAmount computes subtotal × percent/100 in decimal space and rounds
// to whole toman, so rates like 7.5% never accumulate float drift.
func discountAmount(subtotal int64, percent float64) int64 {
	if subtotal <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(percent)).
		Div(oneHundred).
		Round(0).
		IntPart()
}
