package pricing

import "github.com/pooladgaran/campane-backend/pkg/enums"

// Tier is one normalized discount tier. Rates are percentages in [0,100];
// single-rate campaigns carry the same value for both settlement methods.
type Tier struct {
	Title                string
	MinQty               int
	CashDiscountPercent  float64
	CheckDiscountPercent float64
}

// Rate returns the discount percentage for the chosen settlement method.
// An empty method previews with the cash rate.
func (t Tier) Rate(method enums.PaymentType) float64 {
	if method == enums.PaymentTypeCheck {
		return t.CheckDiscountPercent
	}
	return t.CashDiscountPercent
}

// Resolution describes where a quantity sits relative to a tier ladder.
type Resolution struct {
	Achieved        *Tier
	Next            *Tier
	RemainingToNext int
	ProgressPercent float64
}

// Resolve places qty on the tier ladder. Tiers must be sorted ascending by
// MinQty; thresholds are inclusive, and with duplicate thresholds the later
// entry wins so resolution always lands on the highest threshold not
// exceeding qty.
func Resolve(qty int, tiers []Tier) Resolution {
	if qty < 0 {
		qty = 0
	}
	if len(tiers) == 0 {
		return Resolution{}
	}

	res := Resolution{ProgressPercent: 100}

	for i := range tiers {
		if tiers[i].MinQty <= qty {
			res.Achieved = &tiers[i]
			continue
		}
		res.Next = &tiers[i]
		res.RemainingToNext = tiers[i].MinQty - qty
		res.ProgressPercent = absoluteProgress(qty, tiers[i].MinQty)
		break
	}

	return res
}

// absoluteProgress scales qty against the next threshold itself. See
// SpanProgress for the variant that scales within the previous-to-next span.
func absoluteProgress(qty, nextThreshold int) float64 {
	if nextThreshold < 1 {
		nextThreshold = 1
	}
	progress := float64(qty) / float64(nextThreshold) * 100
	return clampPercent(progress)
}

// SpanProgress computes the progress variant scaled within the span between
// the achieved tier's threshold and the next one. Both formulas are in use in
// the product; Resolve ships the absolute one.
func SpanProgress(qty int, tiers []Tier) float64 {
	res := Resolve(qty, tiers)
	if res.Next == nil {
		if len(tiers) == 0 {
			return 0
		}
		return 100
	}

	prev := 0
	if res.Achieved != nil {
		prev = res.Achieved.MinQty
	}
	span := res.Next.MinQty - prev
	if span < 1 {
		span = 1
	}
	if qty < prev {
		qty = prev
	}
	return clampPercent(float64(qty-prev) / float64(span) * 100)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// MinThreshold returns the smallest tier threshold, or 0 when no tiers exist.
// Order submission uses it as the minimum-quantity gate.
func MinThreshold(tiers []Tier) int {
	if len(tiers) == 0 {
		return 0
	}
	min := tiers[0].MinQty
	for _, tier := range tiers[1:] {
		if tier.MinQty < min {
			min = tier.MinQty
		}
	}
	return min
}

// HasDualRates reports whether any tier differentiates cash from check
// settlement. When true, a settlement method must be chosen before final
// submission.
func HasDualRates(tiers []Tier) bool {
	for _, tier := range tiers {
		if tier.CashDiscountPercent != tier.CheckDiscountPercent {
			return true
		}
	}
	return false
}
