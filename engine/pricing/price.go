// Package pricing consolidates every price concern in the engine: parsing
// the heterogeneous price strings stored in product payloads, the absolute
// budget window used by search, the role-relative window used by plan
// execution, and the baseline price derived from a user's view history.
package pricing

import (
	"strconv"
	"strings"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

const (
	// UnboundedCeiling is the max price used when a role imposes no ceiling.
	UnboundedCeiling = 100000
	// ceilingCutoff: any ceiling at or above this is treated as "no
	// effective ceiling" when checking a price.
	ceilingCutoff = 10000
	// MinBaseline floors the baseline price used for role-relative ranges.
	MinBaseline = 50
	// DefaultBaseline is used when no viewed product has a parseable price.
	DefaultBaseline = 100
)

// noPriceSentinel is stored by the ingestion side when a product page showed
// no price.
const noPriceSentinel = "no price available"

// Parse extracts a numeric price from a free-form price string. Currency
// symbols, thousands separators, and surrounding whitespace are stripped.
// Returns ok=false for the no-price sentinel and for anything that still
// fails to parse. Never an error.
func Parse(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, noPriceSentinel) {
		return 0, false
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Range is an inclusive price window.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether price falls inside the range. Ceilings at or
// above the cutoff are ignored, making upgrade ranges effectively unbounded.
func (r Range) Contains(price float64) bool {
	if price < r.Min {
		return false
	}
	if r.Max < ceilingCutoff && price > r.Max {
		return false
	}
	return true
}

// BudgetWindow is the absolute search-time window for a budget B: admit
// prices in [0.5*B, B]. Items with no parseable price are excluded by the
// caller in this mode.
func BudgetWindow(budget float64) Range {
	return Range{Min: budget * 0.5, Max: budget}
}

// RangeForRole derives the price window for a strategy's price role from a
// baseline price. The baseline is floored at MinBaseline first.
func RangeForRole(baseline float64, role domain.PriceRole) Range {
	if baseline < MinBaseline {
		baseline = MinBaseline
	}
	r := Range{Min: 0, Max: UnboundedCeiling}
	switch role {
	case domain.RoleUpgrade:
		r.Min = baseline * 1.1
	case domain.RoleAccessory:
		r.Max = baseline * 0.9
	}
	return r
}

// Baseline computes the mean of the parseable positive prices in a user's
// viewed-product history, or DefaultBaseline when none qualify.
func Baseline(products []domain.ViewedProduct) float64 {
	var sum float64
	var count int
	for _, p := range products {
		if v, ok := Parse(p.Price); ok && v > 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return DefaultBaseline
	}
	return sum / float64(count)
}
