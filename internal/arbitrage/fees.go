package arbitrage

import "strings"

// FallbackFeePct is charged when a marketplace has no fee table entry.
const FallbackFeePct = 10.0

// DefaultSellerFees maps marketplace names to seller fee percentages. Known
// marketplaces are keyed under both their display name and its lowercase
// form; lookups for unknown names fall back to FallbackFeePct.
var DefaultSellerFees = map[string]float64{
	"StockX":      9.5,
	"stockx":      9.5,
	"GOAT":        9.5,
	"goat":        9.5,
	"Flight Club": 9.5,
	"flightclub":  9.5,
	"eBay":        13.25,
	"ebay":        13.25,
	"Grailed":     9.0,
	"grailed":     9.0,
	"Kicks Crew":  8.0,
	"kickscrew":   8.0,
}

// FeeTable resolves seller fees by marketplace name.
type FeeTable map[string]float64

// NewFeeTable copies the default fee table and merges overrides on top.
// Overrides win on key collisions; the defaults are never mutated.
func NewFeeTable(overrides map[string]float64) FeeTable {
	t := make(FeeTable, len(DefaultSellerFees)+len(overrides))
	for k, v := range DefaultSellerFees {
		t[k] = v
	}
	for k, v := range overrides {
		t[k] = v
	}
	return t
}

// SellerFee returns the fee percentage for a marketplace, trying the exact
// name, then its lowercase form, then FallbackFeePct. The two-step lookup is
// load-bearing: the default table keys both casings independently, and
// overrides may supply only one of them.
func (t FeeTable) SellerFee(marketplace string) float64 {
	if fee, ok := t[marketplace]; ok {
		return fee
	}
	if fee, ok := t[strings.ToLower(marketplace)]; ok {
		return fee
	}
	return FallbackFeePct
}
