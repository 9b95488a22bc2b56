// Package arbitrage matches sneaker listings across marketplaces and finds
// directional buy/sell price gaps that survive fee-adjusted profit filters.
package arbitrage

import (
	"sort"
	"strings"

	"github.com/guarzo/solewatch/internal/model"
)

// Options control which candidate pairs survive filtering.
type Options struct {
	// MinGrossSpread is the minimum sell-buy price difference in dollars.
	MinGrossSpread float64
	// MinNetProfit is the minimum estimated profit after seller fees.
	MinNetProfit float64
	// SellerFees overrides entries of the default fee table.
	SellerFees map[string]float64
}

// DefaultOptions returns the thresholds used when callers pass nothing:
// at least a $10 gross spread and a non-negative net profit.
func DefaultOptions() Options {
	return Options{MinGrossSpread: 10.0, MinNetProfit: 0.0}
}

// NormalizeStyleCode reduces a manufacturer SKU to a canonical matching key:
// every non-alphanumeric character is dropped and the rest is uppercased, so
// "DZ5485-612" and "dz5485 612" both become "DZ5485612".
func NormalizeStyleCode(styleCode string) string {
	var b strings.Builder
	b.Grow(len(styleCode))
	for _, r := range styleCode {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

type groupKey struct {
	styleCode string
	size      float64
}

// group holds one (style code, size) bucket. Marketplace order tracks first
// appearance in the input so results are reproducible run to run.
type group struct {
	order []string // lowercase marketplace names, first-seen order
	best  map[string]model.Listing
}

// Find detects arbitrage opportunities across marketplace listings.
//
// Listings are grouped by (normalized style code, size); sizes must match
// exactly. Within each group only the cheapest listing per marketplace is
// kept, then every ordered (buy, sell) pair across distinct marketplaces is
// checked: the sell price must strictly exceed the buy price, the gross
// spread must meet opts.MinGrossSpread, and the fee-adjusted net profit must
// meet opts.MinNetProfit. Survivors are returned sorted by net profit
// descending; ties keep input traversal order, which callers should treat
// as unspecified.
//
// Find never returns an error: empty input, a single listing, or listings
// with no style code or size simply produce no opportunities. Inputs are
// not mutated.
func Find(listings []model.Listing, opts Options) []model.Opportunity {
	fees := NewFeeTable(opts.SellerFees)

	// Listings without a style code or a positive size can't be matched
	// confidently and never enter a group. Deduplicate per marketplace as
	// we go: a single adapter can return several offers for the same shoe,
	// and two prices on the same venue must not look like a spread.
	groups := make(map[groupKey]*group)
	var keyOrder []groupKey
	for _, l := range listings {
		if l.StyleCode == "" || l.Size <= 0 {
			continue
		}
		key := groupKey{NormalizeStyleCode(l.StyleCode), l.Size}
		g, ok := groups[key]
		if !ok {
			g = &group{best: make(map[string]model.Listing)}
			groups[key] = g
			keyOrder = append(keyOrder, key)
		}
		mk := strings.ToLower(l.Marketplace)
		if best, seen := g.best[mk]; !seen {
			g.order = append(g.order, mk)
			g.best[mk] = l
		} else if l.AskPrice < best.AskPrice {
			g.best[mk] = l
		}
	}

	var opportunities []model.Opportunity

	for _, key := range keyOrder {
		g := groups[key]
		// Arbitrage needs at least two independent price sources.
		if len(g.order) < 2 {
			continue
		}

		for _, buyMk := range g.order {
			buy := g.best[buyMk]
			for _, sellMk := range g.order {
				if buyMk == sellMk {
					continue
				}
				sell := g.best[sellMk]
				// Strict inequality: equal prices yield no opportunity in
				// either direction, and at most one direction survives for
				// any pair of venues.
				if sell.AskPrice <= buy.AskPrice {
					continue
				}

				opp := model.Opportunity{
					Buy:       buy,
					Sell:      sell,
					StyleCode: buy.StyleCode,
					Size:      buy.Size,
				}

				if opp.GrossSpread() < opts.MinGrossSpread {
					continue
				}
				if opp.NetProfit(fees.SellerFee(sell.Marketplace), 0) < opts.MinNetProfit {
					continue
				}

				opportunities = append(opportunities, opp)
			}
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		ni := opportunities[i].NetProfit(fees.SellerFee(opportunities[i].SellMarketplace()), 0)
		nj := opportunities[j].NetProfit(fees.SellerFee(opportunities[j].SellMarketplace()), 0)
		return ni > nj
	})

	return opportunities
}
