// Package display renders scan results as aligned terminal tables.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/model"
)

// Listings prints one row per listing in the order given. Callers sort before
// calling, cheapest first by convention.
func Listings(w io.Writer, listings []model.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKETPLACE\tNAME\tSTYLE\tSIZE\tASK\tCONDITION")
	fmt.Fprintln(tw, "-----------\t----\t-----\t----\t---\t---------")

	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%.2f\t%s\n",
			l.Marketplace,
			truncate(l.DisplayName(), 42),
			orDash(l.StyleCode),
			orDash(formatSize(l.Size)),
			l.AskPrice,
			l.Condition,
		)
	}

	tw.Flush()
	fmt.Fprintf(w, "\nTotal listings: %d\n", len(listings))
}

// Opportunities prints one row per opportunity with the fee-adjusted net
// profit for its sell side. Opportunities arrive already sorted by net
// profit descending.
func Opportunities(w io.Writer, opps []model.Opportunity, fees arbitrage.FeeTable) {
	if len(opps) == 0 {
		fmt.Fprintln(w, "No arbitrage opportunities found.")
		fmt.Fprintln(w, "Try widening the search or lowering --min-spread.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STYLE\tSIZE\tBUY\tBUY ASK\tSELL\tSELL ASK\tSPREAD\tNET EST")
	fmt.Fprintln(tw, "-----\t----\t---\t-------\t----\t--------\t------\t-------")

	for _, o := range opps {
		net := o.NetProfit(fees.SellerFee(o.SellMarketplace()), 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%.2f\t%s\t$%.2f\t%.1f%%\t$%.2f\n",
			orDash(o.StyleCode),
			orDash(formatSize(o.Size)),
			o.BuyMarketplace(),
			o.Buy.AskPrice,
			o.SellMarketplace(),
			o.Sell.AskPrice,
			o.GrossSpreadPct(),
			net,
		)
	}

	tw.Flush()
	fmt.Fprintf(w, "\nTotal opportunities: %d\n", len(opps))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSize(size float64) string {
	if size == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", size), "0"), ".")
}
