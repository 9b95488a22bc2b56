// Package report renders scan results as CSV. Listing titles come straight
// from marketplace sellers, so every cell is escaped against spreadsheet
// formula injection before writing.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/model"
)

// EscapeCell protects against CSV formula injection by prefixing cells that
// start with a character a spreadsheet would interpret as a formula.
func EscapeCell(value string) string {
	if value == "" {
		return value
	}

	switch value[0] {
	case '=', '+', '-', '@', '|', '%', '\t', '\r', '\n':
		return "'" + value
	}
	return value
}

func escapeRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCell(cell)
	}
	return escaped
}

// WriteListings writes one row per listing, cheapest first ordering is the
// caller's responsibility.
func WriteListings(w io.Writer, listings []model.Listing) error {
	cw := csv.NewWriter(w)

	header := []string{"marketplace", "name", "style_code", "size", "ask_price", "condition", "retail_price", "url"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, l := range listings {
		retail := ""
		if l.RetailPrice != nil {
			retail = fmt.Sprintf("%.2f", *l.RetailPrice)
		}
		row := []string{
			l.Marketplace,
			l.Name,
			l.StyleCode,
			formatSize(l.Size),
			fmt.Sprintf("%.2f", l.AskPrice),
			string(l.Condition),
			retail,
			l.URL,
		}
		if err := cw.Write(escapeRow(row)); err != nil {
			return fmt.Errorf("write listing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteOpportunities writes one row per opportunity with fee-adjusted net
// profit resolved through the given fee table.
func WriteOpportunities(w io.Writer, opps []model.Opportunity, fees arbitrage.FeeTable) error {
	cw := csv.NewWriter(w)

	header := []string{"name", "style_code", "size", "buy_marketplace", "buy_price",
		"sell_marketplace", "sell_price", "gross_spread", "gross_spread_pct", "est_net_profit"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, o := range opps {
		net := o.NetProfit(fees.SellerFee(o.SellMarketplace()), 0)
		row := []string{
			o.Buy.Name,
			o.StyleCode,
			formatSize(o.Size),
			o.BuyMarketplace(),
			fmt.Sprintf("%.2f", o.Buy.AskPrice),
			o.SellMarketplace(),
			fmt.Sprintf("%.2f", o.Sell.AskPrice),
			fmt.Sprintf("%.2f", o.GrossSpread()),
			fmt.Sprintf("%.1f", o.GrossSpreadPct()),
			fmt.Sprintf("%.2f", net),
		}
		if err := cw.Write(escapeRow(row)); err != nil {
			return fmt.Errorf("write opportunity row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatSize(size float64) string {
	if size == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", size), "0"), ".")
}
