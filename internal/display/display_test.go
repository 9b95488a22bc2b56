package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/model"
)

func TestListingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	Listings(&buf, nil)
	if !strings.Contains(buf.String(), "No listings found") {
		t.Errorf("expected empty message, got %q", buf.String())
	}
}

func TestListingsTable(t *testing.T) {
	var buf bytes.Buffer
	Listings(&buf, []model.Listing{
		{Marketplace: "StockX", Name: "Air Jordan 1 Retro High", StyleCode: "DZ5485-612", Size: 10, AskPrice: 340, Condition: model.ConditionNew},
		{Marketplace: "eBay", Name: "AJ1", AskPrice: 299.99, Condition: model.ConditionUsed},
	})

	out := buf.String()
	for _, want := range []string{"MARKETPLACE", "StockX", "DZ5485-612", "$340.00", "$299.99", "Total listings: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Missing style code and size render as dashes, not empty cells.
	if !strings.Contains(out, "eBay") {
		t.Errorf("output missing eBay row:\n%s", out)
	}
}

func TestOpportunitiesEmpty(t *testing.T) {
	var buf bytes.Buffer
	Opportunities(&buf, nil, arbitrage.NewFeeTable(nil))
	out := buf.String()
	if !strings.Contains(out, "No arbitrage opportunities found") {
		t.Errorf("expected empty message, got %q", out)
	}
	if !strings.Contains(out, "min-spread") {
		t.Errorf("expected hint about filters, got %q", out)
	}
}

func TestOpportunitiesTable(t *testing.T) {
	opp := model.Opportunity{
		Buy:       model.Listing{Marketplace: "eBay", Name: "Air Jordan 1", AskPrice: 200},
		Sell:      model.Listing{Marketplace: "StockX", Name: "Air Jordan 1", AskPrice: 300},
		StyleCode: "DZ5485-612",
		Size:      10,
	}

	var buf bytes.Buffer
	Opportunities(&buf, []model.Opportunity{opp}, arbitrage.NewFeeTable(nil))

	out := buf.String()
	// StockX 9.5% fee: 300*0.905 - 200 = 71.50
	for _, want := range []string{"DZ5485-612", "eBay", "StockX", "$200.00", "$300.00", "50.0%", "$71.50", "Total opportunities: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	long := strings.Repeat("a", 50)
	got := truncate(long, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d, want 10", len([]rune(got)))
	}
}
