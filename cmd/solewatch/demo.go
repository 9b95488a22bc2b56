package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/display"
	"github.com/guarzo/solewatch/internal/model"
)

// newDemoCmd runs the matching engine on a canned snapshot so the output can
// be inspected without any API keys.
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the arbitrage engine on sample data (no API keys needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			listings := demoListings()

			fmt.Println("Sample snapshot:")
			display.Listings(os.Stdout, listings)

			opts := arbitrage.DefaultOptions()
			opps := arbitrage.Find(listings, opts)

			fmt.Println()
			display.Opportunities(os.Stdout, opps, arbitrage.NewFeeTable(opts.SellerFees))
			return nil
		},
	}
}

func demoListings() []model.Listing {
	price := func(v float64) *float64 { return &v }

	return []model.Listing{
		{Marketplace: "StockX", Name: "Air Jordan 1 Retro High OG Chicago Lost and Found",
			StyleCode: "DZ5485-612", Size: 10, AskPrice: 334, Condition: model.ConditionNew,
			RetailPrice: price(180)},
		{Marketplace: "GOAT", Name: "Air Jordan 1 Retro High OG 'Chicago Lost and Found'",
			StyleCode: "DZ5485-612", Size: 10, AskPrice: 318, Condition: model.ConditionNew},
		{Marketplace: "eBay", Name: "Nike Air Jordan 1 High Chicago Lost & Found Sz 10",
			StyleCode: "dz5485 612", Size: 10, AskPrice: 289, Condition: model.ConditionNew},
		{Marketplace: "Flight Club", Name: "Air Jordan 1 Retro High OG Chicago Lost and Found",
			StyleCode: "DZ5485-612", Size: 10, AskPrice: 365, Condition: model.ConditionNew},

		{Marketplace: "StockX", Name: "Air Jordan 4 Retro White Thunder",
			StyleCode: "DH6927-017", Size: 9.5, AskPrice: 242, Condition: model.ConditionNew},
		{Marketplace: "GOAT", Name: "Air Jordan 4 Retro 'White Thunder'",
			StyleCode: "DH6927-017", Size: 9.5, AskPrice: 238, Condition: model.ConditionNew},

		{Marketplace: "eBay", Name: "Adidas Samba OG Cloud White",
			StyleCode: "B75806", Size: 11, AskPrice: 78, Condition: model.ConditionNew},
		{Marketplace: "StockX", Name: "adidas Samba OG White Black Gum",
			StyleCode: "B75806", Size: 11, AskPrice: 96, Condition: model.ConditionNew},
	}
}
