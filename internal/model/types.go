package model

import (
	"fmt"
	"time"
)

// Condition describes the wear state a marketplace reports for a listing.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionUsed    Condition = "used"
	ConditionUnknown Condition = "unknown"
)

// Listing is one marketplace's current ask for a sneaker at a specific size.
// Adapters build these from raw API records; everything downstream treats
// them as read-only.
type Listing struct {
	Marketplace string    `json:"marketplace"`
	Name        string    `json:"name"`
	StyleCode   string    `json:"style_code"` // manufacturer SKU, e.g. "DZ5485-612"; formatting varies by source
	Size        float64   `json:"size"`
	AskPrice    float64   `json:"ask_price"`
	Condition   Condition `json:"condition"`

	// Optional market context. Nil when the source doesn't report it.
	BidPrice      *float64 `json:"bid_price,omitempty"`
	LastSalePrice *float64 `json:"last_sale_price,omitempty"`
	RetailPrice   *float64 `json:"retail_price,omitempty"`

	URL       string    `json:"url,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// DisplayName returns the listing title with its size appended.
func (l Listing) DisplayName() string {
	return fmt.Sprintf("%s (Size %g)", l.Name, l.Size)
}

// Opportunity pairs a cheap listing on one marketplace with a pricier one on
// another. Buy and Sell always reference the same product and size.
type Opportunity struct {
	Buy       Listing
	Sell      Listing
	StyleCode string
	Size      float64
}

// GrossSpread is the raw price difference before any fees.
func (o Opportunity) GrossSpread() float64 {
	return o.Sell.AskPrice - o.Buy.AskPrice
}

// GrossSpreadPct is the gross spread as a percentage of the buy price.
// Returns 0 when the buy price is 0.
func (o Opportunity) GrossSpreadPct() float64 {
	if o.Buy.AskPrice == 0 {
		return 0
	}
	return o.GrossSpread() / o.Buy.AskPrice * 100
}

// NetProfit estimates profit after the sell-side seller fee and an optional
// buy-side sales tax, both expressed as percentages.
func (o Opportunity) NetProfit(sellFeePct, buyTaxPct float64) float64 {
	buyTotal := o.Buy.AskPrice * (1 + buyTaxPct/100)
	sellNet := o.Sell.AskPrice * (1 - sellFeePct/100)
	return sellNet - buyTotal
}

func (o Opportunity) BuyMarketplace() string  { return o.Buy.Marketplace }
func (o Opportunity) SellMarketplace() string { return o.Sell.Marketplace }

// Summary renders a one-line description of the opportunity.
func (o Opportunity) Summary(sellFeePct float64) string {
	return fmt.Sprintf("Buy on %s @ $%.2f -> Sell on %s @ $%.2f | Gross: $%.2f (%.1f%%) | Est. Net: $%.2f",
		o.BuyMarketplace(), o.Buy.AskPrice,
		o.SellMarketplace(), o.Sell.AskPrice,
		o.GrossSpread(), o.GrossSpreadPct(),
		o.NetProfit(sellFeePct, 0))
}
