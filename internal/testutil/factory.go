// Package testutil generates deterministic pseudo-random fixtures for tests
// that want varied market snapshots without hand-writing every listing.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/guarzo/solewatch/internal/model"
)

var (
	marketplaces = []string{"StockX", "GOAT", "eBay", "Flight Club", "Kicks Crew"}
	sizes        = []float64{7, 8, 8.5, 9, 9.5, 10, 10.5, 11, 12, 13}
)

// ListingFactory builds listings from a seeded source, so a failing test can
// be replayed with the seed that produced it.
type ListingFactory struct {
	rand *rand.Rand
}

func NewListingFactory(seed int64) *ListingFactory {
	return &ListingFactory{rand: rand.New(rand.NewSource(seed))}
}

// StyleCode returns a plausible manufacturer SKU like "DQ4936-104".
func (f *ListingFactory) StyleCode() string {
	letters := func() byte { return byte('A' + f.rand.Intn(26)) }
	return fmt.Sprintf("%c%c%04d-%03d", letters(), letters(), f.rand.Intn(10000), f.rand.Intn(1000))
}

// Marketplace returns one of the known venue names.
func (f *ListingFactory) Marketplace() string {
	return marketplaces[f.rand.Intn(len(marketplaces))]
}

// Size returns a common US shoe size.
func (f *ListingFactory) Size() float64 {
	return sizes[f.rand.Intn(len(sizes))]
}

// Price returns an ask price between 60 and 560 dollars in whole cents.
func (f *ListingFactory) Price() float64 {
	return 60 + float64(f.rand.Intn(50000))/100
}

// Listing builds one listing with the given identity and a random price.
func (f *ListingFactory) Listing(marketplace, styleCode string, size float64) model.Listing {
	return model.Listing{
		Marketplace: marketplace,
		Name:        "Sneaker " + styleCode,
		StyleCode:   styleCode,
		Size:        size,
		AskPrice:    f.Price(),
		Condition:   model.ConditionNew,
	}
}

// Snapshot builds listings for n products, each listed on every marketplace
// at one random size. Prices vary, so most products yield price gaps.
func (f *ListingFactory) Snapshot(n int) []model.Listing {
	var listings []model.Listing
	for i := 0; i < n; i++ {
		code := f.StyleCode()
		size := f.Size()
		for _, mk := range marketplaces {
			listings = append(listings, f.Listing(mk, code, size))
		}
	}
	return listings
}
