package kicksdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchResponse = `{
	"results": [
		{
			"name": "Air Jordan 1 Retro High OG Chicago Lost and Found",
			"sku": "DZ5485-612",
			"retailPrice": 180,
			"image": "https://img.example.com/dz5485.png",
			"offers": [
				{
					"merchant": "StockX",
					"url": "https://stockx.com/dz5485-612",
					"sizes": {"9.5": 310, "10": "325.50"}
				},
				{
					"source": "Kicks Crew",
					"url": "https://kickscrew.com/dz5485-612",
					"price": 34900
				}
			]
		},
		{
			"name": "Air Jordan 4 Retro Bred Reimagined",
			"sku": "FV5029-006",
			"offers": [
				{"merchant": "GOAT", "lowest_price": 258}
			]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL})
}

func TestSearchParsesOffers(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if q := r.URL.Query().Get("query"); q != "jordan 1 chicago" {
			t.Errorf("query = %q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	})

	listings, err := client.Search(context.Background(), "jordan 1 chicago", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}

	// 2 StockX sizes + 1 Kicks Crew + 1 GOAT
	if len(listings) != 4 {
		t.Fatalf("expected 4 listings, got %d: %+v", len(listings), listings)
	}

	byMarket := make(map[string][]float64)
	for _, l := range listings {
		byMarket[l.Marketplace] = append(byMarket[l.Marketplace], l.AskPrice)
	}
	if len(byMarket["StockX"]) != 2 {
		t.Errorf("expected 2 StockX listings, got %v", byMarket["StockX"])
	}
	// 34900 is cents and must come back as dollars.
	if got := byMarket["Kicks Crew"]; len(got) != 1 || got[0] != 349.00 {
		t.Errorf("Kicks Crew price = %v, want [349]", got)
	}
	if got := byMarket["GOAT"]; len(got) != 1 || got[0] != 258 {
		t.Errorf("GOAT price = %v, want [258]", got)
	}
}

func TestSearchSizeFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchResponse))
	})

	listings, err := client.Search(context.Background(), "jordan 1", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, l := range listings {
		if len(l.StyleCode) > 0 && l.Size != 10 && l.Size != 0 {
			// Sized offers must honor the filter; single-price offers carry
			// the requested size.
			t.Errorf("listing %s has size %g, want 10", l.Marketplace, l.Size)
		}
	}
	for _, l := range listings {
		if l.Marketplace == "StockX" && l.AskPrice != 325.50 {
			t.Errorf("StockX size 10 price = %v, want 325.50", l.AskPrice)
		}
	}
}

func TestLookupStyleCodeFiltersSKU(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchResponse))
	})

	listings, err := client.LookupStyleCode(context.Background(), "fv5029-006", 0)
	if err != nil {
		t.Fatalf("LookupStyleCode failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].StyleCode != "FV5029-006" || listings[0].Marketplace != "GOAT" {
		t.Errorf("got %+v", listings[0])
	}
}

func TestUnconfiguredClientErrors(t *testing.T) {
	client := New(Config{})
	if client.Available() {
		t.Error("client without key should not be available")
	}
	if _, err := client.Search(context.Background(), "jordan", 0); err == nil {
		t.Error("expected configuration error")
	}
}

func TestSearchBareArrayResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Shoe","sku":"AA-1","offers":[{"merchant":"GOAT","price":100}]}]`))
	})

	listings, err := client.Search(context.Background(), "shoe", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
}

func TestSearchServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := client.Search(context.Background(), "jordan", 0); err == nil {
		t.Error("expected error on 502 response")
	}
}
