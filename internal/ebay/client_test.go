package ebay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const browseResponse = `{
	"itemSummaries": [
		{
			"title": "Air Jordan 1 Retro High OG Chicago DZ5485-612 Size 10",
			"price": {"value": "299.99"},
			"condition": "New with box",
			"itemWebUrl": "https://www.ebay.com/itm/1",
			"image": {"imageUrl": "https://img.ebay.com/1.png"}
		},
		{
			"title": "Air Jordan 1 Chicago Sz 10.5 worn once",
			"price": {"value": "250.00"},
			"condition": "Pre-owned (Used)",
			"itemWebUrl": "https://www.ebay.com/itm/2"
		},
		{
			"title": "Air Jordan 1 Chicago no size listed",
			"price": {"value": "not-a-price"}
		}
	]
}`

func newTestClient(t *testing.T, tokenHits *int, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenHits != nil {
			*tokenHits++
		}
		if r.Method != http.MethodPost {
			t.Errorf("token request method = %s", r.Method)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("token request missing basic auth")
		}
		_, _ = w.Write([]byte(`{"access_token": "tok-123", "expires_in": 7200}`))
	})
	mux.HandleFunc("/item_summary/search", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
	})
}

func TestSearchParsesItemsAndSizes(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-EBAY-C-MARKETPLACE-ID"); got != "EBAY_US" {
			t.Errorf("marketplace header = %q", got)
		}
		_, _ = w.Write([]byte(browseResponse))
	})

	listings, err := client.Search(context.Background(), "1 Chicago", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// The malformed-price item is dropped.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	if listings[0].Size != 10 {
		t.Errorf("size from 'Size 10' title = %g", listings[0].Size)
	}
	if listings[1].Size != 10.5 {
		t.Errorf("size from 'Sz 10.5' title = %g", listings[1].Size)
	}
	if listings[1].Condition != "used" {
		t.Errorf("condition = %q, want used", listings[1].Condition)
	}
}

func TestSearchSizeFilterKeepsUnknownSizes(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(browseResponse))
	})

	listings, err := client.Search(context.Background(), "1 Chicago", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Size 10 stays, size 10.5 is filtered out.
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Size != 10 {
		t.Errorf("size = %g, want 10", listings[0].Size)
	}
}

func TestLookupStyleCodeStampsCode(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "DZ5485-612" {
			t.Errorf("q = %q", q)
		}
		_, _ = w.Write([]byte(browseResponse))
	})

	listings, err := client.LookupStyleCode(context.Background(), "DZ5485-612", 0)
	if err != nil {
		t.Fatalf("LookupStyleCode failed: %v", err)
	}
	for _, l := range listings {
		if l.StyleCode != "DZ5485-612" {
			t.Errorf("style code = %q, want stamped DZ5485-612", l.StyleCode)
		}
	}
}

func TestTokenIsReusedUntilExpiry(t *testing.T) {
	var tokenHits int
	client := newTestClient(t, &tokenHits, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"itemSummaries": []}`))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.Search(ctx, "jordan", 0); err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
	}
	if tokenHits != 1 {
		t.Errorf("token endpoint hit %d times, want 1", tokenHits)
	}
}

func TestUnconfiguredClientErrors(t *testing.T) {
	client := New(Config{ClientID: "id-only"})
	if client.Available() {
		t.Error("client without secret should not be available")
	}
	if _, err := client.Search(context.Background(), "jordan", 0); err == nil {
		t.Error("expected configuration error")
	}
}

func TestExtractSize(t *testing.T) {
	cases := []struct {
		title string
		want  float64
	}{
		{"Air Jordan 1 Size 10", 10},
		{"Air Jordan 1 size 10.5", 10.5},
		{"Air Jordan 1 Sz. 9", 9},
		{"Air Jordan 1 11 US men", 11},
		{"Air Jordan 1 Chicago", 0},
	}
	for _, tc := range cases {
		if got := extractSize(tc.title); got != tc.want {
			t.Errorf("extractSize(%q) = %g, want %g", tc.title, got, tc.want)
		}
	}
}
