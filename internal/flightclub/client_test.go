package flightclub

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
)

const statePage = `<!DOCTYPE html>
<html><head><script>
window.__INITIAL_STATE__ = {"searchResults":{"results":[{"name":"Air Jordan 1 Retro High OG Chicago","sku":"DZ5485-612","slug":"air-jordan-1-chicago","retail_price_cents":18000,"size_prices":{"10":36000,"10.5":37500}},{"name":"Air Jordan 4 Retro Bred Reimagined","sku":"FV5029-006","lowest_price_cents":28900}]}};
</script></head><body></body></html>`

const tilePage = `<!DOCTYPE html>
<html><body>
<a data-qa="ProductItem" href="/air-jordan-1-chicago">
	<img src="https://img.flightclub.com/1.png"/>
	<div data-qa="ProductItemTitle">Air Jordan 1 Retro High OG Chicago</div>
	<div data-qa="ProductItemPrice">From $360</div>
</a>
<a data-qa="ProductItem" href="/broken-tile">
	<div data-qa="ProductItemTitle">No price tile</div>
</a>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.BaseURL = srv.URL
	cfg.MaxRetries = 0
	return New(cfg)
}

func TestSearchParsesInitialState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogsearch/result" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("scraper must send a browser User-Agent")
		}
		_, _ = w.Write([]byte(statePage))
	})

	listings, err := client.Search(context.Background(), "jordan 1 chicago", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Two sizes of the first product, one lowest-ask for the second.
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d: %+v", len(listings), listings)
	}

	for _, l := range listings {
		if l.Marketplace != "Flight Club" {
			t.Errorf("marketplace = %q", l.Marketplace)
		}
		// Cents fields must come back as dollars.
		if l.AskPrice < 100 || l.AskPrice > 1000 {
			t.Errorf("price %v not converted from cents", l.AskPrice)
		}
	}
}

func TestSearchSizeFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statePage))
	})

	listings, err := client.Search(context.Background(), "jordan", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Size 10 survives; 10.5 is dropped; the size-less product is kept for
	// display.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(listings), listings)
	}
	for _, l := range listings {
		if l.Size != 10 && l.Size != 0 {
			t.Errorf("size = %g", l.Size)
		}
	}
}

func TestSearchFallsBackToProductTiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tilePage))
	})

	listings, err := client.Search(context.Background(), "jordan", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// The priceless tile is skipped.
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	l := listings[0]
	if l.AskPrice != 360 {
		t.Errorf("price = %v, want 360", l.AskPrice)
	}
	if l.URL == "" || l.ImageURL == "" {
		t.Errorf("expected URL and image from tile, got %+v", l)
	}
}

func TestLookupStyleCodeStampsTiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tilePage))
	})

	listings, err := client.LookupStyleCode(context.Background(), "DZ5485-612", 0)
	if err != nil {
		t.Fatalf("LookupStyleCode failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].StyleCode != "DZ5485-612" {
		t.Errorf("style code = %q, want stamped DZ5485-612", listings[0].StyleCode)
	}
}

func TestBrotliAndGzipResponses(t *testing.T) {
	cases := []struct {
		name     string
		encoding string
		encode   func([]byte) []byte
	}{
		{
			name:     "brotli",
			encoding: "br",
			encode: func(data []byte) []byte {
				var buf bytes.Buffer
				bw := brotli.NewWriter(&buf)
				_, _ = bw.Write(data)
				_ = bw.Close()
				return buf.Bytes()
			},
		},
		{
			name:     "gzip",
			encoding: "gzip",
			encode: func(data []byte) []byte {
				var buf bytes.Buffer
				gw := gzip.NewWriter(&buf)
				_, _ = gw.Write(data)
				_ = gw.Close()
				return buf.Bytes()
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tc.encoding)
				_, _ = w.Write(tc.encode([]byte(statePage)))
			})

			listings, err := client.Search(context.Background(), "jordan", 0)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if len(listings) != 3 {
				t.Fatalf("expected 3 listings from %s page, got %d", tc.name, len(listings))
			}
		})
	}
}

func TestDisabledClientErrors(t *testing.T) {
	client := New(Config{})
	if client.Available() {
		t.Error("disabled scraper should not be available")
	}
	if _, err := client.Search(context.Background(), "jordan", 0); err == nil {
		t.Error("expected configuration error")
	}
}
