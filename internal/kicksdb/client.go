// Package kicksdb queries the KicksDB aggregator API, which carries pricing
// from StockX, GOAT, Flight Club, Kicks Crew and dozens of smaller shops.
// One KicksDB product fans out into one listing per marketplace and size.
package kicksdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/guarzo/solewatch/internal/cache"
	"github.com/guarzo/solewatch/internal/model"
)

const defaultBaseURL = "https://api.kicks.dev/v1"

// Prices above this are assumed to be cents rather than dollars. Sneakers
// do not sell for $5000+ in the sources KicksDB aggregates.
const centsThreshold = 5000

// Config holds KicksDB client settings.
type Config struct {
	APIKey  string
	BaseURL string        // defaults to the public API host
	Cache   *cache.Cache  // optional
	Timeout time.Duration // per-request; defaults to 15s
}

// Client implements marketplace.Adapter backed by KicksDB.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *rate.Limiter
}

// New creates a KicksDB client. The key comes from KICKSDB_API_KEY.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cache:       cfg.Cache,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (c *Client) Name() string { return "KicksDB" }

func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// product is the subset of a KicksDB product record we consume.
type product struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	StyleID     string  `json:"styleId"`
	RetailPrice any     `json:"retailPrice"`
	Image       string  `json:"image"`
	Offers      []offer `json:"offers"`
}

type offer struct {
	Merchant    string         `json:"merchant"`
	Source      string         `json:"source"`
	URL         string         `json:"url"`
	Sizes       map[string]any `json:"sizes"`
	Price       any            `json:"price"`
	LowestPrice any            `json:"lowest_price"`
}

func (p product) styleCode() string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.StyleID
}

// Search finds listings matching a free-text query.
func (c *Client) Search(ctx context.Context, query string, size float64) ([]model.Listing, error) {
	products, err := c.searchRaw(ctx, query)
	if err != nil {
		return nil, err
	}

	var listings []model.Listing
	for _, p := range products {
		listings = append(listings, c.parseProduct(p, size)...)
	}
	return listings, nil
}

// LookupStyleCode finds listings whose SKU matches styleCode exactly
// (case-insensitive).
func (c *Client) LookupStyleCode(ctx context.Context, styleCode string, size float64) ([]model.Listing, error) {
	products, err := c.searchRaw(ctx, styleCode)
	if err != nil {
		return nil, err
	}

	var listings []model.Listing
	for _, p := range products {
		if !strings.EqualFold(p.styleCode(), styleCode) {
			continue
		}
		listings = append(listings, c.parseProduct(p, size)...)
	}
	return listings, nil
}

func (c *Client) searchRaw(ctx context.Context, query string) ([]product, error) {
	if !c.Available() {
		return nil, fmt.Errorf("kicksdb: API key not configured (set KICKSDB_API_KEY)")
	}

	cacheKey := cache.SearchKey(c.Name(), query, 0)
	if c.cache != nil {
		var cached []product
		if found, _ := c.cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("kicksdb: rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("kicksdb: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kicksdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kicksdb: API returned status %d", resp.StatusCode)
	}

	// The search endpoint returns either a bare array or {"results": [...]}.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("kicksdb: decode response: %w", err)
	}
	var products []product
	if err := json.Unmarshal(raw, &products); err != nil {
		var wrapped struct {
			Results []product `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("kicksdb: parse response: %w", err)
		}
		products = wrapped.Results
	}

	if c.cache != nil {
		_ = c.cache.Put(cacheKey, products, 15*time.Minute)
	}
	return products, nil
}

// parseProduct expands one product into listings, one per marketplace and
// size, honoring the size filter (0 means all sizes).
func (c *Client) parseProduct(p product, size float64) []model.Listing {
	retail := toPricePtr(p.RetailPrice)

	var listings []model.Listing
	for _, o := range p.Offers {
		marketplace := o.Merchant
		if marketplace == "" {
			marketplace = o.Source
		}
		if marketplace == "" {
			marketplace = "unknown"
		}

		if len(o.Sizes) > 0 {
			for szStr, pxVal := range o.Sizes {
				sz, ok := toFloat(szStr)
				if !ok {
					continue
				}
				px, ok := toFloat(pxVal)
				if !ok {
					continue
				}
				if size != 0 && sz != size {
					continue
				}
				listings = append(listings, c.listing(p, marketplace, o.URL, sz, normalizeCents(px), retail))
			}
			continue
		}

		pxVal := o.Price
		if pxVal == nil {
			pxVal = o.LowestPrice
		}
		if px, ok := toFloat(pxVal); ok {
			listings = append(listings, c.listing(p, marketplace, o.URL, size, normalizeCents(px), retail))
		}
	}
	return listings
}

func (c *Client) listing(p product, marketplace, listingURL string, size, price float64, retail *float64) model.Listing {
	return model.Listing{
		Marketplace: marketplace,
		Name:        p.Name,
		StyleCode:   p.styleCode(),
		Size:        size,
		AskPrice:    price,
		Condition:   model.ConditionNew,
		RetailPrice: retail,
		URL:         listingURL,
		ImageURL:    p.Image,
		Timestamp:   time.Now().UTC(),
	}
}

func normalizeCents(px float64) float64 {
	if px > centsThreshold {
		return px / 100
	}
	return px
}

// toFloat converts the mixed string/number values KicksDB emits.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toPricePtr(v any) *float64 {
	if f, ok := toFloat(v); ok {
		return &f
	}
	return nil
}
