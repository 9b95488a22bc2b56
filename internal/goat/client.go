// Package goat pulls GOAT pricing through the Retailed.io API.
package goat

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

const defaultBaseURL = "https://api.retailed.io/v1/goat"

// Prices above this are assumed to be cents; GOAT endpoints mix dollar and
// cent denominations depending on the field.
const centsThreshold = 5000

// Config holds GOAT client settings.
type Config struct {
	APIKey  string // Retailed.io key (RETAILED_API_KEY)
	BaseURL string
	Cache   *cache.Cache
	Timeout time.Duration
}

// Client implements marketplace.Adapter for GOAT.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *rate.Limiter
}

// New creates a GOAT client.
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
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (c *Client) Name() string { return "GOAT" }

func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

type product struct {
	Name             string         `json:"name"`
	SKU              string         `json:"sku"`
	RetailPrice      any            `json:"retailPrice"`
	Image            string         `json:"image"`
	Slug             string         `json:"slug"`
	Sizes            map[string]any `json:"sizes"`
	LowestPrice      any            `json:"lowestPrice"`
	LowestPriceCents any            `json:"lowest_price_cents"`
}

func (p product) productURL() string {
	if p.Slug == "" {
		return ""
	}
	return "https://www.goat.com/sneakers/" + p.Slug
}

// Search finds listings by name, scoped to Air Jordans.
func (c *Client) Search(ctx context.Context, query string, size float64) ([]model.Listing, error) {
	products, err := c.searchRaw(ctx, "Air Jordan "+query)
	if err != nil {
		return nil, err
	}

	var listings []model.Listing
	for _, p := range products {
		listings = append(listings, c.parseProduct(p, size)...)
	}
	return listings, nil
}

// LookupStyleCode finds listings whose SKU matches exactly.
func (c *Client) LookupStyleCode(ctx context.Context, styleCode string, size float64) ([]model.Listing, error) {
	products, err := c.searchRaw(ctx, styleCode)
	if err != nil {
		return nil, err
	}

	var listings []model.Listing
	for _, p := range products {
		if !strings.EqualFold(p.SKU, styleCode) {
			continue
		}
		listings = append(listings, c.parseProduct(p, size)...)
	}
	return listings, nil
}

func (c *Client) searchRaw(ctx context.Context, query string) ([]product, error) {
	if !c.Available() {
		return nil, fmt.Errorf("goat: Retailed API key not configured (set RETAILED_API_KEY)")
	}

	cacheKey := cache.SearchKey(c.Name(), query, 0)
	if c.cache != nil {
		var cached []product
		if found, _ := c.cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("goat: rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("goat: create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("goat: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("goat: API returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("goat: decode response: %w", err)
	}
	var products []product
	if err := json.Unmarshal(raw, &products); err != nil {
		var wrapped struct {
			Results []product `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("goat: parse response: %w", err)
		}
		products = wrapped.Results
	}

	if c.cache != nil {
		_ = c.cache.Put(cacheKey, products, 15*time.Minute)
	}
	return products, nil
}

// parseProduct converts a product into listings. Size-level prices are
// preferred; otherwise the product-level lowest price is used with the
// caller's size filter (or 0 for unknown).
func (c *Client) parseProduct(p product, size float64) []model.Listing {
	retail := toPricePtr(p.RetailPrice)

	if len(p.Sizes) == 0 {
		lowest := p.LowestPrice
		if lowest == nil {
			lowest = p.LowestPriceCents
		}
		px, ok := toFloat(lowest)
		if !ok {
			return nil
		}
		return []model.Listing{c.listing(p, size, normalizeCents(px), retail)}
	}

	var listings []model.Listing
	for szStr, pxVal := range p.Sizes {
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
		listings = append(listings, c.listing(p, sz, normalizeCents(px), retail))
	}
	return listings
}

func (c *Client) listing(p product, size, price float64, retail *float64) model.Listing {
	name := p.Name
	if name == "" {
		name = "Unknown"
	}
	return model.Listing{
		Marketplace: c.Name(),
		Name:        name,
		StyleCode:   p.SKU,
		Size:        size,
		AskPrice:    price,
		Condition:   model.ConditionNew,
		RetailPrice: retail,
		URL:         p.productURL(),
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
