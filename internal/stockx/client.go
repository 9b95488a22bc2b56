// Package stockx pulls StockX pricing through the Sneaker Database API on
// RapidAPI, which exposes StockX resell data without a direct StockX
// developer account.
package stockx

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

const (
	defaultBaseURL = "https://sneaker-database-stockx.p.rapidapi.com"
	rapidAPIHost   = "sneaker-database-stockx.p.rapidapi.com"
)

// Config holds StockX client settings.
type Config struct {
	APIKey  string // RapidAPI key (RAPIDAPI_KEY)
	BaseURL string
	Cache   *cache.Cache
	Timeout time.Duration
}

// Client implements marketplace.Adapter for StockX.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *rate.Limiter
}

// New creates a StockX client. The free RapidAPI tier is 100 requests per
// month, so the limiter is deliberately tight and results are cached.
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

func (c *Client) Name() string { return "StockX" }

func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// product mirrors the fields the Sneaker Database returns under either its
// camelCase or snake_case spellings.
type product struct {
	ShoeName    string `json:"shoeName"`
	Title       string `json:"title"`
	StyleID     string `json:"styleID"`
	StyleIDAlt  string `json:"style_id"`
	RetailPrice any    `json:"retailPrice"`
	RetailAlt   any    `json:"retail_price"`
	Thumbnail   string `json:"thumbnail"`
	Image       string `json:"image"`

	ResellLinks struct {
		StockX string `json:"stockX"`
	} `json:"resellLinks"`
	ResellPrices struct {
		StockX map[string]any `json:"stockX"`
	} `json:"resellPrices"`
	LowestResellPrice struct {
		StockX any `json:"stockX"`
	} `json:"lowestResellPrice"`
}

func (p product) name() string {
	if p.ShoeName != "" {
		return p.ShoeName
	}
	if p.Title != "" {
		return p.Title
	}
	return "Unknown"
}

func (p product) styleCode() string {
	if p.StyleID != "" {
		return p.StyleID
	}
	return p.StyleIDAlt
}

// Search finds listings by name. Queries are scoped to Air Jordans, the
// product family this watcher tracks.
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

// LookupStyleCode finds listings whose style ID matches exactly.
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
		return nil, fmt.Errorf("stockx: RapidAPI key not configured (set RAPIDAPI_KEY)")
	}

	cacheKey := cache.SearchKey(c.Name(), query, 0)
	if c.cache != nil {
		var cached []product
		if found, _ := c.cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("stockx: rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("keywords", query)
	params.Set("limit", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getproducts?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("stockx: create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stockx: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stockx: API returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("stockx: decode response: %w", err)
	}
	var products []product
	if err := json.Unmarshal(raw, &products); err != nil {
		var wrapped struct {
			Products []product `json:"products"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("stockx: parse response: %w", err)
		}
		products = wrapped.Products
	}

	if c.cache != nil {
		_ = c.cache.Put(cacheKey, products, 15*time.Minute)
	}
	return products, nil
}

// parseProduct converts a product into listings, one per size with a resell
// price. When the size-level price map is absent the product-level lowest
// resell price is used with size 0 (unknown).
func (c *Client) parseProduct(p product, size float64) []model.Listing {
	retail := toPricePtr(firstNonNil(p.RetailPrice, p.RetailAlt))
	image := p.Thumbnail
	if image == "" {
		image = p.Image
	}

	priceMap := p.ResellPrices.StockX
	if len(priceMap) == 0 {
		if lowest, ok := toFloat(p.LowestResellPrice.StockX); ok {
			priceMap = map[string]any{"0": lowest}
		}
	}

	var listings []model.Listing
	for szStr, pxVal := range priceMap {
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

		listings = append(listings, model.Listing{
			Marketplace: c.Name(),
			Name:        p.name(),
			StyleCode:   p.styleCode(),
			Size:        sz,
			AskPrice:    px,
			Condition:   model.ConditionNew,
			RetailPrice: retail,
			URL:         p.ResellLinks.StockX,
			ImageURL:    image,
			Timestamp:   time.Now().UTC(),
		})
	}
	return listings
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
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
