// Package flightclub scrapes flightclub.com search pages. Flight Club has
// no public pricing API, so this adapter renders the same data path a
// browser would: fetch the search page with realistic headers, decode the
// compressed response, and read products out of the embedded
// window.__INITIAL_STATE__ JSON, falling back to parsing product tiles.
//
// Scraping is opt-in (FLIGHTCLUB_SCRAPE=1); sites change markup without
// notice and this adapter degrades to zero results rather than failing a
// scan.
package flightclub

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/guarzo/solewatch/internal/cache"
	"github.com/guarzo/solewatch/internal/model"
)

const defaultBaseURL = "https://www.flightclub.com"

// Config holds scraper settings.
type Config struct {
	Enabled     bool
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	UserAgents  []string
	UseRandomUA bool
	Cache       *cache.Cache
}

// DefaultConfig returns the settings used outside tests.
func DefaultConfig() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		Timeout:    20 * time.Second,
		MaxRetries: 2,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		},
		UseRandomUA: true,
	}
}

// Client implements marketplace.Adapter by scraping Flight Club.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a Flight Club scraper.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultConfig().UserAgents
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string { return "Flight Club" }

func (c *Client) Available() bool {
	return c != nil && c.config.Enabled
}

// Search finds listings matching a free-text query.
func (c *Client) Search(ctx context.Context, query string, size float64) ([]model.Listing, error) {
	listings, err := c.searchWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}
	return filterSize(listings, size), nil
}

// LookupStyleCode searches for a style code and keeps only products whose
// SKU matches. Tile-parsed products without a SKU are stamped with the
// requested code since the search was exact.
func (c *Client) LookupStyleCode(ctx context.Context, styleCode string, size float64) ([]model.Listing, error) {
	listings, err := c.searchWithRetry(ctx, styleCode)
	if err != nil {
		return nil, err
	}

	var out []model.Listing
	for _, l := range listings {
		if l.StyleCode == "" {
			l.StyleCode = styleCode
		} else if !strings.EqualFold(normalize(l.StyleCode), normalize(styleCode)) {
			continue
		}
		out = append(out, l)
	}
	return filterSize(out, size), nil
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)
}

func filterSize(listings []model.Listing, size float64) []model.Listing {
	if size == 0 {
		return listings
	}
	var out []model.Listing
	for _, l := range listings {
		// Size 0 means the page didn't expose one; keep for display.
		if l.Size == 0 || l.Size == size {
			out = append(out, l)
		}
	}
	return out
}

func (c *Client) searchWithRetry(ctx context.Context, query string) ([]model.Listing, error) {
	if !c.Available() {
		return nil, fmt.Errorf("flightclub: scraping not enabled (set FLIGHTCLUB_SCRAPE=1)")
	}

	cacheKey := cache.SearchKey(c.Name(), query, 0)
	if c.config.Cache != nil {
		var cached []model.Listing
		if found, _ := c.config.Cache.Get(cacheKey, &cached); found {
			return cached, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		listings, err := c.performSearch(ctx, query)
		if err == nil {
			if c.config.Cache != nil {
				_ = c.config.Cache.Put(cacheKey, listings, 15*time.Minute)
			}
			return listings, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("flightclub: search failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) performSearch(ctx context.Context, query string) ([]model.Listing, error) {
	searchURL := fmt.Sprintf("%s/catalogsearch/result?query=%s", c.config.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return c.parseSearchPage(string(body)), nil
}

func (c *Client) setBrowserHeaders(req *http.Request) {
	ua := c.config.UserAgents[0]
	if c.config.UseRandomUA && len(c.config.UserAgents) > 1 {
		ua = c.config.UserAgents[rand.Intn(len(c.config.UserAgents))]
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", "https://www.google.com/")
}

// decodeBody wraps the response body in the decompressor the server chose.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

var initialStatePattern = regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*(\{.*?\});`)

// parseSearchPage reads products from the embedded state JSON first, then
// falls back to the rendered product tiles. Duplicate products (same SKU
// and size) keep the cheaper price.
func (c *Client) parseSearchPage(html string) []model.Listing {
	var listings []model.Listing

	if m := initialStatePattern.FindStringSubmatch(html); len(m) > 1 {
		listings = append(listings, c.parseInitialState(m[1])...)
	}
	if tiles := c.parseProductTiles(html); len(tiles) > 0 {
		listings = append(listings, tiles...)
	}

	return dedupe(listings)
}

// stateProduct is a product entry in the embedded search state.
type stateProduct struct {
	Name       string         `json:"name"`
	SKU        string         `json:"sku"`
	StyleID    string         `json:"style_id"`
	Slug       string         `json:"slug"`
	ImageURL   string         `json:"image_url"`
	Retail     any            `json:"retail_price_cents"`
	LowestAsk  any            `json:"lowest_price_cents"`
	SizePrices map[string]any `json:"size_prices"`
}

func (c *Client) parseInitialState(jsonStr string) []model.Listing {
	var state map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &state); err != nil {
		return nil
	}

	// Product lists have lived under a few different keys across site
	// revisions.
	var products []stateProduct
	for _, path := range []string{"searchResults", "products", "catalog"} {
		raw, ok := state[path]
		if !ok {
			continue
		}
		var wrapper struct {
			Results []stateProduct `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Results) > 0 {
			products = wrapper.Results
			break
		}
		if err := json.Unmarshal(raw, &products); err == nil && len(products) > 0 {
			break
		}
	}

	var listings []model.Listing
	for _, p := range products {
		listings = append(listings, c.stateListings(p)...)
	}
	return listings
}

func (c *Client) stateListings(p stateProduct) []model.Listing {
	sku := p.SKU
	if sku == "" {
		sku = p.StyleID
	}
	retail := centsPtr(p.Retail)
	productURL := ""
	if p.Slug != "" {
		productURL = c.config.BaseURL + "/" + strings.TrimPrefix(p.Slug, "/")
	}

	base := model.Listing{
		Marketplace: c.Name(),
		Name:        p.Name,
		StyleCode:   sku,
		Condition:   model.ConditionNew,
		RetailPrice: retail,
		URL:         productURL,
		ImageURL:    p.ImageURL,
		Timestamp:   time.Now().UTC(),
	}

	if len(p.SizePrices) > 0 {
		var listings []model.Listing
		for szStr, pxVal := range p.SizePrices {
			sz, err := strconv.ParseFloat(szStr, 64)
			if err != nil {
				continue
			}
			px, ok := toCents(pxVal)
			if !ok {
				continue
			}
			l := base
			l.Size = sz
			l.AskPrice = px
			listings = append(listings, l)
		}
		return listings
	}

	if px, ok := toCents(p.LowestAsk); ok {
		l := base
		l.AskPrice = px
		return []model.Listing{l}
	}
	return nil
}

// parseProductTiles extracts name, price and link from rendered search
// tiles. Tiles carry no SKU or size; those listings surface in raw results
// but are stamped with a style code only by LookupStyleCode.
func (c *Client) parseProductTiles(html string) []model.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var listings []model.Listing
	doc.Find("a[data-qa='ProductItem']").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("[data-qa='ProductItemTitle']").Text())
		priceText := strings.TrimSpace(s.Find("[data-qa='ProductItemPrice']").Text())
		price, ok := parseDollarText(priceText)
		if name == "" || !ok {
			return
		}

		href, _ := s.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = c.config.BaseURL + "/" + strings.TrimPrefix(href, "/")
		}
		img, _ := s.Find("img").Attr("src")

		listings = append(listings, model.Listing{
			Marketplace: c.Name(),
			Name:        name,
			AskPrice:    price,
			Condition:   model.ConditionNew,
			URL:         href,
			ImageURL:    img,
			Timestamp:   time.Now().UTC(),
		})
	})
	return listings
}

var dollarPattern = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`)

func parseDollarText(text string) (float64, bool) {
	m := dollarPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// toCents converts a cents denominated value to dollars.
func toCents(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x / 100, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f / 100, true
	default:
		return 0, false
	}
}

func centsPtr(v any) *float64 {
	if f, ok := toCents(v); ok {
		return &f
	}
	return nil
}

// dedupe keeps the cheapest listing per (name or SKU, size) key.
func dedupe(listings []model.Listing) []model.Listing {
	seen := make(map[string]int)
	var out []model.Listing
	for _, l := range listings {
		id := l.StyleCode
		if id == "" {
			id = strings.ToLower(l.Name)
		}
		key := fmt.Sprintf("%s|%g", id, l.Size)
		if i, ok := seen[key]; ok {
			if l.AskPrice < out[i].AskPrice {
				out[i] = l
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, l)
	}
	return out
}
