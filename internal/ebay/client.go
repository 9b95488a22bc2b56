// Package ebay pulls sneaker listings from eBay's Browse API. Unlike the
// consignment marketplaces, eBay listings carry no structured style code or
// size, so sizes are extracted from listing titles on a best-effort basis.
package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/guarzo/solewatch/internal/model"
)

const (
	defaultBaseURL = "https://api.ebay.com/buy/browse/v1"

	// Men's athletic shoes category.
	sneakerCategory = "15709"
)

// Config holds eBay client settings.
type Config struct {
	ClientID     string // EBAY_CLIENT_ID
	ClientSecret string // EBAY_CLIENT_SECRET
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration
}

// Client implements marketplace.Adapter for eBay.
type Client struct {
	clientID    string
	baseURL     string
	httpClient  *http.Client
	tokens      *tokenSource
	rateLimiter *rate.Limiter
}

// New creates an eBay Browse API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		clientID:    cfg.ClientID,
		baseURL:     cfg.BaseURL,
		httpClient:  httpClient,
		tokens:      newTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, httpClient),
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (c *Client) Name() string { return "eBay" }

func (c *Client) Available() bool {
	return c != nil && c.clientID != "" && c.tokens.clientSecret != ""
}

// itemSummary is the subset of a Browse API item we consume.
type itemSummary struct {
	Title string `json:"title"`
	Price struct {
		Value string `json:"value"`
	} `json:"price"`
	Condition  string `json:"condition"`
	ItemWebURL string `json:"itemWebUrl"`
	Image      struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
}

// Search finds listings by name, scoped to Air Jordans. The size filter is
// folded into the query text since Browse results only expose size through
// titles.
func (c *Client) Search(ctx context.Context, query string, size float64) ([]model.Listing, error) {
	q := "Air Jordan " + query
	if size != 0 {
		q += fmt.Sprintf(" Size %g", size)
	}

	items, err := c.searchRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.parseItems(items, "", size), nil
}

// LookupStyleCode searches for the style code text and stamps the resulting
// listings with it; eBay sellers conventionally include the code in titles.
func (c *Client) LookupStyleCode(ctx context.Context, styleCode string, size float64) ([]model.Listing, error) {
	q := styleCode
	if size != 0 {
		q += fmt.Sprintf(" Size %g", size)
	}

	items, err := c.searchRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.parseItems(items, styleCode, size), nil
}

func (c *Client) searchRaw(ctx context.Context, query string) ([]itemSummary, error) {
	if !c.Available() {
		return nil, fmt.Errorf("ebay: credentials not configured (set EBAY_CLIENT_ID and EBAY_CLIENT_SECRET)")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ebay: rate limiter: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("ebay: oauth: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("category_ids", sneakerCategory)
	params.Set("filter", "conditionIds:{1000}") // new with tags
	params.Set("sort", "price")
	params.Set("limit", "50")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ebay: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebay: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ebay: API returned status %d", resp.StatusCode)
	}

	var body struct {
		ItemSummaries []itemSummary `json:"itemSummaries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ebay: decode response: %w", err)
	}
	return body.ItemSummaries, nil
}

func (c *Client) parseItems(items []itemSummary, styleCode string, size float64) []model.Listing {
	var listings []model.Listing
	for _, item := range items {
		listing, ok := c.parseItem(item, styleCode)
		if !ok {
			continue
		}
		// A listing whose title revealed a different size is a mismatch;
		// size 0 (not found in title) is kept and excluded from grouping
		// downstream.
		if size != 0 && listing.Size != 0 && listing.Size != size {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

func (c *Client) parseItem(item itemSummary, styleCode string) (model.Listing, bool) {
	price, err := strconv.ParseFloat(item.Price.Value, 64)
	if err != nil {
		return model.Listing{}, false
	}

	condition := model.ConditionNew
	if strings.Contains(strings.ToLower(item.Condition), "used") {
		condition = model.ConditionUsed
	}

	return model.Listing{
		Marketplace: c.Name(),
		Name:        item.Title,
		StyleCode:   styleCode,
		Size:        extractSize(item.Title),
		AskPrice:    price,
		Condition:   condition,
		URL:         item.ItemWebURL,
		ImageURL:    item.Image.ImageURL,
		Timestamp:   time.Now().UTC(),
	}, true
}

var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)si?ze?\s*(\d{1,2}(?:\.\d)?)`),
	regexp.MustCompile(`(?i)sz\.?\s*(\d{1,2}(?:\.\d)?)`),
	regexp.MustCompile(`\b(\d{1,2}(?:\.\d)?)\s*US\b`),
}

// extractSize pulls a US shoe size out of a listing title, e.g. "Size 10"
// or "Sz 10.5". Returns 0 when no pattern matches.
func extractSize(title string) float64 {
	for _, pat := range sizePatterns {
		if m := pat.FindStringSubmatch(title); m != nil {
			if size, err := strconv.ParseFloat(m[1], 64); err == nil {
				return size
			}
		}
	}
	return 0
}
