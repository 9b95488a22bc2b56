// Package watcher coordinates marketplace queries and arbitrage detection.
// One Scan is one snapshot: every configured adapter is queried once, the
// merged listings run through the engine, and the result is returned.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/marketplace"
	"github.com/guarzo/solewatch/internal/model"
)

// ErrNoAdapters is returned when no marketplace has credentials configured.
// This is a user-facing setup problem, not a scan failure.
var ErrNoAdapters = errors.New("no marketplace APIs configured")

// ScanOptions describe one scan.
type ScanOptions struct {
	// Query is the free-text search term, e.g. "1 Retro High OG".
	Query string
	// StyleCode switches the scan to exact style-code lookup when set.
	StyleCode string
	// Size filters to one shoe size; 0 means all sizes.
	Size float64

	// Engine thresholds and fee overrides; see arbitrage.Options.
	MinGrossSpread float64
	MinNetProfit   float64
	SellerFees     map[string]float64

	// OnSourceDone, when set, is called as each marketplace finishes. It
	// runs on that marketplace's goroutine and must be safe for concurrent
	// use.
	OnSourceDone func(marketplace string)
}

// AdapterError records a marketplace failure that did not abort the scan.
type AdapterError struct {
	Marketplace string
	Err         error
}

func (e AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Marketplace, e.Err)
}

// ScanResult is the outcome of one snapshot scan.
type ScanResult struct {
	// Listings holds everything the adapters returned, sorted by ask price,
	// including listings too incomplete to group (no style code or size).
	Listings []model.Listing
	// Opportunities are the engine's ranked results.
	Opportunities []model.Opportunity
	// Errors lists adapters that failed; their listings are simply absent.
	Errors []AdapterError
}

// Watcher runs scans against a fixed adapter set.
type Watcher struct {
	adapters []marketplace.Adapter
	logger   *slog.Logger
}

// New creates a watcher. A nil logger discards log output.
func New(adapters []marketplace.Adapter, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{adapters: adapters, logger: logger}
}

// Scan queries every configured adapter and detects arbitrage across the
// merged listings. Adapter failures are isolated: a venue that errors is
// reported in ScanResult.Errors while the remaining venues' listings are
// still used. Only a total absence of configured adapters is an error.
func (w *Watcher) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	configured := marketplace.Configured(w.adapters)
	if len(configured) == 0 {
		return nil, ErrNoAdapters
	}

	// Fan out one goroutine per venue. Each adapter owns its rate limits
	// and timeouts; the scan just collects.
	type fetchResult struct {
		index    int
		name     string
		listings []model.Listing
		err      error
	}

	results := make([]fetchResult, len(configured))
	var wg sync.WaitGroup
	for i, adapter := range configured {
		wg.Add(1)
		go func(i int, a marketplace.Adapter) {
			defer wg.Done()
			var listings []model.Listing
			var err error
			if opts.StyleCode != "" {
				listings, err = a.LookupStyleCode(ctx, opts.StyleCode, opts.Size)
			} else {
				listings, err = a.Search(ctx, opts.Query, opts.Size)
			}
			results[i] = fetchResult{index: i, name: a.Name(), listings: listings, err: err}
			if opts.OnSourceDone != nil {
				opts.OnSourceDone(a.Name())
			}
		}(i, adapter)
	}
	wg.Wait()

	result := &ScanResult{}
	for _, r := range results {
		if r.err != nil {
			w.logger.Warn("marketplace query failed",
				slog.String("marketplace", r.name),
				slog.String("error", r.err.Error()))
			result.Errors = append(result.Errors, AdapterError{Marketplace: r.name, Err: r.err})
			continue
		}
		result.Listings = append(result.Listings, r.listings...)
	}

	sort.SliceStable(result.Listings, func(i, j int) bool {
		return result.Listings[i].AskPrice < result.Listings[j].AskPrice
	})

	result.Opportunities = arbitrage.Find(result.Listings, arbitrage.Options{
		MinGrossSpread: opts.MinGrossSpread,
		MinNetProfit:   opts.MinNetProfit,
		SellerFees:     opts.SellerFees,
	})

	w.logger.Info("scan complete",
		slog.Int("sources", len(configured)),
		slog.Int("listings", len(result.Listings)),
		slog.Int("opportunities", len(result.Opportunities)),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

// Adapters returns the watcher's adapter set, configured or not. The status
// command uses this to show what is missing.
func (w *Watcher) Adapters() []marketplace.Adapter {
	return w.adapters
}
