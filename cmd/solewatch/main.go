// Command solewatch scans sneaker marketplaces for cross-market price gaps.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guarzo/solewatch/internal/cache"
	"github.com/guarzo/solewatch/internal/ebay"
	"github.com/guarzo/solewatch/internal/flightclub"
	"github.com/guarzo/solewatch/internal/goat"
	"github.com/guarzo/solewatch/internal/kicksdb"
	"github.com/guarzo/solewatch/internal/marketplace"
	"github.com/guarzo/solewatch/internal/stockx"
)

var (
	cachePath string
	verbose   bool
)

func main() {
	// Missing .env is fine; keys can come from the environment directly.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "solewatch",
		Short: "Find sneaker arbitrage across marketplaces",
		Long: `solewatch queries sneaker marketplaces, matches listings by style code
and size, and reports where the same shoe can be bought low on one
marketplace and sold higher on another after seller fees.

API keys are read from the environment (or a .env file):
  KICKSDB_API_KEY     KicksDB aggregator
  RAPIDAPI_KEY        StockX via RapidAPI
  RETAILED_API_KEY    GOAT via Retailed.io
  EBAY_CLIENT_ID      eBay Browse API
  EBAY_CLIENT_SECRET  eBay Browse API
  FLIGHTCLUB_SCRAPE   set to 1 to enable the Flight Club scraper

Examples:
  solewatch search "Jordan 1 Retro High OG" --size 10
  solewatch lookup DZ5485-612 --size 10 --min-profit 20
  solewatch watch --schedule "@every 15m" --size 10 "Jordan 4"
  solewatch serve --port 8080`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", defaultCachePath(),
		"Price cache file (empty to disable caching)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

func defaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "solewatch", "prices.json")
	}
	return "solewatch-cache.json"
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildAdapters constructs every marketplace client whose credentials are
// present in the environment. Clients without credentials are still returned
// so status can report them as unconfigured.
func buildAdapters(logger *slog.Logger) []marketplace.Adapter {
	var priceCache *cache.Cache
	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			if c, err := cache.New(cachePath); err == nil {
				priceCache = c
			} else {
				logger.Warn("price cache disabled", slog.Any("error", err))
			}
		}
	}

	fcCfg := flightclub.DefaultConfig()
	fcCfg.Enabled = os.Getenv("FLIGHTCLUB_SCRAPE") == "1"
	fcCfg.Cache = priceCache

	return []marketplace.Adapter{
		kicksdb.New(kicksdb.Config{APIKey: os.Getenv("KICKSDB_API_KEY"), Cache: priceCache}),
		ebay.New(ebay.Config{
			ClientID:     os.Getenv("EBAY_CLIENT_ID"),
			ClientSecret: os.Getenv("EBAY_CLIENT_SECRET"),
		}),
		goat.New(goat.Config{APIKey: os.Getenv("RETAILED_API_KEY"), Cache: priceCache}),
		stockx.New(stockx.Config{APIKey: os.Getenv("RAPIDAPI_KEY"), Cache: priceCache}),
		flightclub.New(fcCfg),
	}
}
