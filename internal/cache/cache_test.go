package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guarzo/solewatch/internal/model"
)

func TestCachePutGet(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	c, err := New(cachePath)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	listings := []model.Listing{
		{Marketplace: "StockX", StyleCode: "DZ5485-612", Size: 10, AskPrice: 340},
		{Marketplace: "GOAT", StyleCode: "DZ5485-612", Size: 10, AskPrice: 325},
	}
	key := StyleCodeKey("StockX", "DZ5485-612", 10)

	if err := c.Put(key, listings, time.Hour); err != nil {
		t.Fatalf("Failed to put listings: %v", err)
	}

	var got []model.Listing
	found, err := c.Get(key, &got)
	if err != nil {
		t.Fatalf("Failed to get listings: %v", err)
	}
	if !found {
		t.Fatal("Expected to find cached listings")
	}
	if len(got) != 2 || got[0].AskPrice != 340 {
		t.Errorf("Got %+v, want the cached listings back", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	c, err := New(cachePath)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	if err := c.Put("short", "value", time.Millisecond); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var s string
	found, err := c.Get("short", &s)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Error("Expected expired entry to be a miss")
	}
}

func TestCachePersistsAcrossLoads(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	c1, err := New(cachePath)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	if err := c1.Put("key", 42, time.Hour); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}

	c2, err := New(cachePath)
	if err != nil {
		t.Fatalf("Failed to reload cache: %v", err)
	}
	var n int
	found, err := c2.Get("key", &n)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found || n != 42 {
		t.Errorf("Reloaded cache returned (%v, %d), want (true, 42)", found, n)
	}
}

func TestCacheCorruptFileStartsFresh(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(cachePath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	c, err := New(cachePath)
	if err != nil {
		t.Fatalf("Corrupt cache should not error: %v", err)
	}
	var s string
	if found, _ := c.Get("anything", &s); found {
		t.Error("Corrupt cache should have no entries")
	}
}

func TestCacheRemoveAndClear(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	c, err := New(cachePath)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	_ = c.Put("a", 1, time.Hour)
	_ = c.Put("b", 2, time.Hour)

	if err := c.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	var n int
	if found, _ := c.Get("a", &n); found {
		t.Error("Removed entry still present")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if found, _ := c.Get("b", &n); found {
		t.Error("Cleared cache still has entries")
	}
}

func TestBuildKeys(t *testing.T) {
	if got := BuildKey("a", "b", "c"); got != "a|b|c" {
		t.Errorf("BuildKey = %q", got)
	}
	if got := SearchKey("GOAT", "jordan 1", 10.5); got != "GOAT|search|jordan 1|10.5" {
		t.Errorf("SearchKey = %q", got)
	}
	if got := StyleCodeKey("eBay", "DZ5485-612", 0); got != "eBay|style|DZ5485-612|0" {
		t.Errorf("StyleCodeKey = %q", got)
	}
}
