// Package marketplace defines the adapter contract every sneaker data
// source implements. The arbitrage engine and the watcher depend only on
// this interface, never on a concrete venue client.
package marketplace

import (
	"context"

	"github.com/guarzo/solewatch/internal/model"
)

// Adapter is a single marketplace data source.
//
// Search and LookupStyleCode return an empty slice, not an error, when a
// query simply has no results; errors are reserved for transport and
// credential failures. A size of 0 means "all sizes".
type Adapter interface {
	// Name returns the human-readable marketplace name, e.g. "StockX".
	Name() string

	// Available reports whether credentials are configured. Callers must
	// check this before issuing queries.
	Available() bool

	// Search finds listings matching a free-text query.
	Search(ctx context.Context, query string, size float64) ([]model.Listing, error)

	// LookupStyleCode finds listings for an exact manufacturer style code.
	LookupStyleCode(ctx context.Context, styleCode string, size float64) ([]model.Listing, error)
}

// Configured filters adapters down to the ones with credentials present.
func Configured(adapters []Adapter) []Adapter {
	var out []Adapter
	for _, a := range adapters {
		if a != nil && a.Available() {
			out = append(out, a)
		}
	}
	return out
}
