package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/model"
)

// NotifyFunc receives the opportunities a scheduled scan saw for the first
// time. It runs on the cron goroutine and should return quickly.
type NotifyFunc func(result *ScanResult, fresh []model.Opportunity)

// Schedule re-runs one scan on a cron expression and reports opportunities
// that were not present in any earlier run. Closed prices re-trigger once
// they reappear at a different level, since the key includes both prices.
type Schedule struct {
	watcher *Watcher
	opts    ScanOptions
	spec    string
	notify  NotifyFunc
	logger  *slog.Logger

	mu       sync.Mutex
	seen     map[string]struct{}
	reported bool
}

// NewSchedule creates a scheduled watch. spec is a standard 5-field cron
// expression or a descriptor like "@every 15m".
func NewSchedule(w *Watcher, opts ScanOptions, spec string, notify NotifyFunc) *Schedule {
	return &Schedule{
		watcher: w,
		opts:    opts,
		spec:    spec,
		notify:  notify,
		logger:  w.logger,
		seen:    make(map[string]struct{}),
	}
}

// Run blocks until ctx is cancelled, scanning once immediately and then on
// every cron tick.
func (s *Schedule) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.tick(ctx)
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return ctx.Err()
}

func (s *Schedule) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := s.watcher.Scan(ctx, s.opts)
	if err != nil {
		s.logger.Error("scheduled scan failed", slog.String("error", err.Error()))
		return
	}

	fresh := s.filterFresh(result.Opportunities)

	// The first tick always reports so the caller sees the baseline; later
	// ticks only fire when something new appeared.
	s.mu.Lock()
	first := !s.reported
	s.reported = true
	s.mu.Unlock()

	if s.notify != nil && (first || len(fresh) > 0) {
		s.notify(result, fresh)
	}
}

// filterFresh returns opportunities not seen by a previous tick and marks
// them seen.
func (s *Schedule) filterFresh(opps []model.Opportunity) []model.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []model.Opportunity
	for _, opp := range opps {
		key := opportunityKey(opp)
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		fresh = append(fresh, opp)
	}
	return fresh
}

func opportunityKey(o model.Opportunity) string {
	return fmt.Sprintf("%s|%g|%s|%.2f|%s|%.2f",
		arbitrage.NormalizeStyleCode(o.StyleCode), o.Size,
		o.BuyMarketplace(), o.Buy.AskPrice,
		o.SellMarketplace(), o.Sell.AskPrice)
}
