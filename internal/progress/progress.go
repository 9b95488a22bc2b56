// Package progress renders a terminal progress line for multi-marketplace
// scans. Output goes to stderr so it never mixes with piped results.
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Indicator tracks completion across marketplace queries. It is safe for
// concurrent Update calls; scans report each venue from its own goroutine.
type Indicator struct {
	enabled   bool
	message   string
	total     int
	startTime time.Time

	mu         sync.Mutex
	current    int
	lastUpdate time.Time
}

// New creates an indicator for an operation with total steps. A total of 0
// shows a spinner instead of a bar. Disabled indicators are no-ops, which
// keeps call sites unconditional.
func New(message string, total int, enabled bool) *Indicator {
	return &Indicator{
		enabled:   enabled,
		message:   message,
		total:     total,
		startTime: time.Now(),
	}
}

// Start prints the opening line.
func (p *Indicator) Start() {
	if !p.enabled {
		return
	}
	p.startTime = time.Now()
	fmt.Fprintf(os.Stderr, "%s...\n", p.message)
}

// Step records one completed unit and redraws, labeling the line with the
// marketplace that just finished.
func (p *Indicator) Step(label string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	now := time.Now()
	// Redraw at most every 100ms, except for the final step.
	if now.Sub(p.lastUpdate) < 100*time.Millisecond && p.current < p.total {
		return
	}
	p.lastUpdate = now

	if p.total > 0 {
		pct := float64(p.current) / float64(p.total) * 100
		fmt.Fprintf(os.Stderr, "\r%s [%s] %d/%d %s",
			p.message, bar(pct), p.current, p.total, label)
	} else {
		fmt.Fprintf(os.Stderr, "\r%s %s (%d done)", p.message, spinner(now.Sub(p.startTime)), p.current)
	}
}

// Finish overwrites the progress line with a completion summary.
func (p *Indicator) Finish() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s done (%d sources, %s)\n",
		p.message, p.current, formatDuration(time.Since(p.startTime)))
}

// FinishWithError overwrites the progress line with the failure.
func (p *Indicator) FinishWithError(err error) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s failed after %s: %v\n",
		p.message, formatDuration(time.Since(p.startTime)), err)
}

// Count returns completed steps, for tests.
func (p *Indicator) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func bar(pct float64) string {
	const width = 20
	filled := int(pct / 100 * width)
	if filled > width {
		filled = width
	}
	return strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
}

func spinner(elapsed time.Duration) string {
	frames := []string{"|", "/", "-", "\\"}
	return frames[int(elapsed.Milliseconds()/100)%len(frames)]
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
