package progress

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDisabledIsNoOp(t *testing.T) {
	p := New("scan", 3, false)
	p.Start()
	p.Step("StockX")
	p.Finish()
	p.FinishWithError(errors.New("boom"))

	if p.Count() != 0 {
		t.Errorf("disabled indicator counted %d steps", p.Count())
	}
}

func TestConcurrentSteps(t *testing.T) {
	p := New("scan", 10, true)
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Step("venue")
		}()
	}
	wg.Wait()
	p.Finish()

	if p.Count() != 10 {
		t.Errorf("count = %d, want 10", p.Count())
	}
}

func TestBarWidth(t *testing.T) {
	for _, pct := range []float64{0, 33, 100, 150} {
		if got := len(bar(pct)); got != 20 {
			t.Errorf("bar(%.0f) width = %d, want 20", pct, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
