package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chromedp/chromedp"
)

// fakeInjector records injections and answers with a fixed timing or error
type fakeInjector struct {
	timing *pageTiming
	err    error
	calls  int
}

func (f *fakeInjector) inject(_ context.Context, _ *tab, script string, res any) error {
	f.calls++
	if script != perfScript {
		return fmt.Errorf("unexpected script")
	}
	if f.err != nil {
		return f.err
	}

	out, ok := res.(**pageTiming)
	if !ok {
		return fmt.Errorf("unexpected result type %T", res)
	}
	*out = f.timing
	return nil
}

func sampleTiming() *pageTiming {
	return &pageTiming{
		NavigationStart:          1000,
		RequestStart:             1100,
		ResponseEnd:              1350,
		DomContentLoadedEventEnd: 3000,
		LoadEventEnd:             6000,
		TransferSizes:            []float64{1024, 0, 2048, 512},
	}
}

func TestNewPageMetrics(t *testing.T) {
	m := newPageMetrics(*sampleTiming())

	if m.pageLoadMs != 5000 {
		t.Fatalf("expected page load 5000ms, got %v", m.pageLoadMs)
	}
	if m.domReadyMs != 2000 {
		t.Fatalf("expected dom ready 2000ms, got %v", m.domReadyMs)
	}
	if m.responseMs != 250 {
		t.Fatalf("expected response 250ms, got %v", m.responseMs)
	}
	if m.requestCount != 4 {
		t.Fatalf("expected 4 requests, got %d", m.requestCount)
	}
	if m.totalBytes != 3584 {
		t.Fatalf("expected 3584 bytes, got %v", m.totalBytes)
	}
}

func TestBarRatio(t *testing.T) {
	tests := []struct {
		ms   float64
		want float64
	}{
		{0, 0},
		{5000, 0.5},
		{10000, 1},
		{25000, 1},
		{-40, 0},
	}

	for _, tt := range tests {
		if got := barRatio(tt.ms); got != tt.want {
			t.Fatalf("barRatio(%v) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestPageMetricsRender(t *testing.T) {
	c := newPageMetrics(*sampleTiming()).render()

	for _, want := range []string{
		"Page Load Time: 5000ms",
		"DOM Content Loaded: 2000ms",
		"Response Time: 250ms",
		"Number of Requests: 4",
		"Total Data Consumed: 3.50 KB",
	} {
		if !strings.Contains(c.text, want) {
			t.Fatalf("expected text to contain %q, got %q", want, c.text)
		}
		if !strings.Contains(c.html, want) {
			t.Fatalf("expected html to contain %q, got %q", want, c.html)
		}
	}

	for _, want := range []string{`style="width: 50%;"`, `style="width: 20%;"`, `style="width: 2.5%;"`} {
		if !strings.Contains(c.html, want) {
			t.Fatalf("expected html to contain %q, got %q", want, c.html)
		}
	}
	if strings.Count(c.html, "progress-bar-container") != 3 {
		t.Fatalf("expected three progress bars, got %q", c.html)
	}
}

func TestPageMetricsBarNeverExceedsFull(t *testing.T) {
	timing := sampleTiming()
	timing.LoadEventEnd = timing.NavigationStart + 42000

	c := newPageMetrics(*timing).render()
	if !strings.Contains(c.html, `style="width: 100%;"`) {
		t.Fatalf("expected clamped bar, got %q", c.html)
	}
	if !strings.Contains(c.text, "Page Load Time: 42000ms") {
		t.Fatalf("expected raw duration in text, got %q", c.text)
	}
}

func TestCollectPageMetrics(t *testing.T) {
	tests := []struct {
		name string
		inj  *fakeInjector
		want string
	}{
		{"error page", &fakeInjector{err: errErrorPage}, msgErrorPage},
		{"wrapped error page", &fakeInjector{err: fmt.Errorf("dispatch: %w", errErrorPage)}, msgErrorPage},
		{"dispatch failure", &fakeInjector{err: errors.New("cannot access contents of the page")}, "cannot access contents of the page"},
		{"undefined result", &fakeInjector{err: chromedp.ErrJSUndefined}, msgNoPerfData},
		{"null result", &fakeInjector{}, msgNoPerfData},
		{"timing", &fakeInjector{timing: sampleTiming()}, "Page Load Time: 5000ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := collectPageMetrics(context.Background(), tt.inj, &tab{id: "T1", url: "https://example.com"})
			if r.slot() != slotMetrics {
				t.Fatalf("expected metrics slot, got %s", r.slot())
			}
			if tt.inj.calls != 1 {
				t.Fatalf("expected a single injection, got %d", tt.inj.calls)
			}
			if got := r.render().text; !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
