package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"
)

// bars are scaled against a fixed ten second ceiling
const barCeilingMs = 10000

var errErrorPage = errors.New("tab is showing an error page")

const (
	msgErrorPage       = "Error: Tab is showing an error page."
	msgNoPerfData      = "No performance data available."
	msgInternalPage    = "Performance data is not available for this URL."
	msgTabInaccessible = "Error: Tab is showing an error page or cannot be accessed."
)

// injector runs a script in the page context of a tab and decodes its
// return value into res
type injector interface {
	inject(ctx context.Context, t *tab, script string, res any) error
}

// pageTiming is the raw payload returned by perfScript
type pageTiming struct {
	NavigationStart          float64   `json:"navigationStart"`
	RequestStart             float64   `json:"requestStart"`
	ResponseEnd              float64   `json:"responseEnd"`
	DomContentLoadedEventEnd float64   `json:"domContentLoadedEventEnd"`
	LoadEventEnd             float64   `json:"loadEventEnd"`
	TransferSizes            []float64 `json:"transferSizes"`
}

// pageMetrics holds the figures derived from a page's timing records
type pageMetrics struct {
	pageLoadMs   float64
	domReadyMs   float64
	responseMs   float64
	requestCount int
	totalBytes   float64
}

// newPageMetrics derives the page figures from raw timing
func newPageMetrics(t pageTiming) pageMetrics {
	var total float64
	for _, size := range t.TransferSizes {
		if size > 0 {
			total += size
		}
	}

	return pageMetrics{
		pageLoadMs:   t.LoadEventEnd - t.NavigationStart,
		domReadyMs:   t.DomContentLoadedEventEnd - t.NavigationStart,
		responseMs:   t.ResponseEnd - t.RequestStart,
		requestCount: len(t.TransferSizes),
		totalBytes:   total,
	}
}

// barRatio returns the share of the bar a duration fills, within [0, 1]
func barRatio(ms float64) float64 {
	return math.Max(0, math.Min(ms/barCeilingMs, 1))
}

func (m pageMetrics) slot() slot { return slotMetrics }

func (m pageMetrics) render() content {
	kb := fixed2(m.totalBytes / 1024)

	var text strings.Builder
	fmt.Fprintf(&text, "Page Load Time: %sms\n", formatMs(m.pageLoadMs))
	fmt.Fprintf(&text, "DOM Content Loaded: %sms\n", formatMs(m.domReadyMs))
	fmt.Fprintf(&text, "Response Time: %sms\n", formatMs(m.responseMs))
	fmt.Fprintf(&text, "Number of Requests: %d\n", m.requestCount)
	fmt.Fprintf(&text, "Total Data Consumed: %s KB", kb)

	var markup strings.Builder
	fmt.Fprintf(&markup, "<p>Page Load Time: %sms</p>\n", formatMs(m.pageLoadMs))
	markup.WriteString(progressBar("progress-bar fill", m.pageLoadMs))
	fmt.Fprintf(&markup, "<p>DOM Content Loaded: %sms</p>\n", formatMs(m.domReadyMs))
	markup.WriteString(progressBar("progress-bar", m.domReadyMs))
	fmt.Fprintf(&markup, "<p>Response Time: %sms</p>\n", formatMs(m.responseMs))
	markup.WriteString(progressBar("progress-bar", m.responseMs))
	fmt.Fprintf(&markup, "<p>Number of Requests: %d</p>\n", m.requestCount)
	fmt.Fprintf(&markup, "<p>Total Data Consumed: %s KB</p>\n", kb)

	return content{text: text.String(), html: markup.String()}
}

// progressBar renders a bar container filled to the duration's ratio
func progressBar(class string, ms float64) string {
	width := strconv.FormatFloat(barRatio(ms)*100, 'f', -1, 64)
	return `<div class="progress-bar-container"><div class="` + class +
		`" style="width: ` + width + `%;"></div></div>` + "\n"
}

// formatMs prints a millisecond figure without trailing zeros
func formatMs(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

// collectPageMetrics injects perfScript into the tab and converts the
// outcome into a result for the metrics slot
func collectPageMetrics(ctx context.Context, inj injector, t *tab) result {
	var timing *pageTiming
	err := inj.inject(ctx, t, perfScript, &timing)
	switch {
	case errors.Is(err, errErrorPage):
		return messageResult{slotMetrics, msgErrorPage}
	case errors.Is(err, chromedp.ErrJSNull), errors.Is(err, chromedp.ErrJSUndefined):
		return messageResult{slotMetrics, msgNoPerfData}
	case err != nil:
		return messageResult{slotMetrics, err.Error()}
	case timing == nil:
		return messageResult{slotMetrics, msgNoPerfData}
	}

	return newPageMetrics(*timing)
}
