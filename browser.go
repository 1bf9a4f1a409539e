package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

var errTabInaccessible = errors.New("tab cannot be accessed")

// pageSettleDelay lets the load event handlers finish before the
// timing script runs in launch mode
const pageSettleDelay = 500 * time.Millisecond

// tab is the browser tab being inspected
type tab struct {
	id  target.ID
	url string
}

// tabLocator finds the tab to inspect
type tabLocator interface {
	activeTab(ctx context.Context) (*tab, error)
}

// detachTimeout bounds the detach request sent while releasing an
// attached tab
const detachTimeout = time.Second

// tabSession runs actions against one page target
type tabSession interface {
	run(ctx context.Context, actions ...chromedp.Action) error
	release()
}

// ownedTab is the launched browser's own tab, closed with the browser
type ownedTab struct {
	ctx context.Context
}

func (t ownedTab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := bindContext(ctx, t.ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (ownedTab) release() {}

// attachedTab is a tab of a browser the user is running: it is detached
// from when released and never closed
type attachedTab struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

func (t *attachedTab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := bindContext(ctx, t.ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// release detaches from the tab and drops chromedp's handle on it, so
// cancelling the tab context no longer closes the target
func (t *attachedTab) release() {
	c := chromedp.FromContext(t.ctx)
	if c != nil && c.Target != nil {
		ctx, cancel := context.WithTimeout(context.Background(), detachTimeout)
		defer cancel()

		err := target.DetachFromTarget().
			WithSessionID(c.Target.SessionID).
			Do(cdp.WithExecutor(ctx, c.Browser))
		if err != nil {
			t.logger.Warn().Err(err).Str("target", string(c.Target.TargetID)).Msg("failed to detach from tab")
		}
		c.Target = nil
	}

	t.cancel()
}

// browser drives Chrome over the DevTools protocol, either a headless
// instance it launches or a running one it attaches to - it satisfies
// both the tabLocator and injector interfaces
type browser struct {
	remote     bool
	browserCtx context.Context
	cancel     context.CancelFunc
	logger     zerolog.Logger

	// url to open in launch mode, replaced per session in batch mode
	mu   sync.Mutex
	url  string
	tabs map[target.ID]tabSession
}

// newBrowser starts a headless browser, or connects to the DevTools
// websocket at remoteURL when it is set
func newBrowser(ctx context.Context, remoteURL string, logger zerolog.Logger) (*browser, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc

	if remoteURL != "" {
		// attached tabs live until close releases them, even after ctx is done
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), remoteURL)
	} else {
		// setup browser options
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	}

	// create browser context
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { logger.Debug().Msgf(format, args...) }),
		chromedp.WithErrorf(func(format string, args ...any) { logger.Error().Msgf(format, args...) }),
	)

	b := &browser{
		remote:     remoteURL != "",
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		logger: logger,
		tabs:   map[target.ID]tabSession{},
	}

	if !b.remote {
		// open headless browser with a blank page
		err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank"))
		if err != nil {
			b.close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	}

	return b, nil
}

// close releases every tab, then shuts down the launched browser or
// drops the connection to the attached one
func (b *browser) close() {
	b.mu.Lock()
	tabs := b.tabs
	b.tabs = map[target.ID]tabSession{}
	b.mu.Unlock()

	for _, t := range tabs {
		t.release()
	}
	b.cancel()
}

// setURL sets the URL opened by the next activeTab call in launch mode
func (b *browser) setURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
}

// activeTab returns the tab to inspect: the first page target of the
// attached browser, or the launched browser's tab after navigating it
func (b *browser) activeTab(ctx context.Context) (*tab, error) {
	if b.remote {
		return b.remoteTab(ctx)
	}

	return b.launchedTab(ctx)
}

// remoteTab picks the foreground page among the running browser's targets
func (b *browser) remoteTab(_ context.Context) (*tab, error) {
	targets, err := chromedp.Targets(b.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	info := pickPageTarget(targets)
	if info == nil {
		return nil, fmt.Errorf("no page targets: %w", errTabInaccessible)
	}

	t := &tab{id: info.TargetID, url: info.URL}
	if t.url == "" || isErrorPageURL(t.url) {
		return nil, fmt.Errorf("tab %s at %q: %w", t.id, t.url, errTabInaccessible)
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx, chromedp.WithTargetID(info.TargetID))
	b.storeTab(t.id, &attachedTab{ctx: tabCtx, cancel: cancel, logger: b.logger})

	return t, nil
}

// launchedTab navigates the launched browser's tab to the configured URL
func (b *browser) launchedTab(ctx context.Context) (*tab, error) {
	b.mu.Lock()
	url := b.url
	b.mu.Unlock()

	own := ownedTab{ctx: b.browserCtx}

	// navigate browser to url
	var location string
	err := own.run(ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(pageSettleDelay),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %v: %w", url, err, errTabInaccessible)
	}

	if location == "" || isErrorPageURL(location) {
		return nil, fmt.Errorf("tab at %q: %w", location, errTabInaccessible)
	}

	id := chromedp.FromContext(b.browserCtx).Target.TargetID
	b.storeTab(id, own)

	return &tab{id: id, url: location}, nil
}

// inject evaluates the script in the tab's page context and decodes its
// return value into res
func (b *browser) inject(ctx context.Context, t *tab, script string, res any) error {
	b.mu.Lock()
	sess, ok := b.tabs[t.id]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("no such tab %s", t.id)
	}

	var location string
	err := sess.run(ctx, chromedp.Location(&location))
	if err != nil {
		return fmt.Errorf("failed to read tab location: %w", err)
	}
	if isErrorPageURL(location) {
		return errErrorPage
	}

	return sess.run(ctx, chromedp.Evaluate(script, res))
}

// storeTab keeps the session for id, releasing any session it replaces
func (b *browser) storeTab(id target.ID, sess tabSession) {
	b.mu.Lock()
	prev := b.tabs[id]
	b.tabs[id] = sess
	b.mu.Unlock()

	if prev != nil && prev != sess {
		prev.release()
	}
}

// bindContext derives a run context from a chromedp context that is
// cancelled when either ctx is done or its deadline passes
func bindContext(ctx, chromeCtx context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(chromeCtx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(chromeCtx)
	}

	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// pickPageTarget returns the first page target that is not a DevTools frontend
func pickPageTarget(targets []*target.Info) *target.Info {
	for _, t := range targets {
		if t == nil || t.Type != "page" {
			continue
		}
		if strings.HasPrefix(t.URL, "devtools://") {
			continue
		}

		return t
	}

	return nil
}
