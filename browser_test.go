package main

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// fakeTabSession records how the browser uses a tab
type fakeTabSession struct {
	name   string
	events *[]string
	runs   int
	err    error
}

func (f *fakeTabSession) run(_ context.Context, _ ...chromedp.Action) error {
	f.runs++
	return f.err
}

func (f *fakeTabSession) release() {
	*f.events = append(*f.events, "release "+f.name)
}

func TestBrowserCloseReleasesTabsBeforeDisconnecting(t *testing.T) {
	var events []string
	b := &browser{
		remote: true,
		cancel: func() { events = append(events, "disconnect") },
		tabs: map[target.ID]tabSession{
			"T1": &fakeTabSession{name: "T1", events: &events},
		},
	}

	b.close()

	if len(events) != 2 || events[0] != "release T1" || events[1] != "disconnect" {
		t.Fatalf("expected tab release before disconnect, got %v", events)
	}
	if len(b.tabs) != 0 {
		t.Fatalf("expected no tabs after close, got %d", len(b.tabs))
	}
}

func TestBrowserStoreTabReleasesReplacedSession(t *testing.T) {
	var events []string
	b := &browser{tabs: map[target.ID]tabSession{}}

	b.storeTab("T1", &fakeTabSession{name: "first", events: &events})
	b.storeTab("T1", &fakeTabSession{name: "second", events: &events})

	if len(events) != 1 || events[0] != "release first" {
		t.Fatalf("expected replaced session to be released, got %v", events)
	}
}

func TestBrowserInject(t *testing.T) {
	var events []string
	sess := &fakeTabSession{name: "T1", events: &events}
	b := &browser{tabs: map[target.ID]tabSession{"T1": sess}}

	if err := b.inject(context.Background(), &tab{id: "T2"}, perfScript, nil); err == nil {
		t.Fatalf("expected unknown tab to fail")
	}

	if err := b.inject(context.Background(), &tab{id: "T1"}, perfScript, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.runs != 2 {
		t.Fatalf("expected location check and evaluation, got %d runs", sess.runs)
	}
	if len(events) != 0 {
		t.Fatalf("expected inject to leave the tab attached, got %v", events)
	}

	sess.err = errors.New("target closed")
	if err := b.inject(context.Background(), &tab{id: "T1"}, perfScript, nil); err == nil {
		t.Fatalf("expected run failure to be returned")
	}
}

func TestAttachedTabReleaseKeepsTarget(t *testing.T) {
	ctx, cancel := chromedp.NewContext(context.Background(), chromedp.WithTargetID("T1"))
	at := &attachedTab{ctx: ctx, cancel: cancel, logger: zerolog.Nop()}

	at.release()

	if ctx.Err() == nil {
		t.Fatalf("expected tab context to be cancelled")
	}
	if c := chromedp.FromContext(ctx); c == nil || c.Target != nil {
		t.Fatalf("expected no target handle left after release")
	}
}
