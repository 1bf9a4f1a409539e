package main

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// session is one popup open: it locates the tab, reads the page metrics
// and the host resources, and hands every outcome to the dispatcher
type session struct {
	id       string
	locator  tabLocator
	injector injector
	probe    hostProbe
	logger   zerolog.Logger
}

// newSession creates a new session with a fresh id
func newSession(locator tabLocator, inj injector, probe hostProbe, logger zerolog.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:       id,
		locator:  locator,
		injector: inj,
		probe:    probe,
		logger:   logger.With().Str("session", id).Logger(),
	}
}

// run issues the tab inspection and the three host readers concurrently
// and sends their results as they complete; results is closed once every
// branch is done
func (s *session) run(ctx context.Context, results chan<- result) {
	defer close(results)

	emit := func(r result) {
		results <- r
	}

	branches := []struct {
		name      string
		fallbacks []messageResult
		fn        func()
	}{
		// slots the tab chain already filled drop their fallback
		{"tab", []messageResult{{slotDomain, msgTabInaccessible}, {slotMetrics, msgNoPerfData}}, func() { s.inspectTab(ctx, emit) }},
		{"cpu", []messageResult{{slotCPU, msgCPUQueryFail}}, func() { emit(readCPU(ctx, s.probe, s.logger)) }},
		{"memory", []messageResult{{slotMemory, msgMemoryQueryFail}}, func() { emit(readMemory(ctx, s.probe, s.logger)) }},
		{"battery", []messageResult{{slotBattery, msgBatteryQueryFail}}, func() { emit(readBattery(ctx, s.probe, s.logger)) }},
	}

	var wg sync.WaitGroup
	for _, b := range branches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					s.logger.Error().Interface("panic", rec).Str("branch", b.name).Msg("reader panicked")
					for _, r := range b.fallbacks {
						emit(r)
					}
				}
			}()

			b.fn()
		}()
	}

	wg.Wait()
}

// inspectTab resolves the active tab's label and collects its page metrics,
// short circuiting on inaccessible tabs and internal pages
func (s *session) inspectTab(ctx context.Context, emit func(result)) {
	t, err := s.locator.activeTab(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("active tab cannot be accessed")
		emit(messageResult{slotDomain, msgTabInaccessible})
		return
	}

	st, err := newSite(t.url)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", t.url).Msg("active tab has no usable url")
		emit(messageResult{slotDomain, msgTabInaccessible})
		return
	}

	s.logger.Debug().Str("url", st.rawURL).Str("label", st.label).Msg("resolved site")
	emit(siteLabel{st})

	if st.isInternal() {
		emit(messageResult{slotMetrics, msgInternalPage})
		return
	}

	emit(collectPageMetrics(ctx, s.injector, t))
}

// gather runs the session and dispatches its results, returning the
// results that filled a slot
func (s *session) gather(ctx context.Context, d *dispatcher) map[slot]result {
	results := make(chan result, len(slots))
	go s.run(ctx, results)

	return d.dispatch(results)
}
