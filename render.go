package main

import (
	"html"

	"github.com/rs/zerolog"
)

// slot is the id of a fixed display element in the popup
type slot string

const (
	slotDomain  slot = "current-domain"
	slotMetrics slot = "metrics"
	slotCPU     slot = "cpu-usage"
	slotMemory  slot = "memory-usage"
	slotBattery slot = "battery-info"
)

// slots lists every display slot in popup order
var slots = []slot{slotDomain, slotMetrics, slotCPU, slotMemory, slotBattery}

// content is what ends up in a slot, as plain text and as markup
type content struct {
	text string
	html string
}

// textContent builds content from plain text only
func textContent(text string) content {
	return content{text: text, html: html.EscapeString(text)}
}

// result is what every reader hands back to the dispatcher
type result interface {
	slot() slot
	render() content
}

// messageResult is a fixed user-facing string for a slot, used for
// errors and short circuits
type messageResult struct {
	target  slot
	message string
}

func (r messageResult) slot() slot      { return r.target }
func (r messageResult) render() content { return textContent(r.message) }

// sink receives rendered results
type sink interface {
	write(r result) error
	flush() error
}

// dispatcher is the single writer of display slots: it maps every result to
// its slot, fills each slot at most once and fans results out to the sinks
type dispatcher struct {
	sinks  []sink
	filled map[slot]result
	logger zerolog.Logger
}

// newDispatcher creates a new dispatcher for the given sinks
func newDispatcher(logger zerolog.Logger, sinks ...sink) *dispatcher {
	return &dispatcher{
		sinks:  sinks,
		filled: map[slot]result{},
		logger: logger,
	}
}

// dispatch drains results until the channel is closed and returns the
// results that filled a slot
func (d *dispatcher) dispatch(results <-chan result) map[slot]result {
	for r := range results {
		d.accept(r)
	}

	return d.filled
}

// accept writes a single result to all sinks unless its slot is already filled
func (d *dispatcher) accept(r result) {
	s := r.slot()
	if _, ok := d.filled[s]; ok {
		d.logger.Warn().Str("slot", string(s)).Msg("slot already rendered, dropping result")
		return
	}
	d.filled[s] = r

	for _, sk := range d.sinks {
		if err := sk.write(r); err != nil {
			d.logger.Error().Err(err).Str("slot", string(s)).Msg("failed to render slot")
		}
	}
}

// flush flushes every sink, logging failures and returning the first one
func (d *dispatcher) flush() error {
	var first error
	for _, sk := range d.sinks {
		if err := sk.flush(); err != nil {
			d.logger.Error().Err(err).Msg("failed to flush sink")
			if first == nil {
				first = err
			}
		}
	}

	return first
}
