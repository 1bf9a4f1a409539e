package main

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	msgNoCPUInfo    = "No CPU information available"
	msgCPUUnusable  = "CPU usage not available"
	msgCPUQueryFail = "Error fetching CPU information"
)

// processorUsage holds the cumulative busy time counters of one processor
type processorUsage struct {
	user   float64
	kernel float64
	idle   float64
	total  float64
}

// percent returns the processor's busy share rounded to two decimals,
// NaN or infinite when total is zero
func (p processorUsage) percent() float64 {
	return round2((p.user + p.kernel) / p.total * 100)
}

// cpuUsage is the averaged usage over all valid processors
type cpuUsage struct {
	percent float64
	valid   int
}

func (c cpuUsage) slot() slot { return slotCPU }

func (c cpuUsage) render() content {
	return textContent("CPU Usage: " + fixed2(c.percent) + "%")
}

// aggregateCPU averages the usage of every processor with a numeric usage
// figure, reporting false when there is none
func aggregateCPU(processors []processorUsage, logger zerolog.Logger) (cpuUsage, bool) {
	var sum float64
	var valid int
	for i, p := range processors {
		pct := p.percent()
		if !isFinite(pct) {
			logger.Warn().
				Int("processor", i).
				Float64("user", p.user).
				Float64("kernel", p.kernel).
				Float64("idle", p.idle).
				Float64("total", p.total).
				Msg("invalid cpu usage value")
			continue
		}

		sum += pct
		valid++
	}

	if valid == 0 {
		return cpuUsage{}, false
	}

	return cpuUsage{percent: round2(sum / float64(valid)), valid: valid}, true
}

// readCPU queries processor counters and returns the cpu slot result
func readCPU(ctx context.Context, probe hostProbe, logger zerolog.Logger) result {
	processors, err := probe.cpuInfo(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error fetching cpu info")
		return messageResult{slotCPU, msgCPUQueryFail}
	}

	if len(processors) == 0 {
		logger.Warn().Msg("no cpu information available")
		return messageResult{slotCPU, msgNoCPUInfo}
	}

	usage, ok := aggregateCPU(processors, logger)
	if !ok {
		logger.Warn().Msg("no valid cpu usage values found")
		return messageResult{slotCPU, msgCPUUnusable}
	}

	return usage
}
