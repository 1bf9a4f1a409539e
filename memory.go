package main

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	msgNoMemoryInfo    = "Memory information not available"
	msgMemoryQueryFail = "Error fetching memory info"
)

// memoryInfo holds total and available physical memory in bytes
type memoryInfo struct {
	capacity          uint64
	availableCapacity uint64
}

func (m memoryInfo) used() uint64 {
	if m.availableCapacity > m.capacity {
		return 0
	}
	return m.capacity - m.availableCapacity
}

func (m memoryInfo) capacityMiB() float64  { return toMiB(m.capacity) }
func (m memoryInfo) availableMiB() float64 { return toMiB(m.availableCapacity) }
func (m memoryInfo) usedMiB() float64      { return toMiB(m.used()) }

// usagePercent returns used memory as a share of capacity, two decimals
func (m memoryInfo) usagePercent() float64 {
	return round2(float64(m.used()) / float64(m.capacity) * 100)
}

// memoryUsage is the memory slot result
type memoryUsage struct {
	info    memoryInfo
	percent float64
}

func (m memoryUsage) slot() slot { return slotMemory }

func (m memoryUsage) render() content {
	return textContent("Memory Usage: " + fixed2(m.percent) + "%")
}

// readMemory queries memory capacity and returns the memory slot result
func readMemory(ctx context.Context, probe hostProbe, logger zerolog.Logger) result {
	info, err := probe.memoryInfo(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error fetching memory info")
		return messageResult{slotMemory, msgMemoryQueryFail}
	}

	if info == nil || info.capacity == 0 {
		return messageResult{slotMemory, msgNoMemoryInfo}
	}

	logger.Debug().
		Float64("capacity_mib", info.capacityMiB()).
		Float64("available_mib", info.availableMiB()).
		Msg("memory info")

	return memoryUsage{info: *info, percent: info.usagePercent()}
}
