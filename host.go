package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// hostProbe queries the host machine for resource readings
type hostProbe interface {
	cpuInfo(ctx context.Context) ([]processorUsage, error)
	memoryInfo(ctx context.Context) (*memoryInfo, error)
	hasBattery(ctx context.Context) bool
	batteryInfo(ctx context.Context) (*batteryInfo, error)
}

// systemProbe reads the local machine through gopsutil and the
// platform battery interfaces - it satisfies the hostProbe interface
type systemProbe struct {
	once      sync.Once
	batteries []*battery.Battery
	batErr    error
}

// newSystemProbe creates a new systemProbe instance
func newSystemProbe() *systemProbe {
	return &systemProbe{}
}

// cpuInfo returns cumulative usage counters for every logical processor
func (p *systemProbe) cpuInfo(ctx context.Context) ([]processorUsage, error) {
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}

	processors := make([]processorUsage, 0, len(times))
	for _, t := range times {
		user := t.User + t.Nice
		kernel := t.System + t.Irq + t.Softirq + t.Steal
		idle := t.Idle + t.Iowait
		processors = append(processors, processorUsage{
			user:   user,
			kernel: kernel,
			idle:   idle,
			total:  user + kernel + idle,
		})
	}

	return processors, nil
}

// memoryInfo returns total and available physical memory
func (p *systemProbe) memoryInfo(ctx context.Context) (*memoryInfo, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read virtual memory: %w", err)
	}
	if vm == nil {
		return nil, nil
	}

	return &memoryInfo{capacity: vm.Total, availableCapacity: vm.Available}, nil
}

// loadBatteries queries the platform batteries once per probe
func (p *systemProbe) loadBatteries() {
	p.once.Do(func() {
		p.batteries, p.batErr = battery.GetAll()
	})
}

// hasBattery reports whether the host exposes at least one battery
func (p *systemProbe) hasBattery(_ context.Context) bool {
	p.loadBatteries()
	if errors.Is(p.batErr, battery.ErrNotFound) {
		return false
	}

	for _, b := range p.batteries {
		if b != nil {
			return true
		}
	}

	return false
}

// batteryInfo combines all batteries into a single status
func (p *systemProbe) batteryInfo(_ context.Context) (*batteryInfo, error) {
	p.loadBatteries()

	var current, full, rate float64
	var charging, discharging, found bool
	for _, b := range p.batteries {
		if b == nil {
			continue
		}
		found = true
		current += b.Current
		full += b.Full
		rate += b.ChargeRate

		switch b.State.Raw {
		case battery.Charging:
			charging = true
		case battery.Discharging:
			discharging = true
		}
	}

	if !found {
		if p.batErr != nil {
			return nil, fmt.Errorf("failed to read batteries: %w", p.batErr)
		}
		return nil, errors.New("no battery reported")
	}

	return newBatteryInfo(current, full, rate, charging, discharging), nil
}

// newBatteryInfo converts energy figures (mWh, mW) to a level fraction and a
// discharging time estimate in seconds
func newBatteryInfo(current, full, rate float64, charging, discharging bool) *batteryInfo {
	level := 0.0
	if full > 0 {
		level = math.Min(current/full, 1)
	}

	remaining := math.Inf(1)
	if discharging && !charging && rate > 0 {
		remaining = current / rate * 3600
	}

	return &batteryInfo{level: level, charging: charging, dischargingTime: remaining}
}
