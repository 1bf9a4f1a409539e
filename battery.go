package main

import (
	"context"
	"html"
	"math"

	"github.com/rs/zerolog"
)

const (
	msgNoBattery        = "Battery information not available"
	msgBatteryQueryFail = "Error fetching battery info"
)

// batteryInfo holds the host battery status; dischargingTime is in seconds
// and +Inf when the battery is not discharging or the estimate is unknown
type batteryInfo struct {
	level           float64
	charging        bool
	dischargingTime float64
}

// batteryStatus is the battery slot result
type batteryStatus struct {
	levelPercent float64
	charging     bool
	// minutes left, NaN when unknown
	remaining float64
}

// newBatteryStatus derives the displayed figures from a battery reading
func newBatteryStatus(info batteryInfo) batteryStatus {
	remaining := math.NaN()
	if !math.IsInf(info.dischargingTime, 1) {
		remaining = round2(info.dischargingTime / 60)
	}

	return batteryStatus{
		levelPercent: round2(info.level * 100),
		charging:     info.charging,
		remaining:    remaining,
	}
}

func (b batteryStatus) chargingLabel() string {
	if b.charging {
		return "Charging"
	}
	return "Not Charging"
}

func (b batteryStatus) remainingLabel() string {
	if math.IsNaN(b.remaining) {
		return "Unknown"
	}
	return fixed2(b.remaining)
}

func (b batteryStatus) slot() slot { return slotBattery }

func (b batteryStatus) render() content {
	level := "Battery Level: " + fixed2(b.levelPercent) + "%"
	remaining := "Time Remaining: " + b.remainingLabel() + " mins"

	return content{
		text: level + "\n" + b.chargingLabel() + "\n" + remaining,
		html: html.EscapeString(level) + " <br>" + b.chargingLabel() + "<br>" + remaining,
	}
}

// readBattery checks for battery support, queries it and returns the
// battery slot result
func readBattery(ctx context.Context, probe hostProbe, logger zerolog.Logger) result {
	if !probe.hasBattery(ctx) {
		return messageResult{slotBattery, msgNoBattery}
	}

	info, err := probe.batteryInfo(ctx)
	if err != nil || info == nil {
		logger.Error().Err(err).Msg("error fetching battery info")
		return messageResult{slotBattery, msgBatteryQueryFail}
	}

	return newBatteryStatus(*info)
}
