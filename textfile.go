package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// textfileSink records numeric readings as gauges and writes them once in
// the Prometheus text format, for node exporter's textfile collector
type textfileSink struct {
	path     string
	registry *prometheus.Registry

	cpuUsage     prometheus.Gauge
	memoryUsage  prometheus.Gauge
	batteryLevel prometheus.Gauge
	charging     prometheus.Gauge
	pageLoad     prometheus.Gauge
	domReady     prometheus.Gauge
	response     prometheus.Gauge
	requests     prometheus.Gauge
	transfer     prometheus.Gauge
}

// newTextfileSink creates a new textfileSink writing to path
func newTextfileSink(path string) *textfileSink {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sitepulse",
			Name:      name,
			Help:      help,
		})
	}

	s := &textfileSink{
		path:         path,
		registry:     prometheus.NewRegistry(),
		cpuUsage:     gauge("cpu_usage_percent", "Average busy share of all valid processors."),
		memoryUsage:  gauge("memory_usage_percent", "Used share of physical memory."),
		batteryLevel: gauge("battery_level_percent", "Battery charge level."),
		charging:     gauge("battery_charging", "1 when the battery is charging."),
		pageLoad:     gauge("page_load_milliseconds", "Navigation start to load event end."),
		domReady:     gauge("dom_ready_milliseconds", "Navigation start to DOMContentLoaded end."),
		response:     gauge("response_milliseconds", "Request start to response end."),
		requests:     gauge("page_requests", "Resource timing entries of the page."),
		transfer:     gauge("page_transfer_bytes", "Bytes transferred for the page's resources."),
	}

	return s
}

// write sets the gauges for a result, registering them on first use so
// slots that failed are left out of the file
func (s *textfileSink) write(r result) error {
	switch v := r.(type) {
	case cpuUsage:
		return s.set(s.cpuUsage, v.percent)
	case memoryUsage:
		return s.set(s.memoryUsage, v.percent)
	case batteryStatus:
		charging := 0.0
		if v.charging {
			charging = 1
		}
		if err := s.set(s.batteryLevel, v.levelPercent); err != nil {
			return err
		}
		return s.set(s.charging, charging)
	case pageMetrics:
		for _, g := range []struct {
			gauge prometheus.Gauge
			value float64
		}{
			{s.pageLoad, v.pageLoadMs},
			{s.domReady, v.domReadyMs},
			{s.response, v.responseMs},
			{s.requests, float64(v.requestCount)},
			{s.transfer, v.totalBytes},
		} {
			if err := s.set(g.gauge, g.value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *textfileSink) set(g prometheus.Gauge, value float64) error {
	if err := s.registry.Register(g); err != nil {
		return fmt.Errorf("failed to register gauge: %w", err)
	}
	g.Set(value)

	return nil
}

// flush writes the registered gauges to the textfile
func (s *textfileSink) flush() error {
	err := prometheus.WriteToTextfile(s.path, s.registry)
	if err != nil {
		return fmt.Errorf("failed to write textfile: %w", err)
	}

	return nil
}
