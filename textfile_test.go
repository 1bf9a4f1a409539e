package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTextfileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepulse.prom")
	s := newTextfileSink(path)

	for _, r := range []result{
		cpuUsage{percent: 35, valid: 2},
		memoryUsage{percent: 75},
		newBatteryStatus(batteryInfo{level: 0.5, charging: true, dischargingTime: 3600}),
		newPageMetrics(*sampleTiming()),
		messageResult{slotDomain, "example"},
	} {
		if err := s.write(r); err != nil {
			t.Fatalf("failed to write %s: %v", r.slot(), err)
		}
	}

	if err := s.flush(); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}

	for _, want := range []string{
		"sitepulse_cpu_usage_percent 35",
		"sitepulse_memory_usage_percent 75",
		"sitepulse_battery_level_percent 50",
		"sitepulse_battery_charging 1",
		"sitepulse_page_load_milliseconds 5000",
		"sitepulse_dom_ready_milliseconds 2000",
		"sitepulse_response_milliseconds 250",
		"sitepulse_page_requests 4",
		"sitepulse_page_transfer_bytes 3584",
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected textfile to contain %q, got:\n%s", want, data)
		}
	}
}

func TestTextfileSinkOmitsFailedReadings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitepulse.prom")
	s := newTextfileSink(path)

	if err := s.write(messageResult{slotCPU, msgCPUQueryFail}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.write(memoryUsage{percent: 40}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.flush(); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if strings.Contains(string(data), "sitepulse_cpu_usage_percent") {
		t.Fatalf("expected failed cpu reading to be left out, got:\n%s", data)
	}
	if !strings.Contains(string(data), "sitepulse_memory_usage_percent 40") {
		t.Fatalf("expected memory reading, got:\n%s", data)
	}
}
