package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestURLListSourceExtract(t *testing.T) {
	path := writeFile(t, "urls.csv", "url,notes\nhttps://example.com,home\n  https://example.org  \n,empty\n")

	src, err := NewURLListSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls, err := src.Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://example.com" || urls[1] != "https://example.org" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestURLListSourceReadsReportWebsiteColumn(t *testing.T) {
	report := "Site,Website,CPU\n" +
		"example,https://example.com,CPU Usage: 35.00%\n" +
		"short\n" +
		"org,https://example.org,\n"
	src, err := NewURLListSource(writeFile(t, "report.csv", report))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls, err := src.Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://example.com" || urls[1] != "https://example.org" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestURLListSourceReadsWrittenReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports := []sessionReport{
		{website: "https://example.com", filled: map[slot]result{}},
		{website: "https://example.org", filled: map[slot]result{
			slotDomain: messageResult{slotDomain, msgTabInaccessible},
		}},
	}
	if err := sink.WriteResults(reports); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src, err := NewURLListSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	urls, err := src.Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://example.com" || urls[1] != "https://example.org" {
		t.Fatalf("expected report websites to be read back, got %v", urls)
	}
}

func TestURLColumn(t *testing.T) {
	tests := []struct {
		header []string
		want   int
	}{
		{[]string{"url", "notes"}, 0},
		{[]string{"Site", "Website"}, 1},
		{[]string{"site", " website "}, 1},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := urlColumn(tt.header); got != tt.want {
			t.Fatalf("urlColumn(%v) = %d, want %d", tt.header, got, tt.want)
		}
	}
}

func TestURLListSourceMissingFile(t *testing.T) {
	if _, err := NewURLListSource(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing input file")
	}

	if _, err := NewURLListSource(t.TempDir()); err == nil {
		t.Fatalf("expected error for directory input")
	}

	src, err := NewURLListSource("")
	if err != nil || src != nil {
		t.Fatalf("expected no source for empty path, got %v, %v", src, err)
	}
}

func TestURLListSourceEmptyFile(t *testing.T) {
	src, err := NewURLListSource(writeFile(t, "empty.csv", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := src.Extract(context.Background()); err == nil {
		t.Fatalf("expected error for empty CSV")
	}
}

func TestExtractURLsDeduplicates(t *testing.T) {
	path := writeFile(t, "urls.csv", "url\nhttps://example.com\nhttps://example.org\nhttps://example.com\n")
	src, err := NewURLListSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls, err := extractURLs(context.Background(), NewArgsSource("https://example.org"), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://example.org", "https://example.com"}
	if len(urls) != len(want) {
		t.Fatalf("expected %v, got %v", want, urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, urls)
		}
	}
}

func TestCSVSinkWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, _ := newSite("https://www.example.com")
	reports := []sessionReport{
		{
			website: "https://www.example.com",
			filled: map[slot]result{
				slotDomain:  siteLabel{st},
				slotMetrics: newPageMetrics(*sampleTiming()),
				slotCPU:     cpuUsage{percent: 35, valid: 2},
				slotMemory:  messageResult{slotMemory, msgMemoryQueryFail},
				slotBattery: messageResult{slotBattery, msgNoBattery},
			},
		},
		{
			website: "https://broken.example",
			filled: map[slot]result{
				slotDomain: messageResult{slotDomain, msgTabInaccessible},
			},
		},
	}

	if err := sink.WriteResults(reports); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Website" || len(rows[0]) != 6 {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "example" || rows[1][3] != "CPU Usage: 35.00%" || rows[1][4] != msgMemoryQueryFail {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != msgTabInaccessible || rows[2][2] != "" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}
