package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// websiteColumn names the column holding the inspected URL
const websiteColumn = "Website"

// sessionReport holds the rendered slots of one session
type sessionReport struct {
	website string
	filled  map[slot]result
}

// CSVSink handles writing session reports to a CSV file
type CSVSink struct {
	outputFile string
}

// NewCSVSink creates a new CSVSink instance
func NewCSVSink(outputFile string) (*CSVSink, error) {
	newSink := CSVSink{outputFile}
	err := newSink.validateAndCreateOutputFile()
	if err != nil {
		return nil, fmt.Errorf("failed csv output file validation/creation: %w", err)
	}

	return &newSink, nil
}

// validateAndCreateOutputFile ensures the output directory exists and is writable
func (s *CSVSink) validateAndCreateOutputFile() error {
	if s.outputFile == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	// create the output file
	// this validates both directory existence and write permissions
	file, err := os.Create(s.outputFile)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", s.outputFile, err)
	}
	file.Close()

	return nil
}

// WriteResults writes one row per session report to the output CSV
func (s *CSVSink) WriteResults(reports []sessionReport) error {
	if s == nil || s.outputFile == "" {
		return fmt.Errorf("nil csv sink")
	}

	outFile, err := os.Create(s.outputFile)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)

	err = writer.Write(s.headers())
	if err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	for _, report := range reports {
		err := writer.Write(s.values(report))
		if err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// headers returns the column names, one per display slot
func (s *CSVSink) headers() []string {
	return []string{websiteColumn, "Site", "Page Metrics", "CPU", "Memory", "Battery"}
}

// values returns a report's row in header order, leaving slots that were
// never rendered empty
func (s *CSVSink) values(report sessionReport) []string {
	row := []string{report.website}
	for _, sl := range slots {
		r, ok := report.filled[sl]
		if !ok {
			row = append(row, "")
			continue
		}

		row = append(row, strings.ReplaceAll(r.render().text, "\n", ";\n"))
	}

	return row
}
