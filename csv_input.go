package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// URLListSource reads the URLs of a batch run from a CSV file: either a
// plain list with the URLs in the first column, or a report written by
// CSVSink, whose Website column is read instead
// - it satisfies the extractor interface
type URLListSource struct {
	path string
}

// NewURLListSource checks that path can be read; an empty path means no
// list was given
func NewURLListSource(path string) (*URLListSource, error) {
	if path == "" {
		return nil, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file does not exist: %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input file is a directory: %s", path)
	}

	return &URLListSource{path: path}, nil
}

// GetName returns the source name
func (s *URLListSource) GetName() string {
	return "url list " + s.path
}

// Extract returns the URLs of every data row, skipping blank cells
func (s *URLListSource) Extract(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty or missing header")
	} else if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := urlColumn(header)

	var urls []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if col >= len(row) {
			continue
		}

		if url := strings.TrimSpace(row[col]); url != "" {
			urls = append(urls, url)
		}
	}

	return urls, nil
}

// urlColumn returns the index of the report's Website column, or the
// first column when the header has none
func urlColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), websiteColumn) {
			return i
		}
	}

	return 0
}
