package main

import (
	"context"
	"fmt"
)

// extractor defines the interface for extracting URLs from different sources
type extractor interface {
	GetName() string
	Extract(ctx context.Context) ([]string, error)
}

// ArgsSource extracts the URL given on the command line
// - it satisfies the extractor interface
type ArgsSource struct {
	url string
}

// NewArgsSource creates a new ArgsSource instance
func NewArgsSource(url string) *ArgsSource {
	if url == "" {
		return nil // not using a single URL
	}

	return &ArgsSource{url}
}

// GetName returns the source name
func (s *ArgsSource) GetName() string {
	return "url flag"
}

// Extract returns the configured URL
func (s *ArgsSource) Extract(_ context.Context) ([]string, error) {
	if s == nil {
		return nil, nil
	}

	return []string{s.url}, nil
}

// extractURLs collects URLs from every source, dropping duplicates while
// keeping first-seen order
func extractURLs(ctx context.Context, extractors ...extractor) ([]string, error) {
	urls := []string{}
	seen := map[string]bool{}

	for _, ex := range extractors {
		extracted, err := ex.Extract(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to extract from %s: %w", ex.GetName(), err)
		}

		for _, url := range extracted {
			if url == "" || seen[url] {
				continue
			}

			seen[url] = true
			urls = append(urls, url)
		}
	}

	return urls, nil
}
