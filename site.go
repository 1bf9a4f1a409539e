package main

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// known top-level domain suffixes used to cut the site label out of a hostname
var knownSuffixes = []string{
	"com", "ro", "net", "org", "eu", "gov", "app", "edu", "io", "co", "uk",
	"li", "to", "ai", "info", "mil", "int", "biz", "tv", "me", "mobi", "pro",
	"name", "travel", "coop", "jobs", "design", "eco", "health", "law",
	"music", "photography", "shop", "sport", "tech", "store", "studio",
	"science", "ngo", "ong", "fund", "guru", "wiki", "yoga", "academy",
	"blog", "book", "club", "dance", "earth",
}

var domainRegex = buildDomainRegex(knownSuffixes)

// buildDomainRegex compiles the label matcher for the given suffixes
// - the suffix group is not anchored to the end of the hostname
func buildDomainRegex(suffixes []string) *regexp.Regexp {
	quoted := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		quoted[i] = regexp.QuoteMeta(suffix)
	}

	return regexp.MustCompile(`^(?:https?://)?(?:www\.)?(.*?)\.(?:` + strings.Join(quoted, "|") + `)`)
}

// resolveDomain returns the part of the hostname preceding the first
// known suffix, without a leading "www.", or the hostname itself
func resolveDomain(hostname string) string {
	match := domainRegex.FindStringSubmatch(hostname)
	if match == nil {
		return hostname
	}

	return match[1]
}

// hasDescenders reports whether the label contains letters that dip below
// the baseline, which need a larger underline offset
func hasDescenders(label string) bool {
	return strings.ContainsAny(label, "qypgj")
}

// labels and schemes of pages that scripts cannot be injected into
var (
	internalLabels  = []string{"chrome", "chrome-extension"}
	internalSchemes = []string{"chrome", "chrome-extension", "devtools", "about"}
)

type site struct {
	rawURL   string
	scheme   string
	hostname string
	label    string
}

// newSite takes in the tab URL, parses it and returns a site
// instance with its resolved display label
func newSite(rawURL string) (*site, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}

	hostname := parsed.Hostname()
	return &site{
		rawURL:   rawURL,
		scheme:   strings.ToLower(parsed.Scheme),
		hostname: hostname,
		label:    resolveDomain(hostname),
	}, nil
}

// isInternal reports whether the site is a browser internal page
// that has no performance data to read
func (s *site) isInternal() bool {
	return matchesAny(s.label, internalLabels) || matchesAny(s.scheme, internalSchemes)
}

// isErrorPageURL reports whether the URL belongs to the browser's
// network error page
func isErrorPageURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "chrome-error://")
}

// siteLabel is the current-domain slot result
type siteLabel struct {
	site *site
}

func (l siteLabel) slot() slot { return slotDomain }

func (l siteLabel) render() content { return textContent(l.site.label) }

// descenders reports whether the rendered label needs the larger
// underline offset
func (l siteLabel) descenders() bool { return hasDescenders(l.site.label) }
