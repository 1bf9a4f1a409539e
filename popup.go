package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// popup document the results are rendered into, one element per slot
const popupTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Site Pulse</title>
<style>
body { font-family: sans-serif; width: 320px; margin: 12px; }
#current-domain { font-size: 1.4em; font-weight: bold; text-decoration: underline; }
.progress-bar-container { background: #eee; height: 6px; border-radius: 3px; }
.progress-bar { background: #4a90d9; height: 6px; border-radius: 3px; }
.progress-bar.fill { background: #2ecc71; }
</style>
</head>
<body>
<h1 id="current-domain"></h1>
<section id="metrics"></section>
<hr>
<p id="cpu-usage"></p>
<p id="memory-usage"></p>
<p id="battery-info"></p>
</body>
</html>`

// underline offset for labels with descenders
const descenderOffset = "text-underline-offset: 0.225em;"

// popupSink renders results into the popup document and writes it to a
// file on flush - it satisfies the sink interface
type popupSink struct {
	outputFile string
	doc        *goquery.Document
}

// newPopupSink creates a new popupSink instance
func newPopupSink(outputFile string) (*popupSink, error) {
	if outputFile == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(popupTemplate))
	if err != nil {
		return nil, fmt.Errorf("failed to parse popup template: %w", err)
	}

	return &popupSink{outputFile: outputFile, doc: doc}, nil
}

// write sets the content of the result's slot element
func (s *popupSink) write(r result) error {
	el := s.doc.Find("#" + string(r.slot()))
	if el.Length() == 0 {
		return fmt.Errorf("no element for slot %s", r.slot())
	}

	c := r.render()
	el.SetHtml(c.html)

	if label, ok := r.(siteLabel); ok && label.descenders() {
		el.SetAttr("style", descenderOffset)
	}

	return nil
}

// html returns the rendered popup document
func (s *popupSink) html() (string, error) {
	return s.doc.Html()
}

// flush writes the rendered popup to the output file
func (s *popupSink) flush() error {
	out, err := s.html()
	if err != nil {
		return fmt.Errorf("failed to render popup: %w", err)
	}

	err = os.WriteFile(s.outputFile, []byte(out), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
