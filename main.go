package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
)

type config struct {
	url      string
	input    string
	remote   string
	output   string
	csv      string
	textfile string
	logLevel string
	timeout  time.Duration
	quiet    bool
}

func main() {
	cfg := parseFlags()
	// logs share stderr with the spinner and go through it
	spinner := NewSpinner(os.Stderr)
	logger := newLogger(cfg.logLevel, spinner)

	err := cfg.validate()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, logger, spinner)
	stop()
	if err != nil {
		logger.Fatal().Err(err).Msg("site pulse failed")
	}
}

// parseFlags parses command line flags, falling back to environment
// variables for their defaults, and returns a config
func parseFlags() config {
	var cfg config

	// define flags
	flag.StringVar(&cfg.url, "url", getEnv("SITEPULSE_URL", ""), "URL to open in a headless browser")
	flag.StringVar(&cfg.input, "input", getEnv("SITEPULSE_INPUT", ""), "Path to input CSV file with URLs (batch mode)")
	flag.StringVar(&cfg.remote, "remote", getEnv("SITEPULSE_REMOTE", ""), "DevTools websocket URL of a running browser to inspect the active tab of")
	flag.StringVar(&cfg.output, "output", getEnv("SITEPULSE_OUTPUT", "popup.html"), "Path to the rendered popup HTML")
	flag.StringVar(&cfg.csv, "csv", getEnv("SITEPULSE_CSV", ""), "Path to CSV report (defaults to report.csv in batch mode)")
	flag.StringVar(&cfg.textfile, "textfile", getEnv("SITEPULSE_TEXTFILE", ""), "Path to Prometheus textfile with the readings")
	flag.StringVar(&cfg.logLevel, "log-level", getEnv("SITEPULSE_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.DurationVar(&cfg.timeout, "timeout", getEnvDuration("SITEPULSE_TIMEOUT", 60*time.Second), "Time limit for one session")
	flag.BoolVar(&cfg.quiet, "quiet", false, "Do not print the readings to stdout")

	flag.Parse()
	return cfg
}

// validate ensures the configuration is valid
func (c *config) validate() error {
	if c.url == "" && c.input == "" && c.remote == "" {
		return errors.New("neither URL, input file nor remote browser are specified")
	}

	if c.remote != "" && (c.url != "" || c.input != "") {
		return errors.New("remote browser cannot be combined with URL or input file")
	}

	if c.input != "" && c.textfile != "" {
		return errors.New("textfile output is not supported in batch mode")
	}

	if c.timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.timeout)
	}

	return nil
}

// batch reports whether sessions run over a list of URLs
func (c *config) batch() bool {
	return c.input != ""
}

// extractURLs collects the URLs to open from the url flag and input file
func (c *config) extractURLs(ctx context.Context) ([]string, error) {
	var extractors []extractor

	if src := NewArgsSource(c.url); src != nil {
		extractors = append(extractors, src)
	}

	list, err := NewURLListSource(c.input)
	if err != nil {
		return nil, err
	}
	if list != nil {
		extractors = append(extractors, list)
	}

	return extractURLs(ctx, extractors...)
}

// run opens the browser and runs one session, or one per URL in batch mode
func run(ctx context.Context, cfg config, logger zerolog.Logger, spinner *Spinner) error {
	urls, err := cfg.extractURLs(ctx)
	if err != nil {
		return err
	}
	if cfg.remote == "" && len(urls) == 0 {
		return errors.New("no URLs to open")
	}

	b, err := newBrowser(ctx, cfg.remote, logger)
	if err != nil {
		return err
	}
	defer b.close()

	probe := newSystemProbe()

	if !cfg.batch() {
		website := "active tab"
		if len(urls) > 0 {
			website = urls[0]
			b.setURL(website)
		}
		return runSingle(ctx, cfg, website, b, probe, logger, spinner)
	}

	return runBatch(ctx, cfg, urls, b, probe, logger, spinner)
}

// runSingle runs one session rendering into the popup, the console and,
// when configured, the CSV report and textfile
func runSingle(ctx context.Context, cfg config, website string, b *browser, probe hostProbe, logger zerolog.Logger, spinner *Spinner) error {
	popup, err := newPopupSink(cfg.output)
	if err != nil {
		return err
	}

	sinks := []sink{popup}
	if !cfg.quiet {
		sinks = append(sinks, newConsoleSink(os.Stdout))
	}
	if cfg.textfile != "" {
		sinks = append(sinks, newTextfileSink(cfg.textfile))
	}

	var csvSink *CSVSink
	if cfg.csv != "" {
		csvSink, err = NewCSVSink(cfg.csv)
		if err != nil {
			return err
		}
	}

	s := newSession(b, b, probe, logger)
	d := newDispatcher(s.logger, sinks...)
	filled := gatherWithSpinner(ctx, cfg, spinner, s, d, website)

	err = d.flush()
	if err != nil {
		return err
	}

	if csvSink != nil {
		err = csvSink.WriteResults([]sessionReport{{website: website, filled: filled}})
		if err != nil {
			return err
		}
	}

	logger.Info().Str("output", cfg.output).Msg("popup rendered")
	return nil
}

// runBatch runs a session per URL in the launched browser and writes one
// CSV row for each
func runBatch(ctx context.Context, cfg config, urls []string, b *browser, probe hostProbe, logger zerolog.Logger, spinner *Spinner) error {
	csvPath := cfg.csv
	if csvPath == "" {
		csvPath = "report.csv"
	}

	csvSink, err := NewCSVSink(csvPath)
	if err != nil {
		return err
	}

	reports := make([]sessionReport, 0, len(urls))
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}

		var sinks []sink
		if !cfg.quiet {
			sinks = append(sinks, newConsoleSink(os.Stdout))
		}

		b.setURL(url)
		s := newSession(b, b, probe, logger.With().Str("url", url).Logger())
		d := newDispatcher(s.logger, sinks...)
		filled := gatherWithSpinner(ctx, cfg, spinner, s, d, url)
		if err := d.flush(); err != nil {
			logger.Error().Err(err).Str("url", url).Msg("failed to render session")
		}

		reports = append(reports, sessionReport{website: url, filled: filled})
	}

	err = csvSink.WriteResults(reports)
	if err != nil {
		return err
	}

	logger.Info().Str("output", csvPath).Int("sites", len(reports)).Msg("report written")
	return nil
}

// gatherWithSpinner runs the session under the configured timeout, showing
// the spinner when it draws on a terminal
func gatherWithSpinner(ctx context.Context, cfg config, spinner *Spinner, s *session, d *dispatcher, label string) map[slot]result {
	timeoutCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	if isTerminal(spinner) {
		spinner.Start("Gathering readings for " + label)
		defer spinner.Stop()
	}

	return s.gather(timeoutCtx, d)
}

// getEnv returns the environment variable or the default when unset
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getEnvDuration returns the environment variable parsed as a duration or
// the default when unset or invalid
func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
