package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/j0lvera/tripbot/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	userAgent   = "tripbot/1.0 (+https://github.com/j0lvera/tripbot)"
	maxBodySize = 1 << 20
)

// Provider names used in errors, logs and metrics.
const (
	ProviderWikipedia = "wikipedia"
	ProviderCountries = "restcountries"
	ProviderSearch    = "duckduckgo"
	ProviderGeocoding = "open-meteo-geocoding"
	ProviderForecast  = "open-meteo-forecast"
	ProviderGoogle    = "google-geocoding"
	ProviderFallback  = "fallback"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Options configures a Client.
type Options struct {
	Timeout          time.Duration
	WikipediaBaseURL string
	CountriesBaseURL string
	SearchBaseURL    string
	GeocodingBaseURL string
	ForecastBaseURL  string
	GoogleMapsAPIKey string

	// Fallback is consulted when every live geocoder fails. Keys are lower case.
	Fallback map[string]Coordinate

	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to the public travel-fact APIs.
type Client struct {
	http      *http.Client
	opts      Options
	geocoders []geocoder
	fallback  map[string]Coordinate
	logger    zerolog.Logger
}

// New returns a Client. It only fails when the Google geocoder cannot be built
// from the configured key.
func New(opts Options, logger zerolog.Logger) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	fallback := make(map[string]Coordinate, len(opts.Fallback))
	for k, v := range opts.Fallback {
		fallback[strings.ToLower(strings.TrimSpace(k))] = v
	}

	c := &Client{
		http:     hc,
		opts:     opts,
		fallback: fallback,
		logger:   logger.With().Str("component", "provider").Logger(),
	}

	if opts.GoogleMapsAPIKey != "" {
		g, err := newGoogleGeocoder(opts.GoogleMapsAPIKey, hc)
		if err != nil {
			return nil, fmt.Errorf("failed to create google geocoder: %w", err)
		}
		c.geocoders = append(c.geocoders, g)
	}
	c.geocoders = append(c.geocoders, openMeteoGeocoder{c: c})

	return c, nil
}

// getJSON performs a GET against rawURL and decodes the body into dst. query is
// only used to describe a 404.
func (c *Client) getJSON(ctx context.Context, provider, rawURL, query string, dst any) error {
	start := time.Now()
	err := c.fetch(ctx, provider, rawURL, query, dst)
	metrics.ObserveProvider(provider, outcome(err), time.Since(start))
	return err
}

func (c *Client) fetch(ctx context.Context, provider, rawURL, query string, dst any) error {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{Provider: provider, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("provider", provider).Str("url", rawURL).Msg("provider request")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Provider: provider, Query: query}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Provider: provider, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Provider: provider, Err: err}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ParseError{Provider: provider, Err: err}
	}
	return nil
}

func outcome(err error) string {
	var (
		transport *TransportError
		notFound  *NotFoundError
		parse     *ParseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &parse):
		return "parse_error"
	case errors.As(err, &transport):
		return "transport_error"
	default:
		return "error"
	}
}

// TitleCase upper-cases the first letter of every word and leaves the rest
// alone, so "new york" becomes "New York" and "USA" stays "USA".
func TitleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(strings.TrimSpace(s))
}
