package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/j0lvera/tripbot/internal/metrics"
	"googlemaps.github.io/maps"
)

// Place is a geocoded location.
type Place struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
	Source  string
}

type geocoder interface {
	name() string
	geocode(ctx context.Context, city string) (Place, error)
}

// Geocode resolves city to coordinates. Live geocoders are tried in order; when
// all of them fail, for lack of a result or because they are unreachable, the
// static fallback table is consulted.
func (c *Client) Geocode(ctx context.Context, city string) (Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Place{}, &NotFoundError{Provider: ProviderGeocoding, Query: city}
	}

	var errs []error
	for _, g := range c.geocoders {
		p, err := g.geocode(ctx, city)
		if err == nil {
			return p, nil
		}
		c.logger.Warn().Err(err).Str("provider", g.name()).Str("city", city).Msg("geocoder failed")
		errs = append(errs, err)
	}

	if coord, ok := c.fallback[strings.ToLower(city)]; ok {
		c.logger.Info().Str("city", city).Msg("using fallback coordinates")
		return Place{
			Name:   TitleCase(city),
			Lat:    coord.Lat,
			Lon:    coord.Lon,
			Source: ProviderFallback,
		}, nil
	}

	return Place{}, fmt.Errorf("geocode %q: %w", city, errors.Join(errs...))
}

type openMeteoGeocoder struct {
	c *Client
}

func (openMeteoGeocoder) name() string { return ProviderGeocoding }

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func (g openMeteoGeocoder) geocode(ctx context.Context, city string) (Place, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodingResponse
	if err := g.c.getJSON(ctx, ProviderGeocoding, g.c.opts.GeocodingBaseURL+"?"+q.Encode(), city, &resp); err != nil {
		return Place{}, err
	}
	if len(resp.Results) == 0 {
		return Place{}, &NotFoundError{Provider: ProviderGeocoding, Query: city}
	}

	r := resp.Results[0]
	return Place{
		Name:    r.Name,
		Country: r.Country,
		Lat:     r.Latitude,
		Lon:     r.Longitude,
		Source:  ProviderGeocoding,
	}, nil
}

type googleGeocoder struct {
	client *maps.Client
}

func newGoogleGeocoder(apiKey string, hc *http.Client) (*googleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey), maps.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}
	return &googleGeocoder{client: client}, nil
}

func (*googleGeocoder) name() string { return ProviderGoogle }

func (g *googleGeocoder) geocode(ctx context.Context, city string) (Place, error) {
	start := time.Now()
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: city})
	if err != nil {
		err = &TransportError{Provider: ProviderGoogle, Err: err}
	} else if len(results) == 0 {
		err = &NotFoundError{Provider: ProviderGoogle, Query: city}
	}
	metrics.ObserveProvider(ProviderGoogle, outcome(err), time.Since(start))
	if err != nil {
		return Place{}, err
	}

	r := results[0]
	p := Place{
		Name:   r.FormattedAddress,
		Lat:    r.Geometry.Location.Lat,
		Lon:    r.Geometry.Location.Lng,
		Source: ProviderGoogle,
	}
	for _, comp := range r.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				p.Name = comp.LongName
			case "country":
				p.Country = comp.LongName
			}
		}
	}
	return p, nil
}
