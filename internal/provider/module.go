package provider

import (
	"github.com/j0lvera/tripbot/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating a Client
type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

// NewFromConfig creates a Client from the loaded configuration
func NewFromConfig(p Params) (*Client, error) {
	fallback := make(map[string]Coordinate, len(p.Config.Coordinates))
	for name, c := range p.Config.Coordinates {
		fallback[name] = Coordinate{Lat: c.Lat, Lon: c.Lon}
	}

	return New(Options{
		Timeout:          p.Config.ProviderTimeout,
		WikipediaBaseURL: p.Config.WikipediaBaseURL,
		CountriesBaseURL: p.Config.CountriesBaseURL,
		SearchBaseURL:    p.Config.SearchBaseURL,
		GeocodingBaseURL: p.Config.GeocodingBaseURL,
		ForecastBaseURL:  p.Config.ForecastBaseURL,
		GoogleMapsAPIKey: p.Config.GoogleMapsAPIKey,
		Fallback:         fallback,
	}, p.Logger)
}

// Module provides the provider Client
func Module() fx.Option {
	return fx.Module(
		"provider",
		fx.Provide(
			NewFromConfig,
		),
	)
}
