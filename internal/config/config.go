package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Session backends supported by the session store.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration from environment variables.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Telegram transport is disabled when the token is empty
	Token string `envconfig:"TELEGRAM_API_TOKEN"`

	// Optional LLM used as the last resort for general questions
	APIKey  string `envconfig:"OPENROUTER_API_KEY"`
	BaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	Model   string `envconfig:"OPENROUTER_MODEL" default:"anthropic/claude-3.5-sonnet"`

	LLMSystemPrompt string `envconfig:"LLM_SYSTEM_PROMPT"`
	LLMMaxTokens    int    `envconfig:"LLM_MAX_TOKENS" default:"300"`

	GoogleMapsAPIKey string `envconfig:"GOOGLE_MAPS_API_KEY"`

	// Session state settings
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`

	// Provider endpoints, overridable for tests and mirrors
	ProviderTimeout  time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	WikipediaBaseURL string        `envconfig:"WIKIPEDIA_BASE_URL" default:"https://en.wikipedia.org/api/rest_v1/page/summary"`
	CountriesBaseURL string        `envconfig:"COUNTRIES_BASE_URL" default:"https://restcountries.com/v3.1/name"`
	SearchBaseURL    string        `envconfig:"SEARCH_BASE_URL" default:"https://api.duckduckgo.com/"`
	GeocodingBaseURL string        `envconfig:"GEOCODING_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1/search"`
	ForecastBaseURL  string        `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1/forecast"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Loaded from config.toml, falling back to Defaults
	Gazetteer   []string
	Coordinates map[string]Coordinate
	Replies     Replies
	Prompts     Prompts
}

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64 `toml:"lat"`
	Lon float64 `toml:"lon"`
}

// Replies holds canned replies for categories that do not call a provider.
type Replies struct {
	Greeting string `toml:"greeting"`
	Flight   string `toml:"flight"`
	// FlightTo is formatted with the destination name
	FlightTo string `toml:"flight_to"`
	NoData   string `toml:"no_data"`
}

// Prompts holds the clarification questions asked when a slot is missing.
type Prompts struct {
	Location           string `toml:"location"`
	Destination        string `toml:"destination"`
	Country            string `toml:"country"`
	AttractionLocation string `toml:"attraction_location"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Gazetteer   []string              `toml:"gazetteer"`
	Coordinates map[string]Coordinate `toml:"coordinates"`
	Replies     Replies               `toml:"replies"`
	Prompts     Prompts               `toml:"prompts"`
}

// DefaultGazetteer lists the cities recognised without any phrasing around them.
var DefaultGazetteer = []string{
	"new york", "los angeles", "san francisco", "london", "paris", "tokyo",
	"sydney", "berlin", "rome", "dubai", "madrid", "barcelona", "amsterdam",
	"singapore", "hong kong", "bangkok", "seoul", "manila", "istanbul",
	"toronto", "vancouver", "chicago", "mumbai", "delhi", "cairo", "lisbon",
	"vienna", "prague", "kyoto", "bali",
}

// DefaultCoordinates is used when every live geocoder fails.
var DefaultCoordinates = map[string]Coordinate{
	"berlin":    {Lat: 52.5200, Lon: 13.4050},
	"dubai":     {Lat: 25.2048, Lon: 55.2708},
	"singapore": {Lat: 1.3521, Lon: 103.8198},
	"rome":      {Lat: 41.9028, Lon: 12.4964},
	"sydney":    {Lat: -33.8688, Lon: 151.2093},
	"mumbai":    {Lat: 19.0760, Lon: 72.8777},
	"delhi":     {Lat: 28.7041, Lon: 77.1025},
	"toronto":   {Lat: 43.6532, Lon: -79.3832},
}

// DefaultReplies provides fallback replies if config.toml is not found.
var DefaultReplies = Replies{
	Greeting: "Hello! I'm your travel assistant. Ask me about the weather, a destination, a country or things to do somewhere.",
	Flight:   "I can't book flights, but comparison sites like Google Flights or Skyscanner will show you current fares.",
	FlightTo: "I can't book flights to %s, but comparison sites like Google Flights or Skyscanner will show you current fares.",
	NoData:   "No data available",
}

// DefaultPrompts provides fallback clarification questions.
var DefaultPrompts = Prompts{
	Location:           "Which city would you like the weather for?",
	Destination:        "Which destination would you like to know about?",
	Country:            "Which country are you interested in?",
	AttractionLocation: "Which city or place should I find attractions for?",
}

// LoadEnv loads the configuration from environment variables.
// A .env file in the working directory is read first when present.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads gazetteer, coordinates, replies and prompts from config.toml.
func (c *Config) LoadFile() error {
	c.applyDefaults()

	configPath := c.ConfigFile
	if !filepath.IsAbs(configPath) {
		// Try current directory first
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// Try executable directory
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), c.ConfigFile)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return fmt.Errorf("failed to decode %s: %w", configPath, err)
	}

	if len(fileConfig.Gazetteer) > 0 {
		c.Gazetteer = normalize(fileConfig.Gazetteer)
	}
	if len(fileConfig.Coordinates) > 0 {
		c.Coordinates = make(map[string]Coordinate, len(fileConfig.Coordinates))
		for name, coord := range fileConfig.Coordinates {
			c.Coordinates[strings.ToLower(strings.TrimSpace(name))] = coord
		}
	}
	c.Replies = mergeReplies(fileConfig.Replies, DefaultReplies)
	c.Prompts = mergePrompts(fileConfig.Prompts, DefaultPrompts)

	return nil
}

// Validate checks settings that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %q session backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	return nil
}

// LLMEnabled reports whether an LLM fallback is configured.
func (c *Config) LLMEnabled() bool {
	return c.APIKey != ""
}

func (c *Config) applyDefaults() {
	c.Gazetteer = append([]string(nil), DefaultGazetteer...)
	c.Coordinates = make(map[string]Coordinate, len(DefaultCoordinates))
	for name, coord := range DefaultCoordinates {
		c.Coordinates[name] = coord
	}
	c.Replies = DefaultReplies
	c.Prompts = DefaultPrompts
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func mergeReplies(r, def Replies) Replies {
	if r.Greeting == "" {
		r.Greeting = def.Greeting
	}
	if r.Flight == "" {
		r.Flight = def.Flight
	}
	if r.FlightTo == "" {
		r.FlightTo = def.FlightTo
	}
	if r.NoData == "" {
		r.NoData = def.NoData
	}
	return r
}

func mergePrompts(p, def Prompts) Prompts {
	if p.Location == "" {
		p.Location = def.Location
	}
	if p.Destination == "" {
		p.Destination = def.Destination
	}
	if p.Country == "" {
		p.Country = def.Country
	}
	if p.AttractionLocation == "" {
		p.AttractionLocation = def.AttractionLocation
	}
	return p
}

func NewConfig() (*Config, error) {
	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	if err := loadedCfg.Validate(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
	)
}
