package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// weatherCodes maps WMO weather interpretation codes to a description.
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy",
	51: "Light drizzle",
	53: "Moderate drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	95: "Thunderstorm",
}

// DescribeWeatherCode returns the text for a WMO code, or "Code N" when the
// code is unknown.
func DescribeWeatherCode(code int) string {
	if d, ok := weatherCodes[code]; ok {
		return d
	}
	return "Code " + strconv.Itoa(code)
}

// Forecast is the current weather at a coordinate.
type Forecast struct {
	Code         int
	TemperatureC float64
	WindKmh      float64
}

// Weather is the current weather for a named place.
type Weather struct {
	Place        Place
	Code         int
	Description  string
	TemperatureC float64
	WindKmh      float64
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		Windspeed   float64 `json:"windspeed"`
		Weathercode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Forecast fetches the current weather for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current_weather", "true")

	where := fmt.Sprintf("%.4f,%.4f", lat, lon)

	var resp forecastResponse
	if err := c.getJSON(ctx, ProviderForecast, c.opts.ForecastBaseURL+"?"+q.Encode(), where, &resp); err != nil {
		return Forecast{}, err
	}
	if resp.CurrentWeather == nil {
		return Forecast{}, &NotFoundError{Provider: ProviderForecast, Query: where}
	}

	return Forecast{
		Code:         resp.CurrentWeather.Weathercode,
		TemperatureC: resp.CurrentWeather.Temperature,
		WindKmh:      resp.CurrentWeather.Windspeed,
	}, nil
}

// Weather geocodes city and then fetches its current weather.
func (c *Client) Weather(ctx context.Context, city string) (Weather, error) {
	place, err := c.Geocode(ctx, city)
	if err != nil {
		return Weather{}, err
	}

	f, err := c.Forecast(ctx, place.Lat, place.Lon)
	if err != nil {
		return Weather{}, fmt.Errorf("weather for %q: %w", city, err)
	}

	return Weather{
		Place:        place,
		Code:         f.Code,
		Description:  DescribeWeatherCode(f.Code),
		TemperatureC: f.TemperatureC,
		WindKmh:      f.WindKmh,
	}, nil
}
