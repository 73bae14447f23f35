package agent

import (
	"fmt"
	"strings"

	"github.com/j0lvera/tripbot/internal/provider"
)

// FormatWeather renders current weather as one line.
func FormatWeather(w provider.Weather) string {
	where := w.Place.Name
	if w.Place.Country != "" {
		where += ", " + w.Place.Country
	}
	return fmt.Sprintf("Weather in %s: %s, %.1f°C, wind %.1f km/h.",
		where, w.Description, w.TemperatureC, w.WindKmh)
}

// FormatSummary renders an extract followed by its link when there is one.
func FormatSummary(s provider.Summary) string {
	if s.URL == "" {
		return s.Extract
	}
	return s.Extract + "\n\nRead more: " + s.URL
}

// FormatCountry renders country facts one per line, skipping empty ones.
func FormatCountry(c provider.Country) string {
	var b strings.Builder

	b.WriteString(c.Name)
	if c.Official != "" && c.Official != c.Name {
		fmt.Fprintf(&b, " (%s)", c.Official)
	}

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n%s: %s", label, value)
		}
	}

	region := c.Region
	if region == "" {
		region = c.Subregion
	} else if c.Subregion != "" && c.Subregion != c.Region {
		region = fmt.Sprintf("%s (%s)", c.Region, c.Subregion)
	}

	line("Capital", c.Capital)
	line("Region", region)
	if c.Population > 0 {
		line("Population", c.PopulationText())
	}
	line("Currencies", strings.Join(c.Currencies, ", "))
	line("Languages", strings.Join(c.Languages, ", "))

	return b.String()
}
