package intent

import (
	"regexp"
	"strings"
)

// Category is the coarse topic of a user message.
type Category string

const (
	CategoryWeather     Category = "weather"
	CategoryDestination Category = "destination"
	CategoryCountry     Category = "country"
	CategoryFlight      Category = "flight"
	CategoryAttractions Category = "attractions"
	CategoryGreeting    Category = "greeting"
	CategoryGeneral     Category = "general"
)

type rule struct {
	category Category
	match    func(text string) bool
}

// rules is evaluated top to bottom and the first match wins, so the order here
// is the priority order: weather > destination > country > flight >
// attractions > greeting. Anything left over is general.
var rules = []rule{
	{CategoryWeather, keywords("weather", "temperature", "forecast", "raining", "rain", "sunny", "snowing", "climate")},
	{CategoryDestination, keywords("tell me about", "information about", "info about", "describe", "destination", "travel to", "trip to", "where is")},
	{CategoryCountry, keywords("population", "capital", "currency", "currencies", "language", "languages", "country")},
	{CategoryFlight, keywords("flight", "flights", "fly", "flying", "airline", "airport", "plane ticket")},
	{CategoryAttractions, keywords("attraction", "attractions", "things to do", "places to visit", "sightseeing", "landmark", "landmarks", "what to see", "what to do", "tourist spots", "tourism")},
	{CategoryGreeting, keywords("hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings")},
}

// Classify returns the category of text. Matching is on whole words and is
// case-insensitive.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return r.category
		}
	}
	return CategoryGeneral
}

// keywords builds a predicate matching any of the phrases on word boundaries,
// so "hi" does not fire on "this".
func keywords(phrases ...string) func(string) bool {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return re.MatchString
}
