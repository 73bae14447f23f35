package intent

import (
	"regexp"
	"strings"
)

// name matches a run of letters, spaces and the punctuation found in place
// names. Digits and sentence punctuation end it.
const name = `([\p{L}][\p{L}\s.'-]*)`

// Pattern lists are in significance order: the most specific phrasing first.
var (
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:weather|temperature|forecast|climate)\s+(?:like\s+)?(?:in|at|for|of)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:raining|rain|sunny|snowing|hot|cold)\s+(?:in|at)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:in|at)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:weather|temperature)\s+` + name),
	}

	countryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:population|capital|currency|currencies|languages?|region|flag)\s+(?:of|in|for)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:facts|information|info)\s+(?:about|on)\s+(?:the\s+)?(?:country\s+(?:of\s+)?)?` + name),
		regexp.MustCompile(`(?i)\b(?:country)\s+(?:of\s+)?` + name),
		regexp.MustCompile(`(?i)\b([\p{L}][\p{L}\s-]*?)(?:'s)?\s+(?:population|capital|currency|languages?)\b`),
	}

	placePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:attractions?|things to do|places to visit|sightseeing|landmarks?|what to see|what to do|tourist spots|tourism)\s+(?:in|at|near|around)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:visit|see|do)\s+(?:in|around)\s+` + name),
		regexp.MustCompile(`(?i)\b([\p{L}][\p{L}\s'-]*?)\s+(?:attractions?|landmarks?|sightseeing|tourism)\b`),
	}

	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:tell me about|information about|info about|information on|info on|describe)\s+` + name),
		regexp.MustCompile(`(?i)\b(?:travel(?:l?ing)?\s+to|trip\s+to|going\s+to|destination)\s+` + name),
		regexp.MustCompile(`(?i)\bwhere\s+is\s+` + name),
	}

	flightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:flights?|fly|flying|tickets?)\s+(?:from\s+[\p{L}\s]+?\s+)?to\s+` + name),
	}

	words = regexp.MustCompile(`\S+`)

	// connectors end a captured name: "new york in december" is "new york".
	connectors = regexp.MustCompile(`(?i)\s+(?:in|on|at|for|during|this|next|with)\s+.*$`)

	countryPhrases = regexp.MustCompile(`(?i)^(?:(?:what|which)(?:'s|\s+is|\s+are)?\s+)?(?:(?:the\s+)?(?:population|capital|currency|currencies|languages?|region|flag)\s+(?:of|in|for)|facts\s+about|tell\s+me\s+about|information\s+(?:about|on)|info\s+(?:about|on))\s+`)
)

// Filler words trimmed from either end of a capture.
var (
	leadingFiller = map[string]bool{
		"what": true, "what's": true, "whats": true, "is": true, "are": true,
		"the": true, "tell": true, "me": true, "about": true, "how": true,
		"which": true, "show": true, "give": true, "top": true, "best": true,
		"popular": true, "famous": true, "main": true, "some": true,
		"country": true,
	}
	trailingFiller = map[string]bool{
		"today": true, "tomorrow": true, "now": true, "please": true,
		"like": true, "currently": true, "tonight": true, "right": true,
		"weather": true, "forecast": true, "pls": true, "there": true,
		"here": true, "outside": true,
	}
)

// Extractor derives topic slots from free text.
type Extractor struct {
	gazetteer []*regexp.Regexp
}

// NewExtractor returns an Extractor that falls back to the given city names
// when no location phrasing matches. Names are matched case-insensitively.
func NewExtractor(gazetteer []string) *Extractor {
	g := make([]*regexp.Regexp, 0, len(gazetteer))
	for _, c := range gazetteer {
		c = strings.TrimSpace(c)
		if c != "" {
			g = append(g, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(c)+`\b`))
		}
	}
	return &Extractor{gazetteer: g}
}

// Location returns the city or region a weather question is about.
func (e *Extractor) Location(text string) (string, bool) {
	if v, ok := firstMatch(locationPatterns, text); ok {
		return v, true
	}
	return e.fromGazetteer(text)
}

// Country returns the country a facts question is about.
func (e *Extractor) Country(text string) (string, bool) {
	return firstMatch(countryPatterns, text)
}

// Place returns the place an attractions question is about.
func (e *Extractor) Place(text string) (string, bool) {
	if v, ok := firstMatch(placePatterns, text); ok {
		return v, true
	}
	return e.fromGazetteer(text)
}

// Destination returns the destination a travel-info question is about.
func (e *Extractor) Destination(text string) (string, bool) {
	return firstMatch(destinationPatterns, text)
}

// FlightDestination returns where a flight question is heading, if stated.
func (e *Extractor) FlightDestination(text string) (string, bool) {
	if v, ok := firstMatch(flightPatterns, text); ok {
		return v, true
	}
	return e.fromGazetteer(text)
}

func (e *Extractor) fromGazetteer(text string) (string, bool) {
	for _, re := range e.gazetteer {
		if loc := re.FindStringIndex(text); loc != nil {
			return text[loc[0]:loc[1]], true
		}
	}
	return "", false
}

// StripCountryPhrases removes question phrasing such as "population of" so
// that only the country name is left for a lookup.
func StripCountryPhrases(text string) string {
	s := strings.TrimSpace(text)
	s = countryPhrases.ReplaceAllString(s, "")
	return clean(s)
}

func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := clean(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

// clean trims punctuation, connectors and filler words around a capture while
// keeping its internal spacing.
func clean(s string) string {
	s = connectors.ReplaceAllString(s, "")
	s = strings.Trim(s, " \t\n.,!?;:'\"")

	locs := words.FindAllStringIndex(s, -1)
	word := func(i int) string { return strings.ToLower(s[locs[i][0]:locs[i][1]]) }

	first, last := 0, len(locs)
	for first < last && leadingFiller[word(first)] {
		first++
	}
	for last > first && trailingFiller[word(last-1)] {
		last--
	}
	if first == last {
		return ""
	}

	// Slice by word offsets so internal spacing survives.
	return strings.Trim(s[locs[first][0]:locs[last-1][1]], " .'")
}
