package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/j0lvera/tripbot/internal/intent"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary is a short encyclopedic or search answer.
type Summary struct {
	Title   string
	Extract string
	URL     string
	Source  string
}

type pageSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary fetches the Wikipedia page summary for an exact title. The title is
// used as given; callers title-case user input with TitleCase.
func (c *Client) Summary(ctx context.Context, title string) (Summary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Summary{}, &NotFoundError{Provider: ProviderWikipedia, Query: title}
	}
	endpoint := strings.TrimRight(c.opts.WikipediaBaseURL, "/") + "/" +
		url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	var resp pageSummary
	if err := c.getJSON(ctx, ProviderWikipedia, endpoint, title, &resp); err != nil {
		return Summary{}, err
	}
	// A disambiguation page lists candidates instead of answering.
	if strings.TrimSpace(resp.Extract) == "" || resp.Type == "disambiguation" {
		return Summary{}, &NotFoundError{Provider: ProviderWikipedia, Query: title}
	}

	return Summary{
		Title:   resp.Title,
		Extract: strings.TrimSpace(resp.Extract),
		URL:     resp.ContentURLs.Desktop.Page,
		Source:  ProviderWikipedia,
	}, nil
}

// Country holds the facts returned for a country.
type Country struct {
	Name       string
	Official   string
	Capital    string
	Region     string
	Subregion  string
	Population int64
	Currencies []string
	Languages  []string
}

// PopulationText renders the population with thousands separators.
func (c Country) PopulationText() string {
	return message.NewPrinter(language.English).Sprintf("%d", c.Population)
}

type countryResponse struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Population int64    `json:"population"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages map[string]string `json:"languages"`
}

// Country looks up a country by name. Question phrasing such as "population
// of" is stripped from query first.
func (c *Client) Country(ctx context.Context, query string) (Country, error) {
	name := intent.StripCountryPhrases(query)
	if name == "" {
		return Country{}, &NotFoundError{Provider: ProviderCountries, Query: query}
	}

	q := url.Values{}
	q.Set("fields", "name,capital,region,subregion,population,currencies,languages")
	endpoint := strings.TrimRight(c.opts.CountriesBaseURL, "/") + "/" + url.PathEscape(name) + "?" + q.Encode()

	var resp []countryResponse
	if err := c.getJSON(ctx, ProviderCountries, endpoint, name, &resp); err != nil {
		return Country{}, err
	}
	if len(resp) == 0 {
		return Country{}, &NotFoundError{Provider: ProviderCountries, Query: name}
	}

	// A partial name can match several countries; prefer an exact one.
	best := resp[0]
	for _, r := range resp {
		if strings.EqualFold(r.Name.Common, name) || strings.EqualFold(r.Name.Official, name) {
			best = r
			break
		}
	}

	out := Country{
		Name:       best.Name.Common,
		Official:   best.Name.Official,
		Region:     best.Region,
		Subregion:  best.Subregion,
		Population: best.Population,
	}
	if len(best.Capital) > 0 {
		out.Capital = best.Capital[0]
	}
	for _, cur := range best.Currencies {
		if cur.Symbol != "" {
			out.Currencies = append(out.Currencies, cur.Name+" ("+cur.Symbol+")")
		} else {
			out.Currencies = append(out.Currencies, cur.Name)
		}
	}
	for _, lang := range best.Languages {
		out.Languages = append(out.Languages, lang)
	}
	sort.Strings(out.Currencies)
	sort.Strings(out.Languages)

	return out, nil
}

type instantAnswer struct {
	Heading       string          `json:"Heading"`
	AbstractText  string          `json:"AbstractText"`
	AbstractURL   string          `json:"AbstractURL"`
	Answer        json.RawMessage `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// answerText returns the instant answer when it is plain text. DuckDuckGo sends
// an object here for some widgets.
func (a instantAnswer) answerText() string {
	var text string
	if err := json.Unmarshal(a.Answer, &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// Search queries the DuckDuckGo instant answer API. The abstract is preferred,
// then the instant answer, then the first related topic that carries text.
func (c *Client) Search(ctx context.Context, query string) (Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Summary{}, &NotFoundError{Provider: ProviderSearch, Query: query}
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	var resp instantAnswer
	if err := c.getJSON(ctx, ProviderSearch, c.opts.SearchBaseURL+"?"+q.Encode(), query, &resp); err != nil {
		return Summary{}, err
	}

	if text := strings.TrimSpace(resp.AbstractText); text != "" {
		return Summary{Title: resp.Heading, Extract: text, URL: resp.AbstractURL, Source: ProviderSearch}, nil
	}
	if text := resp.answerText(); text != "" {
		return Summary{Title: resp.Heading, Extract: text, Source: ProviderSearch}, nil
	}
	for _, t := range resp.RelatedTopics {
		if text := strings.TrimSpace(t.Text); text != "" {
			return Summary{Title: resp.Heading, Extract: text, URL: t.FirstURL, Source: ProviderSearch}, nil
		}
	}
	return Summary{}, &NotFoundError{Provider: ProviderSearch, Query: query}
}
