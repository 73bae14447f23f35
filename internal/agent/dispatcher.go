package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/j0lvera/tripbot/internal/config"
	"github.com/j0lvera/tripbot/internal/intent"
	"github.com/j0lvera/tripbot/internal/provider"
	"github.com/j0lvera/tripbot/internal/session"
)

// Encyclopedia topics for messages that carry no slot of their own.
const (
	flightTopic   = "Air travel"
	greetingTopic = "Travel"
)

// Providers is the subset of the provider client the Dispatcher calls.
type Providers interface {
	Weather(ctx context.Context, city string) (provider.Weather, error)
	Summary(ctx context.Context, title string) (provider.Summary, error)
	Country(ctx context.Context, query string) (provider.Country, error)
	Search(ctx context.Context, query string) (provider.Summary, error)
}

// OutcomeKind tells an answer apart from a clarifying question.
type OutcomeKind int

const (
	OutcomeAnswered OutcomeKind = iota
	OutcomeNeedsSlot
)

func (k OutcomeKind) String() string {
	if k == OutcomeNeedsSlot {
		return "needs_slot"
	}
	return "answered"
}

// Outcome is what one message produced. For OutcomeNeedsSlot, Slot names what
// is missing and Text is the question to ask.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Slot     session.Pending
	Category intent.Category

	// Source is the attempt that produced the answer, empty when none did.
	Source string
}

// attempt is one way of answering a category given its slot value.
type attempt struct {
	name string
	run  func(ctx context.Context, slot string) (string, error)
}

// Dispatcher turns a message and the session state into a reply and the next
// state. Provider failures never escape it.
type Dispatcher struct {
	providers Providers
	querier   Querier
	extractor *intent.Extractor
	replies   config.Replies
	prompts   config.Prompts
	logger    zerolog.Logger
}

// NewDispatcher creates a Dispatcher. querier may be nil, in which case general
// questions are answered by web search alone.
func NewDispatcher(
	providers Providers,
	querier Querier,
	extractor *intent.Extractor,
	replies config.Replies,
	prompts config.Prompts,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		providers: providers,
		querier:   querier,
		extractor: extractor,
		replies:   replies,
		prompts:   prompts,
		logger:    logger,
	}
}

// Prompt returns the clarifying question for a missing slot.
func (d *Dispatcher) Prompt(kind session.Pending) string {
	switch kind {
	case session.PendingLocation:
		return d.prompts.Location
	case session.PendingDestination:
		return d.prompts.Destination
	case session.PendingCountry:
		return d.prompts.Country
	case session.PendingAttractionLocation:
		return d.prompts.AttractionLocation
	default:
		return ""
	}
}

// Handle answers one message. When state is awaiting a slot the whole trimmed
// message is taken as that slot. Otherwise the message is classified; a
// category whose slot cannot be extracted yields a clarifying question and a
// state awaiting that slot.
func (d *Dispatcher) Handle(ctx context.Context, state session.State, message string) (Outcome, session.State) {
	msg := strings.TrimSpace(message)

	if state.Awaiting() {
		if msg == "" {
			return d.needs(categoryFor(state.Pending), state.Pending), state
		}
		return d.answer(ctx, categoryFor(state.Pending), msg), session.Idle()
	}

	if msg == "" {
		return Outcome{Kind: OutcomeAnswered, Text: d.replies.NoData, Category: intent.CategoryGeneral}, session.Idle()
	}

	category := intent.Classify(msg)
	switch category {
	case intent.CategoryWeather:
		return d.withSlot(ctx, category, session.PendingLocation, d.extractor.Location, msg)
	case intent.CategoryDestination:
		return d.withSlot(ctx, category, session.PendingDestination, d.extractor.Destination, msg)
	case intent.CategoryCountry:
		return d.withSlot(ctx, category, session.PendingCountry, d.extractor.Country, msg)
	case intent.CategoryAttractions:
		return d.withSlot(ctx, category, session.PendingAttractionLocation, d.extractor.Place, msg)
	case intent.CategoryFlight:
		dest, _ := d.extractor.FlightDestination(msg)
		return d.answer(ctx, category, dest), session.Idle()
	case intent.CategoryGreeting:
		return d.answer(ctx, category, msg), session.Idle()
	default:
		return d.answer(ctx, intent.CategoryGeneral, msg), session.Idle()
	}
}

func (d *Dispatcher) withSlot(
	ctx context.Context,
	category intent.Category,
	kind session.Pending,
	extract func(string) (string, bool),
	msg string,
) (Outcome, session.State) {
	slot, ok := extract(msg)
	if !ok {
		return d.needs(category, kind), session.State{Pending: kind}
	}
	return d.answer(ctx, category, slot), session.Idle()
}

func (d *Dispatcher) needs(category intent.Category, kind session.Pending) Outcome {
	return Outcome{
		Kind:     OutcomeNeedsSlot,
		Text:     d.Prompt(kind),
		Slot:     kind,
		Category: category,
	}
}

// answer runs the attempts for category in order and returns the first
// non-empty reply, or the no-data reply once they are exhausted.
func (d *Dispatcher) answer(ctx context.Context, category intent.Category, slot string) Outcome {
	logger := d.logger.With().Str("category", string(category)).Str("slot", slot).Logger()

	for _, a := range d.attempts(category) {
		text, err := a.run(ctx, slot)
		if err != nil {
			logger.Warn().Err(err).Str("attempt", a.name).Msg("attempt failed")
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn().Str("attempt", a.name).Msg("attempt returned nothing")
			continue
		}
		logger.Debug().Str("attempt", a.name).Msg("attempt answered")
		return Outcome{Kind: OutcomeAnswered, Text: text, Category: category, Source: a.name}
	}

	return Outcome{Kind: OutcomeAnswered, Text: d.replies.NoData, Category: category}
}

// attempts lists the ways of answering each category, in the order they are
// tried.
func (d *Dispatcher) attempts(category intent.Category) []attempt {
	switch category {
	case intent.CategoryWeather:
		return []attempt{{name: "weather", run: d.weather}}
	case intent.CategoryDestination:
		return []attempt{
			{name: "wikipedia", run: func(ctx context.Context, slot string) (string, error) {
				return d.summary(ctx, provider.TitleCase(slot))
			}},
			{name: "search", run: d.search},
		}
	case intent.CategoryCountry:
		return []attempt{{name: "countries", run: d.country}}
	case intent.CategoryAttractions:
		return []attempt{
			{name: "wikipedia", run: func(ctx context.Context, slot string) (string, error) {
				return d.summary(ctx, provider.TitleCase(slot))
			}},
			{name: "wikipedia_tourism", run: func(ctx context.Context, slot string) (string, error) {
				return d.summary(ctx, provider.TitleCase(slot)+" tourism")
			}},
			{name: "search", run: func(ctx context.Context, slot string) (string, error) {
				return d.search(ctx, strings.ToLower(slot)+" tourism")
			}},
		}
	case intent.CategoryFlight:
		return []attempt{
			{name: "wikipedia", run: func(ctx context.Context, _ string) (string, error) {
				return d.summary(ctx, flightTopic)
			}},
			{name: "canned", run: d.flight},
		}
	case intent.CategoryGreeting:
		return []attempt{
			{name: "wikipedia", run: func(ctx context.Context, _ string) (string, error) {
				return d.summary(ctx, greetingTopic)
			}},
			{name: "canned", run: func(context.Context, string) (string, error) {
				return d.replies.Greeting, nil
			}},
		}
	case intent.CategoryGeneral:
		attempts := []attempt{
			{name: "wikipedia", run: d.summary},
			{name: "search", run: d.search},
		}
		if d.querier != nil {
			attempts = append(attempts, attempt{name: "llm", run: d.ask})
		}
		return attempts
	default:
		return nil
	}
}

// flight answers with the configured reply, naming dest when one was given.
func (d *Dispatcher) flight(_ context.Context, dest string) (string, error) {
	if dest == "" {
		return d.replies.Flight, nil
	}
	return fmt.Sprintf(d.replies.FlightTo, provider.TitleCase(dest)), nil
}

func (d *Dispatcher) weather(ctx context.Context, city string) (string, error) {
	w, err := d.providers.Weather(ctx, city)
	if err != nil {
		return "", err
	}
	return FormatWeather(w), nil
}

func (d *Dispatcher) summary(ctx context.Context, title string) (string, error) {
	s, err := d.providers.Summary(ctx, title)
	if err != nil {
		return "", err
	}
	return FormatSummary(s), nil
}

func (d *Dispatcher) search(ctx context.Context, query string) (string, error) {
	s, err := d.providers.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return FormatSummary(s), nil
}

func (d *Dispatcher) country(ctx context.Context, query string) (string, error) {
	c, err := d.providers.Country(ctx, query)
	if err != nil {
		return "", err
	}
	return FormatCountry(c), nil
}

func (d *Dispatcher) ask(ctx context.Context, question string) (string, error) {
	answer, err := d.querier.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	d.logger.Debug().Int("total_tokens", answer.TotalTokens).Msg("llm answered")
	return answer.Text, nil
}

func categoryFor(kind session.Pending) intent.Category {
	switch kind {
	case session.PendingLocation:
		return intent.CategoryWeather
	case session.PendingDestination:
		return intent.CategoryDestination
	case session.PendingCountry:
		return intent.CategoryCountry
	case session.PendingAttractionLocation:
		return intent.CategoryAttractions
	default:
		return intent.CategoryGeneral
	}
}
