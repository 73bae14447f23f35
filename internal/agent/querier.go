package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultSystemPrompt frames every question as one for a travel assistant.
const DefaultSystemPrompt = "You are a friendly travel assistant. Answer in two or three plain sentences without markdown. " +
	"If the question has nothing to do with travel, answer briefly anyway."

const (
	defaultMaxTokens   = 300
	defaultTemperature = 0.3
)

// ErrEmptyAnswer is returned when the model replies with no text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// Answer is the model's reply to one travel question, with token usage.
type Answer struct {
	Text         string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Querier answers free-form travel questions the providers could not.
type Querier interface {
	Ask(ctx context.Context, question string) (Answer, error)
}

// QuerierOption configures an OpenAIQuerier.
type QuerierOption func(*OpenAIQuerier)

// WithSystemPrompt replaces DefaultSystemPrompt. An empty prompt is ignored.
func WithSystemPrompt(prompt string) QuerierOption {
	return func(q *OpenAIQuerier) {
		if strings.TrimSpace(prompt) != "" {
			q.systemPrompt = prompt
		}
	}
}

// WithMaxTokens caps the length of an answer. Non-positive values are ignored.
func WithMaxTokens(n int) QuerierOption {
	return func(q *OpenAIQuerier) {
		if n > 0 {
			q.maxTokens = n
		}
	}
}

// OpenAIQuerier implements Querier using the OpenAI-compatible API.
type OpenAIQuerier struct {
	client       llms.Model
	systemPrompt string
	maxTokens    int
}

// NewOpenAIQuerier creates a new OpenAI-compatible querier.
func NewOpenAIQuerier(apiKey, baseURL, model string, opts ...QuerierOption) (*OpenAIQuerier, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	q := &OpenAIQuerier{
		client:       client,
		systemPrompt: DefaultSystemPrompt,
		maxTokens:    defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Ask sends question under the travel system prompt and returns the trimmed
// answer.
func (q *OpenAIQuerier) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("empty question")
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, q.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}

	resp, err := q.client.GenerateContent(ctx, messages,
		llms.WithMaxTokens(q.maxTokens),
		llms.WithTemperature(defaultTemperature),
	)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Answer{}, fmt.Errorf("no choices returned from model")
	}

	answer := Answer{
		Text: strings.TrimSpace(resp.Choices[0].Content),
	}
	if answer.Text == "" {
		return Answer{}, ErrEmptyAnswer
	}

	if genInfo := resp.Choices[0].GenerationInfo; genInfo != nil {
		answer.InputTokens = tokenCount(genInfo["PromptTokens"])
		answer.OutputTokens = tokenCount(genInfo["CompletionTokens"])
		answer.TotalTokens = tokenCount(genInfo["TotalTokens"])
	}

	return answer, nil
}

// tokenCount reads a usage value, which arrives as int or float64 depending on
// the backend.
func tokenCount(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
