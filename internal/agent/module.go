package agent

import (
	"github.com/j0lvera/tripbot/internal/config"
	"github.com/j0lvera/tripbot/internal/intent"
	"github.com/j0lvera/tripbot/internal/provider"
	"github.com/j0lvera/tripbot/internal/session"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Params for creating a Service
type Params struct {
	fx.In

	Config    *config.Config
	Providers *provider.Client
	Store     session.Store
	Logger    zerolog.Logger
}

// Result of creating a Service
type Result struct {
	fx.Out

	Service *Service
}

// New creates a new Service based on configuration. The LLM is only wired in
// when an API key is set.
func New(p Params) (Result, error) {
	logger := p.Logger.With().Str("component", "agent").Logger()

	var querier Querier
	if p.Config.LLMEnabled() {
		q, err := NewOpenAIQuerier(
			p.Config.APIKey,
			p.Config.BaseURL,
			p.Config.Model,
			WithSystemPrompt(p.Config.LLMSystemPrompt),
			WithMaxTokens(p.Config.LLMMaxTokens),
		)
		if err != nil {
			return Result{}, err
		}
		querier = q
		logger.Info().Str("model", p.Config.Model).Msg("llm fallback enabled")
	}

	dispatcher := NewDispatcher(
		p.Providers,
		querier,
		intent.NewExtractor(p.Config.Gazetteer),
		p.Config.Replies,
		p.Config.Prompts,
		logger,
	)

	return Result{
		Service: NewService(dispatcher, p.Store, logger),
	}, nil
}

// Module provides the agent Service
func Module() fx.Option {
	return fx.Module(
		"agent",
		fx.Provide(
			New,
		),
	)
}
