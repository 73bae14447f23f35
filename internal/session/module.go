package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/tripbot/internal/config"
	"github.com/j0lvera/tripbot/internal/db"
)

// Params for creating a Store
type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
	DB     *db.Client
}

// Result of creating a Store
type Result struct {
	fx.Out

	Store Store
}

// New creates the Store selected by SESSION_BACKEND
func New(lc fx.Lifecycle, p Params) (Result, error) {
	logger := p.Logger.With().Str("backend", p.Config.SessionBackend).Logger()

	switch p.Config.SessionBackend {
	case config.BackendMemory:
		logger.Info().Msg("using in-memory session store")
		return Result{Store: NewMemoryStore(p.Config.SessionTTL)}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     p.Config.RedisAddr,
			Password: p.Config.RedisPassword,
			DB:       p.Config.RedisDB,
		})
		lc.Append(
			fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := client.Ping(ctx).Err(); err != nil {
						return fmt.Errorf("redis ping failed: %w", err)
					}
					logger.Info().Str("addr", p.Config.RedisAddr).Msg("redis connection established")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					logger.Info().Msg("closing redis connection")
					return client.Close()
				},
			},
		)
		return Result{Store: NewRedisStore(client, p.Config.SessionTTL)}, nil

	case config.BackendPostgres:
		if p.DB == nil {
			return Result{}, fmt.Errorf("session backend %q requires DATABASE_URL", config.BackendPostgres)
		}
		store := NewPostgresStore(p.DB.Pool, p.Config.SessionTTL)
		lc.Append(
			fx.Hook{
				OnStart: func(ctx context.Context) error {
					logger.Info().Msg("migrating chat_sessions table")
					return store.Migrate(ctx)
				},
			},
		)
		return Result{Store: store}, nil

	default:
		return Result{}, fmt.Errorf("unknown session backend %q", p.Config.SessionBackend)
	}
}

// Module provides the session Store
func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(
			New,
		),
	)
}
