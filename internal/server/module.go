package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/j0lvera/tripbot/internal/agent"
	"github.com/j0lvera/tripbot/internal/config"
)

type Params struct {
	fx.In

	Config  *config.Config
	Service *agent.Service
	Logger  zerolog.Logger
}

type Result struct {
	fx.Out

	Server *http.Server
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	gin.SetMode(gin.ReleaseMode)

	logger := p.Logger.With().Str("component", "http").Logger()
	router := NewRouter(NewHandler(p.Service, logger), logger)

	srv := &http.Server{
		Addr:              p.Config.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return fmt.Errorf("unable to listen on %s: %w", srv.Addr, err)
				}
				logger.Info().Str("addr", ln.Addr().String()).Msg("starting http server...")
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error().Err(err).Msg("http server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				logger.Info().Msg("stopping http server...")
				return srv.Shutdown(ctx)
			},
		},
	)

	return Result{Server: srv}, nil
}

func Module() fx.Option {
	return fx.Module(
		"server",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*http.Server) {},
		),
	)
}
