package main

import (
	"github.com/j0lvera/tripbot/internal/agent"
	"github.com/j0lvera/tripbot/internal/bot"
	"github.com/j0lvera/tripbot/internal/config"
	"github.com/j0lvera/tripbot/internal/db"
	"github.com/j0lvera/tripbot/internal/log"
	"github.com/j0lvera/tripbot/internal/provider"
	"github.com/j0lvera/tripbot/internal/server"
	"github.com/j0lvera/tripbot/internal/session"
	"go.uber.org/fx"
)

func main() {

	fx.New(
		config.Module(),
		log.Module(),
		db.Module(),
		session.Module(),
		provider.Module(),
		agent.Module(),
		server.Module(),
		bot.Module(),
	).Run()
}
