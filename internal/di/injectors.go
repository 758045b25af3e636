//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"staffping/internal"
	"staffping/internal/controllers"
	"staffping/internal/discord"
	"staffping/internal/monitor"
	"staffping/internal/presence"
	"staffping/internal/providers"
	"staffping/internal/roster"
	"staffping/internal/store"
	"staffping/internal/structures"
	"staffping/internal/watchlist"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		discord.NewSession,
		wire.Bind(new(discord.ChannelAPI), new(*discord.Session)),
		wire.Bind(new(discord.StatusSource), new(*discord.Session)),

		store.NewBackup,
		presence.NewResolver,
		presence.NewReconciler,
		roster.NewClient,
		watchlist.NewEngine,
		monitor.NewServerMonitor,
		monitor.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
