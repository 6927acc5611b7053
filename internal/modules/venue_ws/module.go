package venue_ws

import (
	"go.uber.org/fx"

	"exec_bot/internal/modules/venue_ws/service"
)

func Module() fx.Option {
	return fx.Module("venue_ws",
		fx.Provide(
			service.NewClient,
		),
	)
}
