package venue

import (
	"go.uber.org/fx"

	"exec_bot/internal/modules/venue/service"
)

func Module() fx.Option {
	return fx.Module("venue",
		fx.Provide(
			service.NewClient,
		),
	)
}
