package rules

import (
	"go.uber.org/fx"

	"exec_bot/internal/modules/rules/service"
)

func Module() fx.Option {
	return fx.Module("rules",
		fx.Provide(
			service.NewCache,
		),
	)
}
