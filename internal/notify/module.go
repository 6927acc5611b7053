package notify

import (
	"context"

	"go.uber.org/fx"

	"exec_bot/internal/runner/sessions"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			New, // *Telegram (nil без токена — тогда всё в лог)
		),

		// адаптер: *Telegram -> sessions.Notifier
		fx.Provide(
			func(t *Telegram) sessions.Notifier {
				return t
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, t *Telegram, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					t.Start(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					t.Stop()
					return nil
				},
			})
		}),
	)
}
