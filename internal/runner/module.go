package runner

import (
	"context"

	"go.uber.org/fx"

	"exec_bot/internal/journal"
	"exec_bot/internal/modules/config"
	"exec_bot/internal/notify"
	rules "exec_bot/internal/modules/rules/service"
	ws "exec_bot/internal/modules/venue_ws/service"
	"exec_bot/internal/runner/sessions"
	"exec_bot/internal/strategy"
	"exec_bot/pkg/db"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			sessions.NewThrottle,
			strategy.NewEMARSI,
			NewManager,

			func(tx *db.PgTxManager) *journal.Journal {
				return journal.New(tx)
			},

			// адаптеры под интерфейсы сессий
			func(s *strategy.EMARSI) strategy.Signaler { return s },
			func(c *rules.Cache) sessions.RulesSource { return c },
			func(c *ws.Client) sessions.PriceSource { return c },
		),

		// /flatten замыкается на менеджер после сборки графа: нотифаер
		// нужен воркерам раньше, чем воркеры нотифаеру
		fx.Invoke(func(m *Manager, tg *notify.Telegram) {
			tg.SetFlattener(m)
		}),

		fx.Invoke(func(
			lc fx.Lifecycle,
			m *Manager,
			prices *ws.Client,
			cfg *config.Config,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					prices.StreamPrices(ctx, cfg.Symbols)
					go m.Start(ctx)
					return nil
				},
			})
		}),
	)
}
