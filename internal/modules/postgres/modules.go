package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"exec_bot/internal/modules/config"
	"exec_bot/pkg/db"
	"exec_bot/pkg/logger"
)

// Module отдаёт *db.PgTxManager. Пустой DSN — валидная конфигурация:
// журнал просто выключен, торговля от базы не зависит.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("db_dsn empty, journal disabled")
					return nil, nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
