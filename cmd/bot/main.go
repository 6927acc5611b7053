package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"exec_bot/internal/modules/config"
	"exec_bot/internal/modules/health"
	"exec_bot/internal/modules/postgres"
	"exec_bot/internal/modules/rules"
	"exec_bot/internal/modules/venue"
	"exec_bot/internal/modules/venue_ws"
	"exec_bot/internal/notify"
	"exec_bot/internal/runner"
	"exec_bot/pkg/logger"
	"exec_bot/pkg/tracing"
)

func main() {
	tracing.SetServiceName("exec_bot")

	ctx, cancel := context.WithCancel(context.Background())

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return ctx
			},
		),
		config.Module(),
		venue.Module(),
		rules.Module(),
		venue_ws.Module(),
		postgres.Module(),
		notify.Module(),
		runner.Module(),
		health.Module(),

		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if cfg.Jaeger.Host == "" {
				return nil
			}
			_, cleanup, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				// трейсинг не критичен для торговли
				logger.Error("init tracer: %v", err)
				return nil
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cleanup()
					return nil
				},
			})
			return nil
		}),

		// воркеры живут на этом ctx; гасим их до остановки остальных хуков
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	_ = app.Stop(context.Background())
}
