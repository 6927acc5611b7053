package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"exec_bot/internal/journal"
)

// journal-schema накатывает схему журнала ордеров. Отдельная утилита, чтобы
// у самого бота не было прав на DDL.
//
//	DATABASE_DSN=postgres://... go run ./cmd/journal-schema
//	go run ./cmd/journal-schema path/to/values.yaml

func resolveDSN() (string, error) {
	engine := viper.New()
	engine.SetDefault("db_dsn", "")
	_ = engine.BindEnv("db_dsn", "DATABASE_DSN")

	if len(os.Args) > 1 {
		engine.SetConfigFile(os.Args[1])
		if err := engine.ReadInConfig(); err != nil {
			return "", errors.Wrapf(err, "read config %s", os.Args[1])
		}
	}

	dsn := engine.GetString("db_dsn")
	if dsn == "" {
		return "", errors.New("db_dsn is empty: set DATABASE_DSN or pass a config file")
	}
	return dsn, nil
}

func apply(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer func() { _ = conn.Close(ctx) }()

	if _, err := conn.Exec(ctx, journal.DDL); err != nil {
		return errors.Wrap(err, "apply ddl")
	}
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn, err := resolveDSN()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := apply(ctx, dsn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("journal schema applied")
}
