package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"exec_bot/pkg/db"
	"exec_bot/pkg/logger"
)

// DDL применяется утилитой cmd/journal-schema, не самим ботом.
const DDL = `
CREATE TABLE IF NOT EXISTS order_events (
    id         BIGSERIAL PRIMARY KEY,
    at         TIMESTAMPTZ NOT NULL,
    symbol     TEXT        NOT NULL,
    kind       TEXT        NOT NULL,
    side       TEXT        NOT NULL DEFAULT '',
    order_id   BIGINT      NOT NULL DEFAULT 0,
    price      DOUBLE PRECISION NOT NULL DEFAULT 0,
    qty        DOUBLE PRECISION NOT NULL DEFAULT 0,
    note       TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS order_events_symbol_at_idx ON order_events (symbol, at);
`

const (
	KindEntryPlaced   = "entry_placed"
	KindEntryReprice  = "entry_reprice"
	KindEntryAbandon  = "entry_abandon"
	KindEntryRejected = "entry_rejected"
	KindStrayCanceled = "stray_canceled"
	KindPositionOpen  = "position_open"
	KindAttached      = "position_attached"
	KindExitPlaced    = "exit_placed"
	KindExitReprice   = "exit_reprice"
	KindPositionFlat  = "position_flat"
)

type Event struct {
	At      time.Time
	Symbol  string
	Kind    string
	Side    string
	OrderID int64
	Price   float64
	Qty     float64
	Note    string
}

// Journal — аудиторский след событий жизненного цикла. Отказ записи никогда
// не влияет на торговое состояние, только лог.
type Journal struct {
	tx *db.PgTxManager
}

func New(tx *db.PgTxManager) *Journal {
	if tx == nil {
		return nil
	}
	return &Journal{tx: tx}
}

func (j *Journal) Record(ctx context.Context, ev Event) {
	if j == nil || j.tx == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	err := j.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctxTx,
			`INSERT INTO order_events (at, symbol, kind, side, order_id, price, qty, note)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ev.At, ev.Symbol, ev.Kind, ev.Side, ev.OrderID, ev.Price, ev.Qty, ev.Note,
		)
		return errors.Wrap(execErr, "insert order_event")
	})
	if err != nil {
		logger.Error("journal record %s/%s: %v", ev.Symbol, ev.Kind, err)
	}
}
