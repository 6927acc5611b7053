package service

import (
	"context"
	"sync"
	"time"

	"exec_bot/pkg/logger"
)

// Clock держит смещение локальных часов относительно биржевых.
// offsetMillis = localNow - venueServerTime. Подпись идёт с timestamp =
// localNow - offset, иначе биржа отбросит запрос за пределами recvWindow.
type Clock struct {
	mu           sync.Mutex
	offsetMillis int64
	lastSyncedAt time.Time

	syncInterval time.Duration
	now          func() time.Time
	fetch        func(ctx context.Context) (int64, error) // серверное время, ms
}

func NewClock(syncInterval time.Duration, fetch func(ctx context.Context) (int64, error)) *Clock {
	if syncInterval <= 0 {
		syncInterval = 5 * time.Minute
	}
	return &Clock{
		syncInterval: syncInterval,
		now:          time.Now,
		fetch:        fetch,
	}
}

// Timestamp — миллисекунды для подписи. Протухший оффсет пересинхронизируем
// блокирующе; упавший sync глотаем (логируем) и подписываем старым оффсетом —
// лучше деградировать, чем остановить торговлю.
func (c *Clock) Timestamp(ctx context.Context) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.lastSyncedAt.IsZero() || now.Sub(c.lastSyncedAt) > c.syncInterval {
		serverMs, err := c.fetch(ctx)
		if err != nil {
			logger.Error("clock sync failed, keep offset=%dms: %v", c.offsetMillis, err)
		} else {
			c.offsetMillis = now.UnixMilli() - serverMs
			c.lastSyncedAt = now
		}
	}

	return c.now().UnixMilli() - c.offsetMillis
}

func (c *Clock) Offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offsetMillis
}
