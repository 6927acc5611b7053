package sessions

import (
	"sync"
	"time"
)

// Throttle: per-symbol "не раньше чем" плюс общий стоп по рейт-лимиту.
// Общий стоп разделяют воркеры и реконсиляция — единственное место, где
// троттлинг пересекает границы воркеров, поэтому тут мьютекс.
type Throttle struct {
	mu        sync.Mutex
	notBefore map[string]time.Time
	allUntil  time.Time
}

func NewThrottle() *Throttle {
	return &Throttle{notBefore: make(map[string]time.Time)}
}

func (t *Throttle) Allowed(symbol string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Before(t.allUntil) {
		return false
	}
	return !now.Before(t.notBefore[symbol])
}

// Mark — минимальный зазор между действиями по инструменту, защита от чурна.
func (t *Throttle) Mark(symbol string, now time.Time, gap time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notBefore[symbol] = now.Add(gap)
}

// BackoffAll — биржа сигналит троттлинг: замираем все операции надолго.
func (t *Throttle) BackoffAll(now time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until := now.Add(d)
	if until.After(t.allUntil) {
		t.allUntil = until
	}
}

func (t *Throttle) AllUntil() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allUntil
}
