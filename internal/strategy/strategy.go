package strategy

import "exec_bot/internal/models"

// Signaler — внешний коллаборатор для стейт-машины: совещательный и без
// состояния с её точки зрения. Нет сигнала — SideNone, никто никого не ждёт.
type Signaler interface {
	OnPrice(symbol string, price float64) models.Signal
	Name() string
}
