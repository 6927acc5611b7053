package models

import "time"

// EntryIntent живёт только между "ордер отправлен" и "позиция появилась или
// погоня брошена". Одновременно с TrailState существовать не может.
type EntryIntent struct {
	Side     Side
	Qty      float64
	FirstPx  float64 // первая котировка — от неё меряется максимум погони
	LastPx   float64
	OrderID  int64
	RepriceN int
	QuotedAt time.Time // когда выставлен/перевыставлен текущий ордер
	OpenedAt time.Time
}

// TrailState живёт только пока есть позиция. Trail двигается только в сторону
// ужесточения.
type TrailState struct {
	Side   Side
	Anchor float64 // цена в момент обнаружения позиции
	Peak   float64 // лучший ход цены в нашу сторону
	Trail  float64
	Entry  float64
	Size   float64

	ExitOrderID  int64
	ExitRepriceN int
	ExitQuotedAt time.Time
	ExitReason   string

	OpenedAt    time.Time
	LastTrailAt time.Time
}

func (t *TrailState) Exiting() bool { return t != nil && t.ExitOrderID != 0 }
