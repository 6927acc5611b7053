package models

import (
	"math"
	"time"
)

// Position — позиция по данным биржи. Qty со знаком: >0 long, <0 short, 0 flat.
// Биржа авторитетна, локальный стейт только подстраивается.
type Position struct {
	Symbol    string
	Qty       float64
	Entry     float64
	MarkPx    float64
	UpdatedAt time.Time
}

const flatEps = 1e-12

func (p Position) Flat() bool { return math.Abs(p.Qty) < flatEps }

func (p Position) Side() Side {
	switch {
	case p.Qty > flatEps:
		return SideLong
	case p.Qty < -flatEps:
		return SideShort
	}
	return SideNone
}
