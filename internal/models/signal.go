package models

type StrategyType string

const (
	StrategyEMARSI StrategyType = "emarsi"
)

// Side — направление сигнала стратегии, не сторона ордера.
type Side string

const (
	SideNone  Side = ""
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

func (s Side) Opposite() Side {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	}
	return SideNone
}

// Signal — советующий вход от стратегии. Стейт-машина никогда его не ждёт:
// нет сигнала на тике — просто нет входа.
type Signal struct {
	Symbol     string
	Side       Side
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Strategy   StrategyType
	Reason     string
}
