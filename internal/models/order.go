package models

import "time"

const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"

	OrderStatusNew             = "NEW"
	OrderStatusPartiallyFilled = "PARTIALLY_FILLED"
	OrderStatusFilled          = "FILLED"
	OrderStatusCanceled        = "CANCELED"
	OrderStatusExpired         = "EXPIRED"
)

// Order — проекция ордера, как его видит биржа. Локально не конструируется,
// кроме как в виде запроса на размещение.
type Order struct {
	ID           int64
	ClientID     string
	Symbol       string
	Side         string // BUY/SELL
	Type         string // LIMIT/MARKET/STOP
	Price        float64
	TriggerPrice float64
	Qty          float64
	ExecutedQty  float64
	Status       string
	CreatedAt    time.Time
}

func (o Order) Live() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusPartiallyFilled
}
