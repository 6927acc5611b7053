package models

// InstrumentRules — торговые лимиты инструмента. Иммутабельны после первого
// фетча, кэшируются на всё время жизни процесса.
type InstrumentRules struct {
	Symbol      string
	PriceStep   float64
	QtyStep     float64
	MinQty      float64
	MinNotional float64
}

type Candle struct {
	OpenTime int64
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}
