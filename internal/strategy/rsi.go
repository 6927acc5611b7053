package strategy

type RSI struct {
	period      int
	prev        float64
	avgGain     float64
	avgLoss     float64
	samples     int
	initialized bool
}

func NewRSI(period int) RSI {
	if period <= 1 {
		period = 2
	}
	return RSI{period: period}
}

func (r *RSI) Update(price float64) {
	if !r.initialized {
		r.prev = price
		r.initialized = true
		return
	}

	change := price - r.prev
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	alpha := 1.0 / float64(r.period)
	if r.avgGain == 0 && r.avgLoss == 0 {
		r.avgGain, r.avgLoss = gain, loss
	} else {
		r.avgGain = (1-alpha)*r.avgGain + alpha*gain
		r.avgLoss = (1-alpha)*r.avgLoss + alpha*loss
	}
	r.prev = price
	r.samples++
}

func (r *RSI) Ready() bool { return r.samples >= r.period }

func (r *RSI) Value() float64 {
	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - (100 / (1 + rs))
}
