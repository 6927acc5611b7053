package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSortsByKey(t *testing.T) {
	p := params{}.
		with("symbol", "BTCUSDT").
		with("side", "BUY").
		withInt("timestamp", 1499827319559).
		withFloat("quantity", 0.001)

	assert.Equal(t, "quantity=0.001&side=BUY&symbol=BTCUSDT&timestamp=1499827319559", p.canonical())
}

func TestCanonicalDeterministic(t *testing.T) {
	p := params{}.with("b", "2").with("a", "1").with("c", "3")
	first := p.canonical()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.canonical())
	}
}

func TestCanonicalEscapesValues(t *testing.T) {
	p := params{}.with("note", "a b&c")
	assert.Equal(t, "note=a+b%26c", p.canonical())
}

func TestSignKnownVector(t *testing.T) {
	// пример из публичной документации биржи
	payload := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e374Cqdqsmf2nd6TCdkQ2lDkdbJh9Rg"
	assert.Equal(t,
		"c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		sign(secret, payload))
}

func TestSignedQueryEndsWithSignature(t *testing.T) {
	query := params{}.with("symbol", "BTCUSDT").canonical()
	full := query + "&signature=" + sign("secret", query)
	assert.Regexp(t, `&signature=[0-9a-f]{64}$`, full)
}
