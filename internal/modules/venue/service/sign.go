package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Параметры запроса — упорядоченный список типизированных пар, не map:
// канонизация должна быть детерминированной, иначе подпись невоспроизводима.
type param struct {
	key   string
	value string
}

type params []param

func (p params) with(key, value string) params {
	return append(p, param{key: key, value: value})
}

func (p params) withInt(key string, v int64) params {
	return p.with(key, strconv.FormatInt(v, 10))
}

func (p params) withFloat(key string, v float64) params {
	return p.with(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// canonical — сортировка по ключу + url-escape. Ровно эта строка подписывается
// и ровно она уходит в запрос.
func (p params) canonical() string {
	sorted := make(params, len(p))
	copy(sorted, p)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	var b strings.Builder
	for i, kv := range sorted {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.value))
	}
	return b.String()
}

func sign(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
