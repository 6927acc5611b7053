package service

import (
	"errors"
	"fmt"
	"strings"
)

// VenueError — биржа ответила, но отказала. Повторять вслепую нельзя:
// повтор мутирующего вызова рискует задвоить ордер.
type VenueError struct {
	Status int
	Code   int
	Msg    string
	Body   string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue http %d: code=%d msg=%s", e.Status, e.Code, e.Msg)
}

// TransportError — до биржи не достучались (коннект/таймаут). Ретраится,
// но только на читающих вызовах.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("venue transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// StaleDataError — биржа вернула неожиданную форму ответа. Трактуется как
// "на этом тике данных нет", воркер не падает.
type StaleDataError struct {
	What string
}

func (e *StaleDataError) Error() string { return fmt.Sprintf("venue stale data: %s", e.What) }

type UnknownInstrumentError struct {
	Symbol string
}

func (e *UnknownInstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument %s", e.Symbol)
}

const codeTooManyRequests = -1003

// IsRateLimited — классификация троттлинга. Ответ на него (минуты бэкоффа) —
// политика вызывающего, не per-call retry.
func IsRateLimited(err error) bool {
	var ve *VenueError
	if !errors.As(err, &ve) {
		return false
	}
	if ve.Status == 429 || ve.Status == 418 {
		return true
	}
	if ve.Code == codeTooManyRequests {
		return true
	}
	body := strings.ToLower(ve.Body)
	return strings.Contains(body, "too many requests") || strings.Contains(body, "banned until")
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
