package quote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind categorises a provider failure
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindRateLimit  ErrorKind = "rate_limit"
	KindServer     ErrorKind = "server"
	KindClient     ErrorKind = "client"
	KindNotFound   ErrorKind = "not_found"
	KindValidation ErrorKind = "validation"
)

// FetchError is returned by every provider in this package
type FetchError struct {
	Kind       ErrorKind
	Symbol     string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("quote %s: %s error (status %d): %s", e.Symbol, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("quote %s: %s error: %s", e.Symbol, e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether a later attempt could succeed
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimit, KindServer:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of a FetchError anywhere in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func notFound(symbol, msg string) *FetchError {
	return &FetchError{Kind: KindNotFound, Symbol: symbol, Message: msg}
}

func invalid(symbol, msg string) *FetchError {
	return &FetchError{Kind: KindValidation, Symbol: symbol, Message: msg}
}

// classifyStatus maps a non-2xx HTTP status to a FetchError
func classifyStatus(symbol string, status int, body string) *FetchError {
	fe := &FetchError{Symbol: symbol, StatusCode: status, Message: body}
	switch {
	case status == http.StatusTooManyRequests:
		fe.Kind = KindRateLimit
	case status == http.StatusNotFound:
		fe.Kind = KindNotFound
	case status >= 500:
		fe.Kind = KindServer
	default:
		fe.Kind = KindClient
	}
	if fe.Message == "" {
		fe.Message = http.StatusText(status)
	}
	return fe
}

// classifyTransport maps a transport error to a FetchError
func classifyTransport(symbol string, err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: KindTimeout, Symbol: symbol, Message: "request timed out", Cause: err}
	default:
		return &FetchError{Kind: KindNetwork, Symbol: symbol, Message: "network request failed", Cause: err}
	}
}
