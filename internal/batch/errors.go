package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSymbols is a configuration error: the universe was empty
	ErrNoSymbols = errors.New("no symbols configured")

	// ErrEmptyBatchResult is a runtime condition: every symbol failed
	ErrEmptyBatchResult = errors.New("no data available")

	// ErrBatchInterrupted means the run's context ended before every symbol
	// was processed. The rows are incomplete and must not be shared.
	ErrBatchInterrupted = errors.New("batch interrupted")
)

// Stage names where a symbol failed
type Stage string

const (
	StageFetch Stage = "fetch"
	StagePanic Stage = "panic"
	// StageCanceled marks symbols cut off by the run's context
	StageCanceled Stage = "canceled"
)

// SymbolError records why a symbol is absent from the output
type SymbolError struct {
	Symbol string
	Stage  Stage
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Symbol, e.Stage, e.Err)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SymbolError) Unwrap() error {
	return e.Err
}
