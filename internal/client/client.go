// Package client talks to the stock import backend.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/tormodhaugland/lastimport/internal/model"
)

// SnapshotClient is the remote side of the last import screen.
type SnapshotClient interface {
	// FetchLatestImport returns the most recent snapshot. It never returns a
	// partial snapshot together with an error.
	FetchLatestImport(ctx context.Context) (*model.StockImportSnapshot, error)
	// TriggerImport asks the backend to start a new import run.
	TriggerImport(ctx context.Context) error
}

// ErrNotFound is returned when the backend has no import yet.
var ErrNotFound = errors.New("no import found")

// ErrTriggerUnsupported is returned by sources that cannot start imports.
var ErrTriggerUnsupported = errors.New("source cannot trigger imports")

// TransportError wraps network, status and decoding failures.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
