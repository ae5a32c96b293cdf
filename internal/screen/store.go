package screen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/model"
)

// LoadState is the lifecycle of the snapshot held by a SnapshotStore.
type LoadState int

const (
	StateNotLoaded LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateNotLoaded:
		return "not loaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrLoadInFlight is returned by Load while another fetch is running.
var ErrLoadInFlight = errors.New("snapshot load already in progress")

var errNilSnapshot = errors.New("backend returned an empty snapshot")

// SnapshotStore holds the current snapshot. All methods must be called from
// the goroutine that owns the screen; the fetch itself may run elsewhere.
type SnapshotStore struct {
	snapshot *model.StockImportSnapshot
	state    LoadState
	inFlight bool
	lastErr  error
	attempts int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Begin marks a fetch as started. It returns false without changing
// anything when a fetch is already in flight.
func (s *SnapshotStore) Begin() bool {
	if s.inFlight {
		return false
	}
	s.inFlight = true
	s.attempts++
	if s.snapshot == nil {
		s.state = StateLoading
	}
	return true
}

// Resolve swaps in a freshly fetched snapshot.
func (s *SnapshotStore) Resolve(snapshot *model.StockImportSnapshot) {
	if snapshot == nil {
		s.Fail(errNilSnapshot)
		return
	}
	s.inFlight = false
	s.snapshot = snapshot
	s.state = StateLoaded
	s.lastErr = nil
}

// Fail records a failed fetch. A store that already holds a snapshot keeps
// showing it and only remembers the error.
func (s *SnapshotStore) Fail(err error) {
	s.inFlight = false
	s.lastErr = err
	if s.snapshot == nil {
		s.state = StateFailed
	}
}

// Current returns the held snapshot, or false when nothing is loaded.
func (s *SnapshotStore) Current() (*model.StockImportSnapshot, bool) {
	if s.snapshot == nil {
		return nil, false
	}
	return s.snapshot, true
}

func (s *SnapshotStore) State() LoadState { return s.state }
func (s *SnapshotStore) InFlight() bool   { return s.inFlight }
func (s *SnapshotStore) LastError() error { return s.lastErr }
func (s *SnapshotStore) Attempts() int    { return s.attempts }

// Reset discards the snapshot and returns the store to StateNotLoaded.
func (s *SnapshotStore) Reset() {
	*s = SnapshotStore{}
}

// Load fetches and applies a snapshot synchronously.
func (s *SnapshotStore) Load(ctx context.Context, c client.SnapshotClient, policy RetryPolicy, logger *slog.Logger) (*model.StockImportSnapshot, error) {
	if !s.Begin() {
		return nil, ErrLoadInFlight
	}

	snapshot, err := policy.Fetch(ctx, c, logger)
	if err != nil {
		s.Fail(err)
		return nil, err
	}

	s.Resolve(snapshot)
	return snapshot, nil
}

// RetryPolicy controls automatic retries of a failed fetch. The zero value
// performs a single attempt.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Fetch calls FetchLatestImport until it succeeds or the policy gives up.
// It touches no store state and is safe to run off the UI goroutine.
func (p RetryPolicy) Fetch(ctx context.Context, c client.SnapshotClient, logger *slog.Logger) (*model.StockImportSnapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var snapshot *model.StockImportSnapshot
	op := func() error {
		s, err := c.FetchLatestImport(ctx)
		if err != nil {
			if errors.Is(err, client.ErrNotFound) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if s == nil {
			return backoff.Permanent(errNilSnapshot)
		}
		snapshot = s
		return nil
	}

	err := backoff.RetryNotify(op, p.backOff(ctx), func(err error, next time.Duration) {
		logger.Warn("snapshot fetch failed, retrying", "error", err, "next", next)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	eb.Reset()

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}
