package screen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/notify"
)

// AckMode is the acknowledgement contract of a ReimportTrigger.
type AckMode int

const (
	// AckOptimistic acknowledges before the request is sent and never
	// reports its outcome to the user.
	AckOptimistic AckMode = iota
	// AckConfirmed acknowledges only once the backend accepted the request
	// and reports failures.
	AckConfirmed
)

func (m AckMode) String() string {
	if m == AckConfirmed {
		return "confirmed"
	}
	return "optimistic"
}

func ParseAckMode(s string) (AckMode, error) {
	switch s {
	case "", "optimistic":
		return AckOptimistic, nil
	case "confirmed":
		return AckConfirmed, nil
	default:
		return AckOptimistic, fmt.Errorf("unknown ack mode %q", s)
	}
}

const (
	AckMessage       = "A new import was triggered. Check back later."
	ConfirmedMessage = "The backend accepted a new import. Check back later."
)

// Launcher runs the remote call of a trigger.
type Launcher func(func())

// GoLauncher runs f on a new goroutine.
func GoLauncher(f func()) { go f() }

// SyncLauncher runs f before returning.
func SyncLauncher(f func()) { f() }

// ReimportTrigger asks the backend for a new import run.
type ReimportTrigger struct {
	client  client.SnapshotClient
	sink    notify.Sink
	mode    AckMode
	launch  Launcher
	timeout time.Duration
	logger  *slog.Logger
}

type ReimportOption func(*ReimportTrigger)

func WithAckMode(m AckMode) ReimportOption {
	return func(t *ReimportTrigger) { t.mode = m }
}

func WithLauncher(l Launcher) ReimportOption {
	return func(t *ReimportTrigger) {
		if l != nil {
			t.launch = l
		}
	}
}

// WithTriggerTimeout bounds the remote call. Zero means no extra bound.
func WithTriggerTimeout(d time.Duration) ReimportOption {
	return func(t *ReimportTrigger) { t.timeout = d }
}

func WithTriggerLogger(l *slog.Logger) ReimportOption {
	return func(t *ReimportTrigger) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewReimportTrigger(c client.SnapshotClient, sink notify.Sink, opts ...ReimportOption) *ReimportTrigger {
	t := &ReimportTrigger{
		client: c,
		sink:   sink,
		mode:   AckOptimistic,
		launch: GoLauncher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ReimportTrigger) Mode() AckMode { return t.mode }

// Trigger starts a new import. In optimistic mode the acknowledgement is
// emitted before the request is handed to the launcher; the caller never
// learns the outcome.
func (t *ReimportTrigger) Trigger(ctx context.Context) {
	if t.mode == AckOptimistic {
		t.sink.Notify(notify.Notification{Level: notify.LevelSuccess, Message: AckMessage})
	}
	t.launch(func() { t.send(ctx) })
}

func (t *ReimportTrigger) send(ctx context.Context) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	err := t.client.TriggerImport(ctx)
	if err != nil {
		t.logger.Error("trigger import failed", "error", err, "mode", t.mode, "elapsed", time.Since(start))
	} else {
		t.logger.Info("trigger import sent", "mode", t.mode, "elapsed", time.Since(start))
	}

	if t.mode != AckConfirmed {
		return
	}
	if err != nil {
		t.sink.Notify(notify.Notification{
			Level:   notify.LevelError,
			Message: fmt.Sprintf("Could not trigger a new import: %v", err),
		})
		return
	}
	t.sink.Notify(notify.Notification{Level: notify.LevelSuccess, Message: ConfirmedMessage})
}
