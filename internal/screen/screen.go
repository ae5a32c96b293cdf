// Package screen holds the state of the last import screen: the loaded
// snapshot, the visible page, the indicator popover and the reimport
// command. A Screen is owned by a single goroutine; only the remote calls
// run elsewhere.
package screen

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/model"
)

type Options struct {
	PageSize int
	Retry    RetryPolicy
	Logger   *slog.Logger
}

// Screen owns every piece of state of one screen instance.
type Screen struct {
	Store     *SnapshotStore
	Pager     *Pager
	Selection *DetailSelection
	Reimport  *ReimportTrigger

	client    client.SnapshotClient
	retry     RetryPolicy
	logger    *slog.Logger
	activated bool
	query     string
}

func New(c client.SnapshotClient, reimport *ReimportTrigger, opts Options) *Screen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{
		Store:     NewSnapshotStore(),
		Pager:     NewPager(opts.PageSize),
		Selection: NewDetailSelection(),
		Reimport:  reimport,
		client:    c,
		retry:     opts.Retry,
		logger:    logger,
	}
}

// Activate starts the initial load. Only the first call per screen does
// anything; it reports whether a fetch must now be run.
func (s *Screen) Activate() bool {
	if s.activated {
		return false
	}
	s.activated = true
	return s.Store.Begin()
}

// Reload starts a fresh fetch unless one is already running.
func (s *Screen) Reload() bool {
	return s.Store.Begin()
}

// Retry restarts loading after a failed initial fetch.
func (s *Screen) Retry() bool {
	if s.Store.State() != StateFailed {
		return false
	}
	return s.Store.Begin()
}

// Fetch performs the remote fetch without touching screen state. Its
// result goes to ApplySnapshot or ApplyFailure.
func (s *Screen) Fetch(ctx context.Context) (*model.StockImportSnapshot, error) {
	return s.retry.Fetch(ctx, s.client, s.logger)
}

func (s *Screen) ApplySnapshot(snapshot *model.StockImportSnapshot) {
	if snapshot == nil {
		s.ApplyFailure(errNilSnapshot)
		return
	}
	s.Store.Resolve(snapshot)
	s.Selection.Close()
	s.refreshRows()

	if snap, ok := s.Store.Current(); ok {
		s.logger.Info("snapshot loaded",
			"date", snap.Date,
			"stocks", len(snap.Stocks),
			"import_errors", len(snap.ImportErrors),
		)
	}
}

func (s *Screen) ApplyFailure(err error) {
	s.Store.Fail(err)
	s.logger.Error("snapshot load failed", "error", err, "state", s.Store.State(), "attempts", s.Store.Attempts())
}

// Filter narrows the rows to stock codes fuzzy-matching query, keeping
// snapshot order. An empty query shows every stock.
func (s *Screen) Filter(query string) {
	s.query = strings.TrimSpace(query)
	s.Selection.Close()
	s.refreshRows()
}

func (s *Screen) Query() string { return s.query }

// OpenDetail opens the popover for row of the current page.
func (s *Screen) OpenDetail(row int) bool {
	rows := s.Pager.Rows()
	if row < 0 || row >= len(rows) {
		return false
	}
	s.Selection.Open(Anchor{Page: s.Pager.CurrentPage(), Row: row}, rows[row])
	return true
}

// Teardown discards the snapshot, the rows and the popover. The screen
// can be activated again afterwards.
func (s *Screen) Teardown() {
	s.Store.Reset()
	s.Selection.Close()
	s.Pager.SetSource(nil)
	s.query = ""
	s.activated = false
}

// TriggerReimport forwards to the reimport command.
func (s *Screen) TriggerReimport(ctx context.Context) {
	s.Reimport.Trigger(ctx)
}

func (s *Screen) refreshRows() {
	snap, ok := s.Store.Current()
	if !ok {
		s.Pager.SetSource(nil)
		return
	}
	if s.query == "" {
		s.Pager.SetSource(snap.Stocks)
		return
	}

	matches := fuzzy.FindFrom(s.query, stockCodes(snap.Stocks))
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })

	rows := make([]model.Stock, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, snap.Stocks[m.Index])
	}
	s.Pager.SetSource(rows)
}

type stockCodes []model.Stock

func (c stockCodes) String(i int) string { return c[i].Code }
func (c stockCodes) Len() int            { return len(c) }
