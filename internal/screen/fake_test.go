package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/tormodhaugland/lastimport/internal/model"
	"github.com/tormodhaugland/lastimport/internal/notify"
)

var errNoResult = errors.New("no queued result")

// fakeClient returns queued results; fetch and trigger calls are counted.
type fakeClient struct {
	mu        sync.Mutex
	results   []fetchResult
	fetches   int
	triggers  int
	triggerFn func(ctx context.Context) error
}

type fetchResult struct {
	snapshot *model.StockImportSnapshot
	err      error
}

func (f *fakeClient) FetchLatestImport(ctx context.Context) (*model.StockImportSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if len(f.results) == 0 {
		return nil, errNoResult
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r.snapshot, r.err
}

func (f *fakeClient) TriggerImport(ctx context.Context) error {
	f.mu.Lock()
	f.triggers++
	fn := f.triggerFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// recorder collects notifications and the order of events.
type recorder struct {
	mu     sync.Mutex
	notes  []notify.Notification
	events []string
}

func (r *recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	r.events = append(r.events, "notify:"+n.Level.String())
}

func (r *recorder) event(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() ([]notify.Notification, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.notes...), append([]string(nil), r.events...)
}

func stock(code string, ind ...model.Indicator) model.Stock {
	return model.Stock{Code: code, IndicatorsValues: model.Indicators(ind)}
}

func stocks(codes ...string) []model.Stock {
	out := make([]model.Stock, len(codes))
	for i, c := range codes {
		out[i] = stock(c)
	}
	return out
}

func numbered(n int) []model.Stock {
	out := make([]model.Stock, n)
	for i := range out {
		out[i] = stock(string(rune('A'+i%26)) + string(rune('A'+i/26%26)) + "3")
	}
	return out
}
