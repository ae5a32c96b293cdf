package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/lastimport/internal/testutil"
)

const snapshotJSON = `{
  "date": "2021-06-01T18:30:00Z",
  "importErrors": [],
  "stocks": [{"code": "AAA", "indicatorsValues": {"preco_atual": 10.5, "_id": "x"}}]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(WithBaseURL(srv.URL+"/"), WithLogger(testutil.NewTestLogger(t)))
}

func TestFetchLatestImport(t *testing.T) {
	var gotPath, gotMethod, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotReqID = r.Header.Get(requestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(snapshotJSON))
	})

	s, err := c.FetchLatestImport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/imports/last", gotPath)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.NotEmpty(t, gotReqID)
	assert.True(t, s.Date.Equal(time.Date(2021, 6, 1, 18, 30, 0, 0, time.UTC)))
	assert.Empty(t, s.ImportErrors)
	require.Len(t, s.Stocks, 1)
	assert.Equal(t, "AAA", s.Stocks[0].Code)
	assert.Equal(t, []string{"preco_atual", "_id"}, s.Stocks[0].IndicatorsValues.Names())
}

func TestFetchLatestImportNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	s, err := c.FetchLatestImport(context.Background())
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchLatestImportServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusBadGateway)
	})

	s, err := c.FetchLatestImport(context.Background())
	assert.Nil(t, s)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestFetchLatestImportDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date": "2021-06-01T18:30:00Z", "stocks": [{"code": 1`))
	})

	s, err := c.FetchLatestImport(context.Background())
	assert.Nil(t, s, "no partial snapshot on decode failure")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
}

func TestFetchLatestImportNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(WithBaseURL(url), WithTimeout(time.Second), WithLogger(testutil.NewTestLogger(t)))
	_, err := c.FetchLatestImport(context.Background())

	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestFetchLatestImportCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchLatestImport(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTriggerImport(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, c.TriggerImport(context.Background()))
	assert.Equal(t, "/imports", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestTriggerImportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := c.TriggerImport(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusConflict, te.StatusCode)
	assert.Contains(t, err.Error(), "empty response")
}

func TestNewHTTPClientDefaults(t *testing.T) {
	c := NewHTTPClient()
	assert.Equal(t, defaultBaseURL, c.BaseURL())
	assert.Equal(t, defaultHTTPTimeout, c.httpClient.Timeout)

	c = NewHTTPClient(WithBaseURL("https://api.example.com/"), WithTimeout(2*time.Second))
	assert.Equal(t, "https://api.example.com", c.BaseURL())
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}

func TestFileClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))

	c := FileClient{Path: path}
	s, err := c.FetchLatestImport(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Stocks, 1)

	assert.True(t, errors.Is(c.TriggerImport(context.Background()), ErrTriggerUnsupported))

	_, err = FileClient{Path: filepath.Join(t.TempDir(), "nope.json")}.FetchLatestImport(context.Background())
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}
