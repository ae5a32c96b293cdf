package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/lastimport/internal/screen"
	"github.com/tormodhaugland/lastimport/internal/tui"
)

// runTrigger executes `lastimport <args>` against a backend counting
// POST /imports requests.
func runTrigger(t *testing.T, decision tui.Decision, args ...string) (out string, asked bool, posts int32, err error) {
	t.Helper()

	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/imports" {
			count.Add(1)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LASTIMPORT_API_URL", srv.URL)
	t.Setenv("LASTIMPORT_PAGE_SIZE", "")

	prev := confirmImport
	confirmImport = func(question string) (tui.Decision, error) {
		asked = true
		return decision, nil
	}
	t.Cleanup(func() { confirmImport = prev })

	cfgFile, jsonOut, triggerYes, triggerWait = "", false, false, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	return buf.String(), asked, count.Load(), err
}

func TestTriggerJSONStillAsksForConfirmation(t *testing.T) {
	out, asked, posts, err := runTrigger(t, tui.DecisionNo, "trigger", "--json")
	require.NoError(t, err)

	assert.True(t, asked, "--json must not skip the prompt")
	assert.Equal(t, int32(0), posts)
	assert.Contains(t, out, "Cancelled.")
}

func TestTriggerYesSkipsConfirmation(t *testing.T) {
	out, asked, posts, err := runTrigger(t, tui.DecisionNo, "trigger", "--yes", "--json")
	require.NoError(t, err)

	assert.False(t, asked)
	assert.Equal(t, int32(1), posts)
	assert.Contains(t, out, `"level":"success"`)
	assert.Contains(t, out, screen.AckMessage)
}

func TestTriggerConfirmedAndWaiting(t *testing.T) {
	out, asked, posts, err := runTrigger(t, tui.DecisionYes, "trigger", "--wait")
	require.NoError(t, err)

	assert.True(t, asked)
	assert.Equal(t, int32(1), posts)
	assert.Contains(t, out, "Waiting for the backend...")
	assert.Contains(t, out, screen.ConfirmedMessage)
}
