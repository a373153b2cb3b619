package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)

// setupEnv points the CLI at a fresh data dir and the given API server.
func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("GOALFORGE_CONFIG", "")
	t.Setenv("GOALFORGE_DEVICE_STORE", "file")
	t.Setenv("GOALFORGE_DATA_DIR", t.TempDir())
	t.Setenv("GOALFORGE_API_URL", apiURL)
	t.Setenv("GOALFORGE_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := buildRootCmd(func() time.Time { return fixedNow })
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func goalID(t *testing.T, addOutput string) string {
	t.Helper()
	i := strings.LastIndex(addOutput, "(")
	j := strings.LastIndex(addOutput, ")")
	require.True(t, i >= 0 && j > i, addOutput)
	return addOutput[i+1 : j]
}

func TestDeviceGoalLifecycle(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	id := goalID(t, mustRun(t, "goals", "add", "Read", "120", "--type", "dur"))

	_, err := run(t, "effort", "log", id, "today", "30")
	require.Error(t, err, "goal not started yet")

	mustRun(t, "goals", "start", id)
	out := mustRun(t, "effort", "log", id, "today", "--hours", "1", "--minutes", "30")
	assert.Contains(t, out, "1h30m invested, 30m remaining")

	// same day again replaces, it does not add
	out = mustRun(t, "effort", "log", id, "2024-05-10", "45")
	assert.Contains(t, out, "45m invested, 1h15m remaining")

	out = mustRun(t, "effort", "show", id)
	assert.Contains(t, out, "2024-05-10  45m")
	assert.Contains(t, out, "Invested 45m of 2h, 1h15m remaining")

	out = mustRun(t, "goals", "list")
	assert.Contains(t, out, "Read")
	assert.Contains(t, out, "active")
}

func TestEffortLogRejections(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")
	id := goalID(t, mustRun(t, "goals", "add", "Push-ups", "10", "--type", "cnt"))
	mustRun(t, "goals", "start", id)

	cases := [][]string{
		{"effort", "log", id, "2024-05-09", "1"},
		{"effort", "log", id, "10/05/2024", "1"},
		{"effort", "log", id, "today", "0"},
		{"effort", "log", id, "today", "abc"},
		{"effort", "log", id, "today"},
		{"effort", "log", id, "today", "11"},
	}
	for _, args := range cases {
		_, err := run(t, args...)
		assert.Error(t, err, "%v", args)
	}

	out := mustRun(t, "effort", "log", id, "2024-05-11", "10")
	assert.Contains(t, out, "10 invested, 0 remaining")
}

func TestLoginImportAndRemoteCommit(t *testing.T) {
	var (
		imported bool
		progress bool
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/goals/import", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		imported = true
	})
	mux.HandleFunc("POST /api/goals/r1/progress", func(w http.ResponseWriter, r *http.Request) {
		progress = true
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/goals", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1","goalName":"Swim","progressType":"cnt","estimatedEffort":20,
			"status":"active","progressCalendar":{"2024-05-10":4}}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	setupEnv(t, srv.URL)

	mustRun(t, "goals", "add", "Local goal", "5", "--type", "cnt")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "email": "ana@example.com", "exp": fixedNow.Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	out := mustRun(t, "login", "--token", tok)
	assert.Contains(t, out, "1 goal(s) are stored on this device")

	out = mustRun(t, "whoami")
	assert.Contains(t, out, "Signed in as ana@example.com")
	assert.Contains(t, out, "Token expires at")

	out = mustRun(t, "import", "--mode", "reset")
	assert.Contains(t, out, "Imported 1 goal(s).")
	assert.True(t, imported)

	out = mustRun(t, "import")
	assert.Contains(t, out, "No goals on this device")

	out = mustRun(t, "effort", "log", "r1", "today", "4")
	assert.True(t, progress)
	assert.Contains(t, out, "4 invested, 16 remaining")

	mustRun(t, "logout")
	out = mustRun(t, "goals", "list")
	assert.Contains(t, out, "No goals yet")
}

func TestRemoteRejectionIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Effort exceeds remaining effort"}`))
	}))
	defer srv.Close()
	setupEnv(t, srv.URL)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte("k"))
	require.NoError(t, err)
	mustRun(t, "login", "--token", tok)

	out, err := run(t, "effort", "log", "r1", "today", "99")
	require.Error(t, err)
	assert.Equal(t, "Effort exceeds remaining effort", err.Error())
	assert.Contains(t, out, "Effort exceeds remaining effort")
}

func TestFlipPrinterOnlyReportsChanges(t *testing.T) {
	var got []bool
	p := &flipPrinter{print: func(ready bool) { got = append(got, ready) }}
	for _, r := range []bool{false, false, true, true, true, false, true} {
		p.publish(r)
	}
	assert.Equal(t, []bool{false, true, false, true}, got)
}
