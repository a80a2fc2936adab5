package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `{
  "count": 2,
  "results": [
    {"id": "a1", "name": "Falcon 9 | Starlink", "status": {"id": 1}, "last_updated": "2025-03-12T08:00:00Z", "net": "2025-03-18T02:15:00Z"},
    {"id": "b2", "name": "Electron | Swarm", "status": {"id": 8}, "last_updated": "2025-03-11T10:00:00Z", "net": "2025-03-21T14:30:00Z"}
  ]
}`

// isolate runs the command from an empty directory with a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "TIMEZONE", "TELEGRAM_TOKEN", "SMTP_HOST", "METRICS_ADDR", "LOG_FILE", "MAIL_RECIPIENTS_FILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "launches.db"))
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseNow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)

	got, err := parseNow("2025-03-13T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.True(t, got.Equal(time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)))

	_, err = parseNow("next thursday", loc)
	assert.Error(t, err)
}

func TestWindowCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "window", "--now", "2025-03-16T23:59:59Z")
	require.NoError(t, err)
	assert.Equal(t, "week 12/2025\nstart: 2025-03-17T00:00:00Z\nend:   2025-03-23T23:59:59Z\n", out)
}

func TestWindowCommand_Stored(t *testing.T) {
	isolate(t)

	out, err := execute(t, "window", "--now", "2025-03-13T10:00:00Z", "--stored")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing stored yet")
}

func TestRunCommand_EndToEnd(t *testing.T) {
	isolate(t)
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "2025-03-17T00:00:00Z", r.URL.Query().Get("net__gte"))
		io.WriteString(w, feedBody)
	}))
	defer srv.Close()
	t.Setenv("LL_BASE_URL", srv.URL)

	out, err := execute(t, "run", "--now", "2025-03-13T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "week 12/2025: 2 launches stored, notified: true\n", out)

	// second run with the same feed changes nothing
	out, err = execute(t, "run", "--now", "2025-03-13T10:05:00Z")
	require.NoError(t, err)
	assert.Equal(t, "week 12/2025: 2 launches stored, notified: true\n", out)
	assert.Equal(t, 2, requests)

	out, err = execute(t, "window", "--now", "2025-03-13T10:00:00Z", "--stored")
	require.NoError(t, err)
	assert.Contains(t, out, "Falcon 9 | Starlink")
	assert.Contains(t, out, "Electron | Swarm")
}

func TestRunCommand_FetchFailure(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("LL_BASE_URL", srv.URL)

	_, err := execute(t, "run", "--now", "2025-03-13T10:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch launches")
}

func TestRootCommand_BadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := execute(t, "window")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
