package dag_concurrency

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/stagegrid/internal/app"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// setupRun writes a JSON arrangement and returns an app for it.
func setupRun(t *testing.T, arrangementJSON string, workers int, modules ...registry.Module) (*app.App, *testutil.SafeBuffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arrangement.json")
	require.NoError(t, os.WriteFile(path, []byte(arrangementJSON), 0o600))

	cfg, err := app.NewConfig(app.Config{
		ConfigPath: path,
		LogLevel:   "debug",
		Workers:    workers,
		QueueSize:  128,
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	testApp := app.NewApp(logs, cfg, modules...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = testApp.Close(ctx)
		if os.Getenv("STAGEGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return testApp, logs
}
