package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testNow is the pinned instant commands run at: a Monday morning.
var testNow = time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)

// testEnv is a throwaway config plus stores for one test.
type testEnv struct {
	configPath string
	now        time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("database_path: %s\nfallback_path: %s\n",
		filepath.Join(dir, "tasks.db"), filepath.Join(dir, "tasks.json"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return &testEnv{configPath: configPath, now: testNow}
}

// execute runs one CLI invocation against the env's config and pinned
// clock, returning stdout, stderr and the command error.
func (e *testEnv) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	opts := &RootOptions{Now: func() time.Time { return e.now }}
	cmd := newRootCommand(opts)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", e.configPath))
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// mustExecute fails the test on command error.
func (e *testEnv) mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.execute(t, args...)
	require.NoError(t, err, "command %v failed, stderr: %s", args, errOut)
	return out
}

// addSample creates a task through the CLI. Stored ids are uuids; tests
// that need one go through taskID instead.
func (e *testEnv) addSample(t *testing.T, title, start, end string, extra ...string) {
	t.Helper()
	args := append([]string{"add", title, "--start", start, "--end", end}, extra...)
	e.mustExecute(t, args...)
}
