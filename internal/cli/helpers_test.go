package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/config"
	"github.com/isaaclb98/find-my-fav/internal/store"
	"github.com/isaaclb98/find-my-fav/internal/testutil"
)

// cliEnv is a temp workspace with a picture folder and a database path.
type cliEnv struct {
	photos string
	db     string
	dest   string
}

func newEnv(t *testing.T, names ...string) *cliEnv {
	t.Helper()
	root := t.TempDir()
	env := &cliEnv{
		photos: filepath.Join(root, "photos"),
		db:     filepath.Join(root, "findmyfav.db"),
		dest:   filepath.Join(root, "exports"),
	}
	testutil.WriteImages(t, env.photos, names...)
	return env
}

// execute runs the root command with args followed by --db, feeding stdin.
func (e *cliEnv) execute(stdin string, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--db", e.db))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// mustExecute is execute that fails the test on error.
func (e *cliEnv) mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.execute(stdin, args...)
	require.NoError(t, err, "stdout:\n%s\nstderr:\n%s", stdout, stderr)
	return stdout
}

// seed inserts the env's pictures into a fresh database without the CLI.
func (e *cliEnv) seed(t *testing.T, refs ...string) {
	t.Helper()
	st, err := store.Open(e.db)
	require.NoError(t, err)
	defer st.Close()
	if len(refs) > 0 {
		_, err = st.InsertItems(context.Background(), refs)
		require.NoError(t, err)
	}
}

// directOptions returns root options with a resolved config, for calling
// run functions without the root command.
func (e *cliEnv) directOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		Config: &config.Config{
			DB: e.db,
			Export: config.ExportConfig{
				Threshold:   85,
				Dir:         e.dest,
				Concurrency: 2,
			},
			Log: config.LogConfig{Level: "info", Format: "text"},
		},
	}
}

// bareCommand returns a command with captured output for direct calls.
func bareCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, out
}

// decodeData unmarshals the data payload of a JSON CLI response.
func decodeData[T any](t *testing.T, stdout string) T {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status, stdout)
	return resp.Data
}
