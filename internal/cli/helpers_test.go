package cli_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/sequestra/internal/cli"
)

// isolate points SEQUESTRA_HOME at a temp dir and clears overrides so a test
// never reads or writes the real ~/.sequestra. Returns the home dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SEQUESTRA_HOME", home)
	t.Setenv("SEQUESTRA_LOG_LEVEL", "error")
	t.Setenv("SEQUESTRA_LOG_FILE", filepath.Join(home, "test.log"))
	t.Setenv("SEQUESTRA_PROJECT_DIR", "")
	t.Setenv("SEQUESTRA_TELEGRAM_TOKEN", "")
	return home
}

// execute runs the root command with args and returns what it wrote to
// stdout. Stderr is discarded.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeStreams(t, stdin, args...)
	return stdout, err
}

// executeStreams runs the root command with args and returns stdout and
// stderr separately.
func executeStreams(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(values ...string) io.Reader {
	return strings.NewReader(strings.Join(values, "\n") + "\n")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
