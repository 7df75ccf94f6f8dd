package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run executes the CLI against a config file pointing at dir and returns
// stdout.
func run(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	argv := append([]string{"docsearch", "--log-level", "error", "--config", configFile}, args...)
	err := app.Run(argv)
	return stdout.String(), err
}

func writeConfig(t *testing.T, driver string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "docsearch.yaml")
	body := fmt.Sprintf("storage:\n  driver: %s\n  path: %s\nembedding:\n  dimension: 32\n",
		driver, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestAddThenSearch(t *testing.T) {
	for _, driver := range []string{"badger", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := writeConfig(t, driver)

			out, err := run(t, cfg, "add", "hello", "world")
			require.NoError(t, err)
			assert.Equal(t, "hello world", strings.SplitN(strings.TrimSpace(out), "\t", 2)[1])

			_, err = run(t, cfg, "add", "something else entirely")
			require.NoError(t, err)

			out, err = run(t, cfg, "search", "--user", "u1", "--top-k", "1", "hello world")
			require.NoError(t, err)
			assert.Equal(t, "1\thello world\n", out)
		})
	}
}

func TestAdd_RequiresContent(t *testing.T) {
	_, err := run(t, writeConfig(t, "badger"), "add", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content is required")
}

func TestSearch_RequiresUser(t *testing.T) {
	_, err := run(t, writeConfig(t, "badger"), "search", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestSearch_RateLimitPersists(t *testing.T) {
	cfg := writeConfig(t, "sqlite")
	for i := 0; i < 5; i++ {
		_, err := run(t, cfg, "search", "--user", "u1", "anything")
		require.NoError(t, err)
	}
	_, err := run(t, cfg, "search", "--user", "u1", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestImport(t *testing.T) {
	cfg := writeConfig(t, "badger")
	input := filepath.Join(t.TempDir(), "docs.txt")
	require.NoError(t, os.WriteFile(input, []byte("first doc\n\nsecond doc\nthird doc\n"), 0o644))

	_, err := run(t, cfg, "import", "--file", input, "--report-interval", "1")
	require.NoError(t, err)

	out, err := run(t, cfg, "search", "--user", "u1", "--top-k", "10", "doc")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestSeed(t *testing.T) {
	cfg := writeConfig(t, "sqlite")

	out, err := run(t, cfg, "seed")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("seeded %d documents\n", len(sampleDocuments)), out)

	_, err = run(t, cfg, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run(t, cfg, "seed", "--force")
	require.NoError(t, err)

	out, err = run(t, cfg, "search", "--user", "u1", "--top-k", "1", sampleDocuments[3])
	require.NoError(t, err)
	assert.Equal(t, "4\t"+sampleDocuments[3]+"\n", out)
}

func TestImport_MissingFile(t *testing.T) {
	_, err := run(t, writeConfig(t, "badger"), "import", "--file", filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o644))

	_, err := run(t, path, "add", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("  a  \n\n b\n\t\nc"), 0o644))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WaRn", false},
		{"ERROR", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := newApp()
			app.Commands = nil
			app.Action = func(*cli.Context) error { return nil }
			err := app.Run([]string{"docsearch", "--log-level", tt.level})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
		})
	}
}
