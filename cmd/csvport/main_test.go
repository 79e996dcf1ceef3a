package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain", errors.New("boom"), exitFailure},
		{"explicit", withCode(exitUsage, errors.New("bad flag")), exitUsage},
		{"config", &core.ConfigError{Setting: "DB_DRIVER", Value: "sqlite", Err: store.ErrNativeUnsupported}, exitUsage},
		{"parse", &csvio.ParseError{Line: 2, Err: csvio.ErrBlank}, exitInvalidData},
		{"validation", models.NewValidationError("user"), exitInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// run executes the CLI once with a fresh app, as main does.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	defer a.close()

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCommandsSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "csvport.db"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "csvs"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	input := filepath.Join(dir, "projects.csv")
	require.NoError(t, os.WriteFile(input, []byte("name,description\nAlpha,first\nBeta,\n"), 0o644))

	out, err = run(t, "import", "projects", input)
	require.NoError(t, err)
	assert.Contains(t, out, "projects: 2 rows read, 2 inserted")

	out, err = run(t, "export", "projects", "--stdout", "--exclude-ids", "1")
	require.NoError(t, err)
	assert.Equal(t, csvio.BOM+`"id","name","description"`+"\n"+`"2","Beta",""`+"\n", out)

	out, err = run(t, "export", "projects", "--stdout", "--ids", "1,2", "--exclude-ids", "2")
	require.NoError(t, err)
	assert.Equal(t, csvio.BOM+`"id","name","description"`+"\n"+`"1","Alpha","first"`+"\n", out)

	out, err = run(t, "export", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "projects: 2 rows written to ")
	entries, err := os.ReadDir(filepath.Join(dir, "csvs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "projects_"))

	_, err = run(t, "export", "projects", "--native")
	require.ErrorIs(t, err, store.ErrNativeUnsupported)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = run(t, "import", "projects", input, "--strategy", "fast")
	require.ErrorIs(t, err, core.ErrUnknownStrategy)

	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "STARTED")
	assert.Equal(t, 3, strings.Count(out, "\n"), "header plus one export and one import")

	out, err = run(t, "entities")
	require.NoError(t, err)
	assert.Contains(t, out, "memberships")
	assert.Contains(t, out, "Memberships")

	_, err = run(t, "reset")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = run(t, "reset", "--yes")
	require.NoError(t, err)
	out, err = run(t, "export", "projects", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, csvio.BOM+`"id","name","description"`+"\n", out)
}

func TestMissingConfiguration(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}
