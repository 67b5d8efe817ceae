package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
}

func run(t *testing.T, stdin string, cmdArgs ...string) (string, error) {
	t.Helper()
	var cmd = NewMigrateCommand()
	if cmdArgs[0] == "create-admin" {
		cmd = NewCreateAdminCommand()
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(cmdArgs[1:])
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateLifecycle(t *testing.T) {
	useTempDB(t)

	out, err := run(t, "", "migrate", "diff")
	require.Error(t, err)
	assert.Contains(t, out, "missing table users")

	out, err = run(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "20251127_initial_schema pending")

	_, err = run(t, "", "migrate", "up")
	require.NoError(t, err)

	out, err = run(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "20251127_initial_schema applied")
	assert.Contains(t, out, "0 pending")

	out, err = run(t, "", "migrate", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "database matches the models")

	_, err = run(t, "", "migrate", "down")
	require.NoError(t, err)
	out, err = run(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "1 pending")
}

func TestCreateAdminFromFlags(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "", "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "", "create-admin", "--username", "root", "--email", "root@example.com", "--password", "s3cret!")
	require.NoError(t, err)
	assert.Contains(t, out, `administrator "root" ready`)

	out, err = run(t, "", "create-admin", "--username", "root", "--email", "other@example.com", "--password", "s3cret!")
	require.Error(t, err)
	assert.Contains(t, out, "username already exists")
}

func TestCreateAdminPrompts(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "", "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "bob\nbob@example.com\nhunter22\n", "create-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, `administrator "bob" ready`)
}

func TestCreateAdminRejectsInvalidInput(t *testing.T) {
	useTempDB(t)

	out, err := run(t, "", "create-admin", "--username", "x", "--email", "nope", "--password", "123")
	require.Error(t, err)
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "password must be at least 6 characters")
}

func TestCreateAdminFailsOnClosedInput(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "", "create-admin", "--username", "carol")
	assert.Error(t, err)
}
