package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "critq", cmd.Use)
	assert.Contains(t, cmd.Long, "filter documents")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"explain", "sql", "query", "seed", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	defaults := map[string]string{
		"format":    "text",
		"log-level": "warn",
		"db":        "critq.db",
		"schema":    "schema",
	}
	for name, want := range defaults {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.DefValue, name)
	}
}

func TestGlobalFlags_FromEnvironment(t *testing.T) {
	t.Setenv("CRITQ_DB_PATH", "/tmp/users.db")
	t.Setenv("CRITQ_FORMAT", "json")

	cmd := NewRootCommand()
	assert.Equal(t, "/tmp/users.db", cmd.PersistentFlags().Lookup("db").DefValue)
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestExplainCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	explainCmd, _, err := cmd.Find([]string{"explain"})
	require.NoError(t, err)

	strictFlag := explainCmd.Flags().Lookup("strict")
	require.NotNil(t, strictFlag)
	assert.Equal(t, "false", strictFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	ws := newWorkspace(t)
	path := ws.file(t, "active.yaml", activeUsersYAML)

	_, _, err := execute(NewRootCommand(), "explain", "--format", "xml", "--schema", ws.schemaDir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestInvalidLogLevel(t *testing.T) {
	ws := newWorkspace(t)
	path := ws.file(t, "active.yaml", activeUsersYAML)

	_, _, err := execute(NewRootCommand(), "explain", "--log-level", "loud", "--schema", ws.schemaDir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("CRITQ_FORMAT", "xml")
	ws := newWorkspace(t)
	path := ws.file(t, "active.yaml", activeUsersYAML)

	_, _, err := execute(NewRootCommand(), "explain", "--schema", ws.schemaDir, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ErrCodeBadConfig, exitErr.ErrCode)
}

func TestRootCommand_EndToEnd(t *testing.T) {
	ws := newWorkspace(t)
	rows := ws.file(t, "rows.yaml", seedYAML)
	active := ws.file(t, "active.yaml", activeUsersYAML)
	global := []string{"--db", ws.dbPath, "--schema", ws.schemaDir, "--log-level", "disabled"}

	out, _, err := execute(NewRootCommand(), append([]string{"seed"}, append(global, rows)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ User: 4 row(s)")

	out, _, err = execute(NewRootCommand(), append([]string{"query"}, append(global, active)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "id=u1 ")
	assert.Contains(t, out, "id=u2 ")
	assert.Contains(t, out, "(2 User row(s))")
}
