package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/critq/internal/testutil"
)

const activeUsersYAML = `
entity: User
filter:
  and:
    - {op: EQUALS, field: status, value: ACTIVE}
    - {op: IN, field: region, values: [EU, US]}
`

const ownedUsersYAML = `
entity: User
joins:
  owner: LEFT
filter:
  or:
    - {op: NULL, join: owner, field: id}
    - {op: EQUALS, join: owner, field: plan, value: free}
`

const seedYAML = `
- entity: Account
  rows:
    - {id: a1, kind: ORG, email: a1@example.com, plan: pro, verified: true}
    - {id: a2, kind: PERSON, email: a2@example.com, plan: free, verified: false}
- entity: User
  rows:
    - {id: u1, status: ACTIVE, region: EU, age: 31, active: true, ownerId: a1}
    - {id: u2, status: ACTIVE, region: US, age: 42, active: true}
    - {id: u3, status: INACTIVE, region: EU, age: 25, active: false, ownerId: a2}
    - {id: u4, status: ACTIVE, region: APAC, age: 19, active: true, ownerId: a2}
`

// workspace is a temp dir holding a schema, filter files and a database path.
type workspace struct {
	dir       string
	schemaDir string
	dbPath    string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:       dir,
		schemaDir: filepath.Join(dir, "schema"),
		dbPath:    filepath.Join(dir, "critq.db"),
	}
	require.NoError(t, os.Mkdir(ws.schemaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.schemaDir, "users.cue"), []byte(testutil.UsersCUE), 0o644))
	return ws
}

// file writes content to name inside the workspace and returns its path.
func (ws *workspace) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (ws *workspace) opts(format string) *RootOptions {
	return &RootOptions{
		Format:    format,
		LogLevel:  "disabled",
		DBPath:    ws.dbPath,
		SchemaDir: ws.schemaDir,
	}
}

// seed loads seedYAML into the workspace database.
func (ws *workspace) seed(t *testing.T) {
	t.Helper()
	_, _, err := execute(NewSeedCommand(ws.opts("text")), ws.file(t, "rows.yaml", seedYAML))
	require.NoError(t, err)
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
