package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content as scenario.yaml in a temp dir that also
// holds an empty schema dir, a seed file and a filter file.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "schema"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.yaml"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filter.yaml"), []byte("entity: User\nfilter: {and: []}\n"), 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: users
description: "load check"
schema: schema
seed: rows.yaml
cases:
  - name: from file
    file: filter.yaml
    expect:
      ids: []
  - name: inline
    query:
      entity: User
      filter: {op: EQUALS, field: status, value: ACTIVE}
    expect:
      tree: EQ(status,ACTIVE)
      portable: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, "users", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "schema"), scenario.Schema)
	assert.Equal(t, filepath.Join(dir, "rows.yaml"), scenario.Seed)
	require.Len(t, scenario.Cases, 2)
	assert.Equal(t, filepath.Join(dir, "filter.yaml"), scenario.Cases[0].File)
	assert.NotNil(t, scenario.Cases[0].Expect.IDs)
	assert.Empty(t, scenario.Cases[0].Expect.IDs)

	require.NotNil(t, scenario.Cases[1].Expect.Portable)
	assert.True(t, *scenario.Cases[1].Expect.Portable)

	doc, err := scenario.Cases[1].Document()
	require.NoError(t, err)
	assert.Equal(t, "User", doc.Entity)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\ncase: []\n",
			want:    "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "description is required",
		},
		{
			name:    "no cases",
			content: "name: x\ndescription: d\nschema: schema\n",
			want:    "cases list is required",
		},
		{
			name:    "seed without schema",
			content: "name: x\ndescription: d\nseed: rows.yaml\ncases: [{name: a, file: filter.yaml, expect: {tree: TRUE}}]\n",
			want:    "seed and rows need a schema",
		},
		{
			name:    "missing schema dir",
			content: "name: x\ndescription: d\nschema: nowhere\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "schema directory not found",
		},
		{
			name:    "missing seed file",
			content: "name: x\ndescription: d\nschema: schema\nseed: nope.yaml\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "seed file not found",
		},
		{
			name:    "ids without schema",
			content: "name: x\ndescription: d\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "cases[0]: ids need a schema",
		},
		{
			name:    "file and query",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, file: filter.yaml, query: {entity: User}, expect: {ids: []}}]\n",
			want:    "exactly one of file and query",
		},
		{
			name:    "neither file nor query",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, expect: {ids: []}}]\n",
			want:    "exactly one of file and query",
		},
		{
			name:    "missing filter file",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, file: other.yaml, expect: {ids: []}}]\n",
			want:    "cases[0]: filter file not found",
		},
		{
			name:    "no checks",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, file: filter.yaml, expect: {}}]\n",
			want:    "expect has no checks",
		},
		{
			name:    "error with other checks",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, file: filter.yaml, expect: {error: boom, ids: []}}]\n",
			want:    "expect.error cannot be combined",
		},
		{
			name:    "duplicate case name",
			content: "name: x\ndescription: d\nschema: schema\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}, {name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    `cases[1]: duplicate name "a"`,
		},
		{
			name:    "rows without entity",
			content: "name: x\ndescription: d\nschema: schema\nrows: [{rows: []}]\ncases: [{name: a, file: filter.yaml, expect: {ids: []}}]\n",
			want:    "rows[0]: entity is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
