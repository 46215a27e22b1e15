package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/critq/internal/store"
)

func TestRunWithGolden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "users.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures())
	assert.Len(t, result.Cases, 4)
}

// inline parses a YAML fragment into a query node.
func inline(t *testing.T, src string) yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return *doc.Content[0]
}

func usersScenario(t *testing.T, cases ...Case) *Scenario {
	t.Helper()
	return &Scenario{
		Name:        "inline",
		Description: "inline scenario",
		Schema:      filepath.Join("testdata", "schema"),
		Seed:        filepath.Join("testdata", "rows.yaml"),
		Cases:       cases,
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	scenario := usersScenario(t, Case{
		Name:   "wrong ids",
		Query:  inline(t, "entity: User\nfilter: {op: EQUALS, field: region, value: EU}"),
		Expect: Expect{IDs: []string{"u1"}, Tree: "EQ(region,US)"},
	})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Cases, 1)

	c := result.Cases[0]
	assert.False(t, c.Pass)
	assert.Equal(t, []string{"u1", "u3"}, c.IDs)
	assert.Equal(t, []string{
		"ids: expected [u1], actual [u1 u3]",
		"tree: expected EQ(region,US), actual EQ(region,EU)",
	}, c.Failures)
	assert.Equal(t, []string{
		"wrong ids: ids: expected [u1], actual [u1 u3]",
		"wrong ids: tree: expected EQ(region,US), actual EQ(region,EU)",
	}, result.Failures())
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := usersScenario(t, Case{
		Name:   "bad relation",
		Query:  inline(t, "entity: User\nfilter: {op: TYPE, join: manager, type: ORG}"),
		Expect: Expect{IDs: []string{}},
	})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.Len(t, result.Cases, 1)
	assert.Contains(t, result.Cases[0].Error, `unknown relation "manager"`)
	assert.Equal(t, []string{`unexpected error: unknown relation "manager" on entity User`}, result.Cases[0].Failures)
}

func TestRun_InlineRows(t *testing.T) {
	scenario := usersScenario(t, Case{
		Name:   "type of joined account",
		Query:  inline(t, "entity: User\nfilter: {op: TYPE, join: owner, type: ORG}"),
		Expect: Expect{IDs: []string{"u1", "u9"}},
	})
	scenario.Rows = []store.Batch{{
		Entity: "User",
		Rows:   []store.Row{{"id": "u9", "status": "ACTIVE", "region": "EU", "age": 60, "active": true, "ownerId": "a1"}},
	}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures())
}

func TestRun_WithoutSchema(t *testing.T) {
	scenario := &Scenario{
		Name:        "permissive",
		Description: "no schema, compile only",
		Cases: []Case{{
			Name:  "table names",
			Query: inline(t, "entity: orders\njoins: {customer: LEFT}\nfilter: {op: EQUALS, join: customer, field: tier, value: gold}"),
			Expect: Expect{
				SQL: "SELECT t0.* FROM orders AS t0 LEFT JOIN customer AS t1 ON t1.id = t0.customer_id WHERE t1.tier = ? ORDER BY t0.id ASC COLLATE BINARY",
			},
		}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures())
	assert.Nil(t, result.Cases[0].IDs, "nothing is executed without a schema")
}

func TestRun_SetupErrors(t *testing.T) {
	dir := t.TempDir()
	badSeed := filepath.Join(dir, "rows.yaml")
	require.NoError(t, os.WriteFile(badSeed, []byte("- entity: Team\n  rows: [{id: t1}]\n"), 0o644))

	scenario := usersScenario(t, Case{Name: "x", Query: inline(t, "entity: User\nfilter: {and: []}"), Expect: Expect{IDs: []string{}}})
	scenario.Seed = badSeed

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed")

	scenario.Seed = ""
	scenario.Schema = dir
	_, err = Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestRun_LogsCases(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	scenario := usersScenario(t, Case{
		Name:   "all users",
		Query:  inline(t, "entity: User\nfilter: {and: []}"),
		Expect: Expect{IDs: []string{"u1", "u2", "u3", "u4"}},
	})

	result, err := Run(context.Background(), scenario, WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, buf.String(), `"case":"all users"`)
	assert.Contains(t, buf.String(), `"message":"seed"`)
}

func TestGoldenFiles(t *testing.T) {
	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "owners.yaml")
	path := GoldenPath(scenarioFile)
	assert.Equal(t, filepath.Join(dir, "golden", "owners.golden"), path)

	result := NewResult("owners")
	result.Add(CaseResult{Name: "a", Pass: true, SQL: "SELECT 1 WHERE x <> ?", IDs: []string{"u1"}})

	require.NoError(t, WriteGolden(path, result))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sql": "SELECT 1 WHERE x <> ?"`)

	match, err := CompareGolden(path, result)
	require.NoError(t, err)
	assert.True(t, match)

	result.Add(CaseResult{Name: "b"})
	match, err = CompareGolden(path, result)
	require.NoError(t, err)
	assert.False(t, match)

	_, err = CompareGolden(filepath.Join(dir, "missing.golden"), result)
	assert.Error(t, err)
}
