package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/critq/internal/filter"
	"github.com/roach88/critq/internal/testutil"
)

const seedDoc = `
- entity: Account
  rows:
    - {id: a1, kind: ORG, email: a1@example.com, plan: pro, verified: true}
- entity: User
  rows:
    - {id: u1, status: ACTIVE, region: EU, age: 31, active: true, ownerId: a1}
    - {status: ACTIVE, region: US, age: 42, active: true}
`

func TestDecodeBatches(t *testing.T) {
	batches, err := DecodeBatches([]byte(seedDoc))
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "Account", batches[0].Entity)
	assert.Equal(t, true, batches[0].Rows[0]["verified"])
	assert.Equal(t, 31, batches[1].Rows[0]["age"])
	assert.Len(t, batches[1].Rows, 2)
}

func TestDecodeBatches_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "seed file has no batches"},
		{"empty list", "[]", "seed file has no batches"},
		{"not a list", "entity: User", "failed to parse YAML"},
		{"unknown key", "- entity: User\n  row: []", "failed to parse YAML"},
		{"no entity", "- rows: [{id: x}]", "batch 1: entity is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBatches([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSeed(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "seed.db"), WithIDGenerator(testutil.NewSequenceIDGenerator("gen")))
	require.NoError(t, err)
	defer s.Close()

	sc := testutil.UsersSchema(t)
	batches, err := DecodeBatches([]byte(seedDoc))
	require.NoError(t, err)

	got, err := s.Seed(context.Background(), sc, batches)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a1"}, {"u1", "gen-1"}}, got)

	rows, err := s.Find(context.Background(), sc, "User", filter.On("owner").Equals("plan", "pro").ToBuilder())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(rows))
}

func TestSeed_StopsAtFailingBatch(t *testing.T) {
	s, sc := createTestStore(t)
	ctx := context.Background()

	_, err := s.Seed(ctx, sc, []Batch{
		{Entity: "Account", Rows: []Row{{"id": "a1", "email": "e", "plan": "pro", "verified": true}}},
		{Entity: "Team", Rows: []Row{{"id": "t1"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2 (Team)")

	rows, err := s.Find(ctx, sc, "Account", filter.And().ToBuilder())
	require.NoError(t, err)
	assert.Len(t, rows, 1, "earlier batches stay committed")
}
