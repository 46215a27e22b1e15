package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIDGenerator(t *testing.T) {
	gen := NewSequenceIDGenerator("")
	assert.Equal(t, "id-1", gen.Generate())
	assert.Equal(t, "id-2", gen.Generate())

	gen.Reset()
	assert.Equal(t, "id-1", gen.Generate())
}

func TestSequenceIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDGenerator("row")
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestUsersSchema(t *testing.T) {
	s := UsersSchema(t)
	assert.Equal(t, []string{"Account", "User"}, s.Names())

	user, err := s.Entity("User")
	require.NoError(t, err)
	assert.Equal(t, "kind", user.Discriminator)

	rel, err := user.Relation("owner")
	require.NoError(t, err)
	assert.Equal(t, "Account", rel.Target)
}
