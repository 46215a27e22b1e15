package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/critq/internal/schema"
)

// UsersCUE is the shared test schema.
//
// User rows live in "users" and point at an Account through owner_id.
// Both entities carry a "kind" discriminator.
const UsersCUE = `
entity: Account: {
	table:         "accounts"
	discriminator: "kind"
	field: {
		email:    {}
		plan:     {}
		verified: {type: "bool"}
	}
}

entity: User: {
	table:         "users"
	discriminator: "kind"
	field: {
		status:  {}
		region:  {}
		age:     {type: "int"}
		active:  {type: "bool"}
		ownerId: {column: "owner_id", nullable: true}
	}
	relation: owner: {target: "Account", local_key: "ownerId"}
}
`

// UsersSchema compiles UsersCUE, failing the test on error.
func UsersSchema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.CompileString(UsersCUE)
	require.NoError(t, err)
	return s
}
