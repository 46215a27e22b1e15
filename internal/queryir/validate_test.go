package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/critq/internal/filter"
)

var statusRef = FieldRef{Source: "t0", Field: "status", Column: "status"}

func TestValidate_PortableQuery(t *testing.T) {
	query := Select{
		Entity: "User",
		Table:  "users",
		Alias:  "t0",
		Joins:  []Join{{Parent: "t0", Relation: "owner", Kind: filter.JoinInner, Alias: "t1"}},
		Filter: And{Predicates: []Predicate{
			Equals{Ref: statusRef, Value: "ACTIVE"},
			In{Ref: statusRef, Values: []any{"A", "B"}},
		}},
	}

	result := Validate(query)

	assert.True(t, result.IsPortable, "equality, IN and inner joins are portable")
	assert.Empty(t, result.Warnings)
}

func TestValidate_PortableQueryWithPointer(t *testing.T) {
	query := &Select{
		Table:  "users",
		Filter: &Equals{Ref: statusRef, Value: "ACTIVE"},
	}

	result := Validate(query)

	assert.True(t, result.IsPortable, "pointer types should be portable")
	assert.Empty(t, result.Warnings)
}

func TestValidate_NoFilter(t *testing.T) {
	result := Validate(Select{Table: "users"})
	assert.True(t, result.IsPortable)
}

func TestValidate_NonPortable(t *testing.T) {
	testCases := []struct {
		name  string
		query Select
		want  string
	}{
		{
			name: "left join",
			query: Select{Joins: []Join{
				{Relation: "owner", Kind: filter.JoinLeft},
			}},
			want: "LEFT join on 'owner'",
		},
		{
			name:  "is null",
			query: Select{Filter: IsNull{Ref: statusRef}},
			want:  "Field 'status' tested for NULL",
		},
		{
			name:  "is not null",
			query: Select{Filter: IsNotNull{Ref: statusRef}},
			want:  "tested for NOT NULL",
		},
		{
			name:  "nil equality",
			query: Select{Filter: Equals{Ref: statusRef}},
			want:  "compared to nil",
		},
		{
			name:  "empty in",
			query: Select{Filter: In{Ref: statusRef}},
			want:  "empty IN list",
		},
		{
			name:  "or",
			query: Select{Filter: Or{Predicates: []Predicate{Equals{Ref: statusRef, Value: "A"}}}},
			want:  "OR with 1 branches",
		},
		{
			name:  "not",
			query: Select{Filter: Not{Predicate: Equals{Ref: statusRef, Value: "A"}}},
			want:  "NOT - portable fragment has no negation",
		},
		{
			name:  "type check",
			query: Select{Filter: TypeEquals{Ref: FieldRef{Source: "t0", Column: "kind"}, Type: "ADMIN"}},
			want:  "Type check on 'root'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.query)

			assert.False(t, result.IsPortable)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tc.want)
		})
	}
}

func TestValidate_NotEqualsWarns(t *testing.T) {
	result := Validate(Select{Filter: NotEquals{Ref: statusRef, Value: "A"}})

	assert.False(t, result.IsPortable)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "compared with <>")
}

func TestValidate_CollectsNestedWarningsInOrder(t *testing.T) {
	query := Select{
		Joins: []Join{{Relation: "owner", Kind: filter.JoinRight}},
		Filter: And{Predicates: []Predicate{
			Equals{Ref: statusRef, Value: "A"},
			Or{Predicates: []Predicate{
				IsNull{Ref: statusRef},
				Not{Predicate: In{Ref: statusRef}},
			}},
		}},
	}

	result := Validate(query)

	assert.False(t, result.IsPortable)
	require.Len(t, result.Warnings, 5)
	assert.Contains(t, result.Warnings[0], "RIGHT join")
	assert.Contains(t, result.Warnings[1], "OR with 2 branches")
	assert.Contains(t, result.Warnings[2], "tested for NULL")
	assert.Contains(t, result.Warnings[3], "NOT")
	assert.Contains(t, result.Warnings[4], "empty IN list")
}

func TestValidate_NilAndUnknownQueries(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.IsPortable)
	assert.Contains(t, result.Warnings[0], "nil query")

	var sel *Select
	result = Validate(sel)
	assert.False(t, result.IsPortable)
	assert.Contains(t, result.Warnings[0], "nil query")
}
