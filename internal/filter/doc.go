// Package filter provides the criteria DSL and its predicate compiler.
//
// A filter is a tree of Criterion nodes built with the package-level factory
// functions (Equals, In, IsNull, And, Or, Not, ...). The tree is compiled
// against a QueryContext supplied by a storage backend:
//
//	[filter DSL] → Compile(QueryContext) → [backend Predicate]
//
// The package never produces query text itself. Backends implement From and
// CriteriaBuilder; this package walks the tree, resolves field references
// through a PathResolver and hands the backend one predicate per node.
//
// JOINS:
//
// Criteria may reference a field on a related entity by naming a join:
//
//	filter.On("owner").Equals("email", "a@b.c")
//
// The join kind is looked up in the Builder's JoinRegistry. The first
// resolution of a name fixes its kind (INNER unless DefineJoin ran first)
// for the rest of the builder's life. Each join is created once per compile
// pass and reused by every criterion that names it.
//
// COMPOSITION:
//
// Builder.And and Builder.Or re-root the tree left-associatively:
//
//	filter.Or(a, b).ToBuilder().And(c)  // AND(OR(a, b), c)
//	filter.And(a).ToBuilder().And(b)    // AND(a, b)
//
// VACUOUS GROUPS:
//
// An AND with no children is TRUE and an OR with no children is FALSE.
// IN with an empty collection compiles to the empty OR, so it never matches.
//
// CONCURRENCY:
//
// Builders and criteria are not safe for concurrent mutation. Callers that
// share a Builder across goroutines must synchronize And, Or, DefineJoin and
// Compile themselves. Compiled predicates are plain values owned by the
// backend.
package filter
