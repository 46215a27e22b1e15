// Package queryir provides the abstract predicate tree that filters compile
// into.
//
// QueryIR is the boundary between the criteria DSL (internal/filter) and
// query backends. A Context implements filter.QueryContext; compiling a
// filter.Builder against it yields a Select whose Filter is a tree of the
// sealed Predicate types below:
//
//	[filter DSL] → [Query IR] → [SQL backend]   (internal/querysql)
//	                          → Format           (tagged echo tree)
//	                          → Validate         (portability report)
//
// SOURCES AND ALIASES:
//
// The query root is aliased "t0". Every join gets the next alias ("t1",
// "t2", ...) in the order the filter first references it. FieldRef keeps
// both the alias (for backends) and the join name (for humans).
//
// SCHEMA:
//
// With a *schema.Schema the context checks every field and relation and
// returns *schema.LookupError for unknown names. With a nil schema it is
// permissive: fields map to columns of the same name, a join "owner" maps
// to table "owner" via owner_id = owner.id, and the discriminator column
// is "type".
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern so backends can switch
// exhaustively:
//
//	switch p := queryir.Deref(pred).(type) {
//	case queryir.Equals:
//	    ...
//	case queryir.And:
//	    ...
//	}
//
// PORTABLE FRAGMENT:
//
// Equality, IN, AND and inner joins are portable across backends. NULL
// checks, OR, NOT, type checks and outer joins work with SQL but are
// reported by Validate.
package queryir
