package queryir

import "github.com/roach88/critq/internal/filter"

// Query represents an abstract query in the QueryIR.
// Sealed: only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition in the QueryIR.
// Sealed: only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// FieldRef points at a column of one query source.
type FieldRef struct {
	Source string // source alias ("t0" for the root)
	Join   string // join name, empty for the root
	Field  string // field name as written in the filter
	Column string // storage column
}

// Select reads rows of one entity, optionally joined to related entities.
//
// Semantics:
//
//	SELECT <alias>.* FROM <table> AS <alias> <joins> WHERE <filter>
//	ORDER BY <alias>.<key>
type Select struct {
	Entity string
	Table  string
	Alias  string
	Key    string // primary key column; backends order by it
	Joins  []Join
	Filter Predicate // nil = no filter
}

func (Select) queryNode() {}

// Join attaches a related entity reached through a relation of Parent.
//
//	<kind> JOIN <table> AS <alias> ON <alias>.<foreign_key> = <parent>.<local_key>
type Join struct {
	Parent     string // alias of the source the relation belongs to
	Relation   string // relation name as written in the filter
	Kind       filter.JoinKind
	Entity     string
	Table      string
	Alias      string
	LocalKey   string // column on Parent
	ForeignKey string // column on the joined table
}

// IsNull: <ref> IS NULL
type IsNull struct {
	Ref FieldRef
}

func (IsNull) predicateNode() {}

// IsNotNull: <ref> IS NOT NULL
type IsNotNull struct {
	Ref FieldRef
}

func (IsNotNull) predicateNode() {}

// Equals: <ref> = <value>
type Equals struct {
	Ref   FieldRef
	Value any
}

func (Equals) predicateNode() {}

// NotEquals: <ref> <> <value>
type NotEquals struct {
	Ref   FieldRef
	Value any
}

func (NotEquals) predicateNode() {}

// In: <ref> IN (<values>). Empty Values never match.
type In struct {
	Ref    FieldRef
	Values []any
}

func (In) predicateNode() {}

// TypeEquals compares the discriminator column referenced by Ref with Type.
type TypeEquals struct {
	Ref  FieldRef
	Type filter.EntityType
}

func (TypeEquals) predicateNode() {}

// TypeNotEquals is the negation of TypeEquals.
type TypeNotEquals struct {
	Ref  FieldRef
	Type filter.EntityType
}

func (TypeNotEquals) predicateNode() {}

// And is a conjunction. Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is a disjunction. Empty Predicates means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Deref returns the value form of pointer predicates so callers can switch
// on value types only. Other values are returned unchanged.
func Deref(p Predicate) Predicate {
	switch v := p.(type) {
	case *IsNull:
		return *v
	case *IsNotNull:
		return *v
	case *Equals:
		return *v
	case *NotEquals:
		return *v
	case *In:
		return *v
	case *TypeEquals:
		return *v
	case *TypeNotEquals:
		return *v
	case *And:
		return *v
	case *Or:
		return *v
	case *Not:
		return *v
	default:
		return p
	}
}
