package schema

import (
	"errors"
	"fmt"
	"sort"
)

// FieldType is the storage type of a field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeBool   FieldType = "bool"
)

// Schema is a set of entities keyed by name.
type Schema struct {
	Entities map[string]*Entity
}

// Entity is a queryable table.
type Entity struct {
	Name          string
	Table         string
	PrimaryKey    string // defaults to "id"
	Discriminator string // column holding the entity type; empty if untyped
	Fields        map[string]Field
	Relations     map[string]Relation
}

// Field maps a filter field name to a column.
type Field struct {
	Name     string
	Column   string
	Type     FieldType
	Nullable bool
}

// Relation is a many-to-one link: LocalKey on this entity references
// ForeignKey (usually the primary key) on Target.
type Relation struct {
	Name       string
	Target     string
	LocalKey   string
	ForeignKey string
}

// LookupError reports a name that does not exist in the schema.
type LookupError struct {
	Kind   string // "entity", "field", "relation"
	Entity string // owning entity, empty for entity lookups
	Name   string
}

func (e *LookupError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("unknown %s %q on entity %s", e.Kind, e.Name, e.Entity)
}

// IsNotFound reports whether err is a *LookupError.
func IsNotFound(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// Entity returns the named entity.
func (s *Schema) Entity(name string) (*Entity, error) {
	if e, ok := s.Entities[name]; ok {
		return e, nil
	}
	return nil, &LookupError{Kind: "entity", Name: name}
}

// Names returns the entity names in sorted order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Entities))
	for name := range s.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field returns the named field.
func (e *Entity) Field(name string) (Field, error) {
	if f, ok := e.Fields[name]; ok {
		return f, nil
	}
	return Field{}, &LookupError{Kind: "field", Entity: e.Name, Name: name}
}

// Relation returns the named relation.
func (e *Entity) Relation(name string) (Relation, error) {
	if r, ok := e.Relations[name]; ok {
		return r, nil
	}
	return Relation{}, &LookupError{Kind: "relation", Entity: e.Name, Name: name}
}

// FieldNames returns field names in sorted order.
func (e *Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
