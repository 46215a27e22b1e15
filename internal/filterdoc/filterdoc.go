// Package filterdoc reads filters written as YAML documents.
//
//	entity: User
//	joins:
//	  owner: LEFT
//	filter:
//	  and:
//	    - {op: EQUALS, field: status, value: ACTIVE}
//	    - {op: IN, field: region, values: [EU, US]}
//	    - not: {op: NULL, field: ownerId}
//	    - {op: TYPE, join: owner, type: ORG}
//
// A node is exactly one of and, or, not or a leaf carrying op. Operation
// codes are the filter.Operation codes, case-insensitive.
package filterdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/critq/internal/filter"
)

// Document is a parsed filter file.
type Document struct {
	Entity string            `yaml:"entity"`
	Joins  map[string]string `yaml:"joins,omitempty"`
	Filter *Node             `yaml:"filter"`
}

// Node is one filter tree node.
type Node struct {
	And    []*Node `yaml:"and,omitempty"`
	Or     []*Node `yaml:"or,omitempty"`
	Not    *Node   `yaml:"not,omitempty"`
	Op     string  `yaml:"op,omitempty"`
	Join   string  `yaml:"join,omitempty"`
	Field  string  `yaml:"field,omitempty"`
	Value  any     `yaml:"value,omitempty"`
	Values []any   `yaml:"values,omitempty"`
	Type   string  `yaml:"type,omitempty"`

	keys map[string]bool
	line int
}

// Error reports a problem with a document, with the YAML line when known.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("filterdoc: line %d: %s", e.Line, e.Message)
	}
	return "filterdoc: " + e.Message
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}

var nodeKeys = map[string]bool{
	"and": true, "or": true, "not": true,
	"op": true, "join": true, "field": true, "value": true, "values": true, "type": true,
}

// UnmarshalYAML implements yaml.Unmarshaler. It records which keys were
// present so that empty groups and explicit null values survive decoding.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errorf(value.Line, "filter node must be a mapping")
	}

	type plain Node
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*n = Node(p)
	n.line = value.Line
	n.keys = make(map[string]bool, len(value.Content)/2)

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		if !nodeKeys[key.Value] {
			return errorf(key.Line, "unknown key %q", key.Value)
		}
		n.keys[key.Value] = true
	}

	var kinds []string
	for _, k := range []string{"and", "or", "not", "op"} {
		if n.keys[k] {
			kinds = append(kinds, k)
		}
	}
	switch len(kinds) {
	case 1:
	case 0:
		return errorf(n.line, "node needs one of and, or, not or op")
	default:
		return errorf(n.line, "node mixes %v; use exactly one", kinds)
	}
	if kinds[0] != "op" {
		for _, k := range append([]string{"join"}, leafFields...) {
			if n.keys[k] {
				return errorf(n.line, "%q is only valid on leaf nodes", k)
			}
		}
	}
	return nil
}

// Decode reads one document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errorf(0, "empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile reads the document at path.
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	doc, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *Document) validate() error {
	if d.Entity == "" {
		return errorf(0, "entity is required")
	}
	if d.Filter == nil {
		return errorf(0, "filter is required")
	}
	for name, kind := range d.Joins {
		if _, err := filter.ParseJoinKind(kind); err != nil {
			return errorf(0, "join %s: %v", name, err)
		}
	}
	_, err := d.Filter.Criterion()
	return err
}

// JoinNames returns the declared join names in sorted order.
func (d *Document) JoinNames() []string {
	names := make([]string, 0, len(d.Joins))
	for name := range d.Joins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builder returns a new builder over the document's filter with the
// declared join kinds defined.
func (d *Document) Builder() (*filter.Builder, error) {
	c, err := d.Filter.Criterion()
	if err != nil {
		return nil, err
	}
	b := filter.NewBuilder(c)
	for _, name := range d.JoinNames() {
		kind, err := filter.ParseJoinKind(d.Joins[name])
		if err != nil {
			return nil, errorf(0, "join %s: %v", name, err)
		}
		b.DefineJoin(name, kind)
	}
	return b, nil
}

// Criterion converts the node and its children to a filter.Criterion.
func (n *Node) Criterion() (filter.Criterion, error) {
	if n == nil {
		return nil, errorf(0, "missing filter node")
	}

	switch {
	case n.keys["and"]:
		children, err := criteria(n.And)
		if err != nil {
			return nil, err
		}
		return filter.And(children...), nil
	case n.keys["or"]:
		children, err := criteria(n.Or)
		if err != nil {
			return nil, err
		}
		return filter.Or(children...), nil
	case n.keys["not"]:
		inner, err := n.Not.Criterion()
		if err != nil {
			return nil, err
		}
		return filter.Not(inner), nil
	}
	return n.leaf()
}

func criteria(nodes []*Node) ([]filter.Criterion, error) {
	out := make([]filter.Criterion, 0, len(nodes))
	for _, node := range nodes {
		c, err := node.Criterion()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (n *Node) leaf() (filter.Criterion, error) {
	op, err := filter.ParseOperation(n.Op)
	if err != nil {
		return nil, errorf(n.line, "%v", err)
	}
	if err := n.require(op); err != nil {
		return nil, err
	}
	scope := filter.On(n.Join)

	switch op {
	case filter.OpNull:
		return scope.IsNull(n.Field), nil
	case filter.OpNotNull:
		return scope.IsNotNull(n.Field), nil
	case filter.OpEquals:
		return scope.Equals(n.Field, n.Value), nil
	case filter.OpNotEquals:
		return scope.NotEquals(n.Field, n.Value), nil
	case filter.OpIn:
		return scope.In(n.Field, n.Values...), nil
	case filter.OpType:
		return scope.IsType(filter.EntityType(n.Type)), nil
	default:
		return scope.IsNotType(filter.EntityType(n.Type)), nil
	}
}

var leafFields = []string{"field", "value", "values", "type"}

var leafKeys = map[filter.Operation][]string{
	filter.OpNull:      {"field"},
	filter.OpNotNull:   {"field"},
	filter.OpEquals:    {"field", "value"},
	filter.OpNotEquals: {"field", "value"},
	filter.OpIn:        {"field", "values"},
	filter.OpType:      {"type"},
	filter.OpNotType:   {"type"},
}

// require checks that the leaf carries exactly the keys op needs, besides
// op and join.
func (n *Node) require(op filter.Operation) error {
	needed := leafKeys[op]
	for _, k := range needed {
		if !n.keys[k] {
			return errorf(n.line, "%s needs %q", op, k)
		}
	}
	for _, k := range leafFields {
		if n.keys[k] && !slices.Contains(needed, k) {
			return errorf(n.line, "%q is not valid for %s", k, op)
		}
	}
	return nil
}
