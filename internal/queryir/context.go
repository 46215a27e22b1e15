package queryir

import (
	"fmt"

	"github.com/roach88/critq/internal/filter"
	"github.com/roach88/critq/internal/schema"
)

// RootAlias is the alias of the query root.
const RootAlias = "t0"

// Context implements filter.QueryContext for one entity.
//
// A Context records the joins a compile pass creates and is used for a
// single compile; create a new one per query.
type Context struct {
	schema *schema.Schema
	sel    Select
	root   *Source
	err    error
}

// NewContext creates a context selecting from entity. A nil schema makes
// the context permissive (see package docs).
func NewContext(s *schema.Schema, entity string) (*Context, error) {
	c := &Context{schema: s}
	src := &Source{ctx: c, alias: RootAlias}

	if s == nil {
		c.sel = Select{Entity: entity, Table: entity, Alias: RootAlias, Key: "id"}
	} else {
		e, err := s.Entity(entity)
		if err != nil {
			return nil, err
		}
		c.sel = Select{Entity: e.Name, Table: e.Table, Alias: RootAlias, Key: e.Fields[e.PrimaryKey].Column}
		src.entity = e
	}

	c.root = src
	return c, nil
}

// CriteriaBuilder implements filter.QueryContext.
func (c *Context) CriteriaBuilder() filter.CriteriaBuilder {
	return builder{ctx: c}
}

// Root implements filter.QueryContext.
func (c *Context) Root() filter.From {
	return c.root
}

// Select wraps a predicate produced by this context's builder into a
// Select carrying the joins created so far.
func (c *Context) Select(p filter.Predicate) (*Select, error) {
	if c.err != nil {
		return nil, c.err
	}
	pred, ok := p.(Predicate)
	if p != nil && !ok {
		return nil, fmt.Errorf("predicate %T was not built by queryir", p)
	}

	sel := c.sel
	sel.Joins = append([]Join(nil), c.sel.Joins...)
	sel.Filter = pred
	return &sel, nil
}

// fail records the first builder error; Select reports it.
func (c *Context) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

// Build compiles b against a new context for entity.
func Build(s *schema.Schema, entity string, b *filter.Builder) (*Select, error) {
	ctx, err := NewContext(s, entity)
	if err != nil {
		return nil, err
	}
	p, err := b.Compile(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.Select(p)
}

// Source is the query root or a joined entity. It implements filter.From.
type Source struct {
	ctx    *Context
	alias  string
	join   string         // dotted join path, empty for the root
	entity *schema.Entity // nil in permissive mode
}

// Get implements filter.From.
func (s *Source) Get(field string) (filter.Path, error) {
	column := field
	if s.entity != nil {
		f, err := s.entity.Field(field)
		if err != nil {
			return nil, err
		}
		column = f.Column
	}
	return FieldRef{Source: s.alias, Join: s.join, Field: field, Column: column}, nil
}

// Join implements filter.From.
func (s *Source) Join(name string, kind filter.JoinKind) (filter.From, error) {
	j := Join{
		Parent:   s.alias,
		Relation: name,
		Kind:     kind,
		Alias:    fmt.Sprintf("t%d", len(s.ctx.sel.Joins)+1),
	}
	next := &Source{ctx: s.ctx, alias: j.Alias, join: name}
	if s.join != "" {
		next.join = s.join + "." + name
	}

	if s.entity == nil {
		j.Entity, j.Table = name, name
		j.LocalKey, j.ForeignKey = name+"_id", "id"
	} else {
		rel, err := s.entity.Relation(name)
		if err != nil {
			return nil, err
		}
		target, err := s.ctx.schema.Entity(rel.Target)
		if err != nil {
			return nil, err
		}
		j.Entity, j.Table = target.Name, target.Table
		j.LocalKey = s.entity.Fields[rel.LocalKey].Column
		j.ForeignKey = target.Fields[rel.ForeignKey].Column
		next.entity = target
	}

	s.ctx.sel.Joins = append(s.ctx.sel.Joins, j)
	return next, nil
}

// key references the primary key, standing in for the source itself.
func (s *Source) key() FieldRef {
	column := "id"
	if s.entity != nil {
		column = s.entity.Fields[s.entity.PrimaryKey].Column
	}
	return FieldRef{Source: s.alias, Join: s.join, Column: column}
}

// discriminator references the column holding the entity type.
func (s *Source) discriminator() (FieldRef, bool) {
	column := "type"
	if s.entity != nil {
		if s.entity.Discriminator == "" {
			return FieldRef{}, false
		}
		column = s.entity.Fields[s.entity.Discriminator].Column
	}
	return FieldRef{Source: s.alias, Join: s.join, Column: column}, true
}

// builder implements filter.CriteriaBuilder producing queryir predicates.
type builder struct {
	ctx *Context
}

func (b builder) ref(p filter.Path) FieldRef {
	switch v := p.(type) {
	case FieldRef:
		return v
	case *Source:
		return v.key()
	default:
		b.ctx.fail("path %T was not resolved by queryir", p)
		return FieldRef{}
	}
}

func (b builder) typeRef(p filter.Path) FieldRef {
	src, ok := p.(*Source)
	if !ok {
		return b.ref(p)
	}
	ref, ok := src.discriminator()
	if !ok {
		b.ctx.fail("entity %s has no discriminator for type checks", src.entity.Name)
	}
	return ref
}

func (b builder) preds(ps []filter.Predicate) []Predicate {
	out := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		pred, ok := p.(Predicate)
		if !ok {
			b.ctx.fail("predicate %T was not built by queryir", p)
			continue
		}
		out = append(out, pred)
	}
	return out
}

func (b builder) IsNull(p filter.Path) filter.Predicate    { return IsNull{Ref: b.ref(p)} }
func (b builder) IsNotNull(p filter.Path) filter.Predicate { return IsNotNull{Ref: b.ref(p)} }

func (b builder) Equal(p filter.Path, value any) filter.Predicate {
	return Equals{Ref: b.ref(p), Value: value}
}

func (b builder) NotEqual(p filter.Path, value any) filter.Predicate {
	return NotEquals{Ref: b.ref(p), Value: value}
}

func (b builder) In(p filter.Path, values []any) filter.Predicate {
	return In{Ref: b.ref(p), Values: append([]any(nil), values...)}
}

func (b builder) TypeEqual(p filter.Path, t filter.EntityType) filter.Predicate {
	return TypeEquals{Ref: b.typeRef(p), Type: t}
}

func (b builder) TypeNotEqual(p filter.Path, t filter.EntityType) filter.Predicate {
	return TypeNotEquals{Ref: b.typeRef(p), Type: t}
}

func (b builder) And(ps ...filter.Predicate) filter.Predicate {
	return And{Predicates: b.preds(ps)}
}

func (b builder) Or(ps ...filter.Predicate) filter.Predicate {
	return Or{Predicates: b.preds(ps)}
}

func (b builder) Not(p filter.Predicate) filter.Predicate {
	pred, ok := p.(Predicate)
	if !ok {
		b.ctx.fail("predicate %T was not built by queryir", p)
	}
	return Not{Predicate: pred}
}
