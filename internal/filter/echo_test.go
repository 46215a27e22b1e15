package filter

import (
	"errors"
	"fmt"
	"strings"
)

// echoContext is a backend that renders every operation as a tagged string,
// e.g. AND(EQ(status,ACTIVE), NOT(ISNULL(ownerId))).
type echoContext struct {
	root *echoFrom
}

func newEchoContext() *echoContext {
	return &echoContext{root: &echoFrom{calls: &[]string{}}}
}

// withFields restricts the fields the root (and its joins) accept.
func (c *echoContext) withFields(fields ...string) *echoContext {
	c.root.known = map[string]bool{}
	for _, f := range fields {
		c.root.known[f] = true
	}
	return c
}

// joinCalls lists every Join call as "name:KIND" in call order.
func (c *echoContext) joinCalls() []string {
	return *c.root.calls
}

func (c *echoContext) CriteriaBuilder() CriteriaBuilder { return echoBuilder{} }
func (c *echoContext) Root() From                       { return c.root }

var errUnknownField = errors.New("unknown field")

type echoFrom struct {
	name  string
	known map[string]bool
	calls *[]string
}

func (f *echoFrom) Get(field string) (Path, error) {
	if f.known != nil && !f.known[field] {
		return nil, fmt.Errorf("%w: %s", errUnknownField, field)
	}
	if f.name == "" {
		return field, nil
	}
	return f.name + "." + field, nil
}

func (f *echoFrom) Join(name string, kind JoinKind) (From, error) {
	if f.known != nil && !f.known[name] {
		return nil, fmt.Errorf("%w: %s", errUnknownField, name)
	}
	*f.calls = append(*f.calls, name+":"+string(kind))
	return &echoFrom{name: name, known: f.known, calls: f.calls}, nil
}

func (f *echoFrom) String() string {
	if f.name == "" {
		return "root"
	}
	return f.name
}

type echoBuilder struct{}

func (echoBuilder) IsNull(p Path) Predicate    { return fmt.Sprintf("ISNULL(%v)", p) }
func (echoBuilder) IsNotNull(p Path) Predicate { return fmt.Sprintf("NOTNULL(%v)", p) }
func (echoBuilder) Equal(p Path, v any) Predicate {
	return fmt.Sprintf("EQ(%v,%v)", p, v)
}
func (echoBuilder) NotEqual(p Path, v any) Predicate {
	return fmt.Sprintf("NE(%v,%v)", p, v)
}
func (echoBuilder) In(p Path, values []any) Predicate {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("IN(%v,[%s])", p, strings.Join(parts, ","))
}
func (echoBuilder) TypeEqual(p Path, t EntityType) Predicate {
	return fmt.Sprintf("TYPE(%v,%s)", p, t)
}
func (echoBuilder) TypeNotEqual(p Path, t EntityType) Predicate {
	return fmt.Sprintf("NOTTYPE(%v,%s)", p, t)
}
func (echoBuilder) And(ps ...Predicate) Predicate { return echoGroup("AND", ps) }
func (echoBuilder) Or(ps ...Predicate) Predicate  { return echoGroup("OR", ps) }
func (echoBuilder) Not(p Predicate) Predicate     { return fmt.Sprintf("NOT(%v)", p) }

func echoGroup(tag string, ps []Predicate) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprint(p)
	}
	return tag + "(" + strings.Join(parts, ", ") + ")"
}
