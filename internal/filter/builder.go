package filter

// Builder accumulates a filter tree and the join kinds used to compile it.
//
// Builder is not safe for concurrent use.
type Builder struct {
	root  Criterion
	joins *JoinRegistry
}

// NewBuilder wraps c. A nil c starts an empty builder; the first And or Or
// call then sets the root.
func NewBuilder(c Criterion) *Builder {
	return &Builder{
		root:  c,
		joins: NewJoinRegistry(),
	}
}

// Root returns the current root criterion.
func (b *Builder) Root() Criterion {
	return b.root
}

// Joins returns the builder's join registry.
func (b *Builder) Joins() *JoinRegistry {
	return b.joins
}

// And conjoins criteria with the current tree.
//
// When the root is already an AND group the criteria join that group;
// otherwise the root becomes the first child of a new AND group. The
// existing root node is never modified.
func (b *Builder) And(criteria ...Criterion) *Builder {
	b.root = compose(b.root, OpAnd, criteria)
	return b
}

// Or disjoins criteria with the current tree. See And.
func (b *Builder) Or(criteria ...Criterion) *Builder {
	b.root = compose(b.root, OpOr, criteria)
	return b
}

// DefineJoin declares the kind of a named join. It has no effect once a
// compile pass has resolved that join.
func (b *Builder) DefineJoin(name string, kind JoinKind) *Builder {
	b.joins.Define(name, kind)
	return b
}

// Join declares name with DefaultJoinKind (INNER). Like DefineJoin it has
// no effect once a compile pass has resolved that join.
func (b *Builder) Join(name string) *Builder {
	return b.DefineJoin(name, DefaultJoinKind)
}

// Compile compiles the tree against ctx.
func (b *Builder) Compile(ctx QueryContext) (Predicate, error) {
	if b.root == nil {
		return nil, &CompileError{Code: ErrCodeNilCriterion, Kind: "builder", Message: "empty filter"}
	}
	return b.root.Compile(ctx.CriteriaBuilder(), NewPathResolver(ctx.Root(), b.joins))
}

// Compile is NewBuilder(c).Compile(ctx).
func Compile(c Criterion, ctx QueryContext) (Predicate, error) {
	return NewBuilder(c).Compile(ctx)
}

func compose(root Criterion, op BoolOperator, criteria []Criterion) Criterion {
	if root == nil {
		return group(op, criteria)
	}
	if bc, ok := root.(*BooleanCriterion); ok && bc.Operator == op {
		children := make([]Criterion, 0, len(bc.Children)+len(criteria))
		children = append(children, bc.Children...)
		children = append(children, criteria...)
		return &BooleanCriterion{Operator: op, Children: children}
	}
	children := make([]Criterion, 0, len(criteria)+1)
	children = append(children, root)
	children = append(children, criteria...)
	return &BooleanCriterion{Operator: op, Children: children}
}
