package filter

import (
	"sort"
	"strings"
)

// JoinRegistry maps join names to join kinds for one Builder.
//
// A name is "used" once a PathResolver has resolved it. From then on its
// kind is fixed: later Define calls are ignored.
type JoinRegistry struct {
	kinds map[string]JoinKind
	used  map[string]bool
}

// NewJoinRegistry creates an empty registry.
func NewJoinRegistry() *JoinRegistry {
	return &JoinRegistry{
		kinds: make(map[string]JoinKind),
		used:  make(map[string]bool),
	}
}

// Define declares the kind of a join. It reports false, leaving the
// registry unchanged, when the name was already used by a resolution.
func (r *JoinRegistry) Define(name string, kind JoinKind) bool {
	if r.used[name] {
		return false
	}
	r.kinds[name] = kind
	return true
}

// Acquire returns the kind for name, registering fallback if the name has
// no kind yet, and marks the name used.
func (r *JoinRegistry) Acquire(name string, fallback JoinKind) JoinKind {
	kind, ok := r.kinds[name]
	if !ok {
		kind = fallback
		r.kinds[name] = kind
	}
	r.used[name] = true
	return kind
}

// Kind returns the registered kind for name.
func (r *JoinRegistry) Kind(name string) (JoinKind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

// Used reports whether a resolution has fixed the kind of name.
func (r *JoinRegistry) Used(name string) bool {
	return r.used[name]
}

// Names returns the registered join names in sorted order.
func (r *JoinRegistry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PathResolver turns (join, field) references into backend paths against
// one query root. A resolver lives for a single compile pass; each join is
// created on the root at most once per pass.
type PathResolver struct {
	root  From
	joins *JoinRegistry
	froms map[string]From
}

// NewPathResolver creates a resolver over root. A nil registry gets a
// private one.
func NewPathResolver(root From, joins *JoinRegistry) *PathResolver {
	if joins == nil {
		joins = NewJoinRegistry()
	}
	return &PathResolver{
		root:  root,
		joins: joins,
		froms: make(map[string]From),
	}
}

// Resolve returns the path for field, reached through join when join is
// not blank. A blank field yields the source itself; only type criteria
// resolve that way.
func (r *PathResolver) Resolve(join, field string) (Path, error) {
	return r.ResolveAs(join, field, DefaultJoinKind)
}

// ResolveAs is Resolve with an explicit kind for a join that has not been
// registered yet. Registered kinds always win.
func (r *PathResolver) ResolveAs(join, field string, kind JoinKind) (Path, error) {
	src, err := r.source(join, kind)
	if err != nil {
		return nil, err
	}
	if isBlank(field) {
		return src, nil
	}
	return src.Get(field)
}

func (r *PathResolver) source(join string, kind JoinKind) (From, error) {
	if isBlank(join) {
		return r.root, nil
	}
	if from, ok := r.froms[join]; ok {
		return from, nil
	}
	from, err := r.root.Join(join, r.joins.Acquire(join, kind))
	if err != nil {
		return nil, err
	}
	r.froms[join] = from
	return from, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
