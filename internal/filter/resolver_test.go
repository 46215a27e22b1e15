package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRootField(t *testing.T) {
	r := NewPathResolver(newEchoContext().Root(), nil)

	p, err := r.Resolve("", "status")
	require.NoError(t, err)
	assert.Equal(t, "status", p)

	p, err = r.Resolve("  ", "status")
	require.NoError(t, err)
	assert.Equal(t, "status", p)
}

func TestResolveBlankFieldReturnsSource(t *testing.T) {
	ctx := newEchoContext()
	r := NewPathResolver(ctx.Root(), nil)

	p, err := r.Resolve("", "")
	require.NoError(t, err)
	assert.Same(t, ctx.root, p)

	p, err = r.Resolve("owner", "")
	require.NoError(t, err)
	from, ok := p.(*echoFrom)
	require.True(t, ok)
	assert.Equal(t, "owner", from.name)
}

func TestResolveJoinRegistersDefaultKind(t *testing.T) {
	ctx := newEchoContext()
	joins := NewJoinRegistry()
	r := NewPathResolver(ctx.Root(), joins)

	p, err := r.Resolve("owner", "email")
	require.NoError(t, err)
	assert.Equal(t, "owner.email", p)

	kind, ok := joins.Kind("owner")
	require.True(t, ok)
	assert.Equal(t, JoinInner, kind)
	assert.True(t, joins.Used("owner"))
}

func TestResolveCachesJoinsPerPass(t *testing.T) {
	ctx := newEchoContext()
	c := And(
		On("owner").Equals("email", "x"),
		On("owner").IsNotNull("name"),
		On("team").IsNull("id"),
		On("owner").IsType("Admin"),
	)

	_, err := Compile(c, ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner:INNER", "team:INNER"}, ctx.joinCalls())
}

func TestFirstUseWins(t *testing.T) {
	ctx := newEchoContext()
	b := NewBuilder(And(
		countingCriterion{"owner", "id", JoinLeft},
		countingCriterion{"owner", "name", JoinRight},
	))

	_, err := b.Compile(ctx)
	require.NoError(t, err)

	kind, _ := b.Joins().Kind("owner")
	assert.Equal(t, JoinLeft, kind)
	assert.Equal(t, []string{"owner:LEFT"}, ctx.joinCalls())
}

func TestDefinedKindBeatsResolutionHint(t *testing.T) {
	ctx := newEchoContext()
	b := NewBuilder(countingCriterion{"owner", "id", JoinLeft}).DefineJoin("owner", JoinRight)

	_, err := b.Compile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner:RIGHT"}, ctx.joinCalls())
}

func TestJoinRegistryDefine(t *testing.T) {
	joins := NewJoinRegistry()

	assert.True(t, joins.Define("owner", JoinLeft))
	assert.True(t, joins.Define("owner", JoinRight))
	kind, _ := joins.Kind("owner")
	assert.Equal(t, JoinRight, kind)

	assert.Equal(t, JoinRight, joins.Acquire("owner", JoinInner))
	assert.False(t, joins.Define("owner", JoinLeft))
	kind, _ = joins.Kind("owner")
	assert.Equal(t, JoinRight, kind)

	joins.Define("account", JoinLeft)
	assert.Equal(t, []string{"account", "owner"}, joins.Names())
}

func TestResolveErrorsPropagateUnchanged(t *testing.T) {
	ctx := newEchoContext().withFields("owner", "email")

	_, err := Compile(IsNull("missing"), ctx)
	assert.True(t, errors.Is(err, errUnknownField))
	assert.Equal(t, "unknown field: missing", err.Error())

	_, err = Compile(On("team").IsNull("email"), ctx)
	assert.True(t, errors.Is(err, errUnknownField))
	assert.Equal(t, "unknown field: team", err.Error())
}
