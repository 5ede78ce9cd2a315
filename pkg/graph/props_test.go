package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyRoundTrip(t *testing.T) {
	g := newTestGraph(t)

	n, err := g.AddNode(nil)
	require.NoError(t, err)

	require.NoError(t, n.Set("name", "alice"))
	got, err := n.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	require.NoError(t, n.Remove("name"))
	_, err = n.Get("name")
	require.ErrorIs(t, err, ErrPropertyNotFound)
	var pnf *PropertyNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "name", pnf.Field)
}

func TestRemoveUnsetProperty(t *testing.T) {
	g := newTestGraph(t)

	n, err := g.AddNode(nil)
	require.NoError(t, err)
	assert.ErrorIs(t, n.Remove("never"), ErrPropertyNotFound)
}

func TestIndexFollowsPropertyChanges(t *testing.T) {
	g := newTestGraph(t)

	n, err := g.AddNode(map[string]string{"color": "red"})
	require.NoError(t, err)

	nodes, err := g.GetNodes(Criteria{"color": "red"})
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID()}, nodeIDs(nodes))

	// Changing the value atomically moves the composite entry.
	require.NoError(t, n.Set("color", "blue"))

	nodes, err = g.GetNodes(Criteria{"color": "red"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
	nodes, err = g.GetNodes(Criteria{"color": "blue"})
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID()}, nodeIDs(nodes))

	// Removing drops both index families.
	require.NoError(t, n.Remove("color"))
	nodes, err = g.GetNodes(Criteria{"color": "blue"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
	nodes, err = g.FindNodes(Criteria{"color": ".*"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestExactMatchIntersection(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(map[string]string{"type": "person", "city": "oslo"})
	require.NoError(t, err)
	_, err = g.AddNode(map[string]string{"type": "person", "city": "bergen"})
	require.NoError(t, err)
	_, err = g.AddNode(map[string]string{"type": "robot", "city": "oslo"})
	require.NoError(t, err)

	nodes, err := g.GetNodes(Criteria{"type": "person", "city": "oslo"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID()}, nodeIDs(nodes))

	nodes, err = g.GetNodes(Criteria{"type": "person", "city": "nowhere"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestExactMatchIsByteExact(t *testing.T) {
	g := newTestGraph(t)

	_, err := g.AddNode(map[string]string{"name": "Alice"})
	require.NoError(t, err)

	nodes, err := g.GetNodes(Criteria{"name": "alice"})
	require.NoError(t, err)
	assert.Empty(t, nodes, "no case folding or normalization")

	nodes, err = g.GetNodes(Criteria{"name": "Alice "})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestEmptyCriteriaReturnsAll(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(map[string]string{"name": "a"})
	require.NoError(t, err)
	b, err := g.AddNode(nil)
	require.NoError(t, err)

	nodes, err := g.GetNodes(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID(), b.ID()}, nodeIDs(nodes))

	nodes, err = g.FindNodes(Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID(), b.ID()}, nodeIDs(nodes))
}

func TestRegexMatch(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(map[string]string{"name": "alice", "city": "oslo"})
	require.NoError(t, err)
	ab, err := g.AddNode(map[string]string{"name": "albert", "city": "bergen"})
	require.NoError(t, err)
	_, err = g.AddNode(map[string]string{"name": "bob", "city": "oslo"})
	require.NoError(t, err)

	nodes, err := g.FindNodes(Criteria{"name": "^al"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID(), ab.ID()}, nodeIDs(nodes))

	nodes, err = g.FindNodes(Criteria{"name": "^al", "city": "oslo"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID()}, nodeIDs(nodes))
}

func TestRegexMatchBadPattern(t *testing.T) {
	g := newTestGraph(t)

	_, err := g.FindNodes(Criteria{"name": "("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling pattern")
}

func TestRegexMatchSkipsUnsetFields(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(map[string]string{"name": "alice"})
	require.NoError(t, err)
	_, err = g.AddNode(map[string]string{"title": "untitled"})
	require.NoError(t, err)

	nodes, err := g.FindNodes(Criteria{"name": ".*"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID()}, nodeIDs(nodes))
}

func TestFieldNamesDoNotBleedAcrossIndexes(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(map[string]string{"a": "x"})
	require.NoError(t, err)
	_, err = g.AddNode(map[string]string{"ab": "x"})
	require.NoError(t, err)

	nodes, err := g.FindNodes(Criteria{"a": ".*"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID()}, nodeIDs(nodes), "forward index scan for field a must not include field ab")

	nodes, err = g.GetNodes(Criteria{"a": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID()}, nodeIDs(nodes))
}

func TestValuesMayContainSeparatorByte(t *testing.T) {
	g := newTestGraph(t)

	long, err := g.AddNode(map[string]string{"f": "va\x00lue"})
	require.NoError(t, err)
	short, err := g.AddNode(map[string]string{"f": "va"})
	require.NoError(t, err)

	// "va" is a byte-prefix of "va\x00lue"; the index sets must stay disjoint.
	nodes, err := g.GetNodes(Criteria{"f": "va"})
	require.NoError(t, err)
	assert.Equal(t, []string{short.ID()}, nodeIDs(nodes))

	nodes, err = g.GetNodes(Criteria{"f": "va\x00lue"})
	require.NoError(t, err)
	assert.Equal(t, []string{long.ID()}, nodeIDs(nodes))

	got, err := long.Get("f")
	require.NoError(t, err)
	assert.Equal(t, "va\x00lue", got)

	// Removing one value must not disturb the other's entries.
	require.NoError(t, long.Remove("f"))
	nodes, err = g.GetNodes(Criteria{"f": "va"})
	require.NoError(t, err)
	assert.Equal(t, []string{short.ID()}, nodeIDs(nodes))
}

func TestFieldNamesMayContainSeparatorByte(t *testing.T) {
	g := newTestGraph(t)

	plain, err := g.AddNode(map[string]string{"a": "x"})
	require.NoError(t, err)
	odd, err := g.AddNode(map[string]string{"a\x00b": "x"})
	require.NoError(t, err)

	nodes, err := g.FindNodes(Criteria{"a": ".*"})
	require.NoError(t, err)
	assert.Equal(t, []string{plain.ID()}, nodeIDs(nodes))

	nodes, err = g.GetNodes(Criteria{"a\x00b": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{odd.ID()}, nodeIDs(nodes))

	props, err := odd.Properties()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a\x00b": "x"}, props)
}

func TestProperties(t *testing.T) {
	g := newTestGraph(t)

	props := map[string]string{"name": "alice", "type": "person", "city": "oslo"}
	n, err := g.AddNode(props)
	require.NoError(t, err)

	got, err := n.Properties()
	require.NoError(t, err)
	assert.Equal(t, props, got)

	empty, err := g.AddNode(nil)
	require.NoError(t, err)
	got, err = empty.Properties()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEdgeProperties(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(nil)
	require.NoError(t, err)
	b, err := g.AddNode(nil)
	require.NoError(t, err)
	e, err := g.AddEdge(a.ID(), b.ID(), map[string]string{"rel": "friends"})
	require.NoError(t, err)

	got, err := e.Get("rel")
	require.NoError(t, err)
	assert.Equal(t, "friends", got)

	edges, err := g.GetEdges(Criteria{"rel": "friends"})
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, edgeIDs(edges))

	require.NoError(t, e.Set("rel", "enemies"))
	edges, err = g.FindEdges(Criteria{"rel": "^enem"})
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, edgeIDs(edges))

	// Node and edge index families are separate even for equal field names.
	require.NoError(t, a.Set("rel", "enemies"))
	edges, err = g.GetEdges(Criteria{"rel": "enemies"})
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, edgeIDs(edges))
}
