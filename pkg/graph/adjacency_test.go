package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacencySets(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(nil)
	require.NoError(t, err)
	b, err := g.AddNode(nil)
	require.NoError(t, err)
	e, err := g.AddEdge(a.ID(), b.ID(), nil)
	require.NoError(t, err)

	out, err := a.OutEdges()
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, out)

	in, err := b.InEdges()
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, in)

	// Direction matters.
	in, err = a.InEdges()
	require.NoError(t, err)
	assert.Empty(t, in)
	out, err = b.OutEdges()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParallelEdgeWeights(t *testing.T) {
	g := newTestGraph(t)

	p, err := g.AddNode(nil)
	require.NoError(t, err)
	c, err := g.AddNode(nil)
	require.NoError(t, err)

	e1, err := g.AddEdge(p.ID(), c.ID(), nil)
	require.NoError(t, err)
	e2, err := g.AddEdge(p.ID(), c.ID(), nil)
	require.NoError(t, err)

	children, err := p.Children()
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: c.ID(), Weight: 2}}, children)

	parents, err := c.Parents()
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: p.ID(), Weight: 2}}, parents)

	// Deleting one parallel edge returns the weight to its prior value.
	require.NoError(t, g.DelEdge(e2.ID()))
	children, err = p.Children()
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: c.ID(), Weight: 1}}, children)

	// Deleting the last one removes the entry entirely.
	require.NoError(t, g.DelEdge(e1.ID()))
	children, err = p.Children()
	require.NoError(t, err)
	assert.Empty(t, children)
	parents, err = c.Parents()
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestNeighborOrdering(t *testing.T) {
	g := newTestGraph(t)

	p, err := g.AddNode(nil)
	require.NoError(t, err)
	heavy, err := g.AddNode(nil)
	require.NoError(t, err)
	light1, err := g.AddNode(nil)
	require.NoError(t, err)
	light2, err := g.AddNode(nil)
	require.NoError(t, err)

	// Two parallel edges to heavy, one each to the light nodes.
	for _, childID := range []string{heavy.ID(), heavy.ID(), light1.ID(), light2.ID()} {
		_, err := g.AddEdge(p.ID(), childID, nil)
		require.NoError(t, err)
	}

	children, err := p.Children()
	require.NoError(t, err)
	require.Len(t, children, 3)

	// Weight ascending, ties broken by neighbor id.
	assert.Equal(t, []Neighbor{
		{ID: light1.ID(), Weight: 1},
		{ID: light2.ID(), Weight: 1},
		{ID: heavy.ID(), Weight: 2},
	}, children)
}

func TestSelfLoop(t *testing.T) {
	g := newTestGraph(t)

	n, err := g.AddNode(nil)
	require.NoError(t, err)
	e, err := g.AddEdge(n.ID(), n.ID(), nil)
	require.NoError(t, err)

	out, err := n.OutEdges()
	require.NoError(t, err)
	in, err := n.InEdges()
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, out)
	assert.Equal(t, []string{e.ID()}, in)

	children, err := n.Children()
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: n.ID(), Weight: 1}}, children)

	require.NoError(t, g.DelNode(n.ID()))
	count, err := g.EdgeCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMultipleChildren(t *testing.T) {
	g := newTestGraph(t)

	p, err := g.AddNode(nil)
	require.NoError(t, err)
	var childIDs []string
	for i := 0; i < 3; i++ {
		c, err := g.AddNode(nil)
		require.NoError(t, err)
		_, err = g.AddEdge(p.ID(), c.ID(), nil)
		require.NoError(t, err)
		childIDs = append(childIDs, c.ID())
	}

	children, err := p.Children()
	require.NoError(t, err)
	got := make([]string, len(children))
	for i, nb := range children {
		got[i] = nb.ID
		assert.Equal(t, int64(1), nb.Weight)
	}
	assert.ElementsMatch(t, childIDs, got)

	out, err := p.OutEdges()
	require.NoError(t, err)
	assert.Len(t, out, 3)
}
