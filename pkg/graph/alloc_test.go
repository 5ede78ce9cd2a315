package graph

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorCountersArePerKind(t *testing.T) {
	g := newTestGraph(t)

	a, err := g.AddNode(nil)
	require.NoError(t, err)
	b, err := g.AddNode(nil)
	require.NoError(t, err)

	// The edge counter starts at 0 independently of the node counter.
	e, err := g.AddEdge(a.ID(), b.ID(), nil)
	require.NoError(t, err)
	assert.Equal(t, "0", e.ID())
	assert.Equal(t, "1", b.ID())
}

func TestIDMonotonicity(t *testing.T) {
	g := newTestGraph(t)

	prev := int64(-1)
	for i := 0; i < 20; i++ {
		n, err := g.AddNode(nil)
		require.NoError(t, err)

		id, err := strconv.ParseInt(n.ID(), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, id, prev, "every allocated id is strictly greater than all before it")
		prev = id

		// Interleave deletes; they must not disturb the sequence.
		if i%3 == 0 {
			require.NoError(t, g.DelNode(n.ID()))
		}
	}
}
