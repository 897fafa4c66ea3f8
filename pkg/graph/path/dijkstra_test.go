package path

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floatplan/floatplan/pkg/graph"
	"github.com/floatplan/floatplan/pkg/river"
)

func arc(to river.NodeID, lengthM float64) graph.Arc {
	return graph.Arc{To: to, Edge: river.Edge{ReachID: int64(to), LengthM: lengthM}}
}

func TestShortestPathChain(t *testing.T) {
	g := graph.NewGraph()
	g.AddArc(1, arc(2, 1000))
	g.AddArc(2, arc(3, 2000))

	nodes, arcs, dist, err := NewDijkstra(g).ShortestPath(1, 3)
	require.NoError(t, err)
	require.Equal(t, []river.NodeID{1, 2, 3}, nodes)
	require.Len(t, arcs, 2)
	require.Equal(t, 3000.0, dist)
}

func TestShortestPathPicksCheaperBranch(t *testing.T) {
	g := graph.NewGraph()
	g.AddArc(1, arc(2, 100))
	g.AddArc(1, arc(3, 500))
	g.AddArc(2, arc(3, 100))
	g.AddArc(3, arc(4, 100))

	nodes, _, dist, err := NewDijkstra(g).ShortestPath(1, 4)
	require.NoError(t, err)
	require.Equal(t, []river.NodeID{1, 2, 3, 4}, nodes)
	require.Equal(t, 300.0, dist)
}

func TestShortestPathParallelArcs(t *testing.T) {
	// original edge and a shorter virtual split between the same nodes:
	// the arc list must identify which one was traversed
	g := graph.NewGraph()
	g.AddArc(1, graph.Arc{To: 2, Edge: river.Edge{ReachID: 7, LengthM: 1000}})
	g.AddArc(1, graph.Arc{To: 2, Edge: river.Edge{ReachID: 7, LengthM: 400}, Virtual: true, OriginalID: 7, FracStart: 0.6, FracEnd: 1})

	_, arcs, dist, err := NewDijkstra(g).ShortestPath(1, 2)
	require.NoError(t, err)
	require.Equal(t, 400.0, dist)
	require.Len(t, arcs, 1)
	require.True(t, arcs[0].Virtual)
}

func TestShortestPathUnreachable(t *testing.T) {
	g := graph.NewGraph()
	g.AddArc(1, arc(2, 1000))
	g.AddArc(3, arc(4, 1000))

	_, _, _, err := NewDijkstra(g).ShortestPath(1, 4)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestShortestPathDeterministicTieBreak(t *testing.T) {
	// two equal-cost routes 1->2->4 and 1->3->4: first-discovered wins,
	// and repeated runs agree exactly
	build := func() *graph.Graph {
		g := graph.NewGraph()
		g.AddArc(1, arc(2, 100))
		g.AddArc(1, arc(3, 100))
		g.AddArc(2, arc(4, 100))
		g.AddArc(3, arc(4, 100))
		return g
	}

	first, _, dist, err := NewDijkstra(build()).ShortestPath(1, 4)
	require.NoError(t, err)
	require.Equal(t, 200.0, dist)

	for i := 0; i < 10; i++ {
		nodes, _, d, err := NewDijkstra(build()).ShortestPath(1, 4)
		require.NoError(t, err)
		require.Equal(t, first, nodes)
		require.Equal(t, dist, d)
	}
}

func TestShortestPathZeroCostArcs(t *testing.T) {
	g := graph.NewGraph()
	g.AddArc(1, arc(2, 0))
	g.AddArc(2, arc(3, 1500))

	_, _, dist, err := NewDijkstra(g).ShortestPath(1, 3)
	require.NoError(t, err)
	require.Equal(t, 1500.0, dist)
}
