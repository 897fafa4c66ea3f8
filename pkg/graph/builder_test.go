package graph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/floatplan/floatplan/pkg/river"
)

func testEdge(id int64, from, to river.NodeID, lengthM float64) river.Edge {
	return river.Edge{
		ReachID:             id,
		FromNode:            from,
		ToNode:              to,
		LengthM:             lengthM,
		BaselineVelocityMPS: 0.5,
		MinElevM:            10,
		MaxElevM:            20,
		Geometry:            orb.LineString{{0, 0}, {0.01, 0}},
	}
}

func snapAt(e river.Edge, fraction float64) *river.SnapResult {
	return &river.SnapResult{Edge: e, Fraction: fraction, Point: orb.Point{0, 0}, DistanceM: 1}
}

func arcsBetween(g *Graph, from, to river.NodeID) []Arc {
	var out []Arc
	for _, a := range g.ArcsFrom(from) {
		if a.To == to {
			out = append(out, a)
		}
	}
	return out
}

func TestBuildDownstreamOnly(t *testing.T) {
	edges := []river.Edge{
		testEdge(1, 10, 11, 1000),
		testEdge(2, 11, 12, 2000),
	}
	g := Build(edges, snapAt(edges[0], 0.5), snapAt(edges[1], 0.5), false)

	// forward arcs only, no reverse traversal
	require.Len(t, arcsBetween(g, 10, 11), 1)
	require.Empty(t, arcsBetween(g, 11, 10))

	// start split: downstream remainder only
	startArcs := g.ArcsFrom(VirtualStart)
	require.Len(t, startArcs, 1)
	require.Equal(t, river.NodeID(11), startArcs[0].To)
	require.True(t, startArcs[0].Virtual)
	require.InDelta(t, 500, startArcs[0].Cost(), 1e-9)

	// end split: arrival from the reach head only
	endArcs := arcsBetween(g, 11, VirtualEnd)
	require.Len(t, endArcs, 1)
	require.InDelta(t, 1000, endArcs[0].Cost(), 1e-9)

	// the untouched originals stay routable
	require.Len(t, arcsBetween(g, 11, 12), 1)
}

func TestBuildAllowUpstream(t *testing.T) {
	edges := []river.Edge{
		testEdge(1, 10, 11, 1000),
		testEdge(2, 11, 12, 2000),
	}
	g := Build(edges, snapAt(edges[0], 0.25), snapAt(edges[1], 0.75), true)

	reverse := arcsBetween(g, 11, 10)
	require.Len(t, reverse, 1)
	require.True(t, reverse[0].Upstream)

	// both remainders leave virtual_start
	startArcs := g.ArcsFrom(VirtualStart)
	require.Len(t, startArcs, 2)
	require.Equal(t, river.NodeID(11), startArcs[0].To)
	require.False(t, startArcs[0].Upstream)
	require.InDelta(t, 750, startArcs[0].Cost(), 1e-9)
	require.Equal(t, river.NodeID(10), startArcs[1].To)
	require.True(t, startArcs[1].Upstream)
	require.InDelta(t, 250, startArcs[1].Cost(), 1e-9)

	// arrival at virtual_end from both sides
	require.Len(t, arcsBetween(g, 11, VirtualEnd), 1)
	upstreamArrival := arcsBetween(g, 12, VirtualEnd)
	require.Len(t, upstreamArrival, 1)
	require.True(t, upstreamArrival[0].Upstream)
}

func TestBuildSharedEdgeDownstream(t *testing.T) {
	e := testEdge(1, 10, 11, 1000)
	g := Build([]river.Edge{e}, snapAt(e, 0.2), snapAt(e, 0.7), false)

	direct := arcsBetween(g, VirtualStart, VirtualEnd)
	require.Len(t, direct, 1)
	require.True(t, direct[0].Virtual)
	require.InDelta(t, 500, direct[0].Cost(), 1e-9)
	require.Equal(t, 0.2, direct[0].FracStart)
	require.Equal(t, 0.7, direct[0].FracEnd)
	require.False(t, direct[0].Upstream)

	// elevation bounds interpolated over the sub-range
	require.InDelta(t, 18, direct[0].Edge.MaxElevM, 1e-9)
	require.InDelta(t, 13, direct[0].Edge.MinElevM, 1e-9)
}

func TestBuildSharedEdgeReversed(t *testing.T) {
	e := testEdge(1, 10, 11, 1000)

	// downstream-only with the end upstream of the start: no legal pair
	g := Build([]river.Edge{e}, snapAt(e, 0.7), snapAt(e, 0.2), false)
	require.Empty(t, arcsBetween(g, VirtualStart, VirtualEnd))

	// with upstream travel the pair exists, tagged upstream
	g = Build([]river.Edge{e}, snapAt(e, 0.7), snapAt(e, 0.2), true)
	direct := arcsBetween(g, VirtualStart, VirtualEnd)
	require.Len(t, direct, 1)
	require.True(t, direct[0].Upstream)
	require.InDelta(t, 500, direct[0].Cost(), 1e-9)
	require.Less(t, direct[0].FracStart, direct[0].FracEnd)
}

func TestBuildZeroLengthBoundarySplit(t *testing.T) {
	edges := []river.Edge{
		testEdge(1, 10, 11, 1000),
		testEdge(2, 11, 12, 2000),
	}

	// snap exactly on the downstream node of edge 1
	g := Build(edges, snapAt(edges[0], 1), snapAt(edges[1], 1), false)

	startArcs := g.ArcsFrom(VirtualStart)
	require.Len(t, startArcs, 1)
	require.Zero(t, startArcs[0].Cost())
	require.Equal(t, startArcs[0].FracStart, startArcs[0].FracEnd)

	// the degenerate split never changes reachable distance
	endArcs := arcsBetween(g, 11, VirtualEnd)
	require.Len(t, endArcs, 1)
	require.InDelta(t, 2000, endArcs[0].Cost(), 1e-9)
}

func TestBuildSharedEdgeZeroSpan(t *testing.T) {
	e := testEdge(1, 10, 11, 1000)
	g := Build([]river.Edge{e}, snapAt(e, 0.4), snapAt(e, 0.4), false)

	direct := arcsBetween(g, VirtualStart, VirtualEnd)
	require.Len(t, direct, 1)
	require.Zero(t, direct[0].Cost())
}

func TestBuildMisorientedEdgeDoesNotPanic(t *testing.T) {
	e := testEdge(1, 10, 11, 1000)
	e.MinElevM, e.MaxElevM = 20, 10 // reversed bounds
	require.NotPanics(t, func() {
		Build([]river.Edge{e}, snapAt(e, 0.3), snapAt(e, 0.6), true)
	})
}
