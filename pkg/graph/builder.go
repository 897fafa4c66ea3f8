package graph

import (
	"github.com/floatplan/floatplan/pkg/river"
)

// Build converts a flat edge set plus the two snap results into a routable
// graph. Every edge contributes its forward (downstream) arc; when
// allowUpstream is set, a reverse arc tagged as upstream traversal is added
// too. The snapped edges are additionally split at the snap fractions with
// virtual arcs so the route can begin and end mid-reach; the untouched
// originals stay in the graph so other paths through them remain
// reachable.
//
// Build never fails: a disconnected graph is a valid result and
// connectivity is the path finder's concern.
func Build(edges []river.Edge, startSnap, endSnap *river.SnapResult, allowUpstream bool) *Graph {
	g := NewGraph()

	for i := range edges {
		e := edges[i]
		g.AddArc(e.FromNode, Arc{To: e.ToNode, Edge: e})
		if allowUpstream {
			g.AddArc(e.ToNode, Arc{To: e.FromNode, Edge: e, Upstream: true})
		}
	}

	sameEdge := startSnap.Edge.ReachID == endSnap.Edge.ReachID
	if sameEdge {
		addSharedEdgeSplit(g, startSnap, endSnap, allowUpstream)
		return g
	}

	addStartSplit(g, startSnap, allowUpstream)
	addEndSplit(g, endSnap, allowUpstream)
	return g
}

// addSharedEdgeSplit handles both snaps landing on the same reach: a single
// virtual arc spans the sub-range between the two fractions. Which fraction
// is smaller decides the traversal direction; downstream-only routing with
// the end fraction upstream of the start fraction yields no arc at all.
func addSharedEdgeSplit(g *Graph, startSnap, endSnap *river.SnapResult, allowUpstream bool) {
	sf, ef := startSnap.Fraction, endSnap.Fraction
	switch {
	case sf <= ef:
		g.AddArc(VirtualStart, virtualArc(VirtualEnd, startSnap.Edge, sf, ef, false))
	case allowUpstream:
		g.AddArc(VirtualStart, virtualArc(VirtualEnd, startSnap.Edge, ef, sf, true))
	}
}

// addStartSplit connects virtual_start to the graph: downstream remainder
// of the snapped reach unconditionally, upstream remainder only when
// upstream travel is allowed.
func addStartSplit(g *Graph, snap *river.SnapResult, allowUpstream bool) {
	e := snap.Edge
	f := snap.Fraction
	g.AddArc(VirtualStart, virtualArc(e.ToNode, e, f, 1, false))
	if allowUpstream {
		g.AddArc(VirtualStart, virtualArc(e.FromNode, e, 0, f, true))
	}
}

// addEndSplit is the mirror: arrive at virtual_end from the reach head
// downstream, or from the reach tail when upstream travel is allowed.
func addEndSplit(g *Graph, snap *river.SnapResult, allowUpstream bool) {
	e := snap.Edge
	f := snap.Fraction
	g.AddArc(e.FromNode, virtualArc(VirtualEnd, e, 0, f, false))
	if allowUpstream {
		g.AddArc(e.ToNode, virtualArc(VirtualEnd, e, f, 1, true))
	}
}

// virtualArc builds an arc over the [lo, hi] fraction sub-range of an
// edge. The sub-edge keeps downstream orientation: its MaxElevM is the
// elevation at lo and its MinElevM the elevation at hi, linearly
// interpolated. Zero-length splits (lo == hi) are tolerated with cost 0.
func virtualArc(to river.NodeID, e river.Edge, lo, hi float64, upstream bool) Arc {
	sub := e
	sub.LengthM = e.LengthM * (hi - lo)
	sub.MaxElevM = elevationAt(e, lo)
	sub.MinElevM = elevationAt(e, hi)
	return Arc{
		To:         to,
		Edge:       sub,
		Upstream:   upstream,
		Virtual:    true,
		OriginalID: e.ReachID,
		FracStart:  lo,
		FracEnd:    hi,
	}
}

// elevationAt interpolates edge elevation at a downstream fraction:
// MaxElevM at the upstream end (0), MinElevM at the downstream end (1).
func elevationAt(e river.Edge, fraction float64) float64 {
	return e.MaxElevM + (e.MinElevM-e.MaxElevM)*fraction
}
