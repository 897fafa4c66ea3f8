package graph

import (
	"github.com/floatplan/floatplan/pkg/river"
)

// Synthetic node ids for the two snapped route endpoints. They exist only
// for the lifetime of one request graph; real network nodes are always
// non-negative.
const (
	VirtualStart river.NodeID = -1
	VirtualEnd   river.NodeID = -2
)

// Arc is one directed traversal option between two nodes. Edge carries the
// hydrologic attributes for the traversed range: for a full reach it is the
// original edge, for a virtual edge it is the sub-range with length and
// elevation bounds interpolated over [FracStart, FracEnd].
type Arc struct {
	To       river.NodeID
	Edge     river.Edge
	Upstream bool

	// Virtual split metadata. FracStart < FracEnd always holds except for
	// tolerated zero-length boundary splits where they are equal.
	Virtual    bool
	OriginalID int64
	FracStart  float64
	FracEnd    float64
}

// Cost returns the arc traversal cost in meters.
func (a Arc) Cost() float64 {
	return a.Edge.LengthM
}

// Graph is the per-request routable adjacency structure. It is built fresh
// for every route computation and never shared across requests.
type Graph struct {
	adjacency map[river.NodeID][]Arc
	arcCount  int
}

func NewGraph() *Graph {
	return &Graph{adjacency: make(map[river.NodeID][]Arc)}
}

// ArcsFrom returns the outgoing arcs of a node in insertion order.
func (g *Graph) ArcsFrom(id river.NodeID) []Arc {
	return g.adjacency[id]
}

func (g *Graph) AddArc(from river.NodeID, arc Arc) {
	g.adjacency[from] = append(g.adjacency[from], arc)
	g.arcCount++
}

func (g *Graph) NodeCount() int {
	return len(g.adjacency)
}

func (g *Graph) ArcCount() int {
	return g.arcCount
}
