package river

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EdgeRepository is the data-source boundary of the routing core. The
// engine fetches everything it needs through this interface once per
// request; retry and timeout policy toward the backing store lives behind
// it, not in the core.
type EdgeRepository interface {
	QueryBoundingBox(ctx context.Context, bound orb.Bound) ([]Edge, error)
	NearestEdge(ctx context.Context, point orb.Point, maxDistanceM float64) (*SnapResult, error)
	Geometry(ctx context.Context, reachID int64) (orb.LineString, error)
	ClippedGeometry(ctx context.Context, reachID int64, fracStart, fracEnd float64) (orb.LineString, error)
}

// cellSizeDeg is the spatial index cell size. 0.05 degrees is roughly
// 5 km at mid latitudes, comparable to the default snap radius.
const cellSizeDeg = 0.05

type cellKey struct {
	x, y int
}

// InMemoryRepository serves a network file from memory. Nearest-edge
// lookups go through a coarse cell index over edge bounding boxes and
// fall back to a full scan when the neighborhood is empty.
type InMemoryRepository struct {
	edges   []Edge
	byReach map[int64]int
	cells   map[cellKey][]int
}

func NewInMemoryRepository(edges []Edge) (*InMemoryRepository, error) {
	repo := &InMemoryRepository{
		edges:   edges,
		byReach: make(map[int64]int, len(edges)),
		cells:   make(map[cellKey][]int),
	}
	for i := range edges {
		e := &edges[i]
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, ok := repo.byReach[e.ReachID]; ok {
			return nil, &ValidationError{ReachID: e.ReachID, Field: "reach_id", Reason: "duplicate"}
		}
		repo.byReach[e.ReachID] = i
		repo.indexEdge(i)
	}
	return repo, nil
}

// LoadRepository reads a network file and indexes it.
func LoadRepository(filename string) (*InMemoryRepository, error) {
	edges, err := ReadNetworkFile(filename)
	if err != nil {
		return nil, err
	}
	return NewInMemoryRepository(edges)
}

func (r *InMemoryRepository) EdgeCount() int { return len(r.edges) }

// Edges returns the backing edge slice. Callers must not mutate it.
func (r *InMemoryRepository) Edges() []Edge { return r.edges }

func (r *InMemoryRepository) indexEdge(i int) {
	b := r.edges[i].Geometry.Bound()
	minK := keyFor(b.Min)
	maxK := keyFor(b.Max)
	for x := minK.x; x <= maxK.x; x++ {
		for y := minK.y; y <= maxK.y; y++ {
			k := cellKey{x, y}
			r.cells[k] = append(r.cells[k], i)
		}
	}
}

func keyFor(p orb.Point) cellKey {
	return cellKey{
		x: int(math.Floor(p.Lon() / cellSizeDeg)),
		y: int(math.Floor(p.Lat() / cellSizeDeg)),
	}
}

func (r *InMemoryRepository) QueryBoundingBox(ctx context.Context, bound orb.Bound) ([]Edge, error) {
	var out []Edge
	for i := range r.edges {
		if bound.Intersects(r.edges[i].Geometry.Bound()) {
			out = append(out, r.edges[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) NearestEdge(ctx context.Context, point orb.Point, maxDistanceM float64) (*SnapResult, error) {
	candidates := r.candidatesNear(point, maxDistanceM)
	if len(candidates) == 0 {
		candidates = r.allIndices()
	}

	best := (*SnapResult)(nil)
	for _, i := range candidates {
		e := &r.edges[i]
		fraction, snapped, dist := ProjectOntoLine(e.Geometry, point)
		if best == nil || dist < best.DistanceM {
			best = &SnapResult{Edge: *e, Fraction: fraction, Point: snapped, DistanceM: dist}
		}
	}
	if best == nil || best.DistanceM > maxDistanceM {
		return nil, nil
	}
	return best, nil
}

// candidatesNear collects edge indices from every cell within the search
// radius around the point, deduplicated.
func (r *InMemoryRepository) candidatesNear(point orb.Point, radiusM float64) []int {
	// degrees per meter, stretched for longitude by latitude
	latPad := radiusM / 111_000.0
	lonPad := latPad / math.Max(0.01, math.Cos(point.Lat()*math.Pi/180))

	minK := keyFor(orb.Point{point.Lon() - lonPad, point.Lat() - latPad})
	maxK := keyFor(orb.Point{point.Lon() + lonPad, point.Lat() + latPad})

	seen := make(map[int]struct{})
	var out []int
	for x := minK.x; x <= maxK.x; x++ {
		for y := minK.y; y <= maxK.y; y++ {
			for _, i := range r.cells[cellKey{x, y}] {
				if _, ok := seen[i]; !ok {
					seen[i] = struct{}{}
					out = append(out, i)
				}
			}
		}
	}
	return out
}

func (r *InMemoryRepository) allIndices() []int {
	out := make([]int, len(r.edges))
	for i := range out {
		out[i] = i
	}
	return out
}

func (r *InMemoryRepository) Geometry(ctx context.Context, reachID int64) (orb.LineString, error) {
	i, ok := r.byReach[reachID]
	if !ok {
		return nil, fmt.Errorf("unknown reach %d", reachID)
	}
	return r.edges[i].Geometry, nil
}

// ClippedGeometry returns the part of a reach geometry between two
// fractional positions measured by arc length.
func (r *InMemoryRepository) ClippedGeometry(ctx context.Context, reachID int64, fracStart, fracEnd float64) (orb.LineString, error) {
	line, err := r.Geometry(ctx, reachID)
	if err != nil {
		return nil, err
	}
	if fracStart > fracEnd {
		fracStart, fracEnd = fracEnd, fracStart
	}
	return ClipLine(line, fracStart, fracEnd), nil
}

// ClipLine cuts a polyline to the [fracStart, fracEnd] sub-range of its
// total arc length. Degenerate ranges collapse to a two-point zero-length
// line so downstream geometry joins stay well-formed.
func ClipLine(line orb.LineString, fracStart, fracEnd float64) orb.LineString {
	fracStart = clampFraction(fracStart)
	fracEnd = clampFraction(fracEnd)

	total := lineLengthM(line)
	if total == 0 {
		return orb.LineString{line[0], line[len(line)-1]}
	}
	startDist := fracStart * total
	endDist := fracEnd * total

	var out orb.LineString
	walked := 0.0
	for i := 0; i < len(line)-1; i++ {
		segLen := geo.Distance(line[i], line[i+1])
		segStart := walked
		segEnd := walked + segLen
		walked = segEnd
		if segEnd < startDist || segLen == 0 {
			continue
		}
		if segStart > endDist {
			break
		}
		from := line[i]
		if segStart < startDist {
			from = interpolate(line[i], line[i+1], (startDist-segStart)/segLen)
		}
		to := line[i+1]
		if segEnd > endDist {
			to = interpolate(line[i], line[i+1], (endDist-segStart)/segLen)
		}
		if len(out) == 0 {
			out = append(out, from)
		}
		out = append(out, to)
	}
	if len(out) < 2 {
		p := PointAtFraction(line, fracStart)
		out = orb.LineString{p, p}
	}
	return out
}

// PointAtFraction returns the coordinate at a fractional arc-length
// position along the line.
func PointAtFraction(line orb.LineString, fraction float64) orb.Point {
	fraction = clampFraction(fraction)
	total := lineLengthM(line)
	if total == 0 {
		return line[0]
	}
	target := fraction * total
	walked := 0.0
	for i := 0; i < len(line)-1; i++ {
		segLen := geo.Distance(line[i], line[i+1])
		if walked+segLen >= target && segLen > 0 {
			return interpolate(line[i], line[i+1], (target-walked)/segLen)
		}
		walked += segLen
	}
	return line[len(line)-1]
}

func lineLengthM(line orb.LineString) float64 {
	total := 0.0
	for i := 0; i < len(line)-1; i++ {
		total += geo.Distance(line[i], line[i+1])
	}
	return total
}

func interpolate(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
