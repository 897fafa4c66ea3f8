package river

import (
	"context"
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultMaxSnapDistanceM is how far a requested point may sit from the
// network before snapping is refused.
const DefaultMaxSnapDistanceM = 5000.0

// ErrOutOfRange means no edge lies within the allowed snap distance.
// This is a hard rule, not a warning.
var ErrOutOfRange = errors.New("point too far from river network")

// SnapResult fixes a point onto a reach: the fractional position along
// the reach geometry, the projected coordinate, and the distance from the
// requested point to the network. Immutable once produced.
type SnapResult struct {
	Edge      Edge
	Fraction  float64
	Point     orb.Point
	DistanceM float64
}

// Snapper projects arbitrary coordinates onto the nearest reach.
type Snapper struct {
	repo         EdgeRepository
	maxDistanceM float64
}

func NewSnapper(repo EdgeRepository, maxDistanceM float64) *Snapper {
	if maxDistanceM <= 0 {
		maxDistanceM = DefaultMaxSnapDistanceM
	}
	return &Snapper{repo: repo, maxDistanceM: maxDistanceM}
}

// Nearest returns the snap result for the given point or ErrOutOfRange
// when the closest edge is farther than the configured maximum.
func (s *Snapper) Nearest(ctx context.Context, point orb.Point) (*SnapResult, error) {
	snap, err := s.repo.NearestEdge(ctx, point, s.maxDistanceM)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrOutOfRange
	}
	return snap, nil
}

// ProjectOntoLine finds the closest point on a polyline. It returns the
// fractional arc-length position of that point, the point itself, and the
// great-circle distance from p to it. Segments are treated as straight in
// a local equirectangular frame, which is accurate at reach scale.
func ProjectOntoLine(line orb.LineString, p orb.Point) (fraction float64, closest orb.Point, distanceM float64) {
	cosLat := math.Cos(p.Lat() * math.Pi / 180)
	if math.Abs(cosLat) < 0.01 {
		cosLat = 0.01
	}

	bestDist := math.Inf(1)
	bestPoint := line[0]
	bestDistAlong := 0.0

	walked := 0.0
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		segLen := geo.Distance(a, b)

		t := segmentParam(a, b, p, cosLat)
		candidate := interpolate(a, b, t)
		d := geo.Distance(p, candidate)
		if d < bestDist {
			bestDist = d
			bestPoint = candidate
			bestDistAlong = walked + t*segLen
		}
		walked += segLen
	}

	if walked == 0 {
		return 0, line[0], geo.Distance(p, line[0])
	}
	return clampFraction(bestDistAlong / walked), bestPoint, bestDist
}

// segmentParam computes the clamped projection parameter of p onto the
// segment a-b in a frame where longitude is scaled by cos(lat).
func segmentParam(a, b, p orb.Point, cosLat float64) float64 {
	ax, ay := a.Lon()*cosLat, a.Lat()
	bx, by := b.Lon()*cosLat, b.Lat()
	px, py := p.Lon()*cosLat, p.Lat()

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	return clampFraction(t)
}
