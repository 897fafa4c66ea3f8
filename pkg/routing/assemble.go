package routing

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/floatplan/floatplan/pkg/graph"
	"github.com/floatplan/floatplan/pkg/river"
)

// SnapRecord is the snap metadata echoed back to the caller for one
// endpoint.
type SnapRecord struct {
	ReachID      int64     `json:"reach_id"`
	Fraction     float64   `json:"fraction"`
	SnappedPoint orb.Point `json:"snapped_point"`
	DistanceM    float64   `json:"distance_m"`
	Name         string    `json:"name,omitempty"`
}

// RouteResult is the full response contract of one route computation.
// Assembled once, never mutated afterwards.
type RouteResult struct {
	Geometry orb.LineString
	Stats    Stats
	Snap     struct {
		Start SnapRecord
		End   SnapRecord
	}
	Warnings []string
}

func makeSnapRecord(s *river.SnapResult) SnapRecord {
	return SnapRecord{
		ReachID:      s.Edge.ReachID,
		Fraction:     s.Fraction,
		SnappedPoint: s.Point,
		DistanceM:    s.DistanceM,
		Name:         s.Edge.Name,
	}
}

// assembleGeometry fetches the geometry of every traversed arc and joins
// it in path order. Lookups for distinct arcs are independent, so they are
// fanned out concurrently; results are written by path position and joined
// only after every fetch finished, which restores path order regardless of
// completion order. Virtual arcs fetch the clipped sub-range, upstream
// arcs are reversed to follow travel direction.
func assembleGeometry(ctx context.Context, repo river.EdgeRepository, arcs []graph.Arc) (orb.LineString, error) {
	pieces := make([]orb.LineString, len(arcs))
	errs := make([]error, len(arcs))

	var wg sync.WaitGroup
	for i := range arcs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pieces[i], errs[i] = fetchArcGeometry(ctx, repo, arcs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("geometry for reach %d: %w", arcs[i].Edge.ReachID, err)
		}
	}

	var joined orb.LineString
	for i, piece := range pieces {
		if arcs[i].Upstream {
			piece = reverseLine(piece)
		}
		if len(joined) > 0 && len(piece) > 0 && joined[len(joined)-1] == piece[0] {
			piece = piece[1:]
		}
		joined = append(joined, piece...)
	}
	return joined, nil
}

func fetchArcGeometry(ctx context.Context, repo river.EdgeRepository, arc graph.Arc) (orb.LineString, error) {
	if arc.Virtual {
		return repo.ClippedGeometry(ctx, arc.OriginalID, arc.FracStart, arc.FracEnd)
	}
	return repo.Geometry(ctx, arc.Edge.ReachID)
}

func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}
