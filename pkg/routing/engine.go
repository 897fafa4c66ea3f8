package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/floatplan/floatplan/pkg/conditions"
	"github.com/floatplan/floatplan/pkg/graph"
	"github.com/floatplan/floatplan/pkg/graph/path"
	"github.com/floatplan/floatplan/pkg/river"
)

// Request is one route computation. Points are lon/lat WGS-84.
type Request struct {
	Start          orb.Point
	End            orb.Point
	FlowCondition  FlowCondition
	PaddleSpeedMPS float64
	AllowUpstream  bool
}

// Engine runs the route pipeline: snap, build, search, stats, assemble.
// Every call works on a fresh graph over freshly fetched edges; the engine
// holds no per-request state and never retries.
type Engine struct {
	repo    river.EdgeRepository
	snapper *river.Snapper
	feed    conditions.Feed
	logger  *slog.Logger
}

func NewEngine(repo river.EdgeRepository, feed conditions.Feed, maxSnapDistanceM float64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		repo:    repo,
		snapper: river.NewSnapper(repo, maxSnapDistanceM),
		feed:    feed,
		logger:  logger,
	}
}

// ComputeRoute returns a navigable route between two points with trip
// statistics, or one of the routing errors of this package.
func (e *Engine) ComputeRoute(ctx context.Context, req Request) (*RouteResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	started := time.Now()

	startSnap, err := e.snapEndpoint(ctx, req.Start, EndpointStart)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapEndpoint(ctx, req.End, EndpointEnd)
	if err != nil {
		return nil, err
	}

	edges, err := e.repo.QueryBoundingBox(ctx, routingBound(startSnap.Point, endSnap.Point))
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	if len(edges) == 0 {
		return nil, ErrNoEdgesInArea
	}

	e.mergeLive(ctx, edges)
	startSnap = e.withLive(ctx, startSnap)
	endSnap = e.withLive(ctx, endSnap)

	g := graph.Build(edges, startSnap, endSnap, req.AllowUpstream)
	_, arcs, distance, err := path.NewDijkstra(g).ShortestPath(graph.VirtualStart, graph.VirtualEnd)
	if errors.Is(err, path.ErrUnreachable) {
		return nil, e.diagnoseUnreachable(edges, startSnap, endSnap, req.AllowUpstream)
	}
	if err != nil {
		return nil, err
	}

	stats, warnings := ComputeStats(arcs, req.FlowCondition, req.PaddleSpeedMPS, e.feed.Timestamp())

	geometry, err := assembleGeometry(ctx, e.repo, arcs)
	if err != nil {
		return nil, err
	}

	result := &RouteResult{
		Geometry: geometry,
		Stats:    stats,
		Warnings: warnings,
	}
	result.Snap.Start = makeSnapRecord(startSnap)
	result.Snap.End = makeSnapRecord(endSnap)

	e.logger.Debug("route computed",
		"distance_m", distance,
		"segments", stats.SegmentCount,
		"graph_arcs", g.ArcCount(),
		"elapsed", time.Since(started))
	return result, nil
}

// diagnoseUnreachable re-runs the search with the snap roles swapped. A
// hit there means the failure is directional, so the caller gets an
// actionable suggestion instead of a generic miss.
func (e *Engine) diagnoseUnreachable(edges []river.Edge, startSnap, endSnap *river.SnapResult, allowUpstream bool) error {
	swapped := graph.Build(edges, endSnap, startSnap, allowUpstream)
	if _, _, _, err := path.NewDijkstra(swapped).ShortestPath(graph.VirtualStart, graph.VirtualEnd); err == nil {
		return ErrUpstreamOnlySuggestSwap
	}
	return ErrNoRouteFound
}

func (e *Engine) snapEndpoint(ctx context.Context, p orb.Point, which Endpoint) (*river.SnapResult, error) {
	snap, err := e.snapper.Nearest(ctx, p)
	if err != nil {
		return nil, &SnapError{Endpoint: which, Err: err}
	}
	return snap, nil
}

// mergeLive stamps the live feed values onto the fetched edges. The
// repository stays unaware of liveness; the merge happens per request.
func (e *Engine) mergeLive(ctx context.Context, edges []river.Edge) {
	for i := range edges {
		if c, ok := e.feed.Lookup(ctx, edges[i].ReachID); ok {
			v, q := c.VelocityMPS, c.StreamflowM3S
			edges[i].LiveVelocityMPS = &v
			edges[i].LiveStreamflowM3S = &q
		}
	}
}

func (e *Engine) withLive(ctx context.Context, snap *river.SnapResult) *river.SnapResult {
	out := *snap
	if c, ok := e.feed.Lookup(ctx, snap.Edge.ReachID); ok {
		v, q := c.VelocityMPS, c.StreamflowM3S
		out.Edge.LiveVelocityMPS = &v
		out.Edge.LiveStreamflowM3S = &q
	}
	return &out
}

// routingBound is the fetch envelope around both snapped endpoints: their
// bounding box padded by a quarter of its diagonal, with a 1 km floor so
// nearby loops stay routable even for very short trips.
func routingBound(a, b orb.Point) orb.Bound {
	bound := orb.Bound{
		Min: orb.Point{math.Min(a.Lon(), b.Lon()), math.Min(a.Lat(), b.Lat())},
		Max: orb.Point{math.Max(a.Lon(), b.Lon()), math.Max(a.Lat(), b.Lat())},
	}

	latSpan := bound.Max.Lat() - bound.Min.Lat()
	lonSpan := bound.Max.Lon() - bound.Min.Lon()
	pad := 0.25 * math.Hypot(latSpan, lonSpan)
	if floor := 1000.0 / 111_000.0; pad < floor {
		pad = floor
	}

	bound.Min = orb.Point{bound.Min.Lon() - pad, bound.Min.Lat() - pad}
	bound.Max = orb.Point{bound.Max.Lon() + pad, bound.Max.Lat() + pad}
	return bound
}

func validateRequest(req Request) error {
	if err := validatePoint(req.Start, "start"); err != nil {
		return err
	}
	if err := validatePoint(req.End, "end"); err != nil {
		return err
	}
	if _, err := ParseFlowCondition(string(req.FlowCondition)); err != nil {
		return err
	}
	if req.PaddleSpeedMPS < 0 || math.IsNaN(req.PaddleSpeedMPS) {
		return &InputError{Field: "paddle_speed_mps", Reason: "must be >= 0"}
	}
	return nil
}

func validatePoint(p orb.Point, field string) error {
	if math.IsNaN(p.Lon()) || math.IsNaN(p.Lat()) ||
		p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
		return &InputError{Field: field, Reason: fmt.Sprintf("coordinates out of range: %v", p)}
	}
	return nil
}
