package riverapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/floatplan/floatplan/pkg/conditions"
	"github.com/floatplan/floatplan/pkg/river"
	"github.com/floatplan/floatplan/pkg/routing"
)

// RouterApiService implements the api actions on top of the routing
// engine. It owns no request state; every call runs the engine's fresh
// per-request pipeline.
type RouterApiService struct {
	engine *routing.Engine
	repo   *river.InMemoryRepository
	feed   conditions.Feed
	logger *slog.Logger
}

func NewRouterApiService(engine *routing.Engine, repo *river.InMemoryRepository, feed conditions.Feed, logger *slog.Logger) RouterApiServicer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouterApiService{engine: engine, repo: repo, feed: feed, logger: logger}
}

// ComputeRoute - compute a new river route
func (s *RouterApiService) ComputeRoute(ctx context.Context, req RouteRequest) (ImplResponse, error) {
	flow := req.FlowCondition
	if flow == "" {
		flow = string(routing.FlowNormal)
	}

	result, err := s.engine.ComputeRoute(ctx, routing.Request{
		Start:          orb.Point{req.Start.Lon, req.Start.Lat},
		End:            orb.Point{req.End.Lon, req.End.Lat},
		FlowCondition:  routing.FlowCondition(flow),
		PaddleSpeedMPS: req.PaddleSpeedMPS,
		AllowUpstream:  req.AllowUpstream,
	})
	if err != nil {
		return errorResponse(err), err
	}

	resp := RouteResponse{
		Geometry: geojson.NewFeature(result.Geometry),
		Stats:    result.Stats,
		Snap:     SnapInfo{Start: result.Snap.Start, End: result.Snap.End},
		Warnings: result.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return Response(http.StatusOK, resp), nil
}

// errorResponse maps routing errors onto http status codes. The body is
// filled in by the error handler.
func errorResponse(err error) ImplResponse {
	var inputErr *routing.InputError
	var snapErr *routing.SnapError
	switch {
	case errors.As(err, &inputErr):
		return Response(http.StatusBadRequest, nil)
	case errors.As(err, &snapErr):
		return Response(http.StatusNotFound, nil)
	case errors.Is(err, routing.ErrNoEdgesInArea),
		errors.Is(err, routing.ErrNoRouteFound):
		return Response(http.StatusNotFound, nil)
	case errors.Is(err, routing.ErrUpstreamOnlySuggestSwap):
		return Response(http.StatusUnprocessableEntity, nil)
	}
	return Response(http.StatusInternalServerError, nil)
}

func (s *RouterApiService) GetNetworkStats(ctx context.Context) (ImplResponse, error) {
	totalM := 0.0
	for _, e := range s.repo.Edges() {
		totalM += e.LengthM
	}
	return Response(http.StatusOK, NetworkStatsResponse{
		EdgeCount:     s.repo.EdgeCount(),
		TotalLengthKm: totalM / 1000,
	}), nil
}

func (s *RouterApiService) GetConditionsStatus(ctx context.Context) (ImplResponse, error) {
	ts := s.feed.Timestamp()
	status := ConditionsStatusResponse{DataTimestamp: ts}
	if !ts.IsZero() {
		status.AgeSeconds = time.Since(ts).Seconds()
	}
	return Response(http.StatusOK, status), nil
}

func (s *RouterApiService) GetHealth(ctx context.Context) (ImplResponse, error) {
	return Response(http.StatusOK, HealthResponse{Status: "ok"}), nil
}
