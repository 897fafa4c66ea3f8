package riverapi

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/floatplan/floatplan/pkg/routing"
)

// SnapInfo echoes both endpoint snaps back to the caller.
type SnapInfo struct {
	Start routing.SnapRecord `json:"start"`
	End   routing.SnapRecord `json:"end"`
}

// RouteResponse is the body for a successfully computed route. The
// geometry is a GeoJSON LineString feature in path order.
type RouteResponse struct {
	Geometry *geojson.Feature `json:"geometry"`
	Stats    routing.Stats    `json:"stats"`
	Snap     SnapInfo         `json:"snap"`
	Warnings []string         `json:"warnings"`
}

// NetworkStatsResponse is the body for GET /network/stats.
type NetworkStatsResponse struct {
	EdgeCount     int     `json:"edge_count"`
	TotalLengthKm float64 `json:"total_length_km"`
}

// ConditionsStatusResponse is the body for GET /conditions/status.
type ConditionsStatusResponse struct {
	DataTimestamp time.Time `json:"data_timestamp"`
	AgeSeconds    float64   `json:"age_seconds"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
