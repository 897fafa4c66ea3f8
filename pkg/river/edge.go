package river

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
)

// NodeID identifies a junction in the river network. Virtual nodes used
// during a single route computation are negative; every node coming from
// the data source must be non-negative.
type NodeID = int64

// Edge is a directed river reach. Orientation is downstream: FromNode is
// the upstream junction, ToNode the downstream one, MaxElevM the entry
// elevation and MinElevM the exit elevation.
type Edge struct {
	ReachID             int64          `json:"reach_id"`
	FromNode            NodeID         `json:"from_node"`
	ToNode              NodeID         `json:"to_node"`
	LengthM             float64        `json:"length_m"`
	Name                string         `json:"name,omitempty"`
	StreamOrder         int            `json:"stream_order,omitempty"`
	BaselineVelocityMPS float64        `json:"baseline_velocity_mps"`
	MinElevM            float64        `json:"min_elev_m"`
	MaxElevM            float64        `json:"max_elev_m"`
	LiveVelocityMPS     *float64       `json:"live_velocity_mps,omitempty"`
	LiveStreamflowM3S   *float64       `json:"live_streamflow_m3s,omitempty"`
	Geometry            orb.LineString `json:"geometry"`
}

// ValidationError reports an edge rejected at the repository boundary.
type ValidationError struct {
	ReachID int64
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reach %d: invalid %s: %s", e.ReachID, e.Field, e.Reason)
}

// Validate checks the fields the routing core depends on. A reversed
// elevation pair (MaxElevM < MinElevM) marks a mis-oriented edge and is
// deliberately allowed through; gradient math works on the absolute drop.
func (e *Edge) Validate() error {
	if e.LengthM <= 0 || math.IsNaN(e.LengthM) {
		return &ValidationError{ReachID: e.ReachID, Field: "length_m", Reason: fmt.Sprintf("must be > 0, got %v", e.LengthM)}
	}
	if e.FromNode < 0 || e.ToNode < 0 {
		return &ValidationError{ReachID: e.ReachID, Field: "from_node/to_node", Reason: "node ids must be non-negative"}
	}
	if math.IsNaN(e.MinElevM) || math.IsNaN(e.MaxElevM) {
		return &ValidationError{ReachID: e.ReachID, Field: "min_elev_m/max_elev_m", Reason: "elevation is NaN"}
	}
	if e.BaselineVelocityMPS < 0 || math.IsNaN(e.BaselineVelocityMPS) {
		return &ValidationError{ReachID: e.ReachID, Field: "baseline_velocity_mps", Reason: "must be >= 0"}
	}
	if len(e.Geometry) < 2 {
		return &ValidationError{ReachID: e.ReachID, Field: "geometry", Reason: "needs at least two points"}
	}
	return nil
}

// ElevDropM returns the absolute elevation change over the reach.
func (e *Edge) ElevDropM() float64 {
	return math.Abs(e.MaxElevM - e.MinElevM)
}

// WriteNetworkFile writes one edge per line as JSON.
func WriteNetworkFile(edges []Edge, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for i := range edges {
		if err := encoder.Encode(&edges[i]); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// ReadNetworkFile loads and validates a network file written by
// WriteNetworkFile. Any invalid edge fails the whole load.
func ReadNetworkFile(filename string) ([]Edge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var edges []Edge
	decoder := json.NewDecoder(bufio.NewReader(file))
	for decoder.More() {
		var e Edge
		if err := decoder.Decode(&e); err != nil {
			return nil, fmt.Errorf("parse network file: %w", err)
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}
