package pbf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/floatplan/floatplan/pkg/river"
)

// ReachAttributes carries hydrologic data joined onto a waterway by OSM
// way id, typically exported from a hydrography dataset. Missing fields
// fall back to kind-based defaults.
type ReachAttributes struct {
	BaselineVelocityMPS *float64 `json:"baseline_velocity_mps,omitempty"`
	MinElevM            *float64 `json:"min_elev_m,omitempty"`
	MaxElevM            *float64 `json:"max_elev_m,omitempty"`
	StreamOrder         *int     `json:"stream_order,omitempty"`
}

// LoadAttributes reads a wayID -> attributes JSON object.
func LoadAttributes(filename string) (map[int64]ReachAttributes, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	attrs := make(map[int64]ReachAttributes)
	if err := json.NewDecoder(file).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("parse attributes file: %w", err)
	}
	return attrs, nil
}

// defaultVelocityMPS is a crude stand-in when no hydrography attributes
// are available for a reach.
func defaultVelocityMPS(kind string) float64 {
	switch kind {
	case "river":
		return 0.6
	case "stream":
		return 0.3
	default:
		return 0.2
	}
}

// BuildNetwork turns imported waterways into validated network edges.
// Junction node ids are assigned by shared endpoint coordinate, so two
// ways meeting at a confluence connect in the graph. Ways whose geometry
// degenerates to zero length are dropped.
func BuildNetwork(waterways []*Waterway, attrs map[int64]ReachAttributes) []river.Edge {
	nodeIDs := make(map[orb.Point]river.NodeID)
	nodeFor := func(p orb.Point) river.NodeID {
		if id, ok := nodeIDs[p]; ok {
			return id
		}
		id := river.NodeID(len(nodeIDs))
		nodeIDs[p] = id
		return id
	}

	edges := make([]river.Edge, 0, len(waterways))
	for _, w := range waterways {
		length := 0.0
		for i := 0; i < len(w.Points)-1; i++ {
			length += geo.Distance(w.Points[i], w.Points[i+1])
		}
		if length <= 0 {
			continue
		}

		e := river.Edge{
			ReachID:             w.WayID,
			FromNode:            nodeFor(w.Points[0]),
			ToNode:              nodeFor(w.Points[len(w.Points)-1]),
			LengthM:             length,
			Name:                w.Name,
			StreamOrder:         1,
			BaselineVelocityMPS: defaultVelocityMPS(w.Kind),
			Geometry:            w.Points,
		}
		if a, ok := attrs[w.WayID]; ok {
			if a.BaselineVelocityMPS != nil {
				e.BaselineVelocityMPS = *a.BaselineVelocityMPS
			}
			if a.MinElevM != nil {
				e.MinElevM = *a.MinElevM
			}
			if a.MaxElevM != nil {
				e.MaxElevM = *a.MaxElevM
			}
			if a.StreamOrder != nil {
				e.StreamOrder = *a.StreamOrder
			}
		}
		edges = append(edges, e)
	}
	return edges
}
