package pbf

import (
	"context"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

// ImportWaterwaysXML reads waterway ways from a plain .osm XML extract,
// the format small hand-exported areas usually come in. Same two-pass
// structure as the PBF importer.
func ImportWaterwaysXML(ctx context.Context, filename string) ([]*Waterway, error) {
	nodes, err := collectNodesXML(ctx, filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := osmxml.New(ctx, file)
	defer scanner.Close()

	var waterways []*Waterway
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		kind := way.Tags.Find("waterway")
		if !routableWaterways[kind] {
			continue
		}
		w := &Waterway{
			WayID:  int64(way.ID),
			Kind:   kind,
			Name:   way.Tags.Find("name"),
			Points: make(orb.LineString, 0, len(way.Nodes)),
		}
		for _, wn := range way.Nodes {
			if point, ok := nodes[int64(wn.ID)]; ok {
				w.Points = append(w.Points, point)
			}
		}
		if len(w.Points) >= 2 {
			waterways = append(waterways, w)
		}
	}
	return waterways, scanner.Err()
}

func collectNodesXML(ctx context.Context, filename string) (map[int64]orb.Point, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := osmxml.New(ctx, file)
	defer scanner.Close()

	nodes := make(map[int64]orb.Point)
	for scanner.Scan() {
		if node, ok := scanner.Object().(*osm.Node); ok {
			nodes[int64(node.ID)] = orb.Point{node.Lon, node.Lat}
		}
	}
	return nodes, scanner.Err()
}
