package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/floatplan/floatplan/internal/pbf"
	"github.com/floatplan/floatplan/pkg/river"
)

// network-builder turns an OSM extract into a routable river network file.
// Hydrologic attributes (baseline velocity, elevations, stream order) are
// joined from an optional JSON file keyed by OSM way id.
func main() {
	input := flag.String("in", "", "OSM extract (.pbf or .osm)")
	attributesFile := flag.String("attributes", "", "per-reach hydrologic attributes JSON (optional)")
	output := flag.String("out", "network.jsonl", "output network file")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing -in flag")
	}

	start := time.Now()
	waterways, err := importWaterways(*input)
	if err != nil {
		log.Fatalf("import %s: %v", *input, err)
	}
	fmt.Printf("[TIME] import waterways: %s (%d ways)\n", time.Since(start), len(waterways))

	attrs := map[int64]pbf.ReachAttributes{}
	if *attributesFile != "" {
		start = time.Now()
		attrs, err = pbf.LoadAttributes(*attributesFile)
		if err != nil {
			log.Fatalf("load attributes: %v", err)
		}
		fmt.Printf("[TIME] load attributes: %s (%d reaches)\n", time.Since(start), len(attrs))
	}

	start = time.Now()
	edges := pbf.BuildNetwork(waterways, attrs)
	for i := range edges {
		if err := edges[i].Validate(); err != nil {
			log.Fatalf("invalid edge: %v", err)
		}
	}
	fmt.Printf("[TIME] build network: %s (%d edges)\n", time.Since(start), len(edges))

	if err := river.WriteNetworkFile(edges, *output); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	fmt.Printf("wrote %s\n", *output)
}

func importWaterways(filename string) ([]*pbf.Waterway, error) {
	if strings.HasSuffix(filename, ".osm") || strings.HasSuffix(filename, ".xml") {
		return pbf.ImportWaterwaysXML(context.Background(), filename)
	}
	importer := pbf.NewWaterwayImporter(filename)
	if err := importer.Import(); err != nil {
		return nil, err
	}
	return importer.Waterways(), nil
}
