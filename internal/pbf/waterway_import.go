// Package pbf extracts river channels from OSM extracts. OSM maps
// waterways as ways tagged waterway=river|stream|canal, drawn in flow
// direction (upstream node first), which is exactly the orientation the
// routing graph needs.
package pbf

import (
	"os"
	"runtime"
	"sync"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
)

// Waterway is one raw OSM channel way before it becomes a network edge.
type Waterway struct {
	WayID  int64
	Kind   string
	Name   string
	Points orb.LineString
}

var routableWaterways = map[string]bool{
	"river":  true,
	"stream": true,
	"canal":  true,
}

// WaterwayImporter reads a PBF extract in two passes: node coordinates
// first, then the waterway ways referencing them.
type WaterwayImporter struct {
	filename  string
	waterways []*Waterway
	nodes     map[int64]orb.Point
}

func NewWaterwayImporter(filename string) *WaterwayImporter {
	return &WaterwayImporter{
		filename:  filename,
		waterways: make([]*Waterway, 0),
		nodes:     make(map[int64]orb.Point),
	}
}

func (wi *WaterwayImporter) Import() error {
	if err := wi.collectNodes(); err != nil {
		return err
	}

	file, err := os.Open(wi.filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return err
	}

	var wg sync.WaitGroup
	waterwaysChan := make(chan *Waterway, 1000)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for w := range waterwaysChan {
			wi.waterways = append(wi.waterways, w)
		}
	}()

	for {
		v, err := decoder.Decode()
		if err != nil {
			close(waterwaysChan)
			break
		}
		switch v := v.(type) {
		case *osmpbf.Way:
			kind, ok := v.Tags["waterway"]
			if !ok || !routableWaterways[kind] {
				continue
			}
			w := &Waterway{
				WayID:  v.ID,
				Kind:   kind,
				Name:   v.Tags["name"],
				Points: make(orb.LineString, 0, len(v.NodeIDs)),
			}
			for _, nodeID := range v.NodeIDs {
				if point, ok := wi.nodes[nodeID]; ok {
					w.Points = append(w.Points, point)
				}
			}
			if len(w.Points) >= 2 {
				waterwaysChan <- w
			}
		}
	}

	wg.Wait()
	return nil
}

func (wi *WaterwayImporter) Waterways() []*Waterway {
	return wi.waterways
}

func (wi *WaterwayImporter) collectNodes() error {
	file, err := os.Open(wi.filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return err
	}

	for {
		v, err := decoder.Decode()
		if err != nil {
			break
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			wi.nodes[v.ID] = orb.Point{v.Lon, v.Lat}
		}
	}
	return nil
}
