package pbf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.01"/>
  <node id="3" lat="0.01" lon="0.01"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="waterway" v="river"/>
    <tag k="name" v="Alder River"/>
  </way>
  <way id="101">
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="waterway" v="stream"/>
  </way>
  <way id="102">
    <nd ref="1"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>
`

func writeSample(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "sample.osm")
	require.NoError(t, os.WriteFile(file, []byte(sampleOSM), 0o644))
	return file
}

func TestImportWaterwaysXML(t *testing.T) {
	waterways, err := ImportWaterwaysXML(context.Background(), writeSample(t))
	require.NoError(t, err)
	require.Len(t, waterways, 2) // the highway is skipped

	require.Equal(t, int64(100), waterways[0].WayID)
	require.Equal(t, "river", waterways[0].Kind)
	require.Equal(t, "Alder River", waterways[0].Name)
	require.Equal(t, orb.LineString{{0, 0}, {0.01, 0}}, waterways[0].Points)

	require.Equal(t, "stream", waterways[1].Kind)
	require.Empty(t, waterways[1].Name)
}

func TestBuildNetworkJoinsSharedEndpoints(t *testing.T) {
	waterways, err := ImportWaterwaysXML(context.Background(), writeSample(t))
	require.NoError(t, err)

	edges := BuildNetwork(waterways, nil)
	require.Len(t, edges, 2)

	// the confluence node is shared between the two reaches
	require.Equal(t, edges[0].ToNode, edges[1].FromNode)
	require.NotEqual(t, edges[0].FromNode, edges[1].ToNode)

	require.Greater(t, edges[0].LengthM, 1000.0)
	require.Equal(t, 0.6, edges[0].BaselineVelocityMPS) // river default
	require.Equal(t, 0.3, edges[1].BaselineVelocityMPS) // stream default

	for i := range edges {
		require.NoError(t, edges[i].Validate())
	}
}

func TestBuildNetworkAppliesAttributes(t *testing.T) {
	waterways, err := ImportWaterwaysXML(context.Background(), writeSample(t))
	require.NoError(t, err)

	velocity := 0.9
	minElev, maxElev := 120.0, 135.0
	order := 4
	attrs := map[int64]ReachAttributes{
		100: {
			BaselineVelocityMPS: &velocity,
			MinElevM:            &minElev,
			MaxElevM:            &maxElev,
			StreamOrder:         &order,
		},
	}

	edges := BuildNetwork(waterways, attrs)
	require.Equal(t, 0.9, edges[0].BaselineVelocityMPS)
	require.Equal(t, 120.0, edges[0].MinElevM)
	require.Equal(t, 135.0, edges[0].MaxElevM)
	require.Equal(t, 4, edges[0].StreamOrder)

	// unmatched ways keep defaults
	require.Equal(t, 0.3, edges[1].BaselineVelocityMPS)
	require.Equal(t, 1, edges[1].StreamOrder)
}

func TestLoadAttributes(t *testing.T) {
	file := filepath.Join(t.TempDir(), "attrs.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"100": {"baseline_velocity_mps": 0.7, "stream_order": 3}
	}`), 0o644))

	attrs, err := LoadAttributes(file)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	require.Equal(t, 0.7, *attrs[100].BaselineVelocityMPS)
	require.Equal(t, 3, *attrs[100].StreamOrder)
	require.Nil(t, attrs[100].MinElevM)
}
