package constellation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/raveliquar/internal/catalog"
)

func TestLayout_Empty(t *testing.T) {
	c := Layout(nil, 0)
	assert.Equal(t, DefaultSize, c.Width)
	assert.NotNil(t, c.Nodes)
	assert.Empty(t, c.Nodes)
	assert.Empty(t, c.Rings)
}

func TestLayout_RingsAndPositions(t *testing.T) {
	entries := []catalog.Entry{
		{ID: "a1", Kind: catalog.KindArchetype, Family: "Seer"},
		{ID: "s1", Kind: catalog.KindShadow, Category: "Fixation"},
		{ID: "a2", Kind: catalog.KindArchetype, Family: "Maker"},
		{ID: "a3", Kind: catalog.KindArchetype, Family: "Maker"},
		{ID: "a4", Kind: catalog.KindArchetype, Family: "Seer"},
	}

	c := Layout(entries, 200)
	require.Len(t, c.Rings, 2)
	assert.Equal(t, catalog.KindArchetype, c.Rings[0].Kind)
	assert.Equal(t, 30.0, c.Rings[0].Radius)
	assert.Equal(t, 4, c.Rings[0].Count)
	assert.Equal(t, catalog.KindShadow, c.Rings[1].Kind)
	assert.Equal(t, 90.0, c.Rings[1].Radius)

	require.Len(t, c.Nodes, 5)
	// grouped by family, stable within a family
	assert.Equal(t, []string{"a2", "a3", "a1", "a4", "s1"}, nodeIDs(c.Nodes))

	top := c.Nodes[0]
	assert.Equal(t, 100.0, top.X)
	assert.Equal(t, 70.0, top.Y)

	right := c.Nodes[1]
	assert.Equal(t, 130.0, right.X)
	assert.Equal(t, 100.0, right.Y)

	shadow := c.Nodes[4]
	assert.Equal(t, "Fixation", shadow.Group)
	assert.Equal(t, 2, shadow.Ring)
	assert.Equal(t, 10.0, shadow.Y)
}

func TestLayout_NodesOnTheirRing(t *testing.T) {
	store := catalog.Embedded()
	require.NoError(t, store.Load(context.Background()))

	c := Layout(store.All(), DefaultSize)
	require.Len(t, c.Nodes, len(store.All()))

	radii := make(map[catalog.Kind]float64)
	for _, r := range c.Rings {
		radii[r.Kind] = r.Radius
	}
	for _, n := range c.Nodes {
		dist := math.Hypot(n.X-DefaultSize/2, n.Y-DefaultSize/2)
		assert.InDelta(t, radii[n.Kind], dist, 0.05, n.ID)
	}
}

func nodeIDs(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
