// Package constellation places catalog entries on concentric rings for the
// constellation view.
package constellation

import (
	"math"
	"sort"

	"github.com/jonathan/raveliquar/internal/catalog"
)

// DefaultSize is the default width and height of the layout canvas.
const DefaultSize = 800.0

// ringFractions is each kind's radius as a fraction of the canvas half-width.
var ringFractions = map[catalog.Kind]float64{
	catalog.KindArchetype: 0.3,
	catalog.KindLuminary:  0.6,
	catalog.KindShadow:    0.9,
}

// Node is one positioned entry.
type Node struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Kind  catalog.Kind `json:"kind"`
	Group string       `json:"group"`
	Ring  int          `json:"ring"`
	Angle float64      `json:"angle"`
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
}

// Ring describes one circle of the layout.
type Ring struct {
	Kind   catalog.Kind `json:"kind"`
	Radius float64      `json:"radius"`
	Count  int          `json:"count"`
}

// Constellation is the full layout.
type Constellation struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rings  []Ring  `json:"rings"`
	Nodes  []Node  `json:"nodes"`
}

// Layout places entries on one ring per kind, archetypes innermost. Within a
// ring entries are grouped (family for archetypes, category otherwise) and
// spaced evenly clockwise from the top. size <= 0 uses DefaultSize.
func Layout(entries []catalog.Entry, size float64) Constellation {
	if size <= 0 {
		size = DefaultSize
	}
	half := size / 2

	byKind := make(map[catalog.Kind][]catalog.Entry)
	for _, e := range entries {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	c := Constellation{Width: size, Height: size, Rings: []Ring{}, Nodes: []Node{}}
	for ringIdx, kind := range catalog.Kinds() {
		members := byKind[kind]
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return group(members[i]) < group(members[j])
		})

		radius := round(half * ringFractions[kind])
		c.Rings = append(c.Rings, Ring{Kind: kind, Radius: radius, Count: len(members)})

		step := 2 * math.Pi / float64(len(members))
		for i, e := range members {
			angle := -math.Pi/2 + step*float64(i)
			c.Nodes = append(c.Nodes, Node{
				ID:    e.ID,
				Name:  e.Name,
				Kind:  kind,
				Group: group(e),
				Ring:  ringIdx,
				Angle: round(angle),
				X:     round(half + radius*math.Cos(angle)),
				Y:     round(half + radius*math.Sin(angle)),
			})
		}
	}
	return c
}

func group(e catalog.Entry) string {
	if e.Kind == catalog.KindArchetype || e.Category == "" {
		return e.Family
	}
	return e.Category
}

// round keeps two decimals so the JSON output is stable and compact.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
