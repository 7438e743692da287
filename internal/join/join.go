// Package join intersects POI points with hexagon polygons.
package join

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/citygrid/hexpoi/internal/model"
)

// Join emits one row per (hexagon, point) pair whose point lies inside
// or on the hexagon boundary. Hexagons with zero matches produce no
// rows. A point exactly on a shared edge matches every hexagon touching
// that edge and is counted once per hexagon; this double-count is a
// known, accepted limitation rather than something resolved here.
//
// The scan is hexagons x points with a bounding-box prefilter, which is
// fine at city scale (hundreds of hexagons, thousands of points). Rows
// come out ordered by hexagon, then point arrival order, so aggregation
// downstream is reproducible.
func Join(hexes []model.HexRecord, pois []model.POI) []model.JoinRow {
	if len(hexes) == 0 || len(pois) == 0 {
		return nil
	}

	bounds := make([]orb.Bound, len(hexes))
	for i, h := range hexes {
		bounds[i] = h.Geometry.Bound()
	}

	var rows []model.JoinRow
	for i, h := range hexes {
		for _, p := range pois {
			if !bounds[i].Contains(p.Geometry) {
				continue
			}
			if !planar.PolygonContains(h.Geometry, p.Geometry) {
				continue
			}
			rows = append(rows, model.JoinRow{HexID: h.ID, Category: p.Category()})
		}
	}
	return rows
}
