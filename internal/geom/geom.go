// Package geom reconciles coordinate axis order between the boundary
// source, the tessellation primitive and the rendering consumer, and
// provides the canonical fixed-precision form used as the geometry
// dedup key.
package geom

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/citygrid/hexpoi/internal/model"
)

// NormalizeRing returns the ring in (lon,lat) order. If swap is true
// every vertex is exchanged from (lat,lon) first. The ring must already
// be closed; closing an open loop is the tessellator's job, not ours.
// Coordinates outside valid lon/lat ranges after the swap mean the
// caller guessed the axis order wrong, which must fail loudly rather
// than render a geographically nonsensical map.
func NormalizeRing(ring orb.Ring, swap bool) (orb.Ring, error) {
	if len(ring) < 4 {
		return nil, fmt.Errorf("ring has %d vertices (want closed ring with >= 4): %w", len(ring), model.ErrInvalidGeometry)
	}
	if ring[0] != ring[len(ring)-1] {
		return nil, fmt.Errorf("ring is not closed (first %v != last %v): %w", ring[0], ring[len(ring)-1], model.ErrInvalidGeometry)
	}

	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		if swap {
			p = orb.Point{p[1], p[0]}
		}
		if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
			return nil, fmt.Errorf("vertex %d (%f, %f) outside lon/lat range: %w",
				i, p.Lon(), p.Lat(), model.ErrCoordinateOrderMismatch)
		}
		out[i] = p
	}
	return out, nil
}

// Canonical serializes a polygon to a fixed-precision, fixed-vertex-order
// string. Identical geometries compare equal even after a serialize/parse
// round trip, which float keys do not guarantee.
func Canonical(poly orb.Polygon) string {
	var b strings.Builder
	b.WriteString("POLYGON (")
	for ri, ring := range poly {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i, p := range ring {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%.6f %.6f", p.Lon(), p.Lat())
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}
