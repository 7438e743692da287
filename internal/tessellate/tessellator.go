// Package tessellate covers a boundary polygon with H3 hexagon cells at
// a fixed resolution.
package tessellate

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	h3 "github.com/uber/h3-go/v4"

	"github.com/citygrid/hexpoi/internal/geom"
	"github.com/citygrid/hexpoi/internal/model"
)

const boundaryCacheSize = 4096

type Tessellator struct {
	boundaries *lru.Cache[string, orb.Ring]
}

func New() *Tessellator {
	c, _ := lru.New[string, orb.Ring](boundaryCacheSize)
	return &Tessellator{boundaries: c}
}

// Cover returns the cells whose union covers the boundary at the given
// resolution, each with its closed (lon,lat) boundary loop. The result
// is sorted by cell index and de-duplicated so identical inputs always
// produce identical output; dedup id assignment depends on that.
func (t *Tessellator) Cover(boundary orb.MultiPolygon, res int) ([]model.HexCell, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	if len(boundary) == 0 {
		return nil, fmt.Errorf("empty boundary: %w", model.ErrInvalidGeometry)
	}

	seen := make(map[string]struct{})
	var indexes []string
	for pi, poly := range boundary {
		if err := validatePolygon(poly); err != nil {
			return nil, fmt.Errorf("boundary polygon %d: %w", pi, err)
		}
		gp := h3.GeoPolygon{GeoLoop: toLoop(poly[0])}
		for i := 1; i < len(poly); i++ {
			gp.Holes = append(gp.Holes, toLoop(poly[i]))
		}
		cells, err := h3.PolygonToCells(gp, res)
		if err != nil {
			return nil, fmt.Errorf("h3 polyfill res %d: %w", res, err)
		}
		for _, c := range cells {
			s := c.String()
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			indexes = append(indexes, s)
		}
	}
	sort.Strings(indexes)

	out := make([]model.HexCell, 0, len(indexes))
	for _, idx := range indexes {
		ring, err := t.CellBoundary(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, model.HexCell{Index: idx, Boundary: ring})
	}
	return out, nil
}

// CellBoundary returns the cell's closed boundary loop in (lon,lat)
// order. H3 emits open loops in (lat,lng) order, so the loop is closed
// here and the axis swap goes through the normalizer like every other
// hand-off in the pipeline.
func (t *Tessellator) CellBoundary(index string) (orb.Ring, error) {
	if ring, ok := t.boundaries.Get(index); ok {
		return ring, nil
	}

	var cell h3.Cell
	if err := cell.UnmarshalText([]byte(index)); err != nil {
		return nil, fmt.Errorf("invalid h3 index %q: %w", index, model.ErrInvalidGeometry)
	}
	if !cell.IsValid() {
		return nil, fmt.Errorf("invalid h3 index %q: %w", index, model.ErrInvalidGeometry)
	}
	cb, err := cell.Boundary()
	if err != nil {
		return nil, fmt.Errorf("h3 boundary for %q: %w", index, err)
	}

	native := make(orb.Ring, 0, len(cb)+1)
	for _, v := range cb {
		native = append(native, orb.Point{v.Lat, v.Lng})
	}
	native = append(native, native[0])

	ring, err := geom.NormalizeRing(native, true)
	if err != nil {
		return nil, fmt.Errorf("normalize boundary of %q: %w", index, err)
	}
	t.boundaries.Add(index, ring)
	return ring, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

// A usable outer ring needs at least 3 distinct vertices and non-zero
// area; anything less fails fast before tessellation is attempted.
func validatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 || len(poly[0]) < 4 {
		return fmt.Errorf("outer ring has < 4 vertices: %w", model.ErrInvalidGeometry)
	}
	outer := poly[0]
	distinct := make(map[orb.Point]struct{}, len(outer))
	for _, p := range outer[:len(outer)-1] {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("outer ring has %d distinct vertices: %w", len(distinct), model.ErrInvalidGeometry)
	}
	if planar.Area(outer) == 0 {
		return fmt.Errorf("zero-area outer ring: %w", model.ErrInvalidGeometry)
	}
	return nil
}

// Convert a closed (lon,lat) ring to an h3.GeoLoop, dropping the
// duplicated closing vertex H3 does not want.
func toLoop(ring orb.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, p := range ring {
		loop = append(loop, h3.LatLng{Lat: p.Lat(), Lng: p.Lon()})
	}
	if len(loop) >= 2 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	return loop
}
