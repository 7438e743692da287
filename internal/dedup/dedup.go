// Package dedup assigns stable integer identities to hexagon geometries.
// Downstream keyed joins and the choropleth consumer need a collision-free
// key that survives geometry serialize/parse round trips, which raw
// float comparison does not give.
package dedup

import (
	"strconv"

	"github.com/paulmach/orb"

	"github.com/citygrid/hexpoi/internal/geom"
	"github.com/citygrid/hexpoi/internal/model"
)

// Index maps canonical geometry strings to their assigned ids.
type Index struct {
	ids map[string]string
}

// AssignIDs canonicalizes each polygon and assigns ids in order of first
// appearance, starting at "0". Identical canonical strings share an id.
// The result is a pure function of the ordered input, so callers must
// fix iteration order before calling.
func AssignIDs(geometries []orb.Polygon) (*Index, []model.HexRecord) {
	idx := &Index{ids: make(map[string]string, len(geometries))}
	records := make([]model.HexRecord, 0, len(geometries))

	next := 0
	for _, g := range geometries {
		key := geom.Canonical(g)
		id, ok := idx.ids[key]
		if !ok {
			id = strconv.Itoa(next)
			idx.ids[key] = id
			next++
			records = append(records, model.HexRecord{ID: id, Geometry: g})
		}
	}
	return idx, records
}

// ID returns the id assigned to the polygon, keyed by canonical form.
func (x *Index) ID(poly orb.Polygon) (string, bool) {
	id, ok := x.ids[geom.Canonical(poly)]
	return id, ok
}

// Len reports the number of distinct geometries.
func (x *Index) Len() int { return len(x.ids) }
