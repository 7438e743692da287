package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders the hexagon grid for the choropleth
// consumer: one feature per hexagon, feature id equal to the table's
// hexagon id, count columns as properties. Hexagons that matched no
// POIs are present with all-zero counts so the map has no holes; that
// is this exporter's explicit completion of the core's drop policy.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	ids := make([]string, len(r.Hexes))
	for i, h := range r.Hexes {
		ids[i] = h.ID
	}
	table := r.Table.Complete(ids)

	fc := geojson.NewFeatureCollection()
	for _, h := range r.Hexes {
		f := geojson.NewFeature(orb.Geometry(h.Geometry))
		f.ID = h.ID
		f.Properties["id"] = h.ID
		for _, col := range table.Columns() {
			f.Properties[col] = table.Value(h.ID, col)
		}
		fc.Append(f)
	}
	return fc
}

// WriteCSV writes the persisted artifact: a header row of "id" plus the
// count columns, then one row per hexagon present in the table.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	columns := r.Table.Columns()
	header := append([]string{"id"}, columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, id := range r.Table.IDs() {
		row := make([]string, 0, len(header))
		row = append(row, id)
		for _, col := range columns {
			row = append(row, strconv.Itoa(r.Table.Value(id, col)))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
