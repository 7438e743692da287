// Package agg turns join rows into the wide per-hexagon feature table
// and collapses fine-grained categories into derived features.
package agg

import (
	"sort"
	"strconv"

	"github.com/citygrid/hexpoi/internal/model"
)

// FeatureTable is the pipeline's terminal artifact: one row per hexagon
// id, one integer count column per category, zero where absent.
type FeatureTable struct {
	columns []string
	rows    map[string]map[string]int
}

// Aggregate groups rows by (hexagon id, category), counts, and pivots
// wide. Every category observed anywhere becomes a column; a hexagon
// missing a category reads as 0. Hexagons that produced no join rows at
// all are absent entirely, inherited from the join's drop policy;
// callers needing the full hexagon universe use Complete.
func Aggregate(rows []model.JoinRow) *FeatureTable {
	colSet := make(map[string]struct{})
	t := &FeatureTable{rows: make(map[string]map[string]int)}

	for _, r := range rows {
		colSet[r.Category] = struct{}{}
		row, ok := t.rows[r.HexID]
		if !ok {
			row = make(map[string]int)
			t.rows[r.HexID] = row
		}
		row[r.Category]++
	}

	t.columns = make([]string, 0, len(colSet))
	for c := range colSet {
		t.columns = append(t.columns, c)
	}
	sort.Strings(t.columns)
	return t
}

// Columns returns the category columns in their fixed sorted order.
func (t *FeatureTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// IDs returns the hexagon ids present in the table, numerically sorted
// where the ids parse as integers.
func (t *FeatureTable) IDs() []string {
	out := make([]string, 0, len(t.rows))
	for id := range t.rows {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// Value reads one cell; absent rows and columns read as 0.
func (t *FeatureTable) Value(id, column string) int {
	return t.rows[id][column]
}

// Has reports whether a row exists for the id.
func (t *FeatureTable) Has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// Len reports the number of hexagon rows.
func (t *FeatureTable) Len() int { return len(t.rows) }

// Complete returns a copy extended with an all-zero row for every id in
// the universe not already present. The core keeps the drop-on-empty
// policy; a choropleth consumer that wants every hexagon drawn re-joins
// against the full id set through this.
func (t *FeatureTable) Complete(ids []string) *FeatureTable {
	out := t.clone()
	for _, id := range ids {
		if _, ok := out.rows[id]; !ok {
			out.rows[id] = make(map[string]int)
		}
	}
	return out
}

func (t *FeatureTable) clone() *FeatureTable {
	out := &FeatureTable{
		columns: make([]string, len(t.columns)),
		rows:    make(map[string]map[string]int, len(t.rows)),
	}
	copy(out.columns, t.columns)
	for id, row := range t.rows {
		nr := make(map[string]int, len(row))
		for c, v := range row {
			nr[c] = v
		}
		out.rows[id] = nr
	}
	return out
}
