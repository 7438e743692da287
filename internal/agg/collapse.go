package agg

import "sort"

// Groups declares derived features: each name maps to the source
// category columns summed into it.
type Groups map[string][]string

// DefaultGroups collapses the sightseeing subtypes into one landmark
// feature.
func DefaultGroups() Groups {
	return Groups{
		"landmark": {"artwork", "theme_park", "museum", "attraction", "viewpoint"},
	}
}

// Collapse sums each group's source columns row-wise into a derived
// column and drops the sources. A row missing a source category
// contributes 0 for it; the zero-fill happens before summation so one
// absent subtype never corrupts the row. Source columns never observed
// in the table at all also contribute 0.
func Collapse(t *FeatureTable, groups Groups) *FeatureTable {
	dropped := make(map[string]struct{})
	for _, sources := range groups {
		for _, s := range sources {
			dropped[s] = struct{}{}
		}
	}

	out := &FeatureTable{rows: make(map[string]map[string]int, len(t.rows))}
	for _, c := range t.columns {
		if _, drop := dropped[c]; !drop {
			out.columns = append(out.columns, c)
		}
	}
	for name := range groups {
		out.columns = append(out.columns, name)
	}
	sort.Strings(out.columns)

	for id, row := range t.rows {
		nr := make(map[string]int, len(out.columns))
		for c, v := range row {
			if _, drop := dropped[c]; !drop {
				nr[c] = v
			}
		}
		for name, sources := range groups {
			sum := 0
			for _, s := range sources {
				sum += row[s]
			}
			nr[name] = sum
		}
		out.rows[id] = nr
	}
	return out
}
