// Package model defines core domain types shared across the pipeline.
package model

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidGeometry marks a degenerate boundary (too few distinct
	// vertices or zero area). Fatal to the run.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEmptyResultSet marks an external lookup that returned zero
	// features. Recovered per tag as a zero contribution; fatal for the
	// boundary lookup.
	ErrEmptyResultSet = errors.New("empty result set")

	// ErrAmbiguousBoundary marks a boundary lookup that matched more than
	// one administrative area. Surfaced to the caller, never auto-resolved.
	ErrAmbiguousBoundary = errors.New("ambiguous boundary")

	// ErrCoordinateOrderMismatch marks coordinates outside valid lon/lat
	// ranges after normalization, i.e. a missed or spurious axis swap.
	ErrCoordinateOrderMismatch = errors.New("coordinate order mismatch")
)

// Tag is one OSM key/value query, e.g. {Key: "tourism", Value: "hotel"}.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string {
	return fmt.Sprintf("%s=%s", t.Key, t.Value)
}

// HexCell is a tessellation cell: the opaque H3 index plus its boundary
// loop already normalized to (lon,lat) order and closed.
type HexCell struct {
	Index    string
	Boundary orb.Ring
}

// HexRecord is a canonicalized hexagon: a closed polygon in (lon,lat)
// order and the deterministic id assigned after geometry dedup. IDs are
// rendered as strings ("0", "1", ...) to match the GeoJSON id contract.
type HexRecord struct {
	ID       string
	Geometry orb.Polygon
}

// POI is one point of interest. Area features are reduced to their
// centroid before they reach the core.
type POI struct {
	City     string
	Object   string // OSM tag key, e.g. "tourism"
	Type     string // OSM tag value, e.g. "hotel"
	Geometry orb.Point
}

// Category is the label POIs are grouped under during aggregation.
func (p POI) Category() string { return p.Type }

// JoinRow associates one hexagon with one POI contained in it. Hexagons
// with no intersecting POIs produce no rows.
type JoinRow struct {
	HexID    string
	Category string
}
