package osm

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/citygrid/hexpoi/internal/model"
)

// Source is what the pipeline needs from the OSM side: one boundary per
// place and one POI batch per tag. Client implements it directly; the
// cache package wraps any Source with a read-through layer.
type Source interface {
	FetchBoundary(ctx context.Context, place string, filter model.Tag) (orb.MultiPolygon, error)
	FetchPOIs(ctx context.Context, place string, tag model.Tag) ([]model.POI, error)
}

var _ Source = (*Client)(nil)
