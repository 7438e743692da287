// Package cache provides a read-through Redis cache over OSM lookups.
// Boundary and POI fetches are slow upstream calls; their GeoJSON
// payloads cache well and invalidate by place when upstream data edits
// arrive. Cache failures degrade to a direct fetch, never to a run
// failure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/citygrid/hexpoi/internal/cache/keys"
	"github.com/citygrid/hexpoi/internal/cache/redisstore"
	"github.com/citygrid/hexpoi/internal/metrics"
	"github.com/citygrid/hexpoi/internal/model"
	"github.com/citygrid/hexpoi/internal/osm"
)

type Source struct {
	next  osm.Source
	store *redisstore.Store
	ttl   time.Duration
	log   zerolog.Logger
}

func NewSource(next osm.Source, store *redisstore.Store, ttl time.Duration, log zerolog.Logger) *Source {
	return &Source{next: next, store: store, ttl: ttl, log: log}
}

var _ osm.Source = (*Source)(nil)

func (s *Source) FetchBoundary(ctx context.Context, place string, filter model.Tag) (orb.MultiPolygon, error) {
	key := keys.Boundary(place, filter)

	if raw := s.get(ctx, key, "boundary"); raw != nil {
		g, err := geojson.UnmarshalGeometry(raw)
		if err == nil {
			if mp, ok := g.Geometry().(orb.MultiPolygon); ok {
				return mp, nil
			}
		}
		s.log.Warn().Str("key", key).Msg("discarding undecodable cached boundary")
	}

	mp, err := s.next.FetchBoundary(ctx, place, filter)
	if err != nil {
		return nil, err
	}
	if raw, err := geojson.NewGeometry(mp).MarshalJSON(); err == nil {
		s.set(ctx, key, raw)
	}
	return mp, nil
}

func (s *Source) FetchPOIs(ctx context.Context, place string, tag model.Tag) ([]model.POI, error) {
	key := keys.POIs(place, tag)

	if raw := s.get(ctx, key, "pois"); raw != nil {
		var pois []model.POI
		if err := json.Unmarshal(raw, &pois); err == nil {
			return pois, nil
		}
		s.log.Warn().Str("key", key).Msg("discarding undecodable cached pois")
	}

	pois, err := s.next.FetchPOIs(ctx, place, tag)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(pois); err == nil {
		s.set(ctx, key, raw)
	}
	return pois, nil
}

func (s *Source) get(ctx context.Context, key, kind string) []byte {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		metrics.IncLookupCache(kind, "error")
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through")
		return nil
	}
	if raw == nil {
		metrics.IncLookupCache(kind, "miss")
		return nil
	}
	metrics.IncLookupCache(kind, "hit")
	return raw
}

func (s *Source) set(ctx context.Context, key string, raw []byte) {
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// InvalidatePlace drops every cached lookup for the place.
func (s *Source) InvalidatePlace(ctx context.Context, place string) (int, error) {
	n, err := s.store.DeleteByPattern(ctx, keys.PlacePattern(place))
	if err != nil {
		return n, fmt.Errorf("invalidate %q: %w", place, err)
	}
	return n, nil
}
