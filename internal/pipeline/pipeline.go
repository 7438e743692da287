// Package pipeline threads a boundary through tessellation, spatial
// join and aggregation into the final per-hexagon feature table. The
// whole flow is value-like and stateless across runs; everything a run
// produces hangs off its Result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/citygrid/hexpoi/internal/agg"
	"github.com/citygrid/hexpoi/internal/dedup"
	"github.com/citygrid/hexpoi/internal/join"
	"github.com/citygrid/hexpoi/internal/metrics"
	"github.com/citygrid/hexpoi/internal/model"
	"github.com/citygrid/hexpoi/internal/osm"
	"github.com/citygrid/hexpoi/internal/tessellate"
)

type Pipeline struct {
	Source         osm.Source
	Tessellator    *tessellate.Tessellator
	Resolution     int
	BoundaryFilter model.Tag
	Tags           []model.Tag
	Groups         agg.Groups
	Log            zerolog.Logger
}

// Result is everything one run produces: the deduplicated hexagon grid
// and the collapsed feature table keyed by hexagon id.
type Result struct {
	Place string
	Hexes []model.HexRecord
	Table *agg.FeatureTable
}

// Run executes the full flow for one place. Boundary and tessellation
// errors are fatal; a tag whose POI lookup comes back empty contributes
// zero counts and the run continues.
func (p *Pipeline) Run(ctx context.Context, place string) (*Result, error) {
	res, err := p.run(ctx, place)
	metrics.ObservePipelineRun(err)
	return res, err
}

func (p *Pipeline) run(ctx context.Context, place string) (*Result, error) {
	boundary, err := p.fetchBoundary(ctx, place)
	if err != nil {
		return nil, err
	}

	hexes, err := p.tessellate(boundary, place)
	if err != nil {
		return nil, err
	}

	pois, err := p.fetchPOIs(ctx, place)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows := join.Join(hexes, pois)
	metrics.ObserveStage("join", time.Since(start).Seconds())

	start = time.Now()
	table := agg.Collapse(agg.Aggregate(rows), p.Groups)
	metrics.ObserveStage("aggregate", time.Since(start).Seconds())

	p.Log.Info().
		Str("place", place).
		Int("hexagons", len(hexes)).
		Int("pois", len(pois)).
		Int("join_rows", len(rows)).
		Int("table_rows", table.Len()).
		Msg("pipeline run complete")

	return &Result{Place: place, Hexes: hexes, Table: table}, nil
}

func (p *Pipeline) fetchBoundary(ctx context.Context, place string) (orb.MultiPolygon, error) {
	start := time.Now()
	boundary, err := p.Source.FetchBoundary(ctx, place, p.BoundaryFilter)
	metrics.ObserveStage("fetch_boundary", time.Since(start).Seconds())
	metrics.ObserveUpstreamLatency("boundary", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch boundary for %q: %w", place, err)
	}
	return boundary, nil
}

func (p *Pipeline) tessellate(boundary orb.MultiPolygon, place string) ([]model.HexRecord, error) {
	start := time.Now()
	cells, err := p.Tessellator.Cover(boundary, p.Resolution)
	metrics.ObserveStage("tessellate", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("tessellate %q at res %d: %w", place, p.Resolution, err)
	}
	metrics.ObserveHexagons(len(cells))

	// Cells arrive in a fixed sorted order, so first-appearance id
	// assignment is reproducible across runs.
	geometries := make([]orb.Polygon, len(cells))
	for i, c := range cells {
		geometries[i] = orb.Polygon{c.Boundary}
	}
	_, records := dedup.AssignIDs(geometries)
	return records, nil
}

func (p *Pipeline) fetchPOIs(ctx context.Context, place string) ([]model.POI, error) {
	var all []model.POI
	for _, tag := range p.Tags {
		start := time.Now()
		pois, err := p.Source.FetchPOIs(ctx, place, tag)
		metrics.ObserveUpstreamLatency("pois", time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, model.ErrEmptyResultSet) {
				p.Log.Info().Str("place", place).Stringer("tag", tag).Msg("no features for tag, counting zero")
				continue
			}
			return nil, fmt.Errorf("fetch pois for %q tag %s: %w", place, tag, err)
		}
		all = append(all, pois...)
	}
	return all, nil
}
