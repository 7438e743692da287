package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/citygrid/hexpoi/internal/agg"
	"github.com/citygrid/hexpoi/internal/model"
	"github.com/citygrid/hexpoi/internal/tessellate"
)

type stubSource struct {
	boundary    orb.MultiPolygon
	boundaryErr error
	pois        map[string][]model.POI
	poiErr      map[string]error
}

func (s *stubSource) FetchBoundary(_ context.Context, place string, _ model.Tag) (orb.MultiPolygon, error) {
	if s.boundaryErr != nil {
		return nil, fmt.Errorf("boundary %q: %w", place, s.boundaryErr)
	}
	return s.boundary, nil
}

func (s *stubSource) FetchPOIs(_ context.Context, place string, tag model.Tag) ([]model.POI, error) {
	if err := s.poiErr[tag.String()]; err != nil {
		return nil, fmt.Errorf("pois %q (%s): %w", place, tag, err)
	}
	pois, ok := s.pois[tag.String()]
	if !ok {
		return nil, fmt.Errorf("pois %q (%s): %w", place, tag, model.ErrEmptyResultSet)
	}
	return pois, nil
}

func testPipeline(src *stubSource, tags []model.Tag) *Pipeline {
	return &Pipeline{
		Source:         src,
		Tessellator:    tessellate.New(),
		Resolution:     8,
		BoundaryFilter: model.Tag{Key: "boundary", Value: "administrative"},
		Tags:           tags,
		Groups:         agg.DefaultGroups(),
		Log:            zerolog.New(io.Discard),
	}
}

func testSquare() orb.MultiPolygon {
	return orb.MultiPolygon{{orb.Ring{
		{18.00, 59.32}, {18.12, 59.32}, {18.12, 59.38}, {18.00, 59.38}, {18.00, 59.32},
	}}}
}

func poiAt(key, value string, x, y float64) model.POI {
	return model.POI{City: "Testville", Object: key, Type: value, Geometry: orb.Point{x, y}}
}

func TestRun_EndToEnd(t *testing.T) {
	src := &stubSource{
		boundary: testSquare(),
		pois: map[string][]model.POI{
			"tourism=hotel": {
				poiAt("tourism", "hotel", 18.05, 59.35),
				poiAt("tourism", "hotel", 18.051, 59.351),
				poiAt("tourism", "hotel", 18.01, 59.33),
			},
			"tourism=museum": {
				poiAt("tourism", "museum", 18.11, 59.37),
			},
		},
	}
	tags := []model.Tag{
		{Key: "tourism", Value: "hotel"},
		{Key: "tourism", Value: "museum"},
		{Key: "tourism", Value: "attraction"}, // not in pois: empty result, recovered
	}

	res, err := testPipeline(src, tags).Run(context.Background(), "Testville")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Hexes) == 0 {
		t.Fatalf("expected hexagons")
	}
	for i, h := range res.Hexes {
		if want := fmt.Sprintf("%d", i); h.ID != want {
			t.Fatalf("hex %d id=%q want %q", i, h.ID, want)
		}
	}

	// all POIs sit inside the boundary, away from cell edges: counts
	// are conserved through join and pivot
	hotelTotal, landmarkTotal := 0, 0
	for _, id := range res.Table.IDs() {
		hotelTotal += res.Table.Value(id, "hotel")
		landmarkTotal += res.Table.Value(id, "landmark")
	}
	if hotelTotal != 3 {
		t.Fatalf("hotel total=%d want 3", hotelTotal)
	}
	if landmarkTotal != 1 {
		t.Fatalf("landmark total=%d want 1 (museum collapsed)", landmarkTotal)
	}

	for _, col := range res.Table.Columns() {
		if col == "museum" || col == "attraction" {
			t.Fatalf("source column %q must be collapsed away", col)
		}
	}

	if res.Table.Len() > len(res.Hexes) {
		t.Fatalf("table rows %d exceed hexagon count %d", res.Table.Len(), len(res.Hexes))
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	src := &stubSource{
		boundary: testSquare(),
		pois: map[string][]model.POI{
			"tourism=hotel": {poiAt("tourism", "hotel", 18.05, 59.35)},
		},
	}
	p := testPipeline(src, []model.Tag{{Key: "tourism", Value: "hotel"}})

	a, err := p.Run(context.Background(), "Testville")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := p.Run(context.Background(), "Testville")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(a.Hexes) != len(b.Hexes) {
		t.Fatalf("hex counts differ: %d vs %d", len(a.Hexes), len(b.Hexes))
	}
	for i := range a.Hexes {
		if a.Hexes[i].ID != b.Hexes[i].ID {
			t.Fatalf("hex %d id differs: %s vs %s", i, a.Hexes[i].ID, b.Hexes[i].ID)
		}
	}
	for _, id := range a.Table.IDs() {
		if a.Table.Value(id, "hotel") != b.Table.Value(id, "hotel") {
			t.Fatalf("row %s differs across runs", id)
		}
	}
}

func TestRun_AllTagsEmptyYieldsEmptyTable(t *testing.T) {
	src := &stubSource{boundary: testSquare(), pois: map[string][]model.POI{}}
	res, err := testPipeline(src, []model.Tag{{Key: "tourism", Value: "attraction"}}).
		Run(context.Background(), "Testville")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Table.Len() != 0 {
		t.Fatalf("table rows=%d want 0", res.Table.Len())
	}
	if len(res.Hexes) == 0 {
		t.Fatalf("grid must still be produced")
	}
}

func TestRun_BoundaryErrorsFatal(t *testing.T) {
	for _, sentinel := range []error{model.ErrAmbiguousBoundary, model.ErrEmptyResultSet} {
		src := &stubSource{boundaryErr: sentinel}
		_, err := testPipeline(src, nil).Run(context.Background(), "Testville")
		if !errors.Is(err, sentinel) {
			t.Fatalf("err=%v want %v", err, sentinel)
		}
	}
}

func TestRun_POILookupFailureFatal(t *testing.T) {
	src := &stubSource{
		boundary: testSquare(),
		poiErr:   map[string]error{"tourism=hotel": errors.New("upstream timeout")},
	}
	_, err := testPipeline(src, []model.Tag{{Key: "tourism", Value: "hotel"}}).
		Run(context.Background(), "Testville")
	if err == nil {
		t.Fatalf("non-empty lookup failures must be fatal")
	}
}

func TestRun_DegenerateBoundaryFatal(t *testing.T) {
	src := &stubSource{
		boundary: orb.MultiPolygon{{orb.Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}}},
	}
	_, err := testPipeline(src, nil).Run(context.Background(), "Testville")
	if !errors.Is(err, model.ErrInvalidGeometry) {
		t.Fatalf("err=%v want ErrInvalidGeometry", err)
	}
}
