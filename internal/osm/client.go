// Package osm fetches administrative boundaries and tagged
// points-of-interest from an OSM feature service speaking GeoJSON.
package osm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/citygrid/hexpoi/internal/model"
)

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BuildFeatureParams builds the query for the upstream features
// endpoint: a place to geocode plus one tag to match.
func BuildFeatureParams(place string, tag model.Tag) url.Values {
	params := url.Values{}
	params.Set("place", place)
	params.Set("key", tag.Key)
	params.Set("value", tag.Value)
	params.Set("format", "geojson")
	return params
}

// FetchBoundary returns the single administrative boundary whose name
// matches place exactly. Zero matches is an empty result set; more than
// one is ambiguous and is surfaced, never resolved by picking first.
func (c *Client) FetchBoundary(ctx context.Context, place string, filter model.Tag) (orb.MultiPolygon, error) {
	fc, err := c.fetch(ctx, place, filter)
	if err != nil {
		return nil, err
	}

	name := placeName(place)
	var matches []*geojson.Feature
	for _, f := range fc.Features {
		if n, _ := f.Properties["name"].(string); n == name {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("boundary %q (%s): %w", place, filter, model.ErrEmptyResultSet)
	case 1:
	default:
		return nil, fmt.Errorf("boundary %q (%s): %d matches: %w", place, filter, len(matches), model.ErrAmbiguousBoundary)
	}

	switch g := matches[0].Geometry.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("boundary %q: geometry is %s, not a polygon: %w",
			place, g.GeoJSONType(), model.ErrInvalidGeometry)
	}
}

// FetchPOIs returns every feature matching the tag within the place,
// reduced to points. Area features become their centroid. Zero features
// is reported as ErrEmptyResultSet; the pipeline recovers it as a zero
// contribution for that tag.
func (c *Client) FetchPOIs(ctx context.Context, place string, tag model.Tag) ([]model.POI, error) {
	fc, err := c.fetch(ctx, place, tag)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("pois %q (%s): %w", place, tag, model.ErrEmptyResultSet)
	}

	city := placeName(place)
	pois := make([]model.POI, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := toPoint(f.Geometry)
		if !ok {
			continue
		}
		pois = append(pois, model.POI{
			City:     city,
			Object:   tag.Key,
			Type:     tag.Value,
			Geometry: pt,
		})
	}
	return pois, nil
}

func (c *Client) fetch(ctx context.Context, place string, tag model.Tag) (*geojson.FeatureCollection, error) {
	endpoint := c.base + "/features?" + BuildFeatureParams(place, tag).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q (%s): %w", place, tag, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %q (%s): upstream status %d: %s",
			place, tag, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %q (%s): %w", place, tag, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection for %q (%s): %w", place, tag, err)
	}
	return fc, nil
}

// toPoint reduces any feature geometry to a representative point:
// points pass through, everything else collapses to its centroid.
func toPoint(g orb.Geometry) (orb.Point, bool) {
	switch t := g.(type) {
	case orb.Point:
		return t, true
	case nil:
		return orb.Point{}, false
	default:
		c, _ := planar.CentroidArea(t)
		return c, true
	}
}

// placeName is the display name of a place query, e.g.
// "Novokuznetsk, Russia" -> "Novokuznetsk".
func placeName(place string) string {
	return strings.TrimSpace(strings.SplitN(place, ",", 2)[0])
}
