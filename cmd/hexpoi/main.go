// Command hexpoi runs the tessellation and aggregation pipeline once
// for a place and writes the feature table and hexagon grid artifacts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/citygrid/hexpoi/internal/agg"
	"github.com/citygrid/hexpoi/internal/cache"
	"github.com/citygrid/hexpoi/internal/cache/redisstore"
	"github.com/citygrid/hexpoi/internal/config"
	"github.com/citygrid/hexpoi/internal/httpclient"
	"github.com/citygrid/hexpoi/internal/logger"
	"github.com/citygrid/hexpoi/internal/osm"
	"github.com/citygrid/hexpoi/internal/pipeline"
	"github.com/citygrid/hexpoi/internal/tessellate"
)

var Version = "dev"

func main() {
	cfg := config.FromEnv()
	flag.StringVar(&cfg.Place, "place", cfg.Place, "administrative area to process")
	flag.IntVar(&cfg.Resolution, "res", cfg.Resolution, "H3 resolution (0..15)")
	flag.StringVar(&cfg.OSMBaseURL, "osm", cfg.OSMBaseURL, "OSM feature service base URL")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the lookup cache (empty disables)")
	flag.StringVar(&cfg.OutCSV, "out-csv", cfg.OutCSV, "feature table output path")
	flag.StringVar(&cfg.OutGeoJSON, "out-geojson", cfg.OutGeoJSON, "hexagon grid output path")
	flag.BoolVar(&cfg.LogConsole, "console", cfg.LogConsole, "human-readable log output")
	flag.Parse()

	log := logger.Build(logger.Config{Level: cfg.LogLevel, Console: cfg.LogConsole, Component: "hexpoi"}, nil)

	if cfg.Place == "" {
		log.Fatal().Msg("place is required (flag -place or env PLACE)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source osm.Source = osm.New(cfg.OSMBaseURL, httpclient.NewOutbound())
	if cfg.RedisAddr != "" {
		store, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, lookups uncached")
		} else {
			defer func() { _ = store.Close() }()
			source = cache.NewSource(source, store, cfg.CacheTTL, log)
		}
	}

	pipe := &pipeline.Pipeline{
		Source:         source,
		Tessellator:    tessellate.New(),
		Resolution:     cfg.Resolution,
		BoundaryFilter: cfg.BoundaryFilter,
		Tags:           cfg.Tags,
		Groups:         agg.Groups(cfg.CollapseGroups),
		Log:            log,
	}

	log.Info().Str("place", cfg.Place).Int("res", cfg.Resolution).Str("version", Version).Msg("starting run")

	res, err := pipe.Run(logger.WithPlace(ctx, cfg.Place), cfg.Place)
	if err != nil {
		log.Fatal().Err(err).Str("place", cfg.Place).Msg("pipeline failed")
	}

	if err := writeCSV(res, cfg.OutCSV); err != nil {
		log.Fatal().Err(err).Str("path", cfg.OutCSV).Msg("write feature table")
	}
	if err := writeGeoJSON(res, cfg.OutGeoJSON); err != nil {
		log.Fatal().Err(err).Str("path", cfg.OutGeoJSON).Msg("write hexagon grid")
	}

	log.Info().
		Int("hexagons", len(res.Hexes)).
		Int("table_rows", res.Table.Len()).
		Str("csv", cfg.OutCSV).
		Str("geojson", cfg.OutGeoJSON).
		Msg("run complete")
}

func writeCSV(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return res.WriteCSV(f)
}

func writeGeoJSON(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(res.FeatureCollection())
}
