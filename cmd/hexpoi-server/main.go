// Command hexpoi-server serves hexagon feature tables and grids over
// HTTP, with a Redis lookup cache and optional Kafka-driven
// invalidation.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/citygrid/hexpoi/internal/agg"
	"github.com/citygrid/hexpoi/internal/cache"
	"github.com/citygrid/hexpoi/internal/cache/redisstore"
	"github.com/citygrid/hexpoi/internal/config"
	"github.com/citygrid/hexpoi/internal/httpclient"
	"github.com/citygrid/hexpoi/internal/invalidation/kafkaconsumer"
	"github.com/citygrid/hexpoi/internal/logger"
	"github.com/citygrid/hexpoi/internal/osm"
	"github.com/citygrid/hexpoi/internal/pipeline"
	"github.com/citygrid/hexpoi/internal/server"
	"github.com/citygrid/hexpoi/internal/tessellate"
)

var Version = "dev"

func main() {
	cfg := config.FromEnv()
	log := logger.Build(logger.Config{Level: cfg.LogLevel, Console: cfg.LogConsole, Component: "hexpoi-server"}, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source osm.Source = osm.New(cfg.OSMBaseURL, httpclient.NewOutbound())
	var cached *cache.Source
	if cfg.RedisAddr != "" {
		store, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, lookups uncached")
		} else {
			defer func() { _ = store.Close() }()
			cached = cache.NewSource(source, store, cfg.CacheTTL, log)
			source = cached
		}
	}

	if cfg.Invalidation.Enabled {
		if cached == nil {
			log.Warn().Msg("invalidation enabled without a cache, skipping consumer")
		} else {
			consumer := kafkaconsumer.New(
				kafkaconsumer.ConfigFromEnvValues(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
				cached,
				log,
			)
			go func() {
				if err := consumer.Start(ctx); err != nil {
					log.Error().Err(err).Msg("invalidation consumer stopped")
				}
			}()
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

	log.Info().Str("addr", cfg.Addr).Int("res", cfg.Resolution).Str("version", Version).Msg("starting server")

	if err := server.New(cfg, pipe, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
