// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/citygrid/hexpoi/internal/model"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	OSMBaseURL string
	RedisAddr  string
	CacheTTL   time.Duration

	Place          string
	Resolution     int
	BoundaryFilter model.Tag
	Tags           []model.Tag
	CollapseGroups map[string][]string

	OutCSV     string
	OutGeoJSON string

	Invalidation InvalidationCfg
}

// DefaultTags is the reference POI query set.
func DefaultTags() []model.Tag {
	return []model.Tag{
		{Key: "highway", Value: "bus_stop"},
		{Key: "office", Value: "company"},
		{Key: "tourism", Value: "hotel"},
		{Key: "tourism", Value: "attraction"},
		{Key: "tourism", Value: "museum"},
		{Key: "tourism", Value: "artwork"},
		{Key: "tourism", Value: "theme_park"},
		{Key: "tourism", Value: "viewpoint"},
	}
}

func FromEnv() Config {
	res := getint("H3_RES", 8)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		OSMBaseURL: getenv("OSM_BASE_URL", "http://localhost:8080/osm"),
		RedisAddr:  getenv("REDIS_ADDR", ""),
		CacheTTL:   getduration("CACHE_TTL", 15*time.Minute),

		Place:          getenv("PLACE", ""),
		Resolution:     res,
		BoundaryFilter: model.Tag{Key: "boundary", Value: "administrative"},
		Tags:           parseTags(getenv("POI_TAGS", "")),
		CollapseGroups: parseGroups(getenv("COLLAPSE_GROUPS", "")),

		OutCSV:     getenv("OUT_CSV", "features.csv"),
		OutGeoJSON: getenv("OUT_GEOJSON", "grid.geojson"),

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "osm-updates"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "hexpoi-invalidator"),
		},
	}
}

// parseTags reads "highway=bus_stop,tourism=hotel". Empty or malformed
// input falls back to the reference set.
func parseTags(s string) []model.Tag {
	if strings.TrimSpace(s) == "" {
		return DefaultTags()
	}
	var tags []model.Tag
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		tags = append(tags, model.Tag{Key: kv[0], Value: kv[1]})
	}
	if len(tags) == 0 {
		return DefaultTags()
	}
	return tags
}

// parseGroups reads "landmark=artwork|museum;transit=bus_stop".
func parseGroups(s string) map[string][]string {
	if strings.TrimSpace(s) == "" {
		return map[string][]string{
			"landmark": {"artwork", "theme_park", "museum", "attraction", "viewpoint"},
		}
	}
	groups := make(map[string][]string)
	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		var sources []string
		for _, src := range strings.Split(kv[1], "|") {
			if src = strings.TrimSpace(src); src != "" {
				sources = append(sources, src)
			}
		}
		if len(sources) > 0 {
			groups[kv[0]] = sources
		}
	}
	return groups
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
