// Package keys builds the Redis key namespace for cached OSM lookups.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/citygrid/hexpoi/internal/model"
)

const prefix = "hexpoi"

// Lookup keys carry a sanitized, human-readable place and tag plus an
// xxhash of the raw query text, so two places that sanitize to the same
// token still get distinct keys.
func Boundary(place string, filter model.Tag) string {
	return build("boundary", place, filter)
}

func POIs(place string, tag model.Tag) string {
	return build("pois", place, tag)
}

// PlacePattern is the SCAN MATCH pattern covering every cached lookup
// for a place, used by invalidation.
func PlacePattern(place string) string {
	return fmt.Sprintf("%s:*:%s:*", prefix, sanitize(place))
}

func build(kind, place string, tag model.Tag) string {
	raw := place + "|" + tag.String()
	sum := xxhash.Sum64String(raw)
	return fmt.Sprintf("%s:%s:%s:%s:q=%016x", prefix, kind, sanitize(place), sanitize(tag.String()), sum)
}

// sanitize keeps keys flat and readable: whitespace becomes '_', other
// non-alphanumeric runes become '-', runs collapse.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case unicode.IsSpace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '=':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
