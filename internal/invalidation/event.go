// Package invalidation defines the upstream-edit events that expire
// cached OSM lookups.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event announces that OSM data for a place changed upstream. The next
// pipeline run for that place must refetch instead of reading the
// cache.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Place   string    `json:"place"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Place) == "" {
		return fmt.Errorf("place is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
