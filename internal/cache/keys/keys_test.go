package keys

import (
	"strings"
	"testing"

	"github.com/citygrid/hexpoi/internal/model"
)

func TestKeys_DistinctPerKindPlaceAndTag(t *testing.T) {
	hotel := model.Tag{Key: "tourism", Value: "hotel"}
	museum := model.Tag{Key: "tourism", Value: "museum"}

	seen := map[string]string{}
	for name, key := range map[string]string{
		"pois a hotel":  POIs("Town A", hotel),
		"pois a museum": POIs("Town A", museum),
		"pois b hotel":  POIs("Town B", hotel),
		"boundary a":    Boundary("Town A", model.Tag{Key: "boundary", Value: "administrative"}),
	} {
		if prev, dup := seen[key]; dup {
			t.Fatalf("key collision between %q and %q: %s", prev, name, key)
		}
		seen[key] = name
	}
}

func TestKeys_SanitizedButHashDisambiguates(t *testing.T) {
	tag := model.Tag{Key: "tourism", Value: "hotel"}
	// both sanitize to the same token but must not collide
	a := POIs("Town/A", tag)
	b := POIs("Town+A", tag)
	if a == b {
		t.Fatalf("sanitize collision not covered by hash: %s", a)
	}
	if strings.ContainsAny(a, " /+") {
		t.Fatalf("unsanitized characters in key %q", a)
	}
}

func TestPlacePattern_MatchesBothKinds(t *testing.T) {
	pattern := PlacePattern("Town A")
	if !strings.HasPrefix(pattern, "hexpoi:*:Town_A:") {
		t.Fatalf("pattern=%q", pattern)
	}

	tag := model.Tag{Key: "tourism", Value: "hotel"}
	for _, key := range []string{POIs("Town A", tag), Boundary("Town A", tag)} {
		// the pattern's fixed segments must appear in the key
		if !strings.HasPrefix(key, "hexpoi:") || !strings.Contains(key, ":Town_A:") {
			t.Fatalf("key %q would not match place pattern %q", key, pattern)
		}
	}
}

func TestSanitize_CollapsesRuns(t *testing.T) {
	got := sanitize("Nowy   Город // x")
	if strings.Contains(got, "  ") || strings.Contains(got, "--") || strings.Contains(got, "__") {
		t.Fatalf("runs not collapsed: %q", got)
	}
}
