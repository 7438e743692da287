package dedup

import (
	"testing"

	"github.com/paulmach/orb"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}
}

func TestAssignIDs_FirstAppearanceOrder(t *testing.T) {
	geoms := []orb.Polygon{square(0, 0, 1), square(2, 0, 1), square(4, 0, 1)}
	_, records := AssignIDs(geoms)

	if len(records) != 3 {
		t.Fatalf("records=%d want 3", len(records))
	}
	for i, r := range records {
		if want := []string{"0", "1", "2"}[i]; r.ID != want {
			t.Fatalf("record %d id=%q want %q", i, r.ID, want)
		}
	}
}

func TestAssignIDs_DuplicatesShareID(t *testing.T) {
	a := square(0, 0, 1)
	b := square(2, 0, 1)
	idx, records := AssignIDs([]orb.Polygon{a, b, a, b, a})

	if idx.Len() != 2 {
		t.Fatalf("distinct=%d want 2", idx.Len())
	}
	if len(records) != 2 {
		t.Fatalf("records=%d want 2", len(records))
	}

	idA, ok := idx.ID(a)
	if !ok || idA != "0" {
		t.Fatalf("id(a)=%q,%v want \"0\",true", idA, ok)
	}
	idB, ok := idx.ID(b)
	if !ok || idB != "1" {
		t.Fatalf("id(b)=%q,%v want \"1\",true", idB, ok)
	}
}

func TestAssignIDs_DeterministicAcrossCalls(t *testing.T) {
	geoms := []orb.Polygon{square(0, 0, 1), square(2, 0, 1), square(0, 0, 1), square(4, 0, 1)}

	first, _ := AssignIDs(geoms)
	second, _ := AssignIDs(geoms)

	for _, g := range geoms {
		a, okA := first.ID(g)
		b, okB := second.ID(g)
		if !okA || !okB || a != b {
			t.Fatalf("unstable id for %v: %q vs %q", g, a, b)
		}
	}
}

func TestAssignIDs_NoCollisions(t *testing.T) {
	var geoms []orb.Polygon
	for i := 0; i < 50; i++ {
		geoms = append(geoms, square(float64(i)*2, 0, 1))
	}
	idx, records := AssignIDs(geoms)

	if idx.Len() != 50 {
		t.Fatalf("distinct=%d want 50", idx.Len())
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			t.Fatalf("id %q assigned twice", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
}

func TestAssignIDs_SubPrecisionNoiseDedups(t *testing.T) {
	a := square(18.05, 59.33, 0.01)
	noisy := square(18.05+1e-9, 59.33, 0.01)

	idx, _ := AssignIDs([]orb.Polygon{a, noisy})
	if idx.Len() != 1 {
		t.Fatalf("distinct=%d want 1: sub-precision noise must dedup", idx.Len())
	}
}

func TestAssignIDs_UnknownGeometry(t *testing.T) {
	idx, _ := AssignIDs([]orb.Polygon{square(0, 0, 1)})
	if _, ok := idx.ID(square(9, 9, 1)); ok {
		t.Fatalf("unknown geometry must not resolve to an id")
	}
}

func TestAssignIDs_Empty(t *testing.T) {
	idx, records := AssignIDs(nil)
	if idx.Len() != 0 || len(records) != 0 {
		t.Fatalf("empty input: distinct=%d records=%d want 0,0", idx.Len(), len(records))
	}
}
