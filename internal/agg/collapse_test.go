package agg

import (
	"reflect"
	"testing"
)

func TestCollapse_Additivity(t *testing.T) {
	table := Aggregate(rows(
		[2]string{"0", "museum"},
		[2]string{"0", "artwork"},
		[2]string{"0", "artwork"},
		[2]string{"0", "hotel"},
	))
	out := Collapse(table, DefaultGroups())

	if got := out.Value("0", "landmark"); got != 3 {
		t.Fatalf(`landmark=%d want 3`, got)
	}
	if got := out.Value("0", "hotel"); got != 1 {
		t.Fatalf(`hotel=%d want 1`, got)
	}
}

func TestCollapse_SourceColumnsDropped(t *testing.T) {
	table := Aggregate(rows(
		[2]string{"0", "museum"},
		[2]string{"0", "viewpoint"},
		[2]string{"0", "bus_stop"},
	))
	out := Collapse(table, DefaultGroups())

	want := []string{"bus_stop", "landmark"}
	if !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns=%v want %v", out.Columns(), want)
	}
}

func TestCollapse_MissingSourcesCountZero(t *testing.T) {
	// only one of the five landmark sources observed anywhere
	table := Aggregate(rows(
		[2]string{"0", "museum"},
		[2]string{"1", "hotel"},
	))
	out := Collapse(table, DefaultGroups())

	if got := out.Value("0", "landmark"); got != 1 {
		t.Fatalf(`landmark("0")=%d want 1`, got)
	}
	// hexagon with none of the sources reads zero, not missing
	if got := out.Value("1", "landmark"); got != 0 {
		t.Fatalf(`landmark("1")=%d want 0`, got)
	}
}

// the unit-square reference scenario: 3 hotels in hexagon "0", 1 museum
// in hexagon "1"
func TestCollapse_ReferenceScenario(t *testing.T) {
	table := Aggregate(rows(
		[2]string{"0", "hotel"},
		[2]string{"0", "hotel"},
		[2]string{"0", "hotel"},
		[2]string{"1", "museum"},
	))
	out := Collapse(table, DefaultGroups())

	if got := out.Value("0", "hotel"); got != 3 {
		t.Fatalf(`row "0" hotel=%d want 3`, got)
	}
	if got := out.Value("0", "landmark"); got != 0 {
		t.Fatalf(`row "0" landmark=%d want 0`, got)
	}
	if got := out.Value("1", "hotel"); got != 0 {
		t.Fatalf(`row "1" hotel=%d want 0`, got)
	}
	if got := out.Value("1", "landmark"); got != 1 {
		t.Fatalf(`row "1" landmark=%d want 1`, got)
	}
}

func TestCollapse_EmptyGroupsPassThrough(t *testing.T) {
	table := Aggregate(rows([2]string{"0", "hotel"}))
	out := Collapse(table, Groups{})

	if !reflect.DeepEqual(out.Columns(), []string{"hotel"}) {
		t.Fatalf("columns=%v want [hotel]", out.Columns())
	}
	if got := out.Value("0", "hotel"); got != 1 {
		t.Fatalf("hotel=%d want 1", got)
	}
}

func TestCollapse_MultipleGroups(t *testing.T) {
	table := Aggregate(rows(
		[2]string{"0", "museum"},
		[2]string{"0", "bus_stop"},
		[2]string{"0", "bus_stop"},
		[2]string{"0", "company"},
	))
	groups := Groups{
		"landmark": {"artwork", "theme_park", "museum", "attraction", "viewpoint"},
		"transit":  {"bus_stop"},
	}
	out := Collapse(table, groups)

	if got := out.Value("0", "landmark"); got != 1 {
		t.Fatalf("landmark=%d want 1", got)
	}
	if got := out.Value("0", "transit"); got != 2 {
		t.Fatalf("transit=%d want 2", got)
	}
	want := []string{"company", "landmark", "transit"}
	if !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns=%v want %v", out.Columns(), want)
	}
}
