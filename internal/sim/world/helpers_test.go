package world

import (
	"testing"

	"gridwar.gg/internal/sim/rules"
)

func testRules(t *testing.T) *rules.Ruleset {
	t.Helper()
	r, err := rules.Load("testdata/rules.yaml")
	if err != nil {
		t.Fatalf("load test ruleset: %v", err)
	}
	return r
}

// newTestWorld builds a flat 12x12 world with no deposits. Tests that
// need terrain or deposits poke the grid layers directly.
func newTestWorld(t *testing.T) *World {
	t.Helper()
	r := testRules(t)
	n := 12 * 12
	w, err := New(Config{
		Rules:   r,
		Seed:    7,
		Width:   12,
		Height:  12,
		Rubble:  make([]int, n),
		Alloy:   make([]int, n),
		Crystal: make([]int, n),
	})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func mustSpawn(t *testing.T, w *World, team Team, archetype string, loc Loc) *Unit {
	t.Helper()
	u, err := w.SpawnUnit(team, archetype, loc)
	if err != nil {
		t.Fatalf("spawn %s at %s: %v", archetype, loc, err)
	}
	return u
}
