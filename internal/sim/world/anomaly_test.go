package world

import (
	"testing"

	"gridwar.gg/internal/matchlog"
)

func TestAnomaly_GlobalAbyssDrainsDepositsAndPools(t *testing.T) {
	w := newTestWorld(t)
	cell := Loc{X: 3, Y: 3}
	w.grid.alloy[w.grid.idx(cell)] = 100
	w.grid.crystal[w.grid.idx(cell)] = 50
	w.Ledger(TeamA).Alloy = 200
	w.Ledger(TeamB).Crystal = 30

	w.applyAnomaly(AnomalyAbyss)

	// The abyss fraction is 100 permille: a tenth of everything.
	if got := w.Grid().Alloy(cell); got != 90 {
		t.Fatalf("alloy deposit = %d, want 90", got)
	}
	if got := w.Grid().Crystal(cell); got != 45 {
		t.Fatalf("crystal deposit = %d, want 45", got)
	}
	if got := w.Ledger(TeamA).Alloy; got != 180 {
		t.Fatalf("team A alloy = %d, want 180", got)
	}
	if got := w.Ledger(TeamB).Crystal; got != 27 {
		t.Fatalf("team B crystal = %d, want 27", got)
	}
}

func TestAnomaly_ChargeDestroysMostCrowdedMobiles(t *testing.T) {
	w := newTestWorld(t)
	// A cluster of three and a loner: four mobile units, charge fraction
	// 500 permille, so the two most crowded die.
	c1 := mustSpawn(t, w, TeamA, "WORKER", Loc{X: 2, Y: 2})
	c2 := mustSpawn(t, w, TeamA, "WORKER", Loc{X: 3, Y: 2})
	c3 := mustSpawn(t, w, TeamA, "WORKER", Loc{X: 2, Y: 3})
	loner := mustSpawn(t, w, TeamB, "WORKER", Loc{X: 10, Y: 10})
	base := mustSpawn(t, w, TeamA, "BASE", Loc{X: 5, Y: 5})

	w.applyAnomaly(AnomalyCharge)

	// All three cluster members tie at two friendly neighbors; the two
	// lowest ids go.
	if w.UnitByID(c1.ID) != nil || w.UnitByID(c2.ID) != nil {
		t.Fatalf("most crowded units survived the charge")
	}
	if w.UnitByID(c3.ID) == nil {
		t.Fatalf("charge killed beyond its fraction")
	}
	if w.UnitByID(loner.ID) == nil {
		t.Fatalf("charge killed the least crowded unit")
	}
	if w.UnitByID(base.ID) == nil {
		t.Fatalf("charge killed a non-mobile unit")
	}
}

func TestAnomaly_FuryDamagesStationaryOnly(t *testing.T) {
	w := newTestWorld(t)
	base := mustSpawn(t, w, TeamA, "BASE", Loc{X: 5, Y: 5}) // stationary, 100 health
	worker := mustSpawn(t, w, TeamA, "WORKER", Loc{X: 6, Y: 5})
	tower := mustSpawn(t, w, TeamB, "TOWER", Loc{X: 8, Y: 8}) // prototype

	w.applyAnomaly(AnomalyFury)

	if base.Health != 90 {
		t.Fatalf("stationary health = %d, want 90", base.Health)
	}
	if worker.Health != 30 {
		t.Fatalf("fury damaged a mobile unit: %d", worker.Health)
	}
	if tower.Health != 40 {
		t.Fatalf("fury damaged a prototype: %d", tower.Health)
	}
}

func TestAnomaly_FuryKillRecordsDeath(t *testing.T) {
	w := newTestWorld(t)
	base := mustSpawn(t, w, TeamA, "BASE", Loc{X: 5, Y: 5})
	base.Health = 5

	w.applyAnomaly(AnomalyFury)

	if w.UnitByID(base.ID) != nil {
		t.Fatalf("unit survived lethal fury")
	}
	entry := w.AdvanceRound()
	var found bool
	for _, rec := range entry.Records {
		if rec.Kind == matchlog.RecordDied && rec.Actor == base.ID && rec.Cause == matchlog.DiedByAnomaly {
			found = true
		}
	}
	if !found {
		t.Fatalf("anomaly death not recorded")
	}
}

func TestAnomaly_ScheduledDuringAdvanceRound(t *testing.T) {
	r := testRules(t)
	n := 12 * 12
	w, err := New(Config{
		Rules: r, Seed: 1, Width: 12, Height: 12,
		Rubble: make([]int, n), Alloy: make([]int, n), Crystal: make([]int, n),
		Anomalies: []AnomalyEntry{{Round: 1, Kind: AnomalyFury}},
	})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	base := mustSpawn(t, w, TeamA, "BASE", Loc{X: 5, Y: 5})

	w.AdvanceRound() // round 0: nothing scheduled
	if base.Health != 100 {
		t.Fatalf("anomaly fired early")
	}
	w.AdvanceRound() // round 1: fury
	if base.Health != 90 {
		t.Fatalf("scheduled fury did not fire: health %d", base.Health)
	}
}
