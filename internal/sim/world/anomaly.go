package world

import (
	"sort"

	"gridwar.gg/internal/matchlog"
)

// AnomalyKind names a scheduled environmental event.
type AnomalyKind string

const (
	AnomalyAbyss  AnomalyKind = "ABYSS"
	AnomalyCharge AnomalyKind = "CHARGE"
	AnomalyFury   AnomalyKind = "FURY"
)

// AnomalyEntry schedules one global anomaly. The schedule comes from the
// map file and is public information for controlling agents.
type AnomalyEntry struct {
	Round uint32      `json:"round"`
	Kind  AnomalyKind `json:"kind"`
}

// applyAnomaly runs one scheduled global anomaly. Effects land in the
// round being finalized, so their records precede the round header.
func (w *World) applyAnomaly(kind AnomalyKind) {
	switch kind {
	case AnomalyAbyss:
		w.applyAbyss(Loc{}, -1, 1000)
	case AnomalyCharge:
		w.applyCharge(1000)
	case AnomalyFury:
		w.applyFury(Loc{}, -1, 1000)
	}
}

// applyAbyss drains deposits (and, in the global form, both teams' pools)
// by the ruleset abyss fraction scaled by permille. A negative radius
// means the whole map.
func (w *World) applyAbyss(center Loc, radiusSq int, permille int) {
	frac := w.rules.Anomaly.AbyssPermille * permille / 1000
	var cells []Loc
	if radiusSq < 0 {
		for y := 0; y < w.grid.Height(); y++ {
			for x := 0; x < w.grid.Width(); x++ {
				cells = append(cells, Loc{X: x, Y: y})
			}
		}
	} else {
		cells = w.grid.LocationsWithinSq(center, radiusSq)
	}
	for _, l := range cells {
		if d := w.grid.Alloy(l) * frac / 1000; d > 0 {
			w.grid.addAlloy(l, -d)
			w.log.AppendDeposit(l.X, l.Y, ResourceAlloy, -d)
		}
		if d := w.grid.Crystal(l) * frac / 1000; d > 0 {
			w.grid.addCrystal(l, -d)
			w.log.AppendDeposit(l.X, l.Y, ResourceCrystal, -d)
		}
	}
	if radiusSq < 0 {
		for _, t := range []Team{TeamA, TeamB} {
			led := w.teams[t]
			led.addAlloy(-led.Alloy * frac / 1000)
			led.addCrystal(-led.Crystal * frac / 1000)
		}
	}
}

// applyCharge destroys the mobile units with the most friendly neighbors.
// The fraction taken is the ruleset charge fraction scaled by permille;
// ties break toward the lower id so runs stay reproducible.
func (w *World) applyCharge(permille int) {
	type scored struct {
		u *Unit
		n int
	}
	var mobile []scored
	for _, u := range w.unitsInOrder() {
		if u.Mode != ModeMobile {
			continue
		}
		n := 0
		for _, v := range w.grid.UnitsWithinSq(u.Loc, u.Archetype.VisionRadiusSq) {
			if v != u && v.Team == u.Team {
				n++
			}
		}
		mobile = append(mobile, scored{u: u, n: n})
	}
	sort.SliceStable(mobile, func(i, j int) bool {
		if mobile[i].n != mobile[j].n {
			return mobile[i].n > mobile[j].n
		}
		return mobile[i].u.ID < mobile[j].u.ID
	})
	frac := w.rules.Anomaly.ChargePermille * permille / 1000
	kill := len(mobile) * frac / 1000
	for i := 0; i < kill; i++ {
		u := mobile[i].u
		w.log.AppendDied(u.ID, matchlog.DiedByAnomaly)
		w.DestroyUnit(u.ID)
	}
}

// applyLocalCharge is the sage-cast charge: it damages enemy mobile
// units within the caster's action radius by a fraction of max health,
// where the global form destroys crowded units outright.
func (w *World) applyLocalCharge(caster *Unit, permille int) {
	frac := w.rules.Anomaly.FuryDamagePermille * permille / 1000
	for _, u := range w.grid.UnitsWithinSq(caster.Loc, caster.Archetype.ActionRadiusSq) {
		if u.Team == caster.Team || u.Mode != ModeMobile {
			continue
		}
		dmg := w.rules.MaxHealth(u.Archetype, u.Level) * frac / 1000
		if dmg <= 0 {
			continue
		}
		u.Health -= dmg
		if u.Health <= 0 {
			w.log.AppendDied(u.ID, matchlog.DiedByAnomaly)
			w.DestroyUnit(u.ID)
		}
	}
}

// applyFury damages stationary-mode units by a fraction of their max
// health. A negative radius means the whole map.
func (w *World) applyFury(center Loc, radiusSq int, permille int) {
	frac := w.rules.Anomaly.FuryDamagePermille * permille / 1000
	var targets []*Unit
	if radiusSq < 0 {
		targets = w.unitsInOrder()
	} else {
		targets = w.grid.UnitsWithinSq(center, radiusSq)
	}
	for _, u := range targets {
		if u.Mode != ModeStationary {
			continue
		}
		dmg := w.rules.MaxHealth(u.Archetype, u.Level) * frac / 1000
		if dmg <= 0 {
			continue
		}
		u.Health -= dmg
		if u.Health <= 0 {
			w.log.AppendDied(u.ID, matchlog.DiedByAnomaly)
			w.DestroyUnit(u.ID)
		}
	}
}
