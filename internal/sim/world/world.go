// Package world implements the authoritative match state: the grid, the
// unit registry, the team ledgers, and the round lifecycle. Rule checks
// for unit actions live in Controller; the World offers only the
// primitive mutations those checks guard.
package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand"
	"sort"

	"gridwar.gg/internal/matchlog"
	"gridwar.gg/internal/sim/rules"
)

// Names of the two map resources as they appear in log records.
const (
	ResourceAlloy   = "alloy"
	ResourceCrystal = "crystal"
)

// Config carries everything needed to construct a deterministic world.
type Config struct {
	Rules *rules.Ruleset
	Seed  int64

	Width  int
	Height int
	// Per-cell layers in row-major order, all Width*Height long.
	Rubble  []int
	Alloy   []int
	Crystal []int

	Anomalies []AnomalyEntry
}

// World is single-owner state: exactly one goroutine may drive it, and
// unit turns must be strictly sequential (see the match scheduler).
type World struct {
	rules *rules.Ruleset
	grid  *Grid
	rng   *rand.Rand

	round  uint32
	units  map[int]*Unit
	teams  [2]*Ledger
	nextID int

	schedule []AnomalyEntry

	log *matchlog.Log
}

func New(cfg Config) (*World, error) {
	grid, err := NewGrid(cfg.Width, cfg.Height, cfg.Rubble, cfg.Alloy, cfg.Crystal)
	if err != nil {
		return nil, err
	}
	w := &World{
		rules:    cfg.Rules,
		grid:     grid,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		units:    map[int]*Unit{},
		nextID:   1,
		schedule: append([]AnomalyEntry(nil), cfg.Anomalies...),
		log:      matchlog.New(),
	}
	sort.SliceStable(w.schedule, func(i, j int) bool { return w.schedule[i].Round < w.schedule[j].Round })
	w.teams[TeamA] = newLedger(cfg.Rules.SharedArray.Length)
	w.teams[TeamB] = newLedger(cfg.Rules.SharedArray.Length)
	return w, nil
}

func (w *World) Rules() *rules.Ruleset { return w.rules }
func (w *World) Grid() *Grid           { return w.grid }
func (w *World) Round() uint32         { return w.round }
func (w *World) Log() *matchlog.Log    { return w.log }

// Ledger returns the shared state of a team.
func (w *World) Ledger(t Team) *Ledger { return w.teams[t] }

// RNG is the match's single seeded generator. Controlling agents that
// want randomness must draw from it, in activation order, so that a
// replay with the same seed makes the same draws.
func (w *World) RNG() *rand.Rand { return w.rng }

// AnomalySchedule returns a copy of the full schedule.
func (w *World) AnomalySchedule() []AnomalyEntry {
	return append([]AnomalyEntry(nil), w.schedule...)
}

// UnitByID returns the live unit with the given id, or nil.
func (w *World) UnitByID(id int) *Unit { return w.units[id] }

// UnitCount returns the number of live units on a team.
func (w *World) UnitCount(t Team) int {
	n := 0
	for _, u := range w.units {
		if u.Team == t {
			n++
		}
	}
	return n
}

// unitsInOrder returns all live units in ascending id order, the only
// iteration order the sim is allowed to observe.
func (w *World) unitsInOrder() []*Unit {
	ids := make([]int, 0, len(w.units))
	for id := range w.units {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.units[id])
	}
	return out
}

// LiveUnitIDs returns the ids of all live units in ascending order.
func (w *World) LiveUnitIDs() []int {
	ids := make([]int, 0, len(w.units))
	for id := range w.units {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SpawnUnit creates a unit at the location and registers it in the unit
// registry and the grid. The caller logs why the spawn happened.
func (w *World) SpawnUnit(team Team, archetype string, loc Loc) (*Unit, error) {
	a, ok := w.rules.Archetypes[archetype]
	if !ok {
		return nil, gameErrorf(ErrInvalidArgument, "unknown archetype %q", archetype)
	}
	if !w.grid.OnMap(loc) {
		return nil, gameErrorf(ErrOutOfRange, "spawn location %s is off the map", loc)
	}
	if w.grid.UnitAt(loc) != nil {
		return nil, gameErrorf(ErrOccupied, "spawn location %s is occupied", loc)
	}
	u := &Unit{
		ID:        w.nextID,
		Team:      team,
		Archetype: a,
		Mode:      spawnModeFor(a),
		Loc:       loc,
		Level:     1,
	}
	u.Health = w.rules.MaxHealth(a, u.Level)
	if u.Mode == ModePrototype {
		u.Health = u.Health * w.rules.PrototypeHealthPermille / 1000
		if u.Health < 1 {
			u.Health = 1
		}
	}
	w.nextID++
	w.units[u.ID] = u
	w.grid.place(u, loc)
	return u, nil
}

// DestroyUnit removes a unit from every index, atomically from the
// caller's point of view. It is an idempotent no-op for ids that are
// already gone, and it does not log: callers record the cause of death
// before destroying.
func (w *World) DestroyUnit(id int) {
	u, ok := w.units[id]
	if !ok {
		return
	}
	w.grid.remove(u, u.Loc)
	delete(w.units, id)
}

// MoveUnit swaps grid occupancy only; updating the unit's own location
// field is the caller's job. The split keeps the ordering of index and
// entity updates explicit for determinism.
func (w *World) MoveUnit(from, to Loc) error {
	u := w.grid.UnitAt(from)
	if u == nil {
		return gameErrorf(ErrNoUnitThere, "no unit at %s", from)
	}
	if w.grid.UnitAt(to) != nil {
		return gameErrorf(ErrOccupied, "%s is occupied", to)
	}
	w.grid.remove(u, from)
	w.grid.place(u, to)
	return nil
}

// mineAlloy depletes a cell by up to amount and credits the team pool,
// returning the amount actually mined (clamped at the deposit).
func (w *World) mineAlloy(t Team, loc Loc, amount int) int {
	have := w.grid.Alloy(loc)
	if amount > have {
		amount = have
	}
	if amount <= 0 {
		return 0
	}
	w.grid.addAlloy(loc, -amount)
	w.teams[t].addAlloy(amount)
	return amount
}

func (w *World) mineCrystal(t Team, loc Loc, amount int) int {
	have := w.grid.Crystal(loc)
	if amount > have {
		amount = have
	}
	if amount <= 0 {
		return 0
	}
	w.grid.addCrystal(loc, -amount)
	w.teams[t].addCrystal(amount)
	return amount
}

// AdvanceRound finalizes the round in progress: cooldown decay for every
// live unit, scheduled anomalies, periodic income, bid resolution, then
// the sealed round entry carrying the state digest. It must be called
// exactly once per round, after every unit has acted.
func (w *World) AdvanceRound() matchlog.RoundEntry {
	for _, u := range w.unitsInOrder() {
		u.coolDown(w.rules.Cooldown.HeatPerRound)
	}

	for _, e := range w.schedule {
		if e.Round == w.round {
			w.applyAnomaly(e.Kind)
		}
	}

	if inc := w.rules.Income; inc.EveryRounds > 0 && w.round > 0 && w.round%uint32(inc.EveryRounds) == 0 {
		w.teams[TeamA].addAlloy(inc.Alloy)
		w.teams[TeamB].addAlloy(inc.Alloy)
	}

	if w.rules.Bid.Enabled {
		w.resolveBids()
	}

	entry := w.log.FinalizeRound(w.StateDigest())
	w.round++
	return entry
}

// resolveBids settles the round's escrowed bids: the strictly higher bid
// wins a vote and pays; the loser is refunded; a tie refunds both.
func (w *World) resolveBids() {
	a, b := w.teams[TeamA], w.teams[TeamB]
	switch {
	case a.Bid > b.Bid:
		a.Votes++
		b.addAlloy(b.Bid)
	case b.Bid > a.Bid:
		b.Votes++
		a.addAlloy(a.Bid)
	default:
		a.addAlloy(a.Bid)
		b.addAlloy(b.Bid)
	}
	a.Bid = 0
	b.Bid = 0
}

// StateDigest hashes everything that can influence future simulation
// state. Identical histories must yield identical digests on every
// platform, so iteration is over sorted ids and integers are fixed-width.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		h.Write(tmp[:])
	}
	put(int64(w.round))
	h.Write([]byte(w.rules.Digest))

	for _, t := range []Team{TeamA, TeamB} {
		led := w.teams[t]
		put(int64(led.Alloy))
		put(int64(led.Crystal))
		put(int64(led.Bid))
		put(int64(led.Votes))
		for _, v := range led.Shared {
			put(int64(v))
		}
	}

	for _, u := range w.unitsInOrder() {
		put(int64(u.ID))
		put(int64(u.Team))
		h.Write([]byte(u.Archetype.Name))
		put(int64(u.Mode))
		put(int64(u.Loc.X))
		put(int64(u.Loc.Y))
		put(int64(u.Health))
		put(int64(u.Level))
		put(int64(u.MoveHeat))
		put(int64(u.ActHeat))
		put(int64(u.Flag))
	}

	for i := range w.grid.alloy {
		put(int64(w.grid.alloy[i]))
		put(int64(w.grid.crystal[i]))
	}

	return hex.EncodeToString(h.Sum(nil))
}
