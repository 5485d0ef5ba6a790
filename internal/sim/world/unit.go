package world

import "gridwar.gg/internal/sim/rules"

// Mode is a unit's operating state. It gates which capability classes are
// usable right now; the archetype gates which exist at all.
type Mode int

const (
	ModeMobile Mode = iota
	ModeStationary
	ModePortable
	ModePrototype
)

var modeNames = []string{"mobile", "stationary", "portable", "prototype"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// CanAct reports whether action-class capabilities are usable in this mode.
func (m Mode) CanAct() bool { return m == ModeMobile || m == ModeStationary }

// CanMove reports whether movement is usable in this mode.
func (m Mode) CanMove() bool { return m == ModeMobile || m == ModePortable }

// CanTransform reports whether the stationary/portable transition is
// available from this mode.
func (m Mode) CanTransform() bool { return m == ModeStationary || m == ModePortable }

func spawnModeFor(a *rules.Archetype) Mode {
	switch a.Spawn {
	case rules.SpawnStationary:
		return ModeStationary
	case rules.SpawnPrototype:
		return ModePrototype
	default:
		return ModeMobile
	}
}

// Unit is the mutable per-robot state. Mutation happens only in the World
// (spawn, destroy, anomaly effects) or through a Controller, either during
// the unit's own activation or when it is the target of another unit's
// action.
type Unit struct {
	ID        int
	Team      Team
	Archetype *rules.Archetype

	Mode  Mode
	Loc   Loc
	Level int

	Health int

	// Heat values are fixed-point tenths of a round. An action class is
	// ready when its heat is below the ruleset ready threshold; heat
	// decays once per round and is charged on use.
	MoveHeat int
	ActHeat  int

	Flag      int
	Indicator string
}

// UnitInfo is the read-only view handed to sensing queries.
type UnitInfo struct {
	ID        int
	Team      Team
	Archetype string
	Mode      Mode
	Loc       Loc
	Health    int
	Level     int
	Flag      int
}

func (u *Unit) Info() UnitInfo {
	return UnitInfo{
		ID:        u.ID,
		Team:      u.Team,
		Archetype: u.Archetype.Name,
		Mode:      u.Mode,
		Loc:       u.Loc,
		Health:    u.Health,
		Level:     u.Level,
		Flag:      u.Flag,
	}
}

func (u *Unit) coolDown(heatPerRound int) {
	u.MoveHeat -= heatPerRound
	if u.MoveHeat < 0 {
		u.MoveHeat = 0
	}
	u.ActHeat -= heatPerRound
	if u.ActHeat < 0 {
		u.ActHeat = 0
	}
}
