package world

import (
	"math/rand"

	"gridwar.gg/internal/sim/rules"
)

// Controller is the capability surface handed to a unit's controlling
// agent for one activation. It is the sole path by which a unit's turn
// may read or mutate the world.
//
// Every action comes as a pair: CanX runs the full precondition chain and
// reports legality without committing; X re-runs the same chain, failing
// with a typed GameError on the first violated gate, and only then
// commits and logs. The chain order is fixed (arguments, capability,
// readiness, range, resources, target state) so which error fires is
// deterministic.
type Controller struct {
	w *World
	u *Unit
}

// NewController binds a controller to a live unit for the current
// activation.
func NewController(w *World, u *Unit) *Controller {
	return &Controller{w: w, u: u}
}

// ----- global queries -----

func (c *Controller) Round() uint32   { return c.w.round }
func (c *Controller) MapWidth() int   { return c.w.grid.Width() }
func (c *Controller) MapHeight() int  { return c.w.grid.Height() }
func (c *Controller) UnitCount() int  { return c.w.UnitCount(c.u.Team) }

func (c *Controller) TeamAlloy() int   { return c.w.teams[c.u.Team].Alloy }
func (c *Controller) TeamCrystal() int { return c.w.teams[c.u.Team].Crystal }
func (c *Controller) TeamVotes() int   { return c.w.teams[c.u.Team].Votes }

// AnomalySchedule is public information for both teams.
func (c *Controller) AnomalySchedule() []AnomalyEntry { return c.w.AnomalySchedule() }

// ArchetypeNames lists the ruleset's archetypes in sorted order.
func (c *Controller) ArchetypeNames() []string { return c.w.rules.ArchetypeNames() }

// Rand is the match's shared seeded generator. Draws consume shared
// state, so identical agents replayed in the same order draw the same
// values.
func (c *Controller) Rand() *rand.Rand { return c.w.rng }

// ----- self queries -----

func (c *Controller) ID() int                { return c.u.ID }
func (c *Controller) Team() Team             { return c.u.Team }
func (c *Controller) Archetype() string      { return c.u.Archetype.Name }
func (c *Controller) Mode() Mode             { return c.u.Mode }
func (c *Controller) Location() Loc          { return c.u.Loc }
func (c *Controller) Health() int            { return c.u.Health }
func (c *Controller) Level() int             { return c.u.Level }
func (c *Controller) MoveHeat() int          { return c.u.MoveHeat }
func (c *Controller) ActionHeat() int        { return c.u.ActHeat }
func (c *Controller) AdjacentLocation(d Direction) Loc { return c.u.Loc.Add(d) }

// ----- sensing -----

func (c *Controller) checkCanSense(loc Loc) error {
	if c.u.Loc.DistanceSq(loc) > c.u.Archetype.VisionRadiusSq {
		return gameErrorf(ErrNotSensed, "%s is outside vision range", loc)
	}
	if !c.w.grid.OnMap(loc) {
		return gameErrorf(ErrNotSensed, "%s is not on the map", loc)
	}
	return nil
}

// checkCanAct validates a target location against the acting radius.
func (c *Controller) checkCanAct(loc Loc) error {
	if c.u.Loc.DistanceSq(loc) > c.u.Archetype.ActionRadiusSq {
		return gameErrorf(ErrOutOfRange, "%s is outside action range", loc)
	}
	if !c.w.grid.OnMap(loc) {
		return gameErrorf(ErrNotSensed, "%s is not on the map", loc)
	}
	return nil
}

func (c *Controller) CanSenseLocation(loc Loc) bool { return c.checkCanSense(loc) == nil }

// OnMap reports whether a location inside vision range lies on the map.
func (c *Controller) OnMap(loc Loc) (bool, error) {
	if c.u.Loc.DistanceSq(loc) > c.u.Archetype.VisionRadiusSq {
		return false, gameErrorf(ErrNotSensed, "%s is outside vision range", loc)
	}
	return c.w.grid.OnMap(loc), nil
}

// IsLocationOccupied reports occupancy of a sensable cell.
func (c *Controller) IsLocationOccupied(loc Loc) (bool, error) {
	if err := c.checkCanSense(loc); err != nil {
		return false, err
	}
	return c.w.grid.UnitAt(loc) != nil, nil
}

// SenseUnitAtLocation returns the occupant of a sensable cell.
func (c *Controller) SenseUnitAtLocation(loc Loc) (UnitInfo, error) {
	if err := c.checkCanSense(loc); err != nil {
		return UnitInfo{}, err
	}
	u := c.w.grid.UnitAt(loc)
	if u == nil {
		return UnitInfo{}, gameErrorf(ErrNoUnitThere, "no unit at %s", loc)
	}
	return u.Info(), nil
}

// CanSenseUnit reports whether the unit with the id exists and is inside
// vision range.
func (c *Controller) CanSenseUnit(id int) bool {
	u := c.w.units[id]
	return u != nil && c.checkCanSense(u.Loc) == nil
}

// SenseUnit returns detail for a sensable unit by id.
func (c *Controller) SenseUnit(id int) (UnitInfo, error) {
	u := c.w.units[id]
	if u == nil {
		return UnitInfo{}, gameErrorf(ErrNoUnitThere, "no unit with id %d", id)
	}
	if err := c.checkCanSense(u.Loc); err != nil {
		return UnitInfo{}, err
	}
	return u.Info(), nil
}

// CanDetectLocation reports presence-only detection, which some rule
// variants grant at a wider radius than full sensing.
func (c *Controller) CanDetectLocation(loc Loc) bool {
	return c.w.grid.OnMap(loc) && c.u.Loc.DistanceSq(loc) <= c.u.Archetype.DetectRadiusSq
}

// DetectUnitAtLocation reports occupancy (but no detail) within the
// detection radius.
func (c *Controller) DetectUnitAtLocation(loc Loc) (bool, error) {
	if !c.w.grid.OnMap(loc) {
		return false, gameErrorf(ErrNotSensed, "%s is not on the map", loc)
	}
	if c.u.Loc.DistanceSq(loc) > c.u.Archetype.DetectRadiusSq {
		return false, gameErrorf(ErrNotSensed, "%s is outside detection range", loc)
	}
	return c.w.grid.UnitAt(loc) != nil, nil
}

// SenseNearbyUnits returns all sensable units within the given squared
// radius (capped at vision; negative means full vision), excluding the
// acting unit, in ascending id order. filterTeam of -1 keeps both teams.
func (c *Controller) SenseNearbyUnits(radiusSq int, filterTeam Team) []UnitInfo {
	vision := c.u.Archetype.VisionRadiusSq
	if radiusSq < 0 || radiusSq > vision {
		radiusSq = vision
	}
	var out []UnitInfo
	for _, u := range c.w.grid.UnitsWithinSq(c.u.Loc, radiusSq) {
		if u == c.u {
			continue
		}
		if filterTeam >= 0 && u.Team != filterTeam {
			continue
		}
		out = append(out, u.Info())
	}
	return out
}

// SenseRubble returns the rubble value of a sensable cell.
func (c *Controller) SenseRubble(loc Loc) (int, error) {
	if err := c.checkCanSense(loc); err != nil {
		return 0, err
	}
	return c.w.grid.Rubble(loc), nil
}

// SenseAlloy returns the alloy deposit of a sensable cell.
func (c *Controller) SenseAlloy(loc Loc) (int, error) {
	if err := c.checkCanSense(loc); err != nil {
		return 0, err
	}
	return c.w.grid.Alloy(loc), nil
}

// SenseCrystal returns the crystal deposit of a sensable cell.
func (c *Controller) SenseCrystal(loc Loc) (int, error) {
	if err := c.checkCanSense(loc); err != nil {
		return 0, err
	}
	return c.w.grid.Crystal(loc), nil
}

// NearbyAlloyLocations lists sensable cells holding alloy within the
// squared radius (capped at vision).
func (c *Controller) NearbyAlloyLocations(radiusSq int) []Loc {
	vision := c.u.Archetype.VisionRadiusSq
	if radiusSq < 0 || radiusSq > vision {
		radiusSq = vision
	}
	var out []Loc
	for _, l := range c.w.grid.LocationsWithinSq(c.u.Loc, radiusSq) {
		if c.w.grid.Alloy(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// NearbyCrystalLocations lists sensable cells holding crystal within the
// squared radius (capped at vision).
func (c *Controller) NearbyCrystalLocations(radiusSq int) []Loc {
	vision := c.u.Archetype.VisionRadiusSq
	if radiusSq < 0 || radiusSq > vision {
		radiusSq = vision
	}
	var out []Loc
	for _, l := range c.w.grid.LocationsWithinSq(c.u.Loc, radiusSq) {
		if c.w.grid.Crystal(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// ----- readiness gates -----

func (c *Controller) checkActionReady() error {
	if !c.u.Mode.CanAct() {
		return gameErrorf(ErrNotCapable, "mode %s cannot act", c.u.Mode)
	}
	if c.u.ActHeat >= c.w.rules.Cooldown.ReadyThreshold {
		return gameErrorf(ErrNotReady, "action heat %d has not cooled", c.u.ActHeat)
	}
	return nil
}

func (c *Controller) IsActionReady() bool { return c.checkActionReady() == nil }

func (c *Controller) checkMovementReady() error {
	if !c.u.Mode.CanMove() {
		return gameErrorf(ErrNotCapable, "mode %s cannot move", c.u.Mode)
	}
	if c.u.MoveHeat >= c.w.rules.Cooldown.ReadyThreshold {
		return gameErrorf(ErrNotReady, "movement heat %d has not cooled", c.u.MoveHeat)
	}
	return nil
}

func (c *Controller) IsMovementReady() bool { return c.checkMovementReady() == nil }

func (c *Controller) checkTransformReady() error {
	if !c.u.Archetype.Has(rules.CapTransform) {
		return gameErrorf(ErrNotCapable, "%s cannot transform", c.u.Archetype.Name)
	}
	if !c.u.Mode.CanTransform() {
		return gameErrorf(ErrNotCapable, "mode %s cannot transform", c.u.Mode)
	}
	// The relevant heat is the one for the mode being left: a stationary
	// unit about to become portable is gated on action heat, a portable
	// one on movement heat.
	if c.u.Mode == ModeStationary {
		if c.u.ActHeat >= c.w.rules.Cooldown.ReadyThreshold {
			return gameErrorf(ErrNotReady, "action heat %d has not cooled", c.u.ActHeat)
		}
	} else if c.u.MoveHeat >= c.w.rules.Cooldown.ReadyThreshold {
		return gameErrorf(ErrNotReady, "movement heat %d has not cooled", c.u.MoveHeat)
	}
	return nil
}

func (c *Controller) IsTransformReady() bool { return c.checkTransformReady() == nil }
