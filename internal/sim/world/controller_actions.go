package world

import (
	"gridwar.gg/internal/matchlog"
	"gridwar.gg/internal/sim/rules"
)

// ----- movement -----

func (c *Controller) checkMove(d Direction) error {
	if d == Center {
		return gameErrorf(ErrInvalidArgument, "cannot move in place")
	}
	if err := c.checkMovementReady(); err != nil {
		return err
	}
	dest := c.u.Loc.Add(d)
	if !c.w.grid.OnMap(dest) {
		return gameErrorf(ErrOutOfRange, "%s is not on the map", dest)
	}
	if c.w.grid.UnitAt(dest) != nil {
		return gameErrorf(ErrOccupied, "%s is occupied", dest)
	}
	return nil
}

func (c *Controller) CanMove(d Direction) bool { return c.checkMove(d) == nil }

// Move relocates the unit one cell. When the ruleset charges heat after
// the move, rubble at the destination scales the charge; the legacy
// charge-before ordering is flat. The grid swap happens before the
// unit's own location update in both orderings.
func (c *Controller) Move(d Direction) error {
	if err := c.checkMove(d); err != nil {
		return err
	}
	dest := c.u.Loc.Add(d)
	mv := c.w.rules.Movement
	if mv.HeatCharge == rules.ChargeBefore {
		c.u.MoveHeat += c.u.Archetype.MoveHeat
	}
	if err := c.w.MoveUnit(c.u.Loc, dest); err != nil {
		return err
	}
	c.u.Loc = dest
	if mv.HeatCharge == rules.ChargeAfter {
		charge := c.u.Archetype.MoveHeat * (1000 + mv.RubblePermille*c.w.grid.Rubble(dest)) / 1000
		c.u.MoveHeat += charge
	}
	c.w.log.AppendMove(c.u.ID, dest.X, dest.Y)
	return nil
}

// ----- building -----

func (c *Controller) checkBuildUnit(archetype string, d Direction) error {
	child, ok := c.w.rules.Archetypes[archetype]
	if !ok {
		return gameErrorf(ErrInvalidArgument, "unknown archetype %q", archetype)
	}
	if !c.u.Archetype.CanBuild(archetype) {
		return gameErrorf(ErrNotCapable, "%s cannot build %s", c.u.Archetype.Name, archetype)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	dest := c.u.Loc.Add(d)
	if !c.w.grid.OnMap(dest) {
		return gameErrorf(ErrOutOfRange, "%s is not on the map", dest)
	}
	led := c.w.teams[c.u.Team]
	if led.Alloy < child.BuildCostAlloy {
		return gameErrorf(ErrInsufficientResource, "need %d alloy, have %d", child.BuildCostAlloy, led.Alloy)
	}
	if led.Crystal < child.BuildCostCrystal {
		return gameErrorf(ErrInsufficientResource, "need %d crystal, have %d", child.BuildCostCrystal, led.Crystal)
	}
	if c.w.grid.UnitAt(dest) != nil {
		return gameErrorf(ErrOccupied, "%s is occupied", dest)
	}
	return nil
}

func (c *Controller) CanBuildUnit(archetype string, d Direction) bool {
	return c.checkBuildUnit(archetype, d) == nil
}

// BuildUnit constructs a new unit in the adjacent cell, charging the
// builder's action heat and the team's resource pools.
func (c *Controller) BuildUnit(archetype string, d Direction) error {
	if err := c.checkBuildUnit(archetype, d); err != nil {
		return err
	}
	child := c.w.rules.Archetypes[archetype]
	c.u.ActHeat += c.u.Archetype.ActionHeat
	led := c.w.teams[c.u.Team]
	led.addAlloy(-child.BuildCostAlloy)
	led.addCrystal(-child.BuildCostCrystal)
	nu, err := c.w.SpawnUnit(c.u.Team, archetype, c.u.Loc.Add(d))
	if err != nil {
		// checkBuildUnit already cleared placement; reaching here means
		// the registry and grid disagree.
		panic("world: spawn failed after validation: " + err.Error())
	}
	nu.ActHeat = c.w.rules.Cooldown.SpawnHeat
	nu.MoveHeat = c.w.rules.Cooldown.SpawnHeat
	c.w.log.AppendAction(c.u.ID, matchlog.ActionSpawnUnit, nu.ID)
	c.w.log.AppendSpawned(nu.ID, int(nu.Team), nu.Loc.X, nu.Loc.Y)
	return nil
}

// ----- combat -----

func (c *Controller) checkAttack(loc Loc) error {
	if !c.u.Archetype.Has(rules.CapAttack) {
		return gameErrorf(ErrNotCapable, "%s cannot attack", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	if err := c.checkCanAct(loc); err != nil {
		return err
	}
	target := c.w.grid.UnitAt(loc)
	if target == nil {
		return gameErrorf(ErrNoUnitThere, "no unit to attack at %s", loc)
	}
	if target.Team == c.u.Team {
		return gameErrorf(ErrWrongTeam, "unit at %s is friendly", loc)
	}
	return nil
}

func (c *Controller) CanAttack(loc Loc) bool { return c.checkAttack(loc) == nil }

// Attack damages the enemy unit at the location; a unit driven to zero
// health is destroyed within the same call.
func (c *Controller) Attack(loc Loc) error {
	if err := c.checkAttack(loc); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	target := c.w.grid.UnitAt(loc)
	target.Health -= c.u.Archetype.AttackDamage
	c.w.log.AppendAction(c.u.ID, matchlog.ActionAttack, target.ID)
	if target.Health <= 0 {
		c.w.log.AppendDied(target.ID, matchlog.DiedByAttack)
		c.w.DestroyUnit(target.ID)
	}
	return nil
}

func (c *Controller) checkRepair(loc Loc) error {
	if !c.u.Archetype.Has(rules.CapRepair) {
		return gameErrorf(ErrNotCapable, "%s cannot repair", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	if err := c.checkCanAct(loc); err != nil {
		return err
	}
	target := c.w.grid.UnitAt(loc)
	if target == nil {
		return gameErrorf(ErrNoUnitThere, "no unit to repair at %s", loc)
	}
	if target.Team != c.u.Team {
		return gameErrorf(ErrWrongTeam, "unit at %s is hostile", loc)
	}
	return nil
}

func (c *Controller) CanRepair(loc Loc) bool { return c.checkRepair(loc) == nil }

// Repair heals the allied unit at the location up to its health cap. A
// prototype repaired to full completes construction and becomes
// stationary.
func (c *Controller) Repair(loc Loc) error {
	if err := c.checkRepair(loc); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	target := c.w.grid.UnitAt(loc)
	maxHealth := c.w.rules.MaxHealth(target.Archetype, target.Level)
	target.Health += c.u.Archetype.RepairAmount
	if target.Health > maxHealth {
		target.Health = maxHealth
	}
	if target.Mode == ModePrototype && target.Health == maxHealth {
		target.Mode = ModeStationary
	}
	c.w.log.AppendAction(c.u.ID, matchlog.ActionRepair, target.ID)
	return nil
}

// ----- harvesting -----

func (c *Controller) checkMineAlloy(loc Loc) error {
	if !c.u.Archetype.Has(rules.CapMine) {
		return gameErrorf(ErrNotCapable, "%s cannot mine", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	if err := c.checkCanAct(loc); err != nil {
		return err
	}
	if c.w.grid.Alloy(loc) < 1 {
		return gameErrorf(ErrInsufficientResource, "no alloy at %s", loc)
	}
	return nil
}

func (c *Controller) CanMineAlloy(loc Loc) bool { return c.checkMineAlloy(loc) == nil }

// MineAlloy harvests from the cell's alloy deposit into the team pool.
// The deposit never goes below zero.
func (c *Controller) MineAlloy(loc Loc) error {
	if err := c.checkMineAlloy(loc); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	mined := c.w.mineAlloy(c.u.Team, loc, c.u.Archetype.MineAmount)
	c.w.log.AppendAction(c.u.ID, matchlog.ActionMineAlloy, c.w.grid.EncodeLoc(loc))
	c.w.log.AppendDeposit(loc.X, loc.Y, ResourceAlloy, -mined)
	return nil
}

func (c *Controller) checkMineCrystal(loc Loc) error {
	if !c.u.Archetype.Has(rules.CapMine) {
		return gameErrorf(ErrNotCapable, "%s cannot mine", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	if err := c.checkCanAct(loc); err != nil {
		return err
	}
	if c.w.grid.Crystal(loc) < 1 {
		return gameErrorf(ErrInsufficientResource, "no crystal at %s", loc)
	}
	return nil
}

func (c *Controller) CanMineCrystal(loc Loc) bool { return c.checkMineCrystal(loc) == nil }

func (c *Controller) MineCrystal(loc Loc) error {
	if err := c.checkMineCrystal(loc); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	mined := c.w.mineCrystal(c.u.Team, loc, c.u.Archetype.MineAmount)
	c.w.log.AppendAction(c.u.ID, matchlog.ActionMineCrystal, c.w.grid.EncodeLoc(loc))
	c.w.log.AppendDeposit(loc.X, loc.Y, ResourceCrystal, -mined)
	return nil
}

// ----- upgrading -----

func (c *Controller) checkUpgrade(loc Loc) error {
	if !c.u.Archetype.Has(rules.CapUpgrade) {
		return gameErrorf(ErrNotCapable, "%s cannot upgrade", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	if err := c.checkCanAct(loc); err != nil {
		return err
	}
	up := c.w.rules.Upgrade
	led := c.w.teams[c.u.Team]
	if led.Alloy < up.CostAlloy {
		return gameErrorf(ErrInsufficientResource, "need %d alloy, have %d", up.CostAlloy, led.Alloy)
	}
	if led.Crystal < up.CostCrystal {
		return gameErrorf(ErrInsufficientResource, "need %d crystal, have %d", up.CostCrystal, led.Crystal)
	}
	target := c.w.grid.UnitAt(loc)
	if target == nil {
		return gameErrorf(ErrNoUnitThere, "no unit to upgrade at %s", loc)
	}
	if target.Team != c.u.Team {
		return gameErrorf(ErrWrongTeam, "unit at %s is hostile", loc)
	}
	if target.Mode == ModePrototype {
		return gameErrorf(ErrNotCapable, "cannot upgrade an unfinished unit")
	}
	if target.Level >= up.MaxLevel {
		return gameErrorf(ErrNotCapable, "unit %d is already at max level", target.ID)
	}
	return nil
}

func (c *Controller) CanUpgrade(loc Loc) bool { return c.checkUpgrade(loc) == nil }

// Upgrade raises an ally's level, scaling its health cap and healing it
// by the gained headroom. Both of the target's heats are stunned.
func (c *Controller) Upgrade(loc Loc) error {
	if err := c.checkUpgrade(loc); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	up := c.w.rules.Upgrade
	led := c.w.teams[c.u.Team]
	led.addAlloy(-up.CostAlloy)
	led.addCrystal(-up.CostCrystal)
	target := c.w.grid.UnitAt(loc)
	oldMax := c.w.rules.MaxHealth(target.Archetype, target.Level)
	target.Level++
	newMax := c.w.rules.MaxHealth(target.Archetype, target.Level)
	target.Health += newMax - oldMax
	target.ActHeat += up.StunHeat
	target.MoveHeat += up.StunHeat
	c.w.log.AppendAction(c.u.ID, matchlog.ActionUpgrade, target.ID)
	return nil
}

// ----- conversion -----

// ConvertRate is the alloy cost of one crystal right now. Crowding
// raises it: each visible friendly unit adds the ruleset penalty.
func (c *Controller) ConvertRate() int {
	n := 0
	for _, u := range c.w.grid.UnitsWithinSq(c.u.Loc, c.u.Archetype.VisionRadiusSq) {
		if u != c.u && u.Team == c.u.Team {
			n++
		}
	}
	conv := c.w.rules.Convert
	return conv.BaseRate + conv.CrowdPenalty*n
}

func (c *Controller) checkConvert() error {
	if !c.u.Archetype.Has(rules.CapConvert) {
		return gameErrorf(ErrNotCapable, "%s cannot convert", c.u.Archetype.Name)
	}
	if err := c.checkActionReady(); err != nil {
		return err
	}
	rate := c.ConvertRate()
	if c.w.teams[c.u.Team].Alloy < rate {
		return gameErrorf(ErrInsufficientResource, "need %d alloy, have %d", rate, c.w.teams[c.u.Team].Alloy)
	}
	return nil
}

func (c *Controller) CanConvert() bool { return c.checkConvert() == nil }

// Convert burns alloy into one crystal at the current rate.
func (c *Controller) Convert() error {
	if err := c.checkConvert(); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	led := c.w.teams[c.u.Team]
	led.addAlloy(-c.ConvertRate())
	led.addCrystal(1)
	c.w.log.AppendAction(c.u.ID, matchlog.ActionConvert, matchlog.NoTarget)
	return nil
}

// ----- transforming -----

func (c *Controller) CanTransform() bool { return c.checkTransformReady() == nil }

// Transform toggles a building between stationary and portable, charging
// the heat class of the mode being entered.
func (c *Controller) Transform() error {
	if err := c.checkTransformReady(); err != nil {
		return err
	}
	if c.u.Mode == ModeStationary {
		c.u.Mode = ModePortable
		c.u.MoveHeat += c.w.rules.Cooldown.TransformHeat
	} else {
		c.u.Mode = ModeStationary
		c.u.ActHeat += c.w.rules.Cooldown.TransformHeat
	}
	c.w.log.AppendAction(c.u.ID, matchlog.ActionTransform, matchlog.NoTarget)
	return nil
}

// ----- surges (local anomalies) -----

var surgeActions = map[AnomalyKind]matchlog.ActionKind{
	AnomalyAbyss:  matchlog.ActionSurgeAbyss,
	AnomalyCharge: matchlog.ActionSurgeCharge,
	AnomalyFury:   matchlog.ActionSurgeFury,
}

func (c *Controller) checkSurge(kind AnomalyKind) error {
	if _, ok := surgeActions[kind]; !ok {
		return gameErrorf(ErrInvalidArgument, "unknown anomaly kind %q", kind)
	}
	if !c.u.Archetype.Has(rules.CapSurge) {
		return gameErrorf(ErrNotCapable, "%s cannot surge", c.u.Archetype.Name)
	}
	return c.checkActionReady()
}

func (c *Controller) CanSurge(kind AnomalyKind) bool { return c.checkSurge(kind) == nil }

// Surge casts a weakened, local version of an anomaly centered on the
// acting unit, at the cost of a fraction of its own max health.
func (c *Controller) Surge(kind AnomalyKind) error {
	if err := c.checkSurge(kind); err != nil {
		return err
	}
	c.u.ActHeat += c.u.Archetype.ActionHeat
	an := c.w.rules.Anomaly
	cost := c.w.rules.MaxHealth(c.u.Archetype, c.u.Level) * an.SurgeHealthCostPermille / 1000
	if cost >= c.u.Health {
		cost = c.u.Health - 1
	}
	if cost > 0 {
		c.u.Health -= cost
	}
	c.w.log.AppendAction(c.u.ID, surgeActions[kind], c.w.grid.EncodeLoc(c.u.Loc))
	switch kind {
	case AnomalyAbyss:
		c.w.applyAbyss(c.u.Loc, c.u.Archetype.ActionRadiusSq, an.LocalPermille)
	case AnomalyCharge:
		c.w.applyLocalCharge(c.u, an.LocalPermille)
	case AnomalyFury:
		c.w.applyFury(c.u.Loc, c.u.Archetype.ActionRadiusSq, an.LocalPermille)
	}
	return nil
}
