package main

import (
	"gridwar.gg/internal/sim/match"
	"gridwar.gg/internal/sim/world"
)

// scriptedAgent is a deliberately simple built-in player. It discovers
// what its unit can do by probing the controller's Can* predicates, so
// it works under any ruleset without knowing archetype names.
type scriptedAgent struct{}

func newScriptedAgent() match.Agent { return scriptedAgent{} }

func (scriptedAgent) Act(c *world.Controller) {
	// Fight first: hit the first enemy in reach.
	for _, e := range c.SenseNearbyUnits(-1, c.Team().Opponent()) {
		if c.CanAttack(e.Loc) {
			_ = c.Attack(e.Loc)
			break
		}
	}

	// Harvest whatever deposit is workable, crystal before alloy.
	for _, l := range c.NearbyCrystalLocations(-1) {
		if c.CanMineCrystal(l) {
			_ = c.MineCrystal(l)
			break
		}
	}
	for _, l := range c.NearbyAlloyLocations(-1) {
		if c.CanMineAlloy(l) {
			_ = c.MineAlloy(l)
			break
		}
	}

	// Patch up a damaged neighbor.
	for _, a := range c.SenseNearbyUnits(-1, c.Team()) {
		if c.CanRepair(a.Loc) {
			_ = c.Repair(a.Loc)
			break
		}
	}

	// Grow the army when the bank allows it: probe every archetype in
	// every direction and take the first legal build.
	if c.TeamAlloy() > 150 {
	build:
		for _, name := range c.ArchetypeNames() {
			for _, d := range world.Directions {
				if c.CanBuildUnit(name, d) {
					_ = c.BuildUnit(name, d)
					break build
				}
			}
		}
	}

	if c.CanConvert() && c.TeamAlloy() > 400 {
		_ = c.Convert()
	}

	// Wander in a seeded random direction so matches stay reproducible.
	dirs := c.Rand().Perm(len(world.Directions))
	for _, i := range dirs {
		d := world.Directions[i]
		if c.CanMove(d) {
			_ = c.Move(d)
			break
		}
	}
}
