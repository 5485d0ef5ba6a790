// Package match drives a world through rounds. It owns the total order
// of unit activations: strictly one unit at a time, ascending id, so
// every precondition a controller checks sees the effects of every
// earlier action in the round.
package match

import (
	"gridwar.gg/internal/matchlog"
	"gridwar.gg/internal/sim/world"
)

// Agent is a unit's controlling logic. Its only handle on the world is
// the controller it is given; whatever it does beyond calling that is
// invisible to the sim.
type Agent interface {
	Act(c *world.Controller)
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(c *world.Controller)

func (f AgentFunc) Act(c *world.Controller) { f(c) }

// Sink receives each finalized round entry. Persistence and spectating
// hang off this; a nil sink discards.
type Sink interface {
	WriteRound(entry matchlog.RoundEntry) error
}

// Runner activates agents and advances rounds on a single goroutine.
type Runner struct {
	w      *world.World
	agents map[world.Team]Agent
	sink   Sink
}

func NewRunner(w *world.World, agentA, agentB Agent, sink Sink) *Runner {
	return &Runner{
		w:      w,
		agents: map[world.Team]Agent{world.TeamA: agentA, world.TeamB: agentB},
		sink:   sink,
	}
}

// PlayRound activates every unit that is alive when its turn comes, in
// ascending id order, then advances the round. Units spawned during the
// round wait for the next one; units destroyed before their turn never
// act.
func (r *Runner) PlayRound() (matchlog.RoundEntry, error) {
	ids := r.w.LiveUnitIDs()
	for _, id := range ids {
		u := r.w.UnitByID(id)
		if u == nil {
			continue
		}
		agent := r.agents[u.Team]
		if agent == nil {
			continue
		}
		r.activate(agent, u)
	}
	entry := r.w.AdvanceRound()
	if r.sink != nil {
		if err := r.sink.WriteRound(entry); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// activate runs one agent turn. A panicking agent forfeits the unit: the
// fault is logged and the unit destroyed, but records it already emitted
// stand, and the round goes on with the next unit.
func (r *Runner) activate(agent Agent, u *world.Unit) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.w.UnitByID(u.ID) != nil {
				r.w.Log().AppendAction(u.ID, matchlog.ActionDieFault, matchlog.NoTarget)
				r.w.Log().AppendDied(u.ID, matchlog.DiedByFault)
				r.w.DestroyUnit(u.ID)
			}
		}
	}()
	agent.Act(world.NewController(r.w, u))
}

// Play runs rounds until one team has no units or the round limit is
// reached, and reports the surviving team counts.
func (r *Runner) Play(maxRounds int) (played int, err error) {
	for i := 0; i < maxRounds; i++ {
		if _, err := r.PlayRound(); err != nil {
			return i, err
		}
		if r.w.UnitCount(world.TeamA) == 0 || r.w.UnitCount(world.TeamB) == 0 {
			return i + 1, nil
		}
	}
	return maxRounds, nil
}
