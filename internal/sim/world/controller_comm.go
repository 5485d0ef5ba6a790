package world

import "gridwar.gg/internal/matchlog"

// Shared-array access deliberately skips the cooldown and range gates:
// communication costs nothing but is strictly bounds-checked.

func (c *Controller) checkSharedIndex(index int) error {
	if index < 0 || index >= c.w.rules.SharedArray.Length {
		return gameErrorf(ErrInvalidArgument, "shared array index %d out of range", index)
	}
	return nil
}

// ReadShared returns one cell of the team's shared array.
func (c *Controller) ReadShared(index int) (int, error) {
	if err := c.checkSharedIndex(index); err != nil {
		return 0, err
	}
	return c.w.teams[c.u.Team].Shared[index], nil
}

// WriteShared stores a bounded value into the team's shared array.
func (c *Controller) WriteShared(index, value int) error {
	if err := c.checkSharedIndex(index); err != nil {
		return err
	}
	if value < 0 || value > c.w.rules.SharedArray.MaxValue {
		return gameErrorf(ErrInvalidArgument, "shared array value %d out of range [0,%d]", value, c.w.rules.SharedArray.MaxValue)
	}
	c.w.teams[c.u.Team].Shared[index] = value
	return nil
}

// ----- flags (legacy variant) -----

func (c *Controller) checkSetFlag(value int) error {
	if !c.w.rules.Flag.Enabled {
		return gameErrorf(ErrNotCapable, "flags are disabled in this ruleset")
	}
	if value < 0 || value > c.w.rules.Flag.MaxValue {
		return gameErrorf(ErrInvalidArgument, "flag value %d out of range [0,%d]", value, c.w.rules.Flag.MaxValue)
	}
	return nil
}

func (c *Controller) CanSetFlag(value int) bool { return c.checkSetFlag(value) == nil }

// SetFlag broadcasts a bounded value readable by any unit that senses
// this one.
func (c *Controller) SetFlag(value int) error {
	if err := c.checkSetFlag(value); err != nil {
		return err
	}
	c.u.Flag = value
	c.w.log.AppendAction(c.u.ID, matchlog.ActionSetFlag, value)
	return nil
}

// ----- bidding (legacy variant) -----

func (c *Controller) checkPlaceBid(amount int) error {
	if !c.w.rules.Bid.Enabled {
		return gameErrorf(ErrNotCapable, "bidding is disabled in this ruleset")
	}
	if amount <= 0 {
		return gameErrorf(ErrInvalidArgument, "bid must be positive, got %d", amount)
	}
	if c.w.teams[c.u.Team].Alloy < amount {
		return gameErrorf(ErrInsufficientResource, "need %d alloy, have %d", amount, c.w.teams[c.u.Team].Alloy)
	}
	return nil
}

func (c *Controller) CanPlaceBid(amount int) bool { return c.checkPlaceBid(amount) == nil }

// PlaceBid escrows alloy into the team's bid for this round. Bids are
// resolved when the round advances; the losing side is refunded.
func (c *Controller) PlaceBid(amount int) error {
	if err := c.checkPlaceBid(amount); err != nil {
		return err
	}
	led := c.w.teams[c.u.Team]
	led.addAlloy(-amount)
	led.Bid += amount
	c.w.log.AppendAction(c.u.ID, matchlog.ActionPlaceBid, amount)
	return nil
}

// ----- lifecycle -----

// SelfDestruct logs and then destroys the acting unit. Destruction is
// the last step so the record carries the correct actor.
func (c *Controller) SelfDestruct() {
	c.w.log.AppendAction(c.u.ID, matchlog.ActionSelfDestruct, matchlog.NoTarget)
	c.w.log.AppendDied(c.u.ID, matchlog.DiedBySelfDestruct)
	c.w.DestroyUnit(c.u.ID)
}

// Resign destroys every unit on the acting team, in ascending id order.
// It is the only action that mutates units beyond the actor and a single
// target.
func (c *Controller) Resign() {
	team := c.u.Team
	for _, id := range c.w.LiveUnitIDs() {
		u := c.w.units[id]
		if u.Team != team {
			continue
		}
		c.w.log.AppendDied(id, matchlog.DiedByResign)
		c.w.DestroyUnit(id)
	}
}

// ----- diagnostics -----

// SetIndicator attaches a short debug string to the unit and records it.
// Indicators have no effect on simulation state.
func (c *Controller) SetIndicator(text string) {
	if max := c.w.rules.Indicator.MaxLength; len(text) > max {
		text = text[:max]
	}
	c.u.Indicator = text
	c.w.log.AppendIndicator(c.u.ID, text)
}
