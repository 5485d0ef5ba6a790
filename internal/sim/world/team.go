package world

// Team identifies one of the two sides.
type Team int

const (
	TeamA Team = 0
	TeamB Team = 1
)

func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

// Opponent returns the other team.
func (t Team) Opponent() Team { return 1 - t }

// Ledger holds one team's shared state: resource pools, the shared
// communication array, and the transient bid accumulator. It is mutated
// only through controller calls attributable to a unit of the team, plus
// round-boundary income and bid resolution in the World.
type Ledger struct {
	Alloy   int
	Crystal int

	Shared []int

	// Bid escrowed for the round in progress; resolved and reset by
	// AdvanceRound. Votes accumulate across the match.
	Bid   int
	Votes int
}

func newLedger(sharedLen int) *Ledger {
	return &Ledger{Shared: make([]int, sharedLen)}
}

func (l *Ledger) addAlloy(delta int) {
	l.Alloy += delta
	if l.Alloy < 0 {
		l.Alloy = 0
	}
}

func (l *Ledger) addCrystal(delta int) {
	l.Crystal += delta
	if l.Crystal < 0 {
		l.Crystal = 0
	}
}
