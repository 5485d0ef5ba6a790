// Package matchlog holds the append-only record of everything observable
// that happened in a match. The sim appends records in call order; the log
// never reorders or retracts them, and replay fidelity depends on that.
package matchlog

// Log accumulates records for the round in progress and finalized round
// entries. It has a single producer (the world and its controllers) and is
// read back only at round boundaries.
type Log struct {
	round   uint32
	pending []Record
	rounds  []RoundEntry
}

func New() *Log {
	return &Log{}
}

func (l *Log) Round() uint32 { return l.round }

// Append adds a record for the round in progress. The record's Round field
// is stamped here so callers cannot misfile an entry.
func (l *Log) Append(rec Record) {
	rec.Round = l.round
	l.pending = append(l.pending, rec)
}

func (l *Log) AppendAction(actor int, kind ActionKind, target int) {
	l.Append(Record{Kind: RecordAction, Actor: actor, Action: kind, Target: target})
}

func (l *Log) AppendMove(actor, x, y int) {
	l.Append(Record{Kind: RecordMove, Actor: actor, X: x, Y: y})
}

func (l *Log) AppendDeposit(x, y int, resource string, delta int) {
	l.Append(Record{Kind: RecordDeposit, X: x, Y: y, Resource: resource, Delta: delta})
}

func (l *Log) AppendDied(actor int, cause DeathCause) {
	l.Append(Record{Kind: RecordDied, Actor: actor, Cause: cause})
}

func (l *Log) AppendSpawned(actor, team, x, y int) {
	l.Append(Record{Kind: RecordSpawned, Actor: actor, Team: team, X: x, Y: y})
}

func (l *Log) AppendIndicator(actor int, text string) {
	l.Append(Record{Kind: RecordIndicator, Actor: actor, Text: text})
}

// FinalizeRound seals the round in progress under the given state digest
// and advances the round counter. It returns the sealed entry so callers
// can hand it to a sink without re-reading the log.
func (l *Log) FinalizeRound(digest string) RoundEntry {
	entry := RoundEntry{Round: l.round, Records: l.pending, Digest: digest}
	l.rounds = append(l.rounds, entry)
	l.pending = nil
	l.round++
	return entry
}

// Rounds returns all finalized round entries in order.
func (l *Log) Rounds() []RoundEntry { return l.rounds }

// PendingCount reports how many records the round in progress holds.
func (l *Log) PendingCount() int { return len(l.pending) }
