package matchlog

// RecordKind discriminates the record payload shapes.
type RecordKind string

const (
	RecordAction    RecordKind = "action"
	RecordMove      RecordKind = "move"
	RecordDeposit   RecordKind = "deposit"
	RecordDied      RecordKind = "died"
	RecordSpawned   RecordKind = "spawned"
	RecordIndicator RecordKind = "indicator"
)

// DeathCause explains a died record. Values are part of the log format.
type DeathCause string

const (
	DiedByAttack       DeathCause = "attack"
	DiedByAnomaly      DeathCause = "anomaly"
	DiedBySelfDestruct DeathCause = "self_destruct"
	DiedByFault        DeathCause = "fault"
	DiedByResign       DeathCause = "resign"
)

// Record is one immutable entry of the match log. Exactly the fields
// relevant to Kind are set; everything else stays at its zero value and is
// omitted from the encoded form.
type Record struct {
	Round uint32     `json:"r"`
	Kind  RecordKind `json:"k"`
	Actor int        `json:"a"`

	// action
	Action ActionKind `json:"act,omitempty"`
	Target int        `json:"tgt,omitempty"`

	// move
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`

	// deposit: Resource names the pool, Delta the signed change at (X, Y)
	Resource string `json:"res,omitempty"`
	Delta    int    `json:"d,omitempty"`

	// died / spawned
	Cause DeathCause `json:"cause,omitempty"`
	Team  int        `json:"team,omitempty"`

	// indicator
	Text string `json:"text,omitempty"`
}

// RoundEntry is the persisted unit of the log: the ordered records of one
// round plus a digest of world state taken when the round was finalized.
type RoundEntry struct {
	Round   uint32   `json:"round"`
	Records []Record `json:"records,omitempty"`
	Digest  string   `json:"digest"`
}
