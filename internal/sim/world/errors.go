package world

import "fmt"

// ErrorKind identifies which precondition gate rejected an action. Every
// kind is recoverable: the mutator returns it without having touched any
// state, and the Can* predicate form collapses all of them to false.
type ErrorKind int

const (
	ErrInvalidArgument ErrorKind = iota + 1
	ErrNotCapable
	ErrNotReady
	ErrOutOfRange
	ErrNotSensed
	ErrNoUnitThere
	ErrWrongTeam
	ErrInsufficientResource
	ErrOccupied
)

var errorKindNames = map[ErrorKind]string{
	ErrInvalidArgument:      "invalid_argument",
	ErrNotCapable:           "not_capable",
	ErrNotReady:             "not_ready",
	ErrOutOfRange:           "out_of_range",
	ErrNotSensed:            "not_sensed",
	ErrNoUnitThere:          "no_unit_there",
	ErrWrongTeam:            "wrong_team",
	ErrInsufficientResource: "insufficient_resource",
	ErrOccupied:             "occupied",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error_kind_%d", int(k))
}

// GameError is the typed failure returned by every action mutator.
type GameError struct {
	Kind ErrorKind
	Msg  string
}

func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets callers match the gate with errors.Is(err, &GameError{Kind: k}).
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

func gameErrorf(kind ErrorKind, format string, args ...any) *GameError {
	return &GameError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an action error, or zero for nil or
// foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	if ge, ok := err.(*GameError); ok {
		return ge.Kind
	}
	return 0
}
