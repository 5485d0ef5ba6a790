package world

import "fmt"

// Loc is a grid coordinate. All range comparisons in the engine use
// squared distances so they stay in exact integer arithmetic.
type Loc struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (l Loc) String() string { return fmt.Sprintf("(%d,%d)", l.X, l.Y) }

// DistanceSq returns the squared Euclidean distance to other.
func (l Loc) DistanceSq(other Loc) int {
	dx := l.X - other.X
	dy := l.Y - other.Y
	return dx*dx + dy*dy
}

func (l Loc) Add(d Direction) Loc {
	return Loc{X: l.X + d.DX, Y: l.Y + d.DY}
}

// Direction is one of the eight neighbors plus Center.
type Direction struct {
	DX, DY int
}

var (
	North     = Direction{0, 1}
	Northeast = Direction{1, 1}
	East      = Direction{1, 0}
	Southeast = Direction{1, -1}
	South     = Direction{0, -1}
	Southwest = Direction{-1, -1}
	West      = Direction{-1, 0}
	Northwest = Direction{-1, 1}
	Center    = Direction{0, 0}
)

// Directions lists the eight movement directions in a fixed order.
var Directions = []Direction{North, Northeast, East, Southeast, South, Southwest, West, Northwest}
