package world

import (
	"fmt"
	"sort"
)

// Grid is the spatial index: O(1) occupancy by cell plus static terrain
// (rubble) and the depletable alloy/crystal deposits. Occupancy and the
// unit registry are kept in lockstep by the World; disagreement between
// the two is a programming defect, never a game condition, so it panics.
type Grid struct {
	width  int
	height int

	occupant []*Unit
	rubble   []int
	alloy    []int
	crystal  []int
}

func NewGrid(width, height int, rubble, alloy, crystal []int) (*Grid, error) {
	n := width * height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: bad dimensions %dx%d", width, height)
	}
	if len(rubble) != n || len(alloy) != n || len(crystal) != n {
		return nil, fmt.Errorf("grid: layer length mismatch, want %d cells", n)
	}
	return &Grid{
		width:    width,
		height:   height,
		occupant: make([]*Unit, n),
		rubble:   rubble,
		alloy:    alloy,
		crystal:  crystal,
	}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// OnMap reports whether the location lies inside the grid.
func (g *Grid) OnMap(l Loc) bool {
	return l.X >= 0 && l.X < g.width && l.Y >= 0 && l.Y < g.height
}

// EncodeLoc packs a location into the single integer used as a log target.
func (g *Grid) EncodeLoc(l Loc) int { return l.X + l.Y*g.width }

// DecodeLoc is the inverse of EncodeLoc.
func (g *Grid) DecodeLoc(v int) Loc { return Loc{X: v % g.width, Y: v / g.width} }

func (g *Grid) idx(l Loc) int { return l.X + l.Y*g.width }

// UnitAt returns the occupant of the cell, or nil.
func (g *Grid) UnitAt(l Loc) *Unit {
	if !g.OnMap(l) {
		return nil
	}
	return g.occupant[g.idx(l)]
}

func (g *Grid) Rubble(l Loc) int  { return g.rubble[g.idx(l)] }
func (g *Grid) Alloy(l Loc) int   { return g.alloy[g.idx(l)] }
func (g *Grid) Crystal(l Loc) int { return g.crystal[g.idx(l)] }

// addAlloy mutates a cell deposit, clamped at zero. Harvesting only
// depletes; anomalies are the only source of other deltas.
func (g *Grid) addAlloy(l Loc, delta int) int {
	i := g.idx(l)
	g.alloy[i] += delta
	if g.alloy[i] < 0 {
		g.alloy[i] = 0
	}
	return g.alloy[i]
}

func (g *Grid) addCrystal(l Loc, delta int) int {
	i := g.idx(l)
	g.crystal[i] += delta
	if g.crystal[i] < 0 {
		g.crystal[i] = 0
	}
	return g.crystal[i]
}

func (g *Grid) place(u *Unit, l Loc) {
	i := g.idx(l)
	if g.occupant[i] != nil {
		panic(fmt.Sprintf("grid: placing unit %d on occupied cell %s", u.ID, l))
	}
	g.occupant[i] = u
}

func (g *Grid) remove(u *Unit, l Loc) {
	i := g.idx(l)
	if g.occupant[i] != u {
		panic(fmt.Sprintf("grid: cell %s does not hold unit %d", l, u.ID))
	}
	g.occupant[i] = nil
}

// UnitsWithinSq returns the units whose location is within the given
// squared radius of center, in ascending id order. The center's own
// occupant is included.
func (g *Grid) UnitsWithinSq(center Loc, radiusSq int) []*Unit {
	var out []*Unit
	if radiusSq < 0 {
		return out
	}
	r := boundingRadius(radiusSq)
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			l := Loc{X: x, Y: y}
			if !g.OnMap(l) || center.DistanceSq(l) > radiusSq {
				continue
			}
			if u := g.occupant[g.idx(l)]; u != nil {
				out = append(out, u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LocationsWithinSq returns the on-map locations within the squared
// radius of center, in row-major order.
func (g *Grid) LocationsWithinSq(center Loc, radiusSq int) []Loc {
	var out []Loc
	if radiusSq < 0 {
		return out
	}
	r := boundingRadius(radiusSq)
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			l := Loc{X: x, Y: y}
			if g.OnMap(l) && center.DistanceSq(l) <= radiusSq {
				out = append(out, l)
			}
		}
	}
	return out
}

// boundingRadius is the largest r with r*r <= radiusSq.
func boundingRadius(radiusSq int) int {
	r := 0
	for (r+1)*(r+1) <= radiusSq {
		r++
	}
	return r
}
