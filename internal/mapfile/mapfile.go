// Package mapfile loads the immutable match setup: dimensions, terrain,
// initial deposits, starting units, and the anomaly schedule. Files are
// validated against a JSON Schema before anything is interpreted, so the
// sim core only ever sees well-formed maps.
package mapfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridwar.gg/internal/sim/world"
)

type Map struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Rounds int    `json:"rounds"`

	// Rubble rows, height of them, each width long; row 0 is y=0.
	Rubble [][]int `json:"rubble"`

	Alloy   []Deposit `json:"alloy,omitempty"`
	Crystal []Deposit `json:"crystal,omitempty"`

	Units     []StartUnit      `json:"units"`
	Anomalies []AnomalyListing `json:"anomalies,omitempty"`
}

type Deposit struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Amount int `json:"amount"`
}

type StartUnit struct {
	Team      string `json:"team"`
	Archetype string `json:"archetype"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

type AnomalyListing struct {
	Round uint32 `json:"round"`
	Kind  string `json:"kind"`
}

// Load reads, schema-validates, and structurally checks a map file.
func Load(path, schemaPath string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("map schema: %w", err)
	}
	var doc any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}

	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &m, nil
}

func (m *Map) check() error {
	if len(m.Rubble) != m.Height {
		return fmt.Errorf("rubble has %d rows, want %d", len(m.Rubble), m.Height)
	}
	for y, row := range m.Rubble {
		if len(row) != m.Width {
			return fmt.Errorf("rubble row %d has %d cells, want %d", y, len(row), m.Width)
		}
	}
	onMap := func(x, y int) bool { return x >= 0 && x < m.Width && y >= 0 && y < m.Height }
	for _, d := range append(append([]Deposit(nil), m.Alloy...), m.Crystal...) {
		if !onMap(d.X, d.Y) {
			return fmt.Errorf("deposit at (%d,%d) is off the map", d.X, d.Y)
		}
	}
	seen := map[[2]int]bool{}
	for _, u := range m.Units {
		if u.Team != "A" && u.Team != "B" {
			return fmt.Errorf("unit team %q must be A or B", u.Team)
		}
		if !onMap(u.X, u.Y) {
			return fmt.Errorf("unit at (%d,%d) is off the map", u.X, u.Y)
		}
		if seen[[2]int{u.X, u.Y}] {
			return fmt.Errorf("two units share cell (%d,%d)", u.X, u.Y)
		}
		seen[[2]int{u.X, u.Y}] = true
	}
	for _, a := range m.Anomalies {
		switch world.AnomalyKind(a.Kind) {
		case world.AnomalyAbyss, world.AnomalyCharge, world.AnomalyFury:
		default:
			return fmt.Errorf("unknown anomaly kind %q", a.Kind)
		}
	}
	return nil
}

// Layers flattens the map into the row-major per-cell slices the world
// grid wants.
func (m *Map) Layers() (rubble, alloy, crystal []int) {
	n := m.Width * m.Height
	rubble = make([]int, n)
	alloy = make([]int, n)
	crystal = make([]int, n)
	for y, row := range m.Rubble {
		copy(rubble[y*m.Width:], row)
	}
	for _, d := range m.Alloy {
		alloy[d.X+d.Y*m.Width] += d.Amount
	}
	for _, d := range m.Crystal {
		crystal[d.X+d.Y*m.Width] += d.Amount
	}
	return rubble, alloy, crystal
}

// AnomalySchedule converts the listing into world schedule entries.
func (m *Map) AnomalySchedule() []world.AnomalyEntry {
	out := make([]world.AnomalyEntry, 0, len(m.Anomalies))
	for _, a := range m.Anomalies {
		out = append(out, world.AnomalyEntry{Round: a.Round, Kind: world.AnomalyKind(a.Kind)})
	}
	return out
}

// TeamOf maps the file's team letter onto the world team.
func TeamOf(s string) world.Team {
	if s == "B" {
		return world.TeamB
	}
	return world.TeamA
}
