// Package rules loads rule-variant configuration: the per-archetype
// capability table plus the numeric constants the sim core treats as data.
// A new rule variant is a new YAML file, not new validation code.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Capability names an action class an archetype may perform. Whether a
// capability is usable at a given moment additionally depends on the
// unit's mode and cooldowns.
type Capability string

const (
	CapAttack    Capability = "attack"
	CapRepair    Capability = "repair"
	CapMine      Capability = "mine"
	CapBuild     Capability = "build"
	CapConvert   Capability = "convert"
	CapSurge     Capability = "surge"
	CapUpgrade   Capability = "upgrade"
	CapTransform Capability = "transform"
)

var knownCapabilities = map[Capability]struct{}{
	CapAttack:    {},
	CapRepair:    {},
	CapMine:      {},
	CapBuild:     {},
	CapConvert:   {},
	CapSurge:     {},
	CapUpgrade:   {},
	CapTransform: {},
}

// SpawnMode is the mode a freshly built unit starts in.
type SpawnMode string

const (
	SpawnMobile     SpawnMode = "mobile"
	SpawnStationary SpawnMode = "stationary"
	SpawnPrototype  SpawnMode = "prototype"
)

// HeatCharge selects when movement heat is charged relative to the
// location change. "after" lets rubble at the destination scale the
// charge; "before" charges flat at the origin. The two are not
// equivalent and each variant documents its choice here.
type HeatCharge string

const (
	ChargeAfter  HeatCharge = "after"
	ChargeBefore HeatCharge = "before"
)

type Ruleset struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`

	Cooldown    CooldownRules    `yaml:"cooldown"`
	Movement    MovementRules    `yaml:"movement"`
	SharedArray SharedArrayRules `yaml:"shared_array"`
	Flag        FlagRules        `yaml:"flag"`
	Bid         BidRules         `yaml:"bid"`
	Income      IncomeRules      `yaml:"income"`
	Upgrade     UpgradeRules     `yaml:"upgrade"`
	Convert     ConvertRules     `yaml:"convert"`
	Anomaly     AnomalyRules     `yaml:"anomaly"`
	Indicator   IndicatorRules   `yaml:"indicator"`

	// PrototypeHealthPermille is the health fraction a prototype-mode
	// building spawns at; repair to full completes it.
	PrototypeHealthPermille int `yaml:"prototype_health_permille"`

	Archetypes map[string]*Archetype `yaml:"archetypes"`

	// Digest of the raw file, echoed into round headers so a replay can
	// prove which variant produced it.
	Digest string `yaml:"-"`
}

type CooldownRules struct {
	// Heat values are fixed-point tenths of a round.
	HeatPerRound   int `yaml:"heat_per_round"`
	ReadyThreshold int `yaml:"ready_threshold"`
	// TransformHeat is charged to the heat class of the mode being
	// entered when a unit transforms.
	TransformHeat int `yaml:"transform_heat"`
	// SpawnHeat is the heat a freshly built unit starts with on both
	// classes, so it cannot act in the round it appears.
	SpawnHeat int `yaml:"spawn_heat"`
}

type MovementRules struct {
	HeatCharge HeatCharge `yaml:"heat_charge"`
	// RubblePermille scales the movement charge per point of rubble at
	// the destination (only meaningful with heat_charge: after).
	RubblePermille int `yaml:"rubble_permille"`
}

type SharedArrayRules struct {
	Length   int `yaml:"length"`
	MaxValue int `yaml:"max_value"`
}

type FlagRules struct {
	Enabled  bool `yaml:"enabled"`
	MaxValue int  `yaml:"max_value"`
}

type BidRules struct {
	Enabled bool `yaml:"enabled"`
}

type IncomeRules struct {
	EveryRounds int `yaml:"every_rounds"`
	Alloy       int `yaml:"alloy"`
}

type UpgradeRules struct {
	MaxLevel int `yaml:"max_level"`
	// HealthPermille[i] scales an archetype's base health at level i+1.
	HealthPermille []int `yaml:"health_permille"`
	CostAlloy      int   `yaml:"cost_alloy"`
	CostCrystal    int   `yaml:"cost_crystal"`
	StunHeat       int   `yaml:"stun_heat"`
}

type ConvertRules struct {
	// Alloy cost of one crystal: BaseRate plus CrowdPenalty per visible
	// friendly unit around the converter.
	BaseRate     int `yaml:"base_rate"`
	CrowdPenalty int `yaml:"crowd_penalty"`
}

type AnomalyRules struct {
	AbyssPermille      int `yaml:"abyss_permille"`
	ChargePermille     int `yaml:"charge_permille"`
	FuryDamagePermille int `yaml:"fury_damage_permille"`
	// LocalPermille scales a sage-cast surge relative to the global form.
	LocalPermille int `yaml:"local_permille"`
	SurgeHealthCostPermille int `yaml:"surge_health_cost_permille"`
}

type IndicatorRules struct {
	MaxLength int `yaml:"max_length"`
}

type Archetype struct {
	Name     string    `yaml:"-"`
	Building bool      `yaml:"building"`
	Spawn    SpawnMode `yaml:"spawn_mode"`

	BaseHealth      int `yaml:"base_health"`
	BuildCostAlloy  int `yaml:"build_cost_alloy"`
	BuildCostCrystal int `yaml:"build_cost_crystal"`

	VisionRadiusSq int `yaml:"vision_radius_sq"`
	ActionRadiusSq int `yaml:"action_radius_sq"`
	DetectRadiusSq int `yaml:"detect_radius_sq"`

	ActionHeat int `yaml:"action_heat"`
	MoveHeat   int `yaml:"move_heat"`

	AttackDamage int `yaml:"attack_damage"`
	RepairAmount int `yaml:"repair_amount"`
	MineAmount   int `yaml:"mine_amount"`

	Capabilities []Capability `yaml:"capabilities"`
	Builds       []string     `yaml:"builds"`

	caps map[Capability]struct{}
}

// Has reports whether the archetype carries the capability at all.
func (a *Archetype) Has(c Capability) bool {
	_, ok := a.caps[c]
	return ok
}

// CanBuild reports whether the archetype may construct child archetypes
// of the given name.
func (a *Archetype) CanBuild(child string) bool {
	if !a.Has(CapBuild) {
		return false
	}
	for _, b := range a.Builds {
		if b == child {
			return true
		}
	}
	return false
}

// MaxHealth returns the archetype's health cap at the given level.
func (r *Ruleset) MaxHealth(a *Archetype, level int) int {
	if level < 1 {
		level = 1
	}
	if level > len(r.Upgrade.HealthPermille) {
		level = len(r.Upgrade.HealthPermille)
	}
	if level == 0 {
		return a.BaseHealth
	}
	return a.BaseHealth * r.Upgrade.HealthPermille[level-1] / 1000
}

// ArchetypeNames returns the archetype names in sorted order. Iteration
// over the table must never use raw map order.
func (r *Ruleset) ArchetypeNames() []string {
	names := make([]string, 0, len(r.Archetypes))
	for n := range r.Archetypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func Load(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Ruleset
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	sum := sha256.Sum256(raw)
	r.Digest = hex.EncodeToString(sum[:])
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return &r, nil
}

func (r *Ruleset) finish() error {
	if r.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(r.Archetypes) == 0 {
		return fmt.Errorf("no archetypes")
	}
	if r.Cooldown.HeatPerRound <= 0 || r.Cooldown.ReadyThreshold <= 0 {
		return fmt.Errorf("cooldown constants must be positive")
	}
	switch r.Movement.HeatCharge {
	case ChargeAfter, ChargeBefore:
	default:
		return fmt.Errorf("movement.heat_charge must be %q or %q", ChargeAfter, ChargeBefore)
	}
	if r.SharedArray.Length <= 0 || r.SharedArray.MaxValue <= 0 {
		return fmt.Errorf("shared_array constants must be positive")
	}
	if r.Upgrade.MaxLevel < 1 {
		return fmt.Errorf("upgrade.max_level must be at least 1")
	}
	if len(r.Upgrade.HealthPermille) < r.Upgrade.MaxLevel {
		return fmt.Errorf("upgrade.health_permille must cover max_level levels")
	}
	if r.Indicator.MaxLength <= 0 {
		r.Indicator.MaxLength = 64
	}
	if r.PrototypeHealthPermille <= 0 {
		r.PrototypeHealthPermille = 1000
	}

	for name, a := range r.Archetypes {
		if a == nil {
			return fmt.Errorf("archetype %s: empty definition", name)
		}
		a.Name = name
		switch a.Spawn {
		case SpawnMobile, SpawnStationary, SpawnPrototype:
		default:
			return fmt.Errorf("archetype %s: bad spawn_mode %q", name, a.Spawn)
		}
		if a.BaseHealth <= 0 {
			return fmt.Errorf("archetype %s: base_health must be positive", name)
		}
		if a.VisionRadiusSq < 0 || a.ActionRadiusSq < 0 || a.DetectRadiusSq < 0 {
			return fmt.Errorf("archetype %s: negative radius", name)
		}
		a.caps = make(map[Capability]struct{}, len(a.Capabilities))
		for _, c := range a.Capabilities {
			if _, ok := knownCapabilities[c]; !ok {
				return fmt.Errorf("archetype %s: unknown capability %q", name, c)
			}
			if _, dup := a.caps[c]; dup {
				return fmt.Errorf("archetype %s: duplicate capability %q", name, c)
			}
			a.caps[c] = struct{}{}
		}
		for _, b := range a.Builds {
			if _, ok := r.Archetypes[b]; !ok {
				return fmt.Errorf("archetype %s: builds unknown archetype %q", name, b)
			}
		}
		if len(a.Builds) > 0 && !a.Has(CapBuild) {
			return fmt.Errorf("archetype %s: builds list without build capability", name)
		}
	}
	return nil
}
