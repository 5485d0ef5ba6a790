package matchlog

// ActionKind is a stable integer tag identifying what a unit did.
// The numeric values are part of the recorded log format and must not be
// renumbered; new kinds are appended at the end.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionRepair
	ActionSpawnUnit
	ActionMineAlloy
	ActionMineCrystal
	ActionUpgrade
	ActionConvert
	ActionTransform
	ActionSetFlag
	ActionPlaceBid
	ActionSurgeAbyss
	ActionSurgeCharge
	ActionSurgeFury
	ActionSelfDestruct
	ActionDieFault
)

// NoTarget is the sentinel target value for actions that have none.
const NoTarget = -1

var actionNames = []string{
	"ATTACK",
	"REPAIR",
	"SPAWN_UNIT",
	"MINE_ALLOY",
	"MINE_CRYSTAL",
	"UPGRADE",
	"CONVERT",
	"TRANSFORM",
	"SET_FLAG",
	"PLACE_BID",
	"SURGE_ABYSS",
	"SURGE_CHARGE",
	"SURGE_FURY",
	"SELF_DESTRUCT",
	"DIE_FAULT",
}

func (k ActionKind) Valid() bool {
	return k >= 0 && int(k) < len(actionNames)
}

func (k ActionKind) String() string {
	if !k.Valid() {
		return "UNKNOWN"
	}
	return actionNames[k]
}
