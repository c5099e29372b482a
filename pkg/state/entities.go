package state

import (
	"strings"

	"github.com/google/uuid"
)

// newEntityID generates a collection-record identifier. IDs are unique at
// creation and never reused.
func newEntityID() string {
	return uuid.NewString()
}

// LoreType categorizes journal entries.
type LoreType string

const (
	LoreFaction  LoreType = "Faction"
	LoreGod      LoreType = "God"
	LoreLocation LoreType = "Location"
	LoreRace     LoreType = "Race"
	LoreMagic    LoreType = "Magic"
	LoreCreature LoreType = "Creature"
	LoreOther    LoreType = "Other"
)

// LoreEntry is one journal record. Entries are append-only: the journal grows
// monotonically and duplicate titles are never coalesced.
type LoreEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        LoreType `json:"type"`
	Description string   `json:"description"`
	Known       bool     `json:"known"`
}

// LocationType categorizes map nodes.
type LocationType string

const (
	LocationCity     LocationType = "City"
	LocationForest   LocationType = "Forest"
	LocationDungeon  LocationType = "Dungeon"
	LocationVillage  LocationType = "Village"
	LocationRuins    LocationType = "Ruins"
	LocationTemple   LocationType = "Temple"
	LocationLandmark LocationType = "Landmark"
)

// LocationNode is one map record. Coordinates are miles relative to an
// arbitrary world-center origin. Like lore, the map is append-only.
type LocationNode struct {
	Name        string       `json:"name"`
	Type        LocationType `json:"type"`
	X           int          `json:"x"`
	Y           int          `json:"y"`
	Description string       `json:"description"`
}

// NpcStatus is the life status of a known character.
type NpcStatus string

const (
	NpcAlive    NpcStatus = "Alive"
	NpcDeceased NpcStatus = "Deceased"
	NpcMissing  NpcStatus = "Missing"
	NpcUnknown  NpcStatus = "Unknown"
)

// Npc is a dossier record, keyed by name. Disposition is free text from the
// narrator ("Friendly", "Wary", "Indebted", ...), not a closed enum.
type Npc struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
	Disposition string    `json:"disposition"`
	Location    string    `json:"location"`
	Status      NpcStatus `json:"status"`
}

// Disposition buckets used by the presentation layer.
const (
	DispositionHostile  = "hostile"
	DispositionFriendly = "friendly"
	DispositionNeutral  = "neutral"
)

// DispositionBucket maps a free-text disposition into one of three display
// buckets by substring match.
func DispositionBucket(disposition string) string {
	d := strings.ToLower(disposition)
	switch {
	case strings.Contains(d, "hostile") || strings.Contains(d, "aggressive") || strings.Contains(d, "enemy"):
		return DispositionHostile
	case strings.Contains(d, "friendly") || strings.Contains(d, "ally") || strings.Contains(d, "indebted") || strings.Contains(d, "loyal"):
		return DispositionFriendly
	default:
		return DispositionNeutral
	}
}

// ItemType categorizes inventory records.
type ItemType string

const (
	ItemWeapon     ItemType = "Weapon"
	ItemArmor      ItemType = "Armor"
	ItemConsumable ItemType = "Consumable"
	ItemKeyItem    ItemType = "Key Item"
	ItemMaterial   ItemType = "Material"
	ItemMisc       ItemType = "Misc"
	ItemFocus      ItemType = "Focus"
	ItemArtifact   ItemType = "Artifact"
)

// Item is an inventory record, keyed by name. Quantity is always >= 1 while
// the record exists; a record at zero is removed entirely.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	IsEquipped  bool     `json:"is_equipped"`
	Effect      string   `json:"effect,omitempty"`
}

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestActive    QuestStatus = "Active"
	QuestCompleted QuestStatus = "Completed"
	QuestFailed    QuestStatus = "Failed"
)

// Quest is a mission record, keyed by title. Completed and Failed are
// terminal: no operation transitions a quest back to Active.
type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
	Objectives  []string    `json:"objectives"`
}

// ItemAction is one of the inventory operations the narrator may request.
type ItemAction string

const (
	ItemActionAdd     ItemAction = "add"
	ItemActionRemove  ItemAction = "remove"
	ItemActionEquip   ItemAction = "equip"
	ItemActionUnequip ItemAction = "unequip"
)

// ItemDetails carries the descriptive fields required when an item is first
// created by an add operation.
type ItemDetails struct {
	Type        ItemType `json:"type"`
	Description string   `json:"description"`
	Effect      string   `json:"effect,omitempty"`
}

// ItemOp is one inventory operation. Quantity zero means the default of 1.
type ItemOp struct {
	Action   ItemAction   `json:"action"`
	ItemName string       `json:"itemName"`
	Quantity int          `json:"quantity,omitempty"`
	Details  *ItemDetails `json:"itemDetails,omitempty"`
}

// QuestAction is one of the quest operations the narrator may request.
type QuestAction string

const (
	QuestActionStart    QuestAction = "start"
	QuestActionUpdate   QuestAction = "update"
	QuestActionComplete QuestAction = "complete"
	QuestActionFail     QuestAction = "fail"
)

// QuestOp is one quest operation. Objectives, when present, wholly replace
// the quest's objective list.
type QuestOp struct {
	Action      QuestAction `json:"action"`
	QuestTitle  string      `json:"questTitle"`
	Description string      `json:"description,omitempty"`
	Objectives  []string    `json:"objectives,omitempty"`
}
