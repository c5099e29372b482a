package state

// Pure merge functions for the entity collections. Each takes the current
// collection and a batch of incoming records or operations and returns the
// new collection. Inputs are never mutated, so callers can reason about each
// merge independently and snapshots stay cheap to test.
//
// Lore and locations are append-only and do NOT dedupe by title/name, while
// NPCs, inventory and quests upsert by their identity field. The asymmetry
// is deliberate: the journal and map grow monotonically.

// MergeLore appends a batch of journal entries.
func MergeLore(existing, incoming []LoreEntry) []LoreEntry {
	if len(incoming) == 0 {
		return existing
	}
	merged := make([]LoreEntry, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	return append(merged, incoming...)
}

// MergeLocations appends a batch of map nodes.
func MergeLocations(existing, incoming []LocationNode) []LocationNode {
	if len(incoming) == 0 {
		return existing
	}
	merged := make([]LocationNode, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	return append(merged, incoming...)
}

// MergeNPCs upserts a batch of dossier records by name. For a matching name,
// non-empty incoming fields overwrite and absent fields are preserved; the
// original record's ID is kept. Unmatched names are inserted as new records.
func MergeNPCs(existing, incoming []Npc) []Npc {
	merged := make([]Npc, len(existing))
	copy(merged, existing)

	for _, npc := range incoming {
		idx := -1
		for i := range merged {
			if merged[i].Name == npc.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, npc)
			continue
		}

		updated := merged[idx]
		if npc.Role != "" {
			updated.Role = npc.Role
		}
		if npc.Description != "" {
			updated.Description = npc.Description
		}
		if npc.Disposition != "" {
			updated.Disposition = npc.Disposition
		}
		if npc.Location != "" {
			updated.Location = npc.Location
		}
		if npc.Status != "" {
			updated.Status = npc.Status
		}
		merged[idx] = updated
	}
	return merged
}

// ApplyInventoryOps applies a batch of inventory operations in order.
//
//   - add: increments quantity for an existing name; creates the record when
//     details are supplied, and silently skips the op otherwise.
//   - remove: decrements quantity and deletes the record at zero or below.
//   - equip/unequip: toggles the flag on an existing record; no-op when the
//     name is unknown. These never create items.
func ApplyInventoryOps(items []Item, ops []ItemOp) []Item {
	updated := make([]Item, len(items))
	copy(updated, items)

	for _, op := range ops {
		qty := op.Quantity
		if qty <= 0 {
			qty = 1
		}

		idx := -1
		for i := range updated {
			if updated[i].Name == op.ItemName {
				idx = i
				break
			}
		}

		switch op.Action {
		case ItemActionAdd:
			if idx >= 0 {
				updated[idx].Quantity += qty
				break
			}
			if op.Details == nil {
				// First add for an unknown item needs details to create it.
				break
			}
			itemType := op.Details.Type
			if itemType == "" {
				itemType = ItemMisc
			}
			updated = append(updated, Item{
				ID:          newEntityID(),
				Name:        op.ItemName,
				Type:        itemType,
				Description: op.Details.Description,
				Quantity:    qty,
				Effect:      op.Details.Effect,
			})
		case ItemActionRemove:
			if idx < 0 {
				break
			}
			updated[idx].Quantity -= qty
			if updated[idx].Quantity <= 0 {
				updated = append(updated[:idx], updated[idx+1:]...)
			}
		case ItemActionEquip:
			if idx >= 0 {
				updated[idx].IsEquipped = true
			}
		case ItemActionUnequip:
			if idx >= 0 {
				updated[idx].IsEquipped = false
			}
		}
	}
	return updated
}

// ApplyQuestOps applies a batch of quest operations in order.
//
//   - start: creates an Active quest; no-op when the title already exists.
//   - complete/fail: one-way transition to the terminal status.
//   - update: replaces description and/or objectives. Status is untouched,
//     so updating a Completed quest never revives it.
func ApplyQuestOps(quests []Quest, ops []QuestOp) []Quest {
	updated := make([]Quest, len(quests))
	copy(updated, quests)

	for _, op := range ops {
		idx := -1
		for i := range updated {
			if updated[i].Title == op.QuestTitle {
				idx = i
				break
			}
		}

		switch op.Action {
		case QuestActionStart:
			if idx >= 0 {
				break
			}
			objectives := op.Objectives
			if objectives == nil {
				objectives = []string{}
			}
			updated = append(updated, Quest{
				ID:          newEntityID(),
				Title:       op.QuestTitle,
				Description: op.Description,
				Status:      QuestActive,
				Objectives:  objectives,
			})
		case QuestActionComplete:
			if idx >= 0 {
				updated[idx].Status = QuestCompleted
			}
		case QuestActionFail:
			if idx >= 0 {
				updated[idx].Status = QuestFailed
			}
		case QuestActionUpdate:
			if idx < 0 {
				break
			}
			if op.Description != "" {
				updated[idx].Description = op.Description
			}
			if op.Objectives != nil {
				updated[idx].Objectives = op.Objectives
			}
		}
	}
	return updated
}
