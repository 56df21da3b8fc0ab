package builder

import (
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

const notEquipable = "Not equipable"

var itemSlots = map[int]string{
	0:  notEquipable,
	1:  "Head",
	2:  "Neck",
	3:  "Shoulder",
	4:  "Shirt",
	5:  "Chest",
	6:  "Waist",
	7:  "Legs",
	8:  "Feet",
	9:  "Wrist",
	10: "Hands",
	11: "Finger",
	12: "Trinket",
	13: "One-Hand",
	14: "Shield",
	15: "Ranged",
	16: "Back",
	17: "Two-Hand",
	18: "Bag",
	19: "Tabard",
	20: "Chest",
	21: "Main Hand",
	22: "Off Hand",
	23: "Held In Off-hand",
	24: "Projectile",
	25: "Thrown",
	26: "Ranged",
	28: "Relic",
}

func itemSlot(code int, ok bool) string {
	if !ok {
		return notEquipable
	}
	return lookup(itemSlots, code, true)
}

// CraftableItems builds the items a profession creates
func (b *Builder) CraftableItems(profession string, page *wowhead.Page) []types.CraftableItem {
	items := newSet[types.CraftableItem]()

	for _, row := range page.Tables[wowhead.CraftedItemsTable] {
		id, ok := intField(row, "id")
		rawName := stripQuality(stringField(row, "name"))
		if !ok || rawName == "" {
			continue
		}

		slot, hasSlot := intField(row, "slot")
		name := normalizeName(rawName)
		items.add(name, types.CraftableItem{
			Name:           name,
			WowheadID:      id,
			LinkURL:        b.entityURL("item", id, rawName),
			IconURL:        page.Icons.URL(wowhead.ItemType, id, rawName),
			ItemSlot:       itemSlot(slot, hasSlot),
			SellPrice:      intPtrField(row, "sellprice"),
			ProfessionName: profession,
		})
	}

	return items.items
}

// Enchantments builds the enchantments of a profession: its recipes that create no item
func (b *Builder) Enchantments(profession string, page *wowhead.Page) []types.Enchantment {
	enchantments := newSet[types.Enchantment]()

	for _, row := range page.Tables[wowhead.RecipesTable] {
		if len(intList(row, "creates")) > 0 {
			continue
		}
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		enchantments.add(name, types.Enchantment{
			Name:           name,
			WowheadID:      id,
			LinkURL:        b.entityURL("spell", id, rawName),
			IconURL:        page.Icons.URL(wowhead.SpellType, id, rawName),
			ProfessionName: profession,
		})
	}

	return enchantments.items
}

// Dedupe keeps the first of each name, used when merging per-profession results
func Dedupe[T any](items []T, key func(T) string) []T {
	kept := newSet[T]()
	for _, item := range items {
		kept.add(key(item), item)
	}
	return kept.items
}
