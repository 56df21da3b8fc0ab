package builder

import (
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

const unknownBucket = "Unknown"

var locationTypes = map[int]string{
	0:  "Eastern Kingdoms",
	1:  "Kalimdor",
	2:  "Dungeon",
	3:  "Raid",
	6:  "Battleground",
	8:  "Outland",
	9:  "Arena",
	10: "Northrend",
}

var factionStatuses = map[int]string{
	0: "Alliance",
	1: "Horde",
	2: "Contested",
	3: "Sanctuary",
	4: "PvP",
	5: "World PvP",
}

// lookup maps a raw code through an enumeration, anything unlisted or missing is Unknown
func lookup(enum map[int]string, code int, ok bool) string {
	if !ok {
		return unknownBucket
	}
	if value, known := enum[code]; known {
		return value
	}
	return unknownBucket
}

// Locations builds the location records from the zones listing
func (b *Builder) Locations(page *wowhead.Page) []types.Location {
	locations := newSet[types.Location]()

	for _, row := range page.Tables[wowhead.ZonesTable] {
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		category, hasCategory := intField(row, "category")
		territory, hasTerritory := intField(row, "territory")

		name := normalizeName(rawName)
		locations.add(name, types.Location{
			Name:          name,
			WowheadID:     id,
			LinkURL:       b.entityURL("zone", id, rawName),
			LocationType:  lookup(locationTypes, category, hasCategory),
			FactionStatus: lookup(factionStatuses, territory, hasTerritory),
		})
	}

	return locations.items
}
