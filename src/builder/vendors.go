package builder

import (
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// Vendors builds vendor records and the zones they can be found in.
// Zones missing from the locations index are skipped.
func (b *Builder) Vendors(page *wowhead.Page, locations Index) ([]types.Vendor, []types.LocationVendor) {
	vendors := newSet[types.Vendor]()
	locationVendors := newSet[types.LocationVendor]()

	for _, row := range page.Tables[wowhead.NPCsTable] {
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		alliance, horde := resolveReactions(row)
		vendors.add(name, types.Vendor{
			Name:               name,
			WowheadID:          id,
			LinkURL:            b.entityURL("npc", id, rawName),
			ReactionToAlliance: alliance,
			ReactionToHorde:    horde,
		})

		for _, zoneID := range intList(row, "location") {
			locationName, known := locations[zoneID]
			if !known {
				continue
			}
			locationVendors.add(locationName+"|"+name, types.LocationVendor{LocationName: locationName, VendorName: name})
		}
	}

	return vendors.items, locationVendors.items
}
