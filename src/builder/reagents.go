package builder

import (
	"slices"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

const (
	GatheredSource = "Gathered"
	DroppedSource  = "Dropped"
	CraftedSource  = "Crafted"
	BoughtSource   = "Bought"
)

// Sources is the static content of the source file
var Sources = []string{GatheredSource, DroppedSource, CraftedSource, BoughtSource}

// SourceRecords returns the static source records
func SourceRecords() []types.Record {
	records := make([]types.Record, 0, len(Sources))
	for _, source := range Sources {
		records = append(records, types.Record{"name": source})
	}
	return records
}

var sourceCodes = map[int]string{
	1:  CraftedSource,
	2:  DroppedSource,
	5:  BoughtSource,
	15: GatheredSource,
	16: GatheredSource,
	17: GatheredSource,
	18: GatheredSource,
	19: GatheredSource,
	20: GatheredSource,
	23: GatheredSource,
}

// resolveSources maps raw item source codes to source names, without duplicates.
// Items without any source are gathered.
func resolveSources(codes []int) []string {
	if len(codes) == 0 {
		return []string{GatheredSource}
	}
	sources := []string{}
	for _, code := range codes {
		source, ok := sourceCodes[code]
		if ok && !slices.Contains(sources, source) {
			sources = append(sources, source)
		}
	}
	return sources
}

func (b *Builder) reagent(id int, rawName string, icons *wowhead.IconIndex) types.Reagent {
	return types.Reagent{
		Name:      normalizeName(rawName),
		WowheadID: id,
		LinkURL:   b.entityURL("item", id, rawName),
		IconURL:   icons.URL(wowhead.ItemType, id, rawName),
	}
}

// Reagents builds reagent records and their sources from the reagent item listing
func (b *Builder) Reagents(page *wowhead.Page) ([]types.Reagent, []types.ReagentSource) {
	reagents := newSet[types.Reagent]()
	reagentSources := []types.ReagentSource{}

	for _, row := range page.Tables[wowhead.ItemsTable] {
		id, ok := intField(row, "id")
		rawName := stripQuality(stringField(row, "name"))
		if !ok || rawName == "" {
			continue
		}

		reagent := b.reagent(id, rawName, page.Icons)
		if !reagents.add(reagent.Name, reagent) {
			continue
		}
		for _, source := range resolveSources(intList(row, "source")) {
			reagentSources = append(reagentSources, types.ReagentSource{ReagentName: reagent.Name, SourceName: source})
		}
	}

	return reagents.items, reagentSources
}

// ReagentVendors links a bought reagent to the vendors on its details page sold-by table.
// Vendors missing from the vendors index are skipped. The buy price is the copper part of the cost.
func (b *Builder) ReagentVendors(reagent string, page *wowhead.Page, vendors Index) []types.ReagentVendor {
	links := newSet[types.ReagentVendor]()

	for _, row := range page.Tables[wowhead.SoldByTable] {
		id, ok := intField(row, "id")
		if !ok {
			continue
		}
		vendor, known := vendors[id]
		if !known {
			continue
		}

		var price *int
		if cost := intList(row, "cost"); len(cost) > 0 && cost[0] >= 0 {
			price = &cost[0]
		}
		links.add(vendor, types.ReagentVendor{ReagentName: reagent, VendorName: vendor, BuyPrice: price})
	}

	return links.items
}
