package builder

import (
	"slices"
	"sort"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

const (
	mainProfessionCategory      = 11
	secondaryProfessionCategory = 9
)

// secondary skills that are professions, the rest of the category is weapon and riding skills
var secondaryProfessions = []string{"Cooking", "First Aid", "Fishing"}

// Professions builds the profession records from the skills listing.
// Names differing only in case are the same profession, the first one listed is kept.
func (b *Builder) Professions(page *wowhead.Page) []types.Profession {
	professions := newSet[types.Profession]()

	for _, row := range page.Tables[wowhead.SkillsTable] {
		category, _ := intField(row, "category")
		rawName := stringField(row, "name")
		isMain := category == mainProfessionCategory
		if !isMain && !(category == secondaryProfessionCategory && slices.Contains(secondaryProfessions, rawName)) {
			continue
		}

		id, ok := intField(row, "id")
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		professions.add(identityKey(name), types.Profession{
			Name:             name,
			WowheadID:        id,
			LinkURL:          b.professionURL(rawName),
			IconURL:          page.Icons.URL(wowhead.SkillType, id, rawName),
			IsMainProfession: isMain,
		})
	}

	result := professions.items
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
