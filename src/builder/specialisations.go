package builder

import (
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// Specialisations builds the specialisations listed on a profession page
func (b *Builder) Specialisations(profession string, page *wowhead.Page) []types.Specialisation {
	specialisations := newSet[types.Specialisation]()

	for _, row := range page.Tables[wowhead.SpecializationsTable] {
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		specialisations.add(name, types.Specialisation{
			Name:           name,
			WowheadID:      id,
			LinkURL:        b.entityURL("spell", id, rawName),
			IconURL:        page.Icons.URL(wowhead.SpellType, id, rawName),
			ProfessionName: profession,
		})
	}

	return specialisations.items
}

// RecipeSpecialisations links the recipes listed on a specialisation's page to it.
// recipes indexes the profession's stored recipes by wowhead id; unknown recipes are skipped.
func (b *Builder) RecipeSpecialisations(specialisation types.Specialisation, page *wowhead.Page, recipes Index) []types.RecipeSpecialisation {
	byName := map[string]bool{}
	for _, name := range recipes {
		byName[name] = true
	}

	links := newSet[types.RecipeSpecialisation]()
	for _, row := range page.Tables[wowhead.RecipesTable] {
		id, _ := intField(row, "id")
		name, known := recipes[id]
		if !known {
			candidate := types.RecipeName(normalizeName(stringField(row, "name")), specialisation.ProfessionName)
			if !byName[candidate] {
				continue
			}
			name = candidate
		}
		links.add(name, types.RecipeSpecialisation{RecipeName: name, SpecialisationName: specialisation.Name})
	}

	return links.items
}

// RecipeIndex indexes the stored recipes of one profession by wowhead id
func RecipeIndex(records []types.Record, profession string) Index {
	index := Index{}
	for _, record := range records {
		if record.String("profession_name") != profession {
			continue
		}
		if id, ok := record.Int("wowhead_id"); ok {
			index[id] = record.String("name")
		}
	}
	return index
}
