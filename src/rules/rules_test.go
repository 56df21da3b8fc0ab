package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

func TestLoad_EveryVersionHasEveryEntity(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	for _, version := range types.AllSiteVersions {
		if diff := cmp.Diff(types.AllEntities, r.Entities(version)); diff != "" {
			t.Errorf("Entities(%s) mismatch (-want +got):\n%s", version, diff)
		}
	}
}

func TestHeader(t *testing.T) {
	r := MustLoad()

	tests := []struct {
		entity   types.Entity
		expected []string
	}{
		{types.ProfessionEntity, []string{"name", "wowhead_id", "profession_link_url", "icon_link_url", "is_main_profession"}},
		{types.ReagentRecipeEntity, []string{"reagent_name", "recipe_name", "amount"}},
		{types.TrainerEntity, []string{"name", "wowhead_id", "trainer_link_url", "reaction_to_alliance", "reaction_to_horde", "location_name"}},
		{types.RecipeEntity, []string{
			"name", "wowhead_id", "recipe_link_url", "icon_link_url", "difficulty_requirement",
			"difficulty_category_1", "difficulty_category_2", "difficulty_category_3", "difficulty_category_4",
			"minimum_amount_created", "maximum_amount_created", "training_cost",
			"recipe_item_name", "craftable_item_name", "enchantment_name", "profession_name",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			got, err := r.Header(types.TBCSite, tt.entity)
			if err != nil {
				t.Fatalf("Header() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Header() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeader_MatchesRecordKeys(t *testing.T) {
	r := MustLoad()

	records := map[types.Entity]types.Record{
		types.ProfessionEntity:     types.Profession{}.Record(),
		types.LocationEntity:       types.Location{}.Record(),
		types.VendorEntity:         types.Vendor{}.Record(),
		types.ReagentEntity:        types.Reagent{}.Record(),
		types.EnchantmentEntity:    types.Enchantment{}.Record(),
		types.CraftableItemEntity:  types.CraftableItem{}.Record(),
		types.TrainerEntity:        types.Trainer{}.Record(),
		types.RecipeItemEntity:     types.RecipeItem{}.Record(),
		types.RecipeEntity:         types.Recipe{}.Record(),
		types.SpecialisationEntity: types.Specialisation{}.Record(),
		types.ReagentRecipeEntity:  types.ReagentRecipe{}.Record(),
		types.ReagentVendorEntity:  types.ReagentVendor{}.Record(),
	}

	for entity, record := range records {
		header, err := r.Header(types.ClassicSite, entity)
		if err != nil {
			t.Fatal(err)
		}
		if len(header) != len(record) {
			t.Errorf("%s: header has %d fields, record has %d", entity, len(header), len(record))
		}
		for _, name := range header {
			if _, ok := record[name]; !ok {
				t.Errorf("%s: record is missing header field %q", entity, name)
			}
		}
	}
}

func TestFields_Constraints(t *testing.T) {
	r := MustLoad()

	fields, err := r.Fields(types.ClassicSite, types.TrainerEntity)
	if err != nil {
		t.Fatal(err)
	}

	reaction := fields[3]
	if reaction.Name != "reaction_to_alliance" || !reaction.NotNull {
		t.Errorf("unexpected reaction rule: %+v", reaction)
	}
	if diff := cmp.Diff([]string{"Neutral", "Friendly", "Hostile", "Unknown"}, reaction.Enum); diff != "" {
		t.Errorf("reaction enum mismatch (-want +got):\n%s", diff)
	}

	entity, field, ok := fields[5].Reference()
	if !ok || entity != types.LocationEntity || field != "name" {
		t.Errorf("Reference() = %s, %s, %v", entity, field, ok)
	}
}

func TestFields_UnknownVersion(t *testing.T) {
	r := MustLoad()
	if _, err := r.Fields("retail", types.ProfessionEntity); !errors.Is(err, types.ErrInvalidSiteVersion) {
		t.Errorf("Fields() error = %v, want ErrInvalidSiteVersion", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "schemas: [unclosed"},
		{"no schemas", "schemas: []"},
		{"no versions listed", "schemas:\n  - entities:\n      source:\n        - {field: name, type: string}"},
		{"unknown version", "schemas:\n  - versions: [retail]\n    entities:\n      source:\n        - {field: name, type: string}"},
		{"version twice", "schemas:\n  - versions: [classic]\n    entities: {}\n  - versions: [tbc, classic]\n    entities: {}"},
		{"unknown type", "schemas:\n  - versions: [classic]\n    entities:\n      source:\n        - {field: name, type: text}"},
		{"unnamed field", "schemas:\n  - versions: [classic]\n    entities:\n      source:\n        - {type: string}"},
		{"bad reference", "schemas:\n  - versions: [classic]\n    entities:\n      source:\n        - {field: name, type: string, references: nodot}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse() expected error")
			}
		})
	}
}

func TestParse_SchemaPerVersionGroup(t *testing.T) {
	doc := `
schemas:
  - versions: [classic, tbc]
    entities:
      source:
        - {field: name, type: string}
  - versions: [cata]
    entities:
      source:
        - {field: name, type: string}
        - {field: expansion, type: integer}
`
	r, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	tests := []struct {
		version  types.SiteVersion
		expected []string
	}{
		{types.ClassicSite, []string{"name"}},
		{types.TBCSite, []string{"name"}},
		{types.CataSite, []string{"name", "expansion"}},
	}
	for _, tt := range tests {
		got, err := r.Header(tt.version, types.SourceEntity)
		if err != nil {
			t.Fatalf("Header(%s) unexpected error: %v", tt.version, err)
		}
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("Header(%s) mismatch (-want +got):\n%s", tt.version, diff)
		}
	}

	if _, err := r.Fields(types.WotLKSite, types.SourceEntity); !errors.Is(err, types.ErrInvalidSiteVersion) {
		t.Errorf("Fields(wotlk) error = %v, want ErrInvalidSiteVersion", err)
	}
}
