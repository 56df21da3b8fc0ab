package types

import (
	"fmt"
	"strconv"
)

// Entity names a flat-file entity or relationship type.
// The name doubles as the file name (without extension) and the table name.
type Entity string

const (
	ProfessionEntity           Entity = "profession"
	LocationEntity             Entity = "location"
	VendorEntity               Entity = "vendor"
	LocationVendorEntity       Entity = "location_vendor"
	SourceEntity               Entity = "source"
	ReagentEntity              Entity = "reagent"
	ReagentSourceEntity        Entity = "reagent_source"
	ReagentVendorEntity        Entity = "reagent_vendor"
	EnchantmentEntity          Entity = "enchantment"
	CraftableItemEntity        Entity = "craftable_item"
	TrainerEntity              Entity = "trainer"
	ProfessionTrainerEntity    Entity = "profession_trainer"
	RecipeItemEntity           Entity = "recipe_item"
	RecipeEntity               Entity = "recipe"
	ReagentRecipeEntity        Entity = "reagent_recipe"
	RecipeTrainerEntity        Entity = "recipe_trainer"
	SpecialisationEntity       Entity = "specialisation"
	RecipeSpecialisationEntity Entity = "recipe_specialisation"
)

// AllEntities in load order: entities before the relationships that reference them.
var AllEntities = []Entity{
	ProfessionEntity, LocationEntity, VendorEntity, LocationVendorEntity,
	SourceEntity, ReagentEntity, ReagentSourceEntity, ReagentVendorEntity,
	EnchantmentEntity, CraftableItemEntity,
	TrainerEntity, ProfessionTrainerEntity, RecipeItemEntity, RecipeEntity,
	ReagentRecipeEntity, RecipeTrainerEntity,
	SpecialisationEntity, RecipeSpecialisationEntity,
}

// Record is a flat entity record: field name to scalar value (string, int, bool or nil).
// Records read back from disk only ever hold strings.
type Record map[string]any

// String returns the field formatted as it would be written to disk
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the field as an integer, parsing strings when needed
func (r Record) Int(field string) (int, bool) {
	switch v := r[field].(type) {
	case int:
		return v, true
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	default:
		return 0, false
	}
}
