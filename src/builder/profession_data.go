package builder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// trainerSource is the recipe source code for "taught by a trainer"
const trainerSource = 6

// prefixes recipe items carry in front of the name of the recipe they teach
var recipeItemPrefixes = []string{
	"Recipe: ", "Pattern: ", "Plans: ", "Formula: ", "Schematic: ", "Manual: ", "Design: ", "Technique: ",
}

func stripRecipeItemPrefix(name string) string {
	for _, prefix := range recipeItemPrefixes {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return rest
		}
	}
	return name
}

// ProfessionLookups are the sets built by earlier stages that profession data refers to
type ProfessionLookups struct {
	Locations      Index
	CraftableItems Index
	// Enchantments holds the enchantment names of this profession
	Enchantments map[string]bool
	Reagents     *ReagentRegistry
}

// ProfessionData is everything built from the trainers, recipe items and recipes of professions
type ProfessionData struct {
	Trainers           []types.Trainer
	ProfessionTrainers []types.ProfessionTrainer
	RecipeItems        []types.RecipeItem
	Recipes            []types.Recipe
	ReagentRecipes     []types.ReagentRecipe
	RecipeTrainers     []types.RecipeTrainer
}

// ProfessionData builds the profession's trainers, then its recipe items, then its recipes
// and their relationships, each step depending on the previous one.
func (b *Builder) ProfessionData(ctx context.Context, profession string, page *wowhead.Page, lookups ProfessionLookups) (*ProfessionData, error) {
	data := &ProfessionData{}

	trainerNames := b.trainers(profession, page, lookups.Locations, data)
	recipeItemNames := b.recipeItems(profession, page, data)
	if err := b.recipes(ctx, profession, page, lookups, trainerNames, recipeItemNames, data); err != nil {
		return nil, err
	}

	slog.Debug("built profession data", "profession", profession,
		"trainers", len(data.Trainers), "recipe-items", len(data.RecipeItems), "recipes", len(data.Recipes))
	return data, nil
}

func (b *Builder) trainers(profession string, page *wowhead.Page, locations Index, data *ProfessionData) []string {
	trainers := newSet[types.Trainer]()

	for _, row := range page.Tables[wowhead.TrainersTable] {
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		alliance, horde := resolveReactions(row)
		trainer := types.Trainer{
			Name:               name,
			WowheadID:          id,
			LinkURL:            b.entityURL("npc", id, rawName),
			ReactionToAlliance: alliance,
			ReactionToHorde:    horde,
		}
		for _, zoneID := range intList(row, "location") {
			if locationName, known := locations[zoneID]; known {
				trainer.LocationName = &locationName
				break
			}
		}

		if trainers.add(name, trainer) {
			data.ProfessionTrainers = append(data.ProfessionTrainers, types.ProfessionTrainer{ProfessionName: profession, TrainerName: name})
		}
	}

	data.Trainers = trainers.items
	names := make([]string, 0, len(trainers.items))
	for _, trainer := range trainers.items {
		names = append(names, trainer.Name)
	}
	return names
}

// recipeItems builds the recipe items and returns, for each recipe name they teach, the item name
func (b *Builder) recipeItems(profession string, page *wowhead.Page, data *ProfessionData) map[string]string {
	recipeNames := []string{}
	for _, row := range page.Tables[wowhead.RecipesTable] {
		if name := stringField(row, "name"); name != "" {
			recipeNames = append(recipeNames, name)
		}
	}

	items := newSet[types.RecipeItem]()
	taughtBy := map[string]string{}

	for _, row := range page.Tables[wowhead.RecipeItemsTable] {
		id, ok := intField(row, "id")
		rawName := stripQuality(stringField(row, "name"))
		if !ok || rawName == "" {
			continue
		}

		name := normalizeName(rawName)
		if !items.add(name, types.RecipeItem{
			Name:               name,
			WowheadID:          id,
			LinkURL:            b.entityURL("item", id, rawName),
			IconURL:            page.Icons.URL(wowhead.ItemType, id, rawName),
			RequiredSkillLevel: intPtrField(row, "reqskill"),
			ProfessionName:     profession,
		}) {
			continue
		}

		recipe, found := bestMatch(stripRecipeItemPrefix(rawName), recipeNames)
		if !found {
			slog.Debug("recipe item teaches no known recipe", "profession", profession, "item", rawName)
			continue
		}
		if _, taken := taughtBy[recipe]; !taken {
			taughtBy[recipe] = name
		}
	}

	data.RecipeItems = items.items
	return taughtBy
}

func (b *Builder) recipes(ctx context.Context, profession string, page *wowhead.Page, lookups ProfessionLookups,
	trainerNames []string, taughtBy map[string]string, data *ProfessionData) error {

	recipes := newSet[types.Recipe]()

	for _, row := range page.Tables[wowhead.RecipesTable] {
		id, ok := intField(row, "id")
		rawName := stringField(row, "name")
		if !ok || rawName == "" {
			continue
		}

		name := types.RecipeName(normalizeName(rawName), profession)
		if recipes.has(name) {
			slog.Debug("skipping duplicate recipe", "recipe", name, "id", id)
			continue
		}

		requirement, _ := intField(row, "learnedat")
		var categories [4]int
		for i, c := range intList(row, "colors") {
			if i < len(categories) {
				categories[i] = c
			}
		}

		recipe := types.Recipe{
			Name:                  name,
			WowheadID:             id,
			LinkURL:               b.entityURL("spell", id, rawName),
			IconURL:               page.Icons.URL(wowhead.SpellType, id, rawName),
			DifficultyRequirement: requirement,
			DifficultyCategories:  resolveDifficulty(requirement, categories),
			TrainingCost:          intPtrField(row, "trainingcost"),
			ProfessionName:        profession,
		}

		creates := intList(row, "creates")
		minimum, maximum := 1, 1
		if len(creates) > 0 {
			if len(creates) > 1 {
				minimum = creates[1]
			}
			maximum = minimum
			if len(creates) > 2 {
				maximum = creates[2]
			}
			if itemName, known := lookups.CraftableItems[creates[0]]; known {
				recipe.CraftableItemName = &itemName
			}
			if recipe.IconURL == nil {
				recipe.IconURL = page.Icons.URL(wowhead.ItemType, creates[0], "")
			}
		} else if enchantment := normalizeName(rawName); lookups.Enchantments[enchantment] {
			recipe.EnchantmentName = &enchantment
		}
		recipe.MinimumAmountCreated, recipe.MaximumAmountCreated = resolveAmounts(minimum, maximum)

		if itemName, ok := taughtBy[rawName]; ok {
			recipe.RecipeItemName = &itemName
		}

		reagents, err := b.reagentRecipes(ctx, name, row, lookups.Reagents)
		if err != nil {
			return fmt.Errorf("failed to resolve reagents of '%s': %w", name, err)
		}

		recipes.add(name, recipe)
		data.ReagentRecipes = append(data.ReagentRecipes, reagents...)

		if slices.Contains(intList(row, "source"), trainerSource) {
			for _, trainer := range trainerNames {
				data.RecipeTrainers = append(data.RecipeTrainers, types.RecipeTrainer{RecipeName: name, TrainerName: trainer})
			}
		}
	}

	data.Recipes = recipes.items
	return nil
}

// reagentRecipes reads the [[item id, amount], ...] reagent list of a recipe
func (b *Builder) reagentRecipes(ctx context.Context, recipe string, row wowhead.RawRecord, registry *ReagentRegistry) ([]types.ReagentRecipe, error) {
	raw, _ := row["reagents"].([]any)
	amounts := newSet[types.ReagentRecipe]()

	for _, entry := range raw {
		pair, ok := entry.([]any)
		if !ok || len(pair) == 0 {
			continue
		}
		id, ok := toInt(pair[0])
		if !ok {
			continue
		}
		amount := 1
		if len(pair) > 1 {
			if a, ok := toInt(pair[1]); ok && a > 0 {
				amount = a
			}
		}

		name, err := registry.Name(ctx, id)
		if err != nil {
			return nil, err
		}
		amounts.add(name, types.ReagentRecipe{ReagentName: name, RecipeName: recipe, Amount: amount})
	}

	return amounts.items, nil
}

// MergeProfessionData combines the data of several professions.
// Trainers and recipe items shared between professions are kept once, first wins.
func MergeProfessionData(all ...*ProfessionData) *ProfessionData {
	merged := &ProfessionData{}
	for _, data := range all {
		if data == nil {
			continue
		}
		merged.Trainers = append(merged.Trainers, data.Trainers...)
		merged.ProfessionTrainers = append(merged.ProfessionTrainers, data.ProfessionTrainers...)
		merged.RecipeItems = append(merged.RecipeItems, data.RecipeItems...)
		merged.Recipes = append(merged.Recipes, data.Recipes...)
		merged.ReagentRecipes = append(merged.ReagentRecipes, data.ReagentRecipes...)
		merged.RecipeTrainers = append(merged.RecipeTrainers, data.RecipeTrainers...)
	}

	merged.Trainers = Dedupe(merged.Trainers, func(t types.Trainer) string { return t.Name })
	merged.RecipeItems = Dedupe(merged.RecipeItems, func(r types.RecipeItem) string { return r.Name })
	merged.Recipes = Dedupe(merged.Recipes, func(r types.Recipe) string { return r.Name })
	merged.ProfessionTrainers = Dedupe(merged.ProfessionTrainers, func(r types.ProfessionTrainer) string {
		return r.ProfessionName + "|" + r.TrainerName
	})
	merged.RecipeTrainers = Dedupe(merged.RecipeTrainers, func(r types.RecipeTrainer) string {
		return r.RecipeName + "|" + r.TrainerName
	})
	return merged
}
