package types

// Reaction of an NPC towards a faction
type Reaction string

const (
	NeutralReaction  Reaction = "Neutral"
	FriendlyReaction Reaction = "Friendly"
	HostileReaction  Reaction = "Hostile"
	UnknownReaction  Reaction = "Unknown"
)

// value dereferences optional fields, nil pointers become nil (empty on disk).
func value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

type Profession struct {
	Name             string
	WowheadID        int
	LinkURL          string
	IconURL          *string
	IsMainProfession bool
}

func (p Profession) Record() Record {
	return Record{
		"name":                p.Name,
		"wowhead_id":          p.WowheadID,
		"profession_link_url": p.LinkURL,
		"icon_link_url":       value(p.IconURL),
		"is_main_profession":  p.IsMainProfession,
	}
}

type Location struct {
	Name          string
	WowheadID     int
	LinkURL       string
	LocationType  string
	FactionStatus string
}

func (l Location) Record() Record {
	return Record{
		"name":              l.Name,
		"wowhead_id":        l.WowheadID,
		"location_link_url": l.LinkURL,
		"location_type":     l.LocationType,
		"faction_status":    l.FactionStatus,
	}
}

type Vendor struct {
	Name               string
	WowheadID          int
	LinkURL            string
	ReactionToAlliance Reaction
	ReactionToHorde    Reaction
}

func (v Vendor) Record() Record {
	return Record{
		"name":                 v.Name,
		"wowhead_id":           v.WowheadID,
		"vendor_link_url":      v.LinkURL,
		"reaction_to_alliance": string(v.ReactionToAlliance),
		"reaction_to_horde":    string(v.ReactionToHorde),
	}
}

type Trainer struct {
	Name               string
	WowheadID          int
	LinkURL            string
	ReactionToAlliance Reaction
	ReactionToHorde    Reaction
	LocationName       *string
}

func (t Trainer) Record() Record {
	return Record{
		"name":                 t.Name,
		"wowhead_id":           t.WowheadID,
		"trainer_link_url":     t.LinkURL,
		"reaction_to_alliance": string(t.ReactionToAlliance),
		"reaction_to_horde":    string(t.ReactionToHorde),
		"location_name":        value(t.LocationName),
	}
}

// Reagent identity is its name. A reagent whose details page could not be resolved
// is stored under its wowhead id instead.
type Reagent struct {
	Name      string
	WowheadID int
	LinkURL   string
	IconURL   *string
}

func (r Reagent) Record() Record {
	return Record{
		"name":             r.Name,
		"wowhead_id":       r.WowheadID,
		"reagent_link_url": r.LinkURL,
		"icon_link_url":    value(r.IconURL),
	}
}

type Enchantment struct {
	Name           string
	WowheadID      int
	LinkURL        string
	IconURL        *string
	ProfessionName string
}

func (e Enchantment) Record() Record {
	return Record{
		"name":                 e.Name,
		"wowhead_id":           e.WowheadID,
		"enchantment_link_url": e.LinkURL,
		"icon_link_url":        value(e.IconURL),
		"profession_name":      e.ProfessionName,
	}
}

type CraftableItem struct {
	Name           string
	WowheadID      int
	LinkURL        string
	IconURL        *string
	ItemSlot       string
	SellPrice      *int
	ProfessionName string
}

func (c CraftableItem) Record() Record {
	return Record{
		"name":            c.Name,
		"wowhead_id":      c.WowheadID,
		"item_link_url":   c.LinkURL,
		"icon_link_url":   value(c.IconURL),
		"item_slot":       c.ItemSlot,
		"sell_price":      value(c.SellPrice),
		"profession_name": c.ProfessionName,
	}
}

type RecipeItem struct {
	Name               string
	WowheadID          int
	LinkURL            string
	IconURL            *string
	RequiredSkillLevel *int
	ProfessionName     string
}

func (r RecipeItem) Record() Record {
	return Record{
		"name":                 r.Name,
		"wowhead_id":           r.WowheadID,
		"item_link_url":        r.LinkURL,
		"icon_link_url":        value(r.IconURL),
		"required_skill_level": value(r.RequiredSkillLevel),
		"profession_name":      r.ProfessionName,
	}
}

// Recipe identity is "{name} - {profession}", see RecipeName.
// At most one of RecipeItemName, CraftableItemName and EnchantmentName is expected to be set
// by well formed data but nothing enforces it.
type Recipe struct {
	Name                  string
	WowheadID             int
	LinkURL               string
	IconURL               *string
	DifficultyRequirement int
	DifficultyCategories  [4]int
	MinimumAmountCreated  int
	MaximumAmountCreated  int
	TrainingCost          *int
	RecipeItemName        *string
	CraftableItemName     *string
	EnchantmentName       *string
	ProfessionName        string
}

// RecipeName builds the recipe identity, the profession suffix disambiguates same-named recipes.
func RecipeName(name, professionName string) string {
	return name + " - " + professionName
}

func (r Recipe) Record() Record {
	return Record{
		"name":                   r.Name,
		"wowhead_id":             r.WowheadID,
		"recipe_link_url":        r.LinkURL,
		"icon_link_url":          value(r.IconURL),
		"difficulty_requirement": r.DifficultyRequirement,
		"difficulty_category_1":  r.DifficultyCategories[0],
		"difficulty_category_2":  r.DifficultyCategories[1],
		"difficulty_category_3":  r.DifficultyCategories[2],
		"difficulty_category_4":  r.DifficultyCategories[3],
		"minimum_amount_created": r.MinimumAmountCreated,
		"maximum_amount_created": r.MaximumAmountCreated,
		"training_cost":          value(r.TrainingCost),
		"recipe_item_name":       value(r.RecipeItemName),
		"craftable_item_name":    value(r.CraftableItemName),
		"enchantment_name":       value(r.EnchantmentName),
		"profession_name":        r.ProfessionName,
	}
}

type Specialisation struct {
	Name           string
	WowheadID      int
	LinkURL        string
	IconURL        *string
	ProfessionName string
}

func (s Specialisation) Record() Record {
	return Record{
		"name":                    s.Name,
		"wowhead_id":              s.WowheadID,
		"specialisation_link_url": s.LinkURL,
		"icon_link_url":           value(s.IconURL),
		"profession_name":         s.ProfessionName,
	}
}

// Relationship rows. These have no identity of their own and are rebuilt on every run.

type LocationVendor struct{ LocationName, VendorName string }

func (r LocationVendor) Record() Record {
	return Record{"location_name": r.LocationName, "vendor_name": r.VendorName}
}

type ReagentSource struct{ ReagentName, SourceName string }

func (r ReagentSource) Record() Record {
	return Record{"reagent_name": r.ReagentName, "source_name": r.SourceName}
}

// ReagentVendor is a vendor selling a reagent, BuyPrice is in copper
type ReagentVendor struct {
	ReagentName string
	VendorName  string
	BuyPrice    *int
}

func (r ReagentVendor) Record() Record {
	return Record{"reagent_name": r.ReagentName, "vendor_name": r.VendorName, "buy_price": value(r.BuyPrice)}
}

type ProfessionTrainer struct{ ProfessionName, TrainerName string }

func (r ProfessionTrainer) Record() Record {
	return Record{"profession_name": r.ProfessionName, "trainer_name": r.TrainerName}
}

type ReagentRecipe struct {
	ReagentName string
	RecipeName  string
	Amount      int
}

func (r ReagentRecipe) Record() Record {
	return Record{"reagent_name": r.ReagentName, "recipe_name": r.RecipeName, "amount": r.Amount}
}

type RecipeTrainer struct{ RecipeName, TrainerName string }

func (r RecipeTrainer) Record() Record {
	return Record{"recipe_name": r.RecipeName, "trainer_name": r.TrainerName}
}

type RecipeSpecialisation struct{ RecipeName, SpecialisationName string }

func (r RecipeSpecialisation) Record() Record {
	return Record{"recipe_name": r.RecipeName, "specialisation_name": r.SpecialisationName}
}

// Recordable is anything that flattens into a Record
type Recordable interface {
	Record() Record
}

// Records flattens a slice of domain values
func Records[T Recordable](items []T) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, item.Record())
	}
	return records
}
