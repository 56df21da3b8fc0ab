package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ogri-la/wowhead-scraper-go/src/builder"
	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/validation"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// write replaces an entity's file and counts its records for the data check
func (p *Pipeline) write(entity types.Entity, records []types.Record) error {
	header, err := p.rules.Header(p.version, entity)
	if err != nil {
		return err
	}
	if err := p.store.Write(entity, header, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", entity, err)
	}
	p.written[entity] = len(records)
	slog.Debug("wrote flat file", "entity", entity, "records", len(records), "path", p.store.Path(entity))
	return nil
}

// read loads a file written by an earlier stage
func (p *Pipeline) read(entity types.Entity) ([]types.Record, error) {
	records, err := p.store.Read(entity)
	if err != nil {
		if errors.Is(err, psv.ErrFileNotFound) {
			return nil, fmt.Errorf("%s has not been built yet: %w", entity, err)
		}
		return nil, err
	}
	return records, nil
}

// profession is the part of a stored profession record the later stages need
type profession struct {
	name string
	id   int
}

func (p *Pipeline) professions() ([]profession, error) {
	records, err := p.read(types.ProfessionEntity)
	if err != nil {
		return nil, err
	}
	professions := make([]profession, 0, len(records))
	for _, record := range records {
		id, ok := record.Int("wowhead_id")
		if !ok {
			slog.Warn("skipping profession without an id", "profession", record.String("name"))
			continue
		}
		professions = append(professions, profession{name: record.String("name"), id: id})
	}
	return professions, nil
}

// professionPage extracts tables from a profession's page. Every table is optional per page,
// professions list only what they have, see tableCoverage for the check across all of them.
func (p *Pipeline) professionPage(ctx context.Context, prof profession, tables ...string) (*wowhead.Page, error) {
	specs := make([]wowhead.TableSpec, len(tables))
	for i, table := range tables {
		specs[i] = wowhead.OptionalTable(table)
	}
	page, err := p.extractor.Extract(ctx, wowhead.SkillPath(prof.id), specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", prof.name, err)
	}
	return page, nil
}

// tableCoverage counts the profession pages each table was on. A profession only lists the
// tables it has, but a table missing from every profession page means the page format changed.
type tableCoverage struct {
	pages int
	found map[string]int
}

func newTableCoverage() *tableCoverage {
	return &tableCoverage{found: map[string]int{}}
}

func (c *tableCoverage) see(page *wowhead.Page, tables ...string) {
	c.pages++
	for _, table := range tables {
		if page.Has(table) {
			c.found[table]++
		}
	}
}

func (c *tableCoverage) require(tables ...string) error {
	if c.pages == 0 {
		return nil
	}
	for _, table := range tables {
		if c.found[table] == 0 {
			return fmt.Errorf("%w: table '%s' is on none of the %d profession pages", wowhead.ErrDataNotFound, table, c.pages)
		}
	}
	return nil
}

func (p *Pipeline) clearCache(ctx context.Context) (int, error) {
	if p.cache != nil {
		pruned, err := p.cache.Prune()
		if err != nil {
			return 0, err
		}
		slog.Info("pruned http cache", "entries", pruned)
	}

	removed, err := p.store.Clear()
	if err != nil {
		return 0, err
	}
	slog.Info("removed previous flat files", "files", removed)
	return 0, nil
}

func (p *Pipeline) prepareCache(ctx context.Context) (int, error) {
	for _, dir := range []string{p.store.Dir, p.cacheDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	return 0, nil
}

func (p *Pipeline) scrapeProfessions(ctx context.Context) (int, error) {
	page, err := p.extractor.Extract(ctx, wowhead.SkillsPath, wowhead.Table(wowhead.SkillsTable))
	if err != nil {
		return 0, err
	}
	professions := p.builder.Professions(page)
	return len(professions), p.write(types.ProfessionEntity, types.Records(professions))
}

func (p *Pipeline) scrapeLocations(ctx context.Context) (int, error) {
	page, err := p.extractor.Extract(ctx, wowhead.ZonesPath, wowhead.Table(wowhead.ZonesTable))
	if err != nil {
		return 0, err
	}
	locations := p.builder.Locations(page)
	return len(locations), p.write(types.LocationEntity, types.Records(locations))
}

func (p *Pipeline) scrapeVendors(ctx context.Context) (int, error) {
	locations, err := p.read(types.LocationEntity)
	if err != nil {
		return 0, err
	}
	page, err := p.extractor.Extract(ctx, wowhead.VendorsPath, wowhead.Table(wowhead.NPCsTable))
	if err != nil {
		return 0, err
	}

	vendors, links := p.builder.Vendors(page, builder.NewIndex(locations))
	if err := p.write(types.VendorEntity, types.Records(vendors)); err != nil {
		return 0, err
	}
	return len(vendors) + len(links), p.write(types.LocationVendorEntity, types.Records(links))
}

func (p *Pipeline) scrapeReagents(ctx context.Context) (int, error) {
	page, err := p.extractor.Extract(ctx, wowhead.ReagentsPath, wowhead.Table(wowhead.ItemsTable))
	if err != nil {
		return 0, err
	}

	reagents, sources := p.builder.Reagents(page)
	if err := p.write(types.SourceEntity, builder.SourceRecords()); err != nil {
		return 0, err
	}
	if err := p.write(types.ReagentEntity, types.Records(reagents)); err != nil {
		return 0, err
	}
	if err := p.write(types.ReagentSourceEntity, types.Records(sources)); err != nil {
		return 0, err
	}

	links, err := p.reagentVendors(ctx, reagents, sources)
	if err != nil {
		return 0, err
	}
	return len(reagents) + len(sources) + len(links), p.write(types.ReagentVendorEntity, types.Records(links))
}

// reagentVendors reads the sold-by table of every bought reagent's details page
func (p *Pipeline) reagentVendors(ctx context.Context, reagents []types.Reagent, sources []types.ReagentSource) ([]types.ReagentVendor, error) {
	vendors, err := p.read(types.VendorEntity)
	if err != nil {
		return nil, err
	}
	vendorIndex := builder.NewIndex(vendors)

	bought := map[string]bool{}
	for _, source := range sources {
		if source.SourceName == builder.BoughtSource {
			bought[source.ReagentName] = true
		}
	}

	links := []types.ReagentVendor{}
	for _, reagent := range reagents {
		if !bought[reagent.Name] {
			continue
		}
		page, err := p.extractor.Extract(ctx, wowhead.ItemPath(reagent.WowheadID), wowhead.OptionalTable(wowhead.SoldByTable))
		if err != nil {
			return nil, fmt.Errorf("failed to extract vendors of %s: %w", reagent.Name, err)
		}
		links = append(links, p.builder.ReagentVendors(reagent.Name, page, vendorIndex)...)
	}
	slog.Info("linked bought reagents to vendors", "reagents", len(bought), "links", len(links))
	return links, nil
}

func (p *Pipeline) scrapeEnchantments(ctx context.Context) (int, error) {
	professions, err := p.professions()
	if err != nil {
		return 0, err
	}

	coverage := newTableCoverage()
	enchantments := []types.Enchantment{}
	for _, prof := range professions {
		page, err := p.professionPage(ctx, prof, wowhead.RecipesTable)
		if err != nil {
			return 0, err
		}
		coverage.see(page, wowhead.RecipesTable)
		enchantments = append(enchantments, p.builder.Enchantments(prof.name, page)...)
	}
	if err := coverage.require(wowhead.RecipesTable); err != nil {
		return 0, err
	}
	return len(enchantments), p.write(types.EnchantmentEntity, types.Records(enchantments))
}

func (p *Pipeline) scrapeCraftableItems(ctx context.Context) (int, error) {
	professions, err := p.professions()
	if err != nil {
		return 0, err
	}

	coverage := newTableCoverage()
	items := []types.CraftableItem{}
	for _, prof := range professions {
		page, err := p.professionPage(ctx, prof, wowhead.CraftedItemsTable)
		if err != nil {
			return 0, err
		}
		coverage.see(page, wowhead.CraftedItemsTable)
		items = append(items, p.builder.CraftableItems(prof.name, page)...)
	}
	if err := coverage.require(wowhead.CraftedItemsTable); err != nil {
		return 0, err
	}
	// an item crafted by several professions is kept under the first
	items = builder.Dedupe(items, func(item types.CraftableItem) string { return item.Name })
	return len(items), p.write(types.CraftableItemEntity, types.Records(items))
}

func (p *Pipeline) scrapeProfessionData(ctx context.Context) (int, error) {
	professions, err := p.professions()
	if err != nil {
		return 0, err
	}
	locations, err := p.read(types.LocationEntity)
	if err != nil {
		return 0, err
	}
	items, err := p.read(types.CraftableItemEntity)
	if err != nil {
		return 0, err
	}
	enchantments, err := p.read(types.EnchantmentEntity)
	if err != nil {
		return 0, err
	}
	reagents, err := p.read(types.ReagentEntity)
	if err != nil {
		return 0, err
	}

	p.registry = builder.NewReagentRegistry(p.builder, p.resolver, reagents)
	locationIndex := builder.NewIndex(locations)
	itemIndex := builder.NewIndex(items)

	coverage := newTableCoverage()
	all := []*builder.ProfessionData{}
	for _, prof := range professions {
		page, err := p.professionPage(ctx, prof,
			wowhead.TrainersTable, wowhead.RecipeItemsTable, wowhead.RecipesTable)
		if err != nil {
			return 0, err
		}
		coverage.see(page, wowhead.TrainersTable, wowhead.RecipesTable)
		data, err := p.builder.ProfessionData(ctx, prof.name, page, builder.ProfessionLookups{
			Locations:      locationIndex,
			CraftableItems: itemIndex,
			Enchantments:   builder.NamesWhere(enchantments, "profession_name", prof.name),
			Reagents:       p.registry,
		})
		if err != nil {
			return 0, err
		}
		all = append(all, data)
	}
	if err := coverage.require(wowhead.TrainersTable, wowhead.RecipesTable); err != nil {
		return 0, err
	}
	merged := builder.MergeProfessionData(all...)

	files := []struct {
		entity  types.Entity
		records []types.Record
	}{
		{types.TrainerEntity, types.Records(merged.Trainers)},
		{types.ProfessionTrainerEntity, types.Records(merged.ProfessionTrainers)},
		{types.RecipeItemEntity, types.Records(merged.RecipeItems)},
		{types.RecipeEntity, types.Records(merged.Recipes)},
		{types.ReagentRecipeEntity, types.Records(merged.ReagentRecipes)},
		{types.RecipeTrainerEntity, types.Records(merged.RecipeTrainers)},
	}

	total := 0
	for _, file := range files {
		if err := p.write(file.entity, file.records); err != nil {
			return 0, err
		}
		total += len(file.records)
	}
	slog.Info("reagents discovered while building recipes", "reagents", len(p.registry.Pending()))
	return total, nil
}

func (p *Pipeline) scrapeSpecialisations(ctx context.Context) (int, error) {
	professions, err := p.professions()
	if err != nil {
		return 0, err
	}
	recipes, err := p.read(types.RecipeEntity)
	if err != nil {
		return 0, err
	}

	specialisations := []types.Specialisation{}
	links := []types.RecipeSpecialisation{}
	for _, prof := range professions {
		page, err := p.professionPage(ctx, prof, wowhead.SpecializationsTable)
		if err != nil {
			return 0, err
		}

		found := p.builder.Specialisations(prof.name, page)
		if len(found) == 0 {
			continue
		}
		index := builder.RecipeIndex(recipes, prof.name)

		for _, specialisation := range found {
			spellPage, err := p.extractor.Extract(ctx, wowhead.SpellPath(specialisation.WowheadID), wowhead.OptionalTable(wowhead.RecipesTable))
			if err != nil {
				return 0, fmt.Errorf("failed to extract %s: %w", specialisation.Name, err)
			}
			links = append(links, p.builder.RecipeSpecialisations(specialisation, spellPage, index)...)
		}
		specialisations = append(specialisations, found...)
	}

	specialisations = builder.Dedupe(specialisations, func(s types.Specialisation) string { return s.Name })
	links = builder.Dedupe(links, func(r types.RecipeSpecialisation) string {
		return r.RecipeName + "|" + r.SpecialisationName
	})

	if err := p.write(types.SpecialisationEntity, types.Records(specialisations)); err != nil {
		return 0, err
	}
	return len(specialisations) + len(links), p.write(types.RecipeSpecialisationEntity, types.Records(links))
}

// flushReagents appends the reagents discovered while building recipes to the reagent file
func (p *Pipeline) flushReagents() (int, error) {
	if p.registry == nil {
		return 0, nil
	}
	pending := p.registry.Flush()
	if len(pending) == 0 {
		return 0, nil
	}

	header, err := p.rules.Header(p.version, types.ReagentEntity)
	if err != nil {
		return 0, err
	}
	if err := p.store.Append(types.ReagentEntity, header, types.Records(pending)); err != nil {
		return 0, fmt.Errorf("failed to append reagents: %w", err)
	}
	p.written[types.ReagentEntity] += len(pending)
	slog.Info("appended discovered reagents", "reagents", len(pending))
	return len(pending), nil
}

func (p *Pipeline) checkData(ctx context.Context) (int, error) {
	appended, err := p.flushReagents()
	if err != nil {
		return 0, err
	}

	report, err := validation.NewChecker(p.rules, p.version, p.store).Check(p.written)
	if err != nil {
		return appended, err
	}
	p.report = report
	report.Log()
	report.Render(p.out)
	return appended, nil
}
