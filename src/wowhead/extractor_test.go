package wowhead

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

func TestParsePage_Skills(t *testing.T) {
	page, err := ParsePage("https://www.wowhead.com/classic/skills", []byte(skillsPage), repair.NewHeuristic(), Table(SkillsTable))
	if err != nil {
		t.Fatalf("ParsePage() unexpected error: %v", err)
	}

	expected := []RawRecord{
		{"category": 11, "id": 171, "name": "Alchemy", "recipes": 143},
		{"category": 9, "id": 185, "name": "Cooking", "recipes": 68},
	}
	if diff := cmp.Diff(expected, page.Tables[SkillsTable]); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}

	if icon, ok := page.Icons.ByName("Cooking"); !ok || icon != "inv_misc_food_15" {
		t.Errorf("Icons.ByName(Cooking) = %s, %v", icon, ok)
	}
}

func TestParsePage_MultipleTables(t *testing.T) {
	page, err := ParsePage("https://www.wowhead.com/classic/skill=171", []byte(alchemyPage), repair.NewHeuristic(),
		Table(RecipesTable),
		OptionalTable(CraftedItemsTable),
		OptionalTable(TrainersTable),
	)
	if err != nil {
		t.Fatalf("ParsePage() unexpected error: %v", err)
	}

	recipes := page.Tables[RecipesTable]
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
	expected := RawRecord{
		"id":        2330,
		"name":      "Minor Healing Potion",
		"learnedat": 1,
		"colors":    []any{1, 55, 75, 95},
		"creates":   []any{118, 1, 1},
		"reagents":  []any{[]any{2447, 1}, []any{765, 1}},
		"skill":     []any{171},
		"source":    []any{6},
	}
	if diff := cmp.Diff(expected, recipes[0]); diff != "" {
		t.Errorf("recipe mismatch (-want +got):\n%s", diff)
	}

	if len(page.Tables[CraftedItemsTable]) != 1 {
		t.Errorf("expected 1 crafted item, got %d", len(page.Tables[CraftedItemsTable]))
	}
	if trainers, ok := page.Tables[TrainersTable]; !ok || len(trainers) != 0 {
		t.Errorf("optional missing table = %v, %v, want empty", trainers, ok)
	}
	if page.Has(TrainersTable) {
		t.Error("Has(trainers) = true for a table that was not on the page")
	}
	if !page.Has(CraftedItemsTable) || !page.Has(RecipesTable) {
		t.Error("Has() = false for a table on the page")
	}

	// icons from every call on the page are merged into one index
	if icon, ok := page.Icons.ByName("Linen Cloth"); !ok || icon != "inv_fabric_linen_01" {
		t.Errorf("Icons.ByName(Linen Cloth) = %s, %v", icon, ok)
	}
	if _, ok := page.Icons.ByID(SpellType, 2330); !ok {
		t.Errorf("spell icon missing from index")
	}
}

func TestParsePage_DataNotFound(t *testing.T) {
	_, err := ParsePage("https://www.wowhead.com/classic/skills", []byte(skillsPage), repair.NewHeuristic(), Table(ZonesTable))

	var notFound *DataNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("ParsePage() error = %v, want DataNotFoundError", err)
	}
	if !errors.Is(err, ErrDataNotFound) {
		t.Errorf("errors.Is(err, ErrDataNotFound) = false")
	}
	if notFound.Table != ZonesTable || notFound.NoResults {
		t.Errorf("unexpected error details: %+v", notFound)
	}
}

func TestParsePage_NoResultsIsEmpty(t *testing.T) {
	page, err := ParsePage("https://www.wowhead.com/classic/items?filter=166;1;0", []byte(emptySearchPage), repair.NewHeuristic(), Table(ItemsTable))
	if err != nil {
		t.Fatalf("ParsePage() unexpected error: %v", err)
	}
	if items, ok := page.Tables[ItemsTable]; !ok || len(items) != 0 {
		t.Errorf("items = %v, %v, want empty", items, ok)
	}
	if !page.Has(ItemsTable) {
		t.Error("Has(items) = false on a page reporting no results")
	}
}

func TestParsePage_ListviewNamedByConstructor(t *testing.T) {
	body := `<html><body><script>new ListviewRecipes({"data": [{"name":Fireball,"id":123,"learnedat":50,"colors":[10,20,5,60]}]});</script></body></html>`

	page, err := ParsePage("https://www.wowhead.com/classic/skill=8", []byte(body), repair.NewHeuristic(), Table(RecipesTable))
	if err != nil {
		t.Fatalf("ParsePage() unexpected error: %v", err)
	}

	expected := []RawRecord{{"name": "Fireball", "id": 123, "learnedat": 50, "colors": []any{10, 20, 5, 60}}}
	if diff := cmp.Diff(expected, page.Tables[RecipesTable]); diff != "" {
		t.Errorf("recipes mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePage_ApostropheInUnquotedValue(t *testing.T) {
	body := `<html><body><script>new Listview({id: 'items', data: [{"name":Tailor's Kit,"id":1},{"name":'Hunter''s Ink',"id":2}]});</script></body></html>`

	page, err := ParsePage("https://www.wowhead.com/classic/items", []byte(body), repair.NewHeuristic(), Table(ItemsTable))
	if err != nil {
		t.Fatalf("ParsePage() unexpected error: %v", err)
	}

	expected := []RawRecord{
		{"name": "Tailor's Kit", "id": 1},
		{"name": "Hunter''s Ink", "id": 2},
	}
	if diff := cmp.Diff(expected, page.Tables[ItemsTable]); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePage_Malformed(t *testing.T) {
	_, err := ParsePage("https://www.wowhead.com/classic/items", []byte(brokenPage), repair.NewHeuristic(), Table(ItemsTable))
	if !errors.Is(err, repair.ErrMalformedData) {
		t.Errorf("ParsePage() error = %v, want ErrMalformedData", err)
	}
}

func TestScanBalanced(t *testing.T) {
	tests := []struct {
		input string
		end   int
		ok    bool
	}{
		{`[1, 2, 3]`, 8, true},
		{`{"a": [1, {"b": 2}]} trailing`, 19, true},
		{`["]", '[']`, 9, true},
		{`["esc\"aped]"]`, 13, true},
		{`[[1, 2]`, 0, false},
		{`{"name":Tailor's Kit,"id":1}`, 27, true},
		{`['it''s', "]"]`, 13, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			end, ok := scanBalanced(tt.input, 0)
			if end != tt.end || ok != tt.ok {
				t.Errorf("scanBalanced() = %d, %v, want %d, %v", end, ok, tt.end, tt.ok)
			}
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetPage("https://www.wowhead.com/tbc/skills", skillsPage)
	client.SetResponse("https://www.wowhead.com/tbc/zones", &http.Response{StatusCode: 404})

	extractor := NewExtractor(client, repair.NewHeuristic(), types.TBCSite)

	page, err := extractor.Extract(context.Background(), SkillsPath, Table(SkillsTable))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if page.URL != "https://www.wowhead.com/tbc/skills" || len(page.Tables[SkillsTable]) != 2 {
		t.Errorf("unexpected page: %s with %d skills", page.URL, len(page.Tables[SkillsTable]))
	}

	if _, err := extractor.Extract(context.Background(), ZonesPath, Table(ZonesTable)); err == nil {
		t.Errorf("Extract() expected error for non-200 response")
	}
}
