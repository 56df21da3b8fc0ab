//go:build integration

package wowhead

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	httpclient "github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/retry"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

func TestLiveWowheadData(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Create HTTP client without caching for integration test
	client := retry.NewFetcher(
		httpclient.NewRealHTTPClient(http.DefaultTransport, "wowhead-scraper 1.0.0-test (https://github.com/ogri-la/wowhead-scraper-go)"),
		retry.Config{Delay: time.Second, MaxAttempts: 3, MaxRetryAfter: 10 * time.Second},
	)
	repairer := repair.NewHeuristic()
	extractor := NewExtractor(client, repairer, types.ClassicSite)

	ctx := context.Background()

	t.Run("Skills Listing", func(t *testing.T) {
		page, err := extractor.Extract(ctx, SkillsPath, Table(SkillsTable))
		if err != nil {
			t.Fatalf("Failed to extract skills: %v", err)
		}
		if len(page.Tables[SkillsTable]) == 0 {
			t.Fatal("No skills found")
		}
		t.Logf("Found %d skills, %d icons by name", len(page.Tables[SkillsTable]), len(page.Icons.Names))
	})

	t.Run("Profession Page", func(t *testing.T) {
		page, err := extractor.Extract(ctx, SkillPath(171),
			OptionalTable(RecipesTable), OptionalTable(TrainersTable), OptionalTable(CraftedItemsTable))
		if err != nil {
			t.Fatalf("Failed to extract alchemy: %v", err)
		}
		if len(page.Tables[RecipesTable]) == 0 {
			t.Error("No alchemy recipes found")
		}
		t.Logf("Found %d recipes, %d trainers, %d crafted items",
			len(page.Tables[RecipesTable]), len(page.Tables[TrainersTable]), len(page.Tables[CraftedItemsTable]))
	})

	t.Run("Item Details", func(t *testing.T) {
		resolver := NewResolver(client, repairer, types.ClassicSite)
		resolved, err := resolver.Resolve(ctx, ItemKind, 2447)
		if err != nil {
			if errors.Is(err, ErrResolutionFailure) {
				t.Fatalf("Item page layout changed: %v", err)
			}
			t.Fatalf("Failed to resolve item: %v", err)
		}
		if resolved.Name != "Peacebloom" {
			t.Errorf("Name = %s, want Peacebloom", resolved.Name)
		}
	})
}
