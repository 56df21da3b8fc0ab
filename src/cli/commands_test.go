package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/pipeline"
	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/rules"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

func newHandler(t *testing.T) (*CommandHandler, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &CommandHandler{rules: rules.MustLoad(), out: out}, out
}

// emptyStore writes every declared file with a header and no records
func emptyStore(t *testing.T, h *CommandHandler) string {
	t.Helper()
	dir := t.TempDir()
	store := psv.NewStore(dir)
	for _, entity := range h.rules.Entities(types.ClassicSite) {
		header, err := h.rules.Header(types.ClassicSite, entity)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Write(entity, header, nil); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestValidate(t *testing.T) {
	h, out := newHandler(t)
	dir := emptyStore(t, h)

	if err := h.Validate(context.Background(), Config{SiteVersion: types.ClassicSite, DataDir: dir}); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "recipe_specialisation") {
		t.Errorf("expected a summary table, got:\n%s", out.String())
	}

	store := psv.NewStore(dir)
	if err := store.Write(types.SourceEntity, []string{"name"}, []types.Record{{"name": "Stolen"}}); err != nil {
		t.Fatal(err)
	}
	if err := h.Validate(context.Background(), Config{SiteVersion: types.ClassicSite, DataDir: dir}); err == nil {
		t.Error("Validate() expected an error for an invalid source")
	}
}

func TestLoad(t *testing.T) {
	h, _ := newHandler(t)
	dir := emptyStore(t, h)
	db := filepath.Join(t.TempDir(), "wowhead.db")

	if err := h.Load(context.Background(), Config{SiteVersion: types.ClassicSite, DataDir: dir, DB: db}); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
}

func TestScrape_FailsOnFirstStage(t *testing.T) {
	h, _ := newHandler(t)
	config := Config{
		SiteVersion: types.ClassicSite,
		DataDir:     filepath.Join(t.TempDir(), "data"),
		CacheDir:    filepath.Join(t.TempDir(), "cache"),
		Repair:      "heuristic",
	}

	err := h.Scrape(context.Background(), config, http.NewMockHTTPClient(), nil)

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.ScrapingProfessions {
		t.Errorf("Scrape() error = %v, want a ScrapingProfessions StageError", err)
	}
}
