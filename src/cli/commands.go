package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/loader"
	"github.com/ogri-la/wowhead-scraper-go/src/pipeline"
	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/rules"
	"github.com/ogri-la/wowhead-scraper-go/src/validation"
)

// CommandHandler handles CLI commands
type CommandHandler struct {
	rules *rules.Rules
	out   io.Writer
}

// NewCommandHandler creates a new command handler writing reports to stdout
func NewCommandHandler() (*CommandHandler, error) {
	r, err := rules.Load()
	if err != nil {
		return nil, err
	}
	return &CommandHandler{rules: r, out: os.Stdout}, nil
}

// Scrape runs the whole pipeline. cache may be nil.
func (h *CommandHandler) Scrape(ctx context.Context, config Config, client http.HTTPClient, cache pipeline.Pruner) error {
	slog.Info("starting scrape command", "site-version", config.SiteVersion, "data-dir", config.DataDir)

	repairer, err := repair.New(config.Repair)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		Version:  config.SiteVersion,
		Client:   client,
		Repairer: repairer,
		Rules:    h.rules,
		DataDir:  config.DataDir,
		CacheDir: config.CacheDir,
		Cache:    cache,
		Out:      h.out,
	})
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// Validate checks the flat files of an earlier run
func (h *CommandHandler) Validate(ctx context.Context, config Config) error {
	slog.Info("starting validate command", "site-version", config.SiteVersion, "data-dir", config.DataDir)

	report, err := validation.NewChecker(h.rules, config.SiteVersion, psv.NewStore(config.DataDir)).Check(nil)
	if err != nil {
		return err
	}
	report.Log()
	report.Render(h.out)

	if !report.OK() {
		return fmt.Errorf("data check found %d problems", len(report.Findings))
	}
	return nil
}

// Load loads the flat files of an earlier run into a SQLite database
func (h *CommandHandler) Load(ctx context.Context, config Config) error {
	slog.Info("starting load command", "data-dir", config.DataDir, "db", config.DB)

	db, err := loader.Open(config.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	loaded, err := loader.New(db, h.rules, config.SiteVersion, psv.NewStore(config.DataDir)).Load(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range loaded {
		total += n
	}
	slog.Info("loaded flat files", "tables", len(loaded), "rows", total, "db", config.DB)
	return nil
}
