// Package pipeline runs the scrape as a sequence of stages, each building one or more flat files
// from the files written before it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ogri-la/wowhead-scraper-go/src/builder"
	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/rules"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/validation"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// Stage is a state of the pipeline
type Stage string

const (
	Idle                    Stage = "Idle"
	ClearingCache           Stage = "ClearingCache"
	PreparingCache          Stage = "PreparingCache"
	ScrapingProfessions     Stage = "ScrapingProfessions"
	ScrapingLocations       Stage = "ScrapingLocations"
	ScrapingVendors         Stage = "ScrapingVendors"
	ScrapingReagents        Stage = "ScrapingReagents"
	ScrapingEnchantments    Stage = "ScrapingEnchantments"
	ScrapingCraftableItems  Stage = "ScrapingCraftableItems"
	ScrapingProfessionData  Stage = "ScrapingProfessionData"
	ScrapingSpecialisations Stage = "ScrapingSpecialisations"
	CheckingData            Stage = "CheckingData"
	Done                    Stage = "Done"
	Failed                  Stage = "Failed"
)

// StageError is returned when a stage fails. The pipeline halts on the first one.
type StageError struct {
	Stage   Stage
	Elapsed time.Duration
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed after %s: %v", e.Stage, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pruner removes expired entries from the HTTP cache
type Pruner interface {
	Prune() (int, error)
}

// Options configure a pipeline
type Options struct {
	Version  types.SiteVersion
	Client   http.HTTPClient
	Repairer repair.Repairer
	Rules    *rules.Rules
	DataDir  string
	CacheDir string
	// Cache is pruned while clearing, nil skips pruning
	Cache Pruner
	// Out receives the timing report and data check summary, defaults to stdout
	Out io.Writer
}

// stageDef pairs a stage with the function that runs it.
// The function returns the number of records it wrote.
type stageDef struct {
	stage Stage
	run   func(ctx context.Context) (int, error)
}

// Pipeline scrapes one site version into a directory of flat files
type Pipeline struct {
	version   types.SiteVersion
	extractor *wowhead.Extractor
	resolver  *wowhead.Resolver
	builder   *builder.Builder
	rules     *rules.Rules
	store     *psv.Store
	cacheDir  string
	cache     Pruner
	out       io.Writer

	runID    string
	state    Stage
	timings  []Timing
	written  map[types.Entity]int
	registry *builder.ReagentRegistry
	report   *validation.Report
}

// New creates a pipeline. An unknown site version fails here, before anything is fetched.
func New(opts Options) (*Pipeline, error) {
	version, err := types.ParseSiteVersion(string(opts.Version))
	if err != nil {
		return nil, err
	}

	r := opts.Rules
	if r == nil {
		if r, err = rules.Load(); err != nil {
			return nil, err
		}
	}
	if len(r.Entities(version)) == 0 {
		return nil, fmt.Errorf("%w: no rules for %q", types.ErrInvalidSiteVersion, version)
	}

	repairer := opts.Repairer
	if repairer == nil {
		repairer = repair.NewHeuristic()
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Pipeline{
		version:   version,
		extractor: wowhead.NewExtractor(opts.Client, repairer, version),
		resolver:  wowhead.NewResolver(opts.Client, repairer, version),
		builder:   builder.New(version),
		rules:     r,
		store:     psv.NewStore(opts.DataDir),
		cacheDir:  opts.CacheDir,
		cache:     opts.Cache,
		out:       out,
		state:     Idle,
		written:   map[types.Entity]int{},
	}, nil
}

// stages is the run order. Each scraping stage reads the files of the stages before it.
func (p *Pipeline) stages() []stageDef {
	return []stageDef{
		{ClearingCache, p.clearCache},
		{PreparingCache, p.prepareCache},
		{ScrapingProfessions, p.scrapeProfessions},
		{ScrapingLocations, p.scrapeLocations},
		{ScrapingVendors, p.scrapeVendors},
		{ScrapingReagents, p.scrapeReagents},
		{ScrapingEnchantments, p.scrapeEnchantments},
		{ScrapingCraftableItems, p.scrapeCraftableItems},
		{ScrapingProfessionData, p.scrapeProfessionData},
		{ScrapingSpecialisations, p.scrapeSpecialisations},
		{CheckingData, p.checkData},
	}
}

// Run executes every stage in order, stopping at the first failure
func (p *Pipeline) Run(ctx context.Context) error {
	p.runID = uuid.NewString()
	log := slog.With("run-id", p.runID, "site-version", p.version)
	log.Info("starting pipeline", "data-dir", p.store.Dir)

	for _, def := range p.stages() {
		p.state = def.stage
		start := time.Now()
		log.Info("stage started", "stage", def.stage)

		records, err := def.run(ctx)
		end := time.Now()
		p.timings = append(p.timings, Timing{Stage: def.stage, Start: start, End: end, Records: records})

		if err != nil {
			p.state = Failed
			stageErr := &StageError{Stage: def.stage, Elapsed: end.Sub(start), Err: err}
			log.Error("stage failed", "stage", def.stage, "elapsed", stageErr.Elapsed, "total", p.elapsed(), "error", err)
			p.RenderTimings(p.out)
			return stageErr
		}
		log.Info("stage finished", "stage", def.stage, "records", records, "elapsed", end.Sub(start))
	}

	p.state = Done
	log.Info("pipeline done", "elapsed", p.elapsed(), "resolved", p.resolver.Len())
	p.RenderTimings(p.out)
	return nil
}

// State returns the current stage
func (p *Pipeline) State() Stage {
	return p.state
}

// RunID identifies the last run in the logs
func (p *Pipeline) RunID() string {
	return p.runID
}

// Timings returns the timing of each stage run so far
func (p *Pipeline) Timings() []Timing {
	return p.timings
}

// Report returns the data check report, nil until CheckingData has run
func (p *Pipeline) Report() *validation.Report {
	return p.report
}

// Written returns the number of records written per entity, appends included
func (p *Pipeline) Written() map[types.Entity]int {
	return p.written
}
