// Package validation re-reads the flat files of a run and checks them against the rules:
// field types and constraints, uniqueness, dangling references and row counts.
package validation

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ogri-la/wowhead-scraper-go/src/psv"
	"github.com/ogri-la/wowhead-scraper-go/src/rules"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

// Finding is a single problem with the stored data. Row is the 1-based record number, 0 for
// problems with the file as a whole.
type Finding struct {
	Entity  types.Entity
	Row     int
	Field   string
	Value   string
	Message string
}

func (f Finding) String() string {
	if f.Row == 0 {
		return fmt.Sprintf("%s: %s", f.Entity, f.Message)
	}
	return fmt.Sprintf("%s row %d, %s '%s': %s", f.Entity, f.Row, f.Field, f.Value, f.Message)
}

// Report is the outcome of checking a data directory
type Report struct {
	Entities []types.Entity
	Rows     map[types.Entity]int
	Expected map[types.Entity]int
	Findings []Finding
}

// OK is true when nothing was found
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Count returns the number of findings for an entity
func (r *Report) Count(entity types.Entity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Entity == entity {
			n++
		}
	}
	return n
}

// Log writes every finding as a warning
func (r *Report) Log() {
	for _, f := range r.Findings {
		slog.Warn("data check", "entity", f.Entity, "row", f.Row, "field", f.Field, "value", f.Value, "problem", f.Message)
	}
}

// Render writes a per-entity summary table to w
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Entity", "Rows", "Expected", "Findings"})

	total := 0
	for _, entity := range r.Entities {
		expected := "-"
		if n, ok := r.Expected[entity]; ok {
			expected = fmt.Sprint(n)
		}
		count := r.Count(entity)
		total += count
		t.AppendRow(table.Row{entity, r.Rows[entity], expected, count})
	}

	t.AppendFooter(table.Row{"", "", "Total", total})
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.Render()
}

// Checker checks the flat files of one site version
type Checker struct {
	rules   *rules.Rules
	version types.SiteVersion
	store   *psv.Store
}

func NewChecker(r *rules.Rules, version types.SiteVersion, store *psv.Store) *Checker {
	return &Checker{rules: r, version: version, store: store}
}

// Check reads every declared file and returns the findings.
// expected maps entities to the number of records written during the run, nil skips the row count check.
// A missing or unreadable file is an error, everything else is a finding.
func (c *Checker) Check(expected map[types.Entity]int) (*Report, error) {
	report := &Report{
		Entities: c.rules.Entities(c.version),
		Rows:     map[types.Entity]int{},
		Expected: expected,
	}

	data := map[types.Entity][]types.Record{}
	for _, entity := range report.Entities {
		declared, err := c.rules.Header(c.version, entity)
		if err != nil {
			return nil, err
		}

		header, err := psv.ReadHeader(c.store.Path(entity))
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", entity, err)
		}
		if !slices.Equal(header, declared) {
			report.Findings = append(report.Findings, Finding{
				Entity:  entity,
				Message: fmt.Sprintf("header %v does not match declared header %v", header, declared),
			})
			// fields can't be matched to their rules
			if len(header) != len(declared) {
				continue
			}
		}

		records, err := c.store.Read(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", entity, err)
		}
		data[entity] = records
		report.Rows[entity] = len(records)

		if n, ok := expected[entity]; ok && n != len(records) {
			report.Findings = append(report.Findings, Finding{
				Entity:  entity,
				Message: fmt.Sprintf("has %d rows, %d were written", len(records), n),
			})
		}
	}

	for _, entity := range report.Entities {
		records, ok := data[entity]
		if !ok {
			continue
		}
		fields, err := c.rules.Fields(c.version, entity)
		if err != nil {
			return nil, err
		}
		report.Findings = append(report.Findings, checkRecords(entity, fields, records, data)...)
	}

	slog.Info("checked data", "entities", len(report.Entities), "findings", len(report.Findings))
	return report, nil
}

// checkRecords validates each record field by field, then uniqueness and references
func checkRecords(entity types.Entity, fields []rules.Field, records []types.Record, data map[types.Entity][]types.Record) []Finding {
	findings := []Finding{}

	for _, field := range fields {
		schema := compile(field)
		seen := map[string]int{}

		var targets map[string]bool
		if target, targetField, ok := field.Reference(); ok {
			targets = values(data[target], targetField)
		}

		for i, record := range records {
			row := i + 1
			value := record.String(field.Name)
			finding := func(msg string) {
				findings = append(findings, Finding{Entity: entity, Row: row, Field: field.Name, Value: value, Message: msg})
			}

			if value == "" {
				if field.NotNull {
					finding("must not be empty")
				}
				continue
			}

			for _, msg := range schema(value) {
				finding(msg)
			}

			if field.Unique {
				if first, dupe := seen[value]; dupe {
					finding(fmt.Sprintf("duplicate of row %d", first))
				} else {
					seen[value] = row
				}
			}

			if targets != nil && !targets[value] {
				finding(fmt.Sprintf("references missing %s", field.References))
			}
		}
	}

	return findings
}

func values(records []types.Record, field string) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, record := range records {
		if v := record.String(field); v != "" {
			set[v] = true
		}
	}
	return set
}
