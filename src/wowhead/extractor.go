package wowhead

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

// ErrDataNotFound is matched by every DataNotFoundError
var ErrDataNotFound = errors.New("data not found")

// DataNotFoundError is returned when a requested listview is not on a page.
// NoResults is set when the page carries a "no results" marker, the table is then genuinely empty.
type DataNotFoundError struct {
	URL       string
	Table     string
	NoResults bool
}

func (e *DataNotFoundError) Error() string {
	if e.NoResults {
		return fmt.Sprintf("data not found: table '%s' on '%s' (page reports no results)", e.Table, e.URL)
	}
	return fmt.Sprintf("data not found: table '%s' on '%s'", e.Table, e.URL)
}

func (e *DataNotFoundError) Is(target error) bool {
	return target == ErrDataNotFound
}

// RawRecord is a listview row keyed by the site's own short field names
type RawRecord = map[string]any

// TableSpec names a listview to extract from a page.
// Optional tables that are missing come back empty instead of failing the extraction.
type TableSpec struct {
	Name       string
	ListviewID string
	Optional   bool
}

// Table is a shorthand for a required TableSpec whose logical name is its listview id
func Table(id string) TableSpec {
	return TableSpec{Name: id, ListviewID: id}
}

// OptionalTable is a shorthand for an optional TableSpec whose logical name is its listview id
func OptionalTable(id string) TableSpec {
	return TableSpec{Name: id, ListviewID: id, Optional: true}
}

// Page is the result of extracting a page: its tables by logical name and its icon index
type Page struct {
	URL    string
	Tables map[string][]RawRecord
	Icons  *IconIndex
	// absent holds optional tables that were not on the page and came back empty
	absent map[string]bool
}

// Has is true when the table was on the page, or the page reports it has no results
func (p *Page) Has(table string) bool {
	_, ok := p.Tables[table]
	return ok && !p.absent[table]
}

var (
	listviewRe     = regexp.MustCompile(`new Listview(\w*)\(\s*`)
	listviewIDRe   = regexp.MustCompile(`["']?\bid["']?\s*:\s*["']([\w-]+)["']`)
	listviewDataRe = regexp.MustCompile(`["']?\bdata["']?\s*:\s*\[`)
)

// listview is one `new Listview({...})` construction found in a script
type listview struct {
	id   string
	data string
}

// Extractor fetches pages and pulls listview tables and icons out of them
type Extractor struct {
	client   http.HTTPClient
	repairer repair.Repairer
	version  types.SiteVersion
}

// NewExtractor creates an extractor for a site version
func NewExtractor(client http.HTTPClient, repairer repair.Repairer, version types.SiteVersion) *Extractor {
	return &Extractor{
		client:   client,
		repairer: repairer,
		version:  version,
	}
}

// Extract fetches the page at path (relative to the site version) and extracts the given tables
func (e *Extractor) Extract(ctx context.Context, path string, specs ...TableSpec) (*Page, error) {
	pageURL := PageURL(e.version, path)
	body, err := fetch(ctx, e.client, pageURL)
	if err != nil {
		return nil, err
	}
	return ParsePage(pageURL, body, e.repairer, specs...)
}

// fetch GETs url and insists on a 200
func fetch(ctx context.Context, client http.HTTPClient, url string) ([]byte, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("failed to fetch '%s': unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ParsePage extracts the given tables and every icon-association call from an HTML page
func ParsePage(pageURL string, body []byte, repairer repair.Repairer, specs ...TableSpec) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{
		URL:    pageURL,
		Tables: make(map[string][]RawRecord),
		Icons:  NewIconIndex(),
		absent: map[string]bool{},
	}

	listviews := map[string]string{}
	var scriptErr error
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()

		found, err := findListviews(text)
		if err != nil {
			scriptErr = fmt.Errorf("failed to scan script %d on '%s': %w", i, pageURL, err)
			return false
		}
		for _, lv := range found {
			if _, seen := listviews[lv.id]; !seen {
				listviews[lv.id] = lv.data
			}
		}

		entries, err := ParseIconCalls(text, repairer)
		if err != nil {
			scriptErr = fmt.Errorf("failed to read icons in script %d on '%s': %w", i, pageURL, err)
			return false
		}
		for _, entry := range entries {
			page.Icons.Add(entry)
		}
		return true
	})
	if scriptErr != nil {
		return nil, scriptErr
	}

	noResults := hasNoResultsMarker(doc, body)

	for _, table := range specs {
		data, ok := listviews[table.ListviewID]
		if !ok {
			if table.Optional || noResults {
				slog.Debug("table not on page, treating as empty", "url", pageURL, "table", table.Name, "optional", table.Optional)
				page.Tables[table.Name] = []RawRecord{}
				if !noResults {
					page.absent[table.Name] = true
				}
				continue
			}
			return nil, &DataNotFoundError{URL: pageURL, Table: table.Name, NoResults: noResults}
		}

		records, err := decodeTable(data, repairer)
		if err != nil {
			return nil, fmt.Errorf("failed to decode table '%s' on '%s': %w", table.Name, pageURL, err)
		}
		page.Tables[table.Name] = records
	}

	return page, nil
}

func hasNoResultsMarker(doc *goquery.Document, body []byte) bool {
	if doc.Find(".listview-nodata").Length() > 0 {
		return true
	}
	for _, marker := range NoResultsMarkers {
		if bytes.Contains(body, []byte(marker)) {
			return true
		}
	}
	return false
}

// findListviews returns every listview constructed in a script, in order
func findListviews(script string) ([]listview, error) {
	found := []listview{}
	for _, loc := range listviewRe.FindAllStringSubmatchIndex(script, -1) {
		start := loc[1]
		// new ListviewRecipes({...}) names the listview in its constructor
		constructor := strings.ToLower(script[loc[2]:loc[3]])
		if start >= len(script) || script[start] != '{' {
			continue
		}
		end, ok := scanBalanced(script, start)
		if !ok {
			return nil, fmt.Errorf("%w: unterminated listview at offset %d", repair.ErrMalformedData, loc[0])
		}
		block := script[start : end+1]

		dataLoc := listviewDataRe.FindStringIndex(block)
		if dataLoc == nil {
			continue
		}
		// only the options before the data array can name the listview
		var id string
		if m := listviewIDRe.FindStringSubmatch(block[:dataLoc[0]]); m != nil {
			id = m[1]
		} else if m := listviewIDRe.FindStringSubmatch(block[dataLoc[1]:]); m != nil {
			id = m[1]
		} else {
			id = constructor
		}

		dataStart := dataLoc[1] - 1
		dataEnd, ok := scanBalanced(block, dataStart)
		if !ok {
			return nil, fmt.Errorf("%w: unterminated data array in listview '%s'", repair.ErrMalformedData, id)
		}

		if id == "" {
			slog.Debug("skipping listview without an id")
			continue
		}
		found = append(found, listview{id: id, data: block[dataStart : dataEnd+1]})
	}
	return found, nil
}

// scanBalanced returns the index of the bracket closing the one at start.
// Brackets inside single or double quoted strings are ignored. A quote only opens a string at
// the start of a token, so the apostrophe in an unquoted value like Tailor's Kit is plain text.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	var quote byte
	var prev byte // last non-space byte outside strings
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
				prev = c
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		switch c {
		case '"', '\'':
			if tokenStart(prev) {
				quote = c
			}
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		prev = c
	}
	return 0, false
}

func tokenStart(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '(':
		return true
	}
	return false
}

// decodeTable repairs a data array literal into raw records
func decodeTable(data string, repairer repair.Repairer) ([]RawRecord, error) {
	parsed, err := repairer.Repair(data)
	if err != nil {
		return nil, err
	}
	items, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: listview data is not an array", repair.ErrMalformedData)
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: listview row %d is not an object", repair.ErrMalformedData, i)
		}
		records = append(records, record)
	}
	return records, nil
}
