package wowhead

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/ogri-la/wowhead-scraper-go/src/repair"
)

var gathererCallRe = regexp.MustCompile(`WH\.Gatherer\.addData\(\s*(\d+)\s*,\s*(\d+)\s*,\s*`)

// IconEntry is one entity supplied by an icon-association call
type IconEntry struct {
	Type int
	ID   string
	Name string
	Icon string
}

// IconIndex maps display names to icon identifiers.
// Entries are also indexed by gatherer type and id, which is unambiguous where names are not.
type IconIndex struct {
	Names map[string]string
	IDs   map[string]string
}

// NewIconIndex creates an empty index
func NewIconIndex() *IconIndex {
	return &IconIndex{
		Names: make(map[string]string),
		IDs:   make(map[string]string),
	}
}

func idKey(gathererType int, id string) string {
	return strconv.Itoa(gathererType) + ":" + id
}

// Add indexes an entry, later entries replace earlier ones
func (i *IconIndex) Add(entry IconEntry) {
	if entry.Icon == "" {
		return
	}
	name := entry.Name
	if name == "" {
		name = entry.ID
	}
	if name == "" {
		return
	}
	i.Names[name] = entry.Icon
	if entry.ID != "" {
		i.IDs[idKey(entry.Type, entry.ID)] = entry.Icon
	}
}

// Merge adds every entry of other into i
func (i *IconIndex) Merge(other *IconIndex) {
	for name, icon := range other.Names {
		i.Names[name] = icon
	}
	for key, icon := range other.IDs {
		i.IDs[key] = icon
	}
}

// ByName returns the icon identifier for a display name
func (i *IconIndex) ByName(name string) (string, bool) {
	icon, ok := i.Names[name]
	return icon, ok
}

// ByID returns the icon identifier for a gatherer type and id
func (i *IconIndex) ByID(gathererType int, id int) (string, bool) {
	icon, ok := i.IDs[idKey(gathererType, strconv.Itoa(id))]
	return icon, ok
}

// URL returns the full icon URL for an entity, looked up by id then by name. Nil when unknown.
func (i *IconIndex) URL(gathererType int, id int, name string) *string {
	icon, ok := i.ByID(gathererType, id)
	if !ok {
		icon, ok = i.ByName(name)
	}
	if !ok {
		return nil
	}
	u := IconURL(icon)
	return &u
}

// ParseIconCalls finds every WH.Gatherer.addData call in text and returns its entries in order.
func ParseIconCalls(text string, repairer repair.Repairer) ([]IconEntry, error) {
	entries := []IconEntry{}

	for _, loc := range gathererCallRe.FindAllStringSubmatchIndex(text, -1) {
		gathererType, _ := strconv.Atoi(text[loc[2]:loc[3]])
		start := loc[1]
		if start >= len(text) || text[start] != '{' {
			continue
		}
		end, ok := scanBalanced(text, start)
		if !ok {
			return nil, fmt.Errorf("%w: unterminated icon call at offset %d", repair.ErrMalformedData, loc[0])
		}

		parsed, err := repairer.Repair(text[start : end+1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse icon call: %w", err)
		}
		data, ok := parsed.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: icon call argument is not an object", repair.ErrMalformedData)
		}

		for _, id := range slices.Sorted(maps.Keys(data)) {
			raw := data[id]
			fields, ok := raw.(map[string]any)
			if !ok {
				slog.Debug("skipping icon entry", "id", id, "reason", "not an object")
				continue
			}
			icon, _ := fields["icon"].(string)
			if icon == "" {
				continue
			}
			name, _ := fields["name_enus"].(string)
			entries = append(entries, IconEntry{Type: gathererType, ID: id, Name: name, Icon: icon})
		}
	}

	return entries, nil
}

// BuildIndex parses the icon-association calls in raw into a display name to icon lookup.
// When several calls supply the same name the last one wins.
func BuildIndex(raw string, repairer repair.Repairer) (*IconIndex, error) {
	entries, err := ParseIconCalls(raw, repairer)
	if err != nil {
		return nil, err
	}
	index := NewIconIndex()
	for _, entry := range entries {
		index.Add(entry)
	}
	return index, nil
}
