// Package builder turns extracted listview rows into domain records.
//
// Builders are pure transformations of a page and previously built lookup sets, with the
// exception of reagent references which go through a ReagentRegistry.
package builder

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/gosimple/slug"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
	"github.com/ogri-la/wowhead-scraper-go/src/wowhead"
)

// FuzzyMatchThreshold is the Jaro-Winkler similarity above which two names are considered the same
const FuzzyMatchThreshold = 0.96

// Builder holds what every builder needs to derive canonical URLs
type Builder struct {
	version types.SiteVersion
	base    string
}

// New creates a builder for a site version
func New(version types.SiteVersion) *Builder {
	return &Builder{
		version: version,
		base:    version.BaseURL(),
	}
}

// normalizeName strips trailing whitespace and doubles single quotes for storage
func normalizeName(name string) string {
	name = strings.TrimRightFunc(name, unicode.IsSpace)
	return strings.ReplaceAll(name, "'", "''")
}

// identityKey is the key names are compared by when case and apostrophes must not matter
func identityKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "''", "'"))
}

// makeSlug lowercases, hyphenates and drops apostrophes
func makeSlug(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "'", "")
	return strings.ReplaceAll(slug.Make(name), "_", "-")
}

// entityURL is the canonical details page of an entity, e.g. {base}/item=2589/linen-cloth
func (b *Builder) entityURL(kind string, id int, name string) string {
	u := fmt.Sprintf("%s/%s=%d", b.base, kind, id)
	if s := makeSlug(name); s != "" {
		u += "/" + s
	}
	return u
}

// professionURL is derived from the name alone, e.g. {base}/first-aid
func (b *Builder) professionURL(name string) string {
	return b.base + "/" + makeSlug(name)
}

// stripQuality removes the single digit quality prefix the site puts on every item name in
// item listings. Names that really start with a digit keep the rest, "110 Pound Mud Snapper"
// is "10 Pound Mud Snapper".
func stripQuality(name string) string {
	if len(name) >= 2 && isDigit(name[0]) {
		return name[1:]
	}
	return name
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

var reactions = map[int]types.Reaction{
	1:  types.FriendlyReaction,
	0:  types.NeutralReaction,
	-1: types.HostileReaction,
}

func reaction(code int, ok bool) types.Reaction {
	if !ok {
		return types.UnknownReaction
	}
	if r, known := reactions[code]; known {
		return r
	}
	return types.UnknownReaction
}

// resolveReactions maps a raw [alliance, horde] reaction pair.
// A missing pair is Unknown for both factions.
func resolveReactions(row wowhead.RawRecord) (types.Reaction, types.Reaction) {
	raw, ok := row["react"].([]any)
	if !ok {
		return types.UnknownReaction, types.UnknownReaction
	}
	codes := make([]types.Reaction, 2)
	for i := range codes {
		if i < len(raw) {
			code, ok := toInt(raw[i])
			codes[i] = reaction(code, ok)
		} else {
			codes[i] = types.UnknownReaction
		}
	}
	return codes[0], codes[1]
}

// resolveDifficulty clamps the category thresholds so R <= c0 <= c1 <= c2 <= c3
func resolveDifficulty(requirement int, categories [4]int) [4]int {
	floor := requirement
	for i := range categories {
		categories[i] = max(categories[i], floor)
		floor = categories[i]
	}
	return categories
}

// resolveAmounts clamps the created amounts so 1 <= min <= max
func resolveAmounts(minimum, maximum int) (int, int) {
	if minimum < 1 {
		minimum = 1
	}
	// covers max < 1 as well as the odd row listing max below min
	if maximum < minimum {
		maximum = minimum
	}
	return minimum, maximum
}

// raw value helpers

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case float64:
		return int(val), true
	case string:
		i, err := strconv.Atoi(val)
		return i, err == nil
	default:
		return 0, false
	}
}

func intField(row wowhead.RawRecord, key string) (int, bool) {
	return toInt(row[key])
}

func intPtrField(row wowhead.RawRecord, key string) *int {
	if i, ok := intField(row, key); ok {
		return &i
	}
	return nil
}

func stringField(row wowhead.RawRecord, key string) string {
	switch val := row[key].(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// intList reads an array of integers, a scalar is a single element list
func intList(row wowhead.RawRecord, key string) []int {
	switch val := row[key].(type) {
	case []any:
		out := make([]int, 0, len(val))
		for _, item := range val {
			if i, ok := toInt(item); ok {
				out = append(out, i)
			}
		}
		return out
	default:
		if i, ok := toInt(val); ok {
			return []int{i}
		}
		return nil
	}
}

// Index maps the wowhead ids of stored records to their names
type Index map[int]string

// NewIndex indexes records read from a flat file
func NewIndex(records []types.Record) Index {
	index := make(Index, len(records))
	for _, record := range records {
		id, ok := record.Int("wowhead_id")
		if !ok {
			continue
		}
		if _, seen := index[id]; !seen {
			index[id] = record.String("name")
		}
	}
	return index
}

// NamesWhere returns the names of records whose field equals value
func NamesWhere(records []types.Record, field, value string) map[string]bool {
	names := map[string]bool{}
	for _, record := range records {
		if record.String(field) == value {
			names[record.String("name")] = true
		}
	}
	return names
}

// bestMatch finds target in candidates exactly, then by Jaro-Winkler similarity
func bestMatch(target string, candidates []string) (string, bool) {
	if slices.Contains(candidates, target) {
		return target, true
	}

	best, bestScore := "", 0.0
	for _, candidate := range candidates {
		score := matchr.JaroWinkler(strings.ToLower(target), strings.ToLower(candidate), false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore >= FuzzyMatchThreshold {
		return best, true
	}
	return "", false
}

// set keeps the first occurrence of each key, in insertion order
type set[T any] struct {
	seen  map[string]bool
	items []T
}

func newSet[T any]() *set[T] {
	return &set[T]{seen: map[string]bool{}}
}

func (s *set[T]) add(key string, item T) bool {
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	s.items = append(s.items, item)
	return true
}

func (s *set[T]) has(key string) bool {
	return s.seen[key]
}
