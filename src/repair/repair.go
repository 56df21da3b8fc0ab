// Package repair turns the loosely JSON-like literals embedded in rendered pages into decoded values.
//
// The heuristic engine is a best-effort textual repair, not a JSON5 parser. Callers depend only on
// the Repairer interface so the heuristics can be swapped for a tolerant tokenizer (see JSON5).
package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// ErrMalformedData is returned when no amount of repair yields parseable JSON
var ErrMalformedData = errors.New("malformed data")

// ExtraColsMarker starts a listview field that is never needed and regularly breaks quoting
const ExtraColsMarker = `,"extraCols"`

// DefaultMaxKeyPasses bounds the fixed-point key quoting loop
const DefaultMaxKeyPasses = 256

// Repairer turns raw text into a decoded JSON value.
// Objects decode to map[string]any, arrays to []any, integral numbers to int.
type Repairer interface {
	Repair(raw string) (any, error)
}

// Heuristic is the regex based repair engine
type Heuristic struct {
	MaxKeyPasses int
}

// NewHeuristic creates a heuristic repairer with the default pass limit
func NewHeuristic() *Heuristic {
	return &Heuristic{MaxKeyPasses: DefaultMaxKeyPasses}
}

// Repair repairs raw with the default heuristic engine
func Repair(raw string) (any, error) {
	return NewHeuristic().Repair(raw)
}

// Placeholders stand in for quotes while the text is rewritten. They are private use code
// points, so quotes, backticks and doubled apostrophes already in the data are left alone.
const (
	escapedQuotePlaceholder = "\uE000"
	apostrophePlaceholder   = "\uE001"
)

var (
	escapedQuoteRe = regexp.MustCompile(`\\"`)
	commaSpaceRe   = regexp.MustCompile(`,(\S)`)
	colonSpaceRe   = regexp.MustCompile(`:(\S)`)
	bareKeyRe      = regexp.MustCompile(`(\[|\{|, )([^{}\[\]":, ]+): ([^~]*?)(, |\}|\])`)
	bareValueRe    = regexp.MustCompile(`"([^{}\[\]":, ]+)": ([^{}\[\]"\d\-][^{}\[\]"]*?)(, |\}|\])`)
)

// literals that must never be quoted as strings
var bareLiterals = []string{"true", "false", "null"}

// Repair applies the repair passes in order and decodes the result.
// Input that is already valid JSON is decoded untouched.
func (h *Heuristic) Repair(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if json.Valid([]byte(text)) {
		return decode(text, false)
	}

	text = truncateExtraCols(text)
	text = escapedQuoteRe.ReplaceAllLiteralString(text, escapedQuotePlaceholder)
	text = commaSpaceRe.ReplaceAllString(text, ", ${1}")
	text = colonSpaceRe.ReplaceAllString(text, ": ${1}")
	text = strings.ReplaceAll(text, "'", apostrophePlaceholder)

	maxPasses := h.MaxKeyPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxKeyPasses
	}
	text, _ = quoteKeys(text, maxPasses)
	text = quoteValues(text)

	return decode(text, true)
}

// truncateExtraCols cuts the text at the extraCols field and closes whatever was left open
func truncateExtraCols(text string) string {
	idx := strings.Index(text, ExtraColsMarker)
	if idx < 0 {
		return text
	}
	return closeBrackets(text[:idx])
}

// closeBrackets appends the closers for any brackets left open outside of strings
func closeBrackets(text string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(text)
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteByte(stack[i])
	}
	return sb.String()
}

// quoteKeys wraps unquoted object keys in double quotes until nothing changes.
// Matches can't overlap so neighbouring keys need further passes. Returns the passes used.
func quoteKeys(text string, maxPasses int) (string, int) {
	passes := 0
	for passes < maxPasses {
		if !bareKeyRe.MatchString(text) {
			break
		}
		text = bareKeyRe.ReplaceAllString(text, `${1}"${2}": ${3}${4}`)
		passes++
	}
	return text, passes
}

// quoteValues wraps unquoted string values. Values starting with a digit or minus sign are
// numbers and the literals true, false and null are left alone.
func quoteValues(text string) string {
	return bareValueRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := bareValueRe.FindStringSubmatch(match)
		if slices.Contains(bareLiterals, groups[2]) {
			return match
		}
		return `"` + groups[1] + `": "` + groups[2] + `"` + groups[3]
	})
}

func decode(text string, repaired bool) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformedData)
	}
	return normalize(data, repaired), nil
}

// normalize converts numbers to int where integral and, for repaired text,
// undoes the placeholder substitutions made inside strings.
func normalize(v any, repaired bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if repaired {
				k = restoreString(k)
			}
			out[k] = normalize(item, repaired)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item, repaired)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < math.MaxInt32 {
			return int(val)
		}
		return val
	case string:
		if !repaired {
			return val
		}
		return restoreString(val)
	default:
		return val
	}
}

// restoreString puts back the quotes replaced by placeholders
func restoreString(s string) string {
	// single quoted literals come through with their quotes intact
	if strings.HasPrefix(s, apostrophePlaceholder) && strings.HasSuffix(s, apostrophePlaceholder) &&
		len(s) >= 2*len(apostrophePlaceholder) {
		s = s[len(apostrophePlaceholder) : len(s)-len(apostrophePlaceholder)]
	}
	s = strings.ReplaceAll(s, apostrophePlaceholder, "'")
	return strings.ReplaceAll(s, escapedQuotePlaceholder, `"`)
}
