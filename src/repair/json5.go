package repair

import (
	"fmt"
	"strings"

	"github.com/titanous/json5"
)

// JSON5 repairs text by parsing it as JSON5, which covers unquoted keys, single quoted
// strings and trailing commas without any textual rewriting.
type JSON5 struct{}

func NewJSON5() *JSON5 {
	return &JSON5{}
}

func (j *JSON5) Repair(raw string) (any, error) {
	text := truncateExtraCols(strings.TrimSpace(raw))

	var data any
	if err := json5.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return normalize(data, false), nil
}

// New returns the repairer registered under name
func New(name string) (Repairer, error) {
	switch name {
	case "", "heuristic":
		return NewHeuristic(), nil
	case "json5":
		return NewJSON5(), nil
	default:
		return nil, fmt.Errorf("unknown repair engine: %s", name)
	}
}
