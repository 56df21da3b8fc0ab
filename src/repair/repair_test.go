package repair

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRepair_ValidJSONIsUntouched(t *testing.T) {
	tests := []string{
		`[]`,
		`{"a": 1}`,
		`[{"name":"Wizard's Oil","id":20744}]`,
		`[{"name":"a,b:c","tags":["x,y",":z"]}]`,
		`{"quoted":"say \"hi\"","nested":{"list":[1,2,3],"flag":true,"none":null}}`,
		`[{"price":1.25,"neg":-1}]`,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := Repair(input)
			if err != nil {
				t.Fatalf("Repair() unexpected error: %v", err)
			}

			var parsed any
			if err := json.Unmarshal([]byte(input), &parsed); err != nil {
				t.Fatalf("bad test input: %v", err)
			}

			// integral floats from encoding/json become ints in repaired output
			if diff := cmp.Diff(normalize(parsed, false), got); diff != "" {
				t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepair_UnquotedValues(t *testing.T) {
	input := `[{"name":Fireball,"id":123,"learnedat":50,"colors":[10,20,5,60]}]`

	got, err := Repair(input)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{
		"name":      "Fireball",
		"id":        123,
		"learnedat": 50,
		"colors":    []any{10, 20, 5, 60},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_Literals(t *testing.T) {
	got, err := Repair(`[{"a":true,"b":false,"c":null,"d":Text}]`)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{"a": true, "b": false, "c": nil, "d": "Text"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_UnquotedKeysAndSingleQuotes(t *testing.T) {
	got, err := Repair(`[{id: 2589, name: 'Linen Cloth', source: [2]}]`)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{"id": 2589, "name": "Linen Cloth", "source": []any{2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_EscapedQuotes(t *testing.T) {
	got, err := Repair(`[{name:"Gnomish \"Universal\" Remote",id:7506}]`)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{"name": `Gnomish "Universal" Remote`, "id": 7506}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_QuotesInDataSurviveRepair(t *testing.T) {
	got, err := Repair("[{name: \"Use `/cast`\", note: \"Hunter''s Ink\", 'quoted': 'Tailor''s Kit', plain: Tailor's Kit}]")
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{
		"name":   "Use `/cast`",
		"note":   "Hunter''s Ink",
		"quoted": "Tailor''s Kit",
		"plain":  "Tailor's Kit",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_ExtraColsTruncated(t *testing.T) {
	input := `{"data": [{"id": 1}],"extraCols": [Listview.extraCols.popularity], "sort": ['name']}`

	got, err := Repair(input)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := map[string]any{"data": []any{map[string]any{"id": 1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}
}

func TestRepair_Malformed(t *testing.T) {
	tests := []string{
		`[{"name": "unterminated}`,
		`not json at all (`,
		``,
		`[1] [2]`,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Repair(input)
			if !errors.Is(err, ErrMalformedData) {
				t.Errorf("Repair() error = %v, want ErrMalformedData", err)
			}
		})
	}
}

func TestQuoteKeys_FixedPoint(t *testing.T) {
	text := "[{a: 1, b: 2, c: 3}]"

	got, passes := quoteKeys(text, DefaultMaxKeyPasses)
	if got != `[{"a": 1, "b": 2, "c": 3}]` {
		t.Errorf("quoteKeys() = %s", got)
	}
	if passes != 2 {
		t.Errorf("passes = %d, want 2", passes)
	}

	// the cap stops the loop before the fixed point
	got, passes = quoteKeys(text, 1)
	if passes != 1 {
		t.Errorf("passes = %d, want 1", passes)
	}
	if !strings.Contains(got, " b: 2") {
		t.Errorf("expected b to remain unquoted after one pass, got %s", got)
	}
}

func TestRepair_TerminatesOnLargeInput(t *testing.T) {
	input := "[" + strings.Repeat("{k: v, j: w}, ", 2000) + "{k: v}]"

	got, err := Repair(input)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}
	if items, ok := got.([]any); !ok || len(items) != 2001 {
		t.Errorf("expected 2001 items, got %T", got)
	}
}

func TestCloseBrackets(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"a": [1, 2`, `{"a": [1, 2]}`},
		{`{"a": "[{"`, `{"a": "[{"}`},
		{`[1]`, `[1]`},
		{`{"a": "x\"[", "b": {`, `{"a": "x\"[", "b": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := closeBrackets(tt.input); got != tt.expected {
				t.Errorf("closeBrackets(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJSON5_Repair(t *testing.T) {
	got, err := NewJSON5().Repair(`[{id: 2589, name: 'Linen Cloth', source: [2],},]`)
	if err != nil {
		t.Fatalf("Repair() unexpected error: %v", err)
	}

	want := []any{map[string]any{"id": 2589, "name": "Linen Cloth", "source": []any{2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewJSON5().Repair(`[{id: `); !errors.Is(err, ErrMalformedData) {
		t.Errorf("Repair() error = %v, want ErrMalformedData", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("heuristic"); err != nil {
		t.Errorf("New(heuristic) unexpected error: %v", err)
	}
	if _, err := New("json5"); err != nil {
		t.Errorf("New(json5) unexpected error: %v", err)
	}
	if _, err := New("regex"); err == nil {
		t.Error("New(regex) expected error")
	}
}
