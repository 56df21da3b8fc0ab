package wowhead

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ogri-la/wowhead-scraper-go/src/repair"
)

func TestBuildIndex(t *testing.T) {
	raw := `WH.Gatherer.addData(1, 2, {"10": {"name_enus": "Linen Cloth", "icon": "inv_fabric_linen_01"}});`

	index, err := BuildIndex(raw, repair.NewHeuristic())
	if err != nil {
		t.Fatalf("BuildIndex() unexpected error: %v", err)
	}

	expected := map[string]string{"Linen Cloth": "inv_fabric_linen_01"}
	if diff := cmp.Diff(expected, index.Names); diff != "" {
		t.Errorf("BuildIndex() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIndex_Rules(t *testing.T) {
	raw := `
WH.Gatherer.addData(3, 4, {"1": {"name_enus": "Copper Bar", "icon": "inv_ingot_01"}, "2": {"name_enus": "No Icon", "icon": null}});
WH.Gatherer.addData(3, 4, {"3": {"icon": "inv_misc_questionmark"}});
WH.Gatherer.addData(3, 4, {"4": {"name_enus": "Copper Bar", "icon": "inv_ingot_02"}});
`
	index, err := BuildIndex(raw, repair.NewHeuristic())
	if err != nil {
		t.Fatalf("BuildIndex() unexpected error: %v", err)
	}

	expected := map[string]string{
		"Copper Bar": "inv_ingot_02",          // last write wins
		"3":          "inv_misc_questionmark", // no name, indexed by id
	}
	if diff := cmp.Diff(expected, index.Names); diff != "" {
		t.Errorf("BuildIndex() mismatch (-want +got):\n%s", diff)
	}

	if icon, ok := index.ByID(ItemType, 1); !ok || icon != "inv_ingot_01" {
		t.Errorf("ByID(item, 1) = %s, %v", icon, ok)
	}
	if _, ok := index.ByID(SpellType, 1); ok {
		t.Errorf("ByID(spell, 1) found an item icon")
	}
}

func TestIconIndex_URL(t *testing.T) {
	index := NewIconIndex()
	index.Add(IconEntry{Type: ItemType, ID: "2589", Name: "Linen Cloth", Icon: "inv_fabric_linen_01"})

	tests := []struct {
		name     string
		id       int
		lookup   string
		expected *string
	}{
		{"by id", 2589, "Something Else", ptr("https://wow.zamimg.com/images/wow/icons/large/inv_fabric_linen_01.jpg")},
		{"by name", 1, "Linen Cloth", ptr("https://wow.zamimg.com/images/wow/icons/large/inv_fabric_linen_01.jpg")},
		{"unknown", 1, "Wool Cloth", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := index.URL(ItemType, tt.id, tt.lookup)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("URL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIconCalls_Malformed(t *testing.T) {
	_, err := ParseIconCalls(`WH.Gatherer.addData(3, 4, {"1": {"name_enus": "x"`, repair.NewHeuristic())
	if err == nil {
		t.Errorf("ParseIconCalls() expected error for unterminated call")
	}
}

func ptr(s string) *string {
	return &s
}
