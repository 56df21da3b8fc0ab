package wowhead

import (
	"fmt"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

const IconHost = "https://wow.zamimg.com/images/wow/icons/large/"

// listing pages, relative to the site version's base URL
const (
	SkillsPath   = "/skills"
	ZonesPath    = "/zones"
	VendorsPath  = "/npcs?filter=29;1;0"
	ReagentsPath = "/items?filter=166;1;0"
)

// listview ids
const (
	SkillsTable          = "skills"
	ZonesTable           = "zones"
	NPCsTable            = "npcs"
	ItemsTable           = "items"
	RecipesTable         = "recipes"
	CraftedItemsTable    = "crafted-items"
	RecipeItemsTable     = "recipe-items"
	TrainersTable        = "trainers"
	SpecializationsTable = "specializations"
	SoldByTable          = "sold-by"
)

// gatherer data types used by WH.Gatherer.addData
const (
	NPCType   = 1
	ItemType  = 3
	SpellType = 6
	SkillType = 15
)

// NoResultsMarkers appear on a page whose listview is legitimately empty
var NoResultsMarkers = []string{"listview-nodata", "No results found"}

// SkillPath is the page of a single profession
func SkillPath(id int) string {
	return fmt.Sprintf("/skill=%d", id)
}

// SpellPath is the page of a single spell
func SpellPath(id int) string {
	return fmt.Sprintf("/spell=%d", id)
}

// ItemPath is the page of a single item
func ItemPath(id int) string {
	return fmt.Sprintf("/item=%d", id)
}

// PageURL joins a relative path onto a site version's base URL
func PageURL(version types.SiteVersion, path string) string {
	return version.BaseURL() + path
}

// IconURL returns the full URL of an icon identifier
func IconURL(icon string) string {
	return IconHost + icon + ".jpg"
}
