// Package rules holds the validation rules configuration: for each site version and entity,
// the ordered list of fields (the declared header) and the constraints on each field.
package rules

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

//go:embed rules.yaml
var embedded []byte

type FieldType string

const (
	StringType  FieldType = "string"
	IntegerType FieldType = "integer"
	BooleanType FieldType = "boolean"
)

// Field is a single column of an entity and its constraints
type Field struct {
	Name       string    `yaml:"field"`
	Type       FieldType `yaml:"type"`
	Format     string    `yaml:"format"`
	Minimum    *int      `yaml:"minimum"`
	NotNull    bool      `yaml:"not_null"`
	Enum       []string  `yaml:"enum"`
	Unique     bool      `yaml:"unique"`
	References string    `yaml:"references"`
}

// Reference splits References ("entity.field") into its parts
func (f Field) Reference() (types.Entity, string, bool) {
	entity, field, ok := strings.Cut(f.References, ".")
	if !ok {
		return "", "", false
	}
	return types.Entity(entity), field, true
}

// schema is one set of entity rules and the site versions it applies to
type schema struct {
	Versions []types.SiteVersion      `yaml:"versions"`
	Entities map[types.Entity][]Field `yaml:"entities"`
}

type document struct {
	Schemas []schema `yaml:"schemas"`
}

// Rules is a parsed rules configuration
type Rules struct {
	versions map[types.SiteVersion]map[types.Entity][]Field
}

// Load parses the rules shipped with the scraper
func Load() (*Rules, error) {
	return Parse(embedded)
}

// MustLoad is Load for callers that can't recover from broken embedded rules
func MustLoad() *Rules {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// Parse parses a rules document and checks every field has a name and a known type
func Parse(data []byte) (*Rules, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	versions := map[types.SiteVersion]map[types.Entity][]Field{}
	for i, sch := range doc.Schemas {
		if len(sch.Versions) == 0 {
			return nil, fmt.Errorf("rules schema %d: no site versions listed", i)
		}
		for _, token := range sch.Versions {
			version, err := types.ParseSiteVersion(string(token))
			if err != nil {
				return nil, fmt.Errorf("rules schema %d: %w", i, err)
			}
			if _, dupe := versions[version]; dupe {
				return nil, fmt.Errorf("rules schema %d: site version %q already has a schema", i, version)
			}
			versions[version] = sch.Entities
		}
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("failed to parse rules: no site versions defined")
	}

	for version, entities := range versions {
		for entity, fields := range entities {
			for i, field := range fields {
				if field.Name == "" {
					return nil, fmt.Errorf("rules %s/%s: field %d has no name", version, entity, i)
				}
				switch field.Type {
				case StringType, IntegerType, BooleanType:
				default:
					return nil, fmt.Errorf("rules %s/%s/%s: unknown type %q", version, entity, field.Name, field.Type)
				}
				if field.References != "" {
					if _, _, ok := field.Reference(); !ok {
						return nil, fmt.Errorf("rules %s/%s/%s: bad reference %q", version, entity, field.Name, field.References)
					}
				}
			}
		}
	}

	return &Rules{versions: versions}, nil
}

// Fields returns the ordered field rules of an entity
func (r *Rules) Fields(version types.SiteVersion, entity types.Entity) ([]Field, error) {
	entities, ok := r.versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: no rules for %q", types.ErrInvalidSiteVersion, version)
	}
	fields, ok := entities[entity]
	if !ok {
		return nil, fmt.Errorf("no rules for entity %q in site version %q", entity, version)
	}
	return fields, nil
}

// Header returns the declared header of an entity, its field names in order
func (r *Rules) Header(version types.SiteVersion, entity types.Entity) ([]string, error) {
	fields, err := r.Fields(version, entity)
	if err != nil {
		return nil, err
	}
	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Name
	}
	return header, nil
}

// Entities returns the entities with rules for a site version, in load order
func (r *Rules) Entities(version types.SiteVersion) []types.Entity {
	entities := []types.Entity{}
	for _, entity := range types.AllEntities {
		if _, ok := r.versions[version][entity]; ok {
			entities = append(entities, entity)
		}
	}
	return entities
}
