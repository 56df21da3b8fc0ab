package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Oudwins/zog"

	"github.com/ogri-la/wowhead-scraper-go/src/rules"
)

var booleanValues = []string{"true", "false"}

// fieldSchema validates the on-disk value of one field. Empty values are nulls and never reach it.
type fieldSchema func(value string) []string

// compile builds the zog schema for a field's rules
func compile(field rules.Field) fieldSchema {
	switch field.Type {
	case rules.IntegerType:
		schema := zog.Int()
		if field.Minimum != nil {
			msg := zog.Message(fmt.Sprintf("must be at least %d", *field.Minimum))
			schema = schema.GTE(*field.Minimum, msg)
			// zero values skip tests unless required
			if *field.Minimum > 0 {
				schema = schema.Required(msg)
			}
		}
		return func(value string) []string {
			i, err := strconv.Atoi(value)
			if err != nil {
				return []string{"must be an integer"}
			}
			found := []string{}
			for _, issue := range schema.Validate(&i) {
				found = append(found, issue.Message)
			}
			return found
		}

	case rules.BooleanType:
		schema := zog.String().OneOf(booleanValues, zog.Message("must be true or false"))
		return func(value string) []string {
			found := []string{}
			for _, issue := range schema.Validate(&value) {
				found = append(found, issue.Message)
			}
			return found
		}

	default:
		schema := zog.String()
		if field.Format == "url" {
			schema = schema.TestFunc(isURL, zog.Message("must be a valid url"))
		}
		if len(field.Enum) > 0 {
			schema = schema.OneOf(field.Enum, zog.Message(fmt.Sprintf("must be one of %v", field.Enum)))
		}
		return func(value string) []string {
			found := []string{}
			for _, issue := range schema.Validate(&value) {
				found = append(found, issue.Message)
			}
			return found
		}
	}
}

func isURL(val *string, ctx zog.Ctx) bool {
	if val == nil || *val == "" {
		return false
	}
	u, err := url.ParseRequestURI(*val)
	return err == nil && u.Scheme != "" && u.Host != ""
}
