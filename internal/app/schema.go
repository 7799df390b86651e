package app

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Minimum a payload needs to be mapped. It is checked against the canonical
// form, so "beds" satisfies "bedrooms" the same way it does in mapListing.
const listingSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "title", "location", "price", "bedrooms", "bathrooms"],
  "properties": {
    "id":        {"type": "integer", "minimum": 1},
    "title":     {"type": "string", "minLength": 1},
    "location":  {"type": "string", "minLength": 1},
    "price":     {"type": ["string", "number"], "pattern": "[0-9]", "minimum": 0},
    "bedrooms":  {"type": ["integer", "string"], "pattern": "[0-9]", "minimum": 0},
    "bathrooms": {"type": ["number", "string"], "pattern": "[0-9]", "minimum": 0},
    "features":  {"type": "array", "items": {"type": ["string", "object"]}},
    "lat":       {"type": ["number", "string"], "minimum": -90, "maximum": 90},
    "lon":       {"type": ["number", "string"], "minimum": -180, "maximum": 180}
  }
}`

var listingSchema = jsonschema.MustCompileString("listing.schema.json", listingSchemaJSON)

// ValidateListingPayload checks a decoded JSON payload against the listing
// schema. Values must be JSON-shaped (map[string]any, []any, float64, ...).
func ValidateListingPayload(p map[string]any) error {
	if err := listingSchema.Validate(canonicalPayload(p)); err != nil {
		return fmt.Errorf("listing payload: %w", err)
	}
	return nil
}

// canonicalPayload keys p by the listingAliases names, taking the first alias
// present for each.
func canonicalPayload(p map[string]any) map[string]any {
	out := make(map[string]any, len(listingAliases))
	for key, aliases := range listingAliases {
		for _, a := range aliases {
			if v := lookupAny(p, a); v != nil {
				out[key] = v
				break
			}
		}
	}
	return out
}
