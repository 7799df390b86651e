package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"listing_finder/internal/domain"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"id":          {"id", "listing_id", "property_id"},
	"title":       {"title", "name", "headline"},
	"location":    {"location", "address.display", "city"},
	"description": {"description", "summary", "details"},
	"price":       {"price.display", "price", "list_price", "asking_price"},
	"bedrooms":    {"bedrooms", "beds", "rooms.bedrooms"},
	"bathrooms":   {"bathrooms", "baths", "rooms.bathrooms"},
	"features":    {"features", "amenities", "tags"},
	"listed_date": {"listed_date", "listedDate", "listed_at", "created_at"},
	"lat":         {"latitude", "lat", "geo.lat"},
	"lon":         {"longitude", "lon", "lng", "geo.lon", "geo.lng"},
	"type":        {"type", "property_type", "kind"},
	"status":      {"status", "state"},
	"area":        {"sqft", "area_sqft", "area"},
	"year_built":  {"yearBuilt", "year_built"},
	"image":       {"image", "photo", "cover_image"},
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "2,5").
func getFloatFlexible(m map[string]any, key string) *float64 {
	for _, k := range listingAliases[key] {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstIntFlexible: int64 from several paths; strings keep their digits only
// ("1,250 sqft" -> 1250).
func firstIntFlexible(m map[string]any, key string) *int64 {
	for _, k := range listingAliases[key] {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			if n, ok := domain.Price(v).Amount(); ok {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/label}.
func firstSliceStrings(m map[string]any, key string) []string {
	for _, k := range listingAliases[key] {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, strings.ToLower(t))
				}
			case map[string]any:
				if n, ok := t["name"].(string); ok && n != "" {
					out = append(out, strings.ToLower(n))
					continue
				}
				if n, ok := t["label"].(string); ok && n != "" {
					out = append(out, strings.ToLower(n))
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstTime(m map[string]any, key string) *time.Time {
	s := firstNonEmptyAlias(m, key)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	log.Debug().Str("value", s).Msg("unrecognised listing date")
	return nil
}

func intPtr(p *int64) *int {
	if p == nil {
		return nil
	}
	x := int(*p)
	return &x
}

/********** listing mapper **********/

// mapListing turns a feed or seed payload into a Listing. Numeric prices are
// rendered the way the site displays them ("$1,250,000").
func mapListing(p map[string]any) domain.Listing {
	l := domain.Listing{
		Title:       firstNonEmptyAlias(p, "title"),
		Location:    firstNonEmptyAlias(p, "location"),
		Description: firstNonEmptyAlias(p, "description"),
		Features:    firstSliceStrings(p, "features"),
		ListedDate:  firstTime(p, "listed_date"),
		Lat:         getFloatFlexible(p, "lat"),
		Lon:         getFloatFlexible(p, "lon"),
		Type:        domain.ParsePropertyType(firstNonEmptyAlias(p, "type")),
		Status:      firstNonEmptyAlias(p, "status"),
		AreaSqft:    intPtr(firstIntFlexible(p, "area")),
		YearBuilt:   intPtr(firstIntFlexible(p, "year_built")),
		Image:       firstNonEmptyAlias(p, "image"),
	}
	if v := firstIntFlexible(p, "id"); v != nil {
		l.ID = *v
	}
	if s := firstNonEmptyAlias(p, "price"); s != "" {
		l.Price = domain.Price(s)
	} else if f := getFloatFlexible(p, "price"); f != nil {
		l.Price = domain.Price(FormatCurrency(*f, 0))
	}
	if v := firstIntFlexible(p, "bedrooms"); v != nil {
		l.Bedrooms = int(*v)
	}
	if f := getFloatFlexible(p, "bathrooms"); f != nil {
		l.Bathrooms = *f
	}
	if l.Status == "" {
		l.Status = "for-sale"
	}
	return l
}
