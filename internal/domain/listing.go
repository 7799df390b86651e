package domain

import (
	"strconv"
	"strings"
	"time"
)

// PropertyType identifies the kind of property; the UI maps it to an icon.
type PropertyType string

const (
	TypeHouse     PropertyType = "house"
	TypeApartment PropertyType = "apartment"
	TypeVilla     PropertyType = "villa"
	TypePenthouse PropertyType = "penthouse"
	TypeTownhouse PropertyType = "townhouse"
	TypeCottage   PropertyType = "cottage"
	TypeLoft      PropertyType = "loft"
	TypeEstate    PropertyType = "estate"
)

var propertyTypes = map[PropertyType]struct{}{
	TypeHouse: {}, TypeApartment: {}, TypeVilla: {}, TypePenthouse: {},
	TypeTownhouse: {}, TypeCottage: {}, TypeLoft: {}, TypeEstate: {},
}

// ParsePropertyType is case-insensitive and falls back to TypeHouse.
func ParsePropertyType(s string) PropertyType {
	t := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := propertyTypes[t]; ok {
		return t
	}
	return TypeHouse
}

// Price is the display price as listed, e.g. "$3,250,000" (USD).
type Price string

// Amount keeps only the digits of the display string. ok is false when there
// are none or the number does not fit an int64.
func (p Price) Amount() (amount int64, ok bool) {
	var b strings.Builder
	for _, r := range string(p) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type Listing struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Location    string       `json:"location"`
	Description string       `json:"description,omitempty"`
	Price       Price        `json:"price"`
	Bedrooms    int          `json:"bedrooms"`
	Bathrooms   float64      `json:"bathrooms"`
	Features    []string     `json:"features,omitempty"`
	ListedDate  *time.Time   `json:"listed_date,omitempty"`
	Lat         *float64     `json:"latitude,omitempty"`
	Lon         *float64     `json:"longitude,omitempty"`
	Type        PropertyType `json:"type"`
	Status      string       `json:"status,omitempty"`
	AreaSqft    *int         `json:"area_sqft,omitempty"`
	YearBuilt   *int         `json:"year_built,omitempty"`
	Image       string       `json:"image,omitempty"`
}

// HasFeature reports whether tag is among the listing's features. A nil
// feature list is an empty set.
func (l Listing) HasFeature(tag string) bool {
	for _, f := range l.Features {
		if f == tag {
			return true
		}
	}
	return false
}

// ListedAt is the sort key for "newest"; a missing date sorts as the epoch.
func (l Listing) ListedAt() int64 {
	if l.ListedDate == nil {
		return 0
	}
	return l.ListedDate.UnixMilli()
}

// MapPoint is the slim projection served to the map view.
type MapPoint struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Price   Price   `json:"price"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Geohash string  `json:"geohash"`
}
