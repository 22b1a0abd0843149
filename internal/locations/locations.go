package locations

import (
	"sort"
	"strings"
)

// Location is one delivery/service region with its own catalog pricing.
type Location struct {
	Slug  string `json:"slug"`
	City  string `json:"city"`
	State string `json:"state"`
}

// Label renders the display form, e.g. "Atlanta, GA".
func (l Location) Label() string {
	return l.City + ", " + l.State
}

// The closed set of cities the business delivers to. Pricing for any other
// slug does not exist upstream, so unknown slugs are rejected early.
var all = []Location{
	{Slug: "birmingham", City: "Birmingham", State: "AL"},
	{Slug: "phoenix", City: "Phoenix", State: "AZ"},
	{Slug: "los-angeles", City: "Los Angeles", State: "CA"},
	{Slug: "denver", City: "Denver", State: "CO"},
	{Slug: "miami", City: "Miami", State: "FL"},
	{Slug: "atlanta", City: "Atlanta", State: "GA"},
	{Slug: "chicago", City: "Chicago", State: "IL"},
	{Slug: "indianapolis", City: "Indianapolis", State: "IN"},
	{Slug: "louisville", City: "Louisville", State: "KY"},
	{Slug: "detroit", City: "Detroit", State: "MI"},
	{Slug: "kansas-city", City: "Kansas City", State: "MO"},
	{Slug: "charlotte", City: "Charlotte", State: "NC"},
	{Slug: "columbus", City: "Columbus", State: "OH"},
	{Slug: "nashville", City: "Nashville", State: "TN"},
	{Slug: "dallas", City: "Dallas", State: "TX"},
	{Slug: "houston", City: "Houston", State: "TX"},
	{Slug: "salt-lake-city", City: "Salt Lake City", State: "UT"},
	{Slug: "norfolk", City: "Norfolk", State: "VA"},
	{Slug: "seattle", City: "Seattle", State: "WA"},
	{Slug: "milwaukee", City: "Milwaukee", State: "WI"},
}

var bySlug = func() map[string]Location {
	index := make(map[string]Location, len(all))
	for _, loc := range all {
		index[loc.Slug] = loc
	}
	return index
}()

// All returns every serviced location sorted by city name.
func All() []Location {
	out := make([]Location, len(all))
	copy(out, all)
	sort.Slice(out, func(i, j int) bool {
		return out[i].City < out[j].City
	})
	return out
}

// BySlug resolves a location by its slug.
func BySlug(slug string) (Location, bool) {
	loc, ok := bySlug[strings.TrimSpace(strings.ToLower(slug))]
	return loc, ok
}

// IsValid reports whether the slug names a serviced location.
func IsValid(slug string) bool {
	_, ok := BySlug(slug)
	return ok
}
