package locations

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySlug(t *testing.T) {
	loc, ok := BySlug("atlanta")
	require.True(t, ok)
	assert.Equal(t, "Atlanta", loc.City)
	assert.Equal(t, "GA", loc.State)
	assert.Equal(t, "Atlanta, GA", loc.Label())

	_, ok = BySlug("gotham")
	assert.False(t, ok)
}

func TestBySlugNormalizesInput(t *testing.T) {
	loc, ok := BySlug("  Kansas-City ")
	require.True(t, ok)
	assert.Equal(t, "Kansas City", loc.City)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("salt-lake-city"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("new-york"))
}

func TestAllSortedByCity(t *testing.T) {
	locs := All()
	require.Len(t, locs, 20)

	assert.True(t, sort.SliceIsSorted(locs, func(i, j int) bool {
		return locs[i].City < locs[j].City
	}))
	assert.Equal(t, "atlanta", locs[0].Slug)
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].City = "Mutated"

	assert.Equal(t, "Atlanta", All()[0].City)
}
