package names

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/facedrill/internal/model"
)

func TestNamesCoverEveryRegion(t *testing.T) {
	for _, region := range model.AllRegions {
		all := Names(region)
		require.NotEmpty(t, all, "region %s", region)

		var males, females int
		for _, n := range all {
			switch n.Gender {
			case model.GenderMale:
				males++
			case model.GenderFemale:
				females++
			default:
				t.Fatalf("name %d has unknown gender %q", n.ID, n.Gender)
			}
		}
		assert.Positive(t, males, "region %s needs male names", region)
		assert.Positive(t, females, "region %s needs female names", region)
	}
}

func TestNamesUnknownRegionFallsBack(t *testing.T) {
	assert.Equal(t, Names(model.RegionJapan), Names(model.Region("mars")))
}

func TestRandomNamesDistinct(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	picked := RandomNames(model.RegionUSA, 10, rnd)
	require.Len(t, picked, 10)

	seen := map[int]bool{}
	for _, n := range picked {
		require.False(t, seen[n.ID], "duplicate id %d", n.ID)
		seen[n.ID] = true
	}
}

func TestRandomNamesCappedByDataset(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	all := Names(model.RegionAsia)
	picked := RandomNames(model.RegionAsia, len(all)+20, rnd)
	assert.Len(t, picked, len(all))
}

func TestRandomNameRespectsGender(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		n, err := RandomName(model.RegionEurope, model.GenderFemale, rnd)
		require.NoError(t, err)
		assert.Equal(t, model.GenderFemale, n.Gender)
	}
}

func TestDisplayOrderByRegion(t *testing.T) {
	n := model.Name{FirstName: "太郎", LastName: "山田"}
	assert.Equal(t, "山田 太郎", n.Display(model.RegionJapan))

	n = model.Name{FirstName: "James", LastName: "Smith"}
	assert.Equal(t, "James Smith", n.Display(model.RegionUSA))
}
