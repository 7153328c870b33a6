package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/PesaranB/mind-snag/internal/geometry"
)

func TestNeighborhood_Basic(t *testing.T) {
	p := geometry.NewProbe([]int32{0, 1, 2, 3, 4, 5})

	n := p.Neighborhood(2, 1)
	assert.ElementsMatch(t, []int32{1, 2, 3}, n)

	n = p.Neighborhood(0, 0)
	assert.Equal(t, []int32{0}, n)
}

func TestNeighborhood_OutOfRangeChannel(t *testing.T) {
	p := geometry.NewProbe([]int32{0, 1, 2})
	assert.Nil(t, p.Neighborhood(5, 1))
}

// Neighborhood symmetry (spec 8): if c' is in c's neighborhood, c is in c''s.
func TestNeighborhood_Symmetry_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		electrodeIndex := make([]int32, n)
		for i := range electrodeIndex {
			electrodeIndex[i] = rapid.Int32Range(-50, 50).Draw(t, "e")
		}
		p := geometry.NewProbe(electrodeIndex)

		c := rapid.Int32Range(0, int32(n-1)).Draw(t, "c")
		rho := rapid.Int32Range(0, 30).Draw(t, "rho")

		for _, cPrime := range p.Neighborhood(c, rho) {
			found := false
			for _, back := range p.Neighborhood(cPrime, rho) {
				if back == c {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("neighborhood not symmetric: %d in nbhd(%d) but %d not in nbhd(%d)", cPrime, c, c, cPrime)
			}
		}
	})
}
