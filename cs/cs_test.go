package cs

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestLinearCombinationKeepsZeroTerms(t *testing.T) {
	assert := require.New(t)

	a := Variable{Visibility: Private, Index: 0}
	b := Variable{Visibility: Private, Index: 1}

	var zero fr.Element
	lc := LinearCombination{}.AddTerm(a, zero).Add(b)

	assert.Len(lc, 2, "zero coefficient terms must not be dropped")
	assert.True(lc[0].Coeff.IsZero())
	assert.Equal(a, lc[0].Variable)
	assert.Equal(b, lc[1].Variable)
	assert.True(lc[1].Coeff.IsOne())
}

func TestLinearCombinationOrder(t *testing.T) {
	assert := require.New(t)

	a := Variable{Visibility: Public, Index: 1}
	lc := LinearCombination{}.Add(a).Sub(a).Add(a)

	assert.Len(lc, 3, "duplicate terms must not be coalesced")
	for i, term := range lc {
		assert.Equal(a, term.Variable, "term %d", i)
	}

	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	assert.True(lc[1].Coeff.Equal(&minusOne))
}

func TestDensityTracker(t *testing.T) {
	assert := require.New(t)

	dt := NewDensityTracker()
	for i := 0; i < 5; i++ {
		dt.AddElement()
	}
	assert.Equal(5, dt.Len())
	assert.Equal(0, dt.TotalDensity())

	dt.Inc(1)
	dt.Inc(3)
	dt.Inc(1) // marking twice counts once
	assert.Equal(2, dt.TotalDensity())
	assert.True(dt.Test(1))
	assert.True(dt.Test(3))
	assert.False(dt.Test(0))
	assert.False(dt.Test(4))
}
