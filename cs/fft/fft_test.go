package fft

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// evaluate a (coefficient form) at x, naive Horner
func evalPoly(a []fr.Element, x fr.Element) fr.Element {
	var res fr.Element
	for i := len(a) - 1; i >= 0; i-- {
		res.Mul(&res, &x)
		res.Add(&res, &a[i])
	}
	return res
}

func randomPoly(n int) []fr.Element {
	a := make([]fr.Element, n)
	for i := range a {
		a[i].SetRandom()
	}
	return a
}

func TestNewDomain(t *testing.T) {
	assert := require.New(t)

	d, err := NewDomain(5)
	assert.NoError(err)
	assert.Equal(8, d.Cardinality)

	// generator has exact order 8
	var x, one fr.Element
	one.SetOne()
	x = d.Generator
	for i := 1; i < 8; i++ {
		assert.False(x.Equal(&one), "generator order divides %d", i)
		x.Mul(&x, &d.Generator)
	}
	assert.True(x.Equal(&one))

	var sq fr.Element
	sq.Square(&d.GeneratorSqRt)
	assert.True(sq.Equal(&d.Generator))

	var prod fr.Element
	prod.Mul(&d.Generator, &d.GeneratorInv)
	assert.True(prod.IsOne())

	var eight fr.Element
	eight.SetUint64(8)
	prod.Mul(&d.CardinalityInv, &eight)
	assert.True(prod.IsOne())
}

func TestNewDomainTooLarge(t *testing.T) {
	// bn254 fr has 2-adicity 28; a cardinality of 1<<28 needs a root of
	// order 1<<29 for the coset shift
	_, err := NewDomain((1 << 27) + 1)
	require.ErrorIs(t, err, ErrDomainTooLarge)
}

func TestEvaluateVanishing(t *testing.T) {
	assert := require.New(t)

	d, err := NewDomain(8)
	assert.NoError(err)

	// zero on the domain
	var x fr.Element
	x.SetOne()
	for i := 0; i < d.Cardinality; i++ {
		z := d.EvaluateVanishing(x)
		assert.True(z.IsZero(), "vanishing polynomial nonzero at w^%d", i)
		x.Mul(&x, &d.Generator)
	}

	// constant -2 on the coset ker(X^n + 1)
	var minusTwo fr.Element
	minusTwo.SetUint64(2)
	minusTwo.Neg(&minusTwo)
	x = d.GeneratorSqRt
	for i := 0; i < d.Cardinality; i++ {
		z := d.EvaluateVanishing(x)
		assert.True(z.Equal(&minusTwo), "vanishing polynomial not -2 at coset point %d", i)
		x.Mul(&x, &d.Generator)
	}
}

func TestFFT(t *testing.T) {
	assert := require.New(t)

	d, err := NewDomain(8)
	assert.NoError(err)

	poly := randomPoly(8)

	got := make([]fr.Element, 8)
	copy(got, poly)
	FFT(got, d.Generator)
	BitReverse(got)

	var x fr.Element
	x.SetOne()
	for i := range got {
		want := evalPoly(poly, x)
		assert.True(got[i].Equal(&want), "evaluation %d mismatch", i)
		x.Mul(&x, &d.Generator)
	}

	// interpolating back recovers the coefficients
	Inv(got, d.GeneratorInv)
	BitReverse(got)
	for i := range got {
		assert.True(got[i].Equal(&poly[i]), "coefficient %d mismatch", i)
	}
}

func TestFFTCoset(t *testing.T) {
	assert := require.New(t)

	d, err := NewDomain(8)
	assert.NoError(err)

	poly := randomPoly(8)

	got := make([]fr.Element, 8)
	copy(got, poly)
	Coset(got, d.Generator, d.GeneratorSqRt)

	x := d.GeneratorSqRt
	for i := range got {
		want := evalPoly(poly, x)
		assert.True(got[i].Equal(&want), "coset evaluation %d mismatch", i)
		x.Mul(&x, &d.Generator)
	}

	InvCoset(got, d.Generator, d.GeneratorSqRt)
	for i := range got {
		assert.True(got[i].Equal(&poly[i]), "coefficient %d mismatch", i)
	}
}

func TestBitReverse(t *testing.T) {
	assert := require.New(t)

	a := make([]fr.Element, 8)
	for i := range a {
		a[i].SetUint64(uint64(i))
	}

	BitReverse(a)

	want := []uint64{0, 4, 2, 6, 1, 5, 3, 7}
	for i := range a {
		var w fr.Element
		w.SetUint64(want[i])
		assert.True(a[i].Equal(&w), "index %d", i)
	}
}

func BenchmarkFFT(b *testing.B) {
	d, err := NewDomain(1 << 14)
	if err != nil {
		b.Fatal(err)
	}
	a := randomPoly(d.Cardinality)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FFT(a, d.Generator)
	}
}
