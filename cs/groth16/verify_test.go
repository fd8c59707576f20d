package groth16

import (
	"crypto/rand"
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/arcanum-zk/arcanum/cs"
)

func randomNonTrivialScalar(t *testing.T) fr.Element {
	t.Helper()
	var z, one fr.Element
	one.SetOne()
	for {
		_, err := z.SetRandom()
		require.NoError(t, err)
		if !z.IsZero() && !z.Equal(&one) {
			return z
		}
	}
}

func TestVerifyRandomSingle(t *testing.T) {
	assert := require.New(t)

	pk, vk, err := GenerateRandomParameters(&xorCircuit{})
	assert.NoError(err)
	pvk, err := PrepareVerifyingKey(vk)
	assert.NoError(err)

	_, _, g1, g2 := curve.Generators()

	cases := []struct{ a, b bool }{
		{false, false}, {false, true}, {true, false}, {true, true},
	}
	for _, tc := range cases {
		proof, err := CreateRandomProof(&xorCircuit{a: boolPtr(tc.a), b: boolPtr(tc.b)}, pk)
		assert.NoError(err)

		statement := frUint(0)
		if tc.a != tc.b {
			statement.SetOne()
		}
		ok, err := VerifyProof(pvk, proof, []fr.Element{statement})
		assert.NoError(err)
		assert.True(ok, "a=%v b=%v", tc.a, tc.b)

		// wrong statement
		var wrong fr.Element
		wrong.SetOne()
		wrong.Sub(&wrong, &statement)
		ok, err = VerifyProof(pvk, proof, []fr.Element{wrong})
		assert.NoError(err)
		assert.False(ok)

		// each element scaled by a random nontrivial factor
		z := randomNonTrivialScalar(t)
		var bi big.Int
		z.BigInt(&bi)

		bad := *proof
		bad.Ar.ScalarMultiplication(&proof.Ar, &bi)
		ok, err = VerifyProof(pvk, &bad, []fr.Element{statement})
		assert.NoError(err)
		assert.False(ok, "scaled Ar accepted")

		bad = *proof
		bad.Bs.ScalarMultiplication(&proof.Bs, &bi)
		ok, err = VerifyProof(pvk, &bad, []fr.Element{statement})
		assert.NoError(err)
		assert.False(ok, "scaled Bs accepted")

		bad = *proof
		bad.Krs.ScalarMultiplication(&proof.Krs, &bi)
		ok, err = VerifyProof(pvk, &bad, []fr.Element{statement})
		assert.NoError(err)
		assert.False(ok, "scaled Krs accepted")

		// swapped G1 elements
		bad = *proof
		bad.Ar, bad.Krs = proof.Krs, proof.Ar
		ok, err = VerifyProof(pvk, &bad, []fr.Element{statement})
		assert.NoError(err)
		assert.False(ok, "swapped proof accepted")
	}

	// a proof made of random group elements
	var random Proof
	random.Ar = mulG1(g1, randomNonTrivialScalar(t))
	random.Krs = mulG1(g1, randomNonTrivialScalar(t))
	random.Bs = mulG2(g2, randomNonTrivialScalar(t))
	ok, err := VerifyProof(pvk, &random, []fr.Element{frUint(1)})
	assert.NoError(err)
	assert.False(ok)
}

func TestVerifyRandomBatch(t *testing.T) {
	assert := require.New(t)

	pk, vk, err := GenerateRandomParameters(&xorCircuit{})
	assert.NoError(err)
	pvk, err := PrepareVerifyingKey(vk)
	assert.NoError(err)

	bits := []struct{ a, b bool }{
		{false, true}, {true, true}, {true, false}, {false, false}, {true, false},
	}
	circuits := make([]cs.Circuit, len(bits))
	inputs := make([][]fr.Element, len(bits))
	for i, tc := range bits {
		circuits[i] = &xorCircuit{a: boolPtr(tc.a), b: boolPtr(tc.b)}
		statement := frUint(0)
		if tc.a != tc.b {
			statement.SetOne()
		}
		inputs[i] = []fr.Element{statement}
	}

	proofs, err := CreateRandomProofBatch(circuits, pk)
	assert.NoError(err)

	ok, err := VerifyProofsBatch(pvk, rand.Reader, proofs, inputs)
	assert.NoError(err)
	assert.True(ok)

	// a single corrupted proof fails the whole batch
	z := randomNonTrivialScalar(t)
	var bi big.Int
	z.BigInt(&bi)
	corrupted := make([]*Proof, len(proofs))
	copy(corrupted, proofs)
	bad := *proofs[2]
	bad.Krs.ScalarMultiplication(&proofs[2].Krs, &bi)
	corrupted[2] = &bad
	ok, err = VerifyProofsBatch(pvk, rand.Reader, corrupted, inputs)
	assert.NoError(err)
	assert.False(ok)

	// a single wrong statement fails the whole batch
	wrongInputs := make([][]fr.Element, len(inputs))
	copy(wrongInputs, inputs)
	var flipped fr.Element
	flipped.SetOne()
	flipped.Sub(&flipped, &inputs[0][0])
	wrongInputs[0] = []fr.Element{flipped}
	ok, err = VerifyProofsBatch(pvk, rand.Reader, proofs, wrongInputs)
	assert.NoError(err)
	assert.False(ok)

	// malformed batches
	_, err = VerifyProofsBatch(pvk, rand.Reader, nil, nil)
	assert.Error(err)
	_, err = VerifyProofsBatch(pvk, rand.Reader, proofs, inputs[:len(inputs)-1])
	assert.Error(err)
	_, err = VerifyProofsBatch(pvk, rand.Reader, proofs, [][]fr.Element{nil, nil, nil, nil, nil})
	assert.ErrorIs(err, ErrMalformedVerifyingKey)
}

func uintValue(v *uint64) cs.Assignment {
	return func() (fr.Element, error) {
		var e fr.Element
		if v == nil {
			return e, cs.ErrAssignmentMissing
		}
		e.SetUint64(*v)
		return e, nil
	}
}

// zeroCoeffCircuit multiplies two witness wires, with an explicitly zero
// term on the B side. The dangling wire keeps its slot in the B query.
type zeroCoeffCircuit struct {
	onOne   bool // attach the zero term to the constant wire instead of x
	x, y, z *uint64
}

func (c *zeroCoeffCircuit) Synthesize(sys cs.ConstraintSystem) error {
	x, err := sys.Alloc(uintValue(c.x))
	if err != nil {
		return err
	}
	y, err := sys.Alloc(uintValue(c.y))
	if err != nil {
		return err
	}
	z, err := sys.Alloc(uintValue(c.z))
	if err != nil {
		return err
	}

	var zero fr.Element
	b := cs.LinearCombination{}
	if c.onOne {
		b = b.AddTerm(sys.One(), zero)
	} else {
		b = b.AddTerm(x, zero)
	}
	b = b.Add(y)

	sys.Enforce(cs.LinearCombination{}.Add(x), b, cs.LinearCombination{}.Add(z))
	return nil
}

func TestZeroCoefficientTerm(t *testing.T) {
	for _, onOne := range []bool{true, false} {
		name := "on witness wire"
		if onOne {
			name = "on constant wire"
		}
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)

			pk, vk, err := GenerateRandomParameters(&zeroCoeffCircuit{onOne: onOne})
			assert.NoError(err)

			// the zero-coefficient wire and y both own a B slot
			assert.Len(pk.G1.B, 2)
			assert.Len(pk.G2.B, 2)
			// A covers x and the pinned constant wire only
			assert.Len(pk.G1.A, 2)
			assert.Len(pk.G1.K, 3)
			assert.Len(vk.G1.K, 1)

			x := uint64(5)
			y := uint64(6)
			z := uint64(30)
			proof, err := CreateRandomProof(&zeroCoeffCircuit{onOne: onOne, x: &x, y: &y, z: &z}, pk)
			assert.NoError(err)

			pvk, err := PrepareVerifyingKey(vk)
			assert.NoError(err)
			ok, err := VerifyProof(pvk, proof, nil)
			assert.NoError(err)
			assert.True(ok)

			// a proof over an unsatisfying witness is rejected
			bad := uint64(31)
			badProof, err := CreateRandomProof(&zeroCoeffCircuit{onOne: onOne, x: &x, y: &y, z: &bad}, pk)
			assert.NoError(err)
			ok, err = VerifyProof(pvk, badProof, nil)
			assert.NoError(err)
			assert.False(ok)
		})
	}
}
