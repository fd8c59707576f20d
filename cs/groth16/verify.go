// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

package groth16

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/arcanum-zk/arcanum/internal/parallel"
	"github.com/arcanum-zk/arcanum/logger"
)

// ErrMalformedVerifyingKey is returned when the number of public inputs does
// not match the verifying key.
var ErrMalformedVerifyingKey = errors.New("groth16: public input length does not match the verifying key")

// PreparedVerifyingKey caches the pairing-friendly form of a VerifyingKey:
// e(α,β), the negated γ and δ points, and the public input commitments. It
// is a pure function of the key and can be reused across verifications.
type PreparedVerifyingKey struct {
	E                  curve.GT
	GammaNeg, DeltaNeg curve.G2Affine
	Alpha              curve.G1Affine
	Beta               curve.G2Affine
	IC                 []curve.G1Affine
}

// PrepareVerifyingKey precomputes the verifier-side constants of vk.
func PrepareVerifyingKey(vk *VerifyingKey) (*PreparedVerifyingKey, error) {
	e, err := curve.Pair([]curve.G1Affine{vk.G1.Alpha}, []curve.G2Affine{vk.G2.Beta})
	if err != nil {
		return nil, err
	}

	pvk := &PreparedVerifyingKey{
		E:     e,
		Alpha: vk.G1.Alpha,
		Beta:  vk.G2.Beta,
	}
	pvk.GammaNeg.Neg(&vk.G2.Gamma)
	pvk.DeltaNeg.Neg(&vk.G2.Delta)
	pvk.IC = make([]curve.G1Affine, len(vk.G1.K))
	copy(pvk.IC, vk.G1.K)

	return pvk, nil
}

// VerifyProof checks proof against the public inputs (constant wire
// excluded). A proof that fails the pairing equation yields (false, nil);
// an error is returned only on malformed arguments.
func VerifyProof(pvk *PreparedVerifyingKey, proof *Proof, publicInputs []fr.Element) (bool, error) {
	if len(publicInputs)+1 != len(pvk.IC) {
		return false, ErrMalformedVerifyingKey
	}

	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "groth16").Logger()
	start := time.Now()

	kSumAff, err := foldPublicInputs(pvk.IC, publicInputs)
	if err != nil {
		return false, err
	}

	// e(Ar, Bs)·e(acc, -γ)·e(Krs, -δ) == e(α, β)
	right, err := curve.MillerLoop(
		[]curve.G1Affine{proof.Ar, kSumAff, proof.Krs},
		[]curve.G2Affine{proof.Bs, pvk.GammaNeg, pvk.DeltaNeg},
	)
	if err != nil {
		return false, err
	}
	right = curve.FinalExponentiation(&right)

	log.Debug().Dur("took", time.Since(start)).Msg("verifier done")

	return pvk.E.Equal(&right), nil
}

// VerifyProofsBatch folds the verification of several proofs under the same
// key into a single pairing check. Each proof is weighted by a random
// nonzero scalar drawn from rand, so a batch containing any invalid proof
// is rejected except with negligible probability:
//
//	Π e(z_k·Ar_k, Bs_k) · e(Σ z_k·acc_k, -γ) · e(Σ z_k·Krs_k, -δ)
//	  · e(-(Σ z_k)·α, β) == 1
func VerifyProofsBatch(pvk *PreparedVerifyingKey, rand io.Reader, proofs []*Proof, publicInputs [][]fr.Element) (bool, error) {
	if len(proofs) == 0 {
		return false, errors.New("groth16: empty batch")
	}
	if len(proofs) != len(publicInputs) {
		return false, fmt.Errorf("groth16: %d proofs for %d public input vectors", len(proofs), len(publicInputs))
	}
	for _, inputs := range publicInputs {
		if len(inputs)+1 != len(pvk.IC) {
			return false, ErrMalformedVerifyingKey
		}
	}

	log := logger.Logger().With().
		Str("curve", "bn254").
		Str("backend", "groth16").
		Int("batchSize", len(proofs)).
		Logger()
	start := time.Now()

	z := make([]fr.Element, len(proofs))
	for i := range z {
		if err := randomNonZero(rand, &z[i]); err != nil {
			return false, err
		}
	}

	var zSum fr.Element
	for i := range z {
		zSum.Add(&zSum, &z[i])
	}

	// fold the statement accumulators on the scalar side:
	// Σ_k z_k·acc_k = (Σ z_k)·IC[0] + Σ_j (Σ_k z_k·x_kj)·IC[j+1]
	accScalars := make([]fr.Element, len(pvk.IC))
	accScalars[0] = zSum
	var t fr.Element
	for k := range proofs {
		for j := range publicInputs[k] {
			t.Mul(&z[k], &publicInputs[k][j])
			accScalars[j+1].Add(&accScalars[j+1], &t)
		}
	}
	var accGamma curve.G1Jac
	if _, err := accGamma.MultiExp(pvk.IC, accScalars, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	// Σ z_k·Krs_k
	cPoints := make([]curve.G1Affine, len(proofs))
	for k := range proofs {
		cPoints[k] = proofs[k].Krs
	}
	var accDelta curve.G1Jac
	if _, err := accDelta.MultiExp(cPoints, z, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	// z_k·Ar_k stays per proof, the Bs_k side differs for each
	g1Points := make([]curve.G1Affine, len(proofs)+3)
	g2Points := make([]curve.G2Affine, len(proofs)+3)
	parallel.Execute(len(proofs), func(start, end int) {
		var bi big.Int
		for k := start; k < end; k++ {
			g1Points[k].ScalarMultiplication(&proofs[k].Ar, z[k].BigInt(&bi))
			g2Points[k] = proofs[k].Bs
		}
	})

	n := len(proofs)
	g1Points[n].FromJacobian(&accGamma)
	g2Points[n] = pvk.GammaNeg
	g1Points[n+1].FromJacobian(&accDelta)
	g2Points[n+1] = pvk.DeltaNeg

	// e(α,β)^(Σ z_k) moves to the left side as e(-(Σ z_k)·α, β)
	var zSumNeg fr.Element
	zSumNeg.Neg(&zSum)
	var bi big.Int
	g1Points[n+2].ScalarMultiplication(&pvk.Alpha, zSumNeg.BigInt(&bi))
	g2Points[n+2] = pvk.Beta

	ok, err := curve.PairingCheck(g1Points, g2Points)
	if err != nil {
		return false, err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("batch verifier done")

	return ok, nil
}

// foldPublicInputs returns IC[0] + Σ x_j·IC[j+1].
func foldPublicInputs(ic []curve.G1Affine, inputs []fr.Element) (curve.G1Affine, error) {
	var kSum curve.G1Jac
	if len(inputs) > 0 {
		if _, err := kSum.MultiExp(ic[1:], inputs, ecc.MultiExpConfig{}); err != nil {
			return curve.G1Affine{}, err
		}
	}
	kSum.AddMixed(&ic[0])

	var kSumAff curve.G1Affine
	kSumAff.FromJacobian(&kSum)
	return kSumAff, nil
}

func randomNonZero(rand io.Reader, z *fr.Element) error {
	var buf [fr.Bytes]byte
	for {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return err
		}
		z.SetBytes(buf[:])
		if !z.IsZero() {
			return nil
		}
	}
}
