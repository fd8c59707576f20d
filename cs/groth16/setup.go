// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

// Package groth16 implements the zkSNARK of https://eprint.iacr.org/2016/260.pdf:
// trusted setup, proving and verification, over BN254.
package groth16

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/arcanum-zk/arcanum/cs"
	"github.com/arcanum-zk/arcanum/cs/fft"
	"github.com/arcanum-zk/arcanum/internal/parallel"
	"github.com/arcanum-zk/arcanum/logger"
)

// ErrInvalidToxicWaste is returned by GenerateParameters when the trusted
// setup scalars cannot produce a sound key: gamma or delta zero (both are
// inverted), or tau inside the evaluation domain (the Lagrange basis is
// undefined there).
var ErrInvalidToxicWaste = errors.New("groth16: invalid toxic waste")

// ProvingKey holds the group elements needed by the prover.
type ProvingKey struct {
	// [α]1, [β]1, [δ]1
	// [A(τ)]1, [B(τ)]1, [Kpk(τ)]1, [Z(τ)]1
	G1 struct {
		Alpha, Beta, Delta curve.G1Affine
		A, B, Z            []curve.G1Affine
		K                  []curve.G1Affine // one per private wire
	}

	// [β]2, [δ]2, [B(τ)]2
	G2 struct {
		Beta, Delta curve.G2Affine
		B           []curve.G2Affine
	}
}

// VerifyingKey holds the group elements needed by the verifier.
type VerifyingKey struct {
	// [α]1, [β]1, [δ]1, and the public input commitments [Kvk(τ)]1,
	// constant wire first
	G1 struct {
		Alpha, Beta, Delta curve.G1Affine
		K                  []curve.G1Affine
	}

	// [β]2, [γ]2, [δ]2
	G2 struct {
		Beta, Gamma, Delta curve.G2Affine
	}
}

// ToxicWaste holds the trusted setup scalars. It is passed by value and
// must not outlive the GenerateParameters call: anyone holding these
// scalars can forge proofs for the circuit.
type ToxicWaste struct {
	Alpha, Beta, Gamma, Delta, Tau fr.Element
}

func sampleToxicWaste() (ToxicWaste, error) {
	var tw ToxicWaste

	for _, z := range []*fr.Element{&tw.Alpha, &tw.Beta, &tw.Gamma, &tw.Delta, &tw.Tau} {
		for {
			if _, err := z.SetRandom(); err != nil {
				return tw, err
			}
			if !z.IsZero() {
				break
			}
		}
	}

	return tw, nil
}

// GenerateRandomParameters runs the trusted setup for circuit with scalars
// drawn from crypto/rand.
func GenerateRandomParameters(circuit cs.Circuit) (*ProvingKey, *VerifyingKey, error) {
	tw, err := sampleToxicWaste()
	if err != nil {
		return nil, nil, err
	}
	_, _, g1, g2 := curve.Generators()
	return GenerateParameters(circuit, g1, g2, tw)
}

// GenerateParameters runs the trusted setup for circuit on the given group
// generators and toxic waste. The deterministic form exists for tests and
// multi-party ceremonies; tw is consumed by value and dropped on return.
func GenerateParameters(circuit cs.Circuit, g1 curve.G1Affine, g2 curve.G2Affine, tw ToxicWaste) (*ProvingKey, *VerifyingKey, error) {
	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "groth16").Logger()
	start := time.Now()

	// shape-only synthesis: wires and constraints are enumerated, value
	// callbacks are never invoked
	assembly := newKeypairAssembly()
	if err := circuit.Synthesize(assembly); err != nil {
		return nil, nil, fmt.Errorf("groth16: synthesize: %w", err)
	}
	assembly.finalize()

	nbInputs := len(assembly.atInputs)
	nbAux := len(assembly.atAux)

	domain, err := fft.NewDomain(assembly.nbConstraints)
	if err != nil {
		return nil, nil, err
	}

	if tw.Gamma.IsZero() || tw.Delta.IsZero() {
		return nil, nil, ErrInvalidToxicWaste
	}
	if z := domain.EvaluateVanishing(tw.Tau); z.IsZero() {
		return nil, nil, ErrInvalidToxicWaste
	}

	// QAP polynomials of every wire, evaluated at tau
	u, v, w := assembly.evalQAP(domain, tw.Tau)

	var gammaInv, deltaInv fr.Element
	gammaInv.Inverse(&tw.Gamma)
	deltaInv.Inverse(&tw.Delta)

	// query membership comes from term presence in the constraint
	// matrices, zero coefficients included
	aWires, bWires := assembly.queryWires()

	aScalars := make([]fr.Element, len(aWires))
	for i, j := range aWires {
		aScalars[i] = u[j]
	}
	bScalars := make([]fr.Element, len(bWires))
	for i, j := range bWires {
		bScalars[i] = v[j]
	}

	// (βu + αv + w)/γ for statement wires, (βu + αv + w)/δ for witness wires
	icScalars := make([]fr.Element, nbInputs)
	lScalars := make([]fr.Element, nbAux)
	parallel.Execute(nbInputs+nbAux, func(start, end int) {
		var t, t2 fr.Element
		for i := start; i < end; i++ {
			t.Mul(&u[i], &tw.Beta)
			t2.Mul(&v[i], &tw.Alpha)
			t.Add(&t, &t2)
			t.Add(&t, &w[i])
			if i < nbInputs {
				icScalars[i].Mul(&t, &gammaInv)
			} else {
				lScalars[i-nbInputs].Mul(&t, &deltaInv)
			}
		}
	})

	// τ^i·Z(τ)/δ, i in [0, n-2]
	zScalars := make([]fr.Element, domain.Cardinality-1)
	zdt := domain.EvaluateVanishing(tw.Tau)
	zdt.Mul(&zdt, &deltaInv)
	for i := range zScalars {
		zScalars[i] = zdt
		zdt.Mul(&zdt, &tw.Tau)
	}

	pk := &ProvingKey{}
	vk := &VerifyingKey{}

	pk.G1.A = scalarMulSliceG1(g1, aScalars)
	pk.G1.B = scalarMulSliceG1(g1, bScalars)
	pk.G2.B = scalarMulSliceG2(g2, bScalars)
	pk.G1.K = scalarMulSliceG1(g1, lScalars)
	pk.G1.Z = scalarMulSliceG1(g1, zScalars)
	vk.G1.K = scalarMulSliceG1(g1, icScalars)

	var bi big.Int
	pk.G1.Alpha.ScalarMultiplication(&g1, tw.Alpha.BigInt(&bi))
	pk.G1.Beta.ScalarMultiplication(&g1, tw.Beta.BigInt(&bi))
	pk.G1.Delta.ScalarMultiplication(&g1, tw.Delta.BigInt(&bi))
	pk.G2.Beta.ScalarMultiplication(&g2, tw.Beta.BigInt(&bi))
	pk.G2.Delta.ScalarMultiplication(&g2, tw.Delta.BigInt(&bi))

	vk.G1.Alpha = pk.G1.Alpha
	vk.G1.Beta = pk.G1.Beta
	vk.G1.Delta = pk.G1.Delta
	vk.G2.Beta = pk.G2.Beta
	vk.G2.Delta = pk.G2.Delta
	vk.G2.Gamma.ScalarMultiplication(&g2, tw.Gamma.BigInt(&bi))

	log.Debug().
		Dur("took", time.Since(start)).
		Int("nbConstraints", assembly.nbConstraints).
		Int("nbInputs", nbInputs).
		Msg("setup done")

	return pk, vk, nil
}

func scalarMulSliceG1(base curve.G1Affine, scalars []fr.Element) []curve.G1Affine {
	res := make([]curve.G1Affine, len(scalars))
	parallel.Execute(len(scalars), func(start, end int) {
		var bi big.Int
		for i := start; i < end; i++ {
			res[i].ScalarMultiplication(&base, scalars[i].BigInt(&bi))
		}
	})
	return res
}

func scalarMulSliceG2(base curve.G2Affine, scalars []fr.Element) []curve.G2Affine {
	res := make([]curve.G2Affine, len(scalars))
	parallel.Execute(len(scalars), func(start, end int) {
		var bi big.Int
		for i := start; i < end; i++ {
			res[i].ScalarMultiplication(&base, scalars[i].BigInt(&bi))
		}
	})
	return res
}
