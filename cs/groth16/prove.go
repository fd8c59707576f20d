// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

package groth16

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/arcanum-zk/arcanum/cs"
	"github.com/arcanum-zk/arcanum/cs/fft"
	"github.com/arcanum-zk/arcanum/internal/parallel"
	"github.com/arcanum-zk/arcanum/logger"
)

// ErrProvingKeyMismatch is returned when the proving key query sizes do not
// match the synthesized circuit.
var ErrProvingKeyMismatch = errors.New("groth16: proving key does not match the circuit")

// Proof is a Groth16 proof: two G1 points and one G2 point.
type Proof struct {
	Ar, Krs curve.G1Affine
	Bs      curve.G2Affine
}

// vanishing polynomial of the domain on the coset ker(X^n + 1)
var minusTwoInv fr.Element

func init() {
	minusTwoInv.SetUint64(2)
	minusTwoInv.Neg(&minusTwoInv)
	minusTwoInv.Inverse(&minusTwoInv)
}

// provingAssignment implements cs.ConstraintSystem with a live witness. It
// records the per-constraint evaluations of the three linear combinations
// and the query densities, which must match the layout chosen at setup.
type provingAssignment struct {
	a, b, c []fr.Element

	input, aux []fr.Element

	aAux, bInput, bAux *cs.DensityTracker
}

func newProvingAssignment() *provingAssignment {
	pa := &provingAssignment{
		aAux:   cs.NewDensityTracker(),
		bInput: cs.NewDensityTracker(),
		bAux:   cs.NewDensityTracker(),
	}
	// the constant one wire
	var one fr.Element
	one.SetOne()
	pa.input = append(pa.input, one)
	pa.bInput.AddElement()
	return pa
}

func (pa *provingAssignment) One() cs.Variable {
	return cs.Variable{Visibility: cs.Public, Index: 0}
}

func (pa *provingAssignment) Alloc(value cs.Assignment) (cs.Variable, error) {
	v, err := value()
	if err != nil {
		return cs.Variable{}, err
	}
	pa.aux = append(pa.aux, v)
	pa.aAux.AddElement()
	pa.bAux.AddElement()
	return cs.Variable{Visibility: cs.Private, Index: len(pa.aux) - 1}, nil
}

func (pa *provingAssignment) AllocInput(value cs.Assignment) (cs.Variable, error) {
	v, err := value()
	if err != nil {
		return cs.Variable{}, err
	}
	pa.input = append(pa.input, v)
	pa.bInput.AddElement()
	return cs.Variable{Visibility: cs.Public, Index: len(pa.input) - 1}, nil
}

func (pa *provingAssignment) Enforce(a, b, c cs.LinearCombination) {
	pa.a = append(pa.a, pa.eval(a, nil, pa.aAux))
	pa.b = append(pa.b, pa.eval(b, pa.bInput, pa.bAux))
	pa.c = append(pa.c, pa.eval(c, nil, nil))
}

func (pa *provingAssignment) eval(lc cs.LinearCombination, inputDensity, auxDensity *cs.DensityTracker) fr.Element {
	var acc, t fr.Element
	for _, term := range lc {
		if term.Variable.Visibility == cs.Public {
			t.Mul(&term.Coeff, &pa.input[term.Variable.Index])
			if inputDensity != nil {
				inputDensity.Inc(term.Variable.Index)
			}
		} else {
			t.Mul(&term.Coeff, &pa.aux[term.Variable.Index])
			if auxDensity != nil {
				auxDensity.Inc(term.Variable.Index)
			}
		}
		acc.Add(&acc, &t)
	}
	return acc
}

// finalize mirrors the setup: every public input gets an input·0 = 0
// constraint.
func (pa *provingAssignment) finalize() {
	var one fr.Element
	one.SetOne()
	n := len(pa.input)
	for i := 0; i < n; i++ {
		lc := cs.LinearCombination{{Variable: cs.Variable{Visibility: cs.Public, Index: i}, Coeff: one}}
		pa.Enforce(lc, nil, nil)
	}
}

func synthesize(circuit cs.Circuit) (*provingAssignment, error) {
	pa := newProvingAssignment()
	if err := circuit.Synthesize(pa); err != nil {
		return nil, fmt.Errorf("groth16: synthesize: %w", err)
	}
	pa.finalize()
	return pa, nil
}

// CreateProof proves circuit under pk with the given blinding scalars. The
// proof is a deterministic function of the witness, the key and (r, s);
// r = s = 0 yields a valid but non-zero-knowledge proof.
func CreateProof(circuit cs.Circuit, pk *ProvingKey, r, s fr.Element) (*Proof, error) {
	pa, err := synthesize(circuit)
	if err != nil {
		return nil, err
	}
	domain, err := fft.NewDomain(len(pa.a))
	if err != nil {
		return nil, err
	}
	return createProof(pa, pk, domain, r, s)
}

// CreateRandomProof proves circuit with blinding scalars drawn from
// crypto/rand.
func CreateRandomProof(circuit cs.Circuit, pk *ProvingKey) (*Proof, error) {
	var r, s fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := s.SetRandom(); err != nil {
		return nil, err
	}
	return CreateProof(circuit, pk, r, s)
}

// CreateProofBatch proves circuits sharing the same shape under one key.
// Proof k is element-wise identical to CreateProof(circuits[k], pk, r[k],
// s[k]); the batch only shares the synthesis and domain work and runs the
// proofs concurrently.
func CreateProofBatch(circuits []cs.Circuit, pk *ProvingKey, r, s []fr.Element) ([]*Proof, error) {
	if len(circuits) == 0 {
		return nil, errors.New("groth16: empty batch")
	}
	if len(r) != len(circuits) || len(s) != len(circuits) {
		return nil, errors.New("groth16: blinding scalar count does not match batch size")
	}

	assignments := make([]*provingAssignment, len(circuits))
	var g errgroup.Group
	for i := range circuits {
		g.Go(func() error {
			pa, err := synthesize(circuits[i])
			if err == nil {
				assignments[i] = pa
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// same shape, same domain
	domain, err := fft.NewDomain(len(assignments[0].a))
	if err != nil {
		return nil, err
	}

	proofs := make([]*Proof, len(circuits))
	var pg errgroup.Group
	for i := range assignments {
		pg.Go(func() error {
			if len(assignments[i].a) != len(assignments[0].a) {
				return errors.New("groth16: circuits in a batch must share the same shape")
			}
			p, err := createProof(assignments[i], pk, domain, r[i], s[i])
			if err == nil {
				proofs[i] = p
			}
			return err
		})
	}
	if err := pg.Wait(); err != nil {
		return nil, err
	}
	return proofs, nil
}

// CreateRandomProofBatch is CreateProofBatch with blinding scalars drawn
// from crypto/rand.
func CreateRandomProofBatch(circuits []cs.Circuit, pk *ProvingKey) ([]*Proof, error) {
	r := make([]fr.Element, len(circuits))
	s := make([]fr.Element, len(circuits))
	for i := range circuits {
		if _, err := r[i].SetRandom(); err != nil {
			return nil, err
		}
		if _, err := s[i].SetRandom(); err != nil {
			return nil, err
		}
	}
	return CreateProofBatch(circuits, pk, r, s)
}

func createProof(pa *provingAssignment, pk *ProvingKey, domain *fft.Domain, r, s fr.Element) (*Proof, error) {
	log := logger.Logger().With().
		Str("curve", "bn254").
		Str("backend", "groth16").
		Int("nbConstraints", len(pa.a)).
		Logger()
	start := time.Now()

	h := computeH(pa.a, pa.b, pa.c, domain)

	// pack the MSM scalars the way the queries were laid out at setup:
	// inputs first, then the dense aux wires in index order
	wireValuesA := make([]fr.Element, 0, len(pk.G1.A))
	wireValuesA = append(wireValuesA, pa.input...)
	for i := range pa.aux {
		if pa.aAux.Test(i) {
			wireValuesA = append(wireValuesA, pa.aux[i])
		}
	}

	wireValuesB := make([]fr.Element, 0, len(pk.G1.B))
	for i := range pa.input {
		if pa.bInput.Test(i) {
			wireValuesB = append(wireValuesB, pa.input[i])
		}
	}
	for i := range pa.aux {
		if pa.bAux.Test(i) {
			wireValuesB = append(wireValuesB, pa.aux[i])
		}
	}

	if len(wireValuesA) != len(pk.G1.A) ||
		len(wireValuesB) != len(pk.G1.B) ||
		len(pa.aux) != len(pk.G1.K) ||
		len(h) != len(pk.G1.Z) {
		return nil, ErrProvingKeyMismatch
	}

	var minusRS fr.Element
	minusRS.Mul(&r, &s)
	minusRS.Neg(&minusRS)

	var rBig, sBig, rsBig big.Int
	r.BigInt(&rBig)
	s.BigInt(&sBig)
	minusRS.BigInt(&rsBig)

	var deltaJac curve.G1Jac
	deltaJac.FromAffine(&pk.G1.Delta)

	var proof Proof
	var ar, bs1, krs, krs2 curve.G1Jac

	// ar and bs1 feed the Krs assembly and stay on this goroutine; the
	// G2 MSM and the two Krs MSMs run concurrently
	var g errgroup.Group

	g.Go(func() error {
		var bs2, t curve.G2Jac
		if err := msmG2(&bs2, pk.G2.B, wireValuesB); err != nil {
			return err
		}
		t.FromAffine(&pk.G2.Delta)
		t.ScalarMultiplication(&t, &sBig)
		bs2.AddAssign(&t)
		bs2.AddMixed(&pk.G2.Beta)
		proof.Bs.FromJacobian(&bs2)
		return nil
	})

	g.Go(func() error {
		return msmG1(&krs, pk.G1.K, pa.aux)
	})

	g.Go(func() error {
		return msmG1(&krs2, pk.G1.Z, h)
	})

	computeAr := func() error {
		if err := msmG1(&ar, pk.G1.A, wireValuesA); err != nil {
			return err
		}
		var t curve.G1Jac
		t.ScalarMultiplication(&deltaJac, &rBig)
		ar.AddAssign(&t)
		ar.AddMixed(&pk.G1.Alpha)
		proof.Ar.FromJacobian(&ar)
		return nil
	}
	computeBs1 := func() error {
		if err := msmG1(&bs1, pk.G1.B, wireValuesB); err != nil {
			return err
		}
		var t curve.G1Jac
		t.ScalarMultiplication(&deltaJac, &sBig)
		bs1.AddAssign(&t)
		bs1.AddMixed(&pk.G1.Beta)
		return nil
	}

	if err := computeAr(); err != nil {
		return nil, err
	}
	if err := computeBs1(); err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Krs = L·aux + Z·h - rs·δ + s·Ar + r·Bs1
	krs.AddAssign(&krs2)
	var t curve.G1Jac
	t.ScalarMultiplication(&deltaJac, &rsBig)
	krs.AddAssign(&t)
	t.ScalarMultiplication(&ar, &sBig)
	krs.AddAssign(&t)
	t.ScalarMultiplication(&bs1, &rBig)
	krs.AddAssign(&t)
	proof.Krs.FromJacobian(&krs)

	log.Debug().Dur("took", time.Since(start)).Msg("prover done")

	return &proof, nil
}

// computeH returns the quotient (a·b - c)/(X^n - 1) in coefficient form,
// truncated to its n-1 meaningful coefficients. The division happens on the
// coset ker(X^n + 1) where the vanishing polynomial is the constant -2.
func computeH(a, b, c []fr.Element, domain *fft.Domain) []fr.Element {
	padded := func(v []fr.Element) []fr.Element {
		w := make([]fr.Element, domain.Cardinality)
		copy(w, v)
		return w
	}
	a = padded(a)
	b = padded(b)
	c = padded(c)

	// point-value on the domain -> point-value on the coset
	toCoset := func(v []fr.Element) {
		fft.Inv(v, domain.GeneratorInv)
		fft.BitReverse(v)
		fft.Coset(v, domain.Generator, domain.GeneratorSqRt)
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { toCoset(a); wg.Done() }()
	go func() { toCoset(b); wg.Done() }()
	toCoset(c)
	wg.Wait()

	parallel.Execute(domain.Cardinality, func(start, end int) {
		for i := start; i < end; i++ {
			a[i].Mul(&a[i], &b[i]).
				Sub(&a[i], &c[i]).
				Mul(&a[i], &minusTwoInv)
		}
	})

	fft.InvCoset(a, domain.Generator, domain.GeneratorSqRt)

	// deg(h) = n-2, the leading coefficient is zero
	return a[:domain.Cardinality-1]
}

func msmG1(res *curve.G1Jac, points []curve.G1Affine, scalars []fr.Element) error {
	if len(points) != len(scalars) {
		return ErrProvingKeyMismatch
	}
	if len(points) == 0 {
		*res = curve.G1Jac{}
		return nil
	}
	_, err := res.MultiExp(points, scalars, ecc.MultiExpConfig{})
	return err
}

func msmG2(res *curve.G2Jac, points []curve.G2Affine, scalars []fr.Element) error {
	if len(points) != len(scalars) {
		return ErrProvingKeyMismatch
	}
	if len(points) == 0 {
		*res = curve.G2Jac{}
		return nil
	}
	_, err := res.MultiExp(points, scalars, ecc.MultiExpConfig{})
	return err
}
