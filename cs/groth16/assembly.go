// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

package groth16

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/arcanum-zk/arcanum/cs"
	"github.com/arcanum-zk/arcanum/cs/fft"
	"github.com/arcanum-zk/arcanum/internal/parallel"
)

// indexedTerm is one entry of a transposed constraint matrix: coefficient
// plus the constraint it belongs to.
type indexedTerm struct {
	coeff      fr.Element
	constraint int
}

// keypairAssembly implements cs.ConstraintSystem for the trusted setup. It
// stores the three constraint matrices transposed, one row of indexed terms
// per wire, which is the shape the QAP evaluation and the query layout both
// consume.
type keypairAssembly struct {
	nbConstraints int

	atInputs, btInputs, ctInputs [][]indexedTerm
	atAux, btAux, ctAux          [][]indexedTerm
}

func newKeypairAssembly() *keypairAssembly {
	a := &keypairAssembly{}
	// the constant one wire
	a.allocInputRow()
	return a
}

func (a *keypairAssembly) allocInputRow() {
	a.atInputs = append(a.atInputs, nil)
	a.btInputs = append(a.btInputs, nil)
	a.ctInputs = append(a.ctInputs, nil)
}

func (a *keypairAssembly) One() cs.Variable {
	return cs.Variable{Visibility: cs.Public, Index: 0}
}

func (a *keypairAssembly) Alloc(_ cs.Assignment) (cs.Variable, error) {
	a.atAux = append(a.atAux, nil)
	a.btAux = append(a.btAux, nil)
	a.ctAux = append(a.ctAux, nil)
	return cs.Variable{Visibility: cs.Private, Index: len(a.atAux) - 1}, nil
}

func (a *keypairAssembly) AllocInput(_ cs.Assignment) (cs.Variable, error) {
	a.allocInputRow()
	return cs.Variable{Visibility: cs.Public, Index: len(a.atInputs) - 1}, nil
}

func (a *keypairAssembly) Enforce(l, r, o cs.LinearCombination) {
	i := a.nbConstraints
	a.scatter(l, a.atInputs, a.atAux, i)
	a.scatter(r, a.btInputs, a.btAux, i)
	a.scatter(o, a.ctInputs, a.ctAux, i)
	a.nbConstraints++
}

func (a *keypairAssembly) scatter(lc cs.LinearCombination, inputs, aux [][]indexedTerm, constraint int) {
	for _, t := range lc {
		if t.Variable.Visibility == cs.Public {
			inputs[t.Variable.Index] = append(inputs[t.Variable.Index], indexedTerm{t.Coeff, constraint})
		} else {
			aux[t.Variable.Index] = append(aux[t.Variable.Index], indexedTerm{t.Coeff, constraint})
		}
	}
}

// finalize pins every public input with an input·0 = 0 constraint. The
// statement wires become dense in the A query and the domain accounts for
// them, so they cannot be shifted into the witness.
func (a *keypairAssembly) finalize() {
	var one fr.Element
	one.SetOne()
	n := len(a.atInputs)
	for i := 0; i < n; i++ {
		lc := cs.LinearCombination{{Variable: cs.Variable{Visibility: cs.Public, Index: i}, Coeff: one}}
		a.Enforce(lc, nil, nil)
	}
}

// queryWires returns the global ids (inputs first, then aux) of the wires
// owning an entry of the A and B queries. Membership is term presence, so a
// zero coefficient still claims a slot.
func (a *keypairAssembly) queryWires() (aWires, bWires []int) {
	nbInputs := len(a.atInputs)
	for i := range a.atInputs {
		if len(a.atInputs[i]) > 0 {
			aWires = append(aWires, i)
		}
	}
	for i := range a.atAux {
		if len(a.atAux[i]) > 0 {
			aWires = append(aWires, nbInputs+i)
		}
	}
	for i := range a.btInputs {
		if len(a.btInputs[i]) > 0 {
			bWires = append(bWires, i)
		}
	}
	for i := range a.btAux {
		if len(a.btAux[i]) > 0 {
			bWires = append(bWires, nbInputs+i)
		}
	}
	return aWires, bWires
}

// evalQAP evaluates every wire's QAP polynomials at tau, global wire order
// (inputs first, then aux). The Lagrange values over the domain follow the
// recurrence
//
//	L_0 = (τ^n - 1) / (n·(τ - 1))
//	L_{i+1} = L_i · ω · (τ - ω^i) / (τ - ω^{i+1})
func (a *keypairAssembly) evalQAP(domain *fft.Domain, tau fr.Element) (u, v, w []fr.Element) {
	nbInputs := len(a.atInputs)
	nbWires := nbInputs + len(a.atAux)
	u = make([]fr.Element, nbWires)
	v = make([]fr.Element, nbWires)
	w = make([]fr.Element, nbWires)

	lagrange := make([]fr.Element, a.nbConstraints)
	var li, tmp, one, wi fr.Element
	one.SetOne()
	wi.SetOne()
	li = domain.EvaluateVanishing(tau)
	li.Mul(&li, &domain.CardinalityInv)
	tmp.Sub(&tau, &one)
	tmp.Inverse(&tmp)
	li.Mul(&li, &tmp)
	for i := 0; i < a.nbConstraints; i++ {
		lagrange[i] = li
		tmp.Sub(&tau, &wi)
		li.Mul(&li, &tmp)
		li.Mul(&li, &domain.Generator)
		wi.Mul(&wi, &domain.Generator)
		tmp.Sub(&tau, &wi)
		tmp.Inverse(&tmp)
		li.Mul(&li, &tmp)
	}

	accumulate := func(rows [][]indexedTerm, dst []fr.Element, offset int) {
		parallel.Execute(len(rows), func(start, end int) {
			var p fr.Element
			for j := start; j < end; j++ {
				for _, t := range rows[j] {
					p.Mul(&t.coeff, &lagrange[t.constraint])
					dst[offset+j].Add(&dst[offset+j], &p)
				}
			}
		})
	}

	accumulate(a.atInputs, u, 0)
	accumulate(a.atAux, u, nbInputs)
	accumulate(a.btInputs, v, 0)
	accumulate(a.btAux, v, nbInputs)
	accumulate(a.ctInputs, w, 0)
	accumulate(a.ctAux, w, nbInputs)

	return u, v, w
}
