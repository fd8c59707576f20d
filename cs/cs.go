// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

// Package cs exposes the capability consumed by circuits to talk to the
// groth16 backend: wire allocation, linear combinations and constraint
// emission (rank-1 constraints a * b == c).
package cs

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrAssignmentMissing is returned by an Assignment when no witness value is
// available, typically during the shape-only synthesis of the trusted setup.
var ErrAssignmentMissing = errors.New("variable assignment is missing")

// Visibility classifies a wire as part of the public statement or of the
// private witness.
type Visibility uint8

const (
	Public Visibility = iota
	Private
)

// Variable is an opaque handle on a wire of the constraint system. Indices
// are dense and zero based within each visibility class; the public wire of
// index 0 is the constant one.
type Variable struct {
	Visibility Visibility
	Index      int
}

// Term is a coefficient applied to a wire.
type Term struct {
	Variable Variable
	Coeff    fr.Element
}

// LinearCombination is an ordered list of terms. Terms are never coalesced
// or reordered, and zero coefficients are kept: a term that is present marks
// its wire in the query density maps regardless of its coefficient value.
type LinearCombination []Term

// Add appends v with coefficient one.
func (lc LinearCombination) Add(v Variable) LinearCombination {
	var one fr.Element
	one.SetOne()
	return append(lc, Term{Variable: v, Coeff: one})
}

// Sub appends v with coefficient minus one.
func (lc LinearCombination) Sub(v Variable) LinearCombination {
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	return append(lc, Term{Variable: v, Coeff: minusOne})
}

// AddTerm appends v with an explicit coefficient.
func (lc LinearCombination) AddTerm(v Variable, coeff fr.Element) LinearCombination {
	return append(lc, Term{Variable: v, Coeff: coeff})
}

// Assignment computes the value of a wire at proving time.
type Assignment func() (fr.Element, error)

// ConstraintSystem is handed to Circuit.Synthesize. The trusted setup and
// the prover provide different implementations: the former enumerates the
// shape and never invokes assignments, the latter evaluates the full
// witness.
type ConstraintSystem interface {
	// One returns the public constant wire, always public index 0.
	One() Variable

	// Alloc allocates a private wire.
	Alloc(value Assignment) (Variable, error)

	// AllocInput allocates a public input wire.
	AllocInput(value Assignment) (Variable, error)

	// Enforce adds the rank-1 constraint a * b == c.
	Enforce(a, b, c LinearCombination)
}

// Circuit is implemented by user-defined statements. Synthesize must perform
// the same allocations and emit the same constraints, in the same order, on
// every call.
type Circuit interface {
	Synthesize(cs ConstraintSystem) error
}
