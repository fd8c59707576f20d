// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

// Package fft provides the power-of-two evaluation domain and the radix-2
// transforms used by the groth16 backend to compute the QAP quotient.
package fft

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrDomainTooLarge is returned by NewDomain when the requested size exceeds
// the 2-adic capacity of the scalar field.
var ErrDomainTooLarge = errors.New("fft: domain cardinality exceeds the field 2-adicity")

// Domain is a multiplicative subgroup of fr whose cardinality is a power of
// two. GeneratorSqRt generates the subgroup of twice the cardinality:
// shifting a polynomial by it moves its evaluations onto the coset
// ker(X^n + 1), where the vanishing polynomial of the domain is the
// constant -2.
type Domain struct {
	Cardinality      int
	CardinalityInv   fr.Element
	Generator        fr.Element
	GeneratorInv     fr.Element
	GeneratorSqRt    fr.Element
	GeneratorSqRtInv fr.Element
}

// NewDomain returns the smallest domain of cardinality >= minSize. The coset
// shift needs a root of unity of order twice the cardinality, so the largest
// supported cardinality is half the field 2-adic capacity.
func NewDomain(minSize int) (*Domain, error) {
	if minSize < 1 {
		minSize = 1
	}
	logCardinality := bits.Len(uint(minSize - 1))
	cardinality := 1 << logCardinality

	gSqRt, err := fr.Generator(uint64(2 * cardinality))
	if err != nil {
		return nil, ErrDomainTooLarge
	}

	d := &Domain{
		Cardinality:   cardinality,
		GeneratorSqRt: gSqRt,
	}
	d.Generator.Square(&d.GeneratorSqRt)
	d.GeneratorInv.Inverse(&d.Generator)
	d.GeneratorSqRtInv.Inverse(&d.GeneratorSqRt)
	d.CardinalityInv.SetUint64(uint64(cardinality))
	d.CardinalityInv.Inverse(&d.CardinalityInv)

	return d, nil
}

// EvaluateVanishing returns x^n - 1, n the domain cardinality.
func (d *Domain) EvaluateVanishing(x fr.Element) fr.Element {
	var res, one fr.Element
	one.SetOne()
	res.Exp(x, big.NewInt(int64(d.Cardinality)))
	res.Sub(&res, &one)
	return res
}
