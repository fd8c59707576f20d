// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

package cs

import "github.com/bits-and-blooms/bitset"

// DensityTracker records which wires of a query appear in at least one
// linear combination. Presence is what counts: a term with a zero
// coefficient marks its wire all the same, so the setup and the prover
// always agree on how the query vectors are packed.
type DensityTracker struct {
	bv    *bitset.BitSet
	n     int
	total int
}

// NewDensityTracker returns an empty tracker.
func NewDensityTracker() *DensityTracker {
	return &DensityTracker{bv: bitset.New(64)}
}

// AddElement declares one more trackable wire, initially absent.
func (dt *DensityTracker) AddElement() {
	dt.n++
}

// Inc marks wire i as present. Marking twice is a no-op.
func (dt *DensityTracker) Inc(i int) {
	if !dt.bv.Test(uint(i)) {
		dt.bv.Set(uint(i))
		dt.total++
	}
}

// Test reports whether wire i is present.
func (dt *DensityTracker) Test(i int) bool {
	return dt.bv.Test(uint(i))
}

// TotalDensity returns the number of present wires.
func (dt *DensityTracker) TotalDensity() int {
	return dt.total
}

// Len returns the number of declared wires.
func (dt *DensityTracker) Len() int {
	return dt.n
}
