// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

package fft

import (
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// below this size recursion stays on the caller's goroutine
const fftParallelThreshold = 128

// FFT computes the discrete Fourier transform of a in place, decimation in
// frequency: natural order in, bit-reversed order out. len(a) must be a
// power of two and w a primitive len(a)-th root of unity.
func FFT(a []fr.Element, w fr.Element) {
	n := len(a)
	if n == 1 {
		return
	}
	m := n >> 1

	// i == 0 butterfly has no twiddle
	var t fr.Element
	t = a[0]
	a[0].Add(&a[0], &a[m])
	a[m].Sub(&t, &a[m])

	var wPow fr.Element
	wPow = w
	for i := 1; i < m; i++ {
		t = a[i]
		a[i].Add(&a[i], &a[i+m])
		a[i+m].Sub(&t, &a[i+m])
		a[i+m].Mul(&a[i+m], &wPow)
		wPow.Mul(&wPow, &w)
	}

	w.Square(&w)
	if m < fftParallelThreshold {
		FFT(a[:m], w)
		FFT(a[m:], w)
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		FFT(a[:m], w)
		wg.Done()
	}()
	FFT(a[m:], w)
	wg.Wait()
}

// Inv computes the inverse transform of a in place, scaling by 1/n. Like
// FFT, the output is in bit-reversed order. wInv must be the inverse of the
// forward root of unity.
func Inv(a []fr.Element, wInv fr.Element) {
	FFT(a, wInv)

	var nInv fr.Element
	nInv.SetUint64(uint64(len(a)))
	nInv.Inverse(&nInv)
	for i := range a {
		a[i].Mul(&a[i], &nInv)
	}
}

// Coset evaluates the polynomial a (coefficient form, natural order) on the
// coset wSqRt·<w> and returns the evaluations in natural order.
func Coset(a []fr.Element, w, wSqRt fr.Element) {
	shift := wSqRt
	for i := 1; i < len(a); i++ {
		a[i].Mul(&a[i], &shift)
		shift.Mul(&shift, &wSqRt)
	}
	FFT(a, w)
	BitReverse(a)
}

// InvCoset interpolates coset evaluations (natural order) back to
// coefficient form in natural order.
func InvCoset(a []fr.Element, w, wSqRt fr.Element) {
	var wInv, wSqRtInv fr.Element
	wInv.Inverse(&w)
	wSqRtInv.Inverse(&wSqRt)

	Inv(a, wInv)
	BitReverse(a)

	shift := wSqRtInv
	for i := 1; i < len(a); i++ {
		a[i].Mul(&a[i], &shift)
		shift.Mul(&shift, &wSqRtInv)
	}
}

// BitReverse permutes a in place by bit-reversed index. len(a) must be a
// power of two.
func BitReverse(a []fr.Element) {
	n := uint(len(a))
	nn := uint(bits.UintSize - bits.TrailingZeros(n))

	for i := uint(0); i < n; i++ {
		irev := bits.Reverse(i) >> nn
		if irev > i {
			a[i], a[irev] = a[irev], a[i]
		}
	}
}
