/*
Copyright 2024-2026 The ltfmindex-go Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package count builds the count-and-LT array (CA): per-class cumulative
// counts and a prefix-summed k-mer lookup table that collapses the first k
// LF-mapping steps of a pattern into one array read.
package count

import (
	"errors"

	"github.com/ltfmindex/ltfmindex-go/internal/alphabet"
)

// ErrInvalidKmerSize is returned when k falls outside [2, 32].
var ErrInvalidKmerSize = errors.New("k must be in [2, 32]")

const maxK = 32 // bit-width(uint64)/2

// Array is the count-and-LT array (CA) described in SPEC_FULL.md §4.2.
type Array struct {
	K              int
	C              int
	CumCharCounts  []uint64 // length C+1
	KmerPrefixSums []uint64 // length (C+1)^K
	Multiplier     []uint64 // length K, Multiplier[i] = (C+1)^(K-1-i)
}

// Build walks textMut right-to-left, rewriting each byte in place to its
// class-plus-one (ET) encoding and accumulating cum_char_counts and
// kmer_prefix_sums, then prefix-sums both arrays. textMut is mutated; the
// caller must not read it as the original text afterwards (SPEC_FULL.md
// §3, "Encoded text").
func Build(textMut []byte, cit *alphabet.CIT, k int) (*Array, error) {
	if k < 2 || k > maxK {
		return nil, ErrInvalidKmerSize
	}

	c := cit.NumClasses()
	a := &Array{
		K:              k,
		C:              c,
		CumCharCounts:  make([]uint64, c+1),
		KmerPrefixSums: make([]uint64, ipow(uint64(c+1), k)),
		Multiplier:     make([]uint64, k),
	}

	base := uint64(c + 1)
	mult := uint64(1)

	for i := k - 1; i >= 0; i-- {
		a.Multiplier[i] = mult
		mult *= base
	}

	window := make([]uint64, k) // ring buffer of the last k digits seen
	head := 0
	idx := uint64(0)
	mult0 := a.Multiplier[0]

	for i := len(textMut) - 1; i >= 0; i-- {
		d := uint64(cit.IdxOf(textMut[i])) + 1
		textMut[i] = byte(d)

		a.CumCharCounts[d]++

		evicted := window[head]
		idx = d*mult0 + (idx-evicted)/base
		window[head] = d
		head++
		if head == k {
			head = 0
		}

		a.KmerPrefixSums[idx]++
	}

	prefixSum(a.CumCharCounts)
	prefixSum(a.KmerPrefixSums)

	return a, nil
}

// prefixSum replaces xs with its inclusive running sum. Since xs[0] is
// always 0 here (digit 0 is never produced — every real digit is >=1 after
// the class-plus-one encoding), this also satisfies cum_char_counts[0] = 0.
func prefixSum(xs []uint64) {
	sum := uint64(0)
	for i, v := range xs {
		sum += v
		xs[i] = sum
	}
}

func ipow(base uint64, exp int) uint64 {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// Precount returns the LF-mapping base for class: cum_char_counts[class]
// (the number of BWT rows whose suffix begins with a class strictly less
// than the given one), plus one when the text's last byte has this class.
// That extra occurrence belongs to the empty suffix after the last byte,
// which sorts before every stored row but has no BWT row of its own (see
// internal/sa/bwt.go). Only the last text position produces the k-gram
// (class+1, 0, ..., 0), so its table entry identifies that case.
func (a *Array) Precount(class int) uint64 {
	pc := a.CumCharCounts[class]
	idx := uint64(class+1) * a.Multiplier[0]
	if a.KmerPrefixSums[idx]-a.KmerPrefixSums[idx-1] == 1 {
		pc++
	}
	return pc
}

// CompositeIndex computes idx(w) = Σ (cit[w_i]+1)·multiplier[i] for the
// given byte sequence, whose length must be <= K. Shorter sequences are
// treated as the high-order prefix of a K-gram (SPEC_FULL.md §4.2).
func (a *Array) CompositeIndex(cit *alphabet.CIT, w []byte) uint64 {
	idx := uint64(0)

	for i, b := range w {
		d := uint64(cit.IdxOf(b)) + 1
		idx += d * a.Multiplier[i]
	}

	return idx
}

// InitialInterval computes the SA interval implied by the last min(len(pattern), K)
// bytes of pattern, and the count of remaining (unconsumed) bytes that must
// still be walked with BWM backward steps. Every digit is >=1 after the
// class-plus-one encoding, so CompositeIndex never returns 0 and start-1 is
// always a valid index (SPEC_FULL.md §4.2).
func (a *Array) InitialInterval(cit *alphabet.CIT, pattern []byte) (lo, hi uint64, idxRemaining int) {
	if len(pattern) < a.K {
		start := a.CompositeIndex(cit, pattern)
		end := start + a.Multiplier[len(pattern)-1] - 1
		return a.KmerPrefixSums[start-1], a.KmerPrefixSums[end], 0
	}

	suffix := pattern[len(pattern)-a.K:]
	start := a.CompositeIndex(cit, suffix)
	return a.KmerPrefixSums[start-1], a.KmerPrefixSums[start], len(pattern) - a.K
}
