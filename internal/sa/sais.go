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

// Package sa builds the sampled suffix array and BWT permutation via two
// interchangeable constructors: an induced-sorting algorithm (SAIS) and a
// prefix-doubling algorithm (Doubling), generalized from the bucket/induce
// technique in flanglet-kanzi-go's transform.SA_IS to the small class
// alphabet produced by package alphabet.
package sa

import "errors"

// ErrEmptyText is returned when the input to a suffix-array constructor is empty.
var ErrEmptyText = errors.New("sa: encoded text must not be empty")

// SAIS constructs a BWTResult using induced sorting (Nong, Zhang & Chen 2009).
// encodedText holds class-plus-one digits in [1, numClasses]; SAIS appends
// an internal sentinel digit 0 (unique, smaller than every real digit) to
// seed the algorithm, then discards the sentinel's own suffix from the
// result the way flanglet-kanzi-go's divsufsort driver inserts its guard
// "internally and entirely transparently" (transform/BWT.go).
func SAIS(encodedText []byte, numClasses int) (*BWTResult, error) {
	n := len(encodedText)
	if n == 0 {
		return nil, ErrEmptyText
	}

	augmented := make([]int, n+1)
	for i, b := range encodedText {
		augmented[i] = int(b)
	}
	augmented[n] = 0 // sentinel: unique, smaller than every real digit (1..numClasses)

	saFull := saisCore(augmented, numClasses+1)

	sa := make([]int, n)
	copy(sa, saFull[1:]) // saFull[0] == n always: the sentinel's own suffix

	return deriveBWT(encodedText, sa, numClasses)
}

// saisCore computes the suffix array of s (values in [0,k)) using induced
// sorting. s must end with a unique minimal symbol, or consist of a single
// repeated value throughout (the degenerate base case handled below).
func saisCore(s []int, k int) []int {
	n := len(s)
	sa := make([]int, n)

	if n == 1 {
		return sa // sa[0] == 0 already
	}

	if allEqual(s) {
		for i := 0; i < n; i++ {
			sa[n-1-i] = i
		}
		return sa
	}

	t := classifyTypes(s)
	lms := lmsPositions(t)

	bucketSizes := make([]int, k)
	for _, c := range s {
		bucketSizes[c]++
	}

	placeAtBucketTails(s, sa, lms, bucketSizes, k)
	induceL(s, sa, t, bucketSizes, k)
	induceS(s, sa, t, bucketSizes, k)

	names, numNames, sortedLMS := nameLMSSubstrings(s, sa, t, lms)

	var order []int
	if numNames < len(lms) {
		reducedSA := saisCore(names, numNames)
		order = make([]int, len(lms))
		for i, p := range reducedSA {
			order[i] = lms[p]
		}
	} else {
		order = sortedLMS
	}

	for i := range sa {
		sa[i] = -1
	}
	placeAtBucketTails(s, sa, order, bucketSizes, k)
	induceL(s, sa, t, bucketSizes, k)
	induceS(s, sa, t, bucketSizes, k)

	return sa
}

func allEqual(s []int) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// classifyTypes marks each position S-type (true) or L-type (false). The
// final position is defined S-type by convention; it represents the unique
// minimal terminator when one is present.
func classifyTypes(s []int) []bool {
	n := len(s)
	t := make([]bool, n)
	t[n-1] = true

	for i := n - 2; i >= 0; i-- {
		switch {
		case s[i] < s[i+1]:
			t[i] = true
		case s[i] > s[i+1]:
			t[i] = false
		default:
			t[i] = t[i+1]
		}
	}

	return t
}

func isLMS(t []bool, i int) bool {
	return i > 0 && t[i] && !t[i-1]
}

func lmsPositions(t []bool) []int {
	var lms []int
	for i := 1; i < len(t); i++ {
		if t[i] && !t[i-1] {
			lms = append(lms, i)
		}
	}
	return lms
}

// bucketHeads/bucketTails mirror getBuckets(..., end=false/true) in
// flanglet-kanzi-go's SA_IS.go.
func bucketHeads(bucketSizes []int) []int {
	heads := make([]int, len(bucketSizes))
	sum := 0
	for i, sz := range bucketSizes {
		heads[i] = sum
		sum += sz
	}
	return heads
}

func bucketTails(bucketSizes []int) []int {
	tails := make([]int, len(bucketSizes))
	sum := 0
	for i, sz := range bucketSizes {
		sum += sz
		tails[i] = sum - 1
	}
	return tails
}

func placeAtBucketTails(s []int, sa []int, positions []int, bucketSizes []int, k int) {
	for i := range sa {
		sa[i] = -1
	}

	tails := bucketTails(bucketSizes)
	for i := len(positions) - 1; i >= 0; i-- {
		p := positions[i]
		c := s[p]
		sa[tails[c]] = p
		tails[c]--
	}
}

func induceL(s []int, sa []int, t []bool, bucketSizes []int, k int) {
	heads := bucketHeads(bucketSizes)

	for i := 0; i < len(sa); i++ {
		if sa[i] <= 0 {
			continue
		}

		j := sa[i] - 1
		if t[j] {
			continue
		}

		c := s[j]
		sa[heads[c]] = j
		heads[c]++
	}
}

func induceS(s []int, sa []int, t []bool, bucketSizes []int, k int) {
	tails := bucketTails(bucketSizes)

	for i := len(sa) - 1; i >= 0; i-- {
		if sa[i] <= 0 {
			continue
		}

		j := sa[i] - 1
		if !t[j] {
			continue
		}

		c := s[j]
		sa[tails[c]] = j
		tails[c]--
	}
}

func nextLMSOrEnd(t []bool, p int) int {
	n := len(t)
	for q := p + 1; q < n; q++ {
		if q == n-1 || isLMS(t, q) {
			return q
		}
	}
	return n - 1
}

func lmsSubstrLen(t []bool, p int) int {
	return nextLMSOrEnd(t, p) - p + 1
}

// nameLMSSubstrings assigns each LMS substring a name equal to its rank
// among distinct LMS substrings, returning the names in original
// left-to-right LMS order (for recursion) alongside the count of distinct
// names and the positions in sorted order (reused directly when every name
// is already unique).
func nameLMSSubstrings(s []int, sa []int, t []bool, lms []int) (names []int, numNames int, sortedLMS []int) {
	n := len(s)
	rank := make([]int, n)
	for i := range rank {
		rank[i] = -1
	}

	sortedLMS = make([]int, 0, len(lms))
	for _, p := range sa {
		if p >= 0 && isLMS(t, p) {
			sortedLMS = append(sortedLMS, p)
		}
	}

	name := 0
	rank[sortedLMS[0]] = 0
	prev := sortedLMS[0]
	prevLen := lmsSubstrLen(t, prev)

	for i := 1; i < len(sortedLMS); i++ {
		cur := sortedLMS[i]
		curLen := lmsSubstrLen(t, cur)

		diff := curLen != prevLen
		if !diff {
			for d := 0; d < curLen; d++ {
				if s[prev+d] != s[cur+d] {
					diff = true
					break
				}
			}
		}

		if diff {
			name++
		}
		rank[cur] = name
		prev = cur
		prevLen = curLen
	}

	numNames = name + 1

	names = make([]int, len(lms))
	for i, p := range lms {
		names[i] = rank[p]
	}

	return names, numNames, sortedLMS
}
