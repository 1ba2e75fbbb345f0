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

package sa

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BWTResult is the shared output of both suffix-array drivers: the full
// suffix array, the BWT string as class indices (ready for BWM bit-slicing,
// SPEC_FULL.md §4.4), and the primary index.
//
// The row where SA[j] == 0 (the whole text's own suffix) has no real
// predecessor character to record: the classical circular/rotation rule
// would assign it T[n-1]'s class, but that silently turns backward search
// into a cyclic wrap — extending a pattern "through" the primary row would
// then match a suffix-prefix pair that never occurs contiguously in T.
// Instead BWTClasses[Primary] is set to SentinelClass (numClasses, a value
// no real query character's class can ever equal, since alphabet.CIT only
// ever produces classes in [0, numClasses)). NextRank/PreRankAndClass need
// no special-casing for this: the sentinel's bit pattern simply never
// matches any real class's mask, so rank(c, ·) across the primary row is
// always 0 for every real c, and backward-extension through it correctly
// collapses to an empty interval. locate still must stop its LF walk at
// the primary row explicitly (check row == Primary before stepping),
// since the sentinel row carries no onward LF target.
type BWTResult struct {
	SA         []uint64
	BWTClasses []byte
	Primary    uint64
}

// deriveBWT builds row SA's corresponding BWT classes and locates the
// primary row, given a full suffix array of encodedText (a permutation of
// [0,n)) and the number of real classes numClasses. The per-row BWT lookup
// is embarrassingly parallel, so it fans out across GOMAXPROCS goroutines
// the way flanglet-kanzi-go's BWT.go splits inverseBiPSIv2 into
// inverseBiPSIv2Task chunks for the inverse transform.
func deriveBWT(encodedText []byte, sa []int, numClasses int) (*BWTResult, error) {
	n := len(sa)

	result := &BWTResult{
		SA:         make([]uint64, n),
		BWTClasses: make([]byte, n),
	}

	sentinel := byte(numClasses)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	var mu sync.Mutex
	primary := -1

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}

		start, end := start, end
		g.Go(func() error {
			for j := start; j < end; j++ {
				pos := sa[j]
				result.SA[j] = uint64(pos)

				if pos == 0 {
					result.BWTClasses[j] = sentinel
					mu.Lock()
					primary = j
					mu.Unlock()
					continue
				}

				result.BWTClasses[j] = encodedText[pos-1] - 1 // digit -> class
			}
			return nil
		})
	}

	_ = g.Wait() // worker goroutines never return an error

	result.Primary = uint64(primary)

	return result, nil
}

// Sample takes every s-th row of the full suffix array, matching spec's
// array[j] = SA[j*s] invariant for the sampled SA block.
func Sample(full []uint64, s int) []uint64 {
	n := len(full)
	sampled := make([]uint64, (n+s-1)/s)
	for j := range sampled {
		sampled[j] = full[j*s]
	}
	return sampled
}
