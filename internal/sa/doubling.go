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

import "sort"

// Doubling constructs a BWTResult using prefix doubling (Manber & Myers):
// suffixes are ranked by successively longer prefixes, doubling the
// comparison length each round, until every rank is unique. Unlike SAIS it
// needs no physical sentinel byte — a suffix that runs off the end of the
// text is treated as lexicographically smaller than any suffix that
// doesn't, which is exactly Go's natural slice-prefix ordering. This stands
// in for flanglet-kanzi-go's alternate (non-SA-IS) divsufsort driver as the
// second of the spec's two interchangeable suffix-array constructors.
func Doubling(encodedText []byte, numClasses int) (*BWTResult, error) {
	n := len(encodedText)
	if n == 0 {
		return nil, ErrEmptyText
	}

	sa := make([]int, n)
	rank := make([]int, n)
	tmp := make([]int, n)

	for i, b := range encodedText {
		sa[i] = i
		rank[i] = int(b)
	}

	rankAt := func(i, k int) int {
		if i+k >= n {
			return -1
		}
		return rank[i+k]
	}

	for k := 1; ; k *= 2 {
		sort.Slice(sa, func(i, j int) bool {
			a, b := sa[i], sa[j]
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return rankAt(a, k) < rankAt(b, k)
		})

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			prev, cur := sa[i-1], sa[i]
			if rank[prev] != rank[cur] || rankAt(prev, k) != rankAt(cur, k) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n-1]] == n-1 || k >= n {
			break
		}
	}

	return deriveBWT(encodedText, sa, numClasses)
}
