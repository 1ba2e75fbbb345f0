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

package bwm

import (
	"math/rand"
	"testing"
)

func naiveRank(classes []byte, c byte, i int) uint64 {
	count := uint64(0)
	for j := 0; j < i; j++ {
		if classes[j] == c {
			count++
		}
	}
	return count
}

func randomClasses(n, c int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	classes := make([]byte, n)
	for i := range classes {
		classes[i] = byte(r.Intn(c))
	}
	return classes
}

func TestNextRankMatchesNaiveAcrossBlockWidths(t *testing.T) {
	for _, w := range []int{32, 64, 128} {
		for _, n := range []int{1, 31, 32, 33, 63, 64, 65, 127, 128, 129, 300} {
			classes := randomClasses(n, 5, int64(w*1000+n))

			m, err := Build(classes, 0, 5, w)
			if err != nil {
				t.Fatalf("w=%d n=%d: Build: %v", w, n, err)
			}

			for _, i := range []int{0, 1, n / 2, n - 1, n} {
				if i < 0 || i > n {
					continue
				}
				for c := byte(0); c < 5; c++ {
					got := m.NextRank(uint64(i), c)
					want := naiveRank(classes, c, i)
					if got != want {
						t.Fatalf("w=%d n=%d i=%d c=%d: got %d, want %d", w, n, i, c, got, want)
					}
				}
			}
		}
	}
}

func TestPreRankAndClassMatchesStoredClassesAndRank(t *testing.T) {
	for _, w := range []int{32, 64, 128} {
		n := 200
		classes := randomClasses(n, 6, int64(w))

		m, err := Build(classes, 0, 6, w)
		if err != nil {
			t.Fatalf("w=%d: Build: %v", w, err)
		}

		for i := 0; i < n; i++ {
			rank, class := m.PreRankAndClass(uint64(i))
			if class != classes[i] {
				t.Fatalf("w=%d i=%d: decoded class %d, want %d", w, i, class, classes[i])
			}

			want := naiveRank(classes, class, i)
			if rank != want {
				t.Fatalf("w=%d i=%d: rank %d, want %d", w, i, rank, want)
			}
		}
	}
}

func TestBuildRejectsBadWidth(t *testing.T) {
	if _, err := Build([]byte{0, 1}, 0, 2, 48); err != ErrInvalidBlockWidth {
		t.Fatalf("expected ErrInvalidBlockWidth, got %v", err)
	}
}

func TestCheckpointsAccumulateAcrossBlocks(t *testing.T) {
	classes := randomClasses(500, 4, 42)
	m, err := Build(classes, 0, 4, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for q := 0; q < m.BlocksLen; q++ {
		i := q * m.W
		if i > len(classes) {
			i = len(classes)
		}
		for c := byte(0); c < 4; c++ {
			want := naiveRank(classes, c, i)
			got := m.RankCheckpoints[q*m.C+int(c)]
			if got != want {
				t.Fatalf("block %d class %d: checkpoint %d, want %d", q, c, got, want)
			}
		}
	}
}
