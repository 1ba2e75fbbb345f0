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

package count

import (
	"testing"

	"github.com/ltfmindex/ltfmindex-go/internal/alphabet"
)

func naiveSubstringCount(text, pattern []byte) int {
	if len(pattern) == 0 {
		return len(text)
	}

	count := 0
	for i := 0; i+len(pattern) <= len(text); i++ {
		if string(text[i:i+len(pattern)]) == string(pattern) {
			count++
		}
	}
	return count
}

// foldClasses rewrites text/pattern bytes to their class-representative byte
// (the first byte assigned to that class, or 0xFF for wildcard) so the
// naive scanner agrees with the class-folded semantics of the index.
func foldClasses(cit *alphabet.CIT, groups [][]byte, b []byte) []byte {
	reps := make(map[byte]byte)
	for _, g := range groups {
		for _, c := range g {
			reps[cit.IdxOf(c)] = c
		}
	}

	out := make([]byte, len(b))
	for i, c := range b {
		cls := cit.IdxOf(c)
		if rep, ok := reps[cls]; ok {
			out[i] = rep
		} else {
			out[i] = 0xFF // canonical wildcard representative
		}
	}
	return out
}

func TestInitialIntervalShortPatternMatchesNaive(t *testing.T) {
	groups := [][]byte{[]byte("A"), []byte("C"), []byte("G")}
	cit, err := alphabet.New(groups)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text := []byte("ACGACGACG")
	folded := foldClasses(cit, groups, text)

	buf := append([]byte(nil), text...)
	ca, err := Build(buf, cit, 6) // k > len(pattern) forces the short-pattern branch
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, pat := range [][]byte{[]byte("A"), []byte("ACG"), []byte("CGA")} {
		lo, hi, rem := ca.InitialInterval(cit, pat)
		if rem != 0 {
			t.Fatalf("pattern %q: expected idxRemaining 0 for short-pattern branch, got %d", pat, rem)
		}

		want := naiveSubstringCount(folded, foldClasses(cit, groups, pat))
		got := int(hi - lo)

		if got != want {
			t.Fatalf("pattern %q: got %d occurrences, want %d", pat, got, want)
		}
	}
}

func TestCumCharCountsMatchHistogram(t *testing.T) {
	groups := [][]byte{[]byte("A"), []byte("C"), []byte("G")}
	cit, err := alphabet.New(groups)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text := []byte("ACGACGACGT") // T folds to wildcard
	buf := append([]byte(nil), text...)
	ca, err := Build(buf, cit, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hist := map[byte]int{}
	for _, b := range text {
		hist[cit.IdxOf(b)]++
	}

	for class := 0; class < cit.NumClasses(); class++ {
		want := uint64(hist[byte(class)])
		got := ca.CumCharCounts[class+1] - ca.CumCharCounts[class]
		if got != want {
			t.Fatalf("class %d: got %d, want %d", class, got, want)
		}
	}

	if ca.CumCharCounts[0] != 0 {
		t.Fatalf("cum_char_counts[0] must be 0, got %d", ca.CumCharCounts[0])
	}
}

func TestBuildRejectsBadK(t *testing.T) {
	cit, _ := alphabet.New([][]byte{[]byte("A")})
	buf := []byte("A")

	if _, err := Build(buf, cit, 1); err != ErrInvalidKmerSize {
		t.Fatalf("k=1: expected ErrInvalidKmerSize, got %v", err)
	}

	if _, err := Build(buf, cit, 33); err != ErrInvalidKmerSize {
		t.Fatalf("k=33: expected ErrInvalidKmerSize, got %v", err)
	}
}
