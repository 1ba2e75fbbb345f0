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

package blob

import (
	"math/rand"
	"testing"

	"github.com/ltfmindex/ltfmindex-go/internal/alphabet"
	"github.com/ltfmindex/ltfmindex-go/internal/bwm"
	"github.com/ltfmindex/ltfmindex-go/internal/count"
	"github.com/ltfmindex/ltfmindex-go/internal/sa"
)

// buildSample produces a small, self-consistent Input for round-trip tests,
// independent of the root package (which composes these same pieces).
func buildSample(t *testing.T, text []byte, k, w int, ratio int, positionWidth64 bool) Input {
	t.Helper()

	cit, err := alphabet.New([][]byte{{'A'}, {'C'}, {'G'}, {'T'}})
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}

	textMut := append([]byte(nil), text...)
	ca, err := count.Build(textMut, cit, k)
	if err != nil {
		t.Fatalf("count.Build: %v", err)
	}

	res, err := sa.SAIS(textMut, cit.NumClasses())
	if err != nil {
		t.Fatalf("sa.SAIS: %v", err)
	}

	m, err := bwm.Build(res.BWTClasses, res.Primary, cit.NumClasses(), w)
	if err != nil {
		t.Fatalf("bwm.Build: %v", err)
	}

	sampled := sa.Sample(res.SA, ratio)

	return Input{
		CIT:             cit.Table(),
		CA:              ca,
		SampledSA:       sampled,
		SamplingRatio:   uint64(ratio),
		TextLen:         len(text),
		BWM:             m,
		PrimaryIndex:    res.Primary,
		PositionWidth64: positionWidth64,
	}
}

func randomDNA(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	bases := []byte{'A', 'C', 'G', 'T'}
	out := make([]byte, n)
	for i := range out {
		out[i] = bases[r.Intn(4)]
	}
	return out
}

func TestBuildThenLoadRoundTrips(t *testing.T) {
	for _, w := range []int{32, 64, 128} {
		for _, posWidth64 := range []bool{false, true} {
			in := buildSample(t, randomDNA(200, int64(w)), 4, w, 4, posWidth64)

			buf, err := Build(in)
			if err != nil {
				t.Fatalf("w=%d p64=%v: Build: %v", w, posWidth64, err)
			}

			view, err := Load(buf)
			if err != nil {
				t.Fatalf("w=%d p64=%v: Load: %v", w, posWidth64, err)
			}

			if view.TextLen != in.TextLen {
				t.Fatalf("w=%d p64=%v: TextLen = %d, want %d", w, posWidth64, view.TextLen, in.TextLen)
			}
			if view.BWM.PrimaryIndex != in.PrimaryIndex {
				t.Fatalf("w=%d p64=%v: PrimaryIndex = %d, want %d", w, posWidth64, view.BWM.PrimaryIndex, in.PrimaryIndex)
			}
			if len(view.SampledSA) != len(in.SampledSA) {
				t.Fatalf("w=%d p64=%v: sampled SA length mismatch", w, posWidth64)
			}
			for i := range in.SampledSA {
				if view.SampledSA[i] != in.SampledSA[i] {
					t.Fatalf("w=%d p64=%v: sampled SA[%d] = %d, want %d", w, posWidth64, i, view.SampledSA[i], in.SampledSA[i])
				}
			}

			for c := byte(0); c < byte(in.CA.C); c++ {
				for _, i := range []uint64{0, 1, 50, 199, 200} {
					got := view.BWM.NextRank(i, c)
					want := in.BWM.NextRank(i, c)
					if got != want {
						t.Fatalf("w=%d p64=%v c=%d i=%d: NextRank = %d, want %d", w, posWidth64, c, i, got, want)
					}
				}
			}

			for i := 0; i < 200; i++ {
				gotRank, gotClass := view.BWM.PreRankAndClass(uint64(i))
				wantRank, wantClass := in.BWM.PreRankAndClass(uint64(i))
				if gotRank != wantRank || gotClass != wantClass {
					t.Fatalf("w=%d p64=%v i=%d: PreRankAndClass = (%d,%d), want (%d,%d)", w, posWidth64, i, gotRank, gotClass, wantRank, wantClass)
				}
			}
		}
	}
}

func TestBuildSizeMatchesLayout(t *testing.T) {
	in := buildSample(t, randomDNA(300, 11), 4, 64, 3, true)
	buf, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	geom := Geometry{
		PositionBytes:  8,
		K:              in.CA.K,
		C:              in.CA.C,
		CumLen:         len(in.CA.CumCharCounts),
		KmerLen:        len(in.CA.KmerPrefixSums),
		SamplingRatio:  in.SamplingRatio,
		ArrayLen:       len(in.SampledSA),
		TextLen:        in.TextLen,
		W:              in.BWM.W,
		V:              in.BWM.V,
		CheckpointsLen: len(in.BWM.RankCheckpoints),
		BlocksLen:      in.BWM.BlocksLen,
		PrimaryIndex:   in.PrimaryIndex,
	}
	want := ComputeLayout(geom).TotalSize
	if len(buf) != want {
		t.Fatalf("buf length %d, want %d", len(buf), want)
	}
}

func TestLoadWithChecksumDetectsCorruption(t *testing.T) {
	in := buildSample(t, randomDNA(128, 5), 3, 32, 2, false)
	in.WithChecksum = true

	buf, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := Load(buf); err != nil {
		t.Fatalf("Load on a clean checksummed blob: %v", err)
	}

	corrupt := append([]byte(nil), buf...)
	corrupt[CITOffset] ^= 0xFF

	if _, err := Load(corrupt); err != ErrChecksum {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}

	// LoadUnchecked never looks at the checksum.
	if _, err := LoadUnchecked(corrupt); err != nil {
		t.Fatalf("LoadUnchecked on corrupt-but-structurally-valid buffer: %v", err)
	}
}

func TestLoadRejectsBadMagicAndTruncation(t *testing.T) {
	in := buildSample(t, randomDNA(64, 9), 3, 64, 2, false)
	buf, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	bad := append([]byte(nil), buf...)
	bad[0] = 'X'
	if _, err := Load(bad); err != ErrInvalidMagic {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}

	truncated := buf[:len(buf)-8]
	if _, err := Load(truncated); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
