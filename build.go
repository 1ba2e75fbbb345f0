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

package ltfmindex

import (
	"errors"

	"github.com/ltfmindex/ltfmindex-go/internal/alphabet"
	"github.com/ltfmindex/ltfmindex-go/internal/blob"
	"github.com/ltfmindex/ltfmindex-go/internal/bwm"
	"github.com/ltfmindex/ltfmindex-go/internal/count"
	"github.com/ltfmindex/ltfmindex-go/internal/sa"
)

// maxVectorCount is the largest bit-plane count the blob's flags word can
// record (3 bits, SPEC_FULL.md §6). V must satisfy 2^V > C, so C (the
// number of classes) must stay below 2^maxVectorCount, i.e. at most 127.
const maxVectorCount = 7

// SaDriver selects which suffix-array algorithm Build uses. Both produce
// identical results (SPEC_FULL.md §8 property 7); the choice only affects
// construction time.
type SaDriver int

const (
	// SaDriverSAIS uses induced-sorting suffix array construction.
	SaDriverSAIS SaDriver = iota
	// SaDriverDoubling uses prefix-doubling suffix array construction.
	SaDriverDoubling
)

// BuildConfig is the typed entry point for Build, taking named fields in
// place of the teacher's informal ctx map[string]any tunables
// (SPEC_FULL.md §3 "BuildConfig"). It has no concurrency setting.
type BuildConfig struct {
	// AlphabetGroups is an ordered list of disjoint byte groups; the
	// implicit wildcard class is len(AlphabetGroups).
	AlphabetGroups [][]byte
	// SamplingRatio is the suffix-array sampling factor s (every s-th row
	// of the full SA is kept).
	SamplingRatio int
	// K is the k-mer size folded into the count-and-LT array.
	K int
	// BlockWidth is the BWM block width W in bits: 32, 64, or 128.
	BlockWidth int
	// PositionWidth64 selects the blob's serialized position width.
	PositionWidth64 bool
	// Driver selects the suffix-array construction algorithm.
	Driver SaDriver
	// WithChecksum, if true, appends a trailing xxhash64 checksum of every
	// byte before it (headers included), verified by the checked Load path.
	WithChecksum bool
	// Listener, if non-nil, receives build-progress events.
	Listener Listener
}

// Build constructs a blob from text and cfg. text is not retained after
// Build returns; Build mutates a private copy, never the caller's slice.
func Build(text []byte, cfg BuildConfig) ([]byte, error) {
	if len(text) == 0 {
		return nil, newBuildError(EmptyText, "")
	}
	if cfg.SamplingRatio <= 0 {
		return nil, newConfigError(InvalidSamplingRatio, "sampling ratio must be >= 1, got %d", cfg.SamplingRatio)
	}
	if cfg.BlockWidth != 32 && cfg.BlockWidth != 64 && cfg.BlockWidth != 128 {
		return nil, newConfigError(AlphabetTooLarge, "block width must be 32, 64, or 128, got %d", cfg.BlockWidth)
	}

	cit, err := alphabet.New(cfg.AlphabetGroups)
	if err != nil {
		return nil, configErrorFromAlphabet(err)
	}

	c := cit.NumClasses()
	v := 1
	for (1 << uint(v)) <= c {
		v++
	}
	if v > maxVectorCount {
		return nil, newConfigError(AlphabetTooLarge, "%d classes need %d bit-planes, more than the %d this format supports", c, v, maxVectorCount)
	}

	notify(cfg.Listener, EvtAlphabet, int64(len(text)))

	textMut := append([]byte(nil), text...)

	ca, err := count.Build(textMut, cit, cfg.K)
	if err != nil {
		if errors.Is(err, count.ErrInvalidKmerSize) {
			return nil, newConfigError(InvalidKmerSize, "k=%d: %v", cfg.K, err)
		}
		return nil, newBuildError(InvalidAlphabet, "%v", err)
	}
	notify(cfg.Listener, EvtCountArray, int64(len(ca.KmerPrefixSums)))

	var saResult *sa.BWTResult
	switch cfg.Driver {
	case SaDriverDoubling:
		saResult, err = sa.Doubling(textMut, c)
	default:
		saResult, err = sa.SAIS(textMut, c)
	}
	if err != nil {
		return nil, newBuildError(SaConstructionFailed, "%v", err)
	}
	notify(cfg.Listener, EvtSuffixArray, int64(len(saResult.SA)))

	m, err := bwm.Build(saResult.BWTClasses, saResult.Primary, c, cfg.BlockWidth)
	if err != nil {
		return nil, newBuildError(InvalidAlphabet, "%v", err)
	}
	notify(cfg.Listener, EvtBWM, int64(m.BlocksLen))

	sampled := sa.Sample(saResult.SA, cfg.SamplingRatio)

	buf, err := blob.Build(blob.Input{
		CIT:             cit.Table(),
		CA:              ca,
		SampledSA:       sampled,
		SamplingRatio:   uint64(cfg.SamplingRatio),
		TextLen:         len(text),
		BWM:             m,
		PrimaryIndex:    saResult.Primary,
		PositionWidth64: cfg.PositionWidth64,
		WithChecksum:    cfg.WithChecksum,
	})
	if err != nil {
		if se, ok := asSizeMismatch(err); ok {
			return nil, se
		}
		return nil, newBuildError(InvalidAlphabet, "%v", err)
	}
	notify(cfg.Listener, EvtBlobLayout, int64(len(buf)))
	notify(cfg.Listener, EvtBuildDone, int64(len(buf)))

	return buf, nil
}

func configErrorFromAlphabet(err error) *ConfigError {
	switch {
	case errors.Is(err, alphabet.ErrOverlappingGroups):
		return newConfigError(OverlappingGroups, "%v", err)
	case errors.Is(err, alphabet.ErrReservedSentinel):
		return newConfigError(ReservedSentinelByte, "%v", err)
	case errors.Is(err, alphabet.ErrNoGroups):
		return newConfigError(NoAlphabetGroups, "%v", err)
	default:
		return newConfigError(NoAlphabetGroups, "%v", err)
	}
}

func asSizeMismatch(err error) (*BuildError, bool) {
	var sme *blob.SizeMismatchError
	if errors.As(err, &sme) {
		return newBlobSizeMismatchError(sme.Expected, sme.Actual), true
	}
	return nil, false
}
