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

// Count returns the number of occurrences of pattern in the indexed text.
//
// Empty pattern: returns the total text length (DESIGN.md pins this
// branch of the documented either/or; QueryError(EmptyPattern)
// exists for callers layering their own stricter policy on top, but
// Count itself never returns it).
func (v *Viewer) Count(pattern []byte) uint64 {
	if len(pattern) == 0 {
		return uint64(v.view.TextLen)
	}

	lo, hi := v.interval(pattern)
	return hi - lo
}

// Locate returns every text position where pattern occurs, in no
// particular order.
//
// Empty pattern: returns an empty, non-nil slice, the counterpart of
// Count's pinned convention.
func (v *Viewer) Locate(pattern []byte) []uint64 {
	if len(pattern) == 0 {
		return []uint64{}
	}

	lo, hi := v.interval(pattern)
	locations := make([]uint64, 0, hi-lo)
	for r := lo; r < hi; r++ {
		locations = append(locations, v.locateRow(r))
	}
	return locations
}

// interval computes the SA interval [lo, hi) matching pattern, per
// SPEC_FULL.md §4.5: the CA folds in the first min(len(pattern), K) bytes
// of backward search in one lookup; the remaining bytes are walked one
// BWM step at a time.
func (v *Viewer) interval(pattern []byte) (lo, hi uint64) {
	view := v.view

	lo, hi, j := view.CA.InitialInterval(view.CIT, pattern)

	for lo < hi && j > 0 {
		j--
		c := view.CIT.IdxOf(pattern[j])
		pc := view.CA.Precount(int(c))
		lo = pc + view.BWM.NextRank(lo, c)
		hi = pc + view.BWM.NextRank(hi, c)
	}

	return lo, hi
}

// locateRow walks LF backward from SA row r until it reaches a sampled
// row (r mod s == 0) or the primary row, accumulating the number of steps
// taken as offset.
//
// The primary-row check happens before taking a step, not by reacting to
// a "none" return from the rank decoder: the primary row's BWT class is
// an out-of-range sentinel with no onward LF target (see
// internal/sa/bwt.go), so the walk must recognize the primary row itself
// as the stopping condition rather than decode it. When the walk reaches
// the primary row, the accumulated offset already is the absolute text
// position — no further adjustment (the pinned convention for spec.md
// §9's open question on this point).
func (v *Viewer) locateRow(r uint64) uint64 {
	view := v.view
	s := view.SamplingRatio

	var offset uint64
	for {
		if r%s == 0 {
			return view.SampledSA[r/s] + offset
		}
		if r == view.BWM.PrimaryIndex {
			return offset
		}

		rank, c := view.BWM.PreRankAndClass(r)
		r = view.CA.Precount(int(c)) + rank
		offset++
	}
}
