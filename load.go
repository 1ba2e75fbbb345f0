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

	"github.com/ltfmindex/ltfmindex-go/internal/blob"
)

// Viewer is a loaded, queryable index. Load/LoadUnchecked decode the
// buffer's body sections into the Viewer's own slices and keep no
// reference to the buffer, so the buffer (a memory-mapped file is a valid
// input, per SPEC_FULL.md §4.7) may be released once they return; the
// decoded index is held in the heap. A Viewer is safe to share across
// goroutines with no extra coordination, since count/locate never mutate
// it.
type Viewer struct {
	view *blob.View
}

// Load validates buf's header and section layout before returning a
// Viewer. Use LoadUnchecked to skip validation when buf is already known
// to be well-formed (e.g. it was produced by Build in the same process).
func Load(buf []byte) (*Viewer, error) {
	v, err := blob.Load(buf)
	if err != nil {
		return nil, loadErrorFrom(err)
	}
	return &Viewer{view: v}, nil
}

// LoadUnchecked checks only the magic header and decodes buf with no
// section-layout or checksum validation. A malformed or truncated buffer
// can panic or yield a Viewer that returns garbage.
func LoadUnchecked(buf []byte) (*Viewer, error) {
	v, err := blob.LoadUnchecked(buf)
	if err != nil {
		return nil, loadErrorFrom(err)
	}
	return &Viewer{view: v}, nil
}

func loadErrorFrom(err error) *LoadError {
	switch {
	case errors.Is(err, blob.ErrInvalidMagic):
		return newLoadError(InvalidMagic, "%v", err)
	case errors.Is(err, blob.ErrWidthMismatch):
		return newLoadError(WidthMismatch, "%v", err)
	case errors.Is(err, blob.ErrEndianMismatch):
		return newLoadError(EndianMismatch, "%v", err)
	case errors.Is(err, blob.ErrInvalidLayout):
		return newLoadError(InvalidLayout, "%v", err)
	case errors.Is(err, blob.ErrTruncated):
		return newLoadError(TruncatedBlob, "%v", err)
	case errors.Is(err, blob.ErrChecksum):
		return newLoadError(ChecksumMismatch, "%v", err)
	default:
		return newLoadError(InvalidLayout, "%v", err)
	}
}
