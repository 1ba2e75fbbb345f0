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
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
	"github.com/ltfmindex/ltfmindex-go/internal/bwm"
	"github.com/ltfmindex/ltfmindex-go/internal/count"
)

// ErrSizeMismatch is the sentinel every SizeMismatchError wraps, so callers
// that only want to test the error class can use errors.Is.
var ErrSizeMismatch = errors.New("blob: builder wrote a different number of bytes than its layout declared")

// SizeMismatchError reports the exact byte-count disagreement behind
// ErrSizeMismatch: a correct layout should never produce one, so callers
// can surface Expected/Actual directly rather than re-deriving them.
type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return ErrSizeMismatch.Error()
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

func sizeMismatch(expected, actual int) error {
	return &SizeMismatchError{Expected: expected, Actual: actual}
}

// Checksum computes the xxhash64 of buf, used to both write and verify the
// optional trailing integrity checksum.
func Checksum(buf []byte) uint64 {
	return xxhash.Sum64(buf)
}

// Input is every already-built component the builder assembles into one
// buffer. It builds nothing itself; internal/alphabet, internal/count,
// internal/sa and internal/bwm have already done that.
type Input struct {
	CIT             [256]byte
	CA              *count.Array
	SampledSA       []uint64
	SamplingRatio   uint64
	TextLen         int
	BWM             *bwm.BWM
	PrimaryIndex    uint64
	PositionWidth64 bool
	WithChecksum    bool
}

func wordsPerPlane(w int) int {
	return (w + 63) / 64
}

// Build assembles in into a single byte slice in the layout described by
// ComputeLayout, then optionally appends an 8-byte little-endian xxhash64
// checksum of everything written so far.
func Build(in Input) ([]byte, error) {
	pBytes := 4
	if in.PositionWidth64 {
		pBytes = 8
	}

	geom := Geometry{
		PositionBytes:  pBytes,
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
	layout := ComputeLayout(geom)

	buf := make([]byte, layout.TotalSize)

	flags := Flags{
		PositionWidth64: in.PositionWidth64,
		BlockWidth:      geom.W,
		VectorCount:     geom.V,
		ChecksumPresent: in.WithChecksum,
	}
	if err := WriteMagic(buf[MagicOffset:MagicOffset+MagicSize], flags); err != nil {
		return nil, err
	}

	copy(buf[CITOffset:CITOffset+CITSize], in.CIT[:])

	h := buf[layout.CAHeaderOffset : layout.CAHeaderOffset+caHeaderSize]
	binary.LittleEndian.PutUint32(h[0:4], uint32(geom.K))
	binary.LittleEndian.PutUint32(h[4:8], uint32(geom.C))
	binary.LittleEndian.PutUint64(h[8:16], uint64(geom.CumLen))
	binary.LittleEndian.PutUint64(h[16:24], uint64(geom.KmerLen))

	h = buf[layout.SAHeaderOffset : layout.SAHeaderOffset+saHeaderSize]
	binary.LittleEndian.PutUint64(h[0:8], geom.SamplingRatio)
	binary.LittleEndian.PutUint64(h[8:16], uint64(geom.ArrayLen))
	binary.LittleEndian.PutUint64(h[16:24], uint64(geom.TextLen))

	h = buf[layout.BWMHeaderOffset : layout.BWMHeaderOffset+bwmHeaderSize]
	binary.LittleEndian.PutUint32(h[0:4], uint32(geom.C))
	binary.LittleEndian.PutUint32(h[4:8], 0)
	binary.LittleEndian.PutUint64(h[8:16], uint64(geom.CheckpointsLen))
	binary.LittleEndian.PutUint64(h[16:24], uint64(geom.BlocksLen))
	binary.LittleEndian.PutUint64(h[24:32], geom.PrimaryIndex)

	caBody := buf[layout.CABodyOffset : layout.CABodyOffset+layout.CABodySize]
	off := 0
	off += putUints(caBody[off:], pBytes, in.CA.CumCharCounts)
	off += putUints(caBody[off:], pBytes, in.CA.KmerPrefixSums)
	off += putUints(caBody[off:], pBytes, in.CA.Multiplier)
	if off != layout.CABodySize {
		return nil, sizeMismatch(layout.CABodySize, off)
	}

	saBody := buf[layout.SABodyOffset : layout.SABodyOffset+layout.SABodySize]
	if n := putUints(saBody, pBytes, in.SampledSA); n != layout.SABodySize {
		return nil, sizeMismatch(layout.SABodySize, n)
	}

	bwmBody := buf[layout.BWMBodyOffset : layout.BWMBodyOffset+layout.BWMBodySize]
	off = 0
	off += putUints(bwmBody[off:], 8, in.BWM.RankCheckpoints)

	flat := in.BWM.FlatPlaneWords()
	wpp := wordsPerPlane(geom.W)
	pb := planeBytes(geom.W)

	for q := 0; q < geom.BlocksLen; q++ {
		blockStart := q * layout.BlockStride
		blockBuf := bwmBody[off+blockStart : off+blockStart+layout.BlockStride]

		n := 0
		for _, v := range in.BWM.RankCheckpoints[q*geom.C : (q+1)*geom.C] {
			binary.LittleEndian.PutUint64(blockBuf[n:n+8], v)
			n += 8
		}

		for j := 0; j < geom.V; j++ {
			start := (q*geom.V + j) * wpp
			writePlaneBytes(blockBuf[n:n+pb], geom.W, flat[start:start+wpp])
			n += pb
		}
	}
	off += geom.BlocksLen * layout.BlockStride
	if off != layout.BWMBodySize {
		return nil, sizeMismatch(layout.BWMBodySize, off)
	}

	if in.WithChecksum {
		sum := Checksum(buf)
		tail := make([]byte, 8)
		binary.LittleEndian.PutUint64(tail, sum)
		buf = append(buf, tail...)
	}

	return buf, nil
}

// putUints writes each value of xs as a width-byte (4 or 8) little-endian
// integer into dst and returns the number of bytes written.
func putUints(dst []byte, width int, xs []uint64) int {
	for i, v := range xs {
		putUint(dst[i*width:], width, v)
	}
	return len(xs) * width
}

func putUint(dst []byte, width int, v uint64) {
	if width == 4 {
		binary.LittleEndian.PutUint32(dst[0:4], uint32(v))
	} else {
		binary.LittleEndian.PutUint64(dst[0:8], v)
	}
}

// writePlaneBytes serializes one plane's words as a single w-bit
// little-endian integer, using exactly planeBytes(w) bytes (no padding):
// w=32 keeps only the low 32 bits of words[0]; w=64 writes words[0] whole;
// w=128 writes words[1] (the low 64 bits, symbols 64-127) first, then
// words[0] (the high 64 bits, symbols 0-63), matching how a multi-word
// little-endian integer orders its words.
func writePlaneBytes(dst []byte, w int, words []uint64) {
	switch w {
	case 32:
		binary.LittleEndian.PutUint32(dst[0:4], uint32(words[0]))
	case 64:
		binary.LittleEndian.PutUint64(dst[0:8], words[0])
	case 128:
		binary.LittleEndian.PutUint64(dst[0:8], words[1])
		binary.LittleEndian.PutUint64(dst[8:16], words[0])
	}
}
