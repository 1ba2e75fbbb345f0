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

	"github.com/ltfmindex/ltfmindex-go/internal/alphabet"
	"github.com/ltfmindex/ltfmindex-go/internal/bwm"
	"github.com/ltfmindex/ltfmindex-go/internal/count"
)

var (
	ErrInvalidLayout = errors.New("blob: a declared section falls outside the buffer or is misaligned")
	ErrTruncated     = errors.New("blob: buffer is shorter than the header declares")
	ErrChecksum      = errors.New("blob: body checksum does not match")
)

// View is every component a loaded blob hands back: the decoded
// alphabet, CA, BWM, and the sampled SA, plus the position width and
// sampling ratio needed to turn a BWM row into a text offset.
//
// The position/checkpoint/plane body arrays are decoded into freshly
// allocated uint64 slices rather than reinterpreted in place over buf: a
// literal zero-copy cast only makes sense when the stored element width
// already matches uint64 (PositionWidth64, and the always-u64
// rank_checkpoints array) and word order matches the in-memory
// convention; for PositionWidth32 blobs and for every W-bit plane
// (4, 8, or 16 bytes, not always a whole number of uint64 words) it does
// not, so those sections are decoded once at Load time instead. The
// magic header and CIT are read directly from buf with no allocation.
type View struct {
	CIT           *alphabet.CIT
	CA            *count.Array
	BWM           *bwm.BWM
	SampledSA     []uint64
	SamplingRatio uint64
	TextLen       int
	PositionWidth64 bool
}

// Load validates every declared section against len(buf) and, if the blob
// declares a checksum, verifies it, before decoding. Use LoadUnchecked to
// skip both and trust the caller.
func Load(buf []byte) (*View, error) {
	if err := validate(buf); err != nil {
		return nil, err
	}
	return decode(buf)
}

// LoadUnchecked checks only the 16-byte magic header, then decodes buf
// with no section-layout or checksum validation: a malformed or truncated
// buffer can panic or produce a View with out-of-range offsets.
func LoadUnchecked(buf []byte) (*View, error) {
	return decode(buf)
}

func validate(buf []byte) error {
	flags, err := ReadMagic(buf)
	if err != nil {
		return err
	}

	if len(buf) < HeadersOffset+caHeaderSize+saHeaderSize+bwmHeaderSize {
		return ErrTruncated
	}

	geom := readGeometry(buf, flags)
	layout := ComputeLayout(geom)

	declaredTotal := layout.TotalSize
	if flags.ChecksumPresent {
		declaredTotal += 8
	}
	if len(buf) < declaredTotal {
		return ErrTruncated
	}

	if layout.BWMBodyOffset+layout.BWMBodySize > len(buf) {
		return ErrInvalidLayout
	}
	blockBytes := geom.W / 8
	if layout.BWMBodyOffset%blockBytes != 0 {
		return ErrInvalidLayout
	}

	if flags.ChecksumPresent {
		want := binary.LittleEndian.Uint64(buf[layout.TotalSize : layout.TotalSize+8])
		got := Checksum(buf[:layout.TotalSize])
		if want != got {
			return ErrChecksum
		}
	}

	return nil
}

func readGeometry(buf []byte, flags Flags) Geometry {
	pBytes := 4
	if flags.PositionWidth64 {
		pBytes = 8
	}

	h := buf[HeadersOffset : HeadersOffset+caHeaderSize]
	k := int(binary.LittleEndian.Uint32(h[0:4]))
	c := int(binary.LittleEndian.Uint32(h[4:8]))
	cumLen := int(binary.LittleEndian.Uint64(h[8:16]))
	kmerLen := int(binary.LittleEndian.Uint64(h[16:24]))

	saOff := HeadersOffset + caHeaderSize
	h = buf[saOff : saOff+saHeaderSize]
	samplingRatio := binary.LittleEndian.Uint64(h[0:8])
	arrayLen := int(binary.LittleEndian.Uint64(h[8:16]))
	textLen := int(binary.LittleEndian.Uint64(h[16:24]))

	bwmOff := saOff + saHeaderSize
	h = buf[bwmOff : bwmOff+bwmHeaderSize]
	checkpointsLen := int(binary.LittleEndian.Uint64(h[8:16]))
	blocksLen := int(binary.LittleEndian.Uint64(h[16:24]))
	primaryIndex := binary.LittleEndian.Uint64(h[24:32])

	return Geometry{
		PositionBytes:  pBytes,
		K:              k,
		C:              c,
		CumLen:         cumLen,
		KmerLen:        kmerLen,
		SamplingRatio:  samplingRatio,
		ArrayLen:       arrayLen,
		TextLen:        textLen,
		W:              flags.BlockWidth,
		V:              flags.VectorCount,
		CheckpointsLen: checkpointsLen,
		BlocksLen:      blocksLen,
		PrimaryIndex:   primaryIndex,
	}
}

func decode(buf []byte) (*View, error) {
	flags, err := ReadMagic(buf)
	if err != nil {
		return nil, err
	}

	geom := readGeometry(buf, flags)
	layout := ComputeLayout(geom)
	pBytes := geom.PositionBytes

	var cit [256]byte
	copy(cit[:], buf[CITOffset:CITOffset+CITSize])

	caBody := buf[layout.CABodyOffset : layout.CABodyOffset+layout.CABodySize]
	off := 0
	cumCharCounts := readUints(caBody, &off, pBytes, geom.CumLen)
	kmerPrefixSums := readUints(caBody, &off, pBytes, geom.KmerLen)
	multiplier := readUints(caBody, &off, pBytes, geom.K)

	ca := &count.Array{
		K:              geom.K,
		C:              geom.C,
		CumCharCounts:  cumCharCounts,
		KmerPrefixSums: kmerPrefixSums,
		Multiplier:     multiplier,
	}

	saBody := buf[layout.SABodyOffset : layout.SABodyOffset+layout.SABodySize]
	sOff := 0
	sampledSA := readUints(saBody, &sOff, pBytes, geom.ArrayLen)

	bwmBody := buf[layout.BWMBodyOffset : layout.BWMBodyOffset+layout.BWMBodySize]
	bOff := 0
	checkpoints := readUints(bwmBody, &bOff, 8, geom.CheckpointsLen)

	wpp := wordsPerPlane(geom.W)
	pb := planeBytes(geom.W)
	flatWords := make([]uint64, geom.BlocksLen*geom.V*wpp)

	for q := 0; q < geom.BlocksLen; q++ {
		blockStart := bOff + q*layout.BlockStride
		blockBuf := bwmBody[blockStart : blockStart+layout.BlockStride]
		n := geom.C * 8 // skip the per-block checkpoint duplicate; the canonical copy is `checkpoints`

		for j := 0; j < geom.V; j++ {
			words := readPlaneWords(blockBuf[n:n+pb], geom.W)
			start := (q*geom.V + j) * wpp
			copy(flatWords[start:start+wpp], words)
			n += pb
		}
	}

	m := bwm.FromParts(geom.C, geom.W, geom.V, geom.TextLen, geom.PrimaryIndex, checkpoints, flatWords)

	view := &View{
		CIT:             alphabet.FromTable(cit, geom.C),
		CA:              ca,
		BWM:             m,
		SampledSA:       sampledSA,
		SamplingRatio:   geom.SamplingRatio,
		TextLen:         geom.TextLen,
		PositionWidth64: flags.PositionWidth64,
	}
	return view, nil
}

// readUints decodes count width-byte little-endian integers starting at
// *off within src, widening each to uint64, and advances *off.
func readUints(src []byte, off *int, width, count int) []uint64 {
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		if width == 4 {
			out[i] = uint64(binary.LittleEndian.Uint32(src[*off : *off+4]))
		} else {
			out[i] = binary.LittleEndian.Uint64(src[*off : *off+8])
		}
		*off += width
	}
	return out
}

// readPlaneWords is the inverse of writePlaneBytes.
func readPlaneWords(src []byte, w int) []uint64 {
	switch w {
	case 32:
		return []uint64{uint64(binary.LittleEndian.Uint32(src[0:4]))}
	case 64:
		return []uint64{binary.LittleEndian.Uint64(src[0:8])}
	case 128:
		lo := binary.LittleEndian.Uint64(src[0:8])
		hi := binary.LittleEndian.Uint64(src[8:16])
		return []uint64{hi, lo}
	default:
		return nil
	}
}
