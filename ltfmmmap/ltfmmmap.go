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

// Package ltfmmmap opens a blob file with a read-only memory mapping
// instead of reading it into a heap buffer. ltfmindex.Load and
// LoadUnchecked still decode every body section from the mapping into
// heap slices, so the loaded index itself is fully heap-resident; the
// mapping only replaces the intermediate read buffer.
package ltfmmmap

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/ltfmindex/ltfmindex-go/internal/blob"
)

// File is a memory-mapped blob. The mapping stays live for the File's
// lifetime; callers must call Close when done. A Viewer loaded from the
// mapped bytes holds its own decoded copy and stays usable after Close;
// only the byte slice returned by Open becomes invalid.
type File struct {
	f *os.File
	m mmap.MMap
}

// Open memory-maps path read-only and returns the mapping alongside the
// raw bytes backing it. Use the returned []byte with ltfmindex.Load or
// ltfmindex.LoadUnchecked.
func Open(path string) (*File, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if info.Size() == 0 {
		f.Close()
		return nil, nil, blob.ErrTruncated
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return &File{f: f, m: m}, []byte(m), nil
}

// Close unmaps the file and closes its descriptor. The byte slice
// returned by Open must not be read after Close.
func (mf *File) Close() error {
	merr := mf.m.Unmap()
	ferr := mf.f.Close()
	if merr != nil {
		return merr
	}
	return ferr
}
