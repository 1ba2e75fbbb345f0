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

// Package ltfmasync wraps index construction and multi-file loading with
// context cancellation and fan-out, the way a caller building several
// indexes (one per shard, one per chromosome) would otherwise hand-roll
// with goroutines and a sync.WaitGroup. It is not imported by the core
// ltfmindex package; core construction and query stay synchronous.
package ltfmasync

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ltfmindex/ltfmindex-go"
)

// BuildResult is what a goroutine-backed Build call eventually produces.
type BuildResult struct {
	Buf []byte
	Err error
}

// Build runs ltfmindex.Build on its own goroutine and returns a channel
// that receives exactly one BuildResult. Cancelling ctx before Build
// finishes does not stop the underlying construction (ltfmindex.Build has
// no cancellation points of its own) but the result is still delivered;
// callers that no longer care can simply stop reading the channel.
func Build(ctx context.Context, text []byte, cfg ltfmindex.BuildConfig) <-chan BuildResult {
	out := make(chan BuildResult, 1)

	go func() {
		if err := ctx.Err(); err != nil {
			out <- BuildResult{Err: err}
			return
		}
		buf, err := ltfmindex.Build(text, cfg)
		out <- BuildResult{Buf: buf, Err: err}
	}()

	return out
}

// BuildAndSave builds an index and writes it to path, the two steps a
// caller otherwise has to sequence by hand after reading from Build's
// channel.
func BuildAndSave(ctx context.Context, text []byte, cfg ltfmindex.BuildConfig, path string) error {
	res := <-Build(ctx, text, cfg)
	if res.Err != nil {
		return res.Err
	}
	return os.WriteFile(path, res.Buf, 0o644)
}

// LoadAll reads and loads every path concurrently, returning viewers in
// the same order as paths. The first failure cancels the shared context
// (errgroup.WithContext): loads that have not started yet return the
// context error instead of reading, while reads already in progress run
// to completion. Wait joins on that first error, the same fan-out-and-join
// shape as internal/sa's parallel BWT derivation.
func LoadAll(ctx context.Context, paths []string) ([]*ltfmindex.Viewer, error) {
	viewers := make([]*ltfmindex.Viewer, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			v, err := ltfmindex.Load(buf)
			if err != nil {
				return err
			}
			viewers[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return viewers, nil
}
