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

import "time"

// Build stage markers, emitted as Build progresses. Build emits
// EvtCountArray before EvtSuffixArray, since the count array encodes the
// text that the suffix-array step then consumes.
const (
	EvtAlphabet = iota
	EvtSuffixArray
	EvtCountArray
	EvtBWM
	EvtBlobLayout
	EvtBuildDone
)

// Event describes a single build milestone. It carries no query-time
// information; count/locate never emit events (spec.md §5: no cancellation,
// no suspension at query time).
type Event struct {
	stage int
	size  int64
	when  time.Time
	msg   string
}

// Stage returns one of the Evt* constants above.
func (e *Event) Stage() int { return e.stage }

// Size returns a stage-specific byte or element count (e.g. text length for
// EvtAlphabet, blob size for EvtBlobLayout). Zero if not meaningful.
func (e *Event) Size() int64 { return e.size }

// Time returns when the event was created.
func (e *Event) Time() time.Time { return e.when }

// String renders a short human-readable summary.
func (e *Event) String() string {
	if e.msg != "" {
		return e.msg
	}
	return stageName(e.stage)
}

func stageName(stage int) string {
	switch stage {
	case EvtAlphabet:
		return "alphabet"
	case EvtSuffixArray:
		return "suffix-array"
	case EvtCountArray:
		return "count-array"
	case EvtBWM:
		return "bwm"
	case EvtBlobLayout:
		return "blob-layout"
	case EvtBuildDone:
		return "build-done"
	default:
		return "unknown"
	}
}

func newEvent(stage int, size int64) *Event {
	return &Event{stage: stage, size: size, when: time.Now()}
}

// Listener receives build-progress events. It is the only instrumentation
// hook exposed by Build; it never influences the result.
type Listener interface {
	ProcessEvent(evt *Event)
}

func notify(l Listener, stage int, size int64) {
	if l == nil {
		return
	}
	l.ProcessEvent(newEvent(stage, size))
}
