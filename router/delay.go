// Copyright 2026 The Frame Router Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import "sort"

// DelayLookup resolves the frame delay between a source and
// destination node. Delay lookups are externally provided and mutated
// only on the reactor worker.
type DelayLookup interface {
	Delay(source, dest NodeID) uint32
}

// StaticDelayTable is a DelayLookup backed by a fixed, TOML-loaded
// table keyed by (source, dest).
type StaticDelayTable map[[2]NodeID]uint32

// Delay returns the configured delay, or 0 if no entry exists.
func (t StaticDelayTable) Delay(source, dest NodeID) uint32 {
	return t[[2]NodeID{source, dest}]
}

// delayEntry is one item held by the Delay Scheduler: a framed
// payload awaiting release at releaseFrame. seq breaks ties between
// entries sharing the same releaseFrame in insertion order, since Go's
// map and slice-sort primitives give no equal-key ordering guarantee
// on their own (spec.md §9, "Delay queue FIFO-at-equal-key").
type delayEntry struct {
	releaseFrame uint32
	seq          uint64
	payload      any
}

// DelayScheduler holds entries keyed by the frame at which they become
// eligible for release. enqueue and drainDue both run exclusively on
// the reactor worker; the scheduler itself does no locking.
type DelayScheduler struct {
	entries []delayEntry
	nextSeq uint64
}

// Enqueue holds payload until releaseFrame is reached or passed. I1
// requires releaseFrame >= the current frame count at time of
// enqueue; callers compute releaseFrame as F + delay(source, dest).
func (s *DelayScheduler) Enqueue(releaseFrame uint32, payload any) {
	s.entries = append(s.entries, delayEntry{
		releaseFrame: releaseFrame,
		seq:          s.nextSeq,
		payload:      payload,
	})
	s.nextSeq++
}

// DrainDue visits every entry with releaseFrame <= frame, in ascending
// (releaseFrame, seq) order, removing each as it is visited. No entry
// is visited more than once.
func (s *DelayScheduler) DrainDue(frame uint32, visit func(payload any)) {
	if len(s.entries) == 0 {
		return
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].releaseFrame != s.entries[j].releaseFrame {
			return s.entries[i].releaseFrame < s.entries[j].releaseFrame
		}
		return s.entries[i].seq < s.entries[j].seq
	})

	due := 0
	for due < len(s.entries) && s.entries[due].releaseFrame <= frame {
		due++
	}
	for i := 0; i < due; i++ {
		visit(s.entries[i].payload)
	}
	s.entries = append(s.entries[:0], s.entries[due:]...)
}

// Len reports the number of entries currently held.
func (s *DelayScheduler) Len() int { return len(s.entries) }
