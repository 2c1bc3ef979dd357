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

// Reactor is a single-worker cooperative command processor: the Go
// realization of spec.md §9's "active-object pattern". External
// callers only ever Post closures; they never touch endpoint or
// scheduler state directly. Exactly one goroutine executes posted
// commands, one at a time, so completion handlers never run
// concurrently with each other.
type Reactor struct {
	commands chan func()
	done     chan struct{}
}

// NewReactor builds a Reactor with the given command-queue depth.
func NewReactor(queueDepth int) *Reactor {
	return &Reactor{
		commands: make(chan func(), queueDepth),
		done:     make(chan struct{}),
	}
}

// Run executes posted commands until Stop closes the queue. Run
// returns once the queue has drained and closed; it is meant to run on
// its own dedicated goroutine.
func (r *Reactor) Run() {
	defer close(r.done)
	for cmd := range r.commands {
		cmd()
	}
}

// Post enqueues cmd for execution on the reactor worker. Post never
// blocks the caller on cmd's execution; it only blocks if the queue is
// momentarily full.
func (r *Reactor) Post(cmd func()) {
	r.commands <- cmd
}

// Stop closes the command queue and blocks until the worker goroutine
// running Run has exited, so destruction of the Reactor's owner always
// waits for the worker as spec.md §5 requires.
func (r *Reactor) Stop() {
	close(r.commands)
	<-r.done
}
