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

// Drop-policy implementations are explicitly out of scope (spec.md
// §1): the router only consumes them through the narrow Apply/
// ChangeConfig-shaped interfaces below. DropPolicy (defined in
// batcher.go) covers the to-SV path; ToSimDropPolicy covers the
// to-SIM downlink path.

// ToSimDropPolicy decides whether a downlink payload type should be
// silently dropped before reaching the bus-ingress endpoint.
type ToSimDropPolicy interface {
	Apply(payloadType uint8) (drop bool)
}

// ConfigChange is an opaque command applied to the router's mutable
// state (delay table, drop-policy tables) under the reactor. The
// producer of ConfigChange values, the dynamic-configuration command
// queue, is out of scope (spec.md §1); Core only exposes the entry
// points that apply a change once posted.
type ConfigChange interface {
	// Apply mutates target, which is a pointer to one of DelayLookup,
	// DropPolicy, or ToSimDropPolicy (*DelayLookup, *DropPolicy,
	// *ToSimDropPolicy) depending on the Core entry point that posted it. Apply always runs on the reactor worker.
	Apply(target any)
}
