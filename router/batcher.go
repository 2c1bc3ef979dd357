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

// maxBatchBytes is the per-plane on-wire byte budget (invariant I4):
// 720 * 54.
const maxBatchBytes = 38880

// planeAccumulator holds one plane's pending packets awaiting flush.
type planeAccumulator struct {
	packets      []MPLSPacket
	pendingBytes int
}

func (a *planeAccumulator) reset() {
	a.packets = a.packets[:0]
	a.pendingBytes = 0
}

// DropPolicy decides whether a payload type should be silently
// dropped before reaching the egress path.
type DropPolicy interface {
	Apply(payloadType uint8) (drop bool)
}

// EgressBatcher accumulates uplink packets per destination plane and
// emits a group message once a byte-budget or packet-count threshold
// is reached, or on finalize.
type EgressBatcher struct {
	Codec               *Codec
	ToSVDropPolicy       DropPolicy
	MaxPacketsPerTimeslot int

	control planeAccumulator
	data    planeAccumulator

	// Emit is called with the destination plane and the encoded group
	// message whenever an accumulator is flushed.
	Emit func(plane Plane, groupMessage []byte)

	// OnDrop, if set, is called once per packet the to-SV drop policy
	// rejects. Policy drops are silent at the component level
	// (spec.md §7); this is the counter they are tracked in.
	OnDrop func()
}

// Add classifies packet by payload type and appends it to the
// appropriate plane's accumulator, flushing as needed. Mission-data
// payload types always go to the Data plane; everything else goes to
// Control after consulting ToSVDropPolicy.
func (b *EgressBatcher) Add(packet MPLSPacket, payloadType uint8, isMissionData bool) {
	if isMissionData {
		b.addTo(&b.data, Data, packet)
		b.flushIfReady(b.MaxPacketsPerTimeslot)
		return
	}
	if b.ToSVDropPolicy != nil && b.ToSVDropPolicy.Apply(payloadType) {
		if b.OnDrop != nil {
			b.OnDrop()
		}
		return
	}
	b.addTo(&b.control, Control, packet)
	b.flushIfReady(b.MaxPacketsPerTimeslot)
}

func (b *EgressBatcher) addTo(acc *planeAccumulator, plane Plane, packet MPLSPacket) {
	contribution := 2 + packet.Len()
	if acc.pendingBytes+contribution > maxBatchBytes {
		b.flush(acc, plane)
	}
	acc.packets = append(acc.packets, packet)
	acc.pendingBytes += contribution
}

func (b *EgressBatcher) flushIfReady(threshold int) {
	if len(b.control.packets) >= threshold {
		b.flush(&b.control, Control)
	}
	if len(b.data.packets) >= threshold {
		b.flush(&b.data, Data)
	}
}

// Finalize flushes any non-empty accumulator, regardless of threshold.
// Called on each frame tick.
func (b *EgressBatcher) Finalize() {
	if len(b.control.packets) >= 1 {
		b.flush(&b.control, Control)
	}
	if len(b.data.packets) >= 1 {
		b.flush(&b.data, Data)
	}
}

func (b *EgressBatcher) flush(acc *planeAccumulator, plane Plane) {
	if len(acc.packets) == 0 {
		return
	}
	msg := b.Codec.Encode(acc.packets)
	acc.reset()
	if b.Emit != nil {
		b.Emit(plane, msg)
	}
}
