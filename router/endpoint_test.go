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

import "testing"

func TestResolveDestRejectsEmptyAndInvalidSentinel(t *testing.T) {
	if resolveDest("") != nil {
		t.Fatal("empty address should resolve to nil")
	}
	if resolveDest("0.0.0.0:0") != nil {
		t.Fatal("invalid-address sentinel should resolve to nil")
	}
}

func TestResolveDestAcceptsConcreteAddress(t *testing.T) {
	addr := resolveDest("127.0.0.1:14100")
	if addr == nil {
		t.Fatal("expected a resolved address")
	}
	if addr.Port != 14100 {
		t.Fatalf("expected port 14100, got %d", addr.Port)
	}
}

func TestResolveDestAcceptsUnspecifiedIPWithExplicitPort(t *testing.T) {
	// 0.0.0.0 alone means "any interface" for a listen address; only the
	// combination with port 0 is the silent-drop sentinel.
	addr := resolveDest("0.0.0.0:14100")
	if addr == nil {
		t.Fatal("expected a resolved address")
	}
}
