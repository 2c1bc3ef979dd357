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

package serrors

import (
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"
)

const maxStackDepth = 32

// Frame is a single program counter captured in a stack trace.
type Frame uintptr

// MarshalText renders the frame as "function file:line".
func (f Frame) MarshalText() ([]byte, error) {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return []byte("unknown"), nil
	}
	file, line := fn.FileLine(uintptr(f) - 1)
	return []byte(fmt.Sprintf("%s %s:%d", fn.Name(), file, line)), nil
}

// StackTrace is an ordered sequence of frames, innermost first.
type StackTrace []Frame

type stack []uintptr

func callers() *stack {
	var pcs [maxStackDepth]uintptr
	// Skip callers, Callers, and mkErrorInfo.
	n := runtime.Callers(3, pcs[:])
	s := stack(pcs[:n])
	return &s
}

func (s *stack) StackTrace() StackTrace {
	st := make(StackTrace, len(*s))
	for i, pc := range *s {
		st[i] = Frame(pc)
	}
	return st
}

func (s *stack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, pc := range *s {
		t, err := Frame(pc).MarshalText()
		if err != nil {
			return err
		}
		enc.AppendByteString(t)
	}
	return nil
}
