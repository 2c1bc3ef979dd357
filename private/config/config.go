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

// Package config provides a uniform pattern for configuration structs.
//
// Every configuration struct implements Config. There are three parts:
// initialization (InitDefaults), validation (Validate), and sample
// generation (Sample). Sample is allowed to panic if an error occurs
// during generation.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/relaysat/framerouter/pkg/serrors"
)

const ID = "id"

// Config is the interface config structs implement for streamlined
// initialization, validation, and sample generation.
type Config interface {
	Sampler
	Validator
	Defaulter
}

// Validator recursively checks that all fields contain valid values.
type Validator interface {
	Validate() error
}

// Defaulter recursively initializes the default values of all
// uninitialized fields.
type Defaulter interface {
	InitDefaults()
}

// Sampler creates a sample config and writes it to dst.
type Sampler interface {
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is used to write a table to the sample.
type TableSampler interface {
	Sampler
	// ConfigName returns the name of the config block, forcing
	// consistency between samples for different config blocks.
	ConfigName() string
}

// Path is the header of a config block, possibly multiple parts.
type Path []string

// Extend returns a copy of p with s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// NoValidator implements a Validator that never fails.
type NoValidator struct{}

func (NoValidator) Validate() error { return nil }

// NoDefaulter implements a Defaulter that is a no-op.
type NoDefaulter struct{}

func (NoDefaulter) InitDefaults() {}

// StringSampler writes a fixed sample string.
type StringSampler struct {
	Text string
	Name string
}

func (s StringSampler) Sample(dst io.Writer, _ Path, _ CtxMap) { WriteString(dst, s.Text) }
func (s StringSampler) ConfigName() string                    { return s.Name }

// ValidateAll validates each validator in order, stopping at the first error.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return serrors.Wrap("validating config section", err, "type", fmt.Sprintf("%T", v))
		}
	}
	return nil
}

// InitAll initializes every defaulter.
func InitAll(defaulters ...Defaulter) {
	for _, d := range defaulters {
		d.InitDefaults()
	}
}

// Decode decodes raw TOML into cfg.
func Decode(raw []byte, cfg any) error {
	return toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(cfg)
}

// LoadFile loads TOML config from file into cfg.
func LoadFile(file string, cfg any) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return Decode(raw, cfg)
}
