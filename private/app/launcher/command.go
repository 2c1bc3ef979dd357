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

package launcher

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	libconfig "github.com/relaysat/framerouter/private/config"
)

func newCommandTemplate(executable, shortName string, cfg libconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          executable,
		Short:        fmt.Sprintf("%s runs the frame router", shortName),
		SilenceUsage: true,
	}
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	_ = cmd.MarkFlagRequired(cfgConfigFile)

	cmd.AddCommand(newSampleConfigCommand(shortName, cfg))
	return cmd
}

func newSampleConfigCommand(shortName string, cfg libconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: fmt.Sprintf("Display a sample configuration file for %s", shortName),
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			libconfig.WriteSample(&buf, nil, libconfig.CtxMap{libconfig.ID: "1"}, cfg)
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		},
	}
}
