// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file",
	Short: "compile an AIR assembly source file, reporting any errors.",
	Long:  `Parse and freeze an AIR assembly source file, validating handle uniqueness, degree bounds and export well-formedness without generating a proof.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		s := compileFile(args[0])

		if getFlag(cmd, "print") {
			fmt.Print(s.Format(uint(getUint64(cmd, "width"))))
			return
		}

		fmt.Printf("%s: ok (%d exports)\n", args[0], len(s.Exports()))
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("print", false, "print an S-expression rendering of the frozen schema (not accepted back by compile)")
	compileCmd.Flags().Uint64("width", 100, "column width to wrap --print output to")
}
