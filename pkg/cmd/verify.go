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
	"math/big"
	"os"
	"strings"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/verify"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] source_file",
	Short: "evaluate the constraint-evaluation procedure at a single challenge point.",
	Long: `Compile an AIR assembly source file and evaluate its evaluation procedure at a single
challenge point x, given the trace row values at x and x*g, without materialising a full
trace. All public static registers (cyclic, mask) are reconstructed from their formula; this
command does not yet support secret static registers.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		s := compileFile(args[0])

		shape := verify.InputShape{Bank: s.Bank()}

		traceLength := getUint64(cmd, "trace-length")

		v, err := verify.New(s, shape, traceLength)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		x, err := parseScalar(s.Field, getString(cmd, "challenge"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		row, err := parseScalars(s.Field, getString(cmd, "row"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		nextRow, err := parseScalars(s.Field, getString(cmd, "next-row"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		residues, err := v.EvaluateConstraintsAt(x, row, nextRow, map[string]field.Element{})
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		for i, r := range residues {
			fmt.Printf("residue[%d]: %s\n", i, r.BigInt().String())
		}
	},
}

// parseScalar parses a single decimal field-element literal.
func parseScalar(f *field.Field, tok string) (field.Element, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(tok), 10)
	if !ok {
		return field.Element{}, fmt.Errorf("invalid scalar literal %q", tok)
	}

	return f.NewElementFromBigInt(v), nil
}

// parseScalars parses a comma-separated list of decimal field-element
// literals. An empty string yields an empty (not nil-panicking) slice.
func parseScalars(f *field.Field, flag string) ([]field.Element, error) {
	if strings.TrimSpace(flag) == "" {
		return []field.Element{}, nil
	}

	toks := strings.Split(flag, ",")
	out := make([]field.Element, len(toks))

	for i, tok := range toks {
		v, err := parseScalar(f, tok)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Uint64("trace-length", 0, "the execution domain size of the export being verified")
	verifyCmd.Flags().String("challenge", "0", "the challenge point x, as a decimal scalar literal")
	verifyCmd.Flags().String("row", "", "comma-separated trace row values at x")
	verifyCmd.Flags().String("next-row", "", "comma-separated trace row values at x*g")
}
