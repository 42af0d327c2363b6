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
	"github.com/consensys/air-assembly/pkg/proof"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] source_file",
	Short: "generate and print an execution trace for an export.",
	Long: `Compile an AIR assembly source file and simulate its transition function for the chosen
export's cycle length, printing the resulting trace rows.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		s := compileFile(args[0])
		exportName := getString(cmd, "export")
		export := findExport(s, exportName)

		inst, err := proof.New(s, export.Name, 1)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		if bank := s.Bank(); bank != nil {
			for _, reg := range bank.Registers {
				if reg.Kind == register.Input {
					fmt.Printf("warning: input register %q has no supplied witness; trace generation will fail\n", reg.Handle)
				}
			}
		}

		if err := inst.InitProof(proof.InputValues{}); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		seed, err := parseSeedFlag(s.Field, getString(cmd, "seed"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		rows, err := inst.GenerateExecutionTrace(seed)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		for i, row := range rows {
			cells := make([]string, len(row))
			for j, c := range row {
				cells[j] = c.BigInt().String()
			}

			fmt.Printf("%d: %s\n", i, strings.Join(cells, " "))
		}
	},
}

// parseSeedFlag parses a comma-separated list of field element literals for
// an export whose initial row is runtime-supplied (export declares `seed`).
// An empty flag value is fine for an export with a fixed initializer.
func parseSeedFlag(f *field.Field, flag string) ([]field.Element, error) {
	if flag == "" {
		return nil, nil
	}

	toks := strings.Split(flag, ",")
	out := make([]field.Element, len(toks))

	for i, tok := range toks {
		v, ok := new(big.Int).SetString(strings.TrimSpace(tok), 10)
		if !ok {
			return nil, fmt.Errorf("seed: invalid scalar literal %q", tok)
		}

		out[i] = f.NewElementFromBigInt(v)
	}

	return out, nil
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().String("export", "main", "the export to trace")
	traceCmd.Flags().String("seed", "", "comma-separated initial row values, for an export with a runtime-supplied seed")
}
