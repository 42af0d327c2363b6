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
	"os"

	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/consensys/air-assembly/pkg/termio"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] source_file",
	Short: "report constraint degree and composition domain size for an export.",
	Long: `Compile an AIR assembly source file and report, for a chosen export, its declared
transition/evaluation constraint degrees, the composition domain size those degrees imply, and the
static register counts`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		s := compileFile(args[0])

		export := findExport(s, getString(cmd, "export"))
		report := s.Analyze(export.CycleLength)

		printReport(args[0], export.Name, export.CycleLength, report)
	},
}

func findExport(s *schema.Schema, name string) *schema.Export {
	for _, e := range s.Exports() {
		if e.Name == name {
			return &e
		}
	}

	fmt.Printf("no export named %q\n", name)
	os.Exit(2)

	return nil
}

func printReport(filename, export string, cycleLength uint64, r schema.Report) {
	tbl := termio.NewTablePrinter(2, 6)
	tbl.SetRow(0, "source", filename)
	tbl.SetRow(1, "export", export)
	tbl.SetRow(2, "trace length", fmt.Sprint(cycleLength))
	tbl.SetRow(3, "transition degree", fmt.Sprint(r.TransitionDegree))
	tbl.SetRow(4, "evaluation degree", fmt.Sprint(r.EvaluationDegree))
	tbl.SetRow(5, "composition domain", fmt.Sprint(r.CompositionDomainSize))
	tbl.Print()

	fmt.Printf("registers: %d input, %d mask, %d cyclic\n", r.InputRegisters, r.MaskRegisters, r.CyclicRegisters)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("export", "main", "the export to analyze")
}
