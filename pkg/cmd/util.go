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
	"strings"

	"github.com/consensys/air-assembly/pkg/compiler"
	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/consensys/air-assembly/pkg/source"
	"github.com/consensys/air-assembly/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getUint64(cmd *cobra.Command, flag string) uint64 {
	r, err := cmd.Flags().GetUint64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// configureLogging sets the logrus level from the --verbose persistent flag,
// shared by every subcommand.
func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// compileFile reads and compiles filename, printing every syntax/build error
// with source context and exiting the process on failure.
func compileFile(filename string) *schema.Schema {
	stats := util.NewPerfStats()

	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	s, errs := compiler.Compile(filename, string(bytes))
	if len(errs) > 0 {
		for _, e := range errs {
			printSyntaxError(filename, &e)
		}

		os.Exit(1)
	}

	stats.Log(fmt.Sprintf("compiling %s", filename))

	return s
}

// printSyntaxError renders a source.SyntaxError with its offending line and a
// caret underneath the offending span.
func printSyntaxError(filename string, err *source.SyntaxError) {
	line := err.FirstEnclosingLine()
	span := err.Span()

	fmt.Printf("%s:%d: %s\n", filename, line.Number(), err.Message())
	fmt.Println(line.String())

	start := span.Start() - line.Start()
	if start < 0 {
		start = 0
	}

	length := span.Length()
	if length < 1 {
		length = 1
	}

	fmt.Println(strings.Repeat(" ", start) + strings.Repeat("^", length))
}
