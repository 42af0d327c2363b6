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
package proof

import (
	"testing"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/compiler"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workedSource = `
(field prime 96769)
(const $c0 3)
(static $in0 (input secret) (steps 16) (shift -1))
(static $msk0 (mask $in0))
(static $cyc0 (cycle (prng sha256 1298827075 16)))
(transition (width 1)
  (store.local $local0 (+ (^ (get (load.trace 0) 0) 3) (load.static $cyc0)))
  (result (vector (+ (* (load.local $local0) (load.static $msk0)) (load.static $in0)))))
(evaluation (width 1)
  (store.local $local0 (+ (^ (get (load.trace 0) 0) 3) (load.static $cyc0)))
  (result (vector (- (get (load.trace 1) 0) (+ (* (load.local $local0) (load.static $msk0)) (load.static $in0))))))
(export main 16 (init seed))
`

// buildWorkedInstance compiles a small worked example, runs it to
// ProofReady, and generates its execution trace from the literal seed [3].
func buildWorkedInstance(t *testing.T) (*AirInstance, [][]field.Element) {
	t.Helper()

	s, errs := compiler.Compile("worked.air", workedSource)
	require.Empty(t, errs)

	inst, err := New(s, "main", 1)
	require.NoError(t, err)

	f := s.Field
	inputs := InputValues{
		"in0": []field.Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)},
	}
	require.NoError(t, inst.InitProof(inputs))

	trace, err := inst.GenerateExecutionTrace([]field.Element{f.NewElement(3)})
	require.NoError(t, err)

	return inst, trace
}

func TestGenerateExecutionTraceStartsAtSeed(t *testing.T) {
	_, trace := buildWorkedInstance(t)

	require.Len(t, trace, 16)
	require.Len(t, trace[0], 1)
	assert.Equal(t, int64(3), trace[0][0].BigInt().Int64())
}

// TestEvaluationProcedureIsZeroOnEveryTraceRow checks that the evaluation
// procedure is zero, with wraparound, on every trace-domain row.
func TestEvaluationProcedureIsZeroOnEveryTraceRow(t *testing.T) {
	inst, trace := buildWorkedInstance(t)

	evaluator := inst.Schema.Evaluator()
	require.NotNil(t, evaluator)

	rows := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

	for _, row := range rows {
		next := (row + 1) % inst.traceLength

		env := airlang.NewFrame(
			inst.Schema.ConstantValues(),
			[]airlang.Value{airlang.VectorValue(trace[row]), airlang.VectorValue(trace[next])},
			inst.staticRow(row),
			inst.Schema.Functions(),
		)

		result, err := evaluator.Run(env)
		require.NoError(t, err)

		for j, cell := range result.Cells {
			assert.True(t, cell.IsZero(), "row %d cell %d: expected zero residue, got %s", row, j, cell.BigInt())
		}
	}
}

// TestInterpolateTraceRoundTripsAtExecutionDomain checks that the
// interpolated trace column, evaluated back at each execution-domain root,
// reproduces the original trace value at that row.
func TestInterpolateTraceRoundTripsAtExecutionDomain(t *testing.T) {
	inst, trace := buildWorkedInstance(t)

	polys, err := inst.InterpolateTrace(trace)
	require.NoError(t, err)
	require.Len(t, polys, 1)

	for i, x := range inst.executionDomain {
		assert.True(t, polys[0].Eval(x).Equal(trace[i][0]), "row %d", i)
	}
}
