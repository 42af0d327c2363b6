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
package schema

import (
	"math/big"
	"testing"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField(t *testing.T) *field.Field {
	t.Helper()

	f, err := field.NewField(big.NewInt(96769))
	require.NoError(t, err)

	return f
}

// buildMinimal constructs a schema with a trivial width-1 transition
// ("next = current") and evaluation ("next - current = 0") pair, so Freeze
// can be exercised without a full compiler pass.
func buildMinimal(t *testing.T, f *field.Field) *Schema {
	t.Helper()

	s := New(f)

	tctx := airlang.NewProcedureContext(airlang.Transition, nil, nil, nil, map[string]*airlang.Function{})
	cur, err := tctx.LoadTrace(0, 1)
	require.NoError(t, err)

	tResult, err := airlang.NewMakeVector([]airlang.Expr{mustGet(t, cur, 0)})
	require.NoError(t, err)

	tProc, err := tctx.BuildProcedure(airlang.Transition, nil, tResult)
	require.NoError(t, err)
	require.NoError(t, s.SetTransitionFunction(tProc))

	ectx := airlang.NewProcedureContext(airlang.Evaluation, nil, nil, nil, map[string]*airlang.Function{})
	row0, err := ectx.LoadTrace(0, 1)
	require.NoError(t, err)
	row1, err := ectx.LoadTrace(1, 1)
	require.NoError(t, err)

	diff, err := airlang.NewBinary(airlang.OpSub, mustGet(t, row1, 0), mustGet(t, row0, 0))
	require.NoError(t, err)

	eResult, err := airlang.NewMakeVector([]airlang.Expr{diff})
	require.NoError(t, err)

	eProc, err := ectx.BuildProcedure(airlang.Evaluation, nil, eResult)
	require.NoError(t, err)
	require.NoError(t, s.SetConstraintEvaluator(eProc))

	return s
}

func mustGet(t *testing.T, v airlang.Expr, idx uint) airlang.Expr {
	t.Helper()

	g, err := airlang.NewGetElement(v, idx)
	require.NoError(t, err)

	return g
}

func TestFreezeSucceedsWithValidExports(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)

	err := s.SetExports([]Export{{Name: "main", CycleLength: 16, UseSeed: true}})
	require.NoError(t, err)
	assert.True(t, s.IsFrozen())
}

func TestFreezeRejectsNonPowerOfTwoCycleLength(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)

	err := s.SetExports([]Export{{Name: "main", CycleLength: 17, UseSeed: true}})
	require.Error(t, err)

	var ferr *FreezeError
	require.ErrorAs(t, err, &ferr)
	assert.NotEmpty(t, ferr.Errors)
}

func TestFreezeRejectsMissingMainExport(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)

	err := s.SetExports([]Export{{Name: "other", CycleLength: 16, UseSeed: true}})
	assert.Error(t, err)
}

func TestFreezeRejectsDuplicateExportNames(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)

	err := s.SetExports([]Export{
		{Name: "main", CycleLength: 16, UseSeed: true},
		{Name: "main", CycleLength: 16, UseSeed: true},
	})
	assert.Error(t, err)
}

func TestMustNotBeFrozenPanicsAfterFreeze(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)

	require.NoError(t, s.SetExports([]Export{{Name: "main", CycleLength: 16, UseSeed: true}}))

	assert.Panics(t, func() {
		_ = s.AddConstant(airlang.ScalarValue(f.NewElement(1)), "late")
	})
}

func TestFormatRendersFieldAndProcedures(t *testing.T) {
	f := testField(t)
	s := buildMinimal(t, f)
	require.NoError(t, s.SetExports([]Export{{Name: "main", CycleLength: 16, UseSeed: true}}))

	rendered := s.Format(80)
	assert.Contains(t, rendered, "(field prime 96769)")
	assert.Contains(t, rendered, "transition")
	assert.Contains(t, rendered, "evaluation")
}
