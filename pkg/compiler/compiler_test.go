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
package compiler

import (
	"testing"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/proof"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const worked96769 = `
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

func TestCompileWorkedExample(t *testing.T) {
	s, errs := Compile("worked.air", worked96769)
	require.Empty(t, errs)
	require.NotNil(t, s)

	require.True(t, s.IsFrozen())

	bank := s.Bank()
	require.NotNil(t, bank)
	assert.Equal(t, []string{"in0", "msk0", "cyc0"}, bank.Handles())

	main, err := s.MainExport()
	require.NoError(t, err)
	assert.Equal(t, uint64(16), main.CycleLength)
	assert.True(t, main.UseSeed)

	report := s.Analyze(main.CycleLength)
	assert.Equal(t, 1, report.InputRegisters)
	assert.Equal(t, 1, report.MaskRegisters)
	assert.Equal(t, 1, report.CyclicRegisters)
	assert.GreaterOrEqual(t, report.TransitionDegree, 3)
}

func TestCompileWorkedExampleGeneratesTrace(t *testing.T) {
	s, errs := Compile("worked.air", worked96769)
	require.Empty(t, errs)

	inst, err := proof.New(s, "main", 1)
	require.NoError(t, err)

	f := s.Field
	inputs := proof.InputValues{
		"in0": []field.Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)},
	}

	require.NoError(t, inst.InitProof(inputs))

	trace, err := inst.GenerateExecutionTrace([]field.Element{f.NewElement(3)})
	require.NoError(t, err)
	require.Len(t, trace, 16)
	require.Len(t, trace[0], 1)
	assert.True(t, trace[0][0].Equal(f.NewElement(3)))
}

func TestCompileRejectsUnknownTopLevelForm(t *testing.T) {
	_, errs := Compile("bad.air", `(field prime 96769) (bogus 1 2 3)`)
	assert.NotEmpty(t, errs)
}

func TestCompileRejectsMissingMainExport(t *testing.T) {
	src := `
(field prime 96769)
(transition (width 1) (result (vector (get (load.trace 0) 0))))
(evaluation (width 1) (result (vector (- (get (load.trace 1) 0) (get (load.trace 0) 0)))))
(export other 16 (init seed))
`
	_, errs := Compile("nomain.air", src)
	assert.NotEmpty(t, errs)
}
