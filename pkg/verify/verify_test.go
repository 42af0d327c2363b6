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
package verify

import (
	"math/big"
	"testing"

	"github.com/consensys/air-assembly/pkg/compiler"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/proof"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField(t *testing.T) *field.Field {
	t.Helper()

	f, err := field.NewField(big.NewInt(96769))
	require.NoError(t, err)

	return f
}

// expectedCyclicValue mirrors the prover's own path for a literal cyclic
// register: tile its block to the full execution domain, interpolate the
// resulting length-T column, and evaluate at x. This is what
// InterpolateStatic + EvaluateTransitionConstraints actually compute, and is
// the reference evalCyclicAt must agree with.
func expectedCyclicValue(t *testing.T, f *field.Field, reg register.Register, traceLength uint64, x field.Element) field.Element {
	t.Helper()

	domain, err := f.Domain(traceLength)
	require.NoError(t, err)

	col := register.MaterialiseCyclic(nil, reg, traceLength)

	poly, err := f.InterpolateRoots(domain, col)
	require.NoError(t, err)

	return poly.Eval(x)
}

// TestPublicStaticValueMatchesProverForLiteralCyclicRegister is a
// regression test for the case T=4, L=2, block=[a,b]: evaluating the
// block's own length-L interpolant directly at x disagrees with the
// prover's length-T column interpolant whenever T != L. PublicStaticValue
// must raise x to x^(T/L) before evaluating the block interpolant.
func TestPublicStaticValueMatchesProverForLiteralCyclicRegister(t *testing.T) {
	f := testField(t)

	reg := register.Register{
		Handle: "cyc0",
		Kind:   register.Cyclic,
		Values: []field.Element{f.NewElement(11), f.NewElement(17)},
		Period: 2,
	}

	const traceLength = 4

	g, err := f.RootOfUnity(traceLength)
	require.NoError(t, err)

	v := &VerifierObject{Schema: schema.New(f), traceLength: traceLength}

	tests := []struct {
		name string
		x    field.Element
	}{
		{"trace domain generator", g},
		{"arbitrary field point", f.RandomElement()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.PublicStaticValue(reg, tc.x)
			require.NoError(t, err)

			want := expectedCyclicValue(t, f, reg, traceLength, tc.x)
			assert.True(t, got.Equal(want), "got %s, want %s", got.BigInt(), want.BigInt())
		})
	}
}

func TestPublicStaticValueRejectsPeriodNotDividingTraceLength(t *testing.T) {
	f := testField(t)

	// Period 8 is itself a valid power-of-two domain size, but it does not
	// divide a trace length of 4: the T/L exponent raise is undefined.
	reg := register.Register{
		Handle: "cyc0",
		Kind:   register.Cyclic,
		Values: []field.Element{
			f.NewElement(1), f.NewElement(2), f.NewElement(3), f.NewElement(4),
			f.NewElement(5), f.NewElement(6), f.NewElement(7), f.NewElement(8),
		},
		Period: 8,
	}

	v := &VerifierObject{Schema: schema.New(f), traceLength: 4}

	_, err := v.PublicStaticValue(reg, f.NewElement(5))
	assert.Error(t, err)
}

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

// TestCompositionEvaluationAgreesWithVerifier checks that
// EvaluateTransitionConstraints(tracePolys, staticPolys)[k] agrees with
// EvaluateConstraintsAt(x, row(x), row(x*g), secretAt) at the matching
// composition-domain point x, given every static register's value from
// the same interpolated static polynomials the prover itself evaluated.
func TestCompositionEvaluationAgreesWithVerifier(t *testing.T) {
	s, errs := compiler.Compile("worked.air", workedSource)
	require.Empty(t, errs)

	f := s.Field

	inst, err := proof.New(s, "main", 1)
	require.NoError(t, err)

	inputs := proof.InputValues{
		"in0": []field.Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)},
	}
	require.NoError(t, inst.InitProof(inputs))

	trace, err := inst.GenerateExecutionTrace([]field.Element{f.NewElement(3)})
	require.NoError(t, err)

	tracePolys, err := inst.InterpolateTrace(trace)
	require.NoError(t, err)

	staticPolys, err := inst.InterpolateStatic()
	require.NoError(t, err)

	proverResults, err := inst.EvaluateTransitionConstraints(tracePolys, staticPolys)
	require.NoError(t, err)

	compositionDomain := inst.CompositionDomain()
	m := uint64(len(compositionDomain))
	traceLength := uint64(len(inst.ExecutionDomain()))
	shift := m / traceLength

	const k = uint64(2)
	kn := (k + shift) % m
	x := compositionDomain[k]
	xNext := compositionDomain[kn]

	row := make([]field.Element, len(tracePolys))
	for j, p := range tracePolys {
		row[j] = p.Eval(x)
	}

	nextRow := make([]field.Element, len(tracePolys))
	for j, p := range tracePolys {
		nextRow[j] = p.Eval(xNext)
	}

	bank := s.Bank()
	require.NotNil(t, bank)

	secretValues := make(map[string]field.Element, len(bank.Registers))
	for j, reg := range bank.Registers {
		secretValues[reg.Handle] = staticPolys[j].Eval(x)
	}

	v, err := New(s, InputShape{Bank: bank}, traceLength)
	require.NoError(t, err)

	verifierResult, err := v.EvaluateConstraintsAt(x, row, nextRow, secretValues)
	require.NoError(t, err)

	require.Len(t, verifierResult, len(proverResults[k]))

	for j := range verifierResult {
		assert.True(t, verifierResult[j].Equal(proverResults[k][j]),
			"cell %d: prover=%s verifier=%s", j, proverResults[k][j].BigInt(), verifierResult[j].BigInt())
	}
}
