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

// Package verify implements the verification surface: point
// evaluation of the constraint-evaluation procedure at a single challenge,
// given register values at that point and at the next trace-domain point.
package verify

import (
	"fmt"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/schema"
)

// InputShape describes, for each input register in bank order, whether the
// verifier must supply its value itself (public) or receive it from the
// prover (secret), passed to New.
type InputShape struct {
	Bank *register.Bank
}

// VerifierObject evaluates a frozen schema's evaluation procedure at a
// single challenge point, without ever materialising a full trace.
type VerifierObject struct {
	Schema *schema.Schema
	Shape  InputShape

	generator   field.Element // the trace-domain generator g
	traceLength uint64        // the execution domain size T the static registers were materialised over
}

// New constructs a VerifierObject from a frozen schema and input shape,
// exposing the trace-domain generator required to relate a challenge x to
// the next-row point x*g.
func New(s *schema.Schema, shape InputShape, traceLength uint64) (*VerifierObject, error) {
	if !s.IsFrozen() {
		return nil, fmt.Errorf("verify: schema is not frozen")
	}

	g, err := s.Field.RootOfUnity(traceLength)
	if err != nil {
		return nil, fmt.Errorf("verify: rootOfUnity: %w", err)
	}

	return &VerifierObject{s, shape, g, traceLength}, nil
}

// RootOfUnity returns the trace-domain generator g.
func (v *VerifierObject) RootOfUnity() field.Element { return v.generator }

// PublicStaticValue computes the value, at challenge point x, of a cyclic
// static register with literal values directly from its periodic formula,
// without ever materialising a full column. Mask registers, and cyclic
// registers generated from a PRNG seed, cannot be evaluated this way and
// must be supplied via secretValues in EvaluateConstraintsAt.
func (v *VerifierObject) PublicStaticValue(reg register.Register, x field.Element) (field.Element, error) {
	switch reg.Kind {
	case register.Cyclic:
		return evalCyclicAt(v.Schema.Field, reg, v.traceLength, x)
	case register.Mask:
		return field.Element{}, fmt.Errorf("verify: mask register %q requires a materialised source, supply via secretValues", reg.Handle)
	default:
		return field.Element{}, fmt.Errorf("verify: register %q is not public-evaluable", reg.Handle)
	}
}

// evalCyclicAt evaluates a cyclic register's value at an arbitrary field
// point x. The prover materialises a cyclic register by repeating its
// length-L block to fill the length-T execution domain, then interpolates
// that full length-T column: P(x) = Q(x^(T/L)), where Q is the length-L
// block's own interpolant. Evaluating Q(x) directly (skipping the
// exponent raise) disagrees with the prover whenever T != L, so the raise
// to x^(T/L) is required to match evaluateTransitionConstraints point for
// point.
func evalCyclicAt(f *field.Field, reg register.Register, traceLength uint64, x field.Element) (field.Element, error) {
	domain, err := f.Domain(reg.Period)
	if err != nil {
		return field.Element{}, err
	}

	block := reg.Values
	if block == nil {
		return field.Element{}, fmt.Errorf("verify: cyclic register %q has no literal values to evaluate at an arbitrary point", reg.Handle)
	}

	if reg.Period == 0 || traceLength%reg.Period != 0 {
		return field.Element{}, fmt.Errorf(
			"verify: cyclic register %q period %d does not divide trace length %d", reg.Handle, reg.Period, traceLength)
	}

	poly, err := f.InterpolateRoots(domain, block)
	if err != nil {
		return field.Element{}, err
	}

	return poly.Eval(x.ExpUint(traceLength / reg.Period)), nil
}

// EvaluateConstraintsAt evaluates the evaluation procedure at a single
// point x, given the trace row values at x and x*g, and any secret static
// register values the public formula cannot reconstruct. Returns the
// width-vector of constraint residues.
func (v *VerifierObject) EvaluateConstraintsAt(
	x field.Element, rowValues, nextRowValues []field.Element, secretValues map[string]field.Element,
) ([]field.Element, error) {
	evaluator := v.Schema.Evaluator()
	if evaluator == nil {
		return nil, fmt.Errorf("verify: schema has no evaluation procedure")
	}

	bank := v.Schema.Bank()

	static := make([]field.Element, 0)
	if bank != nil {
		static = make([]field.Element, len(bank.Registers))

		for i, reg := range bank.Registers {
			if sv, ok := secretValues[reg.Handle]; ok {
				static[i] = sv
				continue
			}

			val, err := v.PublicStaticValue(reg, x)
			if err != nil {
				return nil, fmt.Errorf("verify: static register %q: %w", reg.Handle, err)
			}

			static[i] = val
		}
	}

	env := airlang.NewFrame(
		v.Schema.ConstantValues(),
		[]airlang.Value{airlang.VectorValue(rowValues), airlang.VectorValue(nextRowValues)},
		static,
		v.Schema.Functions(),
	)

	result, err := evaluator.Run(env)
	if err != nil {
		return nil, fmt.Errorf("verify: evaluateConstraintsAt: %w", err)
	}

	return result.Cells, nil
}
