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

// Package proof implements the proof-side executor ("AIR instance"),
// execution trace generation, polynomial interpolation over the trace
// domain, and constraint-composition evaluation over a higher-rate
// composition domain.
package proof

import (
	"fmt"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/sirupsen/logrus"
)

// State is the AirInstance lifecycle state.
type State uint8

// AirInstance states.
const (
	Initialized State = iota
	ProofReady
)

// InputValues supplies, keyed by register handle, the raw witness column to
// materialise for every input register, public or secret. InitProof validates each column's shape
// against the register's declared Steps before materialising it.
type InputValues map[string][]field.Element

// AirInstance is the proof-side executor for one export of a frozen
// schema, implementing the Initialized -> ProofReady state machine.
type AirInstance struct {
	Schema          *schema.Schema
	Export          *schema.Export
	ExtensionFactor uint64

	state State

	traceLength       uint64
	executionDomain   []field.Element
	compositionDomain []field.Element
	evaluationDomain  []field.Element

	traceGenerator field.Element // g: the executionDomain's multiplicative generator

	staticTraces         [][]field.Element // one column per static register, over executionDomain
	secretRegisterTraces map[string][]field.Element
}

// TraceGenerator returns the trace domain's multiplicative generator g.
func (a *AirInstance) TraceGenerator() field.Element { return a.traceGenerator }

// ExecutionDomain returns the order-T roots of unity the trace is defined over.
func (a *AirInstance) ExecutionDomain() []field.Element { return a.executionDomain }

// CompositionDomain returns the composition-domain roots of unity.
func (a *AirInstance) CompositionDomain() []field.Element { return a.compositionDomain }

// EvaluationDomain returns the evaluation-domain roots of unity.
func (a *AirInstance) EvaluationDomain() []field.Element { return a.evaluationDomain }

// SecretRegisterTraces returns the materialised secret input register
// columns, keyed by handle.
func (a *AirInstance) SecretRegisterTraces() map[string][]field.Element { return a.secretRegisterTraces }

// New constructs an AirInstance for the given export of a frozen schema.
func New(s *schema.Schema, exportName string, extensionFactor uint64) (*AirInstance, error) {
	if !s.IsFrozen() {
		return nil, fmt.Errorf("proof: schema is not frozen")
	}

	var export *schema.Export

	for _, e := range s.Exports() {
		if e.Name == exportName {
			e := e
			export = &e

			break
		}
	}

	if export == nil {
		return nil, airlang.NewUndefinedReference("no export named %q", exportName)
	}

	return &AirInstance{Schema: s, Export: export, ExtensionFactor: extensionFactor, state: Initialized}, nil
}

// InitProof validates inputs against the export's register set, computes
// the three domains, and materialises the static register traces
// and the secret register traces, entering ProofReady.
func (a *AirInstance) InitProof(inputs InputValues) error {
	bank := a.Schema.Bank()
	f := a.Schema.Field

	a.traceLength = a.Export.CycleLength

	g, err := f.RootOfUnity(a.traceLength)
	if err != nil {
		return fmt.Errorf("proof: executionDomain: %w", err)
	}

	a.executionDomain, err = f.Domain(a.traceLength)
	if err != nil {
		return err
	}

	rep := a.Schema.Analyze(a.traceLength)
	compositionSize := rep.CompositionDomainSize

	if compositionSize < a.traceLength {
		compositionSize = a.traceLength
	}

	a.compositionDomain, err = f.Domain(compositionSize)
	if err != nil {
		return fmt.Errorf("proof: compositionDomain: %w", err)
	}

	evalSize := a.traceLength * a.ExtensionFactor
	if evalSize < compositionSize {
		evalSize = compositionSize
	}

	a.evaluationDomain, err = f.Domain(evalSize)
	if err != nil {
		return fmt.Errorf("proof: evaluationDomain: %w", err)
	}

	a.traceGenerator = g

	traces, secretTraces, err := materialiseStaticTraces(f, bank, inputs, a.traceLength)
	if err != nil {
		return err
	}

	a.staticTraces = traces
	a.secretRegisterTraces = secretTraces
	a.state = ProofReady

	logrus.Debugf("proof: initProof export=%q T=%d compositionSize=%d evalSize=%d",
		a.Export.Name, a.traceLength, compositionSize, evalSize)

	return nil
}

// materialiseStaticTraces computes one column per register in bank order,
// following the fixed ordering (inputs, masks, cyclic) already
// baked into Bank, and separately retains the secret input columns so the
// prover can commit to them independently.
func materialiseStaticTraces(
	f *field.Field, bank *register.Bank, inputs InputValues, steps uint64,
) ([][]field.Element, map[string][]field.Element, error) {
	if bank == nil {
		return nil, nil, nil
	}

	traces := make([][]field.Element, len(bank.Registers))
	inputTraces := make(map[string]*register.InputTrace, len(bank.Registers))
	secret := make(map[string][]field.Element)

	for i, reg := range bank.Registers {
		if reg.Kind != register.Input {
			continue
		}

		col, ok := inputs[reg.Handle]
		if !ok {
			return nil, nil, airlang.NewUndefinedReference("missing witness for input register %q", reg.Handle)
		}

		it, err := register.MaterialiseInput(f, reg, col, steps)
		if err != nil {
			return nil, nil, err
		}

		traces[i] = it.Values
		inputTraces[reg.Handle] = it

		if reg.Scope == register.Secret {
			secret[reg.Handle] = it.Values
		}
	}

	for i, reg := range bank.Registers {
		switch reg.Kind {
		case register.Mask:
			src := bank.Registers[reg.SourceIndex]

			source, ok := inputTraces[src.Handle]
			if !ok {
				return nil, nil, airlang.NewUndefinedReference("mask %q references unmaterialised input %q", reg.Handle, src.Handle)
			}

			traces[i] = register.MaterialiseMask(f, reg, source, steps)
		case register.Cyclic:
			var seq *register.PrngSequence
			if reg.Values == nil {
				seq = register.NewPrngSequence(f, reg.Seed)
			}

			traces[i] = register.MaterialiseCyclic(seq, reg, steps)
		}
	}

	return traces, secret, nil
}

// staticRow extracts the static register values at trace row i.
func (a *AirInstance) staticRow(i uint64) []field.Element {
	row := make([]field.Element, len(a.staticTraces))
	for j, col := range a.staticTraces {
		row[j] = col[i]
	}

	return row
}

// GenerateExecutionTrace simulates the transition function for T steps,
// starting from the export's initializer (or the supplied seed when the
// export declares `seed`), returning a width x T matrix in row-major trace
// order.
func (a *AirInstance) GenerateExecutionTrace(seed []field.Element) ([][]field.Element, error) {
	if a.state != ProofReady {
		return nil, fmt.Errorf("proof: generateExecutionTrace called before initProof")
	}

	width := a.Schema.Transition().Result.Dims().Len()
	trace := make([][]field.Element, a.traceLength)

	initial := a.Export.Initializer
	if a.Export.UseSeed {
		initial = seed
	}

	if uint64(len(initial)) != uint64(width) {
		return nil, airlang.NewTypeError("generateExecutionTrace: initial row has %d cells, expected %d", len(initial), width)
	}

	trace[0] = append([]field.Element(nil), initial...)

	transition := a.Schema.Transition()

	for i := uint64(0); i < a.traceLength; i++ {
		row := airlang.VectorValue(trace[i])
		static := a.staticRow(i)

		env := airlang.NewFrame(a.Schema.ConstantValues(), []airlang.Value{row}, static, a.Schema.Functions())

		result, err := transition.Run(env)
		if err != nil {
			return nil, fmt.Errorf("proof: transition step %d: %w", i, err)
		}

		next := (i + 1) % a.traceLength
		trace[next] = append([]field.Element(nil), result.Cells...)
	}

	return trace, nil
}
