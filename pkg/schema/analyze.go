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

import "github.com/consensys/air-assembly/pkg/register"

// Report summarizes a schema's per-procedure declared constraint degree,
// the composition domain size it implies, and its register counts.
type Report struct {
	TransitionDegree      int
	EvaluationDegree      int
	CompositionDomainSize uint64
	InputRegisters        int
	CyclicRegisters       int
	MaskRegisters         int
}

// Analyze computes a Report for a frozen schema. The maximum constraint
// cell degree times traceLength gives the composition domain size, rounded
// up to the next power of two. traceLength is the concrete trace length
// chosen for the analysis (callers pass the declared cycle length of the
// export being analyzed).
func (s *Schema) Analyze(traceLength uint64) Report {
	r := Report{}

	if s.transition != nil {
		r.TransitionDegree = s.transition.Result.Deg().Max()
	}

	if s.evaluator != nil {
		r.EvaluationDegree = s.evaluator.Result.Deg().Max()
	}

	maxDeg := r.TransitionDegree
	if r.EvaluationDegree > maxDeg {
		maxDeg = r.EvaluationDegree
	}

	r.CompositionDomainSize = nextPowerOfTwo(uint64(maxDeg) * traceLength)

	if s.bank != nil {
		for _, reg := range s.bank.Registers {
			switch reg.Kind {
			case register.Input:
				r.InputRegisters++
			case register.Cyclic:
				r.CyclicRegisters++
			case register.Mask:
				r.MaskRegisters++
			}
		}
	}

	return r
}
