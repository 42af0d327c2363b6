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
	"fmt"
	"runtime"
	"sync"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/sirupsen/logrus"
)

// transpose turns a T-length slice of width-vectors (row-major trace order)
// into `width` column slices of length T, the shape Field.InterpolateRoots
// expects (one polynomial per trace column).
func transpose(rows [][]field.Element) [][]field.Element {
	if len(rows) == 0 {
		return nil
	}

	width := len(rows[0])
	cols := make([][]field.Element, width)

	for j := 0; j < width; j++ {
		cols[j] = make([]field.Element, len(rows))
		for i, row := range rows {
			cols[j][i] = row[j]
		}
	}

	return cols
}

// InterpolateTrace interpolates every trace column over the execution
// domain, returning one polynomial per column. Columns are interpolated
// concurrently, bounded by GOMAXPROCS.
func (a *AirInstance) InterpolateTrace(trace [][]field.Element) ([]field.Polynomial, error) {
	return interpolateColumns(a.Schema.Field, transpose(trace), a.executionDomain)
}

// InterpolateStatic interpolates every static register column over the
// execution domain.
func (a *AirInstance) InterpolateStatic() ([]field.Polynomial, error) {
	return interpolateColumns(a.Schema.Field, a.staticTraces, a.executionDomain)
}

// interpolateColumns runs Field.InterpolateRoots over each column in its
// own goroutine, bounded by GOMAXPROCS via a semaphore.
func interpolateColumns(f *field.Field, cols [][]field.Element, domain []field.Element) ([]field.Polynomial, error) {
	out := make([]field.Polynomial, len(cols))
	errs := make([]error, len(cols))

	var wg sync.WaitGroup

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for i, col := range cols {
		wg.Add(1)

		go func(i int, col []field.Element) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			p, err := f.InterpolateRoots(domain, col)
			out[i] = p
			errs[i] = err
		}(i, col)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("proof: interpolate: %w", err)
		}
	}

	return out, nil
}

// EvaluateTransitionConstraints evaluates the evaluation procedure across
// every point of the composition domain: for domain point
// x = h^k (h the composition domain's generator), row = tracePolys(x),
// rowNext = tracePolys(g·x) where g is the trace-domain generator, and
// staticRow = staticPolys(x). The composition domain has order M, a
// multiple of the trace length T, so g·h^k = h^(k + M/T); rowNext is
// therefore looked up at the shifted domain index rather than recomputed.
func (a *AirInstance) EvaluateTransitionConstraints(tracePolys, staticPolys []field.Polynomial) ([][]field.Element, error) {
	if a.state != ProofReady {
		return nil, fmt.Errorf("proof: evaluateTransitionConstraints called before initProof")
	}

	f := a.Schema.Field
	m := uint64(len(a.compositionDomain))

	if m%a.traceLength != 0 {
		return nil, fmt.Errorf("proof: composition domain size %d is not a multiple of trace length %d", m, a.traceLength)
	}

	shift := m / a.traceLength

	traceVals, err := f.EvalPolysAtRoots(tracePolys, a.compositionDomain)
	if err != nil {
		return nil, fmt.Errorf("proof: evaluate trace polys: %w", err)
	}

	staticVals, err := f.EvalPolysAtRoots(staticPolys, a.compositionDomain)
	if err != nil {
		return nil, fmt.Errorf("proof: evaluate static polys: %w", err)
	}

	evaluator := a.Schema.Evaluator()
	width := len(traceVals)
	constants := a.Schema.ConstantValues()
	functions := a.Schema.Functions()

	results := make([][]field.Element, m)
	errs := make([]error, m)

	var wg sync.WaitGroup

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for k := uint64(0); k < m; k++ {
		wg.Add(1)

		go func(k uint64) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			row := make([]field.Element, width)
			rowNext := make([]field.Element, width)
			kn := (k + shift) % m

			for j := 0; j < width; j++ {
				row[j] = traceVals[j][k]
				rowNext[j] = traceVals[j][kn]
			}

			static := make([]field.Element, len(staticVals))
			for j := range staticVals {
				static[j] = staticVals[j][k]
			}

			env := airlang.NewFrame(constants, []airlang.Value{airlang.VectorValue(row), airlang.VectorValue(rowNext)}, static, functions)

			res, err := evaluator.Run(env)
			if err != nil {
				errs[k] = err
				return
			}

			results[k] = res.Cells
		}(k)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("proof: evaluateTransitionConstraints: %w", err)
		}
	}

	logrus.Debugf("proof: evaluated %d composition-domain points, width %d", m, width)

	return results, nil
}
