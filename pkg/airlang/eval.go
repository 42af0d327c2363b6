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
package airlang

import "github.com/consensys/air-assembly/pkg/field"

// Environment supplies the runtime bindings an expression tree needs in
// order to evaluate: the procedure/function's constants, locals,
// parameters, visible trace rows and static register bank.
// Implementations are built per evaluation (one per trace step, or one per
// domain point during constraint evaluation).
type Environment interface {
	// Const returns the value bound to constant slot i.
	Const(i uint) Value
	// Local returns the value currently bound to local slot i (the result
	// of the most recent store into that slot).
	Local(i uint) Value
	// Param returns the value bound to parameter slot i for this call.
	Param(i uint) Value
	// Trace returns the visible trace row at offset i (0 <= i < span):
	// offset 0 is always the current row, offset 1 (only visible to an
	// evaluation procedure) is the next row.
	Trace(i uint) Value
	// Static returns the value of static register i at the current step.
	Static(i uint) field.Element
	// Call invokes fn with the supplied argument values and returns its
	// result. Used to evaluate CallExpression nodes.
	Call(fn *Function, args []Value) (Value, error)
}

// frame is the concrete Environment used both to run a Function body and to
// evaluate a transition/evaluation procedure's statements.
type frame struct {
	constants []Value
	locals    []Value
	params    []Value
	rows      []Value // trace rows visible at this evaluation point, indexed by offset
	static    []field.Element
	functions map[string]*Function
}

// NewFrame constructs an Environment for a single evaluation: constants
// shared across the whole schema, the visible trace rows (length == span of
// the enclosing procedure), and the static register values at this step.
func NewFrame(constants []Value, rows []Value, static []field.Element, functions map[string]*Function) *frame {
	return &frame{
		constants: constants,
		rows:      rows,
		static:    static,
		functions: functions,
	}
}

// Const implements Environment.
func (f *frame) Const(i uint) Value { return f.constants[i] }

// Local implements Environment.
func (f *frame) Local(i uint) Value { return f.locals[i] }

// Param implements Environment.
func (f *frame) Param(i uint) Value { return f.params[i] }

// Trace implements Environment.
func (f *frame) Trace(i uint) Value { return f.rows[i] }

// Static implements Environment.
func (f *frame) Static(i uint) field.Element { return f.static[i] }

// Call implements Environment, invoking fn in a fresh child frame that
// shares this frame's constants, trace rows and static bank but binds its
// own locals and parameters.
func (f *frame) Call(fn *Function, args []Value) (Value, error) {
	child := &frame{
		constants: f.constants,
		locals:    make([]Value, len(fn.Locals)),
		params:    args,
		rows:      f.rows,
		static:    f.static,
		functions: f.functions,
	}

	return fn.Run(child)
}

// growLocals ensures the frame's local slot array has room for n entries,
// growing it in place. Used by StoreOperation execution.
func (f *frame) growLocals(n uint) {
	for uint(len(f.locals)) < n {
		f.locals = append(f.locals, Value{})
	}
}

// SetLocal binds the value of local slot i, invoked during StoreOperation
// execution.
func (f *frame) SetLocal(i uint, v Value) {
	f.growLocals(i + 1)
	f.locals[i] = v
}
