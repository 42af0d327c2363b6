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

// Package schema implements the type-checked, frozen program: a
// Schema aggregates the field, constants, static register bank, the
// transition and evaluation procedures, functions and export declarations,
// and is the unit the proof executor and verifier both consume.
package schema

import (
	"fmt"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/sexp"
	"github.com/sirupsen/logrus"
)

// NamedConstant pairs a schema constant with its optional handle.
type NamedConstant struct {
	Handle string // empty if anonymous
	Value  airlang.Value
}

// Export is a top-level entry point declaration:
// its name, the cycle length of its trace, and how the initial row is
// derived.
type Export struct {
	Name        string
	CycleLength uint64
	Initializer []field.Element // literal initial row; the runtime-supplied seed is used instead when UseSeed is set
	UseSeed     bool
}

// Schema is the aggregated, type-checked AIR program. It is built
// incrementally through the Add*/Set* methods below, then frozen via
// Freeze, after which it is immutable and safe to share across goroutines.
type Schema struct {
	Field     *field.Field
	constants []NamedConstant
	bank      *register.Bank
	functions map[string]*airlang.Function
	funcOrder []string
	transition *airlang.Procedure
	evaluator  *airlang.Procedure
	exports    []Export
	frozen     bool
}

// New creates an empty, mutable Schema over the given field.
func New(f *field.Field) *Schema {
	return &Schema{
		Field:     f,
		functions: make(map[string]*airlang.Function),
	}
}

// AddConstant appends a named or anonymous constant, returning its index.
func (s *Schema) AddConstant(value airlang.Value, handle string) uint {
	s.mustNotBeFrozen("AddConstant")
	idx := uint(len(s.constants))
	s.constants = append(s.constants, NamedConstant{handle, value})

	return idx
}

// ConstantValues returns the schema's constants as a plain Value slice, the
// form airlang.Context expects.
func (s *Schema) ConstantValues() []airlang.Value {
	out := make([]airlang.Value, len(s.constants))
	for i, c := range s.constants {
		out[i] = c.Value
	}

	return out
}

// ConstantHandles returns the schema's constant handles in declaration
// order (empty string for anonymous constants).
func (s *Schema) ConstantHandles() []string {
	out := make([]string, len(s.constants))
	for i, c := range s.constants {
		out[i] = c.Handle
	}

	return out
}

// SetStaticRegisters installs the schema's static register bank.
func (s *Schema) SetStaticRegisters(bank *register.Bank) {
	s.mustNotBeFrozen("SetStaticRegisters")
	s.bank = bank
}

// Bank returns the schema's static register bank.
func (s *Schema) Bank() *register.Bank { return s.bank }

// AddFunction registers a named function, rejecting a duplicate handle.
func (s *Schema) AddFunction(fn *airlang.Function) error {
	s.mustNotBeFrozen("AddFunction")

	if _, ok := s.functions[fn.Name()]; ok {
		return airlang.NewArityError("duplicate function handle %q", fn.Name())
	}

	s.functions[fn.Name()] = fn
	s.funcOrder = append(s.funcOrder, fn.Name())
	logrus.Debugf("schema: registered function %q (width %d)", fn.Name(), fn.Width)

	return nil
}

// Functions returns the schema's functions, keyed by handle, for building a
// Context.
func (s *Schema) Functions() map[string]*airlang.Function { return s.functions }

// SetTransitionFunction installs the schema's single transition procedure.
func (s *Schema) SetTransitionFunction(p *airlang.Procedure) error {
	s.mustNotBeFrozen("SetTransitionFunction")

	if p.Kind != airlang.Transition {
		return airlang.NewTypeError("SetTransitionFunction: procedure is not a transition procedure")
	}

	s.transition = p

	return nil
}

// SetConstraintEvaluator installs the schema's single evaluation procedure.
func (s *Schema) SetConstraintEvaluator(p *airlang.Procedure) error {
	s.mustNotBeFrozen("SetConstraintEvaluator")

	if p.Kind != airlang.Evaluation {
		return airlang.NewTypeError("SetConstraintEvaluator: procedure is not an evaluation procedure")
	}

	s.evaluator = p

	return nil
}

// Transition returns the schema's transition procedure.
func (s *Schema) Transition() *airlang.Procedure { return s.transition }

// Evaluator returns the schema's evaluation procedure.
func (s *Schema) Evaluator() *airlang.Procedure { return s.evaluator }

// SetExports installs the schema's export declaration list. This is the
// final build step: calling it also runs freeze-time validation and marks
// the schema immutable.
func (s *Schema) SetExports(exports []Export) error {
	s.mustNotBeFrozen("SetExports")
	s.exports = exports

	return s.Freeze()
}

// Exports returns the schema's export declarations.
func (s *Schema) Exports() []Export { return s.exports }

// MainExport returns the required "main" export, or an error if absent.
func (s *Schema) MainExport() (*Export, error) {
	for i := range s.exports {
		if s.exports[i].Name == "main" {
			return &s.exports[i], nil
		}
	}

	return nil, airlang.NewUndefinedReference("schema has no \"main\" export")
}

// IsFrozen reports whether Freeze has completed successfully.
func (s *Schema) IsFrozen() bool { return s.frozen }

func (s *Schema) mustNotBeFrozen(op string) {
	if s.frozen {
		panic(fmt.Sprintf("schema: %s called after freeze", op))
	}
}

// Freeze runs the validation pass and, if it succeeds, marks the
// schema immutable. All violations are collected into a single error
// rather than stopping at the first failure.
func (s *Schema) Freeze() error {
	var errs []error

	errs = append(errs, s.checkHandleUniqueness()...)
	errs = append(errs, s.checkProcedures()...)
	errs = append(errs, s.checkExports()...)

	if len(errs) > 0 {
		return &FreezeError{errs}
	}

	s.frozen = true
	logrus.Debugf("schema: frozen (%d constants, %d functions, %d exports)", len(s.constants), len(s.functions), len(s.exports))

	return nil
}

func (s *Schema) checkHandleUniqueness() []error {
	var errs []error

	seen := make(map[string]bool)

	for _, c := range s.constants {
		if c.Handle == "" {
			continue
		}

		if seen[c.Handle] {
			errs = append(errs, airlang.NewArityError("duplicate constant handle %q", c.Handle))
		}

		seen[c.Handle] = true
	}

	if s.bank != nil {
		seen = make(map[string]bool)
		for _, r := range s.bank.Registers {
			if seen[r.Handle] {
				errs = append(errs, airlang.NewArityError("duplicate static register handle %q", r.Handle))
			}

			seen[r.Handle] = true
		}
	}

	return errs
}

func (s *Schema) checkProcedures() []error {
	var errs []error

	if s.transition == nil {
		errs = append(errs, airlang.NewUndefinedReference("schema has no transition procedure"))
	} else if s.transition.Span() != 1 {
		errs = append(errs, airlang.NewTypeError("transition procedure must have span 1, got %d", s.transition.Span()))
	}

	if s.evaluator == nil {
		errs = append(errs, airlang.NewUndefinedReference("schema has no evaluation procedure"))
	} else if s.evaluator.Span() != 2 {
		errs = append(errs, airlang.NewTypeError("evaluation procedure must have span 2, got %d", s.evaluator.Span()))
	}

	return errs
}

func (s *Schema) checkExports() []error {
	var errs []error

	if len(s.exports) == 0 {
		return []error{airlang.NewUndefinedReference("schema declares no exports")}
	}

	seen := make(map[string]bool)
	minCycle := s.minimumRegisterCycle()

	for _, e := range s.exports {
		if seen[e.Name] {
			errs = append(errs, airlang.NewArityError("duplicate export handle %q", e.Name))
		}

		seen[e.Name] = true

		if !isPowerOfTwo(e.CycleLength) {
			errs = append(errs, airlang.NewTypeError("export %q: cycleLength %d is not a power of two", e.Name, e.CycleLength))
		} else if e.CycleLength < minCycle {
			errs = append(errs, airlang.NewTypeError(
				"export %q: cycleLength %d is below the minimum cycle %d required by the register bank", e.Name, e.CycleLength, minCycle))
		}

		if e.Name == "main" && !e.UseSeed && e.Initializer == nil {
			errs = append(errs, airlang.NewArityError("export \"main\" must have an initializer"))
		}
	}

	if !seen["main"] {
		errs = append(errs, airlang.NewUndefinedReference("schema must export \"main\""))
	}

	return errs
}

// minimumRegisterCycle returns the smallest power-of-two trace length that
// accommodates every cyclic register's period in the bank.
func (s *Schema) minimumRegisterCycle() uint64 {
	var m uint64 = 1

	if s.bank == nil {
		return m
	}

	for _, r := range s.bank.Registers {
		if r.Kind == register.Cyclic && r.Period > m {
			m = r.Period
		}
	}

	return nextPowerOfTwo(m)
}

func isPowerOfTwo(n uint64) bool { return n > 0 && n&(n-1) == 0 }

func nextPowerOfTwo(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}

	return p
}

// FreezeError aggregates every violation found during Freeze rather than
// stopping at the first one encountered.
type FreezeError struct {
	Errors []error
}

func (e *FreezeError) Error() string {
	msg := fmt.Sprintf("schema: %d freeze error(s):", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n  - " + err.Error()
	}

	return msg
}

// Lisp renders the schema as an S-expression tree, the basis of String and
// Format. Only parts of it, such as the field form, follow the source
// grammar: static registers are rendered as key=value summaries, procedures
// omit their (width N) form, stores name slot numbers and exports write a
// bare seed, so Compile does not accept the rendering back.
func (s *Schema) Lisp() sexp.SExp {
	var elems []sexp.SExp

	elems = append(elems, sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("field"), sexp.NewSymbol("prime"), sexp.NewSymbol(s.Field.Modulus().String()),
	}))

	for _, c := range s.constants {
		elems = append(elems, constantLisp(c))
	}

	if s.bank != nil {
		for _, r := range s.bank.Registers {
			elems = append(elems, registerLisp(r))
		}
	}

	for _, name := range s.funcOrder {
		elems = append(elems, functionLisp(s.functions[name]))
	}

	if s.transition != nil {
		elems = append(elems, procedureLisp("transition", s.transition))
	}

	if s.evaluator != nil {
		elems = append(elems, procedureLisp("evaluation", s.evaluator))
	}

	for _, e := range s.exports {
		elems = append(elems, exportLisp(e))
	}

	return sexp.NewList(elems)
}

// String renders the schema's S-expression form (see Lisp) as a single
// unbroken line.
func (s *Schema) String() string {
	return s.Lisp().String(true)
}

// Format renders the schema's S-expression form (see Lisp) wrapped to fit
// within the given column width, one top-level form per line.
func (s *Schema) Format(width uint) string {
	f := sexp.NewFormatter(width)
	f.Add(&sexp.SFormatter{Head: "function", Priority: 1})
	f.Add(&sexp.SFormatter{Head: "transition", Priority: 1})
	f.Add(&sexp.SFormatter{Head: "evaluation", Priority: 1})
	f.Add(&sexp.LFormatter{Head: "vector", Priority: 2})
	f.Add(&sexp.LFormatter{Head: "matrix", Priority: 2})

	var out string

	for _, elem := range s.Lisp().(*sexp.List).Elements {
		out += f.Format(elem) + "\n"
	}

	return out
}
