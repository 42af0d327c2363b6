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

// Package compiler translates the S-expression "AIR assembly" concrete
// syntax into a *schema.Schema, by walking the sexp.SExp tree produced
// by pkg/sexp and calling the appropriate schema/airlang builder operations.
// It performs no semantic analysis of its own: every shape and degree check
// happens inside pkg/airlang at expression-construction time, and freeze-time
// validation happens inside pkg/schema when the export list is set.
package compiler

import (
	"fmt"
	"math/big"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/consensys/air-assembly/pkg/sexp"
	"github.com/consensys/air-assembly/pkg/source"
	"github.com/sirupsen/logrus"
)

type compiler struct {
	srcfile *source.File
	srcmap  *source.Map[sexp.SExp]

	field  *field.Field
	schema *schema.Schema

	exports []schema.Export
}

// Compile translates source text into a frozen Schema, or returns the
// syntax and build errors of the first stage that fails; later stages are
// not run. filename is used only for diagnostics.
func Compile(filename, text string) (*schema.Schema, []source.SyntaxError) {
	srcfile := source.NewSourceFile(filename, []byte(text))

	forms, srcmap, serr := sexp.ParseAll(srcfile)
	if serr != nil {
		return nil, []source.SyntaxError{*serr}
	}

	c := &compiler{srcfile: srcfile, srcmap: srcmap}

	fieldForm, constForms, staticForms, functionForms, transitionForm, evaluationForm, exportForms, errs :=
		classifyForms(forms)
	if len(errs) > 0 {
		return nil, toSyntaxErrors(c, forms, errs)
	}

	if fieldForm == nil {
		return nil, []source.SyntaxError{*srcfile.SyntaxError(source.NewSpan(0, 0), "missing (field prime ...) declaration")}
	}

	if err := c.buildField(fieldForm); err != nil {
		return nil, c.wrap(fieldForm, err)
	}

	c.schema = schema.New(c.field)

	if errs := c.buildConstants(constForms); errs != nil {
		return nil, errs
	}

	if err := c.buildBank(staticForms); err != nil {
		return nil, c.wrapAt(staticForms, err)
	}

	if errs := c.buildFunctions(functionForms); errs != nil {
		return nil, errs
	}

	if transitionForm == nil {
		return nil, []source.SyntaxError{*srcfile.SyntaxError(source.NewSpan(0, 0), "missing (transition ...) declaration")}
	}

	if err := c.buildTransition(transitionForm); err != nil {
		return nil, c.wrap(transitionForm, err)
	}

	if evaluationForm == nil {
		return nil, []source.SyntaxError{*srcfile.SyntaxError(source.NewSpan(0, 0), "missing (evaluation ...) declaration")}
	}

	if err := c.buildEvaluation(evaluationForm); err != nil {
		return nil, c.wrap(evaluationForm, err)
	}

	if errs := c.buildExports(exportForms); errs != nil {
		return nil, errs
	}

	if err := c.schema.SetExports(c.exports); err != nil {
		return nil, c.wrapAt(exportForms, err)
	}

	logrus.Debugf("compiler: compiled %q (%d top-level forms)", filename, len(forms))

	return c.schema, nil
}

// classifyForms buckets every top-level form by its keyword head.
func classifyForms(forms []sexp.SExp) (
	fieldForm *sexp.List, constForms, staticForms, functionForms []*sexp.List,
	transitionForm, evaluationForm *sexp.List, exportForms []*sexp.List, errs []formError,
) {
	for _, f := range forms {
		l := f.AsList()
		if l == nil || len(l.Elements) == 0 {
			errs = append(errs, formError{f, "expected a top-level list form"})
			continue
		}

		head, ok := symbolOf(l.Elements[0])
		if !ok {
			errs = append(errs, formError{f, "expected a top-level list form"})
			continue
		}

		switch head {
		case "field":
			fieldForm = l
		case "const":
			constForms = append(constForms, l)
		case "static":
			staticForms = append(staticForms, l)
		case "function":
			functionForms = append(functionForms, l)
		case "transition":
			transitionForm = l
		case "evaluation":
			evaluationForm = l
		case "export":
			exportForms = append(exportForms, l)
		default:
			errs = append(errs, formError{f, fmt.Sprintf("unrecognised top-level form %q", head)})
		}
	}

	return
}

type formError struct {
	form sexp.SExp
	msg  string
}

func (c *compiler) buildField(l *sexp.List) error {
	if len(l.Elements) != 3 {
		return fmt.Errorf("field: expected (field prime <modulus>)")
	}

	tag, ok := symbolOf(l.Elements[1])
	if !ok || tag != "prime" {
		return fmt.Errorf("field: expected keyword 'prime'")
	}

	tok, ok := symbolOf(l.Elements[2])
	if !ok {
		return fmt.Errorf("field: malformed modulus")
	}

	modulus, ok := new(big.Int).SetString(tok, 0)
	if !ok {
		return fmt.Errorf("field: invalid modulus %q", tok)
	}

	f, err := field.NewField(modulus)
	if err != nil {
		return err
	}

	c.field = f

	return nil
}

func (c *compiler) buildConstants(forms []*sexp.List) []source.SyntaxError {
	for _, l := range forms {
		if len(l.Elements) < 2 {
			return c.wrap(l, fmt.Errorf("const: malformed declaration"))
		}

		rest := l.Elements[1:]
		handle := ""

		if h, ok := symbolOf(rest[0]); ok {
			if stripped, isHandle := asHandle(h); isHandle {
				handle = stripped
				rest = rest[1:]
			}
		}

		if len(rest) != 1 {
			return c.wrap(l, fmt.Errorf("const %q: expected a single literal value", handle))
		}

		v, err := parseLiteralValue(c.field, rest[0])
		if err != nil {
			return c.wrap(l, fmt.Errorf("const %q: %w", handle, err))
		}

		c.schema.AddConstant(v, handle)
	}

	return nil
}

func (c *compiler) wrap(at sexp.SExp, err error) []source.SyntaxError {
	if err == nil {
		return nil
	}

	return []source.SyntaxError{*c.srcfile.SyntaxError(c.spanOf(at), err.Error())}
}

func (c *compiler) wrapAt(forms []*sexp.List, err error) []source.SyntaxError {
	if len(forms) == 0 {
		return []source.SyntaxError{*c.srcfile.SyntaxError(source.NewSpan(0, 0), err.Error())}
	}

	return c.wrap(forms[0], err)
}

func (c *compiler) spanOf(sx sexp.SExp) source.Span {
	return c.srcmap.Get(sx)
}

func toSyntaxErrors(c *compiler, _ []sexp.SExp, errs []formError) []source.SyntaxError {
	out := make([]source.SyntaxError, len(errs))
	for i, e := range errs {
		out[i] = *c.srcfile.SyntaxError(c.spanOf(e.form), e.msg)
	}

	return out
}
