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
	"fmt"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/sexp"
	"github.com/consensys/air-assembly/pkg/source"
)

// buildBody translates a procedure/function body: zero or more
// (store.local $handle <expr>) forms followed by exactly one (result
// <expr>) form. Stores execute in declared order before the final result
// expression is evaluated.
func buildBody(tr *sexp.Translator[airlang.Expr], ctx *airlang.Context, forms []sexp.SExp) ([]airlang.StoreOperation, airlang.Expr, error) {
	var (
		body   []airlang.StoreOperation
		result airlang.Expr
	)

	for i, sx := range forms {
		l := sx.AsList()
		if l == nil || len(l.Elements) == 0 {
			return nil, nil, fmt.Errorf("expected a store.local or result form")
		}

		head, ok := symbolOf(l.Elements[0])
		if !ok {
			return nil, nil, fmt.Errorf("expected a store.local or result form")
		}

		switch head {
		case "store.local":
			if result != nil {
				return nil, nil, fmt.Errorf("store.local may not follow result")
			}

			if len(l.Elements) != 3 {
				return nil, nil, fmt.Errorf("store.local requires a handle and a value expression")
			}

			handleTok, ok := symbolOf(l.Elements[1])
			if !ok {
				return nil, nil, fmt.Errorf("store.local: expected a handle")
			}

			handle, ok := asHandle(handleTok)
			if !ok {
				return nil, nil, fmt.Errorf("store.local: malformed handle %q", handleTok)
			}

			val, errs := tr.Translate(l.Elements[2])
			if len(errs) > 0 {
				return nil, nil, &errs[0]
			}

			body = append(body, *ctx.Store(handle, val))
		case "result":
			if i != len(forms)-1 {
				return nil, nil, fmt.Errorf("result must be the final form")
			}

			if len(l.Elements) != 2 {
				return nil, nil, fmt.Errorf("result requires exactly one expression")
			}

			val, errs := tr.Translate(l.Elements[1])
			if len(errs) > 0 {
				return nil, nil, &errs[0]
			}

			result = val
		default:
			return nil, nil, fmt.Errorf("unrecognised form %q in body", head)
		}
	}

	if result == nil {
		return nil, nil, fmt.Errorf("missing result form")
	}

	return body, result, nil
}

// buildFunctions translates every top-level (function $name (param $x)...
// <body>) form.
func (c *compiler) buildFunctions(forms []*sexp.List) []source.SyntaxError {
	for _, l := range forms {
		if err := c.buildFunction(l); err != nil {
			return c.wrap(l, err)
		}
	}

	return nil
}

func (c *compiler) buildFunction(l *sexp.List) error {
	if len(l.Elements) < 2 {
		return fmt.Errorf("function: missing name")
	}

	nameTok, ok := symbolOf(l.Elements[1])
	if !ok {
		return fmt.Errorf("function: expected a handle")
	}

	name, ok := asHandle(nameTok)
	if !ok {
		return fmt.Errorf("function: malformed handle %q", nameTok)
	}

	ctx := airlang.NewFunctionContext(c.schema.ConstantValues(), c.schema.ConstantHandles(), c.schema.Functions())

	rest := l.Elements[2:]

	i := 0
	for i < len(rest) {
		pl := rest[i].AsList()
		if pl == nil || len(pl.Elements) != 2 {
			break
		}

		tag, ok := symbolOf(pl.Elements[0])
		if !ok || tag != "param" {
			break
		}

		handleTok, ok := symbolOf(pl.Elements[1])
		if !ok {
			return fmt.Errorf("function %q: malformed parameter", name)
		}

		handle, ok := asHandle(handleTok)
		if !ok {
			return fmt.Errorf("function %q: malformed parameter handle %q", name, handleTok)
		}

		// Parameter shape is always scalar in this grammar; vector/matrix
		// parameters are declared via their call-site argument shape and
		// widened on first use is not supported, so scalar is the only
		// shape a bare handle can unambiguously declare here.
		if _, err := ctx.DeclareParam(handle, airlang.Scalar()); err != nil {
			return err
		}

		i++
	}

	tr := newExprTranslator(c.srcfile, c.srcmap, c.field, ctx, 0)

	body, result, err := buildBody(tr, ctx, rest[i:])
	if err != nil {
		return err
	}

	if !result.Dims().IsVector() {
		return fmt.Errorf("function %q: result must be a vector, found %v", name, result.Dims())
	}

	width := result.Dims().Len()

	fn, err := ctx.BuildFunctionBody(name, body, result, width)
	if err != nil {
		return err
	}

	return c.schema.AddFunction(fn)
}

// buildTransition translates the single (transition (width N) <body>) form.
func (c *compiler) buildTransition(l *sexp.List) error {
	proc, err := c.buildProcedure(airlang.Transition, l)
	if err != nil {
		return err
	}

	return c.schema.SetTransitionFunction(proc)
}

// buildEvaluation translates the single (evaluation (width N) <body>) form.
func (c *compiler) buildEvaluation(l *sexp.List) error {
	proc, err := c.buildProcedure(airlang.Evaluation, l)
	if err != nil {
		return err
	}

	return c.schema.SetConstraintEvaluator(proc)
}

func (c *compiler) buildProcedure(kind airlang.ProcedureKind, l *sexp.List) (*airlang.Procedure, error) {
	if len(l.Elements) < 2 {
		return nil, fmt.Errorf("%s: missing (width N) declaration", kindName(kind))
	}

	widthList := l.Elements[1].AsList()
	if widthList == nil || len(widthList.Elements) != 2 {
		return nil, fmt.Errorf("%s: expected (width N) as the first form", kindName(kind))
	}

	tag, ok := symbolOf(widthList.Elements[0])
	if !ok || tag != "width" {
		return nil, fmt.Errorf("%s: expected (width N) as the first form", kindName(kind))
	}

	widthTok, ok := symbolOf(widthList.Elements[1])
	if !ok {
		return nil, fmt.Errorf("%s: malformed width", kindName(kind))
	}

	width, err := parseUint(widthTok)
	if err != nil {
		return nil, fmt.Errorf("%s: width: %w", kindName(kind), err)
	}

	var staticHandles []string
	if bank := c.schema.Bank(); bank != nil {
		staticHandles = bank.Handles()
	}

	ctx := airlang.NewProcedureContext(kind, c.schema.ConstantValues(), c.schema.ConstantHandles(), staticHandles, c.schema.Functions())
	tr := newExprTranslator(c.srcfile, c.srcmap, c.field, ctx, uint(width))

	body, result, err := buildBody(tr, ctx, l.Elements[2:])
	if err != nil {
		return nil, err
	}

	return ctx.BuildProcedure(kind, body, result)
}

func kindName(kind airlang.ProcedureKind) string {
	if kind == airlang.Transition {
		return "transition"
	}

	return "evaluation"
}
