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
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/sexp"
	"github.com/consensys/air-assembly/pkg/source"
)

// newExprTranslator configures a sexp.Translator over the expression
// keywords (`+ - * / ^ prod neg inv vector matrix get slice load.*
// store.* call`), resolving every load/store/call against ctx. width
// is the trace row width, required to build a load.trace expression; it is
// zero for a function context, which has no trace access.
func newExprTranslator(
	srcfile *source.File, srcmap *source.Map[sexp.SExp], f *field.Field, ctx *airlang.Context, width uint,
) *sexp.Translator[airlang.Expr] {
	tr := sexp.NewTranslator[airlang.Expr](srcfile, srcmap)

	tr.AddSymbolRule(func(tok string) (airlang.Expr, bool, error) {
		v, ok := parseFieldScalar(f, tok)
		if !ok {
			return nil, false, nil
		}

		return airlang.NewLiteral(airlang.ScalarValue(v)), true, nil
	})

	addBinaryRule(tr, "+", airlang.OpAdd)
	addBinaryRule(tr, "-", airlang.OpSub)
	addBinaryRule(tr, "*", airlang.OpMul)
	addBinaryRule(tr, "/", airlang.OpDiv)
	addBinaryRule(tr, "^", airlang.OpExp)
	addBinaryRule(tr, "prod", airlang.OpProd)

	addUnaryRule(tr, "neg", airlang.OpNeg)
	addUnaryRule(tr, "inv", airlang.OpInv)

	tr.AddRecursiveListRule("vector", func(_ string, args []airlang.Expr) (airlang.Expr, error) {
		return airlang.NewMakeVector(args)
	})

	tr.AddListRule("matrix", func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		rows := make([][]airlang.Expr, 0, len(l.Elements)-1)

		for _, rowExp := range l.Elements[1:] {
			rowList := rowExp.AsList()
			if rowList == nil || len(rowList.Elements) == 0 {
				return nil, tr.SyntaxErrors(l, "matrix row is malformed")
			}

			if h, ok := symbolOf(rowList.Elements[0]); !ok || h != "row" {
				return nil, tr.SyntaxErrors(l, "matrix row must start with 'row'")
			}

			row := make([]airlang.Expr, 0, len(rowList.Elements)-1)

			for _, cellExp := range rowList.Elements[1:] {
				cell, errs := tr.Translate(cellExp)
				if len(errs) > 0 {
					return nil, errs
				}

				row = append(row, cell)
			}

			rows = append(rows, row)
		}

		m, err := airlang.NewMakeMatrix(rows)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return m, nil
	})

	tr.AddListRule("get", func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		if len(l.Elements) != 3 {
			return nil, tr.SyntaxErrors(l, "get requires a source and an index")
		}

		src, errs := tr.Translate(l.Elements[1])
		if len(errs) > 0 {
			return nil, errs
		}

		idxTok, ok := symbolOf(l.Elements[2])
		if !ok {
			return nil, tr.SyntaxErrors(l, "get: index must be a literal")
		}

		idx, err := parseUint(idxTok)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		e, err := airlang.NewGetElement(src, uint(idx))
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return e, nil
	})

	tr.AddListRule("slice", func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		if len(l.Elements) != 4 {
			return nil, tr.SyntaxErrors(l, "slice requires a source, start and end")
		}

		src, errs := tr.Translate(l.Elements[1])
		if len(errs) > 0 {
			return nil, errs
		}

		startTok, ok1 := symbolOf(l.Elements[2])
		endTok, ok2 := symbolOf(l.Elements[3])

		if !ok1 || !ok2 {
			return nil, tr.SyntaxErrors(l, "slice: start and end must be literals")
		}

		start, err := parseUint(startTok)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		end, err := parseUint(endTok)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		e, err := airlang.NewSlice(src, uint(start), uint(end))
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return e, nil
	})

	addLoadRule(tr, "load.const", func(handle string) (airlang.Expr, error) { return ctx.LoadConst(handle) })
	addLoadRule(tr, "load.param", func(handle string) (airlang.Expr, error) { return ctx.LoadParam(handle) })
	addLoadRule(tr, "load.local", func(handle string) (airlang.Expr, error) { return ctx.LoadLocal(handle) })
	addLoadRule(tr, "load.static", func(handle string) (airlang.Expr, error) { return ctx.LoadStatic(handle) })

	tr.AddListRule("load.trace", func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		if len(l.Elements) != 2 {
			return nil, tr.SyntaxErrors(l, "load.trace requires a single row offset")
		}

		tok, ok := symbolOf(l.Elements[1])
		if !ok {
			return nil, tr.SyntaxErrors(l, "load.trace: offset must be a literal")
		}

		offset, err := parseUint(tok)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		e, err := ctx.LoadTrace(uint(offset), width)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return e, nil
	})

	tr.AddListRule("call", func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		if len(l.Elements) < 2 {
			return nil, tr.SyntaxErrors(l, "call requires a function handle")
		}

		nameTok, ok := symbolOf(l.Elements[1])
		if !ok {
			return nil, tr.SyntaxErrors(l, "call: function reference must be a handle")
		}

		name, ok := asHandle(nameTok)
		if !ok {
			return nil, tr.SyntaxErrors(l, fmt.Sprintf("call: malformed function handle %q", nameTok))
		}

		fn, err := ctx.ResolveFunction(name)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		args := make([]airlang.Expr, 0, len(l.Elements)-2)

		for _, a := range l.Elements[2:] {
			arg, errs := tr.Translate(a)
			if len(errs) > 0 {
				return nil, errs
			}

			args = append(args, arg)
		}

		call, err := airlang.NewCall(fn, args)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return call, nil
	})

	return tr
}

func addBinaryRule(tr *sexp.Translator[airlang.Expr], name string, op airlang.BinaryOp) {
	tr.AddRecursiveListRule(name, func(_ string, args []airlang.Expr) (airlang.Expr, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s requires exactly two operands, got %d", name, len(args))
		}

		return airlang.NewBinary(op, args[0], args[1])
	})
}

func addUnaryRule(tr *sexp.Translator[airlang.Expr], name string, op airlang.UnaryOp) {
	tr.AddRecursiveListRule(name, func(_ string, args []airlang.Expr) (airlang.Expr, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s requires exactly one operand, got %d", name, len(args))
		}

		return airlang.NewUnary(op, args[0]), nil
	})
}

// addLoadRule wires a load.* keyword whose sole argument is a handle token
// (load.const/param/local/static), deferring resolution to ctx via resolve.
func addLoadRule(tr *sexp.Translator[airlang.Expr], name string, resolve func(handle string) (airlang.Expr, error)) {
	tr.AddListRule(name, func(l *sexp.List) (airlang.Expr, []source.SyntaxError) {
		if len(l.Elements) != 2 {
			return nil, tr.SyntaxErrors(l, fmt.Sprintf("%s requires a single handle argument", name))
		}

		tok, ok := symbolOf(l.Elements[1])
		if !ok {
			return nil, tr.SyntaxErrors(l, fmt.Sprintf("%s: argument must be a handle", name))
		}

		handle, ok := asHandle(tok)
		if !ok {
			return nil, tr.SyntaxErrors(l, fmt.Sprintf("%s: malformed handle %q", name, tok))
		}

		e, err := resolve(handle)
		if err != nil {
			return nil, tr.SyntaxErrors(l, err.Error())
		}

		return e, nil
	})
}
