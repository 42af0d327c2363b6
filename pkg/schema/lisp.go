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

import (
	"fmt"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/sexp"
)

func sym(s string) *sexp.Symbol { return sexp.NewSymbol(s) }

func valueLisp(v airlang.Value) sexp.SExp {
	switch {
	case v.Dims.IsScalar():
		return sym(v.Scalar().String())
	case v.Dims.IsVector():
		elems := []sexp.SExp{sym("vector")}
		for _, c := range v.Cells {
			elems = append(elems, sym(c.String()))
		}

		return sexp.NewList(elems)
	default:
		rows := []sexp.SExp{sym("matrix")}
		for r := uint(0); r < v.Dims.Rows; r++ {
			row := []sexp.SExp{sym("row")}
			for c := uint(0); c < v.Dims.Cols; c++ {
				row = append(row, sym(v.MatrixAt(r, c).String()))
			}

			rows = append(rows, sexp.NewList(row))
		}

		return sexp.NewList(rows)
	}
}

func constantLisp(c NamedConstant) sexp.SExp {
	elems := []sexp.SExp{sym("const")}
	if c.Handle != "" {
		elems = append(elems, sym(c.Handle))
	}

	elems = append(elems, valueLisp(c.Value))

	return sexp.NewList(elems)
}

func registerLisp(r register.Register) sexp.SExp {
	switch r.Kind {
	case register.Input:
		scope := "secret"
		if r.Scope == register.Public {
			scope = "public"
		}

		return sexp.NewList([]sexp.SExp{
			sym("static"), sym(r.Handle), sym("input"), sym(scope),
			sym(fmt.Sprintf("steps=%d", r.Steps)), sym(fmt.Sprintf("shift=%d", r.Shift)),
		})
	case register.Cyclic:
		return sexp.NewList([]sexp.SExp{sym("static"), sym(r.Handle), sym("cyclic"), sym(fmt.Sprintf("period=%d", r.Period))})
	default: // register.Mask
		return sexp.NewList([]sexp.SExp{
			sym("static"), sym(r.Handle), sym("mask"), sym(fmt.Sprintf("source=%d", r.SourceIndex)), sym(fmt.Sprintf("inverted=%v", r.Inverted)),
		})
	}
}

func paramsLisp(params []airlang.Parameter) sexp.SExp {
	elems := []sexp.SExp{sym("params")}
	for _, p := range params {
		elems = append(elems, sym(fmt.Sprintf("%s:%s", p.Handle, p.Shape)))
	}

	return sexp.NewList(elems)
}

func storesLisp(body []airlang.StoreOperation) []sexp.SExp {
	out := make([]sexp.SExp, len(body))
	for i, op := range body {
		out[i] = sexp.NewList([]sexp.SExp{sym("store"), sym(fmt.Sprint(op.Slot)), op.Value.Lisp()})
	}

	return out
}

func functionLisp(fn *airlang.Function) sexp.SExp {
	elems := []sexp.SExp{sym("function"), sym(fn.Name()), paramsLisp(fn.Params)}
	elems = append(elems, storesLisp(fn.Body)...)
	elems = append(elems, fn.Result.Lisp())

	return sexp.NewList(elems)
}

func procedureLisp(keyword string, p *airlang.Procedure) sexp.SExp {
	elems := []sexp.SExp{sym(keyword)}
	elems = append(elems, storesLisp(p.Body)...)
	elems = append(elems, p.Result.Lisp())

	return sexp.NewList(elems)
}

func exportLisp(e Export) sexp.SExp {
	elems := []sexp.SExp{sym("export"), sym(e.Name), sym(fmt.Sprint(e.CycleLength))}

	switch {
	case e.UseSeed:
		elems = append(elems, sym("seed"))
	case e.Initializer != nil:
		init := []sexp.SExp{sym("vector")}
		for _, c := range e.Initializer {
			init = append(init, sym(c.String()))
		}

		elems = append(elems, sexp.NewList(init))
	}

	return sexp.NewList(elems)
}
