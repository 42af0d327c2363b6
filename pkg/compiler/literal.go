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
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/air-assembly/pkg/airlang"
	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/sexp"
)

// asHandle strips the leading "$" off a handle token; handles are always
// written with a leading $ in source.
func asHandle(tok string) (string, bool) {
	if !strings.HasPrefix(tok, "$") || len(tok) < 2 {
		return "", false
	}

	return tok[1:], true
}

// symbolOf returns the bare text of sx if it is a Symbol.
func symbolOf(sx sexp.SExp) (string, bool) {
	sym := sx.AsSymbol()
	if sym == nil {
		return "", false
	}

	return sym.Value, true
}

// parseBigInt parses a decimal or "0x"-prefixed hexadecimal integer literal,
// with an optional leading "-" sign.
func parseBigInt(tok string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(tok, 0)
	return v, ok
}

// parseFieldScalar parses tok as a field element over f.
func parseFieldScalar(f *field.Field, tok string) (field.Element, bool) {
	v, ok := parseBigInt(tok)
	if !ok {
		return field.Element{}, false
	}

	return f.NewElementFromBigInt(v), true
}

// parseUint parses a non-negative integer token (decimal or 0x-prefixed).
func parseUint(tok string) (uint64, error) {
	v, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("expected non-negative integer, found %q", tok)
	}

	return v, nil
}

// parseInt parses a signed integer token (decimal or 0x-prefixed, optionally
// negated).
func parseInt(tok string) (int64, error) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, found %q", tok)
	}

	return v, nil
}

// parseLiteralValue parses a constant literal: a bare
// numeric symbol (scalar), a (vector e...) list, or a (matrix (row e...)...)
// list of field element literals.
func parseLiteralValue(f *field.Field, sx sexp.SExp) (airlang.Value, error) {
	if sym, ok := symbolOf(sx); ok {
		v, ok := parseFieldScalar(f, sym)
		if !ok {
			return airlang.Value{}, fmt.Errorf("invalid scalar literal %q", sym)
		}

		return airlang.ScalarValue(v), nil
	}

	l := sx.AsList()
	if l == nil || len(l.Elements) == 0 {
		return airlang.Value{}, fmt.Errorf("invalid literal value")
	}

	head, ok := symbolOf(l.Elements[0])
	if !ok {
		return airlang.Value{}, fmt.Errorf("invalid literal value")
	}

	switch head {
	case "vector":
		cells := make([]field.Element, len(l.Elements)-1)

		for i, e := range l.Elements[1:] {
			sym, ok := symbolOf(e)
			if !ok {
				return airlang.Value{}, fmt.Errorf("vector literal element %d is not a scalar", i)
			}

			v, ok := parseFieldScalar(f, sym)
			if !ok {
				return airlang.Value{}, fmt.Errorf("invalid scalar literal %q", sym)
			}

			cells[i] = v
		}

		return airlang.VectorValue(cells), nil
	case "matrix":
		rows := make([][]field.Element, len(l.Elements)-1)

		for i, rowExp := range l.Elements[1:] {
			rowList := rowExp.AsList()
			if rowList == nil || len(rowList.Elements) == 0 {
				return airlang.Value{}, fmt.Errorf("matrix literal row %d is malformed", i)
			}

			if h, ok := symbolOf(rowList.Elements[0]); !ok || h != "row" {
				return airlang.Value{}, fmt.Errorf("matrix literal row %d must start with 'row'", i)
			}

			cells := make([]field.Element, len(rowList.Elements)-1)

			for j, e := range rowList.Elements[1:] {
				sym, ok := symbolOf(e)
				if !ok {
					return airlang.Value{}, fmt.Errorf("matrix literal cell (%d,%d) is not a scalar", i, j)
				}

				v, ok := parseFieldScalar(f, sym)
				if !ok {
					return airlang.Value{}, fmt.Errorf("invalid scalar literal %q", sym)
				}

				cells[j] = v
			}

			rows[i] = cells
		}

		return airlang.MatrixValue(rows), nil
	default:
		return airlang.Value{}, fmt.Errorf("unrecognised literal form %q", head)
	}
}
