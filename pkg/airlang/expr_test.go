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

import (
	"math/big"
	"testing"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField(t *testing.T) *field.Field {
	t.Helper()

	f, err := field.NewField(big.NewInt(96769))
	require.NoError(t, err)

	return f
}

func TestBinaryEvalAddMulSub(t *testing.T) {
	f := testField(t)
	lhs := NewLiteral(ScalarValue(f.NewElement(3)))
	rhs := NewLiteral(ScalarValue(f.NewElement(4)))

	add, err := NewBinary(OpAdd, lhs, rhs)
	require.NoError(t, err)

	v, err := add.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Equal(f.NewElement(7)))

	mul, err := NewBinary(OpMul, lhs, rhs)
	require.NoError(t, err)

	v, err = mul.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Equal(f.NewElement(12)))
}

func TestBinaryRejectsShapeMismatch(t *testing.T) {
	f := testField(t)
	long := NewLiteral(VectorValue([]field.Element{f.NewElement(1), f.NewElement(2), f.NewElement(3)}))
	vector := NewLiteral(VectorValue([]field.Element{f.NewElement(1), f.NewElement(2)}))

	_, err := NewBinary(OpMul, long, vector)
	assert.Error(t, err)
}

func TestExpRequiresLiteralExponent(t *testing.T) {
	f := testField(t)
	base := NewLiteral(ScalarValue(f.NewElement(3)))
	nonLiteralExp := NewUnary(OpNeg, NewLiteral(ScalarValue(f.NewElement(2))))

	_, err := NewBinary(OpExp, base, nonLiteralExp)
	assert.Error(t, err)

	exp := NewLiteral(ScalarValue(f.NewElement(3)))
	pow, err := NewBinary(OpExp, base, exp)
	require.NoError(t, err)

	v, err := pow.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Equal(f.NewElement(27)))
}

func TestUnaryNegAndInv(t *testing.T) {
	f := testField(t)
	three := NewLiteral(ScalarValue(f.NewElement(3)))

	neg := NewUnary(OpNeg, three)
	v, err := neg.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Equal(f.NewElement(-3)))

	inv := NewUnary(OpInv, three)
	v, err = inv.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Mul(f.NewElement(3)).Equal(f.One()))
}

func TestGetElementAndSlice(t *testing.T) {
	f := testField(t)
	cells := []field.Element{f.NewElement(1), f.NewElement(2), f.NewElement(3)}
	vec, err := NewMakeVector([]Expr{NewLiteral(ScalarValue(cells[0])), NewLiteral(ScalarValue(cells[1])), NewLiteral(ScalarValue(cells[2]))})
	require.NoError(t, err)

	get, err := NewGetElement(vec, 1)
	require.NoError(t, err)

	v, err := get.Eval(nil)
	require.NoError(t, err)
	assert.True(t, v.Scalar().Equal(f.NewElement(2)))

	_, err = NewGetElement(vec, 5)
	assert.Error(t, err)

	sl, err := NewSlice(vec, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, Vector(2), sl.Dims())

	sv, err := sl.Eval(nil)
	require.NoError(t, err)
	assert.True(t, sv.VectorAt(0).Equal(f.NewElement(2)))
	assert.True(t, sv.VectorAt(1).Equal(f.NewElement(3)))
}

func TestMakeMatrixRejectsRaggedRows(t *testing.T) {
	f := testField(t)
	row0 := []Expr{NewLiteral(ScalarValue(f.NewElement(1))), NewLiteral(ScalarValue(f.NewElement(2)))}
	row1 := []Expr{NewLiteral(ScalarValue(f.NewElement(3)))}

	_, err := NewMakeMatrix([][]Expr{row0, row1})
	assert.Error(t, err)
}

func TestCallBindsParamsByShape(t *testing.T) {
	f := testField(t)

	ctx := NewFunctionContext(nil, nil, map[string]*Function{})

	xParam, err := ctx.DeclareParam("x", Scalar())
	require.NoError(t, err)

	result, err := NewBinary(OpMul, xParam, xParam)
	require.NoError(t, err)

	vecResult, err := NewMakeVector([]Expr{result})
	require.NoError(t, err)

	square, err := ctx.BuildFunction("square", vecResult, 1)
	require.NoError(t, err)

	call, err := NewCall(square, []Expr{NewLiteral(ScalarValue(f.NewElement(5)))})
	require.NoError(t, err)

	env := NewFrame(nil, nil, nil, map[string]*Function{"square": square})

	v, err := call.Eval(env)
	require.NoError(t, err)
	assert.True(t, v.VectorAt(0).Equal(f.NewElement(25)))
}

func TestCallRejectsArgumentShapeMismatch(t *testing.T) {
	f := testField(t)

	ctx := NewFunctionContext(nil, nil, map[string]*Function{})

	xParam, err := ctx.DeclareParam("x", Scalar())
	require.NoError(t, err)

	vecResult, err := NewMakeVector([]Expr{xParam})
	require.NoError(t, err)

	id, err := ctx.BuildFunction("id", vecResult, 1)
	require.NoError(t, err)

	badArg := NewLiteral(VectorValue([]field.Element{f.NewElement(1), f.NewElement(2)}))

	_, err = NewCall(id, []Expr{badArg})
	assert.Error(t, err)
}
