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
	"fmt"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/sexp"
)

// Expr is the common interface satisfied by every variant of the AIR
// assembly expression tree. Every expression carries its inferred
// Dimensions and ExpressionDegree, computed once at construction time.
type Expr interface {
	// Dims reports this expression's inferred shape.
	Dims() Dimensions
	// Deg reports this expression's inferred degree bound.
	Deg() Degree
	// Eval evaluates this expression against an execution environment.
	Eval(env Environment) (Value, error)
	// Lisp renders this expression as a canonical S-expression.
	Lisp() sexp.SExp
	// Equal performs structural equality, for common-subexpression
	// comparison.
	Equal(Expr) bool
}

// BinaryOp enumerates the binary operators.
type BinaryOp uint8

// Binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpExp
	OpProd
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpExp:
		return "^"
	case OpProd:
		return "prod"
	default:
		return "?"
	}
}

// UnaryOp enumerates the unary operators.
type UnaryOp uint8

// Unary operators.
const (
	OpNeg UnaryOp = iota
	OpInv
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "neg"
	}

	return "inv"
}

// LoadKind enumerates the load/store address spaces.
type LoadKind uint8

// Load address spaces.
const (
	LoadConst LoadKind = iota
	LoadLocal
	LoadParam
	LoadTrace
	LoadStatic
)

func (k LoadKind) String() string {
	switch k {
	case LoadConst:
		return "load.const"
	case LoadLocal:
		return "load.local"
	case LoadParam:
		return "load.param"
	case LoadTrace:
		return "load.trace"
	case LoadStatic:
		return "load.static"
	default:
		return "load.?"
	}
}

// ===================================================================
// LiteralValue
// ===================================================================

// Literal is a constant scalar, vector or matrix embedded directly in an
// expression tree.
type Literal struct {
	Value Value
}

// NewLiteral constructs a Literal expression from a concrete value. Its
// degree is zero in every cell, since a literal is a degree-0 polynomial.
func NewLiteral(v Value) *Literal {
	return &Literal{v}
}

// Dims implements Expr.
func (e *Literal) Dims() Dimensions { return e.Value.Dims }

// Deg implements Expr.
func (e *Literal) Deg() Degree {
	switch {
	case e.Value.Dims.IsScalar():
		return ScalarDegree(0)
	case e.Value.Dims.IsVector():
		ds := make([]int, e.Value.Dims.Rows)
		return VectorDegree(ds)
	default:
		ds := make([][]int, e.Value.Dims.Rows)
		for i := range ds {
			ds[i] = make([]int, e.Value.Dims.Cols)
		}

		return MatrixDegree(ds)
	}
}

// Eval implements Expr.
func (e *Literal) Eval(_ Environment) (Value, error) { return e.Value, nil }

// Equal implements Expr.
func (e *Literal) Equal(o Expr) bool {
	oe, ok := o.(*Literal)
	if !ok || !e.Value.Dims.Equal(oe.Value.Dims) {
		return false
	}

	for i := range e.Value.Cells {
		if !e.Value.Cells[i].Equal(oe.Value.Cells[i]) {
			return false
		}
	}

	return true
}

// Lisp implements Expr.
func (e *Literal) Lisp() sexp.SExp {
	switch {
	case e.Value.Dims.IsScalar():
		return sexp.NewSymbol(e.Value.Scalar().String())
	case e.Value.Dims.IsVector():
		elems := []sexp.SExp{sexp.NewSymbol("vector")}
		for i := uint(0); i < e.Value.Dims.Rows; i++ {
			elems = append(elems, sexp.NewSymbol(e.Value.VectorAt(i).String()))
		}

		return sexp.NewList(elems)
	default:
		rows := []sexp.SExp{sexp.NewSymbol("matrix")}

		for r := uint(0); r < e.Value.Dims.Rows; r++ {
			cells := []sexp.SExp{sexp.NewSymbol("row")}
			for c := uint(0); c < e.Value.Dims.Cols; c++ {
				cells = append(cells, sexp.NewSymbol(e.Value.MatrixAt(r, c).String()))
			}

			rows = append(rows, sexp.NewList(cells))
		}

		return sexp.NewList(rows)
	}
}

// AsScalarConstant returns the non-negative integer represented by a scalar
// Literal, or an error if e is not a scalar literal. Used to validate that
// the exponent of an exp expression is a scalar constant.
func AsScalarConstant(e Expr) (field.Element, error) {
	lit, ok := e.(*Literal)
	if !ok || !lit.Value.Dims.IsScalar() {
		return field.Element{}, NewTypeError("expected a scalar literal constant, found %T", e)
	}

	return lit.Value.Scalar(), nil
}

// ===================================================================
// BinaryOperation
// ===================================================================

// Binary is the sum type of add/sub/mul/div/exp/prod operations over two
// sub-expressions.
type Binary struct {
	Op       BinaryOp
	Lhs, Rhs Expr
	dims     Dimensions
	deg      Degree
	expK     uint64 // cached non-negative exponent, valid only when Op == OpExp
}

// NewBinary constructs and shape/degree-checks a binary operation.
func NewBinary(op BinaryOp, lhs, rhs Expr) (*Binary, error) {
	switch op {
	case OpAdd, OpSub:
		dims, err := broadcastShape(lhs.Dims(), rhs.Dims())
		if err != nil {
			return nil, err
		}

		return &Binary{op, lhs, rhs, dims, AddDegree(lhs.Deg(), rhs.Deg()), 0}, nil
	case OpMul:
		dims, err := broadcastShape(lhs.Dims(), rhs.Dims())
		if err != nil {
			return nil, err
		}

		return &Binary{op, lhs, rhs, dims, MulDegree(lhs.Deg(), rhs.Deg()), 0}, nil
	case OpDiv:
		dims, err := broadcastShape(lhs.Dims(), rhs.Dims())
		if err != nil {
			return nil, err
		}

		return &Binary{op, lhs, rhs, dims, DivDegree(lhs.Deg(), rhs.Deg()), 0}, nil
	case OpExp:
		k, err := AsScalarConstant(rhs)
		if err != nil {
			return nil, NewTypeError("exp requires a scalar constant exponent: %v", err)
		}

		kBig := k.BigInt()
		if kBig.Sign() < 0 {
			return nil, NewTypeError("exp requires a non-negative exponent")
		}

		return &Binary{op, lhs, rhs, lhs.Dims(), ExpDegree(lhs.Deg(), int(kBig.Uint64())), kBig.Uint64()}, nil
	case OpProd:
		return newProd(lhs, rhs)
	default:
		return nil, NewTypeError("unknown binary operator %v", op)
	}
}

// broadcastShape requires binary operations other than prod to have
// matching shapes, except that a scalar operand broadcasts against any
// shape on a per-element basis.
func broadcastShape(a, b Dimensions) (Dimensions, error) {
	switch {
	case a.IsScalar():
		return b, nil
	case b.IsScalar():
		return a, nil
	case a.Equal(b):
		return a, nil
	default:
		return Dimensions{}, NewTypeError("shape mismatch: %v vs %v", a, b)
	}
}

func newProd(lhs, rhs Expr) (*Binary, error) {
	ld, rd := lhs.Dims(), rhs.Dims()

	switch {
	case ld.IsVector() && rd.IsVector():
		if ld.Rows != rd.Rows {
			return nil, NewTypeError("prod: vector length mismatch %d vs %d", ld.Rows, rd.Rows)
		}

		deg := ScalarDegree(DotDegree(lhs.Deg().Vector(), rhs.Deg().Vector()))

		return &Binary{OpProd, lhs, rhs, Scalar(), deg, 0}, nil
	case ld.IsMatrix() && rd.IsVector():
		if ld.Cols != rd.Rows {
			return nil, NewTypeError("prod: matrix cols %d != vector length %d", ld.Cols, rd.Rows)
		}

		deg := VectorDegree(MatrixVectorProdDegree(lhs.Deg().Matrix(), rhs.Deg().Vector()))

		return &Binary{OpProd, lhs, rhs, Vector(ld.Rows), deg, 0}, nil
	case ld.IsMatrix() && rd.IsMatrix():
		if ld.Cols != rd.Rows {
			return nil, NewTypeError("prod: matrix dims %v incompatible with %v", ld, rd)
		}

		deg := MatrixDegree(MatrixMatrixProdDegree(lhs.Deg().Matrix(), rhs.Deg().Matrix()))

		return &Binary{OpProd, lhs, rhs, Matrix(ld.Rows, rd.Cols), deg, 0}, nil
	default:
		return nil, NewTypeError("prod: unsupported operand shapes %v, %v", ld, rd)
	}
}

// Dims implements Expr.
func (e *Binary) Dims() Dimensions { return e.dims }

// Deg implements Expr.
func (e *Binary) Deg() Degree { return e.deg }

// Eval implements Expr.
func (e *Binary) Eval(env Environment) (Value, error) {
	lv, err := e.Lhs.Eval(env)
	if err != nil {
		return Value{}, err
	}

	rv, err := e.Rhs.Eval(env)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case OpAdd:
		return broadcastCellwise(lv, rv, field.Element.Add), nil
	case OpSub:
		return broadcastCellwise(lv, rv, field.Element.Sub), nil
	case OpMul:
		return broadcastCellwise(lv, rv, field.Element.Mul), nil
	case OpDiv:
		return broadcastCellwise(lv, rv, field.Element.Div), nil
	case OpExp:
		out := make([]field.Element, len(lv.Cells))
		for i, c := range lv.Cells {
			out[i] = c.ExpUint(e.expK)
		}

		return Value{lv.Dims, out}, nil
	case OpProd:
		return evalProd(lv, rv)
	default:
		return Value{}, NewTypeError("unknown binary operator %v", e.Op)
	}
}

// broadcastCellwise applies f to every cell of a and b, broadcasting a
// scalar operand.
func broadcastCellwise(a, b Value, f func(x, y field.Element) field.Element) Value {
	if a.Dims.IsScalar() && !b.Dims.IsScalar() {
		out := make([]field.Element, len(b.Cells))
		for i, c := range b.Cells {
			out[i] = f(a.Scalar(), c)
		}

		return Value{b.Dims, out}
	} else if b.Dims.IsScalar() && !a.Dims.IsScalar() {
		out := make([]field.Element, len(a.Cells))
		for i, c := range a.Cells {
			out[i] = f(c, b.Scalar())
		}

		return Value{a.Dims, out}
	}

	out := make([]field.Element, len(a.Cells))
	for i := range a.Cells {
		out[i] = f(a.Cells[i], b.Cells[i])
	}

	return Value{a.Dims, out}
}

func evalProd(lv, rv Value) (Value, error) {
	switch {
	case lv.Dims.IsVector() && rv.Dims.IsVector():
		acc := lv.Cells[0].Field().Zero()
		for i := range lv.Cells {
			acc = acc.Add(lv.Cells[i].Mul(rv.Cells[i]))
		}

		return ScalarValue(acc), nil
	case lv.Dims.IsMatrix() && rv.Dims.IsVector():
		out := make([]field.Element, lv.Dims.Rows)

		for i := uint(0); i < lv.Dims.Rows; i++ {
			acc := rv.Cells[0].Field().Zero()
			for j := uint(0); j < lv.Dims.Cols; j++ {
				acc = acc.Add(lv.MatrixAt(i, j).Mul(rv.VectorAt(j)))
			}

			out[i] = acc
		}

		return VectorValue(out), nil
	case lv.Dims.IsMatrix() && rv.Dims.IsMatrix():
		rows := make([][]field.Element, lv.Dims.Rows)

		for i := uint(0); i < lv.Dims.Rows; i++ {
			row := make([]field.Element, rv.Dims.Cols)
			for j := uint(0); j < rv.Dims.Cols; j++ {
				acc := lv.MatrixAt(i, 0).Field().Zero()
				for k := uint(0); k < lv.Dims.Cols; k++ {
					acc = acc.Add(lv.MatrixAt(i, k).Mul(rv.MatrixAt(k, j)))
				}

				row[j] = acc
			}

			rows[i] = row
		}

		return MatrixValue(rows), nil
	default:
		return Value{}, NewTypeError("prod: unsupported operand shapes %v, %v", lv.Dims, rv.Dims)
	}
}

// Equal implements Expr.
func (e *Binary) Equal(o Expr) bool {
	oe, ok := o.(*Binary)
	return ok && e.Op == oe.Op && e.Lhs.Equal(oe.Lhs) && e.Rhs.Equal(oe.Rhs)
}

// Lisp implements Expr.
func (e *Binary) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol(e.Op.String()), e.Lhs.Lisp(), e.Rhs.Lisp()})
}

// ===================================================================
// UnaryOperation
// ===================================================================

// Unary is the sum type of neg/inv operations over a single sub-expression.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// NewUnary constructs a unary operation. neg and inv both preserve shape;
// their degree rules (identity in both cases — the latter an explicit
// over-approximation) are implemented by NegDegree/InvDegree.
func NewUnary(op UnaryOp, operand Expr) *Unary {
	return &Unary{op, operand}
}

// Dims implements Expr.
func (e *Unary) Dims() Dimensions { return e.Operand.Dims() }

// Deg implements Expr.
func (e *Unary) Deg() Degree {
	if e.Op == OpNeg {
		return NegDegree(e.Operand.Deg())
	}

	return InvDegree(e.Operand.Deg())
}

// Eval implements Expr.
func (e *Unary) Eval(env Environment) (Value, error) {
	v, err := e.Operand.Eval(env)
	if err != nil {
		return Value{}, err
	}

	out := make([]field.Element, len(v.Cells))

	for i, c := range v.Cells {
		if e.Op == OpNeg {
			out[i] = c.Neg()
		} else {
			out[i] = c.Inverse()
		}
	}

	return Value{v.Dims, out}, nil
}

// Equal implements Expr.
func (e *Unary) Equal(o Expr) bool {
	oe, ok := o.(*Unary)
	return ok && e.Op == oe.Op && e.Operand.Equal(oe.Operand)
}

// Lisp implements Expr.
func (e *Unary) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol(e.Op.String()), e.Operand.Lisp()})
}

// ===================================================================
// MakeVector / MakeMatrix
// ===================================================================

// MakeVectorExpr assembles a vector from scalar element sub-expressions.
type MakeVectorExpr struct {
	Elements []Expr
}

// NewMakeVector constructs a MakeVectorExpr, requiring every element be a
// scalar sub-expression.
func NewMakeVector(elements []Expr) (*MakeVectorExpr, error) {
	for i, e := range elements {
		if !e.Dims().IsScalar() {
			return nil, NewTypeError("vector element %d is not scalar (%v)", i, e.Dims())
		}
	}

	return &MakeVectorExpr{elements}, nil
}

// Dims implements Expr.
func (e *MakeVectorExpr) Dims() Dimensions { return Vector(uint(len(e.Elements))) }

// Deg implements Expr.
func (e *MakeVectorExpr) Deg() Degree {
	ds := make([]int, len(e.Elements))
	for i, el := range e.Elements {
		ds[i] = el.Deg().Scalar()
	}

	return VectorDegree(ds)
}

// Eval implements Expr.
func (e *MakeVectorExpr) Eval(env Environment) (Value, error) {
	out := make([]field.Element, len(e.Elements))

	for i, el := range e.Elements {
		v, err := el.Eval(env)
		if err != nil {
			return Value{}, err
		}

		out[i] = v.Scalar()
	}

	return VectorValue(out), nil
}

// Equal implements Expr.
func (e *MakeVectorExpr) Equal(o Expr) bool {
	oe, ok := o.(*MakeVectorExpr)
	if !ok || len(e.Elements) != len(oe.Elements) {
		return false
	}

	for i := range e.Elements {
		if !e.Elements[i].Equal(oe.Elements[i]) {
			return false
		}
	}

	return true
}

// Lisp implements Expr.
func (e *MakeVectorExpr) Lisp() sexp.SExp {
	elems := []sexp.SExp{sexp.NewSymbol("vector")}
	for _, el := range e.Elements {
		elems = append(elems, el.Lisp())
	}

	return sexp.NewList(elems)
}

// MakeMatrixExpr assembles a matrix from rows of scalar sub-expressions.
type MakeMatrixExpr struct {
	Rows [][]Expr
}

// NewMakeMatrix constructs a MakeMatrixExpr, requiring every cell be a
// scalar sub-expression and every row have equal length.
func NewMakeMatrix(rows [][]Expr) (*MakeMatrixExpr, error) {
	if len(rows) == 0 {
		return nil, NewTypeError("matrix literal must have at least one row")
	}

	width := len(rows[0])

	for i, row := range rows {
		if len(row) != width {
			return nil, NewTypeError("matrix row %d has %d columns, expected %d", i, len(row), width)
		}

		for j, e := range row {
			if !e.Dims().IsScalar() {
				return nil, NewTypeError("matrix cell (%d,%d) is not scalar (%v)", i, j, e.Dims())
			}
		}
	}

	return &MakeMatrixExpr{rows}, nil
}

// Dims implements Expr.
func (e *MakeMatrixExpr) Dims() Dimensions {
	return Matrix(uint(len(e.Rows)), uint(len(e.Rows[0])))
}

// Deg implements Expr.
func (e *MakeMatrixExpr) Deg() Degree {
	ds := make([][]int, len(e.Rows))

	for i, row := range e.Rows {
		ds[i] = make([]int, len(row))
		for j, el := range row {
			ds[i][j] = el.Deg().Scalar()
		}
	}

	return MatrixDegree(ds)
}

// Eval implements Expr.
func (e *MakeMatrixExpr) Eval(env Environment) (Value, error) {
	rows := make([][]field.Element, len(e.Rows))

	for i, row := range e.Rows {
		cells := make([]field.Element, len(row))

		for j, el := range row {
			v, err := el.Eval(env)
			if err != nil {
				return Value{}, err
			}

			cells[j] = v.Scalar()
		}

		rows[i] = cells
	}

	return MatrixValue(rows), nil
}

// Equal implements Expr.
func (e *MakeMatrixExpr) Equal(o Expr) bool {
	oe, ok := o.(*MakeMatrixExpr)
	if !ok || len(e.Rows) != len(oe.Rows) {
		return false
	}

	for i := range e.Rows {
		if len(e.Rows[i]) != len(oe.Rows[i]) {
			return false
		}

		for j := range e.Rows[i] {
			if !e.Rows[i][j].Equal(oe.Rows[i][j]) {
				return false
			}
		}
	}

	return true
}

// Lisp implements Expr.
func (e *MakeMatrixExpr) Lisp() sexp.SExp {
	rows := []sexp.SExp{sexp.NewSymbol("matrix")}

	for _, row := range e.Rows {
		cells := []sexp.SExp{sexp.NewSymbol("row")}
		for _, el := range row {
			cells = append(cells, el.Lisp())
		}

		rows = append(rows, sexp.NewList(cells))
	}

	return sexp.NewList(rows)
}

// ===================================================================
// GetVectorElement / SliceVector
// ===================================================================

// GetElement extracts a single scalar cell from a vector sub-expression.
type GetElement struct {
	Source Expr
	Index  uint
}

// NewGetElement constructs a GetElement, checking that Source is a vector
// and Index lies within bounds.
func NewGetElement(source Expr, index uint) (*GetElement, error) {
	d := source.Dims()
	if !d.IsVector() {
		return nil, NewTypeError("get: source is not a vector (%v)", d)
	} else if index >= d.Rows {
		return nil, NewTypeError("get: index %d out of bounds for vector of length %d", index, d.Rows)
	}

	return &GetElement{source, index}, nil
}

// Dims implements Expr.
func (e *GetElement) Dims() Dimensions { return Scalar() }

// Deg implements Expr.
func (e *GetElement) Deg() Degree { return ScalarDegree(e.Source.Deg().Vector()[e.Index]) }

// Eval implements Expr.
func (e *GetElement) Eval(env Environment) (Value, error) {
	v, err := e.Source.Eval(env)
	if err != nil {
		return Value{}, err
	}

	return ScalarValue(v.VectorAt(e.Index)), nil
}

// Equal implements Expr.
func (e *GetElement) Equal(o Expr) bool {
	oe, ok := o.(*GetElement)
	return ok && e.Index == oe.Index && e.Source.Equal(oe.Source)
}

// Lisp implements Expr.
func (e *GetElement) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol("get"), e.Source.Lisp(), sexp.NewSymbol(fmt.Sprint(e.Index))})
}

// SliceExpr extracts a contiguous sub-vector from a vector sub-expression.
type SliceExpr struct {
	Source      Expr
	Start, Endx uint // half-open range [Start,Endx)
}

// NewSlice constructs a SliceExpr, checking that Source is a vector and
// [start,endExclusive) lies within bounds.
func NewSlice(source Expr, start, endExclusive uint) (*SliceExpr, error) {
	d := source.Dims()

	switch {
	case !d.IsVector():
		return nil, NewTypeError("slice: source is not a vector (%v)", d)
	case start > endExclusive:
		return nil, NewTypeError("slice: start %d exceeds end %d", start, endExclusive)
	case endExclusive > d.Rows:
		return nil, NewTypeError("slice: end %d out of bounds for vector of length %d", endExclusive, d.Rows)
	}

	return &SliceExpr{source, start, endExclusive}, nil
}

// Dims implements Expr.
func (e *SliceExpr) Dims() Dimensions { return Vector(e.Endx - e.Start) }

// Deg implements Expr.
func (e *SliceExpr) Deg() Degree {
	return VectorDegree(e.Source.Deg().Vector()[e.Start:e.Endx])
}

// Eval implements Expr.
func (e *SliceExpr) Eval(env Environment) (Value, error) {
	v, err := e.Source.Eval(env)
	if err != nil {
		return Value{}, err
	}

	return v.Slice(e.Start, e.Endx), nil
}

// Equal implements Expr.
func (e *SliceExpr) Equal(o Expr) bool {
	oe, ok := o.(*SliceExpr)
	return ok && e.Start == oe.Start && e.Endx == oe.Endx && e.Source.Equal(oe.Source)
}

// Lisp implements Expr.
func (e *SliceExpr) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("slice"), e.Source.Lisp(),
		sexp.NewSymbol(fmt.Sprint(e.Start)), sexp.NewSymbol(fmt.Sprint(e.Endx)),
	})
}

// ===================================================================
// LoadExpression
// ===================================================================

// Load reads a value from one of the five address spaces: compile-
// time constants, procedure locals, function parameters, the visible trace
// rows, or the static register bank. Load expressions are always
// constructed through a Context, which resolves handles to indices
// and validates bounds at build time.
type Load struct {
	Kind   LoadKind
	Index  uint
	Handle string // empty if constructed by index
	dims   Dimensions
	deg    Degree
}

// Dims implements Expr.
func (e *Load) Dims() Dimensions { return e.dims }

// Deg implements Expr.
func (e *Load) Deg() Degree { return e.deg }

// Eval implements Expr.
func (e *Load) Eval(env Environment) (Value, error) {
	switch e.Kind {
	case LoadConst:
		return env.Const(e.Index), nil
	case LoadLocal:
		return env.Local(e.Index), nil
	case LoadParam:
		return env.Param(e.Index), nil
	case LoadTrace:
		return env.Trace(e.Index), nil
	case LoadStatic:
		return ScalarValue(env.Static(e.Index)), nil
	default:
		return Value{}, NewTypeError("unknown load kind %v", e.Kind)
	}
}

// Equal implements Expr.
func (e *Load) Equal(o Expr) bool {
	oe, ok := o.(*Load)
	return ok && e.Kind == oe.Kind && e.Index == oe.Index
}

// Lisp implements Expr.
func (e *Load) Lisp() sexp.SExp {
	name := fmt.Sprint(e.Index)
	if e.Handle != "" {
		name = "$" + e.Handle
	}

	return sexp.NewList([]sexp.SExp{sexp.NewSymbol(e.Kind.String()), sexp.NewSymbol(name)})
}

// ===================================================================
// CallExpression
// ===================================================================

// Call invokes a named Function with a list of argument sub-expressions.
type Call struct {
	Function  *Function
	Arguments []Expr
}

// NewCall constructs a Call, checking arity and per-argument shape against
// the function's declared parameters.
func NewCall(fn *Function, args []Expr) (*Call, error) {
	if len(args) != len(fn.Params) {
		return nil, NewArityError("call to %q expects %d arguments, got %d", fn.Name(), len(fn.Params), len(args))
	}

	for i, a := range args {
		if !a.Dims().Equal(fn.Params[i].Shape) {
			return nil, NewTypeError("call to %q: argument %d has shape %v, expected %v",
				fn.Name(), i, a.Dims(), fn.Params[i].Shape)
		}
	}

	return &Call{fn, args}, nil
}

// Dims implements Expr.
func (e *Call) Dims() Dimensions { return Vector(e.Function.Width) }

// Deg implements Expr.
func (e *Call) Deg() Degree {
	// A call's degree is the function body's result degree, with each
	// parameter's degree substituted for argument degree (conservative:
	// parameters have degree 1 in the body, so the largest result degree
	// times the largest argument degree bounds every substituted cell).
	resultDeg := e.Function.Result.Deg()
	argMax := 0

	for _, a := range e.Arguments {
		argMax = max(argMax, a.Deg().Max())
	}

	m := resultDeg.Max() * argMax

	ds := make([]int, e.Function.Width)
	for i := range ds {
		ds[i] = m
	}

	return VectorDegree(ds)
}

// Eval implements Expr.
func (e *Call) Eval(env Environment) (Value, error) {
	args := make([]Value, len(e.Arguments))

	for i, a := range e.Arguments {
		v, err := a.Eval(env)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	return env.Call(e.Function, args)
}

// Equal implements Expr.
func (e *Call) Equal(o Expr) bool {
	oe, ok := o.(*Call)
	if !ok || e.Function != oe.Function || len(e.Arguments) != len(oe.Arguments) {
		return false
	}

	for i := range e.Arguments {
		if !e.Arguments[i].Equal(oe.Arguments[i]) {
			return false
		}
	}

	return true
}

// Lisp implements Expr.
func (e *Call) Lisp() sexp.SExp {
	elems := []sexp.SExp{sexp.NewSymbol("call"), sexp.NewSymbol(e.Function.Name())}
	for _, a := range e.Arguments {
		elems = append(elems, a.Lisp())
	}

	return sexp.NewList(elems)
}
