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

// Degree is a shape-shaped container for the polynomial-degree bound of an
// expression: a scalar degree is a single integer, a
// vector degree is a per-element vector of integers, and a matrix degree is
// a per-cell matrix of integers. Exactly one of the three fields is
// meaningful, selected by Dims.
type Degree struct {
	Dims   Dimensions
	scalar int
	vector []int
	matrix [][]int
}

// ScalarDegree constructs a scalar degree bound.
func ScalarDegree(d int) Degree {
	return Degree{Dims: Scalar(), scalar: d}
}

// VectorDegree constructs a per-element vector degree bound.
func VectorDegree(ds []int) Degree {
	return Degree{Dims: Vector(uint(len(ds))), vector: ds}
}

// MatrixDegree constructs a per-cell matrix degree bound.
func MatrixDegree(ds [][]int) Degree {
	rows := uint(len(ds))

	var cols uint
	if rows > 0 {
		cols = uint(len(ds[0]))
	}

	return Degree{Dims: Matrix(rows, cols), matrix: ds}
}

// Scalar returns the degree bound of a scalar Degree, panicking otherwise.
func (d Degree) Scalar() int {
	if !d.Dims.IsScalar() {
		panic("Degree.Scalar() called on non-scalar degree")
	}

	return d.scalar
}

// Vector returns the per-element degree bounds of a vector Degree.
func (d Degree) Vector() []int {
	if !d.Dims.IsVector() {
		panic("Degree.Vector() called on non-vector degree")
	}

	return d.vector
}

// Matrix returns the per-cell degree bounds of a matrix Degree.
func (d Degree) Matrix() [][]int {
	if !d.Dims.IsMatrix() {
		panic("Degree.Matrix() called on non-matrix degree")
	}

	return d.matrix
}

// Max returns the largest individual cell degree bound, regardless of
// shape; used to size the composition domain.
func (d Degree) Max() int {
	switch {
	case d.Dims.IsScalar():
		return d.scalar
	case d.Dims.IsVector():
		m := 0
		for _, v := range d.vector {
			m = max(m, v)
		}

		return m
	default:
		m := 0
		for _, row := range d.matrix {
			for _, v := range row {
				m = max(m, v)
			}
		}

		return m
	}
}

// elementWise applies f to every pair of cells of two same-shaped degrees,
// broadcasting a scalar operand across the other's shape per-element.
func elementWise(a, b Degree, f func(x, y int) int) Degree {
	switch {
	case a.Dims.IsScalar() && b.Dims.IsScalar():
		return ScalarDegree(f(a.scalar, b.scalar))
	case a.Dims.IsScalar() && b.Dims.IsVector():
		out := make([]int, len(b.vector))
		for i, y := range b.vector {
			out[i] = f(a.scalar, y)
		}

		return VectorDegree(out)
	case a.Dims.IsVector() && b.Dims.IsScalar():
		out := make([]int, len(a.vector))
		for i, x := range a.vector {
			out[i] = f(x, b.scalar)
		}

		return VectorDegree(out)
	case a.Dims.IsVector() && b.Dims.IsVector():
		out := make([]int, len(a.vector))
		for i := range a.vector {
			out[i] = f(a.vector[i], b.vector[i])
		}

		return VectorDegree(out)
	case a.Dims.IsScalar() && b.Dims.IsMatrix():
		return broadcastScalarMatrix(a.scalar, b.matrix, f, true)
	case a.Dims.IsMatrix() && b.Dims.IsScalar():
		return broadcastScalarMatrix(b.scalar, a.matrix, f, false)
	default:
		out := make([][]int, len(a.matrix))
		for i := range a.matrix {
			out[i] = make([]int, len(a.matrix[i]))
			for j := range a.matrix[i] {
				out[i][j] = f(a.matrix[i][j], b.matrix[i][j])
			}
		}

		return MatrixDegree(out)
	}
}

// broadcastScalarMatrix applies f(scalar, cell) (or f(cell, scalar) when
// scalarIsLeft is false) across every cell of m.
func broadcastScalarMatrix(scalar int, m [][]int, f func(x, y int) int, scalarIsLeft bool) Degree {
	out := make([][]int, len(m))
	for i := range m {
		out[i] = make([]int, len(m[i]))
		for j := range m[i] {
			if scalarIsLeft {
				out[i][j] = f(scalar, m[i][j])
			} else {
				out[i][j] = f(m[i][j], scalar)
			}
		}
	}

	return MatrixDegree(out)
}

// AddDegree implements the "add/sub" rule: element-wise max.
func AddDegree(a, b Degree) Degree {
	return elementWise(a, b, func(x, y int) int { return max(x, y) })
}

// MulDegree implements the "mul" rule: element-wise sum.
func MulDegree(a, b Degree) Degree {
	return elementWise(a, b, func(x, y int) int { return x + y })
}

// DivDegree implements the "div" rule: an over-approximation that sums
// degrees just like multiplication, since field division has no general
// degree-reducing structure to exploit.
func DivDegree(a, b Degree) Degree {
	return MulDegree(a, b)
}

// ExpDegree implements the "exp with scalar constant k" rule: element-wise
// multiply by k.
func ExpDegree(a Degree, k int) Degree {
	switch {
	case a.Dims.IsScalar():
		return ScalarDegree(a.scalar * k)
	case a.Dims.IsVector():
		out := make([]int, len(a.vector))
		for i, v := range a.vector {
			out[i] = v * k
		}

		return VectorDegree(out)
	default:
		out := make([][]int, len(a.matrix))
		for i, row := range a.matrix {
			out[i] = make([]int, len(row))
			for j, v := range row {
				out[i][j] = v * k
			}
		}

		return MatrixDegree(out)
	}
}

// NegDegree implements the "neg" rule: identity.
func NegDegree(a Degree) Degree { return a }

// InvDegree implements the (over-approximate) "inv" rule: identity.
func InvDegree(a Degree) Degree { return a }

// DotDegree implements the dot-product component of the "prod" rule: the
// maximum over i of (d1[i]+d2[i]).
func DotDegree(a, b []int) int {
	m := 0

	for i := range a {
		m = max(m, a[i]+b[i])
	}

	return m
}

// MatrixVectorProdDegree implements "prod" for a matrix times a vector,
// extending the dot-product rule row-wise: row i of the result has degree
// max_j(matrixDeg[i][j] + vecDeg[j]).
func MatrixVectorProdDegree(m [][]int, v []int) []int {
	out := make([]int, len(m))

	for i, row := range m {
		out[i] = DotDegree(row, v)
	}

	return out
}

// MatrixMatrixProdDegree implements "prod" for a matrix times a matrix,
// extending the dot-product rule row/column-wise.
func MatrixMatrixProdDegree(a [][]int, b [][]int) [][]int {
	rows := len(a)

	var cols int
	if len(b) > 0 {
		cols = len(b[0])
	}

	out := make([][]int, rows)

	for i := 0; i < rows; i++ {
		out[i] = make([]int, cols)

		for j := 0; j < cols; j++ {
			col := make([]int, len(b))
			for k := range b {
				col[k] = b[k][j]
			}

			out[i][j] = DotDegree(a[i], col)
		}
	}

	return out
}
