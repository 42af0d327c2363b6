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

// Value is a scalar, vector or matrix of field elements, stored as a flat
// row-major cell array alongside its Dimensions.
type Value struct {
	Dims  Dimensions
	Cells []field.Element
}

// ScalarValue wraps a single field element as a scalar Value.
func ScalarValue(x field.Element) Value {
	return Value{Scalar(), []field.Element{x}}
}

// VectorValue wraps a slice of field elements as a vector Value.
func VectorValue(xs []field.Element) Value {
	return Value{Vector(uint(len(xs))), xs}
}

// MatrixValue wraps a slice of rows as a matrix Value.
func MatrixValue(rows [][]field.Element) Value {
	nrows := uint(len(rows))

	var ncols uint
	if nrows > 0 {
		ncols = uint(len(rows[0]))
	}

	cells := make([]field.Element, 0, nrows*ncols)
	for _, row := range rows {
		cells = append(cells, row...)
	}

	return Value{Matrix(nrows, ncols), cells}
}

// Scalar returns the single element of a scalar Value.
func (v Value) Scalar() field.Element {
	return v.Cells[0]
}

// VectorAt returns the i-th element of a vector Value.
func (v Value) VectorAt(i uint) field.Element {
	return v.Cells[i]
}

// MatrixAt returns the (r,c) element of a matrix Value.
func (v Value) MatrixAt(r, c uint) field.Element {
	return v.Cells[r*v.Dims.Cols+c]
}

// Row extracts the r-th row of a matrix Value as a standalone vector Value.
func (v Value) Row(r uint) Value {
	start := r * v.Dims.Cols
	return VectorValue(v.Cells[start : start+v.Dims.Cols])
}

// Slice extracts a contiguous sub-vector [start,end) of a vector Value.
func (v Value) Slice(start, end uint) Value {
	return VectorValue(v.Cells[start:end])
}
