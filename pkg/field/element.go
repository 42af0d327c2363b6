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
package field

import (
	"math/big"
)

// Element is a value of a Field, always held reduced modulo that field's
// prime.  Two elements should only ever be combined if they share the same
// underlying Field.
type Element struct {
	val   *big.Int
	field *Field
}

// Field returns the field to which this element belongs.
func (x Element) Field() *Field { return x.field }

// BigInt returns the underlying integer value of x, in the range [0,p).
func (x Element) BigInt() *big.Int {
	return new(big.Int).Set(x.val)
}

// IsZero checks whether x is the additive identity.
func (x Element) IsZero() bool {
	return x.val.Sign() == 0
}

// Equal checks whether x and y represent the same value.
func (x Element) Equal(y Element) bool {
	return x.val.Cmp(y.val) == 0
}

// Add computes x+y.
func (x Element) Add(y Element) Element {
	return x.field.NewElementFromBigInt(new(big.Int).Add(x.val, y.val))
}

// Sub computes x-y.
func (x Element) Sub(y Element) Element {
	return x.field.NewElementFromBigInt(new(big.Int).Sub(x.val, y.val))
}

// Mul computes x*y.
func (x Element) Mul(y Element) Element {
	return x.field.NewElementFromBigInt(new(big.Int).Mul(x.val, y.val))
}

// Neg computes -x.
func (x Element) Neg() Element {
	return x.field.NewElementFromBigInt(new(big.Int).Neg(x.val))
}

// Inverse computes x⁻¹, or 0 if x = 0.
func (x Element) Inverse() Element {
	if x.IsZero() {
		return x.field.Zero()
	}

	v := new(big.Int).ModInverse(x.val, x.field.modulus)

	return Element{v, x.field}
}

// Div computes x/y := x * y⁻¹.
func (x Element) Div(y Element) Element {
	return x.Mul(y.Inverse())
}

// Exp computes x^k for a non-negative integer exponent k, via square-and-
// multiply.
func (x Element) Exp(k *big.Int) Element {
	v := new(big.Int).Exp(x.val, k, x.field.modulus)
	return Element{v, x.field}
}

// ExpUint computes x^k for a non-negative machine-word exponent.
func (x Element) ExpUint(k uint64) Element {
	return x.Exp(new(big.Int).SetUint64(k))
}

// String renders the element's canonical decimal representation.
func (x Element) String() string {
	return x.val.String()
}

// Bytes returns the big-endian byte encoding of x, padded to the byte width
// of the field's modulus.
func (x Element) Bytes() []byte {
	width := (x.field.modulus.BitLen() + 7) / 8
	buf := make([]byte, width)
	x.val.FillBytes(buf)

	return buf
}
