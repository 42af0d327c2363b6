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
	"fmt"
)

// Polynomial is a dense univariate polynomial over a Field, stored as a
// coefficient vector in ascending order of degree.
type Polynomial struct {
	Coeffs []Element
}

// NewPolynomial constructs a polynomial from a coefficient vector.
func NewPolynomial(coeffs []Element) Polynomial {
	return Polynomial{coeffs}
}

// Degree returns the formal degree of this polynomial (len(Coeffs)-1).  It
// does not strip leading zero coefficients.
func (p Polynomial) Degree() int {
	return len(p.Coeffs) - 1
}

// Eval evaluates this polynomial at a point x using Horner's method.
func (p Polynomial) Eval(x Element) Element {
	if len(p.Coeffs) == 0 {
		return x.field.Zero()
	}

	acc := p.Coeffs[len(p.Coeffs)-1]
	for i := len(p.Coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.Coeffs[i])
	}

	return acc
}

// isPowerOfTwo reports whether n is a power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// bitReverseInPlace permutes v into bit-reversal order, mirroring
// sp301415-ringo-snark's num.BitReverseInPlace.
func bitReverseInPlace(v []Element) {
	n := len(v)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}

		j ^= bit

		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}
}

// transformInPlace computes, for coeffs of power-of-two length n and root a
// primitive n-th root of unity, the vector out[j] = sum_k coeffs[k]*root^(j*k)
// for j in 0..n-1 — i.e. the evaluation of the coefficient vector at every
// point of the domain generated by root, in domain order. Bit-reversing the
// input first and then combining butterflies of doubling span is the
// standard iterative Cooley-Tukey layout (the same shape as
// sp301415-ringo-snark's bigring.CyclicRing butterfly loop), chosen here
// because it leaves the output in natural (un-permuted) domain order, which
// both InterpolateRoots and EvalPolysAtRoots depend on.
func transformInPlace(f *Field, coeffs []Element, root Element) {
	n := len(coeffs)

	bitReverseInPlace(coeffs)

	for length := 2; length <= n; length <<= 1 {
		wLen := root.ExpUint(uint64(n / length))

		for i := 0; i < n; i += length {
			w := f.One()

			for j := 0; j < length/2; j++ {
				u := coeffs[i+j]
				v := coeffs[i+j+length/2].Mul(w)

				coeffs[i+j] = u.Add(v)
				coeffs[i+j+length/2] = u.Sub(v)

				w = w.Mul(wLen)
			}
		}
	}
}

// nttInPlace computes the forward NTT: the evaluation of coeffs across the
// domain generated by root, in domain order.
func nttInPlace(f *Field, coeffs []Element, root Element) {
	transformInPlace(f, coeffs, root)
}

// invNttInPlace computes the un-normalised inverse NTT of coeffs (i.e.
// values assumed given in domain order); the caller is responsible for
// scaling the result by n⁻¹.
func invNttInPlace(f *Field, coeffs []Element, root Element) {
	transformInPlace(f, coeffs, root.Inverse())
}

// InterpolateRoots produces the unique polynomial of degree < len(domain)
// which evaluates to values on domain, where domain is the power-of-two
// sequence returned by Field.Domain. Implements the inverse NTT.
func (f *Field) InterpolateRoots(domain []Element, values []Element) (Polynomial, error) {
	n := len(domain)
	if n != len(values) {
		return Polynomial{}, fmt.Errorf("domain/value length mismatch (%d vs %d)", n, len(values))
	} else if !isPowerOfTwo(n) {
		return Polynomial{}, &DomainError{fmt.Sprintf("domain size %d is not a power of two", n)}
	}

	root := domain[1]
	coeffs := make([]Element, n)
	copy(coeffs, values)

	invNttInPlace(f, coeffs, root)

	nInv := f.NewElement(int64(n)).Inverse()
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(nInv)
	}

	return Polynomial{coeffs}, nil
}

// EvalPolysAtRoots evaluates every polynomial in polys across the given
// power-of-two domain, returning one row of values per polynomial. Each
// polynomial is zero-padded up to the domain size; it is an error for a
// polynomial's degree to exceed the domain size.
func (f *Field) EvalPolysAtRoots(polys []Polynomial, domain []Element) ([][]Element, error) {
	n := len(domain)
	if !isPowerOfTwo(n) {
		return nil, &DomainError{fmt.Sprintf("domain size %d is not a power of two", n)}
	}

	root := domain[1]
	rows := make([][]Element, len(polys))

	for i, p := range polys {
		if len(p.Coeffs) > n {
			return nil, &DomainError{fmt.Sprintf("polynomial of degree %d exceeds domain size %d", p.Degree(), n)}
		}

		coeffs := make([]Element, n)
		copy(coeffs, p.Coeffs)

		for j := len(p.Coeffs); j < n; j++ {
			coeffs[j] = f.Zero()
		}

		nttInPlace(f, coeffs, root)
		rows[i] = coeffs
	}

	return rows, nil
}
