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

// Package field implements arithmetic over a prime field whose modulus is
// chosen at runtime (i.e. when a schema is loaded), rather than fixed at
// compile time to a particular elliptic-curve scalar field.
package field

import (
	"fmt"
	"math/big"
	"math/rand/v2"
)

// randomBytes returns n cryptographically-insecure random bytes.
func randomBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rand.IntN(256))
	}

	return buf
}

// Field is a prime field Z/pZ.  Unlike the fixed-curve fields generated
// elsewhere in the ecosystem, a Field here is constructed directly from a
// prime supplied by an AIR assembly schema.
type Field struct {
	modulus   *big.Int
	generator *big.Int // cached generator of the largest power-of-two subgroup of (Z/pZ)*
}

// NewField constructs a field from a given modulus, failing if the modulus
// is not (probably) prime. The primality check is best-effort, via
// big.Int.ProbablyPrime.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus.Sign() <= 0 {
		return nil, &FieldError{fmt.Sprintf("modulus %s is not positive", modulus)}
	} else if !modulus.ProbablyPrime(32) {
		return nil, &FieldError{fmt.Sprintf("modulus %s is not prime", modulus)}
	}

	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// Modulus returns the prime modulus of this field.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Zero constructs the additive identity of this field.
func (f *Field) Zero() Element {
	return Element{big.NewInt(0), f}
}

// One constructs the multiplicative identity of this field.
func (f *Field) One() Element {
	return Element{big.NewInt(1), f}
}

// NewElement constructs a field element from a signed integer, reducing it
// modulo the field's prime.
func (f *Field) NewElement(val int64) Element {
	return f.NewElementFromBigInt(big.NewInt(val))
}

// NewElementFromBigInt constructs a field element from an arbitrary integer,
// reducing it modulo the field's prime.
func (f *Field) NewElementFromBigInt(val *big.Int) Element {
	v := new(big.Int).Mod(val, f.modulus)
	return Element{v, f}
}

// NewElementFromBytes interprets a big-endian byte slice as an integer and
// reduces it modulo the field's prime.  Used by the PRNG cyclic register
// to turn hash output into a field element.
func (f *Field) NewElementFromBytes(bytes []byte) Element {
	return f.NewElementFromBigInt(new(big.Int).SetBytes(bytes))
}

// RandomElement samples a uniformly random element of this field.  This is
// not cryptographically secure: it is used only by test helpers, which
// this module's Non-goals do not treat as a soundness boundary.
func (f *Field) RandomElement() Element {
	nBytes := (f.modulus.BitLen() + 15) / 8
	v := new(big.Int).SetBytes(randomBytes(nBytes))

	return f.NewElementFromBigInt(v)
}

// generatorOfSubgroup finds a generator of the (unique) subgroup of
// (Z/pZ)* of the given power-of-two order, by searching for a generator of
// the full multiplicative group and raising it to the appropriate power.
// Mirrors the trial-search in bigring.NewCyclicRing, generalised to an
// arbitrary runtime prime.
func (f *Field) generatorOfSubgroup(order uint64) (Element, error) {
	if order == 0 || (order&(order-1)) != 0 {
		return Element{}, &DomainError{fmt.Sprintf("domain order %d is not a power of two", order)}
	}

	pMinusOne := new(big.Int).Sub(f.modulus, big.NewInt(1))
	orderBig := new(big.Int).SetUint64(order)
	quotient, rem := new(big.Int).QuoRem(pMinusOne, orderBig, new(big.Int))

	if rem.Sign() != 0 {
		return Element{}, &FieldError{fmt.Sprintf("no root of unity of order %d: %d does not divide p-1", order, order)}
	}

	g, err := f.primitiveRoot()
	if err != nil {
		return Element{}, err
	}

	root := new(big.Int).Exp(g, quotient, f.modulus)

	return Element{root, f}, nil
}

// primitiveRoot finds (and caches) a generator of the full multiplicative
// group (Z/pZ)*, by trial search: a candidate g is a generator of the
// largest power-of-two subgroup we will ever need as long as g^((p-1)/2) !=
// 1, which is sufficient for every order this module requests (all of which
// are themselves powers of two).
func (f *Field) primitiveRoot() (*big.Int, error) {
	if f.generator != nil {
		return f.generator, nil
	}

	half := new(big.Int).Rsh(new(big.Int).Sub(f.modulus, big.NewInt(1)), 1)
	one := big.NewInt(1)

	for candidate := int64(2); candidate < 1<<20; candidate++ {
		g := big.NewInt(candidate)
		if g.Cmp(f.modulus) >= 0 {
			break
		}

		check := new(big.Int).Exp(g, half, f.modulus)
		if check.Cmp(one) != 0 {
			f.generator = g
			return g, nil
		}
	}

	return nil, &FieldError{"unable to find a generator of the multiplicative group"}
}

// RootOfUnity returns a primitive root of unity of the given order, which
// must be a power of two dividing p-1.
func (f *Field) RootOfUnity(order uint64) (Element, error) {
	return f.generatorOfSubgroup(order)
}

// Domain returns the ordered sequence {g^0, g^1, ..., g^(order-1)} where g
// is a primitive order-th root of unity.
func (f *Field) Domain(order uint64) ([]Element, error) {
	root, err := f.RootOfUnity(order)
	if err != nil {
		return nil, err
	}

	points := make([]Element, order)
	points[0] = f.One()

	for i := uint64(1); i < order; i++ {
		points[i] = points[i-1].Mul(root)
	}

	return points, nil
}

// BatchInvert inverts every element of xs in place, using only one modular
// inverse (Montgomery's trick).
func (f *Field) BatchInvert(xs []Element) {
	n := len(xs)
	if n == 0 {
		return
	}

	prefix := make([]Element, n)
	prefix[0] = xs[0]

	for i := 1; i < n; i++ {
		prefix[i] = prefix[i-1].Mul(xs[i])
	}

	inv := prefix[n-1].Inverse()

	for i := n - 1; i > 0; i-- {
		newInv := inv.Mul(xs[i])
		xs[i] = inv.Mul(prefix[i-1])
		inv = newInv
	}

	xs[0] = inv
}

// FieldError signals a field-level configuration failure: a non-prime
// modulus, or a requested domain order which does not divide p-1.
type FieldError struct{ msg string }

func (e *FieldError) Error() string { return "field error: " + e.msg }

// DomainError signals a requested power-of-two domain which is malformed or
// exceeds schema limits.
type DomainError struct{ msg string }

func (e *DomainError) Error() string { return "domain error: " + e.msg }
