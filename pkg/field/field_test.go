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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldRejectsNonPrime(t *testing.T) {
	_, err := NewField(big.NewInt(96768))
	require.Error(t, err)

	var ferr *FieldError
	assert.ErrorAs(t, err, &ferr)
}

func TestNewFieldRejectsNonPositive(t *testing.T) {
	_, err := NewField(big.NewInt(0))
	assert.Error(t, err)

	_, err = NewField(big.NewInt(-7))
	assert.Error(t, err)
}

func TestElementArithmetic(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	a := f.NewElement(3)
	b := f.NewElement(4)

	assert.True(t, a.Add(b).Equal(f.NewElement(7)))
	assert.True(t, a.Sub(b).Equal(f.NewElement(-1)))
	assert.True(t, a.Mul(b).Equal(f.NewElement(12)))
	assert.True(t, a.Div(b).Mul(b).Equal(a))
	assert.True(t, a.Inverse().Mul(a).Equal(f.One()))
	assert.True(t, f.Zero().Inverse().IsZero())
}

func TestElementExp(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	a := f.NewElement(3)
	assert.True(t, a.ExpUint(3).Equal(a.Mul(a).Mul(a)))
	assert.True(t, a.ExpUint(0).Equal(f.One()))
}

func TestElementBytesRoundTrip(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	a := f.NewElement(12345)
	b := f.NewElementFromBytes(a.Bytes())
	assert.True(t, a.Equal(b))
}

func TestRootOfUnityAndDomain(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	g, err := f.RootOfUnity(16)
	require.NoError(t, err)
	assert.True(t, g.ExpUint(16).Equal(f.One()))

	domain, err := f.Domain(16)
	require.NoError(t, err)
	require.Len(t, domain, 16)
	assert.True(t, domain[0].Equal(f.One()))
	assert.True(t, domain[1].Equal(g))
}

func TestDomainRejectsNonDividingOrder(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	// 96768 has 2-adicity 9, so 1<<20 cannot divide p-1.
	_, err = f.Domain(1 << 20)
	assert.Error(t, err)
}

func TestInterpolateRootsRoundTrip(t *testing.T) {
	f, err := NewField(big.NewInt(96769))
	require.NoError(t, err)

	domain, err := f.Domain(4)
	require.NoError(t, err)

	values := []Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)}

	poly, err := f.InterpolateRoots(domain, values)
	require.NoError(t, err)

	for i, x := range domain {
		assert.True(t, poly.Eval(x).Equal(values[i]), "mismatch at domain index %d", i)
	}
}
