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
package register

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

func TestPrngSequenceIsDeterministic(t *testing.T) {
	f := testField(t)
	seed := f.NewElementFromBigInt(big.NewInt(0x4d694d43))

	a := NewPrngSequence(f, seed)
	b := NewPrngSequence(f, seed)

	for i := uint64(0); i < 16; i++ {
		assert.True(t, a.At(i).Equal(b.At(i)), "prng value %d diverged across independent sequences", i)
	}
}

func TestPrngSequenceDiffersBySeed(t *testing.T) {
	f := testField(t)

	a := NewPrngSequence(f, f.NewElement(1))
	b := NewPrngSequence(f, f.NewElement(2))

	assert.False(t, a.At(0).Equal(b.At(0)))
}

func TestMaterialiseInputFillsByRepetitionAndShifts(t *testing.T) {
	f := testField(t)
	reg := Register{Handle: "in0", Kind: Input, Steps: 4, Shift: -1}

	col := []field.Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)}

	it, err := MaterialiseInput(f, reg, col, 16)
	require.NoError(t, err)
	require.Len(t, it.Values, 16)

	// Before rotation, native cells land at 0,4,8,12; shift=-1 rotates every
	// cell one position to the left (mod 16).
	assert.True(t, it.Values[15].Equal(f.NewElement(3)))
	assert.True(t, it.Native.Test(15))

	// Repeated (non-native) cells hold the last defined value.
	assert.True(t, it.Values[2].Equal(f.NewElement(3)))
	assert.False(t, it.Native.Test(2))
}

func TestMaterialiseInputRejectsNonBinary(t *testing.T) {
	f := testField(t)
	reg := Register{Handle: "bit", Kind: Input, Steps: 1, Binary: true}

	_, err := MaterialiseInput(f, reg, []field.Element{f.NewElement(2)}, 1)
	assert.Error(t, err)
}

func TestMaterialiseMaskTracksNativeCells(t *testing.T) {
	f := testField(t)
	inReg := Register{Handle: "in0", Kind: Input, Steps: 4}
	col := []field.Element{f.NewElement(3), f.NewElement(4), f.NewElement(5), f.NewElement(6)}

	it, err := MaterialiseInput(f, inReg, col, 16)
	require.NoError(t, err)

	mask := Register{Handle: "msk0", Kind: Mask, SourceIndex: 0}
	out := MaterialiseMask(f, mask, it, 16)

	assert.True(t, out[0].Equal(f.One()))
	assert.True(t, out[1].IsZero())

	inverted := Register{Handle: "msk1", Kind: Mask, SourceIndex: 0, Inverted: true}
	invOut := MaterialiseMask(f, inverted, it, 16)

	assert.True(t, invOut[0].IsZero())
	assert.True(t, invOut[1].Equal(f.One()))
}

func TestMaterialiseCyclicRepeatsLiteralBlock(t *testing.T) {
	f := testField(t)
	reg := Register{Handle: "cyc0", Kind: Cyclic, Period: 2, Values: []field.Element{f.NewElement(1), f.NewElement(2)}}

	out := MaterialiseCyclic(nil, reg, 6)
	require.Len(t, out, 6)

	for i, v := range out {
		want := f.NewElement(1)
		if i%2 == 1 {
			want = f.NewElement(2)
		}

		assert.True(t, v.Equal(want), "index %d", i)
	}
}

func TestMaterialiseCyclicFromPrngBlock(t *testing.T) {
	f := testField(t)
	seed := f.NewElement(42)
	reg := Register{Handle: "cyc0", Kind: Cyclic, Period: 4, Seed: seed}

	seq := NewPrngSequence(f, seed)
	out := MaterialiseCyclic(seq, reg, 8)
	require.Len(t, out, 8)

	for i := 0; i < 8; i++ {
		assert.True(t, out[i].Equal(seq.At(uint64(i%4))), "index %d", i)
	}
}

func TestBankOrdersRegistersAndIndexesHandles(t *testing.T) {
	inputs := []Register{{Handle: "in0", Kind: Input}}
	masks := []Register{{Handle: "msk0", Kind: Mask}}
	cyclics := []Register{{Handle: "cyc0", Kind: Cyclic}}

	bank := NewBank(inputs, masks, cyclics)

	require.Len(t, bank.Registers, 3)
	assert.Equal(t, "in0", bank.Registers[0].Handle)
	assert.Equal(t, "msk0", bank.Registers[1].Handle)
	assert.Equal(t, "cyc0", bank.Registers[2].Handle)
	assert.Equal(t, []string{"in0", "msk0", "cyc0"}, bank.Handles())
}
