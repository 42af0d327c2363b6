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

// Package register implements the static register bank of an AIR schema:
// input, cyclic and mask registers, their per-step materialisation
// into a static trace, and the PRNG-seeded cyclic sequence generator.
package register

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/air-assembly/pkg/field"
)

// Kind enumerates the three static register flavours
type Kind uint8

// Static register kinds.
const (
	Input Kind = iota
	Cyclic
	Mask
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Cyclic:
		return "cyclic"
	case Mask:
		return "mask"
	default:
		return "?"
	}
}

// Scope distinguishes a secret (prover-supplied witness) input register
// from a public one.
type Scope uint8

// Input register scopes.
const (
	Secret Scope = iota
	Public
)

// Register describes a single static register declaration. Only the
// fields relevant to its Kind are meaningful:
//   - Input: Scope, Binary, Steps, Shift
//   - Cyclic: Period
//   - Mask: SourceIndex, Inverted
type Register struct {
	Handle string
	Kind   Kind

	// Input fields.
	Scope  Scope
	Binary bool
	Steps  uint64 // minimum trace span per input element
	Shift  int64  // signed rotation applied to the materialised column

	// Cyclic fields. Values holds the literal repeating block when the
	// register was declared with explicit values; it is nil for a
	// PrngSequence-seeded cyclic register, in which case Seed is the
	// sha256 PRNG's seed element.
	Values []field.Element
	Period uint64       // the repeating block length (== len(Values) when literal)
	Seed   field.Element // PRNG seed, meaningful only when Values == nil

	// Mask fields.
	SourceIndex uint // index, within the bank, of the input register this mask derives from
	Inverted    bool
	MaskRow     uint64 // the single row at which an unconditional mask register is 1
}

// Bank is the ordered collection of static registers belonging to a
// schema: inputs first, then masks, then cyclic registers.
type Bank struct {
	Registers []Register
	index     map[string]uint
}

// NewBank orders the given registers (inputs, then masks, then cyclic) and
// builds the handle->index map used by IndexOf.
func NewBank(inputs, masks, cyclics []Register) *Bank {
	all := make([]Register, 0, len(inputs)+len(masks)+len(cyclics))
	all = append(all, inputs...)
	all = append(all, masks...)
	all = append(all, cyclics...)

	idx := make(map[string]uint, len(all))
	for i, r := range all {
		idx[r.Handle] = uint(i)
	}

	return &Bank{all, idx}
}

// IndexOf returns the index of the register with the given handle.
func (b *Bank) IndexOf(handle string) (uint, bool) {
	i, ok := b.index[handle]
	return i, ok
}

// Handles returns the registers' handles in bank order, for building an
// airlang.Context's static handle list.
func (b *Bank) Handles() []string {
	out := make([]string, len(b.Registers))
	for i, r := range b.Registers {
		out[i] = r.Handle
	}

	return out
}

// InputTrace is an input register's materialised column: Values holds one
// field element per trace row, and Native records which of those rows were
// supplied directly by the witness as opposed to filled in by repetition
// from the last defined value. Mask registers read Native directly rather
// than re-deriving it.
type InputTrace struct {
	Values []field.Element
	Native *bitset.BitSet
}

// MaterialiseInput places the witness column col at strides of reg.Steps
// across a trace of `steps` rows, fills undefined cells by repeating the
// last defined value, and finally rotates the result by reg.Shift (signed,
// modulo `steps`). Binary inputs are validated to be 0 or 1.
func MaterialiseInput(f *field.Field, reg Register, col []field.Element, steps uint64) (*InputTrace, error) {
	stride := reg.Steps
	if stride == 0 {
		stride = 1
	}

	if needed := (steps + stride - 1) / stride; uint64(len(col)) < needed {
		return nil, fmt.Errorf("register: input %q has %d values, need at least %d at stride %d",
			reg.Handle, len(col), needed, stride)
	}

	if reg.Binary {
		for i, v := range col {
			if !v.IsZero() && !v.Equal(f.One()) {
				return nil, fmt.Errorf("register: input %q value %v at witness index %d is not binary", reg.Handle, v, i)
			}
		}
	}

	values := make([]field.Element, steps)
	native := bitset.New(uint(steps))
	last := f.Zero()
	haveLast := false

	for i := uint64(0); i < steps; i++ {
		if i%stride == 0 && i/stride < uint64(len(col)) {
			values[i] = col[i/stride]
			native.Set(uint(i))
			last = values[i]
			haveLast = true

			continue
		}

		if haveLast {
			values[i] = last
		} else {
			values[i] = f.Zero()
		}
	}

	return &InputTrace{rotate(values, reg.Shift, steps), rotateBits(native, reg.Shift, steps)}, nil
}

// rotate cyclically shifts vs by shift positions (positive shifts move
// element i to position i+shift mod n).
func rotate(vs []field.Element, shift int64, n uint64) []field.Element {
	if shift == 0 || n == 0 {
		return vs
	}

	out := make([]field.Element, n)
	s := ((shift % int64(n)) + int64(n)) % int64(n)

	for i := uint64(0); i < n; i++ {
		out[(i+uint64(s))%n] = vs[i]
	}

	return out
}

// rotateBits applies the same cyclic rotation as rotate to a bitset.
func rotateBits(bs *bitset.BitSet, shift int64, n uint64) *bitset.BitSet {
	if shift == 0 || n == 0 {
		return bs
	}

	out := bitset.New(uint(n))
	s := ((shift % int64(n)) + int64(n)) % int64(n)

	for i := uint64(0); i < n; i++ {
		if bs.Test(uint(i)) {
			out.Set(uint((i + uint64(s)) % n))
		}
	}

	return out
}

// PrngSequence deterministically derives a repeating sequence of field
// elements from a seed: the i-th raw value is
// sha256(seed_be || i_be32) reduced modulo the field's characteristic. A
// cyclic register of period n is materialised by taking PrngSequence(seed)
// values 0..n-1 and repeating them every n steps.
type PrngSequence struct {
	field *field.Field
	seed  []byte
}

// NewPrngSequence constructs a PrngSequence over f seeded by seed's
// canonical big-endian byte representation.
func NewPrngSequence(f *field.Field, seed field.Element) *PrngSequence {
	return &PrngSequence{f, seed.Bytes()}
}

// At returns the i-th value of the sequence.
func (p *PrngSequence) At(i uint64) field.Element {
	var suffix [4]byte

	binary.BigEndian.PutUint32(suffix[:], uint32(i))

	h := sha256.New()
	h.Write(p.seed)
	h.Write(suffix[:])
	digest := h.Sum(nil)

	return p.field.NewElementFromBytes(digest)
}

// Block returns the first n values of the sequence, the repeating block
// materialised for a cyclic register of period n.
func (p *PrngSequence) Block(n uint64) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = p.At(uint64(i))
	}

	return out
}

// MaterialiseCyclic computes the trace of a cyclic register over `steps`
// rows: its repeating block (literal reg.Values, or seq's first reg.Period
// values when PRNG-seeded) repeated to fill the trace. seq is ignored when
// reg.Values is non-nil.
func MaterialiseCyclic(seq *PrngSequence, reg Register, steps uint64) []field.Element {
	block := reg.Values
	if block == nil {
		block = seq.Block(reg.Period)
	}

	out := make([]field.Element, steps)

	for i := range out {
		out[i] = block[uint64(i)%reg.Period]
	}

	return out
}

// MaterialiseMask computes the trace of a mask register over `steps` rows:
// for each row, 1 (or 0 if Inverted) iff the corresponding cell of the
// referenced input register (source.Native) was natively defined rather
// than filled in by repetition.
func MaterialiseMask(f *field.Field, reg Register, source *InputTrace, steps uint64) []field.Element {
	out := make([]field.Element, steps)

	for i := uint64(0); i < steps; i++ {
		defined := source.Native.Test(uint(i))
		if reg.Inverted {
			defined = !defined
		}

		if defined {
			out[i] = f.One()
		} else {
			out[i] = f.Zero()
		}
	}

	return out
}
