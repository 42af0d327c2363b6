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
package compiler

import (
	"fmt"

	"github.com/consensys/air-assembly/pkg/field"
	"github.com/consensys/air-assembly/pkg/register"
	"github.com/consensys/air-assembly/pkg/sexp"
)

// rawMask defers mask source resolution until every input register has been
// parsed, since a mask may reference an input declared later in the file.
type rawMask struct {
	reg          register.Register
	sourceHandle string
}

// buildBank translates every top-level (static $handle <kind> <modifier>*)
// form into the schema's register bank. Registers are added in
// declaration order within their own kind; Bank itself enforces the fixed
// inputs/masks/cyclic ordering.
func (c *compiler) buildBank(forms []*sexp.List) error {
	var (
		inputs   []register.Register
		cyclics  []register.Register
		rawMasks []rawMask
	)

	inputIdx := make(map[string]uint)

	for _, l := range forms {
		if len(l.Elements) < 3 {
			return fmt.Errorf("static: malformed declaration")
		}

		handleTok, ok := symbolOf(l.Elements[1])
		if !ok {
			return fmt.Errorf("static: expected a handle, found %s", l.Elements[1].String(false))
		}

		handle, ok := asHandle(handleTok)
		if !ok {
			return fmt.Errorf("static: malformed handle %q", handleTok)
		}

		kindList := l.Elements[2].AsList()
		if kindList == nil || len(kindList.Elements) == 0 {
			return fmt.Errorf("static %q: missing kind declaration", handle)
		}

		kind, ok := symbolOf(kindList.Elements[0])
		if !ok {
			return fmt.Errorf("static %q: malformed kind declaration", handle)
		}

		switch kind {
		case "input":
			reg, err := parseInputKind(handle, kindList)
			if err != nil {
				return err
			}

			if err := applyRegisterModifiers(&reg, l.Elements[3:]); err != nil {
				return err
			}

			inputIdx[handle] = uint(len(inputs))
			inputs = append(inputs, reg)
		case "mask":
			reg, srcHandle, err := parseMaskKind(handle, kindList)
			if err != nil {
				return err
			}

			rawMasks = append(rawMasks, rawMask{reg, srcHandle})
		case "cycle":
			reg, err := parseCycleKind(c.field, handle, kindList)
			if err != nil {
				return err
			}

			cyclics = append(cyclics, reg)
		default:
			return fmt.Errorf("static %q: unrecognised kind %q", handle, kind)
		}
	}

	masks := make([]register.Register, len(rawMasks))

	for i, rm := range rawMasks {
		idx, ok := inputIdx[rm.sourceHandle]
		if !ok {
			return fmt.Errorf("mask %q: undefined source input %q", rm.reg.Handle, rm.sourceHandle)
		}

		rm.reg.SourceIndex = idx
		masks[i] = rm.reg
	}

	c.schema.SetStaticRegisters(register.NewBank(inputs, masks, cyclics))

	return nil
}

func parseInputKind(handle string, kindList *sexp.List) (register.Register, error) {
	reg := register.Register{Handle: handle, Kind: register.Input}

	if len(kindList.Elements) < 2 {
		return reg, fmt.Errorf("input %q: missing scope (secret|public)", handle)
	}

	scope, ok := symbolOf(kindList.Elements[1])
	if !ok {
		return reg, fmt.Errorf("input %q: malformed scope", handle)
	}

	switch scope {
	case "secret":
		reg.Scope = register.Secret
	case "public":
		reg.Scope = register.Public
	default:
		return reg, fmt.Errorf("input %q: scope must be secret or public, found %q", handle, scope)
	}

	for _, e := range kindList.Elements[2:] {
		tag, ok := symbolOf(e)
		if ok && tag == "binary" {
			reg.Binary = true
			continue
		}

		return reg, fmt.Errorf("input %q: unrecognised modifier %s", handle, e.String(false))
	}

	return reg, nil
}

func parseMaskKind(handle string, kindList *sexp.List) (register.Register, string, error) {
	reg := register.Register{Handle: handle, Kind: register.Mask}

	if len(kindList.Elements) < 2 {
		return reg, "", fmt.Errorf("mask %q: missing source input handle", handle)
	}

	srcTok, ok := symbolOf(kindList.Elements[1])
	if !ok {
		return reg, "", fmt.Errorf("mask %q: malformed source handle", handle)
	}

	srcHandle, ok := asHandle(srcTok)
	if !ok {
		return reg, "", fmt.Errorf("mask %q: malformed source handle %q", handle, srcTok)
	}

	for _, e := range kindList.Elements[2:] {
		tag, ok := symbolOf(e)
		if ok && tag == "inverted" {
			reg.Inverted = true
			continue
		}

		return reg, "", fmt.Errorf("mask %q: unrecognised modifier %s", handle, e.String(false))
	}

	return reg, srcHandle, nil
}

func parseCycleKind(f *field.Field, handle string, kindList *sexp.List) (register.Register, error) {
	reg := register.Register{Handle: handle, Kind: register.Cyclic}

	if len(kindList.Elements) < 2 {
		return reg, fmt.Errorf("cycle %q: missing values or prng declaration", handle)
	}

	inner := kindList.Elements[1].AsList()
	if inner == nil || len(inner.Elements) == 0 {
		return reg, fmt.Errorf("cycle %q: malformed declaration", handle)
	}

	head, ok := symbolOf(inner.Elements[0])
	if !ok {
		return reg, fmt.Errorf("cycle %q: malformed declaration", handle)
	}

	switch head {
	case "values":
		values := make([]field.Element, len(inner.Elements)-1)

		for i, e := range inner.Elements[1:] {
			tok, ok := symbolOf(e)
			if !ok {
				return reg, fmt.Errorf("cycle %q: value %d is not a scalar", handle, i)
			}

			v, ok := parseFieldScalar(f, tok)
			if !ok {
				return reg, fmt.Errorf("cycle %q: invalid scalar literal %q", handle, tok)
			}

			values[i] = v
		}

		reg.Values = values
		reg.Period = uint64(len(values))
	case "prng":
		if len(inner.Elements) != 4 {
			return reg, fmt.Errorf("cycle %q: prng requires method, seed and count", handle)
		}

		method, ok := symbolOf(inner.Elements[1])
		if !ok || method != "sha256" {
			return reg, fmt.Errorf("cycle %q: only the sha256 prng method is supported", handle)
		}

		seedTok, ok := symbolOf(inner.Elements[2])
		if !ok {
			return reg, fmt.Errorf("cycle %q: malformed prng seed", handle)
		}

		seedInt, ok := parseBigInt(seedTok)
		if !ok {
			return reg, fmt.Errorf("cycle %q: invalid prng seed %q", handle, seedTok)
		}

		countTok, ok := symbolOf(inner.Elements[3])
		if !ok {
			return reg, fmt.Errorf("cycle %q: malformed prng count", handle)
		}

		count, err := parseUint(countTok)
		if err != nil {
			return reg, fmt.Errorf("cycle %q: %w", handle, err)
		}

		reg.Period = count
		reg.Values = nil
		reg.Seed = f.NewElementFromBigInt(seedInt)
	default:
		return reg, fmt.Errorf("cycle %q: unrecognised declaration %q", handle, head)
	}

	return reg, nil
}

// applyRegisterModifiers parses the optional (steps N)/(shift N) sibling
// forms following an input register's kind declaration.
func applyRegisterModifiers(reg *register.Register, forms []sexp.SExp) error {
	for _, sx := range forms {
		l := sx.AsList()
		if l == nil || len(l.Elements) != 2 {
			return fmt.Errorf("static %q: malformed modifier", reg.Handle)
		}

		name, ok := symbolOf(l.Elements[0])
		if !ok {
			return fmt.Errorf("static %q: malformed modifier", reg.Handle)
		}

		tok, ok := symbolOf(l.Elements[1])
		if !ok {
			return fmt.Errorf("static %q: modifier %q has no value", reg.Handle, name)
		}

		switch name {
		case "steps":
			v, err := parseUint(tok)
			if err != nil {
				return fmt.Errorf("static %q: steps: %w", reg.Handle, err)
			}

			reg.Steps = v
		case "shift":
			v, err := parseInt(tok)
			if err != nil {
				return fmt.Errorf("static %q: shift: %w", reg.Handle, err)
			}

			reg.Shift = v
		default:
			return fmt.Errorf("static %q: unrecognised modifier %q", reg.Handle, name)
		}
	}

	return nil
}
