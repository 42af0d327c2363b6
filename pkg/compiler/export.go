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

	"github.com/consensys/air-assembly/pkg/schema"
	"github.com/consensys/air-assembly/pkg/sexp"
	"github.com/consensys/air-assembly/pkg/source"
)

// buildExports translates every top-level (export name cycleLength (init
// seed|(vector e...))) form into a schema.Export.
func (c *compiler) buildExports(forms []*sexp.List) []source.SyntaxError {
	for _, l := range forms {
		e, err := c.buildExport(l)
		if err != nil {
			return c.wrap(l, err)
		}

		c.exports = append(c.exports, e)
	}

	return nil
}

func (c *compiler) buildExport(l *sexp.List) (schema.Export, error) {
	if len(l.Elements) != 4 {
		return schema.Export{}, fmt.Errorf("export: expected (export name cycleLength (init ...))")
	}

	name, ok := symbolOf(l.Elements[1])
	if !ok {
		return schema.Export{}, fmt.Errorf("export: expected a name")
	}

	lenTok, ok := symbolOf(l.Elements[2])
	if !ok {
		return schema.Export{}, fmt.Errorf("export %q: malformed cycleLength", name)
	}

	cycleLength, err := parseUint(lenTok)
	if err != nil {
		return schema.Export{}, fmt.Errorf("export %q: cycleLength: %w", name, err)
	}

	initList := l.Elements[3].AsList()
	if initList == nil || len(initList.Elements) != 2 {
		return schema.Export{}, fmt.Errorf("export %q: expected (init seed|(vector ...))", name)
	}

	tag, ok := symbolOf(initList.Elements[0])
	if !ok || tag != "init" {
		return schema.Export{}, fmt.Errorf("export %q: expected (init seed|(vector ...))", name)
	}

	e := schema.Export{Name: name, CycleLength: cycleLength}

	if kw, ok := symbolOf(initList.Elements[1]); ok && kw == "seed" {
		e.UseSeed = true
		return e, nil
	}

	v, err := parseLiteralValue(c.field, initList.Elements[1])
	if err != nil {
		return schema.Export{}, fmt.Errorf("export %q: %w", name, err)
	}

	e.Initializer = v.Cells

	return e, nil
}
