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

import "fmt"

// TypeError signals a shape mismatch, out-of-range index, a non-literal
// exponent passed to exp, or a non-scalar divisor where one is disallowed.
type TypeError struct{ msg string }

func (e *TypeError) Error() string { return "type error: " + e.msg }

// NewTypeError constructs a TypeError with a formatted message.
func NewTypeError(format string, args ...any) *TypeError {
	return &TypeError{fmt.Sprintf(format, args...)}
}

// UndefinedReference signals an unresolved handle or index used by a load,
// store or call.
type UndefinedReference struct{ msg string }

func (e *UndefinedReference) Error() string { return "undefined reference: " + e.msg }

// NewUndefinedReference constructs an UndefinedReference with a formatted
// message.
func NewUndefinedReference(format string, args ...any) *UndefinedReference {
	return &UndefinedReference{fmt.Sprintf(format, args...)}
}

// ArityError signals a wrong number of inputs, a malformed export
// initializer, or a duplicate handle.
type ArityError struct{ msg string }

func (e *ArityError) Error() string { return "arity error: " + e.msg }

// NewArityError constructs an ArityError with a formatted message.
func NewArityError(format string, args ...any) *ArityError {
	return &ArityError{fmt.Sprintf(format, args...)}
}
