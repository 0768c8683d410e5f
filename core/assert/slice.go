// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package assert

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// OnSlice is the result of calling ThatSlice on an Assertion.
// It provides assertion tests that are specific to slice types.
type OnSlice struct {
	*Assertion
	slice reflect.Value
}

// ThatSlice returns an OnSlice for assertions on slice type objects.
// Calling this with a non slice type will result in panics.
func (a *Assertion) ThatSlice(slice interface{}) OnSlice {
	return OnSlice{Assertion: a, slice: reflect.ValueOf(slice)}
}

// IsEmpty asserts that the slice was of length 0
func (o OnSlice) IsEmpty() bool {
	return o.Compare(o.slice.Len(), "is", "empty").Test(o.slice.Len() == 0)
}

// IsNotEmpty asserts that the slice has elements
func (o OnSlice) IsNotEmpty() bool {
	return o.Compare(o.slice.Len(), "length >", 0).Test(o.slice.Len() > 0)
}

// IsLength asserts that the slice has exactly the specified number of elements
func (o OnSlice) IsLength(length int) bool {
	return o.Compare(o.slice.Len(), "length ==", length).Test(o.slice.Len() == length)
}

// Equals asserts the slice matches expected, using cmp.Diff to report the
// differences.
func (o OnSlice) Equals(expected interface{}, opts ...cmp.Option) bool {
	return o.TestDeepDiff(o.slice.Interface(), expected, opts...)
}

// OnString is the result of calling ThatString on an Assertion.
type OnString struct {
	*Assertion
	value string
}

// ThatString returns an OnString for string based assertions.
// The untyped argument is converted to a string using fmt.Sprint.
func (a *Assertion) ThatString(value interface{}) OnString {
	switch v := value.(type) {
	case string:
		return OnString{Assertion: a, value: v}
	case []byte:
		return OnString{Assertion: a, value: string(v)}
	default:
		return OnString{Assertion: a, value: fmt.Sprint(value)}
	}
}

// Equals asserts that the supplied string is equal to the expected string.
func (o OnString) Equals(expect string) bool {
	return o.Compare(o.value, "==", expect).Test(o.value == expect)
}

// Contains asserts that the supplied string contains substr.
func (o OnString) Contains(substr string) bool {
	return o.Compare(o.value, "contains", substr).Test(strings.Contains(o.value, substr))
}

// HasPrefix asserts that the supplied string start with substr.
func (o OnString) HasPrefix(substr string) bool {
	return o.Compare(o.value, "starts with", substr).Test(strings.HasPrefix(o.value, substr))
}
