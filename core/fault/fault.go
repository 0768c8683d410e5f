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

// Package fault holds the constant error type and error collection helpers
// shared by the trace packages.
package fault

import "errors"

// Const is the type for constant error values.
type Const string

// Error implements error for Const returning the string value of the const.
func (e Const) Error() string { return string(e) }

// List collects errors in the order they were reported.
type List []error

// Collect adds err to the list. Nil errors are ignored.
func (l *List) Collect(err error) {
	if err != nil {
		*l = append(*l, err)
	}
}

// First returns the first error added to the list.
func (l List) First() error {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// Err returns all the collected errors joined into one, or nil if the list is
// empty.
func (l List) Err() error {
	return errors.Join(l...)
}
