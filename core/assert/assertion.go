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
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/google/go-cmp/cmp"
)

type level int

const (
	// Log is the informational level.
	Log = level(iota)
	// Error is used for things that cause test failures but do not abort.
	Error
	// Fatal is used for failures that cause the running test to immediately stop.
	Fatal
)

func (l level) String() string {
	switch l {
	case Log:
		return "Info"
	case Error:
		return "Error"
	case Fatal:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Assertion is the type for the start of an assertion line.
type Assertion struct {
	level level
	out   bytes.Buffer
	to    Output
}

// Critical switches this assertion from Error to Fatal.
func (a *Assertion) Critical() *Assertion {
	a.level = Fatal
	return a
}

// Log appends the message to the cached output and flushes it at Log level.
func (a *Assertion) Log(args ...interface{}) {
	fmt.Fprint(&a.out, args...)
	a.level = Log
	a.Commit()
}

// Error appends the message to the cached output and flushes it at Error level.
func (a *Assertion) Error(args ...interface{}) {
	fmt.Fprint(&a.out, args...)
	a.level = Error
	a.Commit()
}

func (a *Assertion) printPretty(value interface{}) {
	switch value := value.(type) {
	case error:
		fmt.Fprintf(&a.out, "`%v`", value)
	case string:
		fmt.Fprintf(&a.out, "`%s`", value)
	default:
		fmt.Fprint(&a.out, value)
	}
}

// Print writes the values to the output buffer, joined by tabs.
func (a *Assertion) Print(args ...interface{}) *Assertion {
	for i, v := range args {
		if i != 0 {
			a.out.WriteString("\t")
		}
		a.printPretty(v)
	}
	return a
}

// Println prints the values using Print and then starts a new indented line.
func (a *Assertion) Println(args ...interface{}) *Assertion {
	a.Print(args...)
	a.out.WriteString("\n    ")
	return a
}

// Printf writes a formatted unquoted string to the output buffer.
func (a *Assertion) Printf(format string, args ...interface{}) *Assertion {
	fmt.Fprintf(&a.out, format, args...)
	return a
}

// Add appends a key value pair to the output buffer.
func (a *Assertion) Add(key string, values ...interface{}) *Assertion {
	a.out.WriteString(key)
	a.out.WriteString("\t\t")
	return a.Println(values...)
}

// Got adds the standard "Got" entry to the output buffer.
func (a *Assertion) Got(values ...interface{}) *Assertion {
	return a.Add("Got", values...)
}

// Expect adds the standard "Expect" entry to the output buffer.
func (a *Assertion) Expect(op string, values ...interface{}) *Assertion {
	a.out.WriteString("Expect\t")
	a.out.WriteString(op)
	a.out.WriteString("\t")
	return a.Println(values...)
}

// Compare adds both the "Got" and "Expect" entries to the output buffer.
func (a *Assertion) Compare(value interface{}, op string, expect ...interface{}) *Assertion {
	return a.Got(value).Expect(op, expect...)
}

// Test commits the pending output if the condition is not true.
func (a *Assertion) Test(condition bool) bool {
	if !condition {
		if a.level < Error {
			a.level = Error
		}
		a.Commit()
	}
	return condition
}

// TestDeepDiff compares value and expect with cmp.Diff, committing the diff
// if they differ.
func (a *Assertion) TestDeepDiff(value, expect interface{}, opts ...cmp.Option) bool {
	diff := cmp.Diff(expect, value, opts...)
	if diff == "" {
		return true
	}
	a.Add("Diff", "(-expect +got)")
	a.out.WriteString(diff)
	a.Commit()
	return false
}

// Commit writes the output lines to the main output object.
func (a *Assertion) Commit() {
	buf := &bytes.Buffer{}
	tabs := tabwriter.NewWriter(buf, 1, 4, 1, ' ', tabwriter.StripEscape)
	tabs.Write(a.out.Bytes())
	tabs.Flush()
	message := a.level.String() + ":" + strings.TrimRightFunc(buf.String(), unicode.IsSpace)
	switch a.level {
	case Error:
		a.to.Error(message)
	case Fatal:
		a.to.Fatal(message)
	default:
		a.to.Log(message)
	}
}
