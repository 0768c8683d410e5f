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

package api

import (
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/core/data/binary"
	"github.com/LunarG/VulkanTools-sub015/core/fault"
)

const (
	// ErrMissingCreateInfo is raised when a call that requires a structure
	// argument is recorded without one.
	ErrMissingCreateInfo = fault.Const("Required structure pointer is nil")
	// ErrParallelArrays is raised when arrays that share one count argument
	// have different lengths.
	ErrParallelArrays = fault.Const("Arrays sharing a count have different lengths")
)

// TagError is raised when the length argument index stored before an array
// does not match the one the decoder expects.
type TagError struct {
	Expect uint32
	Got    uint32
}

func (e *TagError) Error() string {
	return fmt.Sprintf("Array keyed by argument %d, expected argument %d", e.Got, e.Expect)
}

// CountMismatchError is raised when arrays that share one count argument were
// stored with different lengths.
type CountMismatchError struct {
	Arg         uint32
	First, Then uint32
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("Arrays keyed by argument %d have counts %d and %d", e.Arg, e.First, e.Then)
}

// writeArray writes the header of an array that is referenced by pointer: the
// position of its length argument followed by the element count.
func writeArray(w binary.Writer, arg uint32, n int) {
	w.Uint32(arg)
	w.Uint32(uint32(n))
}

// readArray reads an array header written by writeArray, checking that it is
// keyed by arg and that the stream could hold n elements of at least size
// bytes each.
func readArray(r binary.Reader, arg uint32, size uint64) int {
	if got := r.Uint32(); r.Error() == nil && got != arg {
		r.SetError(&TagError{Expect: arg, Got: got})
	}
	n := r.Count()
	if r.Error() != nil || !binary.Fits(r, uint64(n)*size) {
		return 0
	}
	return int(n)
}

func writeSlice[T any](w binary.Writer, arg uint32, s []T, put func(T)) {
	writeArray(w, arg, len(s))
	for _, v := range s {
		put(v)
	}
}

// readSlice returns nil for an empty array.
func readSlice[T any](r binary.Reader, arg uint32, size uint64, get func() T) []T {
	n := readArray(r, arg, size)
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = get()
	}
	return out
}

func writeHandles(w binary.Writer, arg uint32, s []Handle) {
	writeSlice(w, arg, s, func(h Handle) { w.Uint64(uint64(h)) })
}

func readHandles(r binary.Reader, arg uint32) []Handle {
	return readSlice(r, arg, 8, func() Handle { return Handle(r.Uint64()) })
}

func writeStrings(w binary.Writer, arg uint32, s []string) {
	writeSlice(w, arg, s, w.String)
}

func readStrings(r binary.Reader, arg uint32) []string {
	return readSlice(r, arg, 4, r.String)
}

func writeBytes(w binary.Writer, arg uint32, b []byte) {
	writeArray(w, arg, len(b))
	w.Data(b)
}

// readBytes returns nil for an empty range.
func readBytes(r binary.Reader, arg uint32) []byte {
	n := readArray(r, arg, 1)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	r.Data(out)
	return out
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
