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

package binary

import "io"

// Reader provides methods for decoding values.
type Reader interface {
	io.Reader
	// Data reads the data bytes in their entirety.
	Data([]byte)
	// Bool decodes and returns a boolean value from the Reader.
	Bool() bool
	// Uint8 decodes and returns an unsigned, 8 bit integer value from the Reader.
	Uint8() uint8
	// Int32 decodes and returns a signed, 32 bit integer value from the Reader.
	Int32() int32
	// Uint32 decodes and returns an unsigned, 32 bit integer value from the Reader.
	Uint32() uint32
	// Float32 decodes and returns a 32 bit floating-point value from the Reader.
	Float32() float32
	// Int64 decodes and returns a signed, 64 bit integer value from the Reader.
	Int64() int64
	// Uint64 decodes and returns an unsigned, 64 bit integer value from the Reader.
	Uint64() uint64
	// String decodes and returns a count prefixed string from the Reader.
	String() string
	// Count decodes a collection count from the stream.
	Count() uint32
	// Error returns the error which stopped reading from the stream, or nil.
	Error() error
	// SetError sets the error state and stops reading from the stream.
	SetError(error)
}

// ReadBytes reads a count prefixed byte slice from r. If r reports how many
// bytes remain, a count larger than that sets io.ErrUnexpectedEOF instead of
// allocating.
func ReadBytes(r Reader) []byte {
	n := r.Count()
	if r.Error() != nil || !Fits(r, uint64(n)) {
		return nil
	}
	out := make([]byte, n)
	r.Data(out)
	return out
}

// Fits returns true if r may hold at least n more bytes. Readers that do not
// report their remaining length always fit. On failure the error state of r is
// set to io.ErrUnexpectedEOF.
func Fits(r Reader, n uint64) bool {
	l, ok := r.(interface{ Len() int })
	if !ok || n <= uint64(l.Len()) {
		return true
	}
	r.SetError(io.ErrUnexpectedEOF)
	return false
}
