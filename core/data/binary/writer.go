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

import "fmt"

// Writer provides methods for encoding values.
type Writer interface {
	// Data writes the data bytes in their entirety.
	Data([]byte)
	// Bool encodes a boolean value to the Writer.
	Bool(bool)
	// Uint8 encodes an unsigned, 8 bit integer value to the Writer.
	Uint8(uint8)
	// Int32 encodes a signed, 32 bit integer value to the Writer.
	Int32(int32)
	// Uint32 encodes an usigned, 32 bit integer value to the Writer.
	Uint32(uint32)
	// Float32 encodes a 32 bit floating-point value to the Writer.
	Float32(float32)
	// Int64 encodes a signed, 64 bit integer value to the Writer.
	Int64(int64)
	// Uint64 encodes an unsigned, 64 bit integer value to the Writer.
	Uint64(uint64)
	// String encodes a count prefixed string to the Writer.
	String(string)
	// Error returns the error which stopped writing to the stream, or nil.
	Error() error
	// SetError sets the error state and stops writing to the stream.
	SetError(error)
}

// WriteBytes writes b to w prefixed with its length.
func WriteBytes(w Writer, b []byte) {
	if uint64(len(b)) > uint64(^uint32(0)) {
		w.SetError(&CountError{Count: uint64(len(b)), Limit: uint64(^uint32(0))})
		return
	}
	w.Uint32(uint32(len(b)))
	w.Data(b)
}

// CountError is raised when a collection count is larger than the stream
// permits.
type CountError struct {
	Count uint64
	Limit uint64
}

func (e *CountError) Error() string {
	return fmt.Sprintf("Collection count %d exceeds limit %d", e.Count, e.Limit)
}
