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

package packet

import (
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// MalformedPacketError is returned when a packet is structurally
// inconsistent. Offset is the byte offset of the failure, relative to the
// start of the packet unless the error came from a trace file reader, in
// which case it is relative to the start of the file.
type MalformedPacketError struct {
	Index  uint64
	Offset int64
	Reason error
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("Malformed packet %d at offset %d: %v", e.Index, e.Offset, e.Reason)
}

func (e *MalformedPacketError) Unwrap() error { return e.Reason }

// Cause returns the structural problem, as used by github.com/pkg/errors.
func (e *MalformedPacketError) Cause() error { return e.Reason }

// SerializationUnsupportedError is returned when a call cannot be
// represented in a packet.
type SerializationUnsupportedError struct {
	CallID api.CallID
	Cause  error
}

func (e *SerializationUnsupportedError) Error() string {
	return fmt.Sprintf("Cannot serialize %v: %v", e.CallID, e.Cause)
}

func (e *SerializationUnsupportedError) Unwrap() error { return e.Cause }
