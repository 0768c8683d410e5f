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

package replay

import (
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// DivergenceError reports a live call whose result differs from the result
// recorded in the trace.
//
// A divergence is reported and replay continues, unless Fatal is set: a
// creation call that succeeded when captured but failed on replay leaves
// later packets referring to an object that does not exist.
type DivergenceError struct {
	Index    uint64
	CallID   api.CallID
	Recorded api.Result
	Live     api.Result
	// Detail describes a divergence other than a result mismatch.
	Detail string
	Fatal  bool
}

func (e *DivergenceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v #%d diverged: %s", e.CallID, e.Index, e.Detail)
	}
	return fmt.Sprintf("%v #%d diverged: recorded %v, replayed %v", e.CallID, e.Index, e.Recorded, e.Live)
}

// HaltError is returned by Run when replay stops before the end of the
// trace. Err is the cause, such as a *remap.HandleNotFoundError, a fatal
// *DivergenceError or a *packet.MalformedPacketError.
type HaltError struct {
	Index  uint64
	CallID api.CallID
	Err    error
}

func (e *HaltError) Error() string {
	if e.CallID == 0 {
		return fmt.Sprintf("Replay halted at packet %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("Replay halted at %v #%d: %v", e.CallID, e.Index, e.Err)
}

func (e *HaltError) Unwrap() error { return e.Err }

// Cause returns the halt cause, as used by github.com/pkg/errors.
func (e *HaltError) Cause() error { return e.Err }
