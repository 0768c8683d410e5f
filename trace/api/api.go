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

// Package api describes the traced graphics API: its handles, result codes,
// the closed set of call records that can appear in a trace, and the
// dispatch chain that calls flow through.
package api

import "fmt"

// Handle is an opaque object identifier minted by an API implementation.
// A handle captured in a trace is only meaningful to the implementation that
// produced it.
type Handle uint64

// NullHandle is the invalid handle of every class.
const NullHandle Handle = 0

func (h Handle) String() string { return fmt.Sprintf("0x%x", uint64(h)) }

// HandleClass identifies the object type a handle refers to.
type HandleClass uint32

const (
	Instance HandleClass = iota + 1
	PhysicalDevice
	Device
	Queue
	DeviceMemory
	Buffer
	Image
	Surface
	Swapchain
)

var classNames = map[HandleClass]string{
	Instance:       "Instance",
	PhysicalDevice: "PhysicalDevice",
	Device:         "Device",
	Queue:          "Queue",
	DeviceMemory:   "DeviceMemory",
	Buffer:         "Buffer",
	Image:          "Image",
	Surface:        "Surface",
	Swapchain:      "Swapchain",
}

func (c HandleClass) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return fmt.Sprintf("HandleClass(%d)", uint32(c))
}

// HandleClasses returns every handle class in declaration order.
func HandleClasses() []HandleClass {
	return []HandleClass{Instance, PhysicalDevice, Device, Queue, DeviceMemory, Buffer, Image, Surface, Swapchain}
}

// Result is the return code of an API call.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorSurfaceLost          Result = -1000000000
	ErrorOutOfDate            Result = -1000001004
)

var resultNames = map[Result]string{
	Success:                   "VK_SUCCESS",
	NotReady:                  "VK_NOT_READY",
	Timeout:                   "VK_TIMEOUT",
	Incomplete:                "VK_INCOMPLETE",
	ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
}

func (r Result) String() string {
	if n, ok := resultNames[r]; ok {
		return n
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

// Failed returns true for error codes. Positive codes such as Incomplete are
// successful statuses.
func (r Result) Failed() bool { return r < 0 }

// MakeVersion packs an API version the way VK_MAKE_API_VERSION does.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// Version is the API version captured traces are recorded against.
var Version = MakeVersion(1, 3, 0)
