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
	"sort"

	"github.com/LunarG/VulkanTools-sub015/core/data/binary"
	"github.com/LunarG/VulkanTools-sub015/core/fault"
)

// ErrUnknownCall is returned when a call identifier is not part of the API.
const ErrUnknownCall = fault.Const("Unknown call identifier")

// CallID enumerates the functions of the API. The values are stored in
// trace files and must never be reassigned.
type CallID uint32

const (
	CreateInstanceID CallID = iota + 1
	DestroyInstanceID
	EnumeratePhysicalDevicesID
	CreateDeviceID
	DestroyDeviceID
	GetDeviceQueueID
	AllocateMemoryID
	FreeMemoryID
	FlushMappedMemoryID
	CreateBufferID
	DestroyBufferID
	BindBufferMemoryID
	CreateImageID
	DestroyImageID
	CreateSurfaceID
	DestroySurfaceID
	CreateSwapchainID
	DestroySwapchainID
	GetSwapchainImagesID
	QueuePresentID
)

// Kind says how a call affects object lifetimes.
type Kind int

const (
	// KindOther calls neither create nor destroy objects.
	KindOther Kind = iota
	// KindCreate calls return one or more new handles.
	KindCreate
	// KindDestroy calls end the lifetime of a handle.
	KindDestroy
)

// Call is a single recorded call: its inputs, its outputs and its result.
type Call interface {
	// CallID returns the identifier of the function called.
	CallID() CallID
	// Encode writes the call's arguments and outputs to w.
	Encode(w binary.Writer)
	// Decode reads the call's arguments and outputs from r. Empty arrays and
	// byte ranges decode as nil slices.
	Decode(r binary.Reader)
}

type callInfo struct {
	name  string
	kind  Kind
	class HandleClass
	new   func() Call
}

var calls = map[CallID]callInfo{
	CreateInstanceID:           {"vkCreateInstance", KindCreate, Instance, func() Call { return &VkCreateInstance{} }},
	DestroyInstanceID:          {"vkDestroyInstance", KindDestroy, Instance, func() Call { return &VkDestroyInstance{} }},
	EnumeratePhysicalDevicesID: {"vkEnumeratePhysicalDevices", KindCreate, PhysicalDevice, func() Call { return &VkEnumeratePhysicalDevices{} }},
	CreateDeviceID:             {"vkCreateDevice", KindCreate, Device, func() Call { return &VkCreateDevice{} }},
	DestroyDeviceID:            {"vkDestroyDevice", KindDestroy, Device, func() Call { return &VkDestroyDevice{} }},
	GetDeviceQueueID:           {"vkGetDeviceQueue", KindCreate, Queue, func() Call { return &VkGetDeviceQueue{} }},
	AllocateMemoryID:           {"vkAllocateMemory", KindCreate, DeviceMemory, func() Call { return &VkAllocateMemory{} }},
	FreeMemoryID:               {"vkFreeMemory", KindDestroy, DeviceMemory, func() Call { return &VkFreeMemory{} }},
	FlushMappedMemoryID:        {"vkFlushMappedMemoryRanges", KindOther, 0, func() Call { return &VkFlushMappedMemory{} }},
	CreateBufferID:             {"vkCreateBuffer", KindCreate, Buffer, func() Call { return &VkCreateBuffer{} }},
	DestroyBufferID:            {"vkDestroyBuffer", KindDestroy, Buffer, func() Call { return &VkDestroyBuffer{} }},
	BindBufferMemoryID:         {"vkBindBufferMemory", KindOther, 0, func() Call { return &VkBindBufferMemory{} }},
	CreateImageID:              {"vkCreateImage", KindCreate, Image, func() Call { return &VkCreateImage{} }},
	DestroyImageID:             {"vkDestroyImage", KindDestroy, Image, func() Call { return &VkDestroyImage{} }},
	CreateSurfaceID:            {"vkCreateSurfaceKHR", KindCreate, Surface, func() Call { return &VkCreateSurface{} }},
	DestroySurfaceID:           {"vkDestroySurfaceKHR", KindDestroy, Surface, func() Call { return &VkDestroySurface{} }},
	CreateSwapchainID:          {"vkCreateSwapchainKHR", KindCreate, Swapchain, func() Call { return &VkCreateSwapchain{} }},
	DestroySwapchainID:         {"vkDestroySwapchainKHR", KindDestroy, Swapchain, func() Call { return &VkDestroySwapchain{} }},
	GetSwapchainImagesID:       {"vkGetSwapchainImagesKHR", KindCreate, Image, func() Call { return &VkGetSwapchainImages{} }},
	QueuePresentID:             {"vkQueuePresentKHR", KindOther, 0, func() Call { return &VkQueuePresent{} }},
}

func (id CallID) String() string {
	if i, ok := calls[id]; ok {
		return i.name
	}
	return fmt.Sprintf("CallID(%d)", uint32(id))
}

// Valid returns true if id names a call of the API.
func (id CallID) Valid() bool {
	_, ok := calls[id]
	return ok
}

// Kind returns whether the call creates, destroys or only uses objects.
func (id CallID) Kind() Kind { return calls[id].kind }

// Class returns the class of the handles created or destroyed by the call,
// or 0 for KindOther calls.
func (id CallID) Class() HandleClass { return calls[id].class }

// New returns a new, empty record for the call id.
func New(id CallID) (Call, error) {
	i, ok := calls[id]
	if !ok {
		return nil, ErrUnknownCall
	}
	return i.new(), nil
}

// CallIDs returns every call identifier of the API in ascending order.
func CallIDs() []CallID {
	out := make([]CallID, 0, len(calls))
	for id := range calls {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
