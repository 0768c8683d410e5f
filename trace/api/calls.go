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

import "github.com/LunarG/VulkanTools-sub015/core/data/binary"

// Argument positions of the count arguments that call arrays are keyed by.
const (
	argPhysicalDeviceCount = 1
	argFlushSize           = 3
	argSwapchainImageCount = 2
)

func writeInfo[T interface{ encode(binary.Writer) }](w binary.Writer, info T, isNil bool) {
	if isNil {
		w.SetError(ErrMissingCreateInfo)
		return
	}
	info.encode(w)
}

// VkCreateInstance records vkCreateInstance.
type VkCreateInstance struct {
	CreateInfo *InstanceCreateInfo
	Instance   Handle
	Result     Result
}

func (*VkCreateInstance) CallID() CallID { return CreateInstanceID }

func (c *VkCreateInstance) Encode(w binary.Writer) {
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Instance))
	w.Int32(int32(c.Result))
}

func (c *VkCreateInstance) Decode(r binary.Reader) {
	c.CreateInfo = &InstanceCreateInfo{}
	c.CreateInfo.decode(r)
	c.Instance = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroyInstance records vkDestroyInstance.
type VkDestroyInstance struct {
	Instance Handle
}

func (*VkDestroyInstance) CallID() CallID           { return DestroyInstanceID }
func (c *VkDestroyInstance) Encode(w binary.Writer) { w.Uint64(uint64(c.Instance)) }
func (c *VkDestroyInstance) Decode(r binary.Reader) { c.Instance = Handle(r.Uint64()) }

// VkEnumeratePhysicalDevices records vkEnumeratePhysicalDevices. Capacity is
// the count passed in, Count the count returned. A zero capacity queries the
// count only.
type VkEnumeratePhysicalDevices struct {
	Instance        Handle
	Capacity        uint32
	Count           uint32
	PhysicalDevices []Handle
	Result          Result
}

func (*VkEnumeratePhysicalDevices) CallID() CallID { return EnumeratePhysicalDevicesID }

func (c *VkEnumeratePhysicalDevices) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Instance))
	w.Uint32(c.Capacity)
	w.Uint32(c.Count)
	writeHandles(w, argPhysicalDeviceCount, c.PhysicalDevices)
	w.Int32(int32(c.Result))
}

func (c *VkEnumeratePhysicalDevices) Decode(r binary.Reader) {
	c.Instance = Handle(r.Uint64())
	c.Capacity = r.Uint32()
	c.Count = r.Uint32()
	c.PhysicalDevices = readHandles(r, argPhysicalDeviceCount)
	c.Result = Result(r.Int32())
}

// VkCreateDevice records vkCreateDevice.
type VkCreateDevice struct {
	PhysicalDevice Handle
	CreateInfo     *DeviceCreateInfo
	Device         Handle
	Result         Result
}

func (*VkCreateDevice) CallID() CallID { return CreateDeviceID }

func (c *VkCreateDevice) Encode(w binary.Writer) {
	w.Uint64(uint64(c.PhysicalDevice))
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Device))
	w.Int32(int32(c.Result))
}

func (c *VkCreateDevice) Decode(r binary.Reader) {
	c.PhysicalDevice = Handle(r.Uint64())
	c.CreateInfo = &DeviceCreateInfo{}
	c.CreateInfo.decode(r)
	c.Device = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroyDevice records vkDestroyDevice.
type VkDestroyDevice struct {
	Device Handle
}

func (*VkDestroyDevice) CallID() CallID           { return DestroyDeviceID }
func (c *VkDestroyDevice) Encode(w binary.Writer) { w.Uint64(uint64(c.Device)) }
func (c *VkDestroyDevice) Decode(r binary.Reader) { c.Device = Handle(r.Uint64()) }

// VkGetDeviceQueue records vkGetDeviceQueue.
type VkGetDeviceQueue struct {
	Device           Handle
	QueueFamilyIndex uint32
	QueueIndex       uint32
	Queue            Handle
}

func (*VkGetDeviceQueue) CallID() CallID { return GetDeviceQueueID }

func (c *VkGetDeviceQueue) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint32(c.QueueFamilyIndex)
	w.Uint32(c.QueueIndex)
	w.Uint64(uint64(c.Queue))
}

func (c *VkGetDeviceQueue) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.QueueFamilyIndex = r.Uint32()
	c.QueueIndex = r.Uint32()
	c.Queue = Handle(r.Uint64())
}

// VkAllocateMemory records vkAllocateMemory.
type VkAllocateMemory struct {
	Device       Handle
	AllocateInfo *MemoryAllocateInfo
	Memory       Handle
	Result       Result
}

func (*VkAllocateMemory) CallID() CallID { return AllocateMemoryID }

func (c *VkAllocateMemory) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	writeInfo(w, c.AllocateInfo, c.AllocateInfo == nil)
	w.Uint64(uint64(c.Memory))
	w.Int32(int32(c.Result))
}

func (c *VkAllocateMemory) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.AllocateInfo = &MemoryAllocateInfo{}
	c.AllocateInfo.decode(r)
	c.Memory = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkFreeMemory records vkFreeMemory.
type VkFreeMemory struct {
	Device Handle
	Memory Handle
}

func (*VkFreeMemory) CallID() CallID { return FreeMemoryID }

func (c *VkFreeMemory) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Memory))
}

func (c *VkFreeMemory) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Memory = Handle(r.Uint64())
}

// VkFlushMappedMemory records the host writes to a mapped memory range and the
// vkFlushMappedMemoryRanges call that made them visible. Data holds the bytes
// of the range at the time of the flush.
type VkFlushMappedMemory struct {
	Device Handle
	Memory Handle
	Offset uint64
	Data   []byte
	Result Result
}

func (*VkFlushMappedMemory) CallID() CallID { return FlushMappedMemoryID }

func (c *VkFlushMappedMemory) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Memory))
	w.Uint64(c.Offset)
	writeBytes(w, argFlushSize, c.Data)
	w.Int32(int32(c.Result))
}

func (c *VkFlushMappedMemory) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Memory = Handle(r.Uint64())
	c.Offset = r.Uint64()
	c.Data = readBytes(r, argFlushSize)
	c.Result = Result(r.Int32())
}

// VkCreateBuffer records vkCreateBuffer.
type VkCreateBuffer struct {
	Device     Handle
	CreateInfo *BufferCreateInfo
	Buffer     Handle
	Result     Result
}

func (*VkCreateBuffer) CallID() CallID { return CreateBufferID }

func (c *VkCreateBuffer) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Buffer))
	w.Int32(int32(c.Result))
}

func (c *VkCreateBuffer) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.CreateInfo = &BufferCreateInfo{}
	c.CreateInfo.decode(r)
	c.Buffer = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroyBuffer records vkDestroyBuffer.
type VkDestroyBuffer struct {
	Device Handle
	Buffer Handle
}

func (*VkDestroyBuffer) CallID() CallID { return DestroyBufferID }

func (c *VkDestroyBuffer) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Buffer))
}

func (c *VkDestroyBuffer) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Buffer = Handle(r.Uint64())
}

// VkBindBufferMemory records vkBindBufferMemory.
type VkBindBufferMemory struct {
	Device Handle
	Buffer Handle
	Memory Handle
	Offset uint64
	Result Result
}

func (*VkBindBufferMemory) CallID() CallID { return BindBufferMemoryID }

func (c *VkBindBufferMemory) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Buffer))
	w.Uint64(uint64(c.Memory))
	w.Uint64(c.Offset)
	w.Int32(int32(c.Result))
}

func (c *VkBindBufferMemory) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Buffer = Handle(r.Uint64())
	c.Memory = Handle(r.Uint64())
	c.Offset = r.Uint64()
	c.Result = Result(r.Int32())
}

// VkCreateImage records vkCreateImage.
type VkCreateImage struct {
	Device     Handle
	CreateInfo *ImageCreateInfo
	Image      Handle
	Result     Result
}

func (*VkCreateImage) CallID() CallID { return CreateImageID }

func (c *VkCreateImage) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Image))
	w.Int32(int32(c.Result))
}

func (c *VkCreateImage) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.CreateInfo = &ImageCreateInfo{}
	c.CreateInfo.decode(r)
	c.Image = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroyImage records vkDestroyImage.
type VkDestroyImage struct {
	Device Handle
	Image  Handle
}

func (*VkDestroyImage) CallID() CallID { return DestroyImageID }

func (c *VkDestroyImage) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Image))
}

func (c *VkDestroyImage) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Image = Handle(r.Uint64())
}

// VkCreateSurface records the platform surface creation call.
type VkCreateSurface struct {
	Instance   Handle
	CreateInfo *SurfaceCreateInfo
	Surface    Handle
	Result     Result
}

func (*VkCreateSurface) CallID() CallID { return CreateSurfaceID }

func (c *VkCreateSurface) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Instance))
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Surface))
	w.Int32(int32(c.Result))
}

func (c *VkCreateSurface) Decode(r binary.Reader) {
	c.Instance = Handle(r.Uint64())
	c.CreateInfo = &SurfaceCreateInfo{}
	c.CreateInfo.decode(r)
	c.Surface = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroySurface records vkDestroySurfaceKHR.
type VkDestroySurface struct {
	Instance Handle
	Surface  Handle
}

func (*VkDestroySurface) CallID() CallID { return DestroySurfaceID }

func (c *VkDestroySurface) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Instance))
	w.Uint64(uint64(c.Surface))
}

func (c *VkDestroySurface) Decode(r binary.Reader) {
	c.Instance = Handle(r.Uint64())
	c.Surface = Handle(r.Uint64())
}

// VkCreateSwapchain records vkCreateSwapchainKHR.
type VkCreateSwapchain struct {
	Device     Handle
	CreateInfo *SwapchainCreateInfo
	Swapchain  Handle
	Result     Result
}

func (*VkCreateSwapchain) CallID() CallID { return CreateSwapchainID }

func (c *VkCreateSwapchain) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	writeInfo(w, c.CreateInfo, c.CreateInfo == nil)
	w.Uint64(uint64(c.Swapchain))
	w.Int32(int32(c.Result))
}

func (c *VkCreateSwapchain) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.CreateInfo = &SwapchainCreateInfo{}
	c.CreateInfo.decode(r)
	c.Swapchain = Handle(r.Uint64())
	c.Result = Result(r.Int32())
}

// VkDestroySwapchain records vkDestroySwapchainKHR.
type VkDestroySwapchain struct {
	Device    Handle
	Swapchain Handle
}

func (*VkDestroySwapchain) CallID() CallID { return DestroySwapchainID }

func (c *VkDestroySwapchain) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Swapchain))
}

func (c *VkDestroySwapchain) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Swapchain = Handle(r.Uint64())
}

// VkGetSwapchainImages records vkGetSwapchainImagesKHR. As with
// VkEnumeratePhysicalDevices a zero capacity queries the count only.
type VkGetSwapchainImages struct {
	Device    Handle
	Swapchain Handle
	Capacity  uint32
	Count     uint32
	Images    []Handle
	Result    Result
}

func (*VkGetSwapchainImages) CallID() CallID { return GetSwapchainImagesID }

func (c *VkGetSwapchainImages) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Device))
	w.Uint64(uint64(c.Swapchain))
	w.Uint32(c.Capacity)
	w.Uint32(c.Count)
	writeHandles(w, argSwapchainImageCount, c.Images)
	w.Int32(int32(c.Result))
}

func (c *VkGetSwapchainImages) Decode(r binary.Reader) {
	c.Device = Handle(r.Uint64())
	c.Swapchain = Handle(r.Uint64())
	c.Capacity = r.Uint32()
	c.Count = r.Uint32()
	c.Images = readHandles(r, argSwapchainImageCount)
	c.Result = Result(r.Int32())
}

// VkQueuePresent records vkQueuePresentKHR.
type VkQueuePresent struct {
	Queue       Handle
	PresentInfo *PresentInfo
	Result      Result
}

func (*VkQueuePresent) CallID() CallID { return QueuePresentID }

func (c *VkQueuePresent) Encode(w binary.Writer) {
	w.Uint64(uint64(c.Queue))
	writeInfo(w, c.PresentInfo, c.PresentInfo == nil)
	w.Int32(int32(c.Result))
}

func (c *VkQueuePresent) Decode(r binary.Reader) {
	c.Queue = Handle(r.Uint64())
	c.PresentInfo = &PresentInfo{}
	c.PresentInfo.decode(r)
	c.Result = Result(r.Int32())
}
