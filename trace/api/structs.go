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

// Field positions of the count members that structure arrays are keyed by.
const (
	fieldInstanceLayerCount     = 4
	fieldInstanceExtensionCount = 6
	fieldDeviceQueueInfoCount   = 1
	fieldDeviceExtensionCount   = 3
	fieldQueuePriorityCount     = 2
	fieldBufferQueueFamilyCount = 4
	fieldPresentSwapchainCount  = 0
)

// InstanceCreateInfo describes a new instance.
type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	APIVersion         uint32
	EnabledLayers      []string
	EnabledExtensions  []string
}

// Clone returns a deep copy of i.
func (i *InstanceCreateInfo) Clone() *InstanceCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	out.EnabledLayers = clone(i.EnabledLayers)
	out.EnabledExtensions = clone(i.EnabledExtensions)
	return &out
}

func (i *InstanceCreateInfo) encode(w binary.Writer) {
	w.String(i.ApplicationName)
	w.Uint32(i.ApplicationVersion)
	w.String(i.EngineName)
	w.Uint32(i.APIVersion)
	writeStrings(w, fieldInstanceLayerCount, i.EnabledLayers)
	writeStrings(w, fieldInstanceExtensionCount, i.EnabledExtensions)
}

func (i *InstanceCreateInfo) decode(r binary.Reader) {
	i.ApplicationName = r.String()
	i.ApplicationVersion = r.Uint32()
	i.EngineName = r.String()
	i.APIVersion = r.Uint32()
	i.EnabledLayers = readStrings(r, fieldInstanceLayerCount)
	i.EnabledExtensions = readStrings(r, fieldInstanceExtensionCount)
}

// DeviceQueueCreateInfo requests queues from one queue family.
type DeviceQueueCreateInfo struct {
	QueueFamilyIndex uint32
	QueuePriorities  []float32
}

// DeviceCreateInfo describes a new logical device.
type DeviceCreateInfo struct {
	QueueCreateInfos  []DeviceQueueCreateInfo
	EnabledExtensions []string
}

// Clone returns a deep copy of i.
func (i *DeviceCreateInfo) Clone() *DeviceCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	if i.QueueCreateInfos != nil {
		out.QueueCreateInfos = make([]DeviceQueueCreateInfo, len(i.QueueCreateInfos))
		for n, q := range i.QueueCreateInfos {
			out.QueueCreateInfos[n] = DeviceQueueCreateInfo{q.QueueFamilyIndex, clone(q.QueuePriorities)}
		}
	}
	out.EnabledExtensions = clone(i.EnabledExtensions)
	return &out
}

func (i *DeviceCreateInfo) encode(w binary.Writer) {
	writeSlice(w, fieldDeviceQueueInfoCount, i.QueueCreateInfos, func(q DeviceQueueCreateInfo) {
		w.Uint32(q.QueueFamilyIndex)
		writeSlice(w, fieldQueuePriorityCount, q.QueuePriorities, w.Float32)
	})
	writeStrings(w, fieldDeviceExtensionCount, i.EnabledExtensions)
}

func (i *DeviceCreateInfo) decode(r binary.Reader) {
	i.QueueCreateInfos = readSlice(r, fieldDeviceQueueInfoCount, 12, func() DeviceQueueCreateInfo {
		q := DeviceQueueCreateInfo{QueueFamilyIndex: r.Uint32()}
		q.QueuePriorities = readSlice(r, fieldQueuePriorityCount, 4, r.Float32)
		return q
	})
	i.EnabledExtensions = readStrings(r, fieldDeviceExtensionCount)
}

// QueueCount returns the number of queues requested from family.
func (i *DeviceCreateInfo) QueueCount(family uint32) int {
	n := 0
	for _, q := range i.QueueCreateInfos {
		if q.QueueFamilyIndex == family {
			n += len(q.QueuePriorities)
		}
	}
	return n
}

// MemoryAllocateInfo describes a device memory allocation.
type MemoryAllocateInfo struct {
	AllocationSize  uint64
	MemoryTypeIndex uint32
}

// Clone returns a copy of i.
func (i *MemoryAllocateInfo) Clone() *MemoryAllocateInfo {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}

func (i *MemoryAllocateInfo) encode(w binary.Writer) {
	w.Uint64(i.AllocationSize)
	w.Uint32(i.MemoryTypeIndex)
}

func (i *MemoryAllocateInfo) decode(r binary.Reader) {
	i.AllocationSize = r.Uint64()
	i.MemoryTypeIndex = r.Uint32()
}

// BufferCreateInfo describes a new buffer.
type BufferCreateInfo struct {
	Size               uint64
	Usage              uint32
	SharingMode        uint32
	QueueFamilyIndices []uint32
}

// Clone returns a deep copy of i.
func (i *BufferCreateInfo) Clone() *BufferCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	out.QueueFamilyIndices = clone(i.QueueFamilyIndices)
	return &out
}

func (i *BufferCreateInfo) encode(w binary.Writer) {
	w.Uint64(i.Size)
	w.Uint32(i.Usage)
	w.Uint32(i.SharingMode)
	writeSlice(w, fieldBufferQueueFamilyCount, i.QueueFamilyIndices, w.Uint32)
}

func (i *BufferCreateInfo) decode(r binary.Reader) {
	i.Size = r.Uint64()
	i.Usage = r.Uint32()
	i.SharingMode = r.Uint32()
	i.QueueFamilyIndices = readSlice(r, fieldBufferQueueFamilyCount, 4, r.Uint32)
}

// Extent3D is the size of an image.
type Extent3D struct {
	Width, Height, Depth uint32
}

// ImageCreateInfo describes a new image.
type ImageCreateInfo struct {
	Format      uint32
	Extent      Extent3D
	MipLevels   uint32
	ArrayLayers uint32
	Usage       uint32
}

// Clone returns a copy of i.
func (i *ImageCreateInfo) Clone() *ImageCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}

func (i *ImageCreateInfo) encode(w binary.Writer) {
	w.Uint32(i.Format)
	w.Uint32(i.Extent.Width)
	w.Uint32(i.Extent.Height)
	w.Uint32(i.Extent.Depth)
	w.Uint32(i.MipLevels)
	w.Uint32(i.ArrayLayers)
	w.Uint32(i.Usage)
}

func (i *ImageCreateInfo) decode(r binary.Reader) {
	i.Format = r.Uint32()
	i.Extent = Extent3D{r.Uint32(), r.Uint32(), r.Uint32()}
	i.MipLevels = r.Uint32()
	i.ArrayLayers = r.Uint32()
	i.Usage = r.Uint32()
}

// SurfaceCreateInfo describes a presentation surface for a native window.
// NativeWindow is only meaningful on the machine that created the window.
type SurfaceCreateInfo struct {
	NativeWindow uint64
	Width        uint32
	Height       uint32
}

// Clone returns a copy of i.
func (i *SurfaceCreateInfo) Clone() *SurfaceCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}

func (i *SurfaceCreateInfo) encode(w binary.Writer) {
	w.Uint64(i.NativeWindow)
	w.Uint32(i.Width)
	w.Uint32(i.Height)
}

func (i *SurfaceCreateInfo) decode(r binary.Reader) {
	i.NativeWindow = r.Uint64()
	i.Width = r.Uint32()
	i.Height = r.Uint32()
}

// SwapchainCreateInfo describes a new swapchain. It holds the handles of the
// surface presented to and of the swapchain being replaced.
type SwapchainCreateInfo struct {
	Surface       Handle
	MinImageCount uint32
	Format        uint32
	Width         uint32
	Height        uint32
	PresentMode   uint32
	OldSwapchain  Handle
}

// Clone returns a copy of i.
func (i *SwapchainCreateInfo) Clone() *SwapchainCreateInfo {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}

func (i *SwapchainCreateInfo) encode(w binary.Writer) {
	w.Uint64(uint64(i.Surface))
	w.Uint32(i.MinImageCount)
	w.Uint32(i.Format)
	w.Uint32(i.Width)
	w.Uint32(i.Height)
	w.Uint32(i.PresentMode)
	w.Uint64(uint64(i.OldSwapchain))
}

func (i *SwapchainCreateInfo) decode(r binary.Reader) {
	i.Surface = Handle(r.Uint64())
	i.MinImageCount = r.Uint32()
	i.Format = r.Uint32()
	i.Width = r.Uint32()
	i.Height = r.Uint32()
	i.PresentMode = r.Uint32()
	i.OldSwapchain = Handle(r.Uint64())
}

// PresentInfo lists the swapchain images to present. Swapchains and
// ImageIndices are parallel arrays sharing one count.
type PresentInfo struct {
	Swapchains   []Handle
	ImageIndices []uint32
}

// Clone returns a deep copy of i.
func (i *PresentInfo) Clone() *PresentInfo {
	if i == nil {
		return nil
	}
	return &PresentInfo{clone(i.Swapchains), clone(i.ImageIndices)}
}

func (i *PresentInfo) encode(w binary.Writer) {
	if len(i.Swapchains) != len(i.ImageIndices) {
		w.SetError(ErrParallelArrays)
		return
	}
	writeHandles(w, fieldPresentSwapchainCount, i.Swapchains)
	writeSlice(w, fieldPresentSwapchainCount, i.ImageIndices, w.Uint32)
}

func (i *PresentInfo) decode(r binary.Reader) {
	i.Swapchains = readHandles(r, fieldPresentSwapchainCount)
	i.ImageIndices = readSlice(r, fieldPresentSwapchainCount, 4, r.Uint32)
	if r.Error() == nil && len(i.Swapchains) != len(i.ImageIndices) {
		r.SetError(&CountMismatchError{fieldPresentSwapchainCount, uint32(len(i.Swapchains)), uint32(len(i.ImageIndices))})
	}
}
