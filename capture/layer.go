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

package capture

import (
	"context"
	"slices"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// Layer returns the dispatch layer that records every call passing through
// it into s. Calls are always forwarded with their original arguments and
// the results of the layer below are returned unchanged.
//
// Freed memory leaves the session ledger before the free is forwarded, so a
// handle reissued to a concurrent AllocateMemory is always counted as live.
func Layer(s *Session) api.Layer {
	return api.LayerFunc(func(next api.Table) api.Table {
		return api.Table{
			Instance: instanceFuncs{s, next.Instance},
			Device:   deviceFuncs{s, next.Device},
			Memory:   memoryFuncs{s, next.Memory},
			Resource: resourceFuncs{s, next.Resource},
			Present:  presentFuncs{s, next.Present},
		}
	})
}

type instanceFuncs struct {
	s    *Session
	next api.InstanceFuncs
}

func (f instanceFuncs) CreateInstance(ctx context.Context, info *api.InstanceCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateInstance{CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Instance, call.Result = f.next.CreateInstance(ctx, info)
	f.s.record(ctx, index, entry, call)
	return call.Instance, call.Result
}

func (f instanceFuncs) DestroyInstance(ctx context.Context, instance api.Handle) {
	call := &api.VkDestroyInstance{Instance: instance}
	index, entry := f.s.begin()
	f.next.DestroyInstance(ctx, instance)
	f.s.record(ctx, index, entry, call)
}

func (f instanceFuncs) EnumeratePhysicalDevices(ctx context.Context, instance api.Handle, capacity uint32) (uint32, []api.Handle, api.Result) {
	call := &api.VkEnumeratePhysicalDevices{Instance: instance, Capacity: capacity}
	index, entry := f.s.begin()
	count, devices, r := f.next.EnumeratePhysicalDevices(ctx, instance, capacity)
	call.Count, call.PhysicalDevices, call.Result = count, slices.Clone(devices), r
	f.s.record(ctx, index, entry, call)
	return count, devices, r
}

type deviceFuncs struct {
	s    *Session
	next api.DeviceFuncs
}

func (f deviceFuncs) CreateDevice(ctx context.Context, physicalDevice api.Handle, info *api.DeviceCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateDevice{PhysicalDevice: physicalDevice, CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Device, call.Result = f.next.CreateDevice(ctx, physicalDevice, info)
	f.s.record(ctx, index, entry, call)
	return call.Device, call.Result
}

func (f deviceFuncs) DestroyDevice(ctx context.Context, device api.Handle) {
	call := &api.VkDestroyDevice{Device: device}
	index, entry := f.s.begin()
	f.next.DestroyDevice(ctx, device)
	f.s.record(ctx, index, entry, call)
}

func (f deviceFuncs) GetDeviceQueue(ctx context.Context, device api.Handle, family, queueIndex uint32) api.Handle {
	call := &api.VkGetDeviceQueue{Device: device, QueueFamilyIndex: family, QueueIndex: queueIndex}
	index, entry := f.s.begin()
	call.Queue = f.next.GetDeviceQueue(ctx, device, family, queueIndex)
	f.s.record(ctx, index, entry, call)
	return call.Queue
}

type memoryFuncs struct {
	s    *Session
	next api.MemoryFuncs
}

func (f memoryFuncs) AllocateMemory(ctx context.Context, device api.Handle, info *api.MemoryAllocateInfo) (api.Handle, api.Result) {
	call := &api.VkAllocateMemory{Device: device, AllocateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Memory, call.Result = f.next.AllocateMemory(ctx, device, info)
	if !call.Result.Failed() && info != nil {
		f.s.ledger.Insert(call.Memory, info.AllocationSize)
	}
	f.s.record(ctx, index, entry, call)
	return call.Memory, call.Result
}

func (f memoryFuncs) FreeMemory(ctx context.Context, device, memory api.Handle) {
	call := &api.VkFreeMemory{Device: device, Memory: memory}
	index, entry := f.s.begin()
	// The entry goes before the driver can hand the handle out again.
	if memory != api.NullHandle {
		f.s.ledger.Remove(memory)
	}
	f.next.FreeMemory(ctx, device, memory)
	f.s.record(ctx, index, entry, call)
}

func (f memoryFuncs) FlushMappedMemory(ctx context.Context, device, memory api.Handle, offset uint64, data []byte) api.Result {
	call := &api.VkFlushMappedMemory{Device: device, Memory: memory, Offset: offset, Data: slices.Clone(data)}
	index, entry := f.s.begin()
	call.Result = f.next.FlushMappedMemory(ctx, device, memory, offset, data)
	f.s.record(ctx, index, entry, call)
	return call.Result
}

type resourceFuncs struct {
	s    *Session
	next api.ResourceFuncs
}

func (f resourceFuncs) CreateBuffer(ctx context.Context, device api.Handle, info *api.BufferCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateBuffer{Device: device, CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Buffer, call.Result = f.next.CreateBuffer(ctx, device, info)
	f.s.record(ctx, index, entry, call)
	return call.Buffer, call.Result
}

func (f resourceFuncs) DestroyBuffer(ctx context.Context, device, buffer api.Handle) {
	call := &api.VkDestroyBuffer{Device: device, Buffer: buffer}
	index, entry := f.s.begin()
	f.next.DestroyBuffer(ctx, device, buffer)
	f.s.record(ctx, index, entry, call)
}

func (f resourceFuncs) BindBufferMemory(ctx context.Context, device, buffer, memory api.Handle, offset uint64) api.Result {
	call := &api.VkBindBufferMemory{Device: device, Buffer: buffer, Memory: memory, Offset: offset}
	index, entry := f.s.begin()
	call.Result = f.next.BindBufferMemory(ctx, device, buffer, memory, offset)
	f.s.record(ctx, index, entry, call)
	return call.Result
}

func (f resourceFuncs) CreateImage(ctx context.Context, device api.Handle, info *api.ImageCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateImage{Device: device, CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Image, call.Result = f.next.CreateImage(ctx, device, info)
	f.s.record(ctx, index, entry, call)
	return call.Image, call.Result
}

func (f resourceFuncs) DestroyImage(ctx context.Context, device, image api.Handle) {
	call := &api.VkDestroyImage{Device: device, Image: image}
	index, entry := f.s.begin()
	f.next.DestroyImage(ctx, device, image)
	f.s.record(ctx, index, entry, call)
}

type presentFuncs struct {
	s    *Session
	next api.PresentFuncs
}

func (f presentFuncs) CreateSurface(ctx context.Context, instance api.Handle, info *api.SurfaceCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateSurface{Instance: instance, CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Surface, call.Result = f.next.CreateSurface(ctx, instance, info)
	f.s.record(ctx, index, entry, call)
	return call.Surface, call.Result
}

func (f presentFuncs) DestroySurface(ctx context.Context, instance, surface api.Handle) {
	call := &api.VkDestroySurface{Instance: instance, Surface: surface}
	index, entry := f.s.begin()
	f.next.DestroySurface(ctx, instance, surface)
	f.s.record(ctx, index, entry, call)
}

func (f presentFuncs) CreateSwapchain(ctx context.Context, device api.Handle, info *api.SwapchainCreateInfo) (api.Handle, api.Result) {
	call := &api.VkCreateSwapchain{Device: device, CreateInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Swapchain, call.Result = f.next.CreateSwapchain(ctx, device, info)
	f.s.record(ctx, index, entry, call)
	return call.Swapchain, call.Result
}

func (f presentFuncs) DestroySwapchain(ctx context.Context, device, swapchain api.Handle) {
	call := &api.VkDestroySwapchain{Device: device, Swapchain: swapchain}
	index, entry := f.s.begin()
	f.next.DestroySwapchain(ctx, device, swapchain)
	f.s.record(ctx, index, entry, call)
}

func (f presentFuncs) GetSwapchainImages(ctx context.Context, device, swapchain api.Handle, capacity uint32) (uint32, []api.Handle, api.Result) {
	call := &api.VkGetSwapchainImages{Device: device, Swapchain: swapchain, Capacity: capacity}
	index, entry := f.s.begin()
	count, images, r := f.next.GetSwapchainImages(ctx, device, swapchain, capacity)
	call.Count, call.Images, call.Result = count, slices.Clone(images), r
	f.s.record(ctx, index, entry, call)
	return count, images, r
}

func (f presentFuncs) QueuePresent(ctx context.Context, queue api.Handle, info *api.PresentInfo) api.Result {
	call := &api.VkQueuePresent{Queue: queue, PresentInfo: info.Clone()}
	index, entry := f.s.begin()
	call.Result = f.next.QueuePresent(ctx, queue, info)
	f.s.record(ctx, index, entry, call)
	return call.Result
}
