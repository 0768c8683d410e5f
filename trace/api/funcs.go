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

import "context"

// InstanceFuncs is the instance level call family.
type InstanceFuncs interface {
	CreateInstance(ctx context.Context, info *InstanceCreateInfo) (Handle, Result)
	DestroyInstance(ctx context.Context, instance Handle)
	// EnumeratePhysicalDevices returns at most capacity physical devices and
	// the number returned. A zero capacity returns the number available.
	EnumeratePhysicalDevices(ctx context.Context, instance Handle, capacity uint32) (uint32, []Handle, Result)
}

// DeviceFuncs is the logical device call family.
type DeviceFuncs interface {
	CreateDevice(ctx context.Context, physicalDevice Handle, info *DeviceCreateInfo) (Handle, Result)
	DestroyDevice(ctx context.Context, device Handle)
	GetDeviceQueue(ctx context.Context, device Handle, family, index uint32) Handle
}

// MemoryFuncs is the device memory call family.
type MemoryFuncs interface {
	AllocateMemory(ctx context.Context, device Handle, info *MemoryAllocateInfo) (Handle, Result)
	FreeMemory(ctx context.Context, device, memory Handle)
	FlushMappedMemory(ctx context.Context, device, memory Handle, offset uint64, data []byte) Result
}

// ResourceFuncs is the buffer and image call family.
type ResourceFuncs interface {
	CreateBuffer(ctx context.Context, device Handle, info *BufferCreateInfo) (Handle, Result)
	DestroyBuffer(ctx context.Context, device, buffer Handle)
	BindBufferMemory(ctx context.Context, device, buffer, memory Handle, offset uint64) Result
	CreateImage(ctx context.Context, device Handle, info *ImageCreateInfo) (Handle, Result)
	DestroyImage(ctx context.Context, device, image Handle)
}

// PresentFuncs is the window system integration call family.
type PresentFuncs interface {
	CreateSurface(ctx context.Context, instance Handle, info *SurfaceCreateInfo) (Handle, Result)
	DestroySurface(ctx context.Context, instance, surface Handle)
	CreateSwapchain(ctx context.Context, device Handle, info *SwapchainCreateInfo) (Handle, Result)
	DestroySwapchain(ctx context.Context, device, swapchain Handle)
	GetSwapchainImages(ctx context.Context, device, swapchain Handle, capacity uint32) (uint32, []Handle, Result)
	QueuePresent(ctx context.Context, queue Handle, info *PresentInfo) Result
}

// Driver is implemented by types that provide every call family.
type Driver interface {
	InstanceFuncs
	DeviceFuncs
	MemoryFuncs
	ResourceFuncs
	PresentFuncs
}

// Table is one link of the dispatch chain: one implementation per call
// family.
type Table struct {
	Instance InstanceFuncs
	Device   DeviceFuncs
	Memory   MemoryFuncs
	Resource ResourceFuncs
	Present  PresentFuncs
}

// TableOf returns the Table that dispatches every family to d.
func TableOf(d Driver) Table {
	return Table{Instance: d, Device: d, Memory: d, Resource: d, Present: d}
}

// Layer is an interceptor in the dispatch chain. Wrap returns the table that
// calls enter the layer through; the layer forwards to next.
type Layer interface {
	Wrap(next Table) Table
}

// LayerFunc adapts a function to a Layer.
type LayerFunc func(next Table) Table

// Wrap calls f(next).
func (f LayerFunc) Wrap(next Table) Table { return f(next) }

// Chain builds the dispatch chain over base. Calls through the returned table
// enter layers[0] first and reach base last.
func Chain(base Table, layers ...Layer) Table {
	for i := len(layers) - 1; i >= 0; i-- {
		base = layers[i].Wrap(base)
	}
	return base
}
