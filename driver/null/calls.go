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

package null

import (
	"context"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

func (d *Driver) CreateInstance(ctx context.Context, info *api.InstanceCreateInfo) (api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.CreateInstanceID); failed {
		return api.NullHandle, r
	}
	h := d.mint(api.Instance, api.NullHandle)
	for i := 0; i < d.opts.PhysicalDevices; i++ {
		d.mint(api.PhysicalDevice, h)
	}
	return h, api.Success
}

func (d *Driver) DestroyInstance(ctx context.Context, instance api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroyInstanceID)
	if o, ok := d.objects[instance]; ok && o.class == api.Instance {
		for _, c := range o.children {
			if p, ok := d.objects[c]; ok && p.class == api.PhysicalDevice {
				delete(d.objects, c)
			}
		}
	}
	d.destroy(ctx, api.Instance, instance)
}

func (d *Driver) EnumeratePhysicalDevices(ctx context.Context, instance api.Handle, capacity uint32) (uint32, []api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.EnumeratePhysicalDevicesID); failed {
		return 0, nil, r
	}
	o, ok := d.live(ctx, api.Instance, instance)
	if !ok {
		return 0, nil, api.ErrorInitializationFailed
	}
	return d.enumerate(o, api.PhysicalDevice, capacity)
}

func (d *Driver) CreateDevice(ctx context.Context, physicalDevice api.Handle, info *api.DeviceCreateInfo) (api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.CreateDeviceID); failed {
		return api.NullHandle, r
	}
	if _, ok := d.live(ctx, api.PhysicalDevice, physicalDevice); !ok {
		return api.NullHandle, api.ErrorInitializationFailed
	}
	return d.mint(api.Device, physicalDevice), api.Success
}

func (d *Driver) DestroyDevice(ctx context.Context, device api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroyDeviceID)
	for k, q := range d.queues {
		if k.device == device {
			delete(d.objects, q)
			delete(d.queues, k)
		}
	}
	d.destroy(ctx, api.Device, device)
}

func (d *Driver) GetDeviceQueue(ctx context.Context, device api.Handle, family, index uint32) api.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, failed := d.enter(ctx, api.GetDeviceQueueID); failed {
		return api.NullHandle
	}
	if _, ok := d.live(ctx, api.Device, device); !ok {
		return api.NullHandle
	}
	k := queueKey{device, family, index}
	if q, ok := d.queues[k]; ok {
		return q
	}
	q := d.mint(api.Queue, device)
	d.queues[k] = q
	return q
}

func (d *Driver) AllocateMemory(ctx context.Context, device api.Handle, info *api.MemoryAllocateInfo) (api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.AllocateMemoryID); failed {
		return api.NullHandle, r
	}
	if _, ok := d.live(ctx, api.Device, device); !ok {
		return api.NullHandle, api.ErrorDeviceLost
	}
	if info == nil {
		return api.NullHandle, api.ErrorInitializationFailed
	}
	if d.opts.MemoryLimit != 0 && d.allocated+info.AllocationSize > d.opts.MemoryLimit {
		return api.NullHandle, api.ErrorOutOfDeviceMemory
	}
	h := d.mint(api.DeviceMemory, device)
	d.objects[h].size = info.AllocationSize
	d.allocated += info.AllocationSize
	return h, api.Success
}

func (d *Driver) FreeMemory(ctx context.Context, device, memory api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.FreeMemoryID)
	d.destroy(ctx, api.DeviceMemory, memory)
}

func (d *Driver) FlushMappedMemory(ctx context.Context, device, memory api.Handle, offset uint64, data []byte) api.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.FlushMappedMemoryID); failed {
		return r
	}
	o, ok := d.live(ctx, api.DeviceMemory, memory)
	if !ok {
		return api.ErrorDeviceLost
	}
	end := offset + uint64(len(data))
	if end > o.size || end < offset {
		return api.ErrorOutOfHostMemory
	}
	if uint64(len(o.contents)) < end {
		o.contents = append(o.contents, make([]byte, end-uint64(len(o.contents)))...)
	}
	copy(o.contents[offset:], data)
	return api.Success
}

func (d *Driver) CreateBuffer(ctx context.Context, device api.Handle, info *api.BufferCreateInfo) (api.Handle, api.Result) {
	return d.create(ctx, api.CreateBufferID, api.Buffer, api.Device, device)
}

func (d *Driver) DestroyBuffer(ctx context.Context, device, buffer api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroyBufferID)
	d.destroy(ctx, api.Buffer, buffer)
}

func (d *Driver) BindBufferMemory(ctx context.Context, device, buffer, memory api.Handle, offset uint64) api.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.BindBufferMemoryID); failed {
		return r
	}
	_, okBuffer := d.live(ctx, api.Buffer, buffer)
	m, okMemory := d.live(ctx, api.DeviceMemory, memory)
	if !okBuffer || !okMemory || offset >= m.size {
		return api.ErrorOutOfDeviceMemory
	}
	return api.Success
}

func (d *Driver) CreateImage(ctx context.Context, device api.Handle, info *api.ImageCreateInfo) (api.Handle, api.Result) {
	return d.create(ctx, api.CreateImageID, api.Image, api.Device, device)
}

func (d *Driver) DestroyImage(ctx context.Context, device, image api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroyImageID)
	d.destroy(ctx, api.Image, image)
}

func (d *Driver) CreateSurface(ctx context.Context, instance api.Handle, info *api.SurfaceCreateInfo) (api.Handle, api.Result) {
	return d.create(ctx, api.CreateSurfaceID, api.Surface, api.Instance, instance)
}

func (d *Driver) DestroySurface(ctx context.Context, instance, surface api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroySurfaceID)
	d.destroy(ctx, api.Surface, surface)
}

func (d *Driver) CreateSwapchain(ctx context.Context, device api.Handle, info *api.SwapchainCreateInfo) (api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.CreateSwapchainID); failed {
		return api.NullHandle, r
	}
	if _, ok := d.live(ctx, api.Device, device); !ok {
		return api.NullHandle, api.ErrorDeviceLost
	}
	if info == nil {
		return api.NullHandle, api.ErrorInitializationFailed
	}
	if _, ok := d.live(ctx, api.Surface, info.Surface); !ok {
		return api.NullHandle, api.ErrorSurfaceLost
	}
	h := d.mint(api.Swapchain, device)
	n := int(info.MinImageCount)
	if n < d.opts.SwapchainImages {
		n = d.opts.SwapchainImages
	}
	for i := 0; i < n; i++ {
		d.mint(api.Image, h)
	}
	return h, api.Success
}

func (d *Driver) DestroySwapchain(ctx context.Context, device, swapchain api.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(ctx, api.DestroySwapchainID)
	if o, ok := d.objects[swapchain]; ok && o.class == api.Swapchain {
		for _, c := range o.children {
			delete(d.objects, c)
		}
	}
	d.destroy(ctx, api.Swapchain, swapchain)
}

func (d *Driver) GetSwapchainImages(ctx context.Context, device, swapchain api.Handle, capacity uint32) (uint32, []api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.GetSwapchainImagesID); failed {
		return 0, nil, r
	}
	o, ok := d.live(ctx, api.Swapchain, swapchain)
	if !ok {
		return 0, nil, api.ErrorSurfaceLost
	}
	return d.enumerate(o, api.Image, capacity)
}

func (d *Driver) QueuePresent(ctx context.Context, queue api.Handle, info *api.PresentInfo) api.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, api.QueuePresentID); failed {
		return r
	}
	if _, ok := d.live(ctx, api.Queue, queue); !ok {
		return api.ErrorDeviceLost
	}
	if info == nil || len(info.Swapchains) != len(info.ImageIndices) {
		return api.ErrorInitializationFailed
	}
	for i, s := range info.Swapchains {
		o, ok := d.live(ctx, api.Swapchain, s)
		if !ok || int(info.ImageIndices[i]) >= len(o.children) {
			return api.ErrorOutOfDate
		}
	}
	d.presents++
	return api.Success
}

func (d *Driver) create(ctx context.Context, id api.CallID, class, parentClass api.HandleClass, parent api.Handle) (api.Handle, api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, failed := d.enter(ctx, id); failed {
		return api.NullHandle, r
	}
	if _, ok := d.live(ctx, parentClass, parent); !ok {
		return api.NullHandle, api.ErrorDeviceLost
	}
	return d.mint(class, parent), api.Success
}
