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
	"context"
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/pkg/errors"
)

// routine replays one recorded call.
type routine func(ctx context.Context, e *Engine, index uint64, call api.Call) error

func typed[T api.Call](f func(ctx context.Context, e *Engine, index uint64, c T) error) routine {
	return func(ctx context.Context, e *Engine, index uint64, call api.Call) error {
		c, ok := call.(T)
		if !ok {
			return errors.Errorf("Unexpected record %T for %v", call, call.CallID())
		}
		return f(ctx, e, index, c)
	}
}

var routines = map[api.CallID]routine{
	api.CreateInstanceID:           typed(createInstance),
	api.DestroyInstanceID:          typed(destroyInstance),
	api.EnumeratePhysicalDevicesID: typed(enumeratePhysicalDevices),
	api.CreateDeviceID:             typed(createDevice),
	api.DestroyDeviceID:            typed(destroyDevice),
	api.GetDeviceQueueID:           typed(getDeviceQueue),
	api.AllocateMemoryID:           typed(allocateMemory),
	api.FreeMemoryID:               typed(freeMemory),
	api.FlushMappedMemoryID:        typed(flushMappedMemory),
	api.CreateBufferID:             typed(createBuffer),
	api.DestroyBufferID:            typed(destroyBuffer),
	api.BindBufferMemoryID:         typed(bindBufferMemory),
	api.CreateImageID:              typed(createImage),
	api.DestroyImageID:             typed(destroyImage),
	api.CreateSurfaceID:            typed(createSurface),
	api.DestroySurfaceID:           typed(destroySurface),
	api.CreateSwapchainID:          typed(createSwapchain),
	api.DestroySwapchainID:         typed(destroySwapchain),
	api.GetSwapchainImagesID:       typed(getSwapchainImages),
	api.QueuePresentID:             typed(queuePresent),
}

// resolver maps recorded handles to live handles. The first lookup failure
// is kept and every later lookup returns the null handle.
type resolver struct {
	e   *Engine
	err error
}

func (r *resolver) get(class api.HandleClass, virtual api.Handle) api.Handle {
	if r.err != nil {
		return api.NullHandle
	}
	live, err := r.e.remap.Lookup(class, virtual)
	r.err = err
	return live
}

func (r *resolver) all(class api.HandleClass, virtual []api.Handle) []api.Handle {
	if virtual == nil {
		return nil
	}
	out := make([]api.Handle, len(virtual))
	for i, v := range virtual {
		out[i] = r.get(class, v)
	}
	return out
}

func diverged(index uint64, id api.CallID, recorded, live api.Result) error {
	if recorded == live {
		return nil
	}
	return &DivergenceError{Index: index, CallID: id, Recorded: recorded, Live: live}
}

// created registers the live handle returned by a creation call against the
// recorded one.
func (e *Engine) created(index uint64, id api.CallID, virtual, live api.Handle, recorded, result api.Result) error {
	if recorded.Failed() || virtual == api.NullHandle {
		return diverged(index, id, recorded, result)
	}
	if result.Failed() || live == api.NullHandle {
		return &DivergenceError{Index: index, CallID: id, Recorded: recorded, Live: result, Fatal: true}
	}
	e.remap.Register(id.Class(), virtual, live)
	return diverged(index, id, recorded, result)
}

// createdArray registers the live handles returned by an enumeration call
// element-wise against the recorded ones.
func (e *Engine) createdArray(index uint64, id api.CallID, virtual, live []api.Handle, recorded, result api.Result) error {
	if len(live) < len(virtual) {
		return &DivergenceError{
			Index: index, CallID: id, Recorded: recorded, Live: result, Fatal: true,
			Detail: fmt.Sprintf("replay returned %d handles, %d were recorded", len(live), len(virtual)),
		}
	}
	for i, v := range virtual {
		e.remap.Register(id.Class(), v, live[i])
	}
	return diverged(index, id, recorded, result)
}

// destroyed unregisters the handle of a destruction call, returning the live
// handle to destroy.
func (e *Engine) destroyed(id api.CallID, virtual api.Handle) (api.Handle, error) {
	live, err := e.remap.Lookup(id.Class(), virtual)
	if err != nil {
		return api.NullHandle, err
	}
	if err := e.remap.Unregister(id.Class(), virtual); err != nil {
		return api.NullHandle, err
	}
	return live, nil
}

func createInstance(ctx context.Context, e *Engine, index uint64, c *api.VkCreateInstance) error {
	live, r := e.table.Instance.CreateInstance(ctx, c.CreateInfo)
	return e.created(index, c.CallID(), c.Instance, live, c.Result, r)
}

func destroyInstance(ctx context.Context, e *Engine, index uint64, c *api.VkDestroyInstance) error {
	instance, err := e.destroyed(c.CallID(), c.Instance)
	if err != nil {
		return err
	}
	e.table.Instance.DestroyInstance(ctx, instance)
	return nil
}

func enumeratePhysicalDevices(ctx context.Context, e *Engine, index uint64, c *api.VkEnumeratePhysicalDevices) error {
	res := resolver{e: e}
	instance := res.get(api.Instance, c.Instance)
	if res.err != nil {
		return res.err
	}
	_, devices, r := e.table.Instance.EnumeratePhysicalDevices(ctx, instance, c.Capacity)
	return e.createdArray(index, c.CallID(), c.PhysicalDevices, devices, c.Result, r)
}

func createDevice(ctx context.Context, e *Engine, index uint64, c *api.VkCreateDevice) error {
	res := resolver{e: e}
	physical := res.get(api.PhysicalDevice, c.PhysicalDevice)
	if res.err != nil {
		return res.err
	}
	live, r := e.table.Device.CreateDevice(ctx, physical, c.CreateInfo)
	return e.created(index, c.CallID(), c.Device, live, c.Result, r)
}

func destroyDevice(ctx context.Context, e *Engine, index uint64, c *api.VkDestroyDevice) error {
	device, err := e.destroyed(c.CallID(), c.Device)
	if err != nil {
		return err
	}
	e.table.Device.DestroyDevice(ctx, device)
	return nil
}

func getDeviceQueue(ctx context.Context, e *Engine, index uint64, c *api.VkGetDeviceQueue) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	live := e.table.Device.GetDeviceQueue(ctx, device, c.QueueFamilyIndex, c.QueueIndex)
	return e.created(index, c.CallID(), c.Queue, live, api.Success, api.Success)
}

func allocateMemory(ctx context.Context, e *Engine, index uint64, c *api.VkAllocateMemory) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	live, r := e.table.Memory.AllocateMemory(ctx, device, c.AllocateInfo)
	err := e.created(index, c.CallID(), c.Memory, live, c.Result, r)
	if !c.Result.Failed() && !r.Failed() && c.AllocateInfo != nil {
		e.ledger.Insert(c.Memory, c.AllocateInfo.AllocationSize)
	}
	return err
}

func freeMemory(ctx context.Context, e *Engine, index uint64, c *api.VkFreeMemory) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	memory, err := e.destroyed(c.CallID(), c.Memory)
	if err != nil {
		return err
	}
	e.table.Memory.FreeMemory(ctx, device, memory)
	e.ledger.Remove(c.Memory)
	return nil
}

func flushMappedMemory(ctx context.Context, e *Engine, index uint64, c *api.VkFlushMappedMemory) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	memory := res.get(api.DeviceMemory, c.Memory)
	if res.err != nil {
		return res.err
	}
	r := e.table.Memory.FlushMappedMemory(ctx, device, memory, c.Offset, c.Data)
	return diverged(index, c.CallID(), c.Result, r)
}

func createBuffer(ctx context.Context, e *Engine, index uint64, c *api.VkCreateBuffer) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	live, r := e.table.Resource.CreateBuffer(ctx, device, c.CreateInfo)
	return e.created(index, c.CallID(), c.Buffer, live, c.Result, r)
}

func destroyBuffer(ctx context.Context, e *Engine, index uint64, c *api.VkDestroyBuffer) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	buffer, err := e.destroyed(c.CallID(), c.Buffer)
	if err != nil {
		return err
	}
	e.table.Resource.DestroyBuffer(ctx, device, buffer)
	return nil
}

func bindBufferMemory(ctx context.Context, e *Engine, index uint64, c *api.VkBindBufferMemory) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	buffer := res.get(api.Buffer, c.Buffer)
	memory := res.get(api.DeviceMemory, c.Memory)
	if res.err != nil {
		return res.err
	}
	r := e.table.Resource.BindBufferMemory(ctx, device, buffer, memory, c.Offset)
	return diverged(index, c.CallID(), c.Result, r)
}

func createImage(ctx context.Context, e *Engine, index uint64, c *api.VkCreateImage) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	live, r := e.table.Resource.CreateImage(ctx, device, c.CreateInfo)
	return e.created(index, c.CallID(), c.Image, live, c.Result, r)
}

func destroyImage(ctx context.Context, e *Engine, index uint64, c *api.VkDestroyImage) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	image, err := e.destroyed(c.CallID(), c.Image)
	if err != nil {
		return err
	}
	e.table.Resource.DestroyImage(ctx, device, image)
	return nil
}

// createSurface replaces the recorded native window, which only existed on
// the capture machine, with a window from the shim.
func createSurface(ctx context.Context, e *Engine, index uint64, c *api.VkCreateSurface) error {
	res := resolver{e: e}
	instance := res.get(api.Instance, c.Instance)
	if res.err != nil {
		return res.err
	}
	info := c.CreateInfo.Clone()
	if info != nil {
		width, height := int(info.Width), int(info.Height)
		if width == 0 || height == 0 {
			width, height = e.opts.Width, e.opts.Height
		}
		w, err := e.shim.CreateWindow(width, height)
		if err != nil {
			return log.Err(ctx, err, "Creating replay window")
		}
		info.NativeWindow = w.Native()
	}
	live, r := e.table.Present.CreateSurface(ctx, instance, info)
	return e.created(index, c.CallID(), c.Surface, live, c.Result, r)
}

func destroySurface(ctx context.Context, e *Engine, index uint64, c *api.VkDestroySurface) error {
	res := resolver{e: e}
	instance := res.get(api.Instance, c.Instance)
	if res.err != nil {
		return res.err
	}
	surface, err := e.destroyed(c.CallID(), c.Surface)
	if err != nil {
		return err
	}
	e.table.Present.DestroySurface(ctx, instance, surface)
	return nil
}

func createSwapchain(ctx context.Context, e *Engine, index uint64, c *api.VkCreateSwapchain) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	info := c.CreateInfo.Clone()
	if info != nil {
		info.Surface = res.get(api.Surface, info.Surface)
		info.OldSwapchain = res.get(api.Swapchain, info.OldSwapchain)
	}
	if res.err != nil {
		return res.err
	}
	if info != nil && info.OldSwapchain != api.NullHandle {
		if err := e.shim.Resize(int(info.Width), int(info.Height)); err != nil {
			log.W(ctx, "Resizing replay window: %v", err)
		}
	}
	live, r := e.table.Present.CreateSwapchain(ctx, device, info)
	return e.created(index, c.CallID(), c.Swapchain, live, c.Result, r)
}

// destroySwapchain also forgets the images owned by the swapchain.
func destroySwapchain(ctx context.Context, e *Engine, index uint64, c *api.VkDestroySwapchain) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	if res.err != nil {
		return res.err
	}
	swapchain, err := e.destroyed(c.CallID(), c.Swapchain)
	if err != nil {
		return err
	}
	for _, image := range e.images[c.Swapchain] {
		// Images the application destroyed itself are already unmapped.
		if err := e.remap.Unregister(api.Image, image); err != nil {
			log.D(ctx, "Swapchain image %v: %v", image, err)
		}
	}
	delete(e.images, c.Swapchain)
	e.table.Present.DestroySwapchain(ctx, device, swapchain)
	return nil
}

func getSwapchainImages(ctx context.Context, e *Engine, index uint64, c *api.VkGetSwapchainImages) error {
	res := resolver{e: e}
	device := res.get(api.Device, c.Device)
	swapchain := res.get(api.Swapchain, c.Swapchain)
	if res.err != nil {
		return res.err
	}
	_, images, r := e.table.Present.GetSwapchainImages(ctx, device, swapchain, c.Capacity)
	err := e.createdArray(index, c.CallID(), c.Images, images, c.Result, r)
	if len(images) >= len(c.Images) && len(c.Images) > 0 {
		e.images[c.Swapchain] = append([]api.Handle(nil), c.Images...)
	}
	return err
}

func queuePresent(ctx context.Context, e *Engine, index uint64, c *api.VkQueuePresent) error {
	res := resolver{e: e}
	queue := res.get(api.Queue, c.Queue)
	info := c.PresentInfo.Clone()
	if info != nil {
		info.Swapchains = res.all(api.Swapchain, info.Swapchains)
	}
	if res.err != nil {
		return res.err
	}
	r := e.table.Present.QueuePresent(ctx, queue, info)
	e.shim.ProcessPlatformEvents()
	e.summary.Presents++
	e.grab(ctx)
	e.notify(Event{Kind: Present, Index: index, CallID: c.CallID(), Frame: e.summary.Presents})
	return diverged(index, c.CallID(), c.Result, r)
}

// grab writes the presented image to the frame sink. Failures are logged and
// do not stop replay.
func (e *Engine) grab(ctx context.Context) {
	if e.opts.Frames == nil {
		return
	}
	g, ok := e.shim.(display.Grabber)
	if !ok {
		return
	}
	img, err := g.Grab()
	if err == nil {
		err = e.opts.Frames.WriteFrame(ctx, e.summary.Presents, img)
	}
	if err != nil {
		log.W(ctx, "Capturing frame %d: %v", e.summary.Presents, err)
	}
}
