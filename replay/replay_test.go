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

package replay_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/LunarG/VulkanTools-sub015/capture"
	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display/offscreen"
	"github.com/LunarG/VulkanTools-sub015/driver/null"
	"github.com/LunarG/VulkanTools-sub015/replay"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/LunarG/VulkanTools-sub015/trace/packet"
	"github.com/LunarG/VulkanTools-sub015/trace/remap"
)

// record captures the calls made by f against a null driver and returns the
// trace file bytes.
func record(ctx context.Context, opts null.Options, f func(ctx context.Context, t api.Table)) []byte {
	buf := &bytes.Buffer{}
	w, err := file.NewWriter(buf, file.Header{APIVersion: api.Version, Metadata: file.NewMetadata("test", "null")})
	assert.For(ctx, "NewWriter").ThatError(err).Succeeded()
	s := capture.NewSession(ctx, w, capture.Options{})
	f(ctx, api.Chain(api.TableOf(null.New(opts)), capture.Layer(s)))
	assert.For(ctx, "Close").ThatError(s.Close(ctx)).Succeeded()
	return buf.Bytes()
}

func reader(ctx context.Context, trace []byte) *file.Reader {
	r, err := file.NewReader(bytes.NewReader(trace))
	assert.For(ctx, "NewReader").ThatError(err).Succeeded()
	return r
}

type objects struct {
	instance, device, queue, memory, buffer api.Handle
}

func setup(ctx context.Context, t api.Table) objects {
	o := objects{}
	o.instance, _ = t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{ApplicationName: "cube", APIVersion: api.Version})
	n, _, _ := t.Instance.EnumeratePhysicalDevices(ctx, o.instance, 0)
	_, devices, _ := t.Instance.EnumeratePhysicalDevices(ctx, o.instance, n)
	o.device, _ = t.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{
		QueueCreateInfos: []api.DeviceQueueCreateInfo{{QueueFamilyIndex: 0, QueuePriorities: []float32{1}}},
	})
	o.queue = t.Device.GetDeviceQueue(ctx, o.device, 0, 0)
	o.memory, _ = t.Memory.AllocateMemory(ctx, o.device, &api.MemoryAllocateInfo{AllocationSize: 4096})
	o.buffer, _ = t.Resource.CreateBuffer(ctx, o.device, &api.BufferCreateInfo{Size: 1024})
	t.Resource.BindBufferMemory(ctx, o.device, o.buffer, o.memory, 0)
	t.Memory.FlushMappedMemory(ctx, o.device, o.memory, 0, []byte{1, 2, 3, 4})
	return o
}

// frames records a session presenting count frames to a 64x32 window.
func frames(count int) func(ctx context.Context, t api.Table) {
	return func(ctx context.Context, t api.Table) {
		o := setup(ctx, t)
		image, _ := t.Resource.CreateImage(ctx, o.device, &api.ImageCreateInfo{Extent: api.Extent3D{Width: 64, Height: 32, Depth: 1}})
		surface, _ := t.Present.CreateSurface(ctx, o.instance, &api.SurfaceCreateInfo{NativeWindow: 0xdead, Width: 64, Height: 32})
		swapchain, _ := t.Present.CreateSwapchain(ctx, o.device, &api.SwapchainCreateInfo{Surface: surface, MinImageCount: 2, Width: 64, Height: 32})
		n, _, _ := t.Present.GetSwapchainImages(ctx, o.device, swapchain, 0)
		_, images, _ := t.Present.GetSwapchainImages(ctx, o.device, swapchain, n)
		for i := 0; i < count; i++ {
			t.Present.QueuePresent(ctx, o.queue, &api.PresentInfo{
				Swapchains:   []api.Handle{swapchain},
				ImageIndices: []uint32{uint32(i % len(images))},
			})
		}
		resized, _ := t.Present.CreateSwapchain(ctx, o.device, &api.SwapchainCreateInfo{Surface: surface, MinImageCount: 2, Width: 32, Height: 16, OldSwapchain: swapchain})
		t.Present.DestroySwapchain(ctx, o.device, swapchain)
		t.Present.DestroySwapchain(ctx, o.device, resized)
		t.Present.DestroySurface(ctx, o.instance, surface)
		t.Resource.DestroyImage(ctx, o.device, image)
		t.Resource.DestroyBuffer(ctx, o.device, o.buffer)
		t.Memory.FreeMemory(ctx, o.device, o.memory)
	}
}

func TestDoubleDestroyHalts(t *testing.T) {
	ctx := log.Testing(t)
	var v1 api.Handle
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		instance, _ := t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
		_, devices, _ := t.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
		device, _ := t.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
		v1, _ = t.Resource.CreateBuffer(ctx, device, &api.BufferCreateInfo{Size: 1024})
		t.Resource.DestroyBuffer(ctx, device, v1)
		t.Resource.DestroyBuffer(ctx, device, v1)
	})

	events := []replay.Event{}
	e := replay.New(api.TableOf(null.New(null.Options{Base: 0x8000})), offscreen.New(), replay.Options{
		Observer: func(ev replay.Event) { events = append(events, ev) },
	})
	summary, err := e.Run(ctx, reader(ctx, trace))

	var halt *replay.HaltError
	assert.For(ctx, "halt").ThatError(err).As(&halt)
	assert.For(ctx, "index").That(halt.Index).Equals(uint64(5))
	assert.For(ctx, "call").That(halt.CallID).Equals(api.DestroyBufferID)
	var missing *remap.HandleNotFoundError
	assert.For(ctx, "cause").ThatError(err).As(&missing)
	assert.For(ctx, "class").That(missing.Class).Equals(api.Buffer)
	assert.For(ctx, "handle").That(missing.Handle).Equals(v1)

	assert.For(ctx, "state").That(e.State()).Equals(replay.Halted)
	assert.For(ctx, "summary state").That(summary.State).Equals(replay.Halted)
	assert.For(ctx, "packets").ThatInteger(summary.Packets).Equals(5)
	last := events[len(events)-1]
	assert.For(ctx, "halt event").That(last.Kind).Equals(replay.Halt)
	assert.For(ctx, "halt event index").That(last.Index).Equals(uint64(5))
}

func TestLookupAfterDestroy(t *testing.T) {
	ctx := log.Testing(t)
	var buffer api.Handle
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		o := setup(ctx, t)
		buffer = o.buffer
		t.Resource.DestroyBuffer(ctx, o.device, o.buffer)
	})
	e := replay.New(api.TableOf(null.New(null.Options{Base: 0x8000})), offscreen.New(), replay.Options{})
	_, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	_, err = e.Remap().Lookup(api.Buffer, buffer)
	var missing *remap.HandleNotFoundError
	assert.For(ctx, "lookup").ThatError(err).As(&missing)
}

func TestReplayIsRepeatable(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		o := setup(ctx, t)
		t.Resource.CreateImage(ctx, o.device, &api.ImageCreateInfo{MipLevels: 1})
	})

	run := func(base api.Handle) *replay.Engine {
		e := replay.New(api.TableOf(null.New(null.Options{Base: base})), offscreen.New(), replay.Options{})
		summary, err := e.Run(ctx, reader(ctx, trace))
		assert.For(ctx, "run").ThatError(err).Succeeded()
		assert.For(ctx, "state").That(summary.State).Equals(replay.Completed)
		assert.For(ctx, "divergences").ThatInteger(summary.Divergences).Equals(0)
		return e
	}
	a, b := run(0x10000), run(0x20000)
	assert.For(ctx, "keys").That(a.Remap().Keys()).DeepEquals(b.Remap().Keys())
	assert.For(ctx, "handles").ThatInteger(a.Remap().Len()).Equals(7)

	buffer := a.Remap().Keys()[api.Buffer][0]
	ra, _ := a.Remap().Lookup(api.Buffer, buffer)
	rb, _ := b.Remap().Lookup(api.Buffer, buffer)
	assert.For(ctx, "real handles differ").That(ra).NotEquals(rb)
}

func TestLedgerAccounting(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		o := setup(ctx, t)
		info := &api.MemoryAllocateInfo{AllocationSize: 100}
		a, _ := t.Memory.AllocateMemory(ctx, o.device, info)
		b, _ := t.Memory.AllocateMemory(ctx, o.device, info)
		t.Memory.FreeMemory(ctx, o.device, a)
		t.Memory.AllocateMemory(ctx, o.device, info)
		t.Memory.FreeMemory(ctx, o.device, b)
		t.Memory.FreeMemory(ctx, o.device, o.memory)
	})
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	summary, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	assert.For(ctx, "live").ThatInteger(e.Ledger().Stats().Live).Equals(1)
	assert.For(ctx, "bytes").That(summary.Memory.Bytes).Equals(uint64(100))
	assert.For(ctx, "allocations").That(summary.Memory.Allocations).Equals(uint64(4))
	assert.For(ctx, "frees").That(summary.Memory.Frees).Equals(uint64(3))
}

func TestPresent(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(3))

	shim := offscreen.New()
	dir := offscreen.PNGDir(t.TempDir())
	presents := []int{}
	e := replay.New(api.TableOf(null.New(null.Options{})), shim, replay.Options{
		Frames: dir,
		Observer: func(ev replay.Event) {
			if ev.Kind == replay.Present {
				presents = append(presents, ev.Frame)
			}
		},
	})
	summary, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	assert.For(ctx, "presents").ThatInteger(summary.Presents).Equals(3)
	assert.For(ctx, "events").ThatSlice(presents).Equals([]int{1, 2, 3})
	assert.For(ctx, "platform events").ThatInteger(shim.Events()).Equals(3)
	assert.For(ctx, "windows").ThatSlice(shim.Windows()).IsLength(1)

	w, h := shim.Windows()[0].Size()
	assert.For(ctx, "resized width").ThatInteger(w).Equals(32)
	assert.For(ctx, "resized height").ThatInteger(h).Equals(16)

	img, err := offscreen.ReadPNG(dir.Path(3))
	assert.For(ctx, "frame 3").ThatError(err).Succeeded()
	assert.For(ctx, "frame width").ThatInteger(img.Bounds().Dx()).Equals(64)
	assert.For(ctx, "images forgotten").ThatSlice(e.Remap().Keys()[api.Image]).IsEmpty()
}

func TestDivergenceContinues(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))

	d := null.New(null.Options{})
	d.Fail(api.FlushMappedMemoryID, api.ErrorOutOfHostMemory)
	divergences := []error{}
	e := replay.New(api.TableOf(d), offscreen.New(), replay.Options{
		Observer: func(ev replay.Event) {
			if ev.Kind == replay.Divergence {
				divergences = append(divergences, ev.Err)
			}
		},
	})
	summary, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	assert.For(ctx, "state").That(summary.State).Equals(replay.Completed)
	assert.For(ctx, "divergences").ThatInteger(summary.Divergences).Equals(1)
	var div *replay.DivergenceError
	assert.For(ctx, "event").ThatError(divergences[0]).As(&div)
	assert.For(ctx, "recorded").That(div.Recorded).Equals(api.Success)
	assert.For(ctx, "live").That(div.Live).Equals(api.ErrorOutOfHostMemory)
	assert.For(ctx, "fatal").ThatBoolean(div.Fatal).IsFalse()
}

func TestIncompleteIsDivergence(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{PhysicalDevices: 1}, func(ctx context.Context, t api.Table) {
		instance, _ := t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
		t.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	})
	e := replay.New(api.TableOf(null.New(null.Options{PhysicalDevices: 2})), offscreen.New(), replay.Options{})
	summary, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	assert.For(ctx, "divergences").ThatInteger(summary.Divergences).Equals(1)
}

func TestCreationFailureHalts(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))

	d := null.New(null.Options{})
	d.Fail(api.CreateBufferID, api.ErrorOutOfDeviceMemory)
	e := replay.New(api.TableOf(d), offscreen.New(), replay.Options{})
	_, err := e.Run(ctx, reader(ctx, trace))
	var div *replay.DivergenceError
	assert.For(ctx, "halt").ThatError(err).As(&div)
	assert.For(ctx, "fatal").ThatBoolean(div.Fatal).IsTrue()
	assert.For(ctx, "call").That(div.CallID).Equals(api.CreateBufferID)
	assert.For(ctx, "state").That(e.State()).Equals(replay.Halted)
}

func TestFewerHandlesHalts(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{PhysicalDevices: 2}, func(ctx context.Context, t api.Table) {
		instance, _ := t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
		t.Instance.EnumeratePhysicalDevices(ctx, instance, 2)
	})
	e := replay.New(api.TableOf(null.New(null.Options{PhysicalDevices: 1})), offscreen.New(), replay.Options{})
	_, err := e.Run(ctx, reader(ctx, trace))
	var div *replay.DivergenceError
	assert.For(ctx, "halt").ThatError(err).As(&div)
	assert.For(ctx, "call").That(div.CallID).Equals(api.EnumeratePhysicalDevicesID)
	assert.For(ctx, "fatal").ThatBoolean(div.Fatal).IsTrue()
}

func TestMalformedHalts(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	summary, err := e.Run(ctx, reader(ctx, trace[:len(trace)-3]))
	var malformed *packet.MalformedPacketError
	assert.For(ctx, "halt").ThatError(err).As(&malformed)
	var halt *replay.HaltError
	assert.For(ctx, "halt error").ThatError(err).As(&halt)
	assert.For(ctx, "index").That(halt.Index).Equals(malformed.Index)
	assert.For(ctx, "packets").ThatInteger(summary.Packets).Equals(int(malformed.Index))
}

func TestPauseStepQuit(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(2))

	shim := offscreen.New()
	progress := make(chan uint64, 64)
	e := replay.New(api.TableOf(null.New(null.Options{})), shim, replay.Options{
		PauseAt: []uint64{3},
		Observer: func(ev replay.Event) {
			if ev.Kind == replay.Progress {
				progress <- ev.Index
			}
		},
	})
	type result struct {
		summary replay.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := e.Run(ctx, reader(ctx, trace))
		done <- result{s, err}
	}()

	for i := uint64(0); i < 3; i++ {
		assert.For(ctx, "progress").That(<-progress).Equals(i)
	}
	shim.Step(1)
	assert.For(ctx, "stepped").That(<-progress).Equals(uint64(3))
	shim.Quit()

	res := <-done
	assert.For(ctx, "run").ThatError(res.err).Succeeded()
	assert.For(ctx, "interrupted").ThatBoolean(res.summary.Interrupted).IsTrue()
	assert.For(ctx, "state").That(res.summary.State).Equals(replay.Completed)
	assert.For(ctx, "packets").ThatInteger(res.summary.Packets).Equals(4)
}

func TestCancelled(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))
	cctx, cancel := context.WithCancel(ctx)
	shim := offscreen.New()
	shim.Pause()
	e := replay.New(api.TableOf(null.New(null.Options{})), shim, replay.Options{})
	cancel()
	summary, err := e.Run(cctx, reader(ctx, trace))
	assert.For(ctx, "err").ThatError(err).Equals(context.Canceled)
	assert.For(ctx, "interrupted").ThatBoolean(summary.Interrupted).IsTrue()
	assert.For(ctx, "packets").ThatInteger(summary.Packets).Equals(0)
}

func TestCancelledWhileRunning(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	summary, err := e.Run(cctx, reader(ctx, trace))
	assert.For(ctx, "err").ThatError(err).Equals(context.Canceled)
	assert.For(ctx, "state").That(summary.State).Equals(replay.Completed)
	assert.For(ctx, "interrupted").ThatBoolean(summary.Interrupted).IsTrue()
	assert.For(ctx, "packets").ThatInteger(summary.Packets).Equals(0)
}

// failing yields the packets of src until limit have been read, then fails.
type failing struct {
	src   replay.Source
	limit int
	err   error
}

func (f *failing) Next() (*packet.Packet, error) {
	if f.limit == 0 {
		return nil, f.err
	}
	f.limit--
	return f.src.Next()
}

func TestReadErrorHaltsAtNextIndex(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
		// Not serializable without a create info, leaving index 1 unused.
		t.Resource.CreateBuffer(ctx, api.NullHandle, nil)
		t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	})
	boom := errors.New("device removed")
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	summary, err := e.Run(ctx, &failing{src: reader(ctx, trace), limit: 2, err: boom})
	var halt *replay.HaltError
	assert.For(ctx, "halt").ThatError(err).As(&halt)
	assert.For(ctx, "cause").ThatError(err).Is(boom)
	assert.For(ctx, "packets").ThatInteger(summary.Packets).Equals(2)
	assert.For(ctx, "index").That(halt.Index).Equals(uint64(3))
	assert.For(ctx, "state").That(summary.State).Equals(replay.Halted)
}

func TestDestroyedSwapchainImage(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		o := setup(ctx, t)
		surface, _ := t.Present.CreateSurface(ctx, o.instance, &api.SurfaceCreateInfo{Width: 64, Height: 32})
		swapchain, _ := t.Present.CreateSwapchain(ctx, o.device, &api.SwapchainCreateInfo{Surface: surface, MinImageCount: 2})
		_, images, _ := t.Present.GetSwapchainImages(ctx, o.device, swapchain, 2)
		t.Resource.DestroyImage(ctx, o.device, images[0])
		t.Present.DestroySwapchain(ctx, o.device, swapchain)
	})
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	summary, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	assert.For(ctx, "state").That(summary.State).Equals(replay.Completed)
	assert.For(ctx, "images").ThatSlice(e.Remap().Keys()[api.Image]).IsEmpty()
}

func TestRunOnce(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, frames(1))
	e := replay.New(api.TableOf(null.New(null.Options{})), offscreen.New(), replay.Options{})
	_, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "first").ThatError(err).Succeeded()
	_, err = e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "second").ThatError(err).Failed()
}

func TestUnsizedSurface(t *testing.T) {
	ctx := log.Testing(t)
	trace := record(ctx, null.Options{}, func(ctx context.Context, t api.Table) {
		instance, _ := t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
		t.Present.CreateSurface(ctx, instance, &api.SurfaceCreateInfo{NativeWindow: 7})
	})
	shim := offscreen.New()
	e := replay.New(api.TableOf(null.New(null.Options{})), shim, replay.Options{Width: 100, Height: 50})
	_, err := e.Run(ctx, reader(ctx, trace))
	assert.For(ctx, "run").ThatError(err).Succeeded()
	w, h := shim.Windows()[0].Size()
	assert.For(ctx, "width").ThatInteger(w).Equals(100)
	assert.For(ctx, "height").ThatInteger(h).Equals(50)
}
