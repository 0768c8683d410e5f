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

package capture_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LunarG/VulkanTools-sub015/capture"
	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/driver/null"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/LunarG/VulkanTools-sub015/trace/packet"
	"golang.org/x/sync/errgroup"
)

type collector struct {
	mu      sync.Mutex
	packets []*packet.Packet
	skipped []uint64
}

func (c *collector) Write(p *packet.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, p)
	return nil
}

func (c *collector) Skip(index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = append(c.skipped, index)
	return nil
}

func (c *collector) ids() []api.CallID {
	out := make([]api.CallID, len(c.packets))
	for i, p := range c.packets {
		out[i] = p.CallID
	}
	return out
}

func setup(ctx context.Context, sink capture.Sink, opts capture.Options) (*null.Driver, *capture.Session, api.Table) {
	d := null.New(null.Options{})
	s := capture.NewSession(ctx, sink, opts)
	return d, s, api.Chain(api.TableOf(d), capture.Layer(s))
}

func TestRecordsCalls(t *testing.T) {
	ctx := log.Testing(t)
	sink := &collector{}
	_, s, table := setup(ctx, sink, capture.Options{})

	instance, r := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{ApplicationName: "cube"})
	assert.For(ctx, "CreateInstance").That(r).Equals(api.Success)
	n, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 4)
	assert.For(ctx, "count").That(n).Equals(uint32(1))
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	table.Device.DestroyDevice(ctx, device)
	table.Instance.DestroyInstance(ctx, instance)

	assert.For(ctx, "ids").ThatSlice(sink.ids()).Equals([]api.CallID{
		api.CreateInstanceID,
		api.EnumeratePhysicalDevicesID,
		api.CreateDeviceID,
		api.DestroyDeviceID,
		api.DestroyInstanceID,
	})
	for i, p := range sink.packets {
		assert.For(ctx, "index").That(p.Index).Equals(uint64(i))
		assert.For(ctx, "ticks").ThatBoolean(p.Exit >= p.Entry).IsTrue()
	}
	create := sink.packets[0].Call.(*api.VkCreateInstance)
	assert.For(ctx, "instance").That(create.Instance).Equals(instance)
	assert.For(ctx, "name").That(create.CreateInfo.ApplicationName).Equals("cube")
	enum := sink.packets[1].Call.(*api.VkEnumeratePhysicalDevices)
	assert.For(ctx, "devices").ThatSlice(enum.PhysicalDevices).Equals(devices)
	assert.For(ctx, "capacity").That(enum.Capacity).Equals(uint32(4))
	assert.For(ctx, "written").That(s.Stats().Written).Equals(uint64(5))
}

func TestResultsUnmodified(t *testing.T) {
	ctx := log.Testing(t)
	sink := &collector{}
	d, _, table := setup(ctx, sink, capture.Options{})

	d.Fail(api.CreateInstanceID, api.ErrorInitializationFailed)
	instance, r := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	assert.For(ctx, "failed result").That(r).Equals(api.ErrorInitializationFailed)
	assert.For(ctx, "failed handle").That(instance).Equals(api.NullHandle)
	d.Recover(api.CreateInstanceID)

	instance, _ = table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	n, devices, r := table.Instance.EnumeratePhysicalDevices(ctx, instance, 0)
	assert.For(ctx, "query count").That(n).Equals(uint32(1))
	assert.For(ctx, "query devices").ThatSlice(devices).IsEmpty()
	assert.For(ctx, "query result").That(r).Equals(api.Success)

	failed := sink.packets[0].Call.(*api.VkCreateInstance)
	assert.For(ctx, "recorded failure").That(failed.Result).Equals(api.ErrorInitializationFailed)
}

func TestArgumentsSnapshot(t *testing.T) {
	ctx := log.Testing(t)
	sink := &collector{}
	d, _, table := setup(ctx, sink, capture.Options{})

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	mem, _ := table.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: 16})

	data := []byte{1, 2, 3, 4}
	r := table.Memory.FlushMappedMemory(ctx, device, mem, 0, data)
	assert.For(ctx, "flush").That(r).Equals(api.Success)
	data[0] = 9

	flush := sink.packets[len(sink.packets)-1].Call.(*api.VkFlushMappedMemory)
	assert.For(ctx, "recorded data").ThatSlice(flush.Data).Equals([]byte{1, 2, 3, 4})
	assert.For(ctx, "driver data").ThatSlice(d.Contents(mem)).Equals([]byte{1, 2, 3, 4})
}

func TestUnsupportedCallIsOmitted(t *testing.T) {
	ctx := log.Testing(t)
	sink := &collector{}
	diagnostics := []error{}
	d, s, table := setup(ctx, sink, capture.Options{
		OnDiagnostic: func(ctx context.Context, err error) { diagnostics = append(diagnostics, err) },
	})

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	buffer, r := table.Resource.CreateBuffer(ctx, device, nil)
	assert.For(ctx, "result").That(r).Equals(api.Success)
	assert.For(ctx, "buffer").That(buffer).NotEquals(api.NullHandle)
	table.Resource.DestroyBuffer(ctx, device, buffer)

	assert.For(ctx, "driver saw call").ThatInteger(count(d.Calls(), api.CreateBufferID)).Equals(1)
	assert.For(ctx, "skipped").ThatSlice(sink.skipped).Equals([]uint64{3})
	assert.For(ctx, "ids").ThatSlice(sink.ids()).Equals([]api.CallID{
		api.CreateInstanceID,
		api.EnumeratePhysicalDevicesID,
		api.CreateDeviceID,
		api.DestroyBufferID,
	})
	assert.For(ctx, "diagnostics").ThatSlice(diagnostics).IsLength(1)
	var unsupported *packet.SerializationUnsupportedError
	assert.For(ctx, "diagnostic").ThatError(diagnostics[0]).As(&unsupported)
	assert.For(ctx, "omitted").That(s.Stats().Omitted).Equals(uint64(1))
}

func count(ids []api.CallID, id api.CallID) int {
	n := 0
	for _, i := range ids {
		if i == id {
			n++
		}
	}
	return n
}

type failingSink struct{ collector }

func (f *failingSink) Write(p *packet.Packet) error { return errors.New("disk full") }

func TestSinkFailureIsNotReturned(t *testing.T) {
	ctx := log.Testing(t)
	var diagnosed int
	_, s, table := setup(ctx, &failingSink{}, capture.Options{
		OnDiagnostic: func(context.Context, error) { diagnosed++ },
	})
	_, r := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	assert.For(ctx, "result").That(r).Equals(api.Success)
	assert.For(ctx, "diagnosed").ThatInteger(diagnosed).Equals(1)
	assert.For(ctx, "omitted").That(s.Stats().Omitted).Equals(uint64(1))
}

func TestConcurrentThreads(t *testing.T) {
	ctx := log.Testing(t)
	const threads, flushes = 4, 50

	buf := &bytes.Buffer{}
	w, err := file.NewWriter(buf, file.Header{APIVersion: api.Version, Metadata: file.NewMetadata("threads", "null")})
	assert.For(ctx, "NewWriter").ThatError(err).Succeeded()
	_, s, table := setup(ctx, w, capture.Options{})

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})

	memories := make([]api.Handle, threads)
	for i := range memories {
		memories[i], _ = table.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: flushes})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		i := i
		g.Go(func() error {
			ctx := capture.WithThread(gctx, uint32(i+1))
			for j := 0; j < flushes; j++ {
				if r := table.Memory.FlushMappedMemory(ctx, device, memories[i], uint64(j), []byte{byte(j)}); r != api.Success {
					return errors.New(r.String())
				}
			}
			return nil
		})
	}
	assert.For(ctx, "threads").ThatError(g.Wait()).Succeeded()
	assert.For(ctx, "Close").ThatError(s.Close(ctx)).Succeeded()

	r, err := file.NewReader(bytes.NewReader(buf.Bytes()))
	assert.For(ctx, "NewReader").ThatError(err).Succeeded()
	next := map[uint32]uint64{}
	total := 0
	for p, err := range r.Packets() {
		if !assert.For(ctx, "Packets").ThatError(err).Succeeded() {
			break
		}
		assert.For(ctx, "index").That(p.Index).Equals(uint64(total))
		total++
		if p.Thread == 0 {
			continue
		}
		flush := p.Call.(*api.VkFlushMappedMemory)
		assert.For(ctx, "memory").That(flush.Memory).Equals(memories[p.Thread-1])
		assert.For(ctx, "per thread order").That(flush.Offset).Equals(next[p.Thread])
		next[p.Thread]++
	}
	assert.For(ctx, "total").ThatInteger(total).Equals(3 + threads + threads*flushes)
	for i := uint32(1); i <= threads; i++ {
		assert.For(ctx, "thread %d", i).That(next[i]).Equals(uint64(flushes))
	}
}

func TestLedger(t *testing.T) {
	ctx := log.Testing(t)
	_, s, table := setup(ctx, &collector{}, capture.Options{})

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	a, _ := table.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: 100})
	table.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: 50})
	table.Memory.FreeMemory(ctx, device, a)

	stats := s.Ledger().Stats()
	assert.For(ctx, "live").ThatInteger(stats.Live).Equals(1)
	assert.For(ctx, "bytes").That(stats.Bytes).Equals(uint64(50))
	assert.For(ctx, "peak").That(stats.PeakBytes).Equals(uint64(150))
	assert.For(ctx, "frees").That(stats.Frees).Equals(uint64(1))
}

// reissuing is a memory family that always hands out the same handle and,
// while the first free of it is in flight, lets another allocation take it.
type reissuing struct {
	top *api.Table
}

func (r *reissuing) AllocateMemory(ctx context.Context, device api.Handle, info *api.MemoryAllocateInfo) (api.Handle, api.Result) {
	return 0x10, api.Success
}

func (r *reissuing) FreeMemory(ctx context.Context, device, memory api.Handle) {
	if top := r.top; top != nil {
		r.top = nil
		top.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: 64})
	}
}

func (r *reissuing) FlushMappedMemory(ctx context.Context, device, memory api.Handle, offset uint64, data []byte) api.Result {
	return api.Success
}

func TestLedgerReissuedHandle(t *testing.T) {
	ctx := log.Testing(t)
	s := capture.NewSession(ctx, &collector{}, capture.Options{})
	memory := &reissuing{}
	base := api.TableOf(null.New(null.Options{}))
	base.Memory = memory
	table := api.Chain(base, capture.Layer(s))
	memory.top = &table

	h, _ := table.Memory.AllocateMemory(ctx, 1, &api.MemoryAllocateInfo{AllocationSize: 32})
	table.Memory.FreeMemory(ctx, 1, h)

	stats := s.Ledger().Stats()
	assert.For(ctx, "live").ThatInteger(stats.Live).Equals(1)
	assert.For(ctx, "bytes").That(stats.Bytes).Equals(uint64(64))
	assert.For(ctx, "frees").That(stats.Frees).Equals(uint64(1))
}

func TestLedgerIgnoresFailedAllocations(t *testing.T) {
	ctx := log.Testing(t)
	d, s, table := setup(ctx, &collector{}, capture.Options{})

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	d.Fail(api.AllocateMemoryID, api.ErrorOutOfDeviceMemory)
	_, r := table.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: 100})
	assert.For(ctx, "result").That(r).Equals(api.ErrorOutOfDeviceMemory)
	assert.For(ctx, "live").ThatInteger(s.Ledger().Stats().Live).Equals(0)
}

func TestThresholdCheck(t *testing.T) {
	ctx := log.Testing(t)
	d := null.New(null.Options{})
	s := capture.NewSession(ctx, &collector{}, capture.Options{})
	check := &capture.ThresholdCheck{Limit: 2, Counters: s.Ledger()}
	table := api.Chain(api.TableOf(d), check, capture.Layer(s))

	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{})
	_, devices, _ := table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	device, _ := table.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{})
	info := &api.MemoryAllocateInfo{AllocationSize: 8}

	var mems []api.Handle
	for i := 0; i < 4; i++ {
		m, _ := table.Memory.AllocateMemory(ctx, device, info)
		mems = append(mems, m)
	}
	assert.For(ctx, "first crossing").ThatInteger(check.Warnings()).Equals(1)

	table.Memory.FreeMemory(ctx, device, mems[0])
	table.Memory.FreeMemory(ctx, device, mems[1])
	assert.For(ctx, "below").ThatInteger(check.Warnings()).Equals(1)

	table.Memory.AllocateMemory(ctx, device, info)
	assert.For(ctx, "second crossing").ThatInteger(check.Warnings()).Equals(2)
}
