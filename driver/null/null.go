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

// Package null is an in-memory implementation of the traced API. It mints its
// own handles and tracks object lifetimes, but executes nothing.
package null

import (
	"context"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// Options configure a Driver.
type Options struct {
	// Base is the first handle value minted. Zero selects 0x1000.
	Base api.Handle
	// PhysicalDevices is the number of physical devices per instance. Zero
	// selects 1.
	PhysicalDevices int
	// SwapchainImages is the minimum number of images per swapchain. Zero
	// selects 2.
	SwapchainImages int
	// MemoryLimit is the total number of bytes that can be allocated. Zero
	// is unlimited.
	MemoryLimit uint64
}

type object struct {
	class    api.HandleClass
	parent   api.Handle
	size     uint64
	contents []byte
	children []api.Handle
}

// Driver is the null implementation. It is safe for concurrent use.
type Driver struct {
	opts      Options
	mu        sync.Mutex
	next      api.Handle
	objects   map[api.Handle]*object
	queues    map[queueKey]api.Handle
	allocated uint64
	fail      map[api.CallID]api.Result
	calls     []api.CallID
	invalid   int
	presents  int
}

type queueKey struct {
	device        api.Handle
	family, index uint32
}

var _ api.Driver = &Driver{}

// New returns a new null driver.
func New(opts Options) *Driver {
	if opts.Base == api.NullHandle {
		opts.Base = 0x1000
	}
	if opts.PhysicalDevices == 0 {
		opts.PhysicalDevices = 1
	}
	if opts.SwapchainImages == 0 {
		opts.SwapchainImages = 2
	}
	return &Driver{
		opts:    opts,
		next:    opts.Base,
		objects: map[api.Handle]*object{},
		queues:  map[queueKey]api.Handle{},
		fail:    map[api.CallID]api.Result{},
	}
}

// Fail makes every following call of id return r. Creation calls that fail
// return the null handle.
func (d *Driver) Fail(id api.CallID, r api.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[id] = r
}

// Recover undoes Fail for id.
func (d *Driver) Recover(id api.CallID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.fail, id)
}

// Calls returns the calls made to the driver, in order.
func (d *Driver) Calls() []api.CallID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]api.CallID(nil), d.calls...)
}

// Live returns the number of live objects of class.
func (d *Driver) Live(class api.HandleClass) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, o := range d.objects {
		if o.class == class {
			n++
		}
	}
	return n
}

// Class returns the class of the live object h.
func (d *Driver) Class(h api.Handle) (api.HandleClass, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[h]; ok {
		return o.class, true
	}
	return 0, false
}

// Contents returns a copy of the bytes flushed to memory.
func (d *Driver) Contents(memory api.Handle) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if o, ok := d.objects[memory]; ok {
		return append([]byte(nil), o.contents...)
	}
	return nil
}

// InvalidCalls returns the number of calls that referenced a handle that was
// not live.
func (d *Driver) InvalidCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.invalid
}

// Presents returns the number of successful presents.
func (d *Driver) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// enter records the call and returns the injected failure for it, if any.
// d.mu must be held.
func (d *Driver) enter(ctx context.Context, id api.CallID) (api.Result, bool) {
	d.calls = append(d.calls, id)
	log.D(ctx, "null: %v", id)
	r, failed := d.fail[id]
	return r, failed
}

func (d *Driver) mint(class api.HandleClass, parent api.Handle) api.Handle {
	h := d.next
	d.next++
	d.objects[h] = &object{class: class, parent: parent}
	if p, ok := d.objects[parent]; ok {
		p.children = append(p.children, h)
	}
	return h
}

func (d *Driver) live(ctx context.Context, class api.HandleClass, h api.Handle) (*object, bool) {
	if o, ok := d.objects[h]; ok && o.class == class {
		return o, true
	}
	d.invalid++
	log.W(log.V{"class": class, "handle": h}.Bind(ctx), "null: invalid handle")
	return nil, false
}

func (d *Driver) destroy(ctx context.Context, class api.HandleClass, h api.Handle) {
	if h == api.NullHandle {
		return
	}
	o, ok := d.live(ctx, class, h)
	if !ok {
		return
	}
	if class == api.DeviceMemory {
		d.allocated -= o.size
	}
	delete(d.objects, h)
}

// enumerate implements the two call count idiom over the children of parent
// of class.
func (d *Driver) enumerate(parent *object, class api.HandleClass, capacity uint32) (uint32, []api.Handle, api.Result) {
	all := []api.Handle{}
	for _, c := range parent.children {
		if o, ok := d.objects[c]; ok && o.class == class {
			all = append(all, c)
		}
	}
	switch {
	case capacity == 0:
		return uint32(len(all)), nil, api.Success
	case int(capacity) < len(all):
		return capacity, all[:capacity], api.Incomplete
	default:
		return uint32(len(all)), all, api.Success
	}
}
