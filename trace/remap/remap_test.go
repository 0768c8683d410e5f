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

package remap_test

import (
	"testing"

	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/remap"
)

func TestLifecycle(t *testing.T) {
	ctx := log.Testing(t)
	table := remap.New()
	table.Register(api.Buffer, 0x10, 0x9000)

	real, err := table.Lookup(api.Buffer, 0x10)
	assert.For(ctx, "Lookup err").ThatError(err).Succeeded()
	assert.For(ctx, "Lookup").That(real).Equals(api.Handle(0x9000))

	_, err = table.Lookup(api.Image, 0x10)
	assert.For(ctx, "other class").ThatError(err).Failed()

	assert.For(ctx, "Unregister").ThatError(table.Unregister(api.Buffer, 0x10)).Succeeded()
	_, err = table.Lookup(api.Buffer, 0x10)
	var missing *remap.HandleNotFoundError
	if assert.For(ctx, "Lookup after destroy").ThatError(err).As(&missing) {
		assert.For(ctx, "class").That(missing.Class).Equals(api.Buffer)
		assert.For(ctx, "handle").That(missing.Handle).Equals(api.Handle(0x10))
	}
	assert.For(ctx, "Unregister twice").ThatError(table.Unregister(api.Buffer, 0x10)).As(&missing)

	table.Register(api.Buffer, 0x10, 0x9100)
	real, _ = table.Lookup(api.Buffer, 0x10)
	assert.For(ctx, "re-registered").That(real).Equals(api.Handle(0x9100))
}

func TestRegisterOverwrites(t *testing.T) {
	ctx := log.Testing(t)
	table := remap.New()
	table.Register(api.DeviceMemory, 1, 100)
	table.Register(api.DeviceMemory, 1, 200)
	real, _ := table.Lookup(api.DeviceMemory, 1)
	assert.For(ctx, "real").That(real).Equals(api.Handle(200))
	assert.For(ctx, "len").ThatInteger(table.Len()).Equals(1)
}

func TestNullHandle(t *testing.T) {
	ctx := log.Testing(t)
	table := remap.New()
	real, err := table.Lookup(api.Swapchain, api.NullHandle)
	assert.For(ctx, "Lookup err").ThatError(err).Succeeded()
	assert.For(ctx, "Lookup").That(real).Equals(api.NullHandle)
	assert.For(ctx, "Unregister").ThatError(table.Unregister(api.Swapchain, api.NullHandle)).Succeeded()
	table.Register(api.Swapchain, api.NullHandle, 5)
	assert.For(ctx, "len").ThatInteger(table.Len()).Equals(0)
}

func TestKeys(t *testing.T) {
	ctx := log.Testing(t)
	table := remap.New()
	table.Register(api.Image, 3, 30)
	table.Register(api.Image, 1, 10)
	table.Register(api.Device, 7, 70)
	table.Register(api.Queue, 8, 80)
	table.Unregister(api.Queue, 8)
	assert.For(ctx, "keys").That(table.Keys()).DeepEquals(map[api.HandleClass][]api.Handle{
		api.Image:  {1, 3},
		api.Device: {7},
	})
	table.Reset()
	assert.For(ctx, "reset").ThatInteger(table.Len()).Equals(0)
}
