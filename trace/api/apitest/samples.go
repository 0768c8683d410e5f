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

// Package apitest holds populated call records for codec and replay tests.
package apitest

import "github.com/LunarG/VulkanTools-sub015/trace/api"

// Samples returns one fully populated record of every call, in call
// identifier order. Every array field is non-empty so round trips exercise
// the array encodings.
func Samples() []api.Call {
	return []api.Call{
		&api.VkCreateInstance{
			CreateInfo: &api.InstanceCreateInfo{
				ApplicationName:    "cube",
				ApplicationVersion: 1,
				EngineName:         "",
				APIVersion:         api.Version,
				EnabledLayers:      []string{"VK_LAYER_KHRONOS_validation"},
				EnabledExtensions:  []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
			},
			Instance: 0x10,
		},
		&api.VkDestroyInstance{Instance: 0x10},
		&api.VkEnumeratePhysicalDevices{
			Instance:        0x10,
			Capacity:        2,
			Count:           2,
			PhysicalDevices: []api.Handle{0x20, 0x21},
		},
		&api.VkCreateDevice{
			PhysicalDevice: 0x20,
			CreateInfo: &api.DeviceCreateInfo{
				QueueCreateInfos: []api.DeviceQueueCreateInfo{
					{QueueFamilyIndex: 0, QueuePriorities: []float32{1, 0.5}},
					{QueueFamilyIndex: 2, QueuePriorities: []float32{0}},
				},
				EnabledExtensions: []string{"VK_KHR_swapchain"},
			},
			Device: 0x30,
		},
		&api.VkDestroyDevice{Device: 0x30},
		&api.VkGetDeviceQueue{Device: 0x30, QueueFamilyIndex: 0, QueueIndex: 1, Queue: 0x40},
		&api.VkAllocateMemory{
			Device:       0x30,
			AllocateInfo: &api.MemoryAllocateInfo{AllocationSize: 65536, MemoryTypeIndex: 1},
			Memory:       0x50,
		},
		&api.VkFreeMemory{Device: 0x30, Memory: 0x50},
		&api.VkFlushMappedMemory{Device: 0x30, Memory: 0x50, Offset: 256, Data: []byte{0, 1, 0, 0, 0xff}},
		&api.VkCreateBuffer{
			Device: 0x30,
			CreateInfo: &api.BufferCreateInfo{
				Size:               1024,
				Usage:              0x80,
				SharingMode:        1,
				QueueFamilyIndices: []uint32{0, 2},
			},
			Buffer: 0x60,
		},
		&api.VkDestroyBuffer{Device: 0x30, Buffer: 0x60},
		&api.VkBindBufferMemory{Device: 0x30, Buffer: 0x60, Memory: 0x50, Offset: 512},
		&api.VkCreateImage{
			Device: 0x30,
			CreateInfo: &api.ImageCreateInfo{
				Format:      37,
				Extent:      api.Extent3D{Width: 640, Height: 480, Depth: 1},
				MipLevels:   1,
				ArrayLayers: 1,
				Usage:       0x10,
			},
			Image:  0x70,
			Result: api.Success,
		},
		&api.VkDestroyImage{Device: 0x30, Image: 0x70},
		&api.VkCreateSurface{
			Instance:   0x10,
			CreateInfo: &api.SurfaceCreateInfo{NativeWindow: 0xdeadbeef, Width: 640, Height: 480},
			Surface:    0x80,
		},
		&api.VkDestroySurface{Instance: 0x10, Surface: 0x80},
		&api.VkCreateSwapchain{
			Device: 0x30,
			CreateInfo: &api.SwapchainCreateInfo{
				Surface:       0x80,
				MinImageCount: 2,
				Format:        44,
				Width:         640,
				Height:        480,
				PresentMode:   2,
				OldSwapchain:  api.NullHandle,
			},
			Swapchain: 0x90,
		},
		&api.VkDestroySwapchain{Device: 0x30, Swapchain: 0x90},
		&api.VkGetSwapchainImages{
			Device:    0x30,
			Swapchain: 0x90,
			Capacity:  3,
			Count:     2,
			Images:    []api.Handle{0xa0, 0xa1},
			Result:    api.Incomplete,
		},
		&api.VkQueuePresent{
			Queue:       0x40,
			PresentInfo: &api.PresentInfo{Swapchains: []api.Handle{0x90}, ImageIndices: []uint32{1}},
			Result:      api.ErrorOutOfDate,
		},
	}
}
