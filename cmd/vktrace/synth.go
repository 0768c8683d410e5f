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

package main

import (
	"context"
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/capture"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/driver/null"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSynthCmd(g *globals) *cobra.Command {
	var (
		output  string
		frames  int
		threads int
		buffers int
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Capture a synthetic application running on the null driver",
		Long: `Runs a small built-in application against the null driver with the capture
layer installed. Worker threads upload buffers concurrently while the main
thread presents frames, which exercises the ordering of multi-threaded
captures.`,
		Example: `  vktrace synth --output cube.vktrace --frames 60 --threads 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if output == "" {
				output = g.cfg.Capture.Output
			}
			if threads <= 0 {
				threads = g.cfg.Capture.Threads
			}
			h := file.Header{
				APIVersion: api.Version,
				Metadata:   file.NewMetadata(g.cfg.Capture.Application, "null"),
			}
			w, err := file.Create(ctx, output, h)
			if err != nil {
				return err
			}
			s := capture.NewSession(ctx, w, capture.Options{})
			layers := []api.Layer{}
			var check *capture.ThresholdCheck
			if g.cfg.Capture.Threshold > 0 {
				check = &capture.ThresholdCheck{Limit: g.cfg.Capture.Threshold, Counters: s.Ledger()}
				layers = append(layers, check)
			}
			layers = append(layers, capture.Layer(s))
			table := api.Chain(api.TableOf(null.New(null.Options{})), layers...)

			runErr := synthesize(ctx, table, frames, threads, buffers)
			if err := s.Close(ctx); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}
			stats := s.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d packets to %s (%d omitted)\n", stats.Written, output, stats.Omitted)
			if check != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Threshold warnings: %d\n", check.Warnings())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "trace file to write (default from configuration)")
	cmd.Flags().IntVar(&frames, "frames", 10, "frames to present")
	cmd.Flags().IntVar(&threads, "threads", 0, "upload threads (default from configuration)")
	cmd.Flags().IntVar(&buffers, "buffers", 8, "buffers uploaded by each thread")
	return cmd
}

// synthesize drives table the way a small rendering application would.
func synthesize(ctx context.Context, t api.Table, frames, threads, buffers int) error {
	instance, r := t.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{
		ApplicationName:    "synth",
		ApplicationVersion: 1,
		EngineName:         "vktrace",
		APIVersion:         api.Version,
	})
	if r.Failed() {
		return errors.Errorf("CreateInstance: %v", r)
	}
	n, _, _ := t.Instance.EnumeratePhysicalDevices(ctx, instance, 0)
	_, devices, r := t.Instance.EnumeratePhysicalDevices(ctx, instance, n)
	if r.Failed() || len(devices) == 0 {
		return errors.Errorf("EnumeratePhysicalDevices: %v", r)
	}
	device, r := t.Device.CreateDevice(ctx, devices[0], &api.DeviceCreateInfo{
		QueueCreateInfos: []api.DeviceQueueCreateInfo{{QueueFamilyIndex: 0, QueuePriorities: []float32{1}}},
	})
	if r.Failed() {
		return errors.Errorf("CreateDevice: %v", r)
	}
	queue := t.Device.GetDeviceQueue(ctx, device, 0, 0)

	grp, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		thread := uint32(i + 1)
		grp.Go(func() error {
			return upload(capture.WithThread(gctx, thread), t, device, buffers)
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	surface, r := t.Present.CreateSurface(ctx, instance, &api.SurfaceCreateInfo{NativeWindow: 1, Width: 640, Height: 480})
	if r.Failed() {
		return errors.Errorf("CreateSurface: %v", r)
	}
	swapchain, r := t.Present.CreateSwapchain(ctx, device, &api.SwapchainCreateInfo{
		Surface: surface, MinImageCount: 2, Width: 640, Height: 480,
	})
	if r.Failed() {
		return errors.Errorf("CreateSwapchain: %v", r)
	}
	count, _, _ := t.Present.GetSwapchainImages(ctx, device, swapchain, 0)
	_, images, _ := t.Present.GetSwapchainImages(ctx, device, swapchain, count)
	for f := 0; f < frames && len(images) > 0; f++ {
		if r := t.Present.QueuePresent(ctx, queue, &api.PresentInfo{
			Swapchains:   []api.Handle{swapchain},
			ImageIndices: []uint32{uint32(f % len(images))},
		}); r.Failed() {
			log.W(ctx, "Present of frame %d failed: %v", f, r)
		}
	}
	t.Present.DestroySwapchain(ctx, device, swapchain)
	t.Present.DestroySurface(ctx, instance, surface)
	t.Device.DestroyDevice(ctx, device)
	t.Instance.DestroyInstance(ctx, instance)
	return nil
}

func upload(ctx context.Context, t api.Table, device api.Handle, buffers int) error {
	for i := 0; i < buffers; i++ {
		size := uint64(256 * (i + 1))
		memory, r := t.Memory.AllocateMemory(ctx, device, &api.MemoryAllocateInfo{AllocationSize: size})
		if r.Failed() {
			return errors.Errorf("AllocateMemory: %v", r)
		}
		buffer, r := t.Resource.CreateBuffer(ctx, device, &api.BufferCreateInfo{Size: size, Usage: 0x80})
		if r.Failed() {
			return errors.Errorf("CreateBuffer: %v", r)
		}
		t.Resource.BindBufferMemory(ctx, device, buffer, memory, 0)
		data := make([]byte, size)
		for j := range data {
			data[j] = byte(i + j)
		}
		t.Memory.FlushMappedMemory(ctx, device, memory, 0, data)
		t.Resource.DestroyBuffer(ctx, device, buffer)
		if i%2 == 0 {
			t.Memory.FreeMemory(ctx, device, memory)
		}
	}
	return nil
}
