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

package display_test

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
)

func TestGateRunning(t *testing.T) {
	ctx := log.Testing(t)
	c := &display.Control{}
	for i := 0; i < 3; i++ {
		assert.For(ctx, "gate").ThatError(c.Gate(ctx)).Succeeded()
	}
}

func TestGateStep(t *testing.T) {
	ctx := log.Testing(t)
	c := &display.Control{}
	c.Pause()
	c.Step(2)
	assert.For(ctx, "step 1").ThatError(c.Gate(ctx)).Succeeded()
	assert.For(ctx, "step 2").ThatError(c.Gate(ctx)).Succeeded()

	released := make(chan error, 1)
	go func() { released <- c.Gate(ctx) }()
	select {
	case err := <-released:
		t.Fatalf("Gate returned %v while paused", err)
	case <-time.After(20 * time.Millisecond):
	}
	c.Step(1)
	assert.For(ctx, "released").ThatError(<-released).Succeeded()
}

func TestGateResume(t *testing.T) {
	ctx := log.Testing(t)
	c := &display.Control{}
	c.Pause()
	assert.For(ctx, "paused").ThatBoolean(c.Paused()).IsTrue()
	released := make(chan error, 1)
	go func() { released <- c.Gate(ctx) }()
	c.Resume()
	assert.For(ctx, "resumed").ThatError(<-released).Succeeded()
}

func TestGateQuit(t *testing.T) {
	ctx := log.Testing(t)
	c := &display.Control{}
	c.Pause()
	released := make(chan error, 1)
	go func() { released <- c.Gate(ctx) }()
	c.Quit()
	assert.For(ctx, "quit").ThatError(<-released).Equals(display.ErrQuit)
	assert.For(ctx, "after quit").ThatError(c.Gate(ctx)).Equals(display.ErrQuit)
}

func TestGateCancelled(t *testing.T) {
	ctx := log.Testing(t)
	c := &display.Control{}
	c.Pause()
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.For(ctx, "cancelled").ThatError(c.Gate(cctx)).Equals(context.Canceled)
}

func TestCompare(t *testing.T) {
	ctx := log.Testing(t)
	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(10, 10, 14, 14))
	assert.For(ctx, "identical").ThatBoolean(display.Compare(a, b).Equal()).IsTrue()

	b.Set(11, 12, color.RGBA{R: 0xff, A: 0xff})
	b.Set(13, 13, color.RGBA{G: 0x01})
	d := display.Compare(a, b)
	assert.For(ctx, "pixels").ThatInteger(d.Pixels).Equals(2)
	assert.For(ctx, "max delta").That(d.MaxDelta).Equals(uint32(0xffff))

	c := image.NewRGBA(image.Rect(0, 0, 4, 5))
	assert.For(ctx, "size").ThatBoolean(display.Compare(a, c).SizeMismatch).IsTrue()
}

func TestUnknownBackend(t *testing.T) {
	ctx := log.Testing(t)
	_, err := display.New(ctx, "no-such-backend")
	assert.For(ctx, "err").ThatError(err).Failed()
}
