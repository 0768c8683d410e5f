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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LunarG/VulkanTools-sub015/config"
	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
)

func TestDefaults(t *testing.T) {
	ctx := log.Testing(t)
	cfg, err := config.Load("")
	assert.For(ctx, "Load").ThatError(err).Succeeded()
	assert.For(ctx, "level").That(cfg.Log.Level).Equals("info")
	assert.For(ctx, "display").That(cfg.Replay.Display).Equals("offscreen")
	assert.For(ctx, "width").ThatInteger(cfg.Replay.Width).Equals(640)
	assert.For(ctx, "threads").ThatInteger(cfg.Capture.Threads).Equals(1)
	assert.For(ctx, "archive level").ThatInteger(cfg.Archive.Level).Equals(9)
	assert.For(ctx, "pause at").ThatSlice(cfg.Replay.PauseAt).IsEmpty()
	severity, _ := cfg.Severity()
	assert.For(ctx, "severity").That(severity).Equals(log.Info)
}

func TestEnvironment(t *testing.T) {
	ctx := log.Testing(t)
	t.Setenv("VKTRACE_LOG_LEVEL", "debug")
	t.Setenv("VKTRACE_REPLAY_PAUSE_AT", "3,10")
	t.Setenv("VKTRACE_ARCHIVE_BUCKET", "mem://")
	cfg, err := config.Load("")
	assert.For(ctx, "Load").ThatError(err).Succeeded()
	assert.For(ctx, "level").That(cfg.Log.Level).Equals("debug")
	assert.For(ctx, "pause at").ThatSlice(cfg.Replay.PauseAt).Equals([]uint64{3, 10})
	assert.For(ctx, "bucket").That(cfg.Archive.Bucket).Equals("mem://")
}

func TestFile(t *testing.T) {
	ctx := log.Testing(t)
	path := filepath.Join(t.TempDir(), "vktrace.yaml")
	err := os.WriteFile(path, []byte(`
log:
  format: json
capture:
  output: cube.vktrace
  threshold: 64
replay:
  width: 1024
`), 0644)
	assert.For(ctx, "WriteFile").ThatError(err).Succeeded()
	t.Setenv("VKTRACE_REPLAY_WIDTH", "800")

	cfg, err := config.Load(path)
	assert.For(ctx, "Load").ThatError(err).Succeeded()
	assert.For(ctx, "format").That(cfg.Log.Format).Equals("json")
	assert.For(ctx, "output").That(cfg.Capture.Output).Equals("cube.vktrace")
	assert.For(ctx, "threshold").ThatInteger(cfg.Capture.Threshold).Equals(64)
	assert.For(ctx, "env wins").ThatInteger(cfg.Replay.Width).Equals(800)
	assert.For(ctx, "default height").ThatInteger(cfg.Replay.Height).Equals(480)
}

func TestValidate(t *testing.T) {
	ctx := log.Testing(t)
	t.Setenv("VKTRACE_ARCHIVE_LEVEL", "12")
	t.Setenv("VKTRACE_LOG_FORMAT", "xml")
	_, err := config.Load("")
	assert.For(ctx, "Load").ThatError(err).Failed()
	assert.For(ctx, "level").ThatString(err.Error()).Contains("archive.level 12")
	assert.For(ctx, "format").ThatString(err.Error()).Contains(`log.format "xml"`)
}

func TestUsage(t *testing.T) {
	ctx := log.Testing(t)
	usage, err := config.Usage()
	assert.For(ctx, "Usage").ThatError(err).Succeeded()
	assert.For(ctx, "display").ThatString(usage).Contains("VKTRACE_REPLAY_DISPLAY")
}
