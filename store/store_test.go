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

package store_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LunarG/VulkanTools-sub015/capture"
	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/driver/null"
	"github.com/LunarG/VulkanTools-sub015/store"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"gocloud.dev/blob/memblob"
)

func writeTrace(ctx context.Context, t *testing.T) (string, file.Header) {
	path := filepath.Join(t.TempDir(), "cube.vktrace")
	h := file.Header{APIVersion: api.Version, Metadata: file.NewMetadata("cube", "null")}
	w, err := file.Create(ctx, path, h)
	assert.For(ctx, "Create").ThatError(err).Succeeded()
	s := capture.NewSession(ctx, w, capture.Options{})
	table := api.Chain(api.TableOf(null.New(null.Options{})), capture.Layer(s))
	instance, _ := table.Instance.CreateInstance(ctx, &api.InstanceCreateInfo{ApplicationName: "cube"})
	for i := 0; i < 100; i++ {
		table.Instance.EnumeratePhysicalDevices(ctx, instance, 1)
	}
	table.Instance.DestroyInstance(ctx, instance)
	assert.For(ctx, "Close").ThatError(s.Close(ctx)).Succeeded()
	return path, h
}

func TestPushPull(t *testing.T) {
	ctx := log.Testing(t)
	path, h := writeTrace(ctx, t)
	a, err := store.New(memblob.OpenBucket(nil), store.Options{Level: 9})
	assert.For(ctx, "New").ThatError(err).Succeeded()
	defer a.Close()

	key, err := a.Push(ctx, path)
	assert.For(ctx, "Push").ThatError(err).Succeeded()
	assert.For(ctx, "key").That(key).Equals(store.Key(h))

	entries, err := a.List(ctx)
	assert.For(ctx, "List").ThatError(err).Succeeded()
	if assert.For(ctx, "entries").ThatSlice(entries).IsLength(1) {
		assert.For(ctx, "application").That(entries[0].Application).Equals("cube")
		assert.For(ctx, "driver").That(entries[0].Driver).Equals("null")
		raw, _ := os.Stat(path)
		assert.For(ctx, "compressed").ThatBoolean(entries[0].Size < raw.Size()).IsTrue()
	}

	got := &bytes.Buffer{}
	assert.For(ctx, "Pull").ThatError(a.Pull(ctx, key, got)).Succeeded()
	expect, _ := os.ReadFile(path)
	assert.For(ctx, "contents").ThatSlice(got.Bytes()).Equals(expect)

	out := filepath.Join(t.TempDir(), "pulled.vktrace")
	assert.For(ctx, "PullFile").ThatError(a.PullFile(ctx, key, out)).Succeeded()
	pulled, _ := os.ReadFile(out)
	assert.For(ctx, "file contents").ThatSlice(pulled).Equals(expect)
}

func TestReader(t *testing.T) {
	ctx := log.Testing(t)
	path, h := writeTrace(ctx, t)
	a, _ := store.New(memblob.OpenBucket(nil), store.Options{})
	key, err := a.Push(ctx, path)
	assert.For(ctx, "Push").ThatError(err).Succeeded()

	r, err := a.Reader(ctx, key)
	assert.For(ctx, "Reader").ThatError(err).Succeeded()
	defer r.Close()
	assert.For(ctx, "session").That(r.Header().Metadata.SessionID).Equals(h.Metadata.SessionID)
	n := 0
	for _, err := range r.Packets() {
		if !assert.For(ctx, "packet").ThatError(err).Succeeded() {
			break
		}
		n++
	}
	assert.For(ctx, "packets").ThatInteger(n).Equals(102)
}

func TestNotFound(t *testing.T) {
	ctx := log.Testing(t)
	a, _ := store.New(memblob.OpenBucket(nil), store.Options{})
	err := a.Pull(ctx, "traces/missing.vktrace.lz4", &bytes.Buffer{})
	assert.For(ctx, "Pull").ThatError(err).Equals(store.ErrNotFound)
	assert.For(ctx, "Delete").ThatError(a.Delete(ctx, "traces/missing.vktrace.lz4")).Equals(store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := log.Testing(t)
	path, _ := writeTrace(ctx, t)
	a, _ := store.New(memblob.OpenBucket(nil), store.Options{})
	key, _ := a.Push(ctx, path)
	assert.For(ctx, "Delete").ThatError(a.Delete(ctx, key)).Succeeded()
	entries, _ := a.List(ctx)
	assert.For(ctx, "entries").ThatSlice(entries).IsEmpty()
}

func TestOpenURL(t *testing.T) {
	ctx := log.Testing(t)
	dir := t.TempDir()
	a, err := store.Open(ctx, "file://"+filepath.ToSlash(dir), store.Options{Level: 1})
	assert.For(ctx, "Open").ThatError(err).Succeeded()
	defer a.Close()
	path, _ := writeTrace(ctx, t)
	key, err := a.Push(ctx, path)
	assert.For(ctx, "Push").ThatError(err).Succeeded()
	assert.For(ctx, "key").ThatString(key).HasPrefix("traces/")
	assert.For(ctx, "suffix").ThatBoolean(strings.HasSuffix(key, ".vktrace.lz4")).IsTrue()
}

func TestLevelRange(t *testing.T) {
	ctx := log.Testing(t)
	_, err := store.New(memblob.OpenBucket(nil), store.Options{Level: 10})
	assert.For(ctx, "level").ThatError(err).Failed()
}
