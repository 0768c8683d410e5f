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

package file

import (
	"testing"
	"time"

	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestMetadataSkipsUnknownFields(t *testing.T) {
	ctx := log.Testing(t)
	m := Metadata{
		SessionID:   uuid.MustParse("2b4ad0a4-7f37-4c3e-a0d4-4c8a2b1e9e55"),
		Application: "cube",
		Start:       time.Unix(0, 1700000000000000000),
	}
	b := m.marshal()
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 43, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 7)

	got := Metadata{}
	assert.For(ctx, "unmarshal").ThatError(got.unmarshal(b)).Succeeded()
	assert.For(ctx, "session").That(got.SessionID).Equals(m.SessionID)
	assert.For(ctx, "application").That(got.Application).Equals("cube")
	assert.For(ctx, "start").ThatBoolean(got.Start.Equal(m.Start)).IsTrue()

	assert.For(ctx, "truncated").ThatError(got.unmarshal(b[:len(b)-3])).Failed()
}
