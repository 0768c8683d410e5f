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

package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler is the handler of log messages.
type Handler interface {
	Handle(*Message)
	Close()
}

type handler struct {
	handle func(*Message)
	close  func()
}

func (h handler) Handle(m *Message) { h.handle(m) }
func (h handler) Close() {
	if h.close != nil {
		h.close()
	}
}

// NewHandler returns a Handler that calls handle for each message and close
// when the handler is closed.
func NewHandler(handle func(*Message), close func()) Handler {
	return handler{handle, close}
}

// Zerolog returns a Handler that forwards each message to l, attaching the
// message tag and values as fields.
func Zerolog(l zerolog.Logger) Handler {
	return handler{
		handle: func(m *Message) {
			e := l.WithLevel(m.Severity.zerolog()).Time(zerolog.TimestampFieldName, m.Time)
			if m.Tag != "" {
				e = e.Str("tag", m.Tag)
			}
			for _, v := range m.Values {
				e = e.Interface(v.Name, v.Value)
			}
			e.Msg(m.Text)
		},
	}
}

// Console returns a Handler that writes human readable lines to w.
func Console(w io.Writer) Handler {
	return Zerolog(zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}))
}

// JSON returns a Handler that writes one JSON object per message to w.
func JSON(w io.Writer) Handler {
	return Zerolog(zerolog.New(w))
}

var (
	stdOnce sync.Once
	std     Handler
)

func defaultHandler() Handler {
	stdOnce.Do(func() { std = Console(os.Stderr) })
	return std
}
