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

// Package capture records the calls made through the dispatch chain into a
// trace.
package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/memory"
	"github.com/LunarG/VulkanTools-sub015/trace/packet"
)

// Sink receives the packets of a capture. Write and Skip may be called
// concurrently and out of index order. *file.Writer implements Sink.
type Sink interface {
	Write(p *packet.Packet) error
	// Skip reports that no packet will be written for index.
	Skip(index uint64) error
}

// Options configure a Session.
type Options struct {
	// OnDiagnostic receives capture-time failures. The default logs them as
	// warnings.
	OnDiagnostic func(ctx context.Context, err error)
}

// Stats are the counters of a Session.
type Stats struct {
	Written uint64
	Omitted uint64
	Memory  memory.Stats
}

// Session owns the state shared by every thread of one capture: the call
// index counter, the allocation ledger and the sink.
type Session struct {
	sink         Sink
	ledger       *memory.Ledger
	onDiagnostic func(context.Context, error)
	start        time.Time

	mu   sync.Mutex
	next uint64

	written atomic.Uint64
	omitted atomic.Uint64
}

// NewSession starts a capture session writing to sink.
func NewSession(ctx context.Context, sink Sink, opts Options) *Session {
	s := &Session{
		sink:         sink,
		ledger:       memory.NewLedger(),
		onDiagnostic: opts.OnDiagnostic,
		start:        time.Now(),
	}
	if s.onDiagnostic == nil {
		s.onDiagnostic = func(ctx context.Context, err error) {
			log.W(ctx, "Capture: %v", err)
		}
	}
	log.D(ctx, "Capture session started")
	return s
}

// Ledger returns the read-only allocation counters of the session.
func (s *Session) Ledger() memory.Counters { return s.ledger }

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Written: s.written.Load(),
		Omitted: s.omitted.Load(),
		Memory:  s.ledger.Stats(),
	}
}

// Close ends the session, closing the sink if it can be closed.
func (s *Session) Close(ctx context.Context) error {
	stats := s.Stats()
	log.I(log.V{
		"written":      stats.Written,
		"omitted":      stats.Omitted,
		"live_objects": stats.Memory.Live,
		"live_bytes":   stats.Memory.Bytes,
	}.Bind(ctx), "Capture session ended")
	if c, ok := s.sink.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}

func (s *Session) ticks() uint64 { return uint64(time.Since(s.start)) }

// begin assigns the next call index. It must be called immediately before
// the call is forwarded.
func (s *Session) begin() (index, entry uint64) {
	s.mu.Lock()
	index = s.next
	s.next++
	s.mu.Unlock()
	return index, s.ticks()
}

// record encodes call and hands it to the sink. Failures are diagnosed and
// the index skipped; they are never returned to the caller.
func (s *Session) record(ctx context.Context, index, entry uint64, call api.Call) {
	exit := s.ticks()
	p, err := packet.Encode(index, threadOf(ctx), call, entry, exit)
	if err != nil {
		s.omitted.Add(1)
		s.onDiagnostic(log.V{"index": index}.Bind(ctx), err)
		if err := s.sink.Skip(index); err != nil {
			s.onDiagnostic(ctx, err)
		}
		return
	}
	if err := s.sink.Write(p); err != nil {
		s.omitted.Add(1)
		s.onDiagnostic(log.V{"index": index}.Bind(ctx), err)
		return
	}
	s.written.Add(1)
}

type threadKey struct{}

// WithThread returns a context whose calls are recorded as made by thread.
// Calls made without a thread are recorded as thread 0.
func WithThread(ctx context.Context, thread uint32) context.Context {
	return context.WithValue(ctx, threadKey{}, thread)
}

func threadOf(ctx context.Context) uint32 {
	t, _ := ctx.Value(threadKey{}).(uint32)
	return t
}
