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

// Package replay re-issues the calls of a trace against a live driver.
package replay

import (
	"context"
	"io"
	"slices"

	"github.com/LunarG/VulkanTools-sub015/core/event/task"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/memory"
	"github.com/LunarG/VulkanTools-sub015/trace/packet"
	"github.com/LunarG/VulkanTools-sub015/trace/remap"
	"github.com/pkg/errors"
)

// State is the state of an Engine.
type State int

const (
	Idle State = iota
	Replaying
	Completed
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Replaying:
		return "Replaying"
	case Completed:
		return "Completed"
	case Halted:
		return "Halted"
	}
	return "Unknown"
}

// Source yields the packets of a trace in file order. Next returns io.EOF
// after the last packet. *file.Reader implements Source.
type Source interface {
	Next() (*packet.Packet, error)
}

// EventKind is the kind of an Event.
type EventKind int

const (
	// Progress is sent after each packet is replayed.
	Progress EventKind = iota
	// Divergence is sent for each non-fatal *DivergenceError.
	Divergence
	// Present is sent after each replayed QueuePresent.
	Present
	// Halt is sent when replay halts.
	Halt
)

func (k EventKind) String() string {
	switch k {
	case Progress:
		return "Progress"
	case Divergence:
		return "Divergence"
	case Present:
		return "Present"
	case Halt:
		return "Halt"
	}
	return "Unknown"
}

// Event is a notification sent to Options.Observer.
type Event struct {
	Kind   EventKind
	Index  uint64
	CallID api.CallID
	// Err is set for Divergence and Halt events.
	Err error
	// Frame is the number of presents so far, set for Present events.
	Frame int
}

// Options configure an Engine.
type Options struct {
	// Observer, if not nil, receives the replay events. It is called on the
	// replay goroutine.
	Observer func(Event)
	// PauseAt lists the call indices that the shim is paused before.
	PauseAt []uint64
	// Frames, if not nil, receives the presented image after each present
	// when the shim implements display.Grabber.
	Frames display.FrameSink
	// Width and Height size the windows of surfaces recorded without a
	// size.
	Width, Height int
}

// Summary describes a finished replay.
type Summary struct {
	State       State
	Packets     int
	Divergences int
	Presents    int
	// Interrupted is true if replay was quit or cancelled before the end of
	// the trace.
	Interrupted bool
	// Handles is the number of handles still registered.
	Handles int
	Memory  memory.Stats
}

// Engine replays a single trace. It is not safe for concurrent use.
type Engine struct {
	table api.Table
	shim  display.Shim
	opts  Options

	state  State
	remap  *remap.Table
	ledger *memory.Ledger
	// images holds the swapchain images registered for each virtual
	// swapchain.
	images  map[api.Handle][]api.Handle
	summary Summary
	// last is the index of the last packet replayed, valid once replayed
	// is set.
	last     uint64
	replayed bool
}

// New returns an Engine that issues calls through table and presents
// through shim.
func New(table api.Table, shim display.Shim, opts Options) *Engine {
	return &Engine{
		table:  table,
		shim:   shim,
		opts:   opts,
		remap:  remap.New(),
		ledger: memory.NewLedger(),
		images: map[api.Handle][]api.Handle{},
	}
}

// State returns the current state of the engine.
func (e *Engine) State() State { return e.state }

// Remap returns the table mapping the trace's handles to live handles.
func (e *Engine) Remap() *remap.Table { return e.remap }

// Ledger returns the counters of the memory allocated by the replay.
func (e *Engine) Ledger() memory.Counters { return e.ledger }

// Run replays the packets from src in order until the end of the trace, a
// fatal error, or a quit from the shim. Run may only be called once.
//
// Objects created by the replay are not destroyed when replay stops early.
func (e *Engine) Run(ctx context.Context, src Source) (Summary, error) {
	if e.state != Idle {
		return e.summary, errors.Errorf("Replay engine is %v", e.state)
	}
	e.state = Replaying
	log.I(ctx, "Replay started")

	err := e.loop(ctx, src)

	e.summary.State = e.state
	e.summary.Handles = e.remap.Len()
	e.summary.Memory = e.ledger.Stats()
	log.I(log.V{
		"state":       e.state,
		"packets":     e.summary.Packets,
		"divergences": e.summary.Divergences,
		"presents":    e.summary.Presents,
		"interrupted": e.summary.Interrupted,
	}.Bind(ctx), "Replay finished")
	return e.summary, err
}

func (e *Engine) loop(ctx context.Context, src Source) error {
	for {
		if err := task.StopReason(ctx); err != nil {
			log.I(ctx, "Replay cancelled: %v", err)
			e.state = Completed
			e.summary.Interrupted = true
			return err
		}
		p, err := src.Next()
		switch {
		case errors.Cause(err) == io.EOF:
			e.state = Completed
			return nil
		case err != nil:
			halt := &HaltError{Index: e.following(), Err: err}
			var malformed *packet.MalformedPacketError
			if errors.As(err, &malformed) {
				halt.Index = malformed.Index
			}
			return e.halt(ctx, halt)
		}

		if slices.Contains(e.opts.PauseAt, p.Index) {
			log.I(ctx, "Pausing before %v", p)
			e.shim.Pause()
		}
		if err := e.shim.Gate(ctx); err != nil {
			e.state = Completed
			e.summary.Interrupted = true
			if err == display.ErrQuit {
				log.I(ctx, "Replay quit before %v", p)
				return nil
			}
			return err
		}

		if err := e.replay(ctx, p); err != nil {
			return e.halt(ctx, &HaltError{Index: p.Index, CallID: p.CallID, Err: err})
		}
		e.summary.Packets++
		e.last, e.replayed = p.Index, true
		e.notify(Event{Kind: Progress, Index: p.Index, CallID: p.CallID})
	}
}

// replay issues the call of p. Non-fatal divergences are reported and
// swallowed; any returned error halts replay.
func (e *Engine) replay(ctx context.Context, p *packet.Packet) error {
	r, ok := routines[p.CallID]
	if !ok || p.Call == nil {
		return api.ErrUnknownCall
	}
	ctx = log.V{"index": p.Index, "call": p.CallID}.Bind(ctx)
	err := r(ctx, e, p.Index, p.Call)
	var div *DivergenceError
	if errors.As(err, &div) && !div.Fatal {
		e.summary.Divergences++
		log.W(ctx, "%v", div)
		e.notify(Event{Kind: Divergence, Index: p.Index, CallID: p.CallID, Err: div})
		return nil
	}
	return err
}

// following returns the index expected after the last replayed packet.
func (e *Engine) following() uint64 {
	if !e.replayed {
		return 0
	}
	return e.last + 1
}

func (e *Engine) halt(ctx context.Context, err *HaltError) error {
	e.state = Halted
	log.W(ctx, "%v", err)
	e.notify(Event{Kind: Halt, Index: err.Index, CallID: err.CallID, Err: err})
	return err
}

func (e *Engine) notify(ev Event) {
	if e.opts.Observer != nil {
		e.opts.Observer(ev)
	}
}
