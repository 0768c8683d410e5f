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
	"bufio"
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/packet"
	"github.com/pkg/errors"
)

// Writer writes packets to a trace in global call index order, whatever order
// they are submitted in. Packets that arrive ahead of a missing index are held
// until the gap is filled by Write or Skip. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	out     *bufio.Writer
	closer  io.Closer
	next    uint64
	pending map[uint64]*packet.Packet
	skipped map[uint64]struct{}
	written int
	err     error
}

// NewWriter writes the header h to out and returns a Writer for the packets
// that follow. The first packet expected is index 0.
func NewWriter(out io.Writer, h Header) (*Writer, error) {
	w := &Writer{
		out:     bufio.NewWriter(out),
		pending: map[uint64]*packet.Packet{},
		skipped: map[uint64]struct{}{},
	}
	if c, ok := out.(io.Closer); ok {
		w.closer = c
	}
	if err := writeHeader(w.out, h); err != nil {
		return nil, errors.Wrap(err, "Writing trace header")
	}
	return w, nil
}

// Create creates the trace file at path.
func Create(ctx context.Context, path string, h Header) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "Creating trace file")
	}
	w, err := NewWriter(f, h)
	if err != nil {
		f.Close()
		return nil, err
	}
	log.D(ctx, "Writing trace %v", path)
	return w, nil
}

// Write adds p to the trace.
func (w *Writer) Write(p *packet.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, dup := w.pending[p.Index]; dup || p.Index < w.next {
		return errors.Errorf("Packet index %d written twice", p.Index)
	}
	w.pending[p.Index] = p
	return w.drain()
}

// Skip records that no packet will be written for index.
func (w *Writer) Skip(index uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if index >= w.next {
		w.skipped[index] = struct{}{}
	}
	return w.drain()
}

// Pending returns the number of packets held waiting for an earlier index.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Written returns the number of packets written to the output.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *Writer) drain() error {
	for {
		if p, ok := w.pending[w.next]; ok {
			delete(w.pending, w.next)
			if _, err := p.WriteTo(w.out); err != nil {
				w.err = errors.Wrapf(err, "Writing packet %d", p.Index)
				return w.err
			}
			w.written++
		} else if _, ok := w.skipped[w.next]; ok {
			delete(w.skipped, w.next)
		} else {
			return nil
		}
		w.next++
	}
}

// Close writes any packets still held back, in index order, then flushes and
// closes the output. Gaps left by indices that were neither written nor
// skipped are logged.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) > 0 && w.err == nil {
		log.W(ctx, "%d packets still waiting for index %d at close", len(w.pending), w.next)
		indices := make([]uint64, 0, len(w.pending))
		for i := range w.pending {
			indices = append(indices, i)
		}
		sort.Slice(indices, func(a, b int) bool { return indices[a] < indices[b] })
		for _, i := range indices {
			if _, err := w.pending[i].WriteTo(w.out); err != nil {
				w.err = errors.Wrapf(err, "Writing packet %d", i)
				break
			}
			w.written++
		}
		w.pending = map[uint64]*packet.Packet{}
	}
	err := w.err
	if ferr := w.out.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "Flushing trace")
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "Closing trace")
		}
	}
	if w.err == nil {
		w.err = errors.New("Trace writer closed")
	}
	return err
}
