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

// Package memory tracks the device memory allocations made through a trace
// session.
package memory

import (
	"sync"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// Stats are the aggregate counters of a Ledger.
type Stats struct {
	// Live is the number of allocations not yet freed.
	Live int
	// Bytes is the total size of the live allocations.
	Bytes uint64
	// Allocations and Frees count every insert and every successful remove.
	Allocations uint64
	Frees       uint64
	// PeakBytes is the largest value Bytes has held.
	PeakBytes uint64
}

// Counters is the read-only view of a Ledger given to statistics and
// threshold checks.
type Counters interface {
	Stats() Stats
}

// Ledger maps memory object handles to their allocation sizes. It is safe
// for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	entries map[api.Handle]uint64
	stats   Stats
}

var _ Counters = &Ledger{}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: map[api.Handle]uint64{}}
}

// Insert records the allocation of size bytes as memory. An existing entry
// for the same handle is replaced.
func (l *Ledger) Insert(memory api.Handle, size uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.entries[memory]; ok {
		l.stats.Bytes -= old
	} else {
		l.stats.Live++
	}
	l.entries[memory] = size
	l.stats.Bytes += size
	l.stats.Allocations++
	if l.stats.Bytes > l.stats.PeakBytes {
		l.stats.PeakBytes = l.stats.Bytes
	}
}

// Remove forgets memory, returning the size it was allocated with. Removing
// an absent handle does nothing and returns false.
func (l *Ledger) Remove(memory api.Handle) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size, ok := l.entries[memory]
	if !ok {
		return 0, false
	}
	delete(l.entries, memory)
	l.stats.Live--
	l.stats.Bytes -= size
	l.stats.Frees++
	return size, true
}

// Size returns the allocation size of memory.
func (l *Ledger) Size(memory api.Handle) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size, ok := l.entries[memory]
	return size, ok
}

// Stats returns a snapshot of the aggregate counters.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
