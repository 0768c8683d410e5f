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

// Package remap translates the object handles recorded in a trace to the
// handles the replaying driver assigns to the same objects.
package remap

import (
	"fmt"
	"sort"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
)

// HandleNotFoundError is returned when a recorded handle has no live
// counterpart.
type HandleNotFoundError struct {
	Class  api.HandleClass
	Handle api.Handle
}

func (e *HandleNotFoundError) Error() string {
	return fmt.Sprintf("%v %v was never created or has been destroyed", e.Class, e.Handle)
}

// Table holds one virtual to real mapping per handle class. It belongs to a
// single replay and is not safe for concurrent use.
type Table struct {
	classes map[api.HandleClass]map[api.Handle]api.Handle
}

// New returns an empty table.
func New() *Table {
	return &Table{classes: map[api.HandleClass]map[api.Handle]api.Handle{}}
}

// Register maps virtual to real, replacing any existing mapping for virtual.
// Null virtual handles are never stored.
func (t *Table) Register(class api.HandleClass, virtual, real api.Handle) {
	if virtual == api.NullHandle {
		return
	}
	m, ok := t.classes[class]
	if !ok {
		m = map[api.Handle]api.Handle{}
		t.classes[class] = m
	}
	m[virtual] = real
}

// Lookup returns the real handle registered for virtual. The null handle
// always maps to the null handle.
func (t *Table) Lookup(class api.HandleClass, virtual api.Handle) (api.Handle, error) {
	if virtual == api.NullHandle {
		return api.NullHandle, nil
	}
	if real, ok := t.classes[class][virtual]; ok {
		return real, nil
	}
	return api.NullHandle, &HandleNotFoundError{class, virtual}
}

// Unregister removes the mapping for virtual. Unregistering the null handle
// does nothing.
func (t *Table) Unregister(class api.HandleClass, virtual api.Handle) error {
	if virtual == api.NullHandle {
		return nil
	}
	m := t.classes[class]
	if _, ok := m[virtual]; !ok {
		return &HandleNotFoundError{class, virtual}
	}
	delete(m, virtual)
	return nil
}

// Len returns the number of registered handles across all classes.
func (t *Table) Len() int {
	n := 0
	for _, m := range t.classes {
		n += len(m)
	}
	return n
}

// Keys returns the registered virtual handles of each class in ascending
// order. Classes without handles are omitted.
func (t *Table) Keys() map[api.HandleClass][]api.Handle {
	out := map[api.HandleClass][]api.Handle{}
	for class, m := range t.classes {
		if len(m) == 0 {
			continue
		}
		keys := make([]api.Handle, 0, len(m))
		for v := range m {
			keys = append(keys, v)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		out[class] = keys
	}
	return out
}

// Reset removes every mapping.
func (t *Table) Reset() {
	t.classes = map[api.HandleClass]map[api.Handle]api.Handle{}
}
