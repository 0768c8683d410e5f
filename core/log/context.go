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

import "context"

type keyTy string

const (
	handlerKey keyTy = "log.handlerKey"
	filterKey  keyTy = "log.filterKey"
	tagKey     keyTy = "log.tagKey"
	valuesKey  keyTy = "log.valuesKey"
)

// Filter is the filter of log messages.
type Filter interface {
	// ShowSeverity returns true if the message of severity s should be shown.
	ShowSeverity(s Severity) bool
}

// SeverityFilter implements the Filter interface which filters out any messages
// below the severity value.
type SeverityFilter Severity

// ShowSeverity returns true if the message of severity s should be shown.
func (f SeverityFilter) ShowSeverity(s Severity) bool { return Severity(f) <= s }

// PutHandler returns a new context with the Handler assigned to h.
func PutHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey, h)
}

// GetHandler returns the Handler assigned to ctx, or the process-wide default
// handler if none has been assigned.
func GetHandler(ctx context.Context) Handler {
	if out, ok := ctx.Value(handlerKey).(Handler); ok {
		return out
	}
	return defaultHandler()
}

// PutFilter returns a new context with the Filter assigned to f.
func PutFilter(ctx context.Context, f Filter) context.Context {
	return context.WithValue(ctx, filterKey, f)
}

// GetFilter returns the Filter assigned to ctx.
func GetFilter(ctx context.Context) Filter {
	out, _ := ctx.Value(filterKey).(Filter)
	return out
}

// PutTag returns a new context with the tag assigned to t.
func PutTag(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, tagKey, t)
}

// GetTag returns the tag assigned to ctx.
func GetTag(ctx context.Context) string {
	out, _ := ctx.Value(tagKey).(string)
	return out
}

// V is a map of key-value pairs that can be bound to a context.
type V map[string]interface{}

type values struct {
	v      V
	parent *values
}

// Bind returns a new context holding the values of v along with any values
// already bound to ctx.
func (v V) Bind(ctx context.Context) context.Context {
	return context.WithValue(ctx, valuesKey, &values{v, getValues(ctx)})
}

func getValues(ctx context.Context) *values {
	out, _ := ctx.Value(valuesKey).(*values)
	return out
}
