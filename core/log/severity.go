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
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Severity defines the severity of a logging message.
type Severity int32

const (
	// Verbose indicates extremely verbose level messages.
	Verbose Severity = iota
	// Debug indicates debug-level messages.
	Debug
	// Info indicates minor informational messages that should generally be ignored.
	Info
	// Warning indicates issues that might affect performance or compatibility, but could be ignored.
	Warning
	// Error indicates non terminal failure conditions that may have an effect on results.
	Error
	// Fatal indicates a terminal error.
	Fatal
)

var severityNames = map[Severity]string{
	Verbose: "verbose",
	Debug:   "debug",
	Info:    "info",
	Warning: "warning",
	Error:   "error",
	Fatal:   "fatal",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return fmt.Sprintf("severity(%d)", int32(s))
}

// Short returns the severity string with a single character.
func (s Severity) Short() string {
	return strings.ToUpper(s.String()[:1])
}

// ParseSeverity returns the Severity with the given name.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range severityNames {
		if n == name || (len(name) == 1 && n[:1] == name) {
			return s, nil
		}
	}
	return Info, fmt.Errorf("Unknown log severity '%s'", name)
}

func (s Severity) zerolog() zerolog.Level {
	switch s {
	case Verbose:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}
