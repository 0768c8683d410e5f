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

// Package device describes the machine a trace was captured or replayed on.
package device

import "fmt"

// Endian is the byte order of a memory layout or stream.
type Endian int32

const (
	UnknownEndian Endian = iota
	LittleEndian
	BigEndian
)

func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "LittleEndian"
	case BigEndian:
		return "BigEndian"
	default:
		return "UnknownEndian"
	}
}

// Architecture is the processor family of a device.
type Architecture int32

const (
	UnknownArchitecture Architecture = iota
	ARMv7a
	ARMv8a
	X86
	X86_64
	MIPS
	MIPS64
	RISCV64
)

var architectureNames = map[Architecture]string{
	UnknownArchitecture: "unknown",
	ARMv7a:              "ARMv7a",
	ARMv8a:              "ARMv8a",
	X86:                 "X86",
	X86_64:              "X86_64",
	MIPS:                "MIPS",
	MIPS64:              "MIPS64",
	RISCV64:             "RISCV64",
}

func (a Architecture) String() string {
	if n, ok := architectureNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Architecture(%d)", int32(a))
}

// Bitness returns the natural bit width of the architecture.
func (a Architecture) Bitness() int {
	switch a {
	case ARMv7a, X86, MIPS:
		return 32
	case ARMv8a, X86_64, MIPS64, RISCV64:
		return 64
	default:
		return 0
	}
}

var architectureByName = map[string]Architecture{
	// possible values of runtime.GOARCH
	"386":     X86,
	"amd64":   X86_64,
	"arm":     ARMv7a,
	"arm64":   ARMv8a,
	"mips":    MIPS,
	"mipsle":  MIPS,
	"mips64":  MIPS64,
	"riscv64": RISCV64,
}

// ArchitectureByName returns the Architecture for the supplied name, which
// may be a runtime.GOARCH value or the canonical String() form.
// If the architecture name is not known, it returns UnknownArchitecture.
func ArchitectureByName(name string) Architecture {
	if arch, ok := architectureByName[name]; ok {
		return arch
	}
	for arch, n := range architectureNames {
		if n == name {
			return arch
		}
	}
	return UnknownArchitecture
}
