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

// Package file reads and writes trace files.
package file

import (
	"bytes"
	"io"
	"time"

	"github.com/LunarG/VulkanTools-sub015/core/data/endian"
	"github.com/LunarG/VulkanTools-sub015/core/fault"
	"github.com/LunarG/VulkanTools-sub015/core/os/device"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

var magic = [4]byte{'V', 'K', 'T', 'R'}

const (
	// Version is the trace format version written by this package.
	Version = 1

	endianTag        = 0x01020304
	maxMetadataBytes = 1 << 20
)

const (
	ErrIncorrectMagic     = fault.Const("Incorrect trace file magic")
	ErrUnsupportedVersion = fault.Const("Unsupported trace format version")
	ErrBadEndianTag       = fault.Const("Unrecognised endianness tag")
)

// The trace file header is defined as:
//
// struct FileHeader {
//     uint8_t  magic[4];        // 'V', 'K', 'T', 'R'
//     uint32_t endianTag;       // 0x01020304 in the byte order of the header
//     uint32_t formatVersion;
//     uint32_t apiVersion;      // as packed by VK_MAKE_API_VERSION
//     uint32_t metadataSize;
//     uint8_t  metadata[metadataSize]; // protobuf wire format Metadata
// };
//
// Packets follow immediately and are always little-endian.

// Header is the decoded trace file header.
type Header struct {
	Version    uint32
	APIVersion uint32
	Endian     device.Endian
	Metadata   Metadata
}

// Metadata describes the capture session.
type Metadata struct {
	SessionID    uuid.UUID
	OS           string
	Architecture string
	Application  string
	Start        time.Time
	Driver       string
}

const (
	fieldSessionID protowire.Number = iota + 1
	fieldOS
	fieldArchitecture
	fieldApplication
	fieldStart
	fieldDriver
)

// NewMetadata returns the metadata for a capture of application starting now
// on the host machine.
func NewMetadata(application, driver string) Metadata {
	host := device.Host()
	return Metadata{
		SessionID:    uuid.New(),
		OS:           host.OS,
		Architecture: host.Architecture.String(),
		Application:  application,
		Start:        time.Now(),
		Driver:       driver,
	}
}

func (m Metadata) marshal() []byte {
	var b []byte
	putString := func(n protowire.Number, s string) {
		if s == "" {
			return
		}
		b = protowire.AppendTag(b, n, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	if m.SessionID != uuid.Nil {
		putString(fieldSessionID, m.SessionID.String())
	}
	putString(fieldOS, m.OS)
	putString(fieldArchitecture, m.Architecture)
	putString(fieldApplication, m.Application)
	if !m.Start.IsZero() {
		b = protowire.AppendTag(b, fieldStart, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Start.UnixNano()))
	}
	putString(fieldDriver, m.Driver)
	return b
}

func (m *Metadata) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case typ == protowire.BytesType && num != fieldStart:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			switch num {
			case fieldSessionID:
				id, err := uuid.Parse(s)
				if err != nil {
					return errors.Wrap(err, "Session id")
				}
				m.SessionID = id
			case fieldOS:
				m.OS = s
			case fieldArchitecture:
				m.Architecture = s
			case fieldApplication:
				m.Application = s
			case fieldDriver:
				m.Driver = s
			}
		case typ == protowire.VarintType && num == fieldStart:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			m.Start = time.Unix(0, int64(v))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func writeHeader(out io.Writer, h Header) error {
	metadata := h.Metadata.marshal()
	w := endian.Writer(out, device.LittleEndian)
	for _, m := range magic {
		w.Uint8(m)
	}
	w.Uint32(endianTag)
	w.Uint32(Version)
	w.Uint32(h.APIVersion)
	w.Uint32(uint32(len(metadata)))
	w.Data(metadata)
	return w.Error()
}

// readHeader reads the header from in, returning it and its size in bytes.
func readHeader(in io.Reader) (Header, int64, error) {
	h := Header{}
	var fixed [20]byte
	if _, err := io.ReadFull(in, fixed[:]); err != nil {
		return h, 0, errors.Wrap(err, "Reading trace header")
	}
	if !bytes.Equal(fixed[:4], magic[:]) {
		return h, 0, ErrIncorrectMagic
	}
	r := endian.Reader(bytes.NewReader(fixed[4:]), device.LittleEndian)
	switch tag := r.Uint32(); tag {
	case endianTag:
		h.Endian = device.LittleEndian
	case 0x04030201:
		h.Endian = device.BigEndian
		r = endian.Reader(bytes.NewReader(fixed[8:]), device.BigEndian)
	default:
		return h, 0, errors.Wrapf(ErrBadEndianTag, "0x%08x", tag)
	}
	h.Version = r.Uint32()
	h.APIVersion = r.Uint32()
	size := r.Uint32()
	if h.Version != Version {
		return h, 0, errors.Wrapf(ErrUnsupportedVersion, "version %d", h.Version)
	}
	if size > maxMetadataBytes {
		return h, 0, errors.Errorf("Metadata of %d bytes exceeds the %d byte limit", size, maxMetadataBytes)
	}
	metadata := make([]byte, size)
	if _, err := io.ReadFull(in, metadata); err != nil {
		return h, 0, errors.Wrap(err, "Reading trace metadata")
	}
	if err := h.Metadata.unmarshal(metadata); err != nil {
		return h, 0, errors.Wrap(err, "Decoding trace metadata")
	}
	return h, int64(len(fixed)) + int64(size), nil
}
