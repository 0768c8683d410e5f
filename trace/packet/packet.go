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

// Package packet encodes and decodes trace packets.
//
// A packet is a fixed size little-endian header followed by the payload
// written by the call record:
//
//	struct PacketHeader {
//	    uint64_t index;   // global call index
//	    uint32_t thread;  // capturing thread
//	    uint32_t call;    // api.CallID
//	    uint32_t size;    // payload bytes that follow
//	    uint64_t entry;   // ticks at call entry
//	    uint64_t exit;    // ticks at call exit
//	};
package packet

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/LunarG/VulkanTools-sub015/core/data/endian"
	"github.com/LunarG/VulkanTools-sub015/core/os/device"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/pkg/errors"
)

// HeaderSize is the size in bytes of an encoded packet header.
const HeaderSize = 36

// Packets are always stored little-endian, whatever the capturing machine.
const order = device.LittleEndian

// Packet is one recorded call.
type Packet struct {
	Index   uint64
	Thread  uint32
	CallID  api.CallID
	Size    uint32
	Entry   uint64
	Exit    uint64
	Payload []byte
	Call    api.Call
}

func (p *Packet) String() string {
	return fmt.Sprintf("#%d [t%d] %v (%d bytes)", p.Index, p.Thread, p.CallID, p.Size)
}

// Encode builds the packet recording call.
func Encode(index uint64, thread uint32, call api.Call, entry, exit uint64) (*Packet, error) {
	buf := &bytes.Buffer{}
	w := endian.Writer(buf, order)
	call.Encode(w)
	if err := w.Error(); err != nil {
		return nil, &SerializationUnsupportedError{CallID: call.CallID(), Cause: err}
	}
	if uint64(buf.Len()) > math.MaxUint32 {
		return nil, &SerializationUnsupportedError{
			CallID: call.CallID(),
			Cause:  errors.Errorf("payload of %d bytes exceeds the packet size limit", buf.Len()),
		}
	}
	return &Packet{
		Index:   index,
		Thread:  thread,
		CallID:  call.CallID(),
		Size:    uint32(buf.Len()),
		Entry:   entry,
		Exit:    exit,
		Payload: buf.Bytes(),
		Call:    call,
	}, nil
}

// WriteTo writes the encoded packet to w.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	var hdr [HeaderSize]byte
	p.putHeader(hdr[:])
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(p.Payload)
	return int64(n + m), err
}

// Bytes returns the encoded packet.
func (p *Packet) Bytes() []byte {
	out := make([]byte, HeaderSize+len(p.Payload))
	p.putHeader(out)
	copy(out[HeaderSize:], p.Payload)
	return out
}

func (p *Packet) putHeader(b []byte) {
	w := endian.Writer(bytes.NewBuffer(b[:0]), order)
	w.Uint64(p.Index)
	w.Uint32(p.Thread)
	w.Uint32(uint32(p.CallID))
	w.Uint32(p.Size)
	w.Uint64(p.Entry)
	w.Uint64(p.Exit)
}

func readHeader(b []byte) *Packet {
	r := endian.Reader(bytes.NewReader(b), order)
	return &Packet{
		Index:  r.Uint64(),
		Thread: r.Uint32(),
		CallID: api.CallID(r.Uint32()),
		Size:   r.Uint32(),
		Entry:  r.Uint64(),
		Exit:   r.Uint64(),
	}
}

// Decode decodes a single packet held entirely in b.
func Decode(b []byte) (*Packet, error) {
	if len(b) < HeaderSize {
		return nil, &MalformedPacketError{
			Offset: int64(len(b)),
			Reason: errors.Errorf("truncated header: %d of %d bytes", len(b), HeaderSize),
		}
	}
	p := readHeader(b)
	if got := len(b) - HeaderSize; uint64(got) != uint64(p.Size) {
		return nil, &MalformedPacketError{
			Index:  p.Index,
			Offset: HeaderSize,
			Reason: errors.Errorf("size field %d disagrees with %d payload bytes", p.Size, got),
		}
	}
	p.Payload = b[HeaderSize:]
	if err := p.decodeCall(); err != nil {
		return nil, err
	}
	return p, nil
}

// Read reads and decodes the next packet from r. It returns io.EOF if r is
// exhausted exactly on a packet boundary. The payload is read as it arrives,
// so a corrupt size field cannot cause a large allocation up front.
func Read(r io.Reader) (*Packet, error) {
	var hdr [HeaderSize]byte
	switch n, err := io.ReadFull(r, hdr[:]); err {
	case nil:
	case io.EOF:
		return nil, io.EOF
	case io.ErrUnexpectedEOF:
		return nil, &MalformedPacketError{
			Offset: int64(n),
			Reason: errors.Errorf("truncated header: %d of %d bytes", n, HeaderSize),
		}
	default:
		return nil, errors.Wrap(err, "Reading packet header")
	}
	p := readHeader(hdr[:])
	payload := &bytes.Buffer{}
	const chunk = 1 << 20
	if p.Size < chunk {
		payload.Grow(int(p.Size))
	}
	n, err := io.CopyN(payload, r, int64(p.Size))
	switch {
	case err == io.EOF:
		return nil, &MalformedPacketError{
			Index:  p.Index,
			Offset: HeaderSize + n,
			Reason: errors.Errorf("size field %d exceeds the %d bytes remaining", p.Size, n),
		}
	case err != nil:
		return nil, errors.Wrapf(err, "Reading payload of packet %d", p.Index)
	}
	p.Payload = payload.Bytes()
	if err := p.decodeCall(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Packet) decodeCall() error {
	call, err := api.New(p.CallID)
	if err != nil {
		return &MalformedPacketError{
			Index:  p.Index,
			Offset: 12,
			Reason: errors.Wrapf(err, "call %d", uint32(p.CallID)),
		}
	}
	br := bytes.NewReader(p.Payload)
	r := endian.Reader(br, order)
	call.Decode(r)
	if err := r.Error(); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &MalformedPacketError{
			Index:  p.Index,
			Offset: HeaderSize + int64(len(p.Payload)-br.Len()),
			Reason: errors.Wrapf(err, "decoding %v", p.CallID),
		}
	}
	if br.Len() != 0 {
		return &MalformedPacketError{
			Index:  p.Index,
			Offset: HeaderSize + int64(len(p.Payload)-br.Len()),
			Reason: errors.Errorf("%d payload bytes not consumed by %v", br.Len(), p.CallID),
		}
	}
	p.Call = call
	return nil
}
