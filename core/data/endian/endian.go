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

// Package endian implements binary.Reader and binary.Writer for streams of a
// fixed byte order.
package endian

import (
	eb "encoding/binary"
	"io"
	"math"

	"github.com/LunarG/VulkanTools-sub015/core/data/binary"
	"github.com/LunarG/VulkanTools-sub015/core/os/device"
)

func byteOrder(endian device.Endian) eb.ByteOrder {
	switch endian {
	case device.BigEndian:
		return eb.BigEndian
	default:
		return eb.LittleEndian
	}
}

// Reader creates a binary.Reader that reads from the provided io.Reader, with
// the specified byte order.
func Reader(r io.Reader, endian device.Endian) binary.Reader {
	return &reader{reader: r, byteOrder: byteOrder(endian)}
}

// Writer creates a binary.Writer that writes to the supplied stream, with the
// specified byte order.
func Writer(w io.Writer, endian device.Endian) binary.Writer {
	return &writer{writer: w, byteOrder: byteOrder(endian)}
}

type reader struct {
	reader    io.Reader
	tmp       [8]byte
	byteOrder eb.ByteOrder
	err       error
}

type writer struct {
	writer    io.Writer
	tmp       [8]byte
	byteOrder eb.ByteOrder
	err       error
}

func (r *reader) Read(p []byte) (n int, err error) {
	return r.reader.Read(p)
}

// Len returns the number of unread bytes if the underlying reader reports it,
// otherwise the maximum int.
func (r *reader) Len() int {
	if l, ok := r.reader.(interface{ Len() int }); ok {
		return l.Len()
	}
	return math.MaxInt
}

func (r *reader) read(n int) []byte {
	if r.err != nil {
		for i := range r.tmp {
			r.tmp[i] = 0
		}
		return r.tmp[:n]
	}
	if _, err := io.ReadFull(r.reader, r.tmp[:n]); err != nil {
		r.err = err
	}
	return r.tmp[:n]
}

func (w *writer) write(n int) {
	w.Data(w.tmp[:n])
}

func (r *reader) Data(p []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.reader, p)
}

func (w *writer) Data(data []byte) {
	if w.err != nil {
		return
	}
	n, err := w.writer.Write(data)
	if err != nil {
		w.err = err
	} else if n != len(data) {
		w.err = io.ErrShortWrite
	}
}

func (r *reader) Bool() bool {
	return r.Uint8() != 0
}

func (w *writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (r *reader) Uint8() uint8 {
	return r.read(1)[0]
}

func (w *writer) Uint8(v uint8) {
	w.tmp[0] = v
	w.write(1)
}

func (r *reader) Int32() int32 {
	return int32(r.Uint32())
}

func (w *writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

func (r *reader) Uint32() uint32 {
	return r.byteOrder.Uint32(r.read(4))
}

func (w *writer) Uint32(v uint32) {
	w.byteOrder.PutUint32(w.tmp[:], v)
	w.write(4)
}

func (r *reader) Int64() int64 {
	return int64(r.Uint64())
}

func (w *writer) Int64(v int64) {
	w.Uint64(uint64(v))
}

func (r *reader) Uint64() uint64 {
	return r.byteOrder.Uint64(r.read(8))
}

func (w *writer) Uint64(v uint64) {
	w.byteOrder.PutUint64(w.tmp[:], v)
	w.write(8)
}

func (r *reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (w *writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

func (r *reader) String() string {
	return string(binary.ReadBytes(r))
}

func (w *writer) String(v string) {
	binary.WriteBytes(w, []byte(v))
}

func (r *reader) Count() uint32 {
	return r.Uint32()
}

func (w *writer) Error() error {
	return w.err
}

func (r *reader) Error() error {
	return r.err
}

func (r *reader) SetError(err error) {
	if r.err != nil {
		return
	}
	r.err = err
}

func (w *writer) SetError(err error) {
	if w.err != nil {
		return
	}
	w.err = err
}
