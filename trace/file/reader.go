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
	"io"
	"iter"
	"os"

	"github.com/LunarG/VulkanTools-sub015/trace/packet"
	"github.com/pkg/errors"
)

// Reader is a sequential producer of the packets of a trace.
type Reader struct {
	in        io.Reader
	buf       *bufio.Reader
	header    Header
	dataStart int64
	offset    int64
	count     int
	last      uint64
	err       error
}

// NewReader reads the trace header from in and returns a Reader positioned at
// the first packet. If in is an io.Seeker the reader can be rewound.
func NewReader(in io.Reader) (*Reader, error) {
	r := &Reader{in: in, buf: bufio.NewReader(in)}
	h, size, err := readHeader(r.buf)
	if err != nil {
		return nil, err
	}
	r.header, r.dataStart, r.offset = h, size, size
	return r, nil
}

// Open opens the trace file at path. The returned reader must be closed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Opening trace file")
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "Reading %v", path)
	}
	return r, nil
}

// Header returns the header of the trace.
func (r *Reader) Header() Header { return r.header }

// Count returns the number of packets read since the start of the trace.
func (r *Reader) Count() int { return r.count }

// Next returns the next packet of the trace, or io.EOF at the end of the
// trace. Once Next has returned an error it returns the same error.
func (r *Reader) Next() (*packet.Packet, error) {
	if r.err != nil {
		return nil, r.err
	}
	c := &counter{r: r.buf}
	p, err := packet.Read(c)
	start := r.offset
	r.offset += c.n
	if err != nil {
		var malformed *packet.MalformedPacketError
		if errors.As(err, &malformed) {
			malformed.Offset += start
			if r.count > 0 && malformed.Index == 0 && malformed.Offset-start < packet.HeaderSize {
				malformed.Index = r.last + 1
			}
		}
		r.err = err
		return nil, err
	}
	if r.count > 0 && p.Index < r.last {
		r.err = &packet.MalformedPacketError{
			Index:  p.Index,
			Offset: start,
			Reason: errors.Errorf("call index %d follows %d", p.Index, r.last),
		}
		return nil, r.err
	}
	r.count++
	r.last = p.Index
	return p, nil
}

// Packets returns the remaining packets of the trace as a lazy sequence. A
// decode failure is yielded once as a nil packet with the error, and ends
// the sequence.
func (r *Reader) Packets() iter.Seq2[*packet.Packet, error] {
	return func(yield func(*packet.Packet, error) bool) {
		for {
			p, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

// Rewind returns the reader to the first packet of the trace.
func (r *Reader) Rewind() error {
	s, ok := r.in.(io.Seeker)
	if !ok {
		return errors.New("Trace source cannot seek")
	}
	if _, err := s.Seek(r.dataStart, io.SeekStart); err != nil {
		return errors.Wrap(err, "Rewinding trace")
	}
	r.buf.Reset(r.in)
	r.offset, r.count, r.last, r.err = r.dataStart, 0, 0, nil
	return nil
}

// Close closes the underlying source if it is an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.in.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type counter struct {
	r io.Reader
	n int64
}

func (c *counter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
