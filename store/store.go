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

// Package store archives trace files in blob storage. Traces are stored
// lz4 compressed under a key derived from their capture session.
package store

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/LunarG/VulkanTools-sub015/core/fault"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

const (
	// ErrNotFound is returned when a key is not in the archive.
	ErrNotFound = fault.Const("Trace not found in archive")

	prefix      = "traces/"
	suffix      = ".vktrace.lz4"
	contentType = "application/x-vktrace+lz4"
)

var levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// Options configure an Archive.
type Options struct {
	// Level is the lz4 compression level, from 0 (fastest) to 9.
	Level int
}

// Entry describes an archived trace.
type Entry struct {
	Key         string
	Size        int64
	ModTime     time.Time
	Application string
	Driver      string
}

// Archive is a set of traces in a blob bucket.
type Archive struct {
	bucket *blob.Bucket
	level  lz4.CompressionLevel
}

// Open opens the bucket at url, such as file:///var/traces or mem://.
func Open(ctx context.Context, url string, opts Options) (*Archive, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "Opening bucket %v", url)
	}
	a, err := New(bucket, opts)
	if err != nil {
		bucket.Close()
		return nil, err
	}
	return a, nil
}

// New returns an Archive storing traces in bucket.
func New(bucket *blob.Bucket, opts Options) (*Archive, error) {
	if opts.Level < 0 || opts.Level >= len(levels) {
		return nil, errors.Errorf("Compression level %d out of range [0, %d]", opts.Level, len(levels)-1)
	}
	return &Archive{bucket: bucket, level: levels[opts.Level]}, nil
}

// Close closes the bucket.
func (a *Archive) Close() error { return a.bucket.Close() }

// Key returns the key a trace with header h is stored under.
func Key(h file.Header) string {
	return prefix + h.Metadata.SessionID.String() + suffix
}

// Push compresses the trace file at path into the archive and returns its
// key.
func (a *Archive) Push(ctx context.Context, path string) (string, error) {
	r, err := file.Open(path)
	if err != nil {
		return "", err
	}
	h := r.Header()
	r.Close()

	in, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "Opening trace file")
	}
	defer in.Close()

	key := Key(h)
	ctx = log.V{"key": key}.Bind(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ow, err := a.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"application": h.Metadata.Application,
			"driver":      h.Metadata.Driver,
			"os":          h.Metadata.OS,
			"start":       h.Metadata.Start.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "Creating archive object")
	}
	zw := lz4.NewWriter(ow)
	_ = zw.Apply(lz4.CompressionLevelOption(a.level))
	n, err := io.Copy(zw, in)
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		// Cancelling before Close discards the partial object.
		cancel()
		ow.Close()
		return "", errors.Wrap(err, "Compressing trace")
	}
	if err := ow.Close(); err != nil {
		return "", errors.Wrap(err, "Writing archive object")
	}
	log.I(ctx, "Archived %d bytes", n)
	return key, nil
}

// Pull decompresses the trace stored under key to out.
func (a *Archive) Pull(ctx context.Context, key string, out io.Writer) error {
	or, err := a.open(ctx, key)
	if err != nil {
		return err
	}
	defer or.Close()
	if _, err := io.Copy(out, lz4.NewReader(or)); err != nil {
		return errors.Wrapf(err, "Decompressing %v", key)
	}
	return nil
}

// PullFile decompresses the trace stored under key to the file at path.
func (a *Archive) PullFile(ctx context.Context, key, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Creating trace file")
	}
	if err := a.Pull(ctx, key, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Reader returns a trace reader streaming the trace stored under key. The
// reader must be closed.
func (a *Archive) Reader(ctx context.Context, key string) (*file.Reader, error) {
	or, err := a.open(ctx, key)
	if err != nil {
		return nil, err
	}
	r, err := file.NewReader(readCloser{lz4.NewReader(or), or})
	if err != nil {
		or.Close()
		return nil, errors.Wrapf(err, "Reading %v", key)
	}
	return r, nil
}

// List returns the archived traces.
func (a *Archive) List(ctx context.Context) ([]Entry, error) {
	out := []Entry{}
	it := a.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "Listing archive")
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, suffix) {
			continue
		}
		e := Entry{Key: obj.Key, Size: obj.Size, ModTime: obj.ModTime}
		if attrs, err := a.bucket.Attributes(ctx, obj.Key); err == nil {
			e.Application = attrs.Metadata["application"]
			e.Driver = attrs.Metadata["driver"]
		}
		out = append(out, e)
	}
}

// Delete removes the trace stored under key.
func (a *Archive) Delete(ctx context.Context, key string) error {
	if err := a.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return ErrNotFound
		}
		return errors.Wrapf(err, "Deleting %v", key)
	}
	return nil
}

func (a *Archive) open(ctx context.Context, key string) (*blob.Reader, error) {
	or, err := a.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "Opening %v", key)
	}
	return or, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
