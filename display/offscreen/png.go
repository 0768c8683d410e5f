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

package offscreen

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/pkg/errors"
)

// PNGDir is a display.FrameSink that writes each frame to a PNG file in a
// directory.
type PNGDir string

var _ display.FrameSink = PNGDir("")

// Path returns the file frame is written to.
func (d PNGDir) Path(frame int) string {
	return filepath.Join(string(d), fmt.Sprintf("frame-%06d.png", frame))
}

// WriteFrame implements display.FrameSink.
func (d PNGDir) WriteFrame(ctx context.Context, frame int, img image.Image) error {
	if err := os.MkdirAll(string(d), 0755); err != nil {
		return errors.Wrap(err, "Creating frames directory")
	}
	path := d.Path(frame)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Creating frame file")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "Encoding frame %d", frame)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "Closing frame file")
	}
	log.D(ctx, "Wrote frame %v", path)
	return nil
}

// ReadPNG loads an image written by WriteFrame.
func ReadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Decoding %v", path)
	}
	return img, nil
}
