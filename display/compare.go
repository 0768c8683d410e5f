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

package display

import (
	"image"
	"image/color"
)

// Diff is the result of comparing two images.
type Diff struct {
	// SizeMismatch is true if the images have different bounds. No pixels
	// are compared in that case.
	SizeMismatch bool
	// Pixels is the number of pixels that differ.
	Pixels int
	// MaxDelta is the largest difference of any channel, in 16-bit units.
	MaxDelta uint32
}

// Equal returns true if the images were identical.
func (d Diff) Equal() bool { return !d.SizeMismatch && d.Pixels == 0 }

// Compare compares a and b pixel by pixel.
func Compare(a, b image.Image) Diff {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return Diff{SizeMismatch: true}
	}
	d := Diff{}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			delta := colorDelta(a.At(ab.Min.X+x, ab.Min.Y+y), b.At(bb.Min.X+x, bb.Min.Y+y))
			if delta == 0 {
				continue
			}
			d.Pixels++
			if delta > d.MaxDelta {
				d.MaxDelta = delta
			}
		}
	}
	return d
}

func colorDelta(a, b color.Color) uint32 {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	max := uint32(0)
	for _, d := range []uint32{absDiff(ar, br), absDiff(ag, bg), absDiff(ab, bb), absDiff(aa, ba)} {
		if d > max {
			max = d
		}
	}
	return max
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
