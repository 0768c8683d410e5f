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

package main

import (
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/LunarG/VulkanTools-sub015/display/offscreen"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDiffCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a.png> <b.png>",
		Short: "Compare two presented frames",
		Long: `Compares two frames written by replay --frames pixel by pixel. The command
fails if the frames differ, so it can be used to check that a replay still
presents what a reference replay presented.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offscreen.ReadPNG(args[0])
			if err != nil {
				return err
			}
			b, err := offscreen.ReadPNG(args[1])
			if err != nil {
				return err
			}
			d := display.Compare(a, b)
			switch {
			case d.SizeMismatch:
				return errors.Errorf("Frames differ in size: %v and %v", a.Bounds().Size(), b.Bounds().Size())
			case !d.Equal():
				return errors.Errorf("%d pixels differ, by at most %d", d.Pixels, d.MaxDelta)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Frames are identical")
			return nil
		},
	}
}
