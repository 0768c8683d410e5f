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

// Package config holds the settings of the vktrace tools, loaded from an
// optional YAML file and VKTRACE_* environment variables.
package config

import (
	"github.com/LunarG/VulkanTools-sub015/core/fault"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" env:"VKTRACE_LOG_LEVEL" env-default:"info" env-description:"minimum severity logged"`
	Format string `yaml:"format" env:"VKTRACE_LOG_FORMAT" env-default:"console" env-description:"console or json"`
}

// Capture configures trace capture.
type Capture struct {
	Output      string `yaml:"output" env:"VKTRACE_CAPTURE_OUTPUT" env-default:"capture.vktrace" env-description:"trace file written"`
	Application string `yaml:"application" env:"VKTRACE_CAPTURE_APPLICATION" env-default:"vktrace" env-description:"application name recorded in the trace"`
	Threshold   int    `yaml:"threshold" env:"VKTRACE_CAPTURE_THRESHOLD" env-default:"0" env-description:"warn above this many live memory objects, 0 disables"`
	Threads     int    `yaml:"threads" env:"VKTRACE_CAPTURE_THREADS" env-default:"1" env-description:"threads used by synthetic captures"`
}

// Replay configures trace replay.
type Replay struct {
	Display string   `yaml:"display" env:"VKTRACE_REPLAY_DISPLAY" env-default:"offscreen" env-description:"display backend"`
	Width   int      `yaml:"width" env:"VKTRACE_REPLAY_WIDTH" env-default:"640" env-description:"default window width"`
	Height  int      `yaml:"height" env:"VKTRACE_REPLAY_HEIGHT" env-default:"480" env-description:"default window height"`
	Frames  string   `yaml:"frames" env:"VKTRACE_REPLAY_FRAMES" env-description:"directory presented frames are written to"`
	PauseAt []uint64 `yaml:"pause_at" env:"VKTRACE_REPLAY_PAUSE_AT" env-separator:"," env-description:"call indices to pause before"`
}

// Archive configures the trace archive.
type Archive struct {
	Bucket string `yaml:"bucket" env:"VKTRACE_ARCHIVE_BUCKET" env-default:"file://./archive" env-description:"blob bucket URL"`
	Level  int    `yaml:"level" env:"VKTRACE_ARCHIVE_LEVEL" env-default:"9" env-description:"lz4 compression level 0-9"`
}

// Config is the complete configuration.
type Config struct {
	Log     Log     `yaml:"log"`
	Capture Capture `yaml:"capture"`
	Replay  Replay  `yaml:"replay"`
	Archive Archive `yaml:"archive"`
}

// Load reads the configuration. If path is empty only the environment is
// read. Defaults fill any value left unset.
func Load(path string) (Config, error) {
	cfg := Config{}
	var err error
	if path == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(path, &cfg)
	}
	if err != nil {
		return cfg, errors.Wrap(err, "Loading configuration")
	}
	return cfg, cfg.Validate()
}

// Validate checks that every value is in range.
func (c Config) Validate() error {
	errs := fault.List{}
	if _, err := c.Severity(); err != nil {
		errs.Collect(err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs.Collect(errors.Errorf("log.format %q is not console or json", c.Log.Format))
	}
	if c.Capture.Output == "" {
		errs.Collect(errors.New("capture.output is empty"))
	}
	if c.Capture.Threshold < 0 {
		errs.Collect(errors.Errorf("capture.threshold %d is negative", c.Capture.Threshold))
	}
	if c.Capture.Threads < 1 {
		errs.Collect(errors.Errorf("capture.threads %d is less than 1", c.Capture.Threads))
	}
	if c.Replay.Width <= 0 || c.Replay.Height <= 0 {
		errs.Collect(errors.Errorf("replay window size %dx%d is invalid", c.Replay.Width, c.Replay.Height))
	}
	if c.Archive.Level < 0 || c.Archive.Level > 9 {
		errs.Collect(errors.Errorf("archive.level %d is not in [0, 9]", c.Archive.Level))
	}
	return errs.Err()
}

// Severity returns the configured log severity.
func (c Config) Severity() (log.Severity, error) {
	return log.ParseSeverity(c.Log.Level)
}

// Usage returns the description of the environment variables.
func Usage() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(&Config{}, &header)
}
