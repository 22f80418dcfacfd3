/*
NAME
  config.go

DESCRIPTION
  config.go holds the parameter bundle that drives an orchestration
  Session: profile/level, bit depths, scaling and tile layout, step
  widths, and the external base-codec invocation, populated from a
  map[string]interface{} bundle per spec.md §6's external CLI contract.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the parameter bundle for an lcevc/codec Session.
package config

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

// Profile identifies the enhancement profile, carried into
// bitstream.Sequence.Profile.
type Profile int

// Supported profiles.
const (
	ProfileMain Profile = iota
	ProfileMain4444
	ProfileMainStillPicture
)

// Default parameter values, used whenever a bundle omits a key.
const (
	DefaultBaseBitDepth        = 8
	DefaultEnhancementBitDepth = 8
	DefaultLevel               = 0
	DefaultSubLevel            = 0
	DefaultStepWidth           = 32767 // disables residuals until set
	DefaultChromaStepWidthMult = 64    // x1.0
)

// Config provides the parameters relevant to one Session. A new Config
// must be passed to the constructor; defaults above are applied by
// Validate for anything a bundle leaves unset.
type Config struct {
	// Logger holds an implementation of logging.Logger; every Session
	// constructor threads it through in the New(l logging.Logger, ...)
	// style the teacher's device packages use.
	Logger logging.Logger

	Profile  Profile
	Level    int
	SubLevel int

	BaseBitDepth        int
	EnhancementBitDepth int
	ColourSpace         image.ColourSpace

	ScalingModeLoQ1 resample.ScalingMode
	ScalingModeLoQ2 resample.ScalingMode
	UpsampleKernel  resample.Kernel

	TemporalEnabled bool
	TileLayout      bitstream.TileLayout

	QuantMatrixMode    quantize.Mode
	StepWidthLoQ1      int32
	StepWidthLoQ2      int32
	ChromaStepWidthMul int

	// BaseCodecPath is the external base encoder/decoder binary invoked
	// once per frame, per spec.md §4.9's orchestration loop and §6's
	// external interface.
	BaseCodecPath string
	BaseCodecArgs []string

	InputPath  string
	OutputPath string

	// LogPath, when non-empty, is rolled via lumberjack instead of
	// written directly, matching the teacher's cmd/rv and
	// device/geovision binaries.
	LogPath    string
	LogLevel   int8
	MaxLogSize int // megabytes, passed to lumberjack.Logger.MaxSize

	// ParamBundlePath, when non-empty, is watched with fsnotify so a
	// running Session picks up bundle edits without a restart.
	ParamBundlePath string

	// Systemd marks a deployment managed as a systemd unit; NotifyReady
	// sends sd_notify READY=1 only when it is set. Nothing in this module
	// calls NotifyReady.
	Systemd bool
}

// Validate checks config fields and fills in defaults for anything left
// unset by the caller's bundle, matching the teacher's
// Variables-table-driven Validate.
func (c *Config) Validate() error {
	for _, v := range variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a parameter bundle and applies every recognised key to c,
// logging and skipping anything it does not recognise or cannot convert.
func (c *Config) Update(bundle map[string]interface{}) error {
	for _, v := range variables {
		raw, ok := bundle[v.Name]
		if !ok || v.Set == nil {
			continue
		}
		if err := v.Set(c, raw); err != nil {
			if c.Logger != nil {
				c.Logger.Warning("could not set config variable", "name", v.Name, "error", err.Error())
			}
			continue
		}
	}
	return nil
}

// LogInvalidField logs a defaulted field, matching the teacher's
// Config.LogInvalidField helper.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
