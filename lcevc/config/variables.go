/*
NAME
  variables.go

DESCRIPTION
  variables.go provides, for each Config field, a variable Name, a Set
  function that converts a bundle value and assigns it, and a Validate
  function that fills in a default when the field is unset.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

// Config bundle keys.
const (
	KeyProfile             = "Profile"
	KeyLevel               = "Level"
	KeySubLevel             = "SubLevel"
	KeyBaseBitDepth         = "BaseBitDepth"
	KeyEnhancementBitDepth  = "EnhancementBitDepth"
	KeyColourSpace          = "ColourSpace"
	KeyScalingModeLoQ1      = "ScalingModeLoQ1"
	KeyScalingModeLoQ2      = "ScalingModeLoQ2"
	KeyUpsampleKernel       = "UpsampleKernel"
	KeyTemporalEnabled      = "TemporalEnabled"
	KeyTileLayout           = "TileLayout"
	KeyQuantMatrixMode      = "QuantMatrixMode"
	KeyStepWidthLoQ1        = "StepWidthLoQ1"
	KeyStepWidthLoQ2        = "StepWidthLoQ2"
	KeyChromaStepWidthMul   = "ChromaStepWidthMultiplier"
	KeyBaseCodecPath        = "BaseCodecPath"
	KeyInputPath            = "InputPath"
	KeyOutputPath           = "OutputPath"
	KeyLogPath              = "LogPath"
	KeyLogLevel             = "LogLevel"
	KeyParamBundlePath      = "ParamBundlePath"
	KeySystemd              = "Systemd"
)

// variable describes one Config field's bundle key, setter, and
// validator.
type variable struct {
	Name     string
	Set      func(*Config, interface{}) error
	Validate func(*Config)
}

func asInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, errors.Errorf("config: value %v is not a number", v)
	}
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf("config: value %v is not a bool", v)
	}
	return b, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("config: value %v is not a string", v)
	}
	return s, nil
}

func asStringSlice(v interface{}) ([]string, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("config: value %v is not a list", v)
	}
	out := make([]string, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, errors.Errorf("config: element %d of %v is not a string", i, v)
		}
		out[i] = s
	}
	return out, nil
}

var variables = []variable{
	{
		Name: KeyProfile,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.Profile = Profile(n)
			return nil
		},
	},
	{
		Name: KeyLevel,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.Level = n
			return nil
		},
		Validate: func(c *Config) {
			if c.Level == 0 {
				c.LogInvalidField(KeyLevel, DefaultLevel)
				c.Level = DefaultLevel
			}
		},
	},
	{
		Name: KeySubLevel,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.SubLevel = n
			return nil
		},
	},
	{
		Name: KeyBaseBitDepth,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.BaseBitDepth = n
			return nil
		},
		Validate: func(c *Config) {
			if c.BaseBitDepth == 0 {
				c.LogInvalidField(KeyBaseBitDepth, DefaultBaseBitDepth)
				c.BaseBitDepth = DefaultBaseBitDepth
			}
		},
	},
	{
		Name: KeyEnhancementBitDepth,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.EnhancementBitDepth = n
			return nil
		},
		Validate: func(c *Config) {
			if c.EnhancementBitDepth == 0 {
				c.LogInvalidField(KeyEnhancementBitDepth, DefaultEnhancementBitDepth)
				c.EnhancementBitDepth = DefaultEnhancementBitDepth
			}
		},
	},
	{
		Name: KeyColourSpace,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.ColourSpace = image.ColourSpace(n)
			return nil
		},
	},
	{
		Name: KeyScalingModeLoQ1,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.ScalingModeLoQ1 = resample.ScalingMode(n)
			return nil
		},
	},
	{
		Name: KeyScalingModeLoQ2,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.ScalingModeLoQ2 = resample.ScalingMode(n)
			return nil
		},
	},
	{
		Name: KeyUpsampleKernel,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.UpsampleKernel = resample.Kernel(n)
			return nil
		},
		Validate: func(c *Config) {
			if c.UpsampleKernel == 0 {
				c.UpsampleKernel = resample.Cubic
			}
		},
	},
	{
		Name: KeyTemporalEnabled,
		Set: func(c *Config, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			c.TemporalEnabled = b
			return nil
		},
	},
	{
		Name: KeyTileLayout,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.TileLayout = bitstream.TileLayout(n)
			return nil
		},
	},
	{
		Name: KeyQuantMatrixMode,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.QuantMatrixMode = quantize.Mode(n)
			return nil
		},
	},
	{
		Name: KeyStepWidthLoQ1,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.StepWidthLoQ1 = int32(n)
			return nil
		},
		Validate: func(c *Config) {
			if c.StepWidthLoQ1 == 0 {
				c.LogInvalidField(KeyStepWidthLoQ1, DefaultStepWidth)
				c.StepWidthLoQ1 = DefaultStepWidth
			}
		},
	},
	{
		Name: KeyStepWidthLoQ2,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.StepWidthLoQ2 = int32(n)
			return nil
		},
		Validate: func(c *Config) {
			if c.StepWidthLoQ2 == 0 {
				c.LogInvalidField(KeyStepWidthLoQ2, DefaultStepWidth)
				c.StepWidthLoQ2 = DefaultStepWidth
			}
		},
	},
	{
		Name: KeyChromaStepWidthMul,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.ChromaStepWidthMul = n
			return nil
		},
		Validate: func(c *Config) {
			if c.ChromaStepWidthMul == 0 {
				c.LogInvalidField(KeyChromaStepWidthMul, DefaultChromaStepWidthMult)
				c.ChromaStepWidthMul = DefaultChromaStepWidthMult
			}
		},
	},
	{
		Name: KeyBaseCodecPath,
		Set: func(c *Config, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.BaseCodecPath = s
			return nil
		},
	},
	{
		Name: "BaseCodecArgs",
		Set: func(c *Config, v interface{}) error {
			s, err := asStringSlice(v)
			if err != nil {
				return err
			}
			c.BaseCodecArgs = s
			return nil
		},
	},
	{
		Name: KeyInputPath,
		Set: func(c *Config, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.InputPath = s
			return nil
		},
	},
	{
		Name: KeyOutputPath,
		Set: func(c *Config, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.OutputPath = s
			return nil
		},
	},
	{
		Name: KeyLogPath,
		Set: func(c *Config, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.LogPath = s
			return nil
		},
	},
	{
		Name: KeyLogLevel,
		Set: func(c *Config, v interface{}) error {
			n, err := asInt(v)
			if err != nil {
				return err
			}
			c.LogLevel = int8(n)
			return nil
		},
	},
	{
		Name: KeyParamBundlePath,
		Set: func(c *Config, v interface{}) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.ParamBundlePath = s
			return nil
		},
	},
	{
		Name: KeySystemd,
		Set: func(c *Config, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			c.Systemd = b
			return nil
		},
	},
}
