/*
NAME
  config_test.go

DESCRIPTION
  config_test.go provides testing for the Config struct methods
  (Validate and Update).

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/lcevc/resample"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}
	c := Config{Logger: dl}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	want := Config{
		Logger:             dl,
		Level:              DefaultLevel,
		BaseBitDepth:       DefaultBaseBitDepth,
		EnhancementBitDepth: DefaultEnhancementBitDepth,
		UpsampleKernel:     resample.Cubic,
		StepWidthLoQ1:      DefaultStepWidth,
		StepWidthLoQ2:      DefaultStepWidth,
		ChromaStepWidthMul: DefaultChromaStepWidthMult,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Validate mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	bundle := map[string]interface{}{
		KeyLevel:          float64(3), // JSON numbers decode as float64.
		KeyBaseBitDepth:   float64(10),
		KeyTemporalEnabled: true,
		KeyInputPath:      "in.yuv",
		"BaseCodecArgs":   []interface{}{"-preset", "fast"},
	}
	if err := c.Update(bundle); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if c.Level != 3 {
		t.Errorf("Level = %d, want 3", c.Level)
	}
	if c.BaseBitDepth != 10 {
		t.Errorf("BaseBitDepth = %d, want 10", c.BaseBitDepth)
	}
	if !c.TemporalEnabled {
		t.Error("TemporalEnabled = false, want true")
	}
	if c.InputPath != "in.yuv" {
		t.Errorf("InputPath = %q, want in.yuv", c.InputPath)
	}
	if len(c.BaseCodecArgs) != 2 || c.BaseCodecArgs[0] != "-preset" {
		t.Errorf("BaseCodecArgs = %v, want [-preset fast]", c.BaseCodecArgs)
	}
}

func TestUpdateSkipsUnknownAndBadlyTypedValues(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	bundle := map[string]interface{}{
		"NotARealKey": 1,
		KeyLevel:      "not a number",
	}
	if err := c.Update(bundle); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if c.Level != 0 {
		t.Errorf("Level = %d, want 0 (unset, bad value skipped)", c.Level)
	}
}
