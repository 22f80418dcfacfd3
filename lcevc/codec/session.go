/*
NAME
  session.go

DESCRIPTION
  session.go implements Session, the per-stream orchestration object that
  owns the external base codec, the per-plane temporal state, and the
  dithering/stats scratch spec.md §4.9's encoder/decoder loops share,
  mirroring the teacher's revid.Revid: a long-lived object a caller drives
  one picture at a time rather than handing a whole stream to.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codec implements the per-picture encode/decode orchestration:
// downsample/transform/quantize on the way in, the external base codec
// subprocess, temporal prediction, and the inverse chain back out,
// wrapped and unwrapped from a host access unit via package nal.
package codec

import (
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/report"
)

// Session is a running encode or decode instance for one stream. Fields
// mirror revid.Revid's shape: configuration, an external subprocess
// driver, per-plane running state, and a running flag that Stop clears so
// the next picture resets the stream state.
type Session struct {
	cfg *config.Config
	log logging.Logger

	baseCodec *BaseCodec
	workDir   string

	desc image.Description
	dims bitstream.Dimensions

	temporal []*planeTemporal // [plane] -- only LoQ-2 predicts temporally; nil entries when disabled.
	prevQM1  [][]int32          // [plane][layer], previous picture's resolved LoQ-1 QM coefficient, -1 if none.
	prevQM2  [][]int32

	dither *dither

	lastSequence *bitstream.Sequence
	lastGlobal   *bitstream.Global

	md5  report.MD5Reporter
	psnr report.PSNRReporter

	frameIndex int
	running    bool
}

// New returns a Session for cfg, staging the external base codec's
// per-frame files under workDir (created if it does not already exist).
// cfg must already have had Validate called on it.
func New(cfg *config.Config, workDir string) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("codec: nil config")
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, errors.Wrap(err, "codec: creating work directory")
	}
	return &Session{
		cfg:       cfg,
		log:       cfg.Logger,
		baseCodec: NewBaseCodec(cfg, workDir),
		workDir:   workDir,
		dither:    newDither(streamSeed(cfg.InputPath)),
	}, nil
}

// streamSeed derives a deterministic per-stream dither seed from the
// input path, so a fixed-seed run is reproducible without needing the
// caller to supply one explicitly.
func streamSeed(path string) int64 {
	var h int64 = 1469598103934665603
	for _, c := range path {
		h ^= int64(c)
		h *= 1099511628211
	}
	return h
}

// SetReporters installs the MD5/PSNR reporters EncodeFrame/DecodeFrame
// call after reconstructing each picture. Either may be nil.
func (s *Session) SetReporters(md5 report.MD5Reporter, psnr report.PSNRReporter) {
	s.md5 = md5
	s.psnr = psnr
}

// Running reports whether the Session has processed at least one picture
// and is holding per-plane temporal state between calls.
func (s *Session) Running() bool { return s.running }

// Stop discards s's per-plane temporal state, so the next EncodeFrame or
// DecodeFrame call starts a fresh stream (every plane in TEMPORAL_REFRESH).
func (s *Session) Stop() error {
	s.temporal = nil
	s.prevQM1 = nil
	s.prevQM2 = nil
	s.lastSequence = nil
	s.lastGlobal = nil
	s.frameIndex = 0
	s.running = false
	return nil
}

// reset (re-)initialises per-plane state for desc, the first picture's
// format, or when desc changes mid-stream (a rare format change the
// teacher's revid.Revid also handles by resetting its pipeline).
func (s *Session) reset(desc image.Description) {
	s.desc = desc
	g := s.globalFromConfig(desc)
	s.dims = bitstream.DeriveDimensions(desc.Width, desc.Height, desc.ColourSpace, g)

	n := len(s.dims.Planes)
	s.temporal = make([]*planeTemporal, n)
	s.prevQM1 = make([][]int32, n)
	s.prevQM2 = make([][]int32, n)
	for p, pd := range s.dims.Planes {
		if s.cfg.TemporalEnabled {
			s.temporal[p] = newPlaneTemporal(pd.LoQ2Width, pd.LoQ2Height)
		}
		s.prevQM1[p] = negOnes(g.NumResidualLayers())
		s.prevQM2[p] = negOnes(g.NumResidualLayers())
	}
	s.running = true
}

func negOnes(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

// globalFromConfig builds the Global record a key picture carries, from
// s.cfg and desc. Picture-varying fields (step widths, QM coefficients,
// dequant offset, dithering, refresh) are assembled separately per picture
// in pipeline.go.
func (s *Session) globalFromConfig(desc image.Description) bitstream.Global {
	blockSize := 4 // DDS: the richer 4x4 transform is this Session's only supported layout.
	return bitstream.Global{
		BaseBitDepth:                       s.cfg.BaseBitDepth,
		EnhancementBitDepth:                s.cfg.EnhancementBitDepth,
		ColourSpace:                        desc.ColourSpace,
		NumProcessedPlanes:                 desc.ColourSpace.NumPlanes(),
		TransformBlockSize:                 blockSize,
		ScalingModeLoQ1:                    s.cfg.ScalingModeLoQ1,
		ScalingModeLoQ2:                    s.cfg.ScalingModeLoQ2,
		UpsampleKernel:                     s.cfg.UpsampleKernel,
		TemporalEnabled:                    s.cfg.TemporalEnabled,
		TemporalTileIntraSignallingEnabled: s.cfg.TemporalEnabled && s.cfg.TileLayout != bitstream.TileLayoutNone,
		UserDataMode:                       bitstream.UserDataNone,
		TileLayout:                         s.cfg.TileLayout,
		ChromaStepWidthMultiplier:          s.cfg.ChromaStepWidthMul,
	}
}
