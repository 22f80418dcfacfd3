/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements Session.EncodeFrame/DecodeFrame: the per-picture
  orchestration spec.md §4.9 describes, wiring together downsampling, the
  external base codec, the DD/DDS transform and quantize stages, temporal
  prediction, serialization, and NAL insertion/extraction.

  The resolution chain follows package bitstream's Dimensions exactly: the
  LoQ-1 residual corrects the external base codec's own reconstruction at
  its native (smallest) resolution, and the corrected base picture is then
  upsampled across both scaling-mode steps (LoQ-1 axes, then LoQ-2 axes)
  before the LoQ-2 residual corrects the result at full resolution. This
  differs from some reference descriptions that show an intermediate
  surface between the two upsample steps; collapsing it keeps Dimensions'
  existing two-resolution model (base, full) intact rather than
  introducing an unaddressed third resolution.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/nal"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/report"
	"github.com/ausocean/lcevc/resample"
	"github.com/ausocean/lcevc/surface"
	"github.com/ausocean/lcevc/temporal"
	"github.com/ausocean/lcevc/transform"
)

// downsampleKernel is the anti-aliasing filter used for every downsample
// step. Config does not currently expose a choice here, matching most
// deployments' fixed-encoder-side default.
const downsampleKernel = resample.Area

// kindFor selects the transform the given scaling mode implies for a
// blockSize-2 or blockSize-4 layout: the 1-D variant when only the
// horizontal axis is scaled, the full 2-D transform otherwise.
func kindFor(mode resample.ScalingMode, blockSize int) transform.Kind {
	oneD := mode == resample.Scale1D
	if blockSize == 2 {
		if oneD {
			return transform.DD1D
		}
		return transform.DD
	}
	if oneD {
		return transform.DDS1D
	}
	return transform.DDS
}

// EncodeFrame encodes one picture: img is the full-resolution source
// frame, idr selects whether this picture resets the temporal state and
// carries the full Sequence/Global header set. It returns a fully framed
// access unit (the host's access unit with the enhancement payload
// inserted after its parameter sets) plus per-picture debug stats.
func (s *Session) EncodeFrame(img image.Image, hostAU []byte, idr bool) ([]byte, *Stats, error) {
	if !s.running || s.desc != img.Description {
		s.reset(img.Description)
	}
	stats := NewStats()

	g := s.globalFromConfig(img.Description)
	numPlanes := len(s.dims.Planes)

	fullPels := make([][]int16, numPlanes)
	basePels := make([][]int16, numPlanes)
	baseSurfaces := make([]surface.Surface, numPlanes)
	baseEW := img.Description.ElementWidth()
	for p := 0; p < numPlanes; p++ {
		pd := s.dims.Planes[p]
		fp, err := pelsFromSurface(img.Planes[p])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: reading plane %d", p)
		}
		fullPels[p] = fp

		stage, xw, xh, err := resample.Downsample(fp, pd.LoQ2Width, pd.LoQ2Height, g.ScalingModeLoQ2, downsampleKernel)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: downsampling plane %d to loq2", p)
		}
		bp, bw, bh, err := resample.Downsample(stage, xw, xh, g.ScalingModeLoQ1, downsampleKernel)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: downsampling plane %d to base", p)
		}
		if bw != pd.LoQ1Width || bh != pd.LoQ1Height {
			return nil, nil, errors.Errorf("codec: plane %d base dims %dx%d, want %dx%d", p, bw, bh, pd.LoQ1Width, pd.LoQ1Height)
		}
		basePels[p] = bp
		bs, err := surfaceFromPels(bp, bw, bh, baseEW)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: building base surface for plane %d", p)
		}
		baseSurfaces[p] = bs
	}

	baseDesc := image.Description{
		Width: s.dims.Planes[0].LoQ1Width, Height: s.dims.Planes[0].LoQ1Height,
		BitDepth: s.cfg.BaseBitDepth, ColourSpace: img.Description.ColourSpace,
	}
	baseImg := image.Image{Description: baseDesc, Planes: baseSurfaces, Timestamp: img.Timestamp}

	reconBaseImg, baseBitstream, err := s.baseCodec.EncodeFrame(baseImg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "codec: external base codec encode")
	}
	_ = baseBitstream // carried in hostAU by the caller's own base-codec invocation; kept here for stats/logging only.

	qcfg := s.quantizeConfig()

	residuals := make([][]int16, 0, numPlanes*2)
	layerShapes := make([]bitstream.LayerShape, 0, numPlanes*2)
	reconFull := make([][]int16, numPlanes)
	reconFullDithered := make([][]int16, numPlanes)
	digests := make([][16]byte, numPlanes)
	psnrs := make([]float64, numPlanes)

	for p := 0; p < numPlanes; p++ {
		pd := s.dims.Planes[p]
		reconBasePels, err := pelsFromSurface(reconBaseImg.Planes[p])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: reading reconstructed base plane %d", p)
		}

		kind1 := kindFor(g.ScalingModeLoQ1, g.TransformBlockSize)
		residualL1 := resample.ComposeSub(basePels[p], reconBasePels)
		passL1 := quantizeLoQ(residualL1, pd.LoQ1Width, pd.LoQ1Height, kind1, EncodeAll, quantize.LoQ1,
			s.cfg.StepWidthLoQ1, qcfg, idr, s.prevQM1[p])
		s.prevQM1[p] = passL1.qmUsed
		stats.Record(p, quantize.LoQ1, 0, passL1.coeffs[0], passL1.shape.Width, passL1.shape.Height)

		correctedBase := resample.ComposeAdd(reconBasePels, passL1.reconResidual)

		stage1, xw, xh, err := resample.Upsample(correctedBase, pd.LoQ1Width, pd.LoQ1Height, g.ScalingModeLoQ1, g.UpsampleKernel, g.AdaptiveCubicCoeffs)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: upsampling plane %d loq1", p)
		}
		predictedFull, fw, fh, err := resample.Upsample(stage1, xw, xh, g.ScalingModeLoQ2, g.UpsampleKernel, g.AdaptiveCubicCoeffs)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "codec: upsampling plane %d loq2", p)
		}
		if fw != pd.LoQ2Width || fh != pd.LoQ2Height {
			return nil, nil, errors.Errorf("codec: plane %d full dims %dx%d, want %dx%d", p, fw, fh, pd.LoQ2Width, pd.LoQ2Height)
		}
		// AdjustPredictedResidual needs the true source plane as its bias
		// reference, which a decoder never has; applying it here would make
		// the residual non-invertible, so the prediction composition stays
		// on the raw upsample output on both sides of the codec.
		predictedFullAdj := predictedFull

		residualL2 := resample.ComposeSub(fullPels[p], predictedFullAdj)
		stepWidth2 := chromaScaledStepWidth(s.cfg.StepWidthLoQ2, p, g.ChromaStepWidthMultiplier)

		finalCoeffs, finalResidual, usedQM, mode := s.encodeLoQ2Temporal(p, pd, g, qcfg, residualL2, stepWidth2, idr)
		s.prevQM2[p] = usedQM
		_ = mode

		reconFull[p] = resample.ComposeAdd(predictedFullAdj, finalResidual)

		residuals = append(residuals, passL1.coeffs...)
		for range passL1.coeffs {
			layerShapes = append(layerShapes, passL1.shape)
		}
		residuals = append(residuals, finalCoeffs...)
		for range finalCoeffs {
			layerShapes = append(layerShapes, bitstream.LayerShape{Width: pd.LoQ2TileWidth, Height: pd.LoQ2TileHeight})
		}
		for l, c := range finalCoeffs {
			stats.Record(p, quantize.LoQ2, l, c, pd.LoQ2TileWidth, pd.LoQ2TileHeight)
		}

		out := reconFull[p]
		if p == 0 {
			out = s.dither.Apply(out, DitherUniformFixed, 2, g.EnhancementBitDepth, s.frameIndex)
		}
		reconFullDithered[p] = out
		digests[p] = report.PlaneDigest(out, g.EnhancementBitDepth)
		psnrs[p] = report.PlanePSNR(out, fullPels[p], g.EnhancementBitDepth)
	}

	if s.md5 != nil {
		s.md5.ReportMD5(s.frameIndex, digests)
	}
	if s.psnr != nil {
		s.psnr.ReportPSNR(s.frameIndex, psnrs)
	}

	pt := bitstream.PictureInter
	if idr {
		pt = bitstream.PictureIDR
	}
	pic := bitstream.Picture{
		StepWidthLoQ1:   s.cfg.StepWidthLoQ1,
		StepWidthLoQ2:   s.cfg.StepWidthLoQ2,
		QuantMatrixMode: qcfg.QuantMatrixMode,
		DitheringMode:   int(DitherUniformFixed),
		DitheringStrength: 2,
		TemporalRefresh: idr || !s.cfg.TemporalEnabled,
	}

	payload := bitstream.Payload{
		Type:        pt,
		Picture:     pic,
		Residuals:   residuals,
		LayerShapes: layerShapes,
	}
	if idr {
		seq := bitstream.Sequence{Profile: int(s.cfg.Profile), Level: s.cfg.Level, SubLevel: s.cfg.SubLevel}
		payload.Sequence = &seq
		gg := g
		payload.Global = &gg
		s.lastSequence = &seq
		s.lastGlobal = &gg
	}

	w := bitio.NewWriter()
	if err := bitstream.Serialize(w, payload); err != nil {
		return nil, nil, errors.Wrap(err, "codec: serializing enhancement payload")
	}
	enhancementBits, err := w.Bytes()
	if err != nil {
		return nil, nil, errors.Wrap(err, "codec: flushing enhancement payload")
	}

	wrapped := nal.WrapUnit(enhancementBits, idr)
	au := nal.InsertAfterParameterSets(hostAU, wrapped)

	s.frameIndex++
	return au, stats, nil
}

// quantizeConfig builds the quantize.Config a picture's quantization pass
// uses. Custom quantization-matrix tables are not currently exposed on
// config.Config, so a mode that would need one falls back to BothDefault.
func (s *Session) quantizeConfig() quantize.Config {
	mode := s.cfg.QuantMatrixMode
	switch mode {
	case quantize.BothPrevious, quantize.BothDefault:
	default:
		if s.log != nil {
			s.log.Warning("quant matrix mode needs custom coefficients, not configured; using default", "mode", mode)
		}
		mode = quantize.BothDefault
	}
	return quantize.Config{QuantMatrixMode: mode}
}

// chromaScaledStepWidth applies Global.ChromaStepWidthMultiplier to a
// chroma plane's LoQ-2 step width; luma (plane 0) is left unscaled.
func chromaScaledStepWidth(stepWidth int32, plane int, multiplier int) int32 {
	if plane == 0 || multiplier == 0 {
		return stepWidth
	}
	return int32(int64(stepWidth) * int64(multiplier) / 64)
}

// applyTemporalStepWidthModifier adjusts a picture's LoQ-2 step width for
// the inter-prediction quantization pass, per Global's signalled modifier
// and mode.
func applyTemporalStepWidthModifier(stepWidth int32, g bitstream.Global) int32 {
	if g.TemporalStepWidthModifier == 0 {
		return stepWidth
	}
	switch g.TemporalStepWidthMode {
	case bitstream.TemporalStepWidthDependent:
		return stepWidth + int32(g.TemporalStepWidthModifier)/2
	default:
		return stepWidth + int32(g.TemporalStepWidthModifier)
	}
}

// encodeLoQ2Temporal runs the LoQ-2 quantization pass for plane, applying
// the two-pass intra/inter cost decision and reduced-signalling tile
// override when temporal prediction is enabled for this stream, or a
// single intra pass otherwise.
func (s *Session) encodeLoQ2Temporal(plane int, pd bitstream.PlaneDimensions, g bitstream.Global, qcfg quantize.Config, residual []int16, stepWidth int32, isIDR bool) (coeffs [][]int16, finalResidual []int16, usedQM []int32, mode EncodingMode) {
	kind2 := kindFor(g.ScalingModeLoQ2, g.TransformBlockSize)
	bs := kind2.BlockSize()
	width, height := pd.LoQ2Width, pd.LoQ2Height
	lw, lh := pd.LoQ2TileWidth, pd.LoQ2TileHeight

	pt := s.temporal[plane]
	if !g.TemporalEnabled || pt == nil {
		pass := quantizeLoQ(residual, width, height, kind2, EncodeAll, quantize.LoQ2, stepWidth, qcfg, isIDR, s.prevQM2[plane])
		return pass.coeffs, pass.reconResidual, pass.qmUsed, EncodeAll
	}

	pt.transition(isIDR, true)
	perPictureIntra := pt.perPictureIntra(isIDR)
	passIntra := quantizeLoQ(residual, width, height, kind2, EncodeAll, quantize.LoQ2, stepWidth, qcfg, isIDR, s.prevQM2[plane])

	mask := make([]temporal.Mask, lw*lh)
	for i := range mask {
		mask[i] = temporal.Intr
	}

	var passInter loqResult
	if !perPictureIntra {
		interInput := resample.ComposeSub(residual, pt.buffer)
		interStep := applyTemporalStepWidthModifier(stepWidth, g)
		passInter = quantizeLoQ(interInput, width, height, kind2, EncodeAll, quantize.LoQ2, interStep, qcfg, isIDR, s.prevQM2[plane])

		lambda := passIntra.invqSW0
		nzIntra := countNonzeroPerBlock(passIntra.coeffs, lw*lh)
		nzInter := countNonzeroPerBlock(passInter.coeffs, lw*lh)
		for i := 0; i < lw*lh; i++ {
			bx, by := i%lw, i/lw
			sadIntra := blockSAD(passIntra.reconResidual, residual, width, bs, bx, by)
			interFull := resample.ComposeAdd(passInter.reconResidual, pt.buffer)
			sadInter := blockSAD(interFull, residual, width, bs, bx, by)
			intraCost := temporal.BlockCost(sadIntra, nzIntra[i], lambda)
			interCost := temporal.BlockCost(sadInter, nzInter[i], lambda)
			mask[i] = temporal.DecideBlock(intraCost, interCost)
		}

		if g.TemporalTileIntraSignallingEnabled {
			savIntra := sumAbsPerBlock(passIntra.coeffs, lw*lh)
			savInter := sumAbsPerBlock(passInter.coeffs, lw*lh)
			transformsPerTile := temporal.TileSize / bs
			tileMap := temporal.ComputeTileMap(savIntra, savInter, lw, lh, transformsPerTile)
			mask = temporal.ApplyTileSignalling(tileMap, mask, lw, lh, transformsPerTile)
		}
	}

	coeffs = selectByMask(passIntra.coeffs, passInter.coeffs, mask)
	rawRecon := buildRawRecon(passIntra.reconResidual, passInter.reconResidual, mask, width, height, bs)

	pt.update(rawRecon, mask, bs, perPictureIntra, g.TemporalTileIntraSignallingEnabled)
	finalResidual = pt.buffer

	layer0 := make([]int16, len(coeffs[0]))
	for i, c := range coeffs[0] {
		layer0[i] = temporal.InjectMask(c, mask[i])
	}
	coeffs[0] = layer0

	return coeffs, finalResidual, passIntra.qmUsed, EncodeAll
}

// DecodeFrame decodes one host access unit: it runs the external base
// decoder over au (which the base decoder processes as an ordinary
// bitstream, ignoring the enhancement NAL/SEI it does not recognise),
// extracts and deserializes the enhancement payload, and reconstructs the
// full-resolution picture.
func (s *Session) DecodeFrame(au []byte, desc image.Description) (image.Image, error) {
	baseDesc := image.Description{BitDepth: s.cfg.BaseBitDepth, ColourSpace: desc.ColourSpace}

	payloadBytes, err := nal.FindEnhancementPayload(au)
	if err != nil {
		return image.Image{}, errors.Wrap(err, "codec: extracting enhancement payload")
	}
	r := bitio.NewReader(payloadBytes)

	params := bitstream.DeserializeParams{}
	if s.lastGlobal != nil {
		dims := bitstream.DeriveDimensions(desc.Width, desc.Height, desc.ColourSpace, *s.lastGlobal)
		params.LayerShapes = s.shapesFor(dims, *s.lastGlobal)
	}
	payload, err := bitstream.Deserialize(r, params)
	if err != nil {
		return image.Image{}, errors.Wrap(err, "codec: deserializing enhancement payload")
	}
	if payload.Sequence != nil {
		s.lastSequence = payload.Sequence
	}
	if payload.Global != nil {
		s.lastGlobal = payload.Global
		dims := bitstream.DeriveDimensions(desc.Width, desc.Height, desc.ColourSpace, *s.lastGlobal)
		params.LayerShapes = s.shapesFor(dims, *s.lastGlobal)
		payload, err = redeserializeWithShapes(payloadBytes, params)
		if err != nil {
			return image.Image{}, errors.Wrap(err, "codec: re-deserializing with resolved shapes")
		}
	}
	if s.lastGlobal == nil {
		return image.Image{}, errors.New("codec: no Global record available to decode a non-key picture")
	}
	g := *s.lastGlobal

	if !s.running || s.desc != desc {
		s.reset(desc)
	}

	baseDesc.Width, baseDesc.Height = s.dims.Planes[0].LoQ1Width, s.dims.Planes[0].LoQ1Height
	reconBaseImg, err := s.baseCodec.DecodeFrame(au, baseDesc)
	if err != nil {
		return image.Image{}, errors.Wrap(err, "codec: external base codec decode")
	}

	qcfg := s.quantizeConfig()
	numPlanes := len(s.dims.Planes)
	isIDR := payload.Type == bitstream.PictureIDR
	planes := make([]surface.Surface, numPlanes)
	layerIdx := 0

	for p := 0; p < numPlanes; p++ {
		pd := s.dims.Planes[p]
		numLayers := g.NumResidualLayers()

		reconBasePels, err := pelsFromSurface(reconBaseImg.Planes[p])
		if err != nil {
			return image.Image{}, errors.Wrapf(err, "codec: reading reconstructed base plane %d", p)
		}
		l1Coeffs := payload.Residuals[layerIdx : layerIdx+numLayers]
		layerIdx += numLayers
		reconL1 := dequantizeLoQ(l1Coeffs, pd.LoQ1TileWidth, pd.LoQ1TileHeight, kindFor(g.ScalingModeLoQ1, g.TransformBlockSize),
			pd.LoQ1Width, pd.LoQ1Height, payload.Picture.StepWidthLoQ1, quantize.LoQ1, qcfg, isIDR, s.prevQM1[p])
		s.prevQM1[p] = reconL1.qmUsed
		correctedBase := resample.ComposeAdd(reconBasePels, reconL1.reconResidual)

		stage1, xw, xh, err := resample.Upsample(correctedBase, pd.LoQ1Width, pd.LoQ1Height, g.ScalingModeLoQ1, g.UpsampleKernel, g.AdaptiveCubicCoeffs)
		if err != nil {
			return image.Image{}, errors.Wrapf(err, "codec: upsampling plane %d loq1", p)
		}
		predictedFull, fw, fh, err := resample.Upsample(stage1, xw, xh, g.ScalingModeLoQ2, g.UpsampleKernel, g.AdaptiveCubicCoeffs)
		if err != nil {
			return image.Image{}, errors.Wrapf(err, "codec: upsampling plane %d loq2", p)
		}

		l2Coeffs := payload.Residuals[layerIdx : layerIdx+numLayers]
		layerIdx += numLayers
		stepWidth2 := chromaScaledStepWidth(payload.Picture.StepWidthLoQ2, p, g.ChromaStepWidthMultiplier)

		var finalResidual []int16
		pt := s.temporal[p]
		if g.TemporalEnabled && pt != nil {
			mask := temporal.ExtractMask(l2Coeffs[0])
			stripped := make([][]int16, len(l2Coeffs))
			stripped[0] = temporal.StripMask(l2Coeffs[0])
			copy(stripped[1:], l2Coeffs[1:])
			reconL2 := dequantizeLoQ(stripped, pd.LoQ2TileWidth, pd.LoQ2TileHeight, kindFor(g.ScalingModeLoQ2, g.TransformBlockSize),
				pd.LoQ2Width, pd.LoQ2Height, stepWidth2, quantize.LoQ2, qcfg, isIDR, s.prevQM2[p])
			s.prevQM2[p] = reconL2.qmUsed
			pt.transition(isIDR, true)
			perPictureIntra := payload.Picture.TemporalRefresh || pt.perPictureIntra(isIDR)
			pt.update(reconL2.reconResidual, mask, kindFor(g.ScalingModeLoQ2, g.TransformBlockSize).BlockSize(), perPictureIntra, g.TemporalTileIntraSignallingEnabled)
			finalResidual = pt.buffer
		} else {
			reconL2 := dequantizeLoQ(l2Coeffs, pd.LoQ2TileWidth, pd.LoQ2TileHeight, kindFor(g.ScalingModeLoQ2, g.TransformBlockSize),
				pd.LoQ2Width, pd.LoQ2Height, stepWidth2, quantize.LoQ2, qcfg, isIDR, s.prevQM2[p])
			s.prevQM2[p] = reconL2.qmUsed
			finalResidual = reconL2.reconResidual
		}

		out := resample.ComposeAdd(predictedFull, finalResidual)
		if p == 0 {
			out = s.dither.Apply(out, DitheringMode(payload.Picture.DitheringMode), payload.Picture.DitheringStrength, g.EnhancementBitDepth, s.frameIndex)
		}
		sfc, err := surfaceFromPels(out, fw, fh, desc.ElementWidth())
		if err != nil {
			return image.Image{}, errors.Wrapf(err, "codec: building output surface for plane %d", p)
		}
		planes[p] = sfc
	}

	s.frameIndex++
	return image.Image{Description: desc, Planes: planes, Timestamp: 0}, nil
}

// shapesFor flattens dims into the (plane, LoQ) ordered LayerShapes list
// Serialize/Deserialize expect, matching EncodeFrame's append order: every
// plane's LoQ-1 layers, then its LoQ-2 layers.
func (s *Session) shapesFor(dims bitstream.Dimensions, g bitstream.Global) []bitstream.LayerShape {
	n := g.NumResidualLayers()
	var shapes []bitstream.LayerShape
	for _, pd := range dims.Planes {
		for i := 0; i < n; i++ {
			shapes = append(shapes, bitstream.LayerShape{Width: pd.LoQ1TileWidth, Height: pd.LoQ1TileHeight})
		}
		for i := 0; i < n; i++ {
			shapes = append(shapes, bitstream.LayerShape{Width: pd.LoQ2TileWidth, Height: pd.LoQ2TileHeight})
		}
	}
	return shapes
}

// redeserializeWithShapes re-runs Deserialize now that a key picture's
// Global has revealed the per-layer shapes needed to parse the
// EncodedData body, which the first pass (params.LayerShapes empty)
// could not have supplied.
func redeserializeWithShapes(payloadBytes []byte, params bitstream.DeserializeParams) (bitstream.Payload, error) {
	return bitstream.Deserialize(bitio.NewReader(payloadBytes), params)
}
