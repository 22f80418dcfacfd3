/*
NAME
  report.go

DESCRIPTION
  report.go defines the reporting interfaces an orchestration Session
  calls after reconstructing a picture: an MD5Reporter for per-plane
  conformance digests and a PSNRReporter for per-plane quality scores,
  matching the external reporting surface `util/include/LcevcMd5.hpp`
  and `decoder/src/Probe.cpp` describe for the reference decoder, with
  one concrete PSNRReporter implementation built on gonum/stat the way
  cmd/rv/probe.go uses gonum/stat for its own frame-quality scores.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package report defines the MD5/PSNR reporting surface used to verify
// and score reconstructed pictures, independent of the core codec path.
package report

import (
	"crypto/md5"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MD5Reporter receives one 16-byte MD5 digest per plane of a
// reconstructed picture, matching LCEVC_MD5's per-plane digest array
// (LcevcMd5.hpp's lcevc_md5_imgb).
type MD5Reporter interface {
	ReportMD5(frameIndex int, digests [][16]byte)
}

// PSNRReporter receives one PSNR score (in dB) per plane of a
// reconstructed picture, comparing it against a reference.
type PSNRReporter interface {
	ReportPSNR(frameIndex int, psnr []float64)
}

// PlaneDigest computes the MD5 digest of one plane's pixel bytes, in
// raster order, matching lcevc_md5_update's per-plane accumulation.
func PlaneDigest(plane []int16, bitDepth int) [16]byte {
	h := md5.New()
	if bitDepth <= 8 {
		buf := make([]byte, len(plane))
		for i, v := range plane {
			buf[i] = byte(v)
		}
		h.Write(buf)
	} else {
		buf := make([]byte, 2*len(plane))
		for i, v := range plane {
			buf[2*i] = byte(v)
			buf[2*i+1] = byte(v >> 8)
		}
		h.Write(buf)
	}
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PlanePSNR computes the peak signal-to-noise ratio, in dB, between a
// reconstructed and reference plane of the same length, using the given
// bit depth's peak value. Returns +Inf when the planes are identical.
func PlanePSNR(reconstructed, reference []int16, bitDepth int) float64 {
	if len(reconstructed) != len(reference) || len(reconstructed) == 0 {
		return math.NaN()
	}
	sq := make([]float64, len(reconstructed))
	for i := range reconstructed {
		d := float64(reconstructed[i]) - float64(reference[i])
		sq[i] = d * d
	}
	mse := stat.Mean(sq, nil)
	if mse == 0 {
		return math.Inf(1)
	}
	peak := float64(int(1)<<uint(bitDepth) - 1)
	return 10 * math.Log10(peak*peak/mse)
}

// gonumPSNRReporter is the concrete PSNRReporter backing a runnable
// orchestration Session when no caller-supplied reporter is set.
type gonumPSNRReporter struct {
	scores [][]float64 // scores[frameIndex] = per-plane PSNR.
}

// NewPSNRReporter returns a PSNRReporter that records every reported
// score for later retrieval via Scores, useful for an end-to-end test
// harness or a CLI's summary printout.
func NewPSNRReporter() *gonumPSNRReporter {
	return &gonumPSNRReporter{}
}

func (r *gonumPSNRReporter) ReportPSNR(frameIndex int, psnr []float64) {
	for len(r.scores) <= frameIndex {
		r.scores = append(r.scores, nil)
	}
	r.scores[frameIndex] = append([]float64(nil), psnr...)
}

// Scores returns the per-frame, per-plane PSNR scores recorded so far.
func (r *gonumPSNRReporter) Scores() [][]float64 {
	return r.scores
}

// MeanPSNR returns the mean PSNR across every plane of every reported
// frame, using gonum/stat.Mean the way cmd/rv/probe.go averages its own
// frame scores.
func (r *gonumPSNRReporter) MeanPSNR() float64 {
	var all []float64
	for _, frame := range r.scores {
		all = append(all, frame...)
	}
	if len(all) == 0 {
		return math.NaN()
	}
	return stat.Mean(all, nil)
}
