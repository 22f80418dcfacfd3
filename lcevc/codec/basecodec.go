/*
NAME
  basecodec.go

DESCRIPTION
  basecodec.go drives the external base codec binary spec.md §6
  describes: invoked by command line with YUV in, elementary stream
  out, plus a reconstructed YUV, once per picture, with a blocking wait
  per spec.md §5's concurrency model. Grounded on the teacher's
  subprocess-driving devices (device/raspivid.Start's exec.Command
  construction), adapted from a long-lived streaming subprocess to a
  one-shot run-to-completion invocation.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/yuv"
)

// BaseCodec drives cfg.BaseCodecPath once per picture, feeding it a raw
// YUV plane set and reading back a bitstream plus a reconstructed YUV,
// matching spec.md §6's "only the reconstruction + bitstream are
// consumed; no API is assumed".
type BaseCodec struct {
	cfg *config.Config
	log logging.Logger
	dir string
}

// NewBaseCodec returns a BaseCodec that stages its per-call YUV/ES files
// under dir (typically a process-lifetime temp directory).
func NewBaseCodec(cfg *config.Config, dir string) *BaseCodec {
	return &BaseCodec{cfg: cfg, log: cfg.Logger, dir: dir}
}

// EncodeFrame writes img as a raw YUV frame, invokes the base codec's
// encode args, and reads back both the elementary stream bytes and the
// reconstructed frame the base codec decoded them to.
func (b *BaseCodec) EncodeFrame(img image.Image) (recon image.Image, bitstream []byte, err error) {
	inPath := filepath.Join(b.dir, "base_in.yuv")
	esPath := filepath.Join(b.dir, "base_out.es")
	recPath := filepath.Join(b.dir, "base_rec.yuv")

	w := yuv.NewWith(b.log, inPath, img.Description, false)
	if err := w.Start(); err != nil {
		return image.Image{}, nil, errors.Wrap(err, "codec: opening base codec input")
	}
	if err := w.WriteFrame(img); err != nil {
		w.Stop()
		return image.Image{}, nil, errors.Wrap(err, "codec: writing base codec input")
	}
	w.Stop()

	args := append(append([]string{}, b.cfg.BaseCodecArgs...), "-i", inPath, "-o", esPath, "-rec", recPath)
	if b.log != nil {
		b.log.Debug("invoking base codec", "path", b.cfg.BaseCodecPath, "args", args)
	}
	cmd := exec.Command(b.cfg.BaseCodecPath, args...)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return image.Image{}, nil, errors.Wrapf(runErr, "codec: base codec failed: %s", out)
	}

	bitstream, err = os.ReadFile(esPath)
	if err != nil {
		return image.Image{}, nil, errors.Wrap(err, "codec: reading base codec bitstream")
	}

	r := yuv.NewWith(b.log, recPath, img.Description, false)
	if err := r.Start(); err != nil {
		return image.Image{}, nil, errors.Wrap(err, "codec: opening base codec reconstruction")
	}
	defer r.Stop()
	recon, err = r.ReadFrame()
	if err != nil {
		return image.Image{}, nil, errors.Wrap(err, "codec: reading base codec reconstruction")
	}
	return recon, bitstream, nil
}

// DecodeFrame writes bitstream to a temporary elementary-stream file,
// invokes the base codec's decode args, and reads back the
// reconstructed frame per desc.
func (b *BaseCodec) DecodeFrame(bitstream []byte, desc image.Description) (image.Image, error) {
	esPath := filepath.Join(b.dir, "base_in.es")
	recPath := filepath.Join(b.dir, "base_dec.yuv")

	if err := os.WriteFile(esPath, bitstream, 0644); err != nil {
		return image.Image{}, errors.Wrap(err, "codec: writing base codec bitstream")
	}

	args := append(append([]string{}, b.cfg.BaseCodecArgs...), "-d", "-i", esPath, "-o", recPath)
	if b.log != nil {
		b.log.Debug("invoking base codec decoder", "path", b.cfg.BaseCodecPath, "args", args)
	}
	cmd := exec.Command(b.cfg.BaseCodecPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return image.Image{}, errors.Wrapf(err, "codec: base codec decode failed: %s", out)
	}

	r := yuv.NewWith(b.log, recPath, desc, false)
	if err := r.Start(); err != nil {
		return image.Image{}, errors.Wrap(err, "codec: opening base codec decode output")
	}
	defer r.Stop()
	return r.ReadFrame()
}
