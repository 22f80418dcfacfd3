/*
NAME
  lcevc is a command-line driver for package codec: it runs a Session's
  EncodeFrame or DecodeFrame loop over a raw YUV file, the way rv drives
  revid for a live capture pipeline but for one batch file at a time.

DESCRIPTION
  Encode mode reads full-resolution YUV frames from -i, drives a Session
  across them, and writes a stream of length-prefixed access units to -o.
  Decode mode reads that stream back and writes reconstructed YUV frames.

  This tool has no real host container to mux the enhancement payload
  into (spec.md §4.9's "host access unit" is, in a real deployment,
  whatever AVC/HEVC/VVC stream a separate system already produced); each
  frame's host AU here is a minimal synthetic single-slice NAL unit, just
  enough for package nal's insertion/extraction to round-trip through.
  The length-prefixed container around that is this tool's own framing,
  not part of the enhancement bitstream itself.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements the lcevc command-line batch encode/decode tool.
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lcevc/codec"
	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/report"
	"github.com/ausocean/lcevc/yuv"
)

const pkg = "lcevc: "

func main() {
	var (
		decode    = flag.Bool("d", false, "decode instead of encode")
		inPath    = flag.String("i", "", "input path (YUV for encode, .lvc container for decode)")
		outPath   = flag.String("o", "", "output path (.lvc container for encode, YUV for decode)")
		width     = flag.Int("width", 0, "picture width in pixels")
		height    = flag.Int("height", 0, "picture height in pixels")
		bitDepth  = flag.Int("bitdepth", config.DefaultBaseBitDepth, "enhancement bit depth")
		colour    = flag.Int("colourspace", int(image.YUV420), "colour space (0=Monochrome,1=YUV420,2=YUV422,3=YUV444)")
		baseCodec = flag.String("basecodec", "", "path to the external base codec binary")
		baseArgs  = flag.String("basecodec-args", "", "space-separated extra args passed to the base codec")
		stepLoQ1  = flag.Int("step1", config.DefaultStepWidth, "LoQ-1 step width")
		stepLoQ2  = flag.Int("step2", config.DefaultStepWidth, "LoQ-2 step width")
		temporal  = flag.Bool("temporal", false, "enable temporal prediction")
		workDir   = flag.String("workdir", "", "scratch directory for base codec frame files (defaults to a temp dir)")
		logPath   = flag.String("log", "", "log file path (stderr if empty)")
	)
	flag.Parse()

	log := newLogger(*logPath)

	if *inPath == "" || *outPath == "" {
		log.Fatal(pkg + "both -i and -o are required")
	}
	if *width <= 0 || *height <= 0 {
		log.Fatal(pkg + "-width and -height are required")
	}

	dir := *workDir
	if dir == "" {
		d, err := os.MkdirTemp("", "lcevc-")
		if err != nil {
			log.Fatal(pkg+"could not create work directory", "error", err.Error())
		}
		defer os.RemoveAll(d)
		dir = d
	}

	cfg := &config.Config{
		Logger:              log,
		BaseBitDepth:        *bitDepth,
		EnhancementBitDepth: *bitDepth,
		ColourSpace:         image.ColourSpace(*colour),
		StepWidthLoQ1:       int32(*stepLoQ1),
		StepWidthLoQ2:       int32(*stepLoQ2),
		TemporalEnabled:     *temporal,
		BaseCodecPath:       *baseCodec,
		InputPath:           *inPath,
		OutputPath:          *outPath,
	}
	if *baseArgs != "" {
		cfg.BaseCodecArgs = splitArgs(*baseArgs)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(pkg+"invalid configuration", "error", err.Error())
	}

	s, err := codec.New(cfg, dir)
	if err != nil {
		log.Fatal(pkg+"could not create session", "error", err.Error())
	}
	psnr := report.NewPSNRReporter()
	s.SetReporters(nil, psnr)

	desc := image.Description{Width: *width, Height: *height, BitDepth: *bitDepth, ColourSpace: image.ColourSpace(*colour)}

	if *decode {
		if err := runDecode(s, *inPath, *outPath, desc, log); err != nil {
			log.Fatal(pkg+"decode failed", "error", err.Error())
		}
		return
	}
	if err := runEncode(s, *inPath, *outPath, desc, log); err != nil {
		log.Fatal(pkg+"encode failed", "error", err.Error())
	}
	log.Info("done", "mean psnr", psnr.MeanPSNR())
}

func newLogger(path string) logging.Logger {
	if path == "" {
		return logging.New(logging.Info, os.Stderr, false)
	}
	fileLog := &lumberjack.Logger{Filename: path, MaxSize: 100}
	return logging.New(logging.Info, fileLog, false)
}

func splitArgs(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

// runEncode drives s.EncodeFrame across every frame of in, writing each
// resulting access unit to out as a 4-byte big-endian length prefix
// followed by the unit's bytes.
func runEncode(s *codec.Session, in, out string, desc image.Description, log logging.Logger) error {
	r := yuv.NewWith(log, in, desc, false)
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Stop()

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()

	var lenBuf [4]byte
	frameIndex := 0
	for {
		img, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		hostAU := syntheticHostAU(frameIndex)
		au, stats, err := s.EncodeFrame(img, hostAU, frameIndex == 0)
		if err != nil {
			return err
		}
		log.Debug("encoded frame", "index", frameIndex, "bytes", len(au), "residual bits/block", stats.BitsPerBlock())

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(au)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := w.Write(au); err != nil {
			return err
		}
		frameIndex++
	}
	return nil
}

// runDecode drives s.DecodeFrame across every length-prefixed access unit
// in, writing the reconstructed pictures to out as raw YUV.
func runDecode(s *codec.Session, in, out string, desc image.Description, log logging.Logger) error {
	r, err := os.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()

	w := yuv.NewWith(log, out, desc, false)
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	var lenBuf [4]byte
	frameIndex := 0
	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		au := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, au); err != nil {
			return err
		}

		img, err := s.DecodeFrame(au, desc)
		if err != nil {
			return err
		}
		if err := w.WriteFrame(img); err != nil {
			return err
		}
		log.Debug("decoded frame", "index", frameIndex)
		frameIndex++
	}
	return nil
}

// syntheticHostAU builds the minimal single-slice NAL unit this tool uses
// as a stand-in host access unit, see the package doc comment.
func syntheticHostAU(frameIndex int) []byte {
	const sliceType = 1
	return []byte{0x00, 0x00, 0x01, sliceType, byte(frameIndex), byte(frameIndex >> 8)}
}
