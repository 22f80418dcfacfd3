/*
NAME
  yuv.go

DESCRIPTION
  yuv.go provides File, a raw planar-YUV reader/writer used by
  orchestration to source/sink uncompressed pictures, adapted from
  device/file.AVFile's Set/Start/Stop/Read shape to a fixed-frame-size,
  seekable container keyed on an image.Description rather than an
  arbitrary byte stream.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package yuv provides a raw planar-YUV file container: fixed-size-frame
// reading/writing of image.Image values, and filename-convention format
// inference for files that carry their resolution/bit-depth/frame-rate in
// their name.
package yuv

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/surface"
	"github.com/ausocean/utils/logging"
)

// File is an implementation of a fixed-frame-size YUV container, the way
// AVFile is an implementation of AVDevice for arbitrary media files.
type File struct {
	f         *os.File
	path      string
	desc      image.Description
	loop      bool
	isRunning bool
	log       logging.Logger
	set       bool
	frameSize int
	mu        sync.Mutex
}

// New returns a new File with no path/description set; Set must be
// called before Start.
func New(l logging.Logger) *File { return &File{log: l} }

// NewWith returns a new File with required parameters provided, so Set
// does not need to be called.
func NewWith(l logging.Logger, path string, desc image.Description, loop bool) *File {
	return &File{log: l, path: path, desc: desc, loop: loop, set: true, frameSize: frameSize(desc)}
}

// frameSize returns the number of bytes one frame occupies on disk: the
// sum of each plane's width*height*elementWidth.
func frameSize(desc image.Description) int {
	n := desc.ColourSpace.NumPlanes()
	ew := int(desc.ElementWidth())
	total := 0
	for p := 0; p < n; p++ {
		w, h, err := desc.PlaneDimensions(p)
		if err != nil {
			return 0
		}
		total += w * h * ew
	}
	return total
}

// Set assigns path, desc, and loop, matching AVFile.Set's role of
// applying configuration before Start.
func (f *File) Set(path string, desc image.Description, loop bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = path
	f.desc = desc
	f.loop = loop
	f.frameSize = frameSize(desc)
	f.set = true
}

// Start opens path for reading (if it exists) and creates it for writing
// otherwise, matching AVFile.Start's open-on-demand behaviour.
func (f *File) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.set {
		return errors.New("yuv: File has not been set")
	}
	var err error
	f.f, err = os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrap(err, "yuv: could not open file")
	}
	f.isRunning = true
	return nil
}

// Stop closes the underlying file.
func (f *File) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.isRunning = false
	return err
}

// IsRunning reports whether Start has been called without a matching
// Stop.
func (f *File) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f != nil && f.isRunning
}

// ReadFrame reads one frame's worth of bytes and decodes it into an
// image.Image per f's Description. On reaching end of file: if loop is
// set, it seeks back to the start and retries once, matching AVFile's
// loop-on-EOF behaviour; otherwise it returns io.EOF.
func (f *File) ReadFrame() (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return image.Image{}, errors.New("yuv: file is closed, File not started")
	}
	buf := make([]byte, f.frameSize)
	_, err := io.ReadFull(f.f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		if !f.loop {
			return image.Image{}, io.EOF
		}
		f.log.Info("looping yuv input file")
		if _, err := f.f.Seek(0, io.SeekStart); err != nil {
			return image.Image{}, errors.Wrap(err, "yuv: could not seek to start for loop")
		}
		if _, err := io.ReadFull(f.f, buf); err != nil {
			return image.Image{}, errors.Wrap(err, "yuv: could not read after loop seek")
		}
	} else if err != nil {
		return image.Image{}, errors.Wrap(err, "yuv: read error")
	}
	return decodeFrame(buf, f.desc)
}

// WriteFrame encodes img per its own Description and writes it at the
// file's current offset, which Start leaves at the beginning of the file.
func (f *File) WriteFrame(img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return errors.New("yuv: file is closed, File not started")
	}
	buf, err := encodeFrame(img)
	if err != nil {
		return err
	}
	_, err = f.f.Write(buf)
	return errors.Wrap(err, "yuv: write error")
}

// decodeFrame unpacks buf's planar bytes into an image.Image surface per
// plane, per desc.
func decodeFrame(buf []byte, desc image.Description) (image.Image, error) {
	n := desc.ColourSpace.NumPlanes()
	planes := make([]surface.Surface, n)
	ew := desc.ElementWidth()
	off := 0
	for p := 0; p < n; p++ {
		w, h, err := desc.PlaneDimensions(p)
		if err != nil {
			return image.Image{}, err
		}
		b, err := surface.NewBuilder(w, h, ew)
		if err != nil {
			return image.Image{}, err
		}
		stride := w * int(ew)
		for y := 0; y < h; y++ {
			row := buf[off+y*stride : off+(y+1)*stride]
			for x := 0; x < w; x++ {
				if ew == surface.Width8 {
					b.Set8(x, y, row[x])
				} else {
					b.Set16(x, y, uint16(row[2*x])|uint16(row[2*x+1])<<8)
				}
			}
		}
		off += stride * h
		s, err := b.Finish()
		if err != nil {
			return image.Image{}, err
		}
		planes[p] = s
	}
	return image.New(desc, planes, 0)
}

// encodeFrame packs img's planes into a single planar byte buffer.
func encodeFrame(img image.Image) ([]byte, error) {
	buf := make([]byte, 0, frameSize(img.Description))
	for _, s := range img.Planes {
		stride := s.Width() * int(s.ElementWidth())
		row := make([]byte, stride)
		for y := 0; y < s.Height(); y++ {
			for x := 0; x < s.Width(); x++ {
				if s.ElementWidth() == surface.Width8 {
					v, err := s.At8(x, y)
					if err != nil {
						return nil, err
					}
					row[x] = v
				} else {
					v, err := s.At16(x, y)
					if err != nil {
						return nil, err
					}
					row[2*x] = byte(v)
					row[2*x+1] = byte(v >> 8)
				}
			}
			buf = append(buf, row...)
		}
	}
	return buf, nil
}
