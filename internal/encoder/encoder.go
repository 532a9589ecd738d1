// Package encoder writes finished pixel buffers to image files.
package encoder

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ivlev/scenerender/internal/errs"
)

// Encoder stores tightly packed, row-major RGBA pixels in a file.
type Encoder interface {
	// Extension is the file name suffix, without the dot.
	Extension() string
	Encode(path string, width, height, channels int, pix []byte) error
}

// SideLimiter is implemented by encoders whose format caps the width and
// height of an image.
type SideLimiter interface {
	MaxSide() int
}

// CheckSize fails when enc cannot store a width x height image.
func CheckSize(enc Encoder, width, height int) error {
	l, ok := enc.(SideLimiter)
	if !ok {
		return nil
	}
	if limit := l.MaxSide(); width > limit || height > limit {
		return fmt.Errorf("%w: %dx%d exceeds the %s limit of %d pixels per side", errs.ErrEncode, width, height, enc.Extension(), limit)
	}
	return nil
}

// Formats lists the names accepted by New.
var Formats = []string{"tga", "png", "bmp", "tiff"}

// New returns the encoder for format. The empty string selects TGA.
func New(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "tga", "":
		return TGAEncoder{}, nil
	case "png":
		return &imageEncoder{ext: "png", encode: png.Encode}, nil
	case "bmp":
		return &imageEncoder{ext: "bmp", encode: bmp.Encode}, nil
	case "tiff", "tif":
		return &imageEncoder{ext: "tiff", encode: func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Uncompressed})
		}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q (want one of %s)", errs.ErrUsage, format, strings.Join(Formats, ", "))
	}
}

func checkBuffer(width, height, channels int, pix []byte) error {
	if channels != 4 {
		return fmt.Errorf("%w: %d channels, only RGBA is supported", errs.ErrEncode, channels)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: invalid size %dx%d", errs.ErrEncode, width, height)
	}
	if len(pix) != width*height*channels {
		return fmt.Errorf("%w: %dx%d image needs %d bytes, got %d", errs.ErrEncode, width, height, width*height*channels, len(pix))
	}
	return nil
}

// writeFile streams a file through write, removing it again on failure so
// no truncated image is left behind.
func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrEncode, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %v", errs.ErrEncode, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("%w %s: %v", errs.ErrEncode, path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w %s: %v", errs.ErrEncode, path, err)
	}
	return nil
}

// imageEncoder adapts an image/... style encoder.
type imageEncoder struct {
	ext    string
	encode func(io.Writer, image.Image) error
}

func (e *imageEncoder) Extension() string { return e.ext }

func (e *imageEncoder) Encode(path string, width, height, channels int, pix []byte) error {
	if err := checkBuffer(width, height, channels, pix); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %s cannot store an empty %dx%d image", errs.ErrEncode, e.ext, width, height)
	}
	img := &image.NRGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return writeFile(path, func(w io.Writer) error {
		return e.encode(w, img)
	})
}
