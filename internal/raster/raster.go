// Package raster paints scene images onto pixel buffers.
//
// Canvas sizes and element edges are rounded with math.Round, i.e. halves
// are rounded away from zero. Painting is plain overdraw: a later element
// replaces the bytes of every pixel it covers, alpha included.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/scenerender/internal/errs"
	"github.com/ivlev/scenerender/internal/scene"
	"github.com/ivlev/scenerender/internal/system"
)

// Dimensions returns the canvas size of img at res. Negative sizes are
// clamped to zero.
func Dimensions(img scene.Image, res scene.Resolution) (width, height int) {
	return max(toInt(img.Width*float64(res.Width)), 0), max(toInt(img.Height*float64(res.Height)), 0)
}

// MaxCanvasPixels bounds the area of a single canvas, i.e. a 1 GiB buffer.
const MaxCanvasPixels = 1 << 28

// CheckSize reports whether a w x h canvas may be allocated.
func CheckSize(w, h int) error {
	if w > 0 && h > MaxCanvasPixels/w {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", errs.ErrCanvasTooLarge, w, h, MaxCanvasPixels)
	}
	return nil
}

// Render paints img at res into a newly allocated buffer.
func Render(img scene.Image, res scene.Resolution) (*image.NRGBA, error) {
	return NewRenderer(nil).Render(img, res)
}

// Renderer paints images, optionally drawing buffers from a pool.
// It is safe for concurrent use when the pool is.
type Renderer struct {
	pool *system.BufferPool
}

func NewRenderer(pool *system.BufferPool) *Renderer {
	return &Renderer{pool: pool}
}

// Render paints img at res. The returned buffer has its origin at (0, 0)
// and a stride of exactly four bytes per pixel, so Pix can be handed to an
// encoder as is. Pass it to Release once it has been written out.
func (r *Renderer) Render(img scene.Image, res scene.Resolution) (*image.NRGBA, error) {
	w, h := Dimensions(img, res)
	if err := CheckSize(w, h); err != nil {
		return nil, err
	}
	buf := r.alloc(image.Rect(0, 0, w, h))
	fill(buf, buf.Rect, img.Background)

	for i, el := range img.Elements {
		if err := paint(buf, el, fmt.Sprintf("elements[%d]", i)); err != nil {
			r.Release(buf)
			return nil, err
		}
	}
	return buf, nil
}

// Release returns buf to the pool, if there is one.
func (r *Renderer) Release(buf *image.NRGBA) {
	if r.pool != nil {
		r.pool.Put(buf)
	}
}

func (r *Renderer) alloc(rect image.Rectangle) *image.NRGBA {
	if r.pool == nil {
		return image.NewNRGBA(rect)
	}
	return r.pool.Get(rect)
}

// paint draws el; path names the element in error messages.
func paint(buf *image.NRGBA, el scene.Element, path string) error {
	switch el := el.(type) {
	case *scene.Rectangle:
		fill(buf, clip(buf.Rect, el.Bounds()), el.Colour)
		return nil
	case *scene.QRCode:
		return paintQRCode(buf, el, path)
	default:
		kind := "<nil>"
		if el != nil {
			kind = el.Kind()
		}
		return &errs.ElementError{Path: path, Type: kind}
	}
}

// place converts normalized geometry into pixel coordinates on a canvas of
// the given size. The result is not clipped.
func place(canvas image.Rectangle, g scene.Rect) image.Rectangle {
	w, h := float64(canvas.Dx()), float64(canvas.Dy())
	x0, y0 := toInt(g.X*w), toInt(g.Y*h)
	return image.Rectangle{
		Min: image.Point{X: x0, Y: y0},
		Max: image.Point{X: x0 + toInt(g.Width*w), Y: y0 + toInt(g.Height*h)},
	}
}

// clip returns the part of g that lies on the canvas. Starts are clamped
// at zero and ends at the canvas size; the result may be empty.
func clip(canvas image.Rectangle, g scene.Rect) image.Rectangle {
	return place(canvas, g).Intersect(canvas)
}

// fill sets every pixel of rect, which must lie within buf, to c.
func fill(buf *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	if rect.Empty() {
		return
	}
	px := [4]byte{c.R, c.G, c.B, c.A}
	first := buf.PixOffset(rect.Min.X, rect.Min.Y)
	row := buf.Pix[first : first+rect.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		copy(row[i:i+4], px[:])
	}
	for y := rect.Min.Y + 1; y < rect.Max.Y; y++ {
		off := buf.PixOffset(rect.Min.X, y)
		copy(buf.Pix[off:off+len(row)], row)
	}
}

func paintQRCode(buf *image.NRGBA, q *scene.QRCode, path string) error {
	full := place(buf.Rect, q.Bounds())
	area := full.Intersect(buf.Rect)
	if area.Empty() {
		return nil
	}

	code, err := qrcode.New(q.Content, q.Level.Recovery())
	if err != nil {
		return errs.Schema(path+".content", "cannot be encoded at level %s: %v", q.Level, err)
	}
	code.DisableBorder = !q.Border
	modules := code.Bitmap()
	n := len(modules)
	if n == 0 {
		return nil
	}

	fg := [4]byte{q.Colour.R, q.Colour.G, q.Colour.B, q.Colour.A}
	bg := [4]byte{q.Background.R, q.Background.G, q.Background.B, q.Background.A}
	w, h := full.Dx(), full.Dy()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := modules[(y-full.Min.Y)*n/h]
		off := buf.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x++ {
			px := bg
			if row[(x-full.Min.X)*n/w] {
				px = fg
			}
			copy(buf.Pix[off:off+4], px[:])
			off += 4
		}
	}
	return nil
}

// toInt rounds f half away from zero, saturating far outside the range any
// canvas can use so the conversion never overflows.
func toInt(f float64) int {
	const limit = 1 << 30
	switch r := math.Round(f); {
	case r > limit:
		return limit
	case r < -limit:
		return -limit
	default:
		return int(r)
	}
}
