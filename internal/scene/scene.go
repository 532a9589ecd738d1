// Package scene holds the validated, in-memory form of a scene description.
package scene

import (
	"fmt"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// Resolution is a physical output size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// DirName is the name of the subdirectory that holds every image rendered
// at this resolution.
func (r Resolution) DirName() string {
	return fmt.Sprintf("res%dx%d", r.Width, r.Height)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Rect is geometry expressed as fractions of the canvas size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Element is one drawable item of an image. The set of implementations is
// closed: only types in this package satisfy it.
type Element interface {
	Kind() string
	Bounds() Rect
	element()
}

// Rectangle is a solid axis-aligned box.
type Rectangle struct {
	Geometry Rect
	Colour   color.NRGBA
}

func (*Rectangle) Kind() string   { return KindRectangle }
func (r *Rectangle) Bounds() Rect { return r.Geometry }
func (*Rectangle) element()       {}

// QRLevel is the error correction level of a QR code.
type QRLevel string

const (
	QRLow     QRLevel = "L"
	QRMedium  QRLevel = "M"
	QRHigh    QRLevel = "Q"
	QRHighest QRLevel = "H"
)

// Recovery maps the level onto the encoder's recovery level.
func (l QRLevel) Recovery() qrcode.RecoveryLevel {
	switch l {
	case QRLow:
		return qrcode.Low
	case QRHigh:
		return qrcode.High
	case QRHighest:
		return qrcode.Highest
	}
	return qrcode.Medium
}

// QRCode is a QR symbol encoding Content, stretched over Geometry.
type QRCode struct {
	Geometry   Rect
	Content    string
	Colour     color.NRGBA // dark modules
	Background color.NRGBA // light modules
	Level      QRLevel
	Border     bool // keep the quiet zone around the symbol
}

func (*QRCode) Kind() string   { return KindQRCode }
func (q *QRCode) Bounds() Rect { return q.Geometry }
func (*QRCode) element()       {}

const (
	KindRectangle = "rectangle"
	KindQRCode    = "qrcode"
)

// Image is one output picture. Width and Height scale the target
// resolution; elements are painted in order, later ones on top.
type Image struct {
	Name       string
	Width      float64
	Height     float64
	Background color.NRGBA
	Elements   []Element
}

// Description is a whole validated scene. It is not modified after Parse.
type Description struct {
	OutputPath  string
	Resolutions []Resolution
	Images      []Image
}
