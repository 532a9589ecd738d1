package scene

import (
	"image/color"
	"strings"

	"github.com/skip2/go-qrcode"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/scenerender/internal/errs"
)

type elementParser func(o object) (Element, error)

// elementParsers maps the "type" tag of an element to its parser.
var elementParsers = map[string]elementParser{
	KindRectangle: parseRectangle,
	KindQRCode:    parseQRCode,
}

func parseElement(n *yaml.Node, path string) (Element, error) {
	o, err := asObject(n, path)
	if err != nil {
		return nil, err
	}
	kind, err := o.str("type")
	if err != nil {
		return nil, err
	}
	parse, ok := elementParsers[kind]
	if !ok {
		return nil, &errs.ElementError{Path: path, Type: kind}
	}
	return parse(o)
}

func parseGeometry(o object) (Rect, error) {
	var v [4]float64
	for i, key := range []string{"x", "y", "width", "height"} {
		f, err := o.number(key)
		if err != nil {
			return Rect{}, err
		}
		v[i] = f
	}
	return Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func parseRectangle(o object) (Element, error) {
	geom, err := parseGeometry(o)
	if err != nil {
		return nil, err
	}
	c, err := o.colour("colour")
	if err != nil {
		return nil, err
	}
	return &Rectangle{Geometry: geom, Colour: c}, nil
}

func parseQRCode(o object) (Element, error) {
	geom, err := parseGeometry(o)
	if err != nil {
		return nil, err
	}
	content, err := o.str("content")
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, errs.Schema(join(o.path, "content"), "must not be empty")
	}
	fg, err := o.colour("colour")
	if err != nil {
		return nil, err
	}

	q := &QRCode{
		Geometry:   geom,
		Content:    content,
		Colour:     fg,
		Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Level:      QRMedium,
		Border:     true,
	}
	if o.has("background") {
		if q.Background, err = o.colour("background"); err != nil {
			return nil, err
		}
	}
	if o.has("level") {
		level, err := o.str("level")
		if err != nil {
			return nil, err
		}
		switch l := QRLevel(strings.ToUpper(level)); l {
		case QRLow, QRMedium, QRHigh, QRHighest:
			q.Level = l
		default:
			return nil, errs.Schema(join(o.path, "level"), "expected one of L, M, Q, H, got %q", level)
		}
	}
	if _, err := qrcode.New(q.Content, q.Level.Recovery()); err != nil {
		return nil, errs.Schema(join(o.path, "content"), "cannot be encoded at level %s: %v", q.Level, err)
	}
	if o.has("border") {
		if q.Border, err = o.boolean("border"); err != nil {
			return nil, err
		}
	}
	return q, nil
}
