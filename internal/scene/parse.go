package scene

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scenerender/internal/colour"
	"github.com/ivlev/scenerender/internal/errs"
)

// Load reads and validates the description stored at path.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", errs.ErrFileOpen, path, err)
	}
	return Parse(data)
}

// Parse validates a JSON (or YAML) scene description. Validation stops at
// the first problem; no partial description is ever returned.
func Parse(data []byte) (*Description, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedInput, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", errs.ErrMalformedInput)
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be an object", errs.ErrMalformedInput)
	}
	return parseDescription(fields(root))
}

type object struct {
	path   string
	node   *yaml.Node
	values map[string]*yaml.Node
}

func fields(n *yaml.Node) object {
	values := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		values[n.Content[i].Value] = resolve(n.Content[i+1])
	}
	return object{node: n, values: values}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func at(n *yaml.Node) string {
	return fmt.Sprintf("line %d, column %d", n.Line, n.Column)
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	}
	switch n.ShortTag() {
	case "!!str":
		return "string"
	case "!!int", "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	}
	return n.ShortTag()
}

func (o object) get(key string) (*yaml.Node, string, error) {
	path := join(o.path, key)
	n, ok := o.values[key]
	if !ok {
		return nil, path, errs.Schema(path, "missing required field (object at %s)", at(o.node))
	}
	return n, path, nil
}

func (o object) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o object) str(key string) (string, error) {
	n, path, err := o.get(key)
	if err != nil {
		return "", err
	}
	return asString(n, path)
}

func asString(n *yaml.Node, path string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", errs.Schema(path, "expected string, got %s (%s)", describe(n), at(n))
	}
	return n.Value, nil
}

func (o object) number(key string) (float64, error) {
	n, path, err := o.get(key)
	if err != nil {
		return 0, err
	}
	return asNumber(n, path)
}

func asNumber(n *yaml.Node, path string) (float64, error) {
	tag := n.ShortTag()
	if n.Kind != yaml.ScalarNode || (tag != "!!int" && tag != "!!float") {
		return 0, errs.Schema(path, "expected number, got %s (%s)", describe(n), at(n))
	}
	var v float64
	if err := n.Decode(&v); err != nil {
		return 0, errs.Schema(path, "expected number: %v", err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errs.Schema(path, "expected a finite number, got %s (%s)", n.Value, at(n))
	}
	return v, nil
}

func (o object) boolean(key string) (bool, error) {
	n, path, err := o.get(key)
	if err != nil {
		return false, err
	}
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return false, errs.Schema(path, "expected boolean, got %s (%s)", describe(n), at(n))
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return false, errs.Schema(path, "expected boolean: %v", err)
	}
	return v, nil
}

func (o object) colour(key string) (color.NRGBA, error) {
	text, err := o.str(key)
	if err != nil {
		return color.NRGBA{}, err
	}
	c, err := colour.Parse(text)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%s: %w", join(o.path, key), err)
	}
	return c, nil
}

func (o object) sequence(key string) ([]*yaml.Node, string, error) {
	n, path, err := o.get(key)
	if err != nil {
		return nil, path, err
	}
	if n.Kind != yaml.SequenceNode {
		return nil, path, errs.Schema(path, "expected array, got %s (%s)", describe(n), at(n))
	}
	items := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		items[i] = resolve(c)
	}
	return items, path, nil
}

func asObject(n *yaml.Node, path string) (object, error) {
	if n.Kind != yaml.MappingNode {
		return object{}, errs.Schema(path, "expected object, got %s (%s)", describe(n), at(n))
	}
	o := fields(n)
	o.path = path
	return o, nil
}

func parseDescription(root object) (*Description, error) {
	out, err := root.str("outputPath")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, errs.Schema("outputPath", "must not be empty")
	}

	resolutions, err := parseResolutions(root)
	if err != nil {
		return nil, err
	}

	items, path, err := root.sequence("images")
	if err != nil {
		return nil, err
	}

	desc := &Description{
		OutputPath:  filepath.Clean(out),
		Resolutions: resolutions,
		Images:      make([]Image, 0, len(items)),
	}
	seen := make(map[string]int, len(items))
	for i, item := range items {
		img, err := parseImage(item, index(path, i))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[img.Name]; dup {
			return nil, errs.Schema(join(index(path, i), "name"), "duplicate image name %q (also used by %s)", img.Name, index(path, prev))
		}
		seen[img.Name] = i
		desc.Images = append(desc.Images, img)
	}
	return desc, nil
}

func parseResolutions(root object) ([]Resolution, error) {
	items, path, err := root.sequence("resolutions")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.Schema(path, "at least one resolution is required")
	}

	resolutions := make([]Resolution, 0, len(items))
	for i, item := range items {
		p := index(path, i)
		if item.Kind != yaml.SequenceNode || len(item.Content) != 2 {
			return nil, errs.Schema(p, "expected [width, height] pair (%s)", at(item))
		}
		var dims [2]int
		for j, c := range item.Content {
			v, err := asNumber(resolve(c), index(p, j))
			if err != nil {
				return nil, err
			}
			if v != math.Trunc(v) || v < 1 || v > math.MaxInt32 {
				return nil, errs.Schema(index(p, j), "must be a positive integer, got %v", v)
			}
			dims[j] = int(v)
		}
		resolutions = append(resolutions, Resolution{Width: dims[0], Height: dims[1]})
	}
	return resolutions, nil
}

func parseImage(n *yaml.Node, path string) (Image, error) {
	o, err := asObject(n, path)
	if err != nil {
		return Image{}, err
	}

	name, err := o.str("name")
	if err != nil {
		return Image{}, err
	}
	if err := checkName(name, join(path, "name")); err != nil {
		return Image{}, err
	}

	var scale [2]float64
	for i, key := range []string{"width", "height"} {
		v, err := o.number(key)
		if err != nil {
			return Image{}, err
		}
		if v < 0 {
			return Image{}, errs.Schema(join(path, key), "scale factor must not be negative, got %v", v)
		}
		scale[i] = v
	}

	bg, err := o.colour("background")
	if err != nil {
		return Image{}, err
	}

	items, epath, err := o.sequence("elements")
	if err != nil {
		return Image{}, err
	}

	img := Image{
		Name:       name,
		Width:      scale[0],
		Height:     scale[1],
		Background: bg,
		Elements:   make([]Element, 0, len(items)),
	}
	for i, item := range items {
		el, err := parseElement(item, index(epath, i))
		if err != nil {
			return Image{}, err
		}
		img.Elements = append(img.Elements, el)
	}
	return img, nil
}

// checkName keeps output files inside their resolution directory.
func checkName(name, path string) error {
	switch {
	case name == "":
		return errs.Schema(path, "must not be empty")
	case name == "." || name == "..":
		return errs.Schema(path, "%q is not a valid file name", name)
	case strings.ContainsAny(name, "/\\\x00"):
		return errs.Schema(path, "%q must not contain path separators", name)
	}
	return nil
}
