package app

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/TanaroSch/copynaut/internal/export"
	"github.com/TanaroSch/copynaut/internal/template"
)

// Snapshot describes the document state an image file alone cannot carry.
// Zero values fall back to what the decoded image shows.
type Snapshot struct {
	// Document is the filename templates see; the image path when empty.
	Document string
	// Layers is the active drawable's hierarchy, outermost first.
	Layers     []string
	LayerCount int
	// Selection is a WxH+X+Y geometry; empty selects the whole image.
	Selection string
	Type      string
	Alpha     *bool
	Mask      bool
	IsMask    bool
	Group     bool
	Children  int
}

// Document is a decoded image plus the snapshot templates expand against.
type Document struct {
	Path      string
	Image     image.Image
	Selection image.Rectangle
	Source    template.Source
}

// OpenDocument decodes the image at path and builds its snapshot.
func OpenDocument(path string, snap Snapshot) (*Document, error) {
	img, _, err := export.Load(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return NewDocument(abs, img, snap)
}

// NewDocument builds a document from an already decoded image.
func NewDocument(path string, img image.Image, snap Snapshot) (*Document, error) {
	b := img.Bounds()
	sel := b
	if snap.Selection != "" {
		r, err := ParseGeometry(snap.Selection)
		if err != nil {
			return nil, err
		}
		sel = r.Add(b.Min).Intersect(b)
		if sel.Empty() {
			return nil, fmt.Errorf("selection %s lies outside the %dx%d image", snap.Selection, b.Dx(), b.Dy())
		}
	}

	typ, err := colorType(snap.Type, img.ColorModel())
	if err != nil {
		return nil, err
	}
	alpha := hasAlpha(img)
	if snap.Alpha != nil {
		alpha = *snap.Alpha
	}
	filename := snap.Document
	if filename == "" {
		filename = path
	}
	// A loaded file has a single layer named after the file.
	layers := snap.Layers
	if len(layers) == 0 {
		layers = []string{"Background"}
		if filename != "" {
			layers[0] = filepath.Base(filename)
		}
	}
	count := snap.LayerCount
	if count < len(layers) {
		count = len(layers)
	}

	rel := sel.Sub(b.Min)
	return &Document{
		Path:      path,
		Image:     img,
		Selection: sel,
		Source: template.Source{
			Filename:   filename,
			ImageSize:  b.Size(),
			LayerCount: count,
			Drawable: template.Drawable{
				Name:      layers[len(layers)-1],
				Hierarchy: layers,
				IsGroup:   snap.Group,
				Children:  snap.Children,
				Type:      typ,
				HasAlpha:  alpha,
				HasMask:   snap.Mask,
				IsMask:    snap.IsMask,
			},
			Bounds: func() image.Rectangle { return rel },
		},
	}, nil
}

// Clipping returns the selected pixels, rebased to the origin.
func (d *Document) Clipping() image.Image {
	return export.Crop(d.Image, d.Selection)
}

var geometry = regexp.MustCompile(`^([0-9]+)x([0-9]+)(?:\+([0-9]+)\+([0-9]+))?$`)

// ParseGeometry reads WxH or WxH+X+Y.
func ParseGeometry(s string) (image.Rectangle, error) {
	m := geometry.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return image.Rectangle{}, fmt.Errorf("invalid geometry %q, want WxH+X+Y", s)
	}
	var v [4]int
	for i := range v {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid geometry %q: %w", s, err)
		}
		v[i] = n
	}
	if v[0] == 0 || v[1] == 0 {
		return image.Rectangle{}, fmt.Errorf("invalid geometry %q: empty area", s)
	}
	return image.Rect(v[2], v[3], v[2]+v[0], v[3]+v[1]), nil
}

func colorType(name string, model color.Model) (template.ColorType, error) {
	switch strings.ToLower(name) {
	case "rgb":
		return template.RGB, nil
	case "gray", "grey", "y":
		return template.Gray, nil
	case "indexed", "i":
		return template.Indexed, nil
	case "":
	default:
		return 0, fmt.Errorf("unknown color type %q", name)
	}
	if _, ok := model.(color.Palette); ok {
		return template.Indexed, nil
	}
	switch model {
	case color.GrayModel, color.Gray16Model:
		return template.Gray, nil
	}
	return template.RGB, nil
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}
