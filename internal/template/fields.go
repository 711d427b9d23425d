package template

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TanaroSch/copynaut/internal/exportpath"
)

// Field names a value a template can reference.
type Field int

const (
	Basename Field = iota
	Ext
	Path
	Realpath
	MPixels
	KPixels
	LayerName
	LayerPath
	LayerPathMultiple
	BasenameLayerPath
	Alpha
	Type
	NChildren
	Size
	ISize
	Width
	Height
	Where
	Offsets
	OffsetX
	OffsetY
	IsMask
	numFields
)

var fieldNames = [numFields]string{
	Basename:          "basename",
	Ext:               "ext",
	Path:              "path",
	Realpath:          "realpath",
	MPixels:           "mpixels",
	KPixels:           "kpixels",
	LayerName:         "layername",
	LayerPath:         "layerpath",
	LayerPathMultiple: "layerpath_multiple",
	BasenameLayerPath: "basename_layerpath",
	Alpha:             "alpha",
	Type:              "type",
	NChildren:         "nchildren",
	Size:              "size",
	ISize:             "isize",
	Width:             "width",
	Height:            "height",
	Where:             "where",
	Offsets:           "offsets",
	OffsetX:           "offsetx",
	OffsetY:           "offsety",
	IsMask:            "ismask",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField looks up a field by name.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// geometry reports whether the field needs the selection bounds.
func (f Field) geometry() bool {
	switch f {
	case MPixels, KPixels, Size, Width, Height, Where, Offsets, OffsetX, OffsetY:
		return true
	}
	return false
}

// numeric fields are formatted as integers when a spec asks for it.
func (f Field) numeric() bool {
	switch f {
	case Width, Height, OffsetX, OffsetY, NChildren:
		return true
	}
	return false
}

// ColorType is the color mode of a drawable.
type ColorType int

const (
	RGB ColorType = iota
	Gray
	Indexed
)

func (c ColorType) String() string {
	switch c {
	case RGB:
		return "RGB"
	case Gray:
		return "Y"
	case Indexed:
		return "I"
	}
	return "<unknown type>"
}

// Drawable describes the layer, group or mask a clipping is taken from.
type Drawable struct {
	Name string
	// Hierarchy holds the names of the drawable's ancestors, outermost
	// first, ending with the drawable itself.
	Hierarchy []string
	IsGroup   bool
	Children  int
	Type      ColorType
	HasAlpha  bool
	HasMask   bool
	IsMask    bool
}

// Source is the read-only snapshot a template is expanded against.
type Source struct {
	Filename   string
	ImageSize  image.Point
	LayerCount int
	Drawable   Drawable
	// Bounds returns the selection bounding box in image coordinates. It is
	// only called when the template references a geometry field.
	Bounds func() image.Rectangle
}

// LayerPath joins the hierarchy with '/', escaping slashes in names.
// Groups get a trailing '/'.
func (d Drawable) LayerPath() string {
	names := d.Hierarchy
	if len(names) == 0 {
		names = []string{d.Name}
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = strings.ReplaceAll(n, "/", `\/`)
	}
	p := strings.Join(escaped, "/")
	if d.IsGroup {
		p += "/"
	}
	return p
}

// context holds computed field values for one expansion.
type context struct {
	values [numFields]string
	set    [numFields]bool
}

func (c *context) get(f Field) string { return c.values[f] }

func (c *context) put(f Field, v string) {
	c.values[f] = v
	c.set[f] = true
}

// newContext computes every field. Geometry is queried once, and only when
// needGeometry is set.
func newContext(src Source, needGeometry bool) *context {
	c := &context{}

	filename := src.Filename
	if filename == "" {
		filename = "<none>"
	}
	path, ext := exportpath.SplitExt(filename)
	basename := filepath.Base(path)
	c.put(Path, path)
	c.put(Ext, ext)
	c.put(Basename, basename)
	c.put(Realpath, realpath(filename))

	d := src.Drawable
	layerpath := d.LayerPath()
	c.put(LayerName, d.Name)
	c.put(LayerPath, layerpath)
	if src.LayerCount == 1 {
		c.put(LayerPathMultiple, "")
	} else {
		c.put(LayerPathMultiple, layerpath)
	}
	// Hosts name the layer of a freshly loaded file after the file, so the
	// layer path is compared with the full file name.
	if filepath.Base(filename) == layerpath {
		c.put(BasenameLayerPath, basename)
	} else {
		c.put(BasenameLayerPath, basename+":"+layerpath)
	}

	alpha := ""
	if d.HasAlpha {
		alpha = "A"
	}
	if d.HasMask {
		alpha += "*"
	}
	c.put(Alpha, alpha)
	c.put(Type, d.Type.String())
	if d.IsGroup {
		c.put(NChildren, strconv.Itoa(d.Children))
	} else {
		c.put(NChildren, "")
	}
	if d.IsMask {
		c.put(IsMask, "M")
	} else {
		c.put(IsMask, "")
	}

	isize := fmt.Sprintf("%dx%d", src.ImageSize.X, src.ImageSize.Y)
	c.put(ISize, isize)

	if needGeometry {
		var r image.Rectangle
		if src.Bounds != nil {
			r = src.Bounds()
		} else {
			r = image.Rect(0, 0, src.ImageSize.X, src.ImageSize.Y)
		}
		w, h := r.Dx(), r.Dy()
		pixels := float64(w * h)
		offsets := fmt.Sprintf("%d,%d", r.Min.X, r.Min.Y)
		c.put(Width, strconv.Itoa(w))
		c.put(Height, strconv.Itoa(h))
		c.put(Size, fmt.Sprintf("%dx%d", w, h))
		c.put(KPixels, strconv.FormatFloat(pixels/1024, 'f', 1, 64))
		c.put(MPixels, strconv.FormatFloat(pixels/1048576, 'f', 1, 64))
		c.put(OffsetX, strconv.Itoa(r.Min.X))
		c.put(OffsetY, strconv.Itoa(r.Min.Y))
		c.put(Offsets, offsets)
		c.put(Where, "[["+isize+"+"+offsets+"]]")
	}
	return c
}

func realpath(filename string) string {
	resolved := filename
	if abs, err := filepath.Abs(filename); err == nil {
		resolved = abs
	}
	if _, err := os.Lstat(resolved); err == nil {
		if r, err := filepath.EvalSymlinks(resolved); err == nil {
			resolved = r
		}
	}
	p, _ := exportpath.SplitExt(resolved)
	return p
}
