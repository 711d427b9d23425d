package template

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skySource() Source {
	return Source{
		Filename:   "photo.xcf",
		ImageSize:  image.Pt(100, 50),
		LayerCount: 1,
		Drawable: Drawable{
			Name:      "Sky",
			Hierarchy: []string{"Sky"},
			Type:      RGB,
			HasAlpha:  true,
		},
		Bounds: func() image.Rectangle { return image.Rect(0, 0, 100, 50) },
	}
}

func TestExpand_EndToEnd(t *testing.T) {
	assert.Equal(t, "photo:Sky [[100x50+0,0]]", Expand(skySource(), "{basename_layerpath} {where}"))
}

func TestExpand_SubstitutionChaining(t *testing.T) {
	src := skySource()
	src.Filename = "/tmp/foobar.png"
	assert.Equal(t, "barbar", Expand(src, "{basename/foo/o/o/bar}"))
}

func TestExpand_SubstitutionEscapes(t *testing.T) {
	src := skySource()
	src.Drawable = Drawable{Name: "c", Hierarchy: []string{"a", "b", "c"}}
	src.LayerCount = 3

	assert.Equal(t, "a_b_c", Expand(src, `{layerpath/\//_}`))
	assert.Equal(t, "a}b/c", Expand(src, `{layerpath/\//\}/\}c/\/c}`))
}

func TestExpand_LayerPathMultiple(t *testing.T) {
	src := skySource()
	assert.Equal(t, "", Expand(src, "{layerpath_multiple}"))

	src.LayerCount = 2
	assert.Equal(t, "Sky", Expand(src, "{layerpath_multiple}"))
}

func TestExpand_Fields(t *testing.T) {
	src := Source{
		Filename:   "/work/scene.xcf.bz2",
		ImageSize:  image.Pt(2048, 1024),
		LayerCount: 5,
		Drawable: Drawable{
			Name:      "Trees/Near",
			Hierarchy: []string{"Background", "Trees/Near"},
			IsGroup:   true,
			Children:  4,
			Type:      Indexed,
			HasAlpha:  true,
			HasMask:   true,
		},
		Bounds: func() image.Rectangle { return image.Rect(10, 20, 1034, 1044) },
	}

	tests := []struct {
		tmpl string
		want string
	}{
		{"{basename}", "scene"},
		{"{ext}", ".xcf.bz2"},
		{"{path}", "/work/scene"},
		{"{layername}", "Trees/Near"},
		{"{layerpath}", `Background/Trees\/Near/`},
		{"{basename_layerpath}", `scene:Background/Trees\/Near/`},
		{"{alpha}", "A*"},
		{"{type}", "I"},
		{"{nchildren}", "4"},
		{"{size}", "1024x1024"},
		{"{width}x{height}", "1024x1024"},
		{"{isize}", "2048x1024"},
		{"{offsets}", "10,20"},
		{"{offsetx}/{offsety}", "10/20"},
		{"{where}", "[[2048x1024+10,20]]"},
		{"{kpixels}", "1024.0"},
		{"{mpixels}", "1.0"},
		{"{ismask}", ""},
		{"{{literal}}", "{literal}"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := ExpandStrict(src, tt.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_BasenameEqualsLayerPath(t *testing.T) {
	tests := []struct {
		name  string
		layer string
		want  string
	}{
		{"layer named after the file", "photo.png", "photo"},
		{"layer named after the stem", "photo", "photo:photo"},
		{"other layer", "Sky", "photo:Sky"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := skySource()
			src.Filename = "/img/photo.png"
			src.Drawable.Name = tt.layer
			src.Drawable.Hierarchy = []string{tt.layer}
			assert.Equal(t, tt.want, Expand(src, "{basename_layerpath}"))
		})
	}
}

func TestExpand_FormatSpecs(t *testing.T) {
	tests := []struct {
		tmpl string
		want string
	}{
		{"{layername:>5}", "  Sky"},
		{"{layername:*^7}", "**Sky**"},
		{"{layername:.2}", "Sk"},
		{"{offsetx:03d}", "000"},
		{"{width:6}", "   100"},
		{"{type!s}", "RGB"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := ExpandStrict(skySource(), tt.tmpl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandStrict_Errors(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		err  error
	}{
		{"unknown field", "{colour}", ErrUnknownField},
		{"unknown substitution field", "{colour/a/b}", ErrUnknownField},
		{"odd substitution", "{basename/a/b/c}", ErrMalformedSubstitution},
		{"unmatched open brace", "{basename", ErrTemplateSyntax},
		{"single close brace", "basename}", ErrTemplateSyntax},
		{"positional placeholder", "{}", ErrTemplateSyntax},
		{"integer spec on text", "{layername:d}", ErrTemplateSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandStrict(skySource(), tt.tmpl)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExpand_DegradesToPlaceholder(t *testing.T) {
	got := Expand(skySource(), "{nope}")
	assert.Equal(t, `Error expanding "{nope}". Template may be invalid.`, got)
}

func TestExpand_GeometryIsLazy(t *testing.T) {
	calls := 0
	src := skySource()
	src.Bounds = func() image.Rectangle {
		calls++
		return image.Rect(0, 0, 1, 1)
	}

	Expand(src, "{basename_layerpath}")
	assert.Equal(t, 0, calls)

	Expand(src, "{size} {where} {kpixels}")
	assert.Equal(t, 1, calls)
}

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, ok := ParseField(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
	_, ok := ParseField("image")
	assert.False(t, ok)
}
