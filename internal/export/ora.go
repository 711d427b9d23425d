package export

import (
	"archive/zip"
	"encoding/xml"
	"image"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/transform"
)

// OpenRaster archive members.
const (
	oraMimetype  = "image/openraster"
	oraLayerPath = "data/layer0.png"
	oraThumbSize = 256
)

type oraImage struct {
	XMLName xml.Name `xml:"image"`
	Version string   `xml:"version,attr"`
	W       int      `xml:"w,attr"`
	H       int      `xml:"h,attr"`
	Stack   oraStack `xml:"stack"`
}

type oraStack struct {
	Layers []oraLayer `xml:"layer"`
}

type oraLayer struct {
	Name        string `xml:"name,attr"`
	Src         string `xml:"src,attr"`
	X           int    `xml:"x,attr"`
	Y           int    `xml:"y,attr"`
	Opacity     string `xml:"opacity,attr"`
	Visibility  string `xml:"visibility,attr"`
	CompositeOp string `xml:"composite-op,attr"`
}

// encodeORA writes a single-layer OpenRaster archive. The mimetype member
// comes first and is stored uncompressed so the file can be sniffed.
func encodeORA(w io.Writer, img image.Image, opts Options) error {
	zw := zip.NewWriter(w)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mt, oraMimetype); err != nil {
		return err
	}

	size := img.Bounds().Size()
	name := opts.LayerName
	if name == "" {
		name = "Clipping"
	}
	doc := oraImage{
		Version: "0.0.3",
		W:       size.X,
		H:       size.Y,
		Stack: oraStack{Layers: []oraLayer{{
			Name:        name,
			Src:         oraLayerPath,
			Opacity:     "1.000",
			Visibility:  "visible",
			CompositeOp: "svg:src-over",
		}}},
	}
	sx, err := zw.Create("stack.xml")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(sx, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(sx)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return err
	}

	for _, m := range []struct {
		name string
		img  image.Image
	}{
		{oraLayerPath, img},
		{"mergedimage.png", img},
		{"Thumbnails/thumbnail.png", thumbnail(img)},
	} {
		fw, err := zw.Create(m.name)
		if err != nil {
			return err
		}
		if err := png.Encode(fw, m.img); err != nil {
			return err
		}
	}
	return zw.Close()
}

// thumbnail scales img to fit a 256px square, keeping its aspect ratio.
// Smaller images are used as they are.
func thumbnail(img image.Image) image.Image {
	size := img.Bounds().Size()
	if size.X <= oraThumbSize && size.Y <= oraThumbSize {
		return img
	}
	w, h := oraThumbSize, oraThumbSize
	if size.X > size.Y {
		h = max(1, size.Y*oraThumbSize/size.X)
	} else {
		w = max(1, size.X*oraThumbSize/size.Y)
	}
	return transform.Resize(img, w, h, transform.Linear)
}
