package export

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// Crop returns the part of img inside r, rebased to the origin. An empty
// rectangle, or one covering the whole image, leaves img as it is.
func Crop(img image.Image, r image.Rectangle) image.Image {
	b := img.Bounds()
	r = r.Intersect(b)
	if r.Empty() || r == b {
		return img
	}
	cut := transform.Crop(img, r)
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), cut, cut.Bounds().Min, draw.Src)
	return out
}
