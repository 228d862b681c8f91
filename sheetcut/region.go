package sheetcut

import (
	"image"

	"github.com/disintegration/imaging"
)

// Region is a detected candidate sticker: a bounding box in composite-image
// coordinates plus the pixel count of the foreground blob that produced it.
// It holds a reference to the composite image, not a copy; the crop is
// materialized lazily when the region is handed to background matting.
type Region struct {
	// BBox is the candidate bounding box, already expanded by the detector's
	// inset and clamped to the composite bounds.
	BBox Rectangle
	// Area is the foreground pixel count of the originating blob.
	Area int

	source image.Image
}

// NewRegion creates a region over the given composite image.
func NewRegion(source image.Image, bbox Rectangle, area int) Region {
	return Region{
		BBox:   bbox,
		Area:   area,
		source: source,
	}
}

// Crop materializes the region's pixels as an NRGBA sub-image copy.
func (r Region) Crop() *image.NRGBA {
	return imaging.Crop(r.source, r.BBox.ToImageRect())
}
