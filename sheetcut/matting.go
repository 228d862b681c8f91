package sheetcut

import (
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Matter separates the foreground subject of a cropped region from its
// background. The returned image's alpha channel approximates per-pixel
// foreground confidence, with background pixels driven toward alpha 0.
// Implementations are treated as black boxes with unspecified latency;
// they may resize internally, the pipeline conforms the result back to the
// crop's footprint before using it.
type Matter interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// ChromaKeyMatter is a model-free Matter that keys the region against the
// background color estimated at the crop corners. Pixels within Tolerance of
// the background become fully transparent; a band of Softness beyond it ramps
// alpha up to fully opaque. It lets the pipeline run without an AI backend.
type ChromaKeyMatter struct {
	// Tolerance is the RGB distance from the background color below which a
	// pixel is considered background.
	Tolerance float64
	// Softness is the width of the transition band above Tolerance.
	Softness float64
}

// NewChromaKeyMatter creates a chroma keyer with the default tuning.
func NewChromaKeyMatter() *ChromaKeyMatter {
	return &ChromaKeyMatter{
		Tolerance: 32.0,
		Softness:  24.0,
	}
}

// Remove implements Matter.
func (m *ChromaKeyMatter) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bgR, bgG, bgB := cornerBackgroundColor(img)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			d := colorDistance(float64(r>>8), float64(g>>8), float64(b>>8), bgR, bgG, bgB)

			var alpha float64
			switch {
			case d <= m.Tolerance:
				alpha = 0
			case m.Softness <= 0 || d >= m.Tolerance+m.Softness:
				alpha = 1
			default:
				alpha = (d - m.Tolerance) / m.Softness
			}
			// Existing transparency stays authoritative.
			srcAlpha := float64(a>>8) / 255.0
			alpha *= srcAlpha

			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(alpha*255 + 0.5),
			})
		}
	}
	return out, nil
}

// conformFootprint normalizes a matted result back to the crop's original
// width and height so downstream spatial assumptions remain valid when the
// matting backend resizes internally.
func conformFootprint(matted image.Image, width, height int) *image.NRGBA {
	b := matted.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return imaging.Resize(matted, width, height, imaging.Lanczos)
	}
	return imaging.Clone(matted)
}
