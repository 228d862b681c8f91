package sheetcut

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Canvas describes a fixed output frame: exact pixel dimensions and the
// transparent margin guaranteed around the sticker content.
type Canvas struct {
	Width  int
	Height int
	Margin int
}

// Output frames required by the sticker publishing platform.
var (
	// StickerCanvas is the frame for individual stickers.
	StickerCanvas = Canvas{Width: 370, Height: 320, Margin: 10}
	// MainImageCanvas is the frame for the set's main image.
	MainImageCanvas = Canvas{Width: 240, Height: 240, Margin: 5}
	// TabImageCanvas is the frame for the chat tab icon.
	TabImageCanvas = Canvas{Width: 96, Height: 74, Margin: 3}
)

// CanvasNormalizer fits a matted sticker onto a fixed transparent canvas,
// preserving aspect ratio and the margin rule.
type CanvasNormalizer struct {
	canvas     Canvas
	alphaFloor uint8
}

// NewCanvasNormalizer creates a normalizer for the given canvas. The alpha
// noise floor below which pixels count as residual matting noise is 10.
func NewCanvasNormalizer(canvas Canvas) *CanvasNormalizer {
	return &CanvasNormalizer{
		canvas:     canvas,
		alphaFloor: 10,
	}
}

// NewDefaultCanvasNormalizer creates a normalizer for StickerCanvas.
func NewDefaultCanvasNormalizer() *CanvasNormalizer {
	return NewCanvasNormalizer(StickerCanvas)
}

// Normalize produces the fixed-size output for one matted sticker:
// tight-crop above the alpha noise floor, uniform downscale into the usable
// interior (never upscale), centered composite onto a transparent canvas.
// A matte with no pixel above the floor is unrecoverable and reported as
// ErrDegenerateMatte.
func (n *CanvasNormalizer) Normalize(matted image.Image) (*image.NRGBA, error) {
	content, ok := tightAlphaBounds(matted, n.alphaFloor)
	if !ok {
		return nil, ErrDegenerateMatte
	}
	cropped := imaging.Crop(matted, content)

	usableW := n.canvas.Width - 2*n.canvas.Margin
	usableH := n.canvas.Height - 2*n.canvas.Margin
	cw, ch := content.Dx(), content.Dy()

	scale := minFloat(float64(usableW)/float64(cw), float64(usableH)/float64(ch))
	if scale < 1 {
		newW := maxInt(1, int(float64(cw)*scale))
		newH := maxInt(1, int(float64(ch)*scale))
		cropped = imaging.Resize(cropped, newW, newH, imaging.Lanczos)
	}

	canvas := imaging.New(n.canvas.Width, n.canvas.Height, color.NRGBA{})
	return imaging.PasteCenter(canvas, cropped), nil
}

// tightAlphaBounds returns the smallest rectangle containing every pixel
// whose alpha exceeds the noise floor.
func tightAlphaBounds(img image.Image, floor uint8) (image.Rectangle, bool) {
	bounds := img.Bounds()
	floor16 := uint32(floor) << 8
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > floor16 {
				minX = minInt(minX, x)
				minY = minInt(minY, y)
				maxX = maxInt(maxX, x)
				maxY = maxInt(maxY, y)
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
