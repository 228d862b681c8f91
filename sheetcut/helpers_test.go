package sheetcut

import (
	"context"
	"image"
	"image/color"
	"image/draw"
)

// fillSheet creates an opaque sheet of the given background color.
func fillSheet(w, h int, bg color.NRGBA) *image.NRGBA {
	sheet := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(sheet, sheet.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return sheet
}

// paintRect paints a solid rectangle onto the sheet.
func paintRect(sheet *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(sheet, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// makeMatte creates a fully transparent image with one opaque block of the
// given color.
func makeMatte(w, h int, content image.Rectangle, c color.NRGBA) *image.NRGBA {
	matte := image.NewNRGBA(image.Rect(0, 0, w, h))
	paintRect(matte, content, c)
	return matte
}

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// matterFunc adapts a function to the Matter interface.
type matterFunc func(ctx context.Context, img image.Image) (image.Image, error)

func (f matterFunc) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}

// identityMatter passes the region through unchanged.
var identityMatter = matterFunc(func(_ context.Context, img image.Image) (image.Image, error) {
	return img, nil
})
