package sheetcut

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/pkg/errors"
)

// IconSet holds the PNG renditions of a source image on the platform's
// auxiliary canvases.
type IconSet struct {
	// Main is the set's main image, 240×240.
	Main []byte
	// Tab is the chat tab icon, 96×74.
	Tab []byte
}

// MakeIcons converts a single artwork into the main image and tab icon
// renditions: the whole image is matted once, then fitted onto both
// auxiliary canvases.
func MakeIcons(ctx context.Context, img image.Image, matter Matter) (*IconSet, error) {
	matted, err := matter.Remove(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "matting failed")
	}
	bounds := img.Bounds()
	conformed := conformFootprint(matted, bounds.Dx(), bounds.Dy())

	main, err := renderIcon(conformed, MainImageCanvas)
	if err != nil {
		return nil, errors.Wrap(err, "can't render main image")
	}
	tab, err := renderIcon(conformed, TabImageCanvas)
	if err != nil {
		return nil, errors.Wrap(err, "can't render tab image")
	}
	return &IconSet{Main: main, Tab: tab}, nil
}

func renderIcon(matted image.Image, canvas Canvas) ([]byte, error) {
	normalized, err := NewCanvasNormalizer(canvas).Normalize(matted)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
