package sheetcut

import (
	"image"

	"github.com/pkg/errors"
)

// GridSplit splits the sheet into a cols×rows lattice of equal cells and
// returns one region per cell in row-major order (left to right, top to
// bottom). It is the mode of choice for sheets with artworks laid out on a
// regular grid; remainder pixels that do not fill a whole cell are dropped.
func GridSplit(img image.Image, cols, rows int) ([]Region, error) {
	if cols < 1 || rows < 1 {
		return nil, errors.Errorf("invalid grid %dx%d: both dimensions must be at least 1", cols, rows)
	}
	bounds := img.Bounds()
	cellW := bounds.Dx() / cols
	cellH := bounds.Dy() / rows
	if cellW < 1 || cellH < 1 {
		return nil, errors.Errorf("grid %dx%d produces empty cells for a %dx%d sheet", cols, rows, bounds.Dx(), bounds.Dy())
	}

	regions := make([]Region, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			bbox := Rectangle{
				X:      bounds.Min.X + col*cellW,
				Y:      bounds.Min.Y + row*cellH,
				Width:  cellW,
				Height: cellH,
			}
			regions = append(regions, NewRegion(img, bbox, cellW*cellH))
		}
	}
	return regions, nil
}
