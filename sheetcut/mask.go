package sheetcut

import (
	"image"
	"math"
)

// binaryMask is a W×H foreground bitmap backed by a flat byte slice,
// row-major, 1 for foreground and 0 for background.
type binaryMask struct {
	W, H int
	Pix  []uint8
}

func newBinaryMask(w, h int) *binaryMask {
	return &binaryMask{W: w, H: h, Pix: make([]uint8, w*h)}
}

func (m *binaryMask) at(x, y int) bool {
	return m.Pix[y*m.W+x] != 0
}

func (m *binaryMask) set(x, y int) {
	m.Pix[y*m.W+x] = 1
}

// foregroundMask builds the binary foreground mask of a composite image.
// Images that carry real transparency are thresholded on the alpha channel;
// fully opaque images are keyed against the background color estimated at the
// sheet corners.
func foregroundMask(img image.Image, alphaFloor uint8, chromaTolerance float64) *binaryMask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := newBinaryMask(w, h)

	if hasTransparency(img) {
		floor := uint32(alphaFloor) << 8
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				_, _, _, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				if a > floor {
					mask.set(x, y)
				}
			}
		}
		return mask
	}

	bgR, bgG, bgB := cornerBackgroundColor(img)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			d := colorDistance(float64(r>>8), float64(g>>8), float64(b>>8), bgR, bgG, bgB)
			if d > chromaTolerance {
				mask.set(x, y)
			}
		}
	}
	return mask
}

// hasTransparency reports whether any pixel is not fully opaque.
func hasTransparency(img image.Image) bool {
	if opaquer, ok := img.(interface{ Opaque() bool }); ok && opaquer.Opaque() {
		return false
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}

// cornerBackgroundColor estimates the sheet background as the mean color of
// small patches sampled at the four image corners.
func cornerBackgroundColor(img image.Image) (float64, float64, float64) {
	bounds := img.Bounds()
	patch := minInt(3, minInt(bounds.Dx(), bounds.Dy()))
	if patch < 1 {
		patch = 1
	}
	corners := []image.Point{
		{bounds.Min.X, bounds.Min.Y},
		{bounds.Max.X - patch, bounds.Min.Y},
		{bounds.Min.X, bounds.Max.Y - patch},
		{bounds.Max.X - patch, bounds.Max.Y - patch},
	}
	var sumR, sumG, sumB float64
	var n int
	for _, c := range corners {
		for dy := 0; dy < patch; dy++ {
			for dx := 0; dx < patch; dx++ {
				r, g, b, _ := img.At(c.X+dx, c.Y+dy).RGBA()
				sumR += float64(r >> 8)
				sumG += float64(g >> 8)
				sumB += float64(b >> 8)
				n++
			}
		}
	}
	if n == 0 {
		return 255, 255, 255
	}
	return sumR / float64(n), sumG / float64(n), sumB / float64(n)
}

func colorDistance(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr := r1 - r2
	dg := g1 - g2
	db := b1 - b2
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// dilate grows the foreground by radius pixels along both axes using two
// separable sliding-window passes.
func (m *binaryMask) dilate(radius int) *binaryMask {
	if radius <= 0 {
		return m
	}
	return m.windowPass(radius, false).windowPass(radius, true)
}

// erode shrinks the foreground by radius pixels along both axes.
func (m *binaryMask) erode(radius int) *binaryMask {
	if radius <= 0 {
		return m
	}
	inv := m.clone()
	inv.invert()
	out := inv.windowPass(radius, false).windowPass(radius, true)
	out.invert()
	return out
}

func (m *binaryMask) clone() *binaryMask {
	out := newBinaryMask(m.W, m.H)
	copy(out.Pix, m.Pix)
	return out
}

// close fuses nearby blobs: dilation followed by erosion with the same kernel.
func (m *binaryMask) close(radius int) *binaryMask {
	if radius <= 0 {
		return m
	}
	return m.dilate(radius).erode(radius)
}

func (m *binaryMask) invert() {
	for i, v := range m.Pix {
		if v == 0 {
			m.Pix[i] = 1
		} else {
			m.Pix[i] = 0
		}
	}
}

// windowPass sets every pixel that has at least one foreground pixel within
// the 1-D window of the given radius, along the chosen axis.
func (m *binaryMask) windowPass(radius int, vertical bool) *binaryMask {
	out := newBinaryMask(m.W, m.H)
	if vertical {
		for x := 0; x < m.W; x++ {
			active := 0
			for y := -radius; y < m.H; y++ {
				if enter := y + radius; enter < m.H && m.at(x, enter) {
					active++
				}
				if leave := y - radius - 1; leave >= 0 && m.at(x, leave) {
					active--
				}
				if y >= 0 && active > 0 {
					out.set(x, y)
				}
			}
		}
		return out
	}
	for y := 0; y < m.H; y++ {
		active := 0
		for x := -radius; x < m.W; x++ {
			if enter := x + radius; enter < m.W && m.at(enter, y) {
				active++
			}
			if leave := x - radius - 1; leave >= 0 && m.at(leave, y) {
				active--
			}
			if x >= 0 && active > 0 {
				out.set(x, y)
			}
		}
	}
	return out
}
