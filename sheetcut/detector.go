package sheetcut

import (
	"image"
	"sort"
)

// DetectorOptions controls foreground extraction and candidate suppression.
type DetectorOptions struct {
	// AlphaFloor is the alpha noise floor: mask pixels are foreground when
	// alpha exceeds it. Also used by the chroma fallback as near-zero cutoff.
	AlphaFloor uint8
	// ChromaTolerance is the RGB distance from the estimated background color
	// beyond which an opaque pixel counts as foreground.
	ChromaTolerance float64
	// KernelRadius is the morphology radius used to fuse fragments of one
	// artwork (dilation followed by closing) before labeling.
	KernelRadius int
	// Inset expands every accepted bounding box on all sides so thin
	// extremities are not clipped by the crop.
	Inset int
	// MaxAspectRatio rejects candidates that are too elongated to be a sticker.
	MaxAspectRatio float64
}

// DefaultDetectorOptions returns the tuning used for typical sticker sheets.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		AlphaFloor:      10,
		ChromaTolerance: 32.0,
		KernelRadius:    10,
		Inset:           10,
		MaxAspectRatio:  10.0,
	}
}

// RegionDetector finds spatially contiguous foreground blobs in a composite
// sheet and emits one candidate Region per outer blob, in human reading order
// (top row left-to-right, then the next row).
type RegionDetector struct {
	opts DetectorOptions
}

// NewRegionDetector creates a detector with the given options.
func NewRegionDetector(opts DetectorOptions) *RegionDetector {
	return &RegionDetector{opts: opts}
}

// NewDefaultRegionDetector creates a detector with DefaultDetectorOptions.
func NewDefaultRegionDetector() *RegionDetector {
	return NewRegionDetector(DefaultDetectorOptions())
}

// Detect produces candidate regions for every foreground blob of the sheet.
func (d *RegionDetector) Detect(img image.Image) []Region {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}

	mask := foregroundMask(img, d.opts.AlphaFloor, d.opts.ChromaTolerance)
	mask = mask.dilate(d.opts.KernelRadius).close(d.opts.KernelRadius)

	candidates := labelComponents(mask)
	candidates = suppressCandidates(candidates, d.opts.MaxAspectRatio)
	orderByReadingOrder(candidates)

	regions := make([]Region, 0, len(candidates))
	for _, c := range candidates {
		bbox := Rectangle{
			X:      bounds.Min.X + c.bbox.X,
			Y:      bounds.Min.Y + c.bbox.Y,
			Width:  c.bbox.Width,
			Height: c.bbox.Height,
		}.Expand(d.opts.Inset, bounds)
		regions = append(regions, NewRegion(img, bbox, c.area))
	}
	return regions
}

type component struct {
	bbox Rectangle
	area int
}

// labelComponents runs an 8-connected flood fill over the mask and
// returns the bounding box and pixel count of every blob.
func labelComponents(mask *binaryMask) []component {
	w, h := mask.W, mask.H
	labels := make([]int32, w*h)
	for i := range labels {
		labels[i] = -1
	}

	dx := [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy := [8]int{-1, -1, -1, 0, 0, 1, 1, 1}

	var comps []component
	stack := make([]int, 0, 1024)
	next := int32(0)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask.Pix[idx] == 0 || labels[idx] >= 0 {
				continue
			}

			stack = stack[:0]
			stack = append(stack, idx)
			labels[idx] = next
			minX, minY, maxX, maxY := x, y, x, y
			area := 0

			for len(stack) > 0 {
				curr := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++

				cx := curr % w
				cy := curr / w
				minX = minInt(minX, cx)
				maxX = maxInt(maxX, cx)
				minY = minInt(minY, cy)
				maxY = maxInt(maxY, cy)

				for k := 0; k < 8; k++ {
					nx, ny := cx+dx[k], cy+dy[k]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nIdx := ny*w + nx
					if mask.Pix[nIdx] != 0 && labels[nIdx] < 0 {
						labels[nIdx] = next
						stack = append(stack, nIdx)
					}
				}
			}

			comps = append(comps, component{
				bbox: Rectangle{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
				area: area,
			})
			next++
		}
	}
	return comps
}

// suppressCandidates drops degenerate boxes, aspect-ratio outliers and boxes
// fully contained inside a larger candidate (holes such as eyes or text are
// not independent stickers).
func suppressCandidates(comps []component, maxAspectRatio float64) []component {
	kept := make([]component, 0, len(comps))
	for _, c := range comps {
		if c.bbox.Empty() {
			continue
		}
		if maxAspectRatio > 0 && c.bbox.AspectRatio() >= maxAspectRatio {
			continue
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].area > kept[j].area
	})
	outer := kept[:0]
	for _, c := range kept {
		contained := false
		for _, o := range outer {
			if o.bbox.Contains(c.bbox) {
				contained = true
				break
			}
		}
		if !contained {
			outer = append(outer, c)
		}
	}
	return outer
}

// orderByReadingOrder sorts candidates top row first, left to right. Top
// edges are bucketed into bands half the mean candidate height wide so that
// stickers of one visual row with slightly different tops stay together.
func orderByReadingOrder(comps []component) {
	if len(comps) == 0 {
		return
	}
	sumH := 0
	for _, c := range comps {
		sumH += c.bbox.Height
	}
	band := sumH / (2 * len(comps))
	if band < 1 {
		band = 1
	}
	sort.SliceStable(comps, func(i, j int) bool {
		bi, bj := comps[i].bbox.Y/band, comps[j].bbox.Y/band
		if bi != bj {
			return bi < bj
		}
		return comps[i].bbox.X < comps[j].bbox.X
	})
}
