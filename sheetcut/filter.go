package sheetcut

// FilterByArea returns the regions whose blob area meets the minimum area
// threshold, preserving their relative order. The boundary is inclusive:
// a region with area exactly equal to minArea is kept. A threshold of zero
// keeps everything.
//
// Composite sheets often contain compression artifacts or accidental marks
// that produce valid but meaningless blobs; minArea is the single
// user-facing knob controlling that sensitivity.
func FilterByArea(regions []Region, minArea int) []Region {
	if minArea <= 0 {
		return regions
	}
	kept := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Area >= minArea {
			kept = append(kept, r)
		}
	}
	return kept
}
