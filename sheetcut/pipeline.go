package sheetcut

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Options tunes one pipeline instance.
type Options struct {
	// MinArea is the minimum blob area (pixel count) for a detected region to
	// be accepted; the inclusive noise cutoff.
	MinArea int
	// Detector tunes foreground extraction and candidate suppression.
	Detector DetectorOptions
	// Canvas is the fixed output frame for normalized stickers.
	Canvas Canvas
	// Workers bounds the number of regions matted and normalized
	// concurrently. Defaults to GOMAXPROCS when zero.
	Workers int
}

// DefaultOptions returns the tuning for the standard sticker output.
func DefaultOptions() Options {
	return Options{
		MinArea:  1000,
		Detector: DefaultDetectorOptions(),
		Canvas:   StickerCanvas,
		Workers:  0,
	}
}

// RegionFailure records one region that was dropped from the output set.
type RegionFailure struct {
	// Index is the region's position in detection order within the accepted set.
	Index int
	// BBox is the failed region's bounding box on the composite.
	BBox Rectangle
	// Reason is a human-readable description of the drop.
	Reason string
}

// Summary is the aggregate report of one pipeline run. Per-region failures
// are isolated: they are listed here instead of aborting the batch.
type Summary struct {
	RunID    uuid.UUID
	Detected int
	Accepted int
	Produced int
	Failed   int
	Failures []RegionFailure
}

// Pipeline splits one composite sheet into normalized sticker images:
// detect regions, filter noise, matte each region, fit it onto the output
// canvas and hand the PNG bytes to a collector.
type Pipeline struct {
	detector   *RegionDetector
	normalizer *CanvasNormalizer
	matter     Matter
	minArea    int
	workers    int
}

// NewPipeline creates a pipeline using the given matting backend.
func NewPipeline(matter Matter, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		detector:   NewRegionDetector(opts.Detector),
		normalizer: NewCanvasNormalizer(opts.Canvas),
		matter:     matter,
		minArea:    opts.MinArea,
		workers:    workers,
	}
}

// NewDefaultPipeline creates a pipeline with DefaultOptions.
func NewDefaultPipeline(matter Matter) *Pipeline {
	return NewPipeline(matter, DefaultOptions())
}

// Run executes one synchronous batch over a composite sheet using automatic
// region detection. Normalized stickers are delivered to the collector in
// detection order under stable sequential names. Returns ErrNoRegions when
// detection and filtering leave nothing to process.
func (p *Pipeline) Run(ctx context.Context, img image.Image, collector Collector) (*Summary, error) {
	regions := p.detector.Detect(img)
	accepted := FilterByArea(regions, p.minArea)

	summary := &Summary{
		RunID:    uuid.New(),
		Detected: len(regions),
		Accepted: len(accepted),
	}
	if len(accepted) == 0 {
		return summary, ErrNoRegions
	}
	if err := p.processRegions(ctx, accepted, collector, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// RunGrid executes one batch over a composite sheet split into a cols×rows
// lattice instead of detected regions. Every cell is processed; the area
// filter does not apply.
func (p *Pipeline) RunGrid(ctx context.Context, img image.Image, cols, rows int, collector Collector) (*Summary, error) {
	regions, err := GridSplit(img, cols, rows)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		RunID:    uuid.New(),
		Detected: len(regions),
		Accepted: len(regions),
	}
	if err := p.processRegions(ctx, regions, collector, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// processRegions mattes and normalizes every region through a bounded worker
// pool. Results land in index-addressed slots so the output order is the
// detection order regardless of completion order. Per-region failures are
// recorded and skipped; only context cancellation aborts the batch.
func (p *Pipeline) processRegions(ctx context.Context, regions []Region, collector Collector, summary *Summary) error {
	results := make([][]byte, len(regions))
	failures := make([]*RegionFailure, len(regions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range regions {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := p.processOne(ctx, regions[i])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failures[i] = &RegionFailure{
					Index:  i,
					BBox:   regions[i].BBox,
					Reason: err.Error(),
				}
				return nil
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "batch abandoned")
	}

	for _, f := range failures {
		if f != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, *f)
		}
	}
	for _, data := range results {
		if data == nil {
			continue
		}
		if err := collector.Collect(StickerName(summary.Produced), data); err != nil {
			return errors.Wrap(err, "can't collect sticker")
		}
		summary.Produced++
	}
	return nil
}

// processOne runs crop → matting → footprint conformance → normalization →
// PNG encoding for a single region.
func (p *Pipeline) processOne(ctx context.Context, region Region) ([]byte, error) {
	crop := region.Crop()

	matted, err := p.matter.Remove(ctx, crop)
	if err != nil {
		return nil, errors.Wrap(err, "matting failed")
	}
	conformed := conformFootprint(matted, crop.Bounds().Dx(), crop.Bounds().Dy())

	normalized, err := p.normalizer.Normalize(conformed)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, errors.Wrap(err, "can't encode sticker")
	}
	return buf.Bytes(), nil
}
