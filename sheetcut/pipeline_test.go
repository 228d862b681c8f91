package sheetcut

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestPipelineTwoSquaresScenario(t *testing.T) {
	sheet := fillSheet(1000, 1000, white)
	paintRect(sheet, image.Rect(100, 100, 300, 300), black)
	paintRect(sheet, image.Rect(600, 600, 800, 800), black)

	opts := DefaultOptions()
	opts.MinArea = 1000
	pipeline := NewPipeline(NewChromaKeyMatter(), opts)

	collector := NewBufferCollector()
	summary, err := pipeline.Run(context.Background(), sheet, collector)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.Detected != 2 || summary.Accepted != 2 || summary.Produced != 2 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	entries := collector.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 stickers, got %d", len(entries))
	}
	for i, want := range []string{"sticker_01.png", "sticker_02.png"} {
		if entries[i].Name != want {
			t.Errorf("Entry %d: expected name %s, got %s", i, want, entries[i].Name)
		}
		img, err := png.Decode(bytes.NewReader(entries[i].Data))
		if err != nil {
			t.Fatalf("Entry %d: can't decode PNG: %v", i, err)
		}
		if img.Bounds().Dx() != 370 || img.Bounds().Dy() != 320 {
			t.Errorf("Entry %d: expected 370x320, got %v", i, img.Bounds())
		}
		content, ok := tightAlphaBounds(img, 10)
		if !ok {
			t.Fatalf("Entry %d: expected visible sticker content", i)
		}
		if content.Dx() > 240 || content.Dy() > 240 {
			t.Errorf("Entry %d: silhouette %dx%d larger than the inset crop allows", i, content.Dx(), content.Dy())
		}
	}
}

func TestPipelineThresholdExcludesAll(t *testing.T) {
	sheet := fillSheet(1000, 1000, white)
	paintRect(sheet, image.Rect(100, 100, 300, 300), black)
	paintRect(sheet, image.Rect(600, 600, 800, 800), black)

	opts := DefaultOptions()
	opts.MinArea = 50000
	pipeline := NewPipeline(NewChromaKeyMatter(), opts)

	summary, err := pipeline.Run(context.Background(), sheet, NewBufferCollector())
	if !errors.Is(err, ErrNoRegions) {
		t.Fatalf("Expected ErrNoRegions, got %v", err)
	}
	if summary.Detected != 2 {
		t.Errorf("Expected 2 detected regions, got %d", summary.Detected)
	}
	if summary.Accepted != 0 {
		t.Errorf("Expected 0 accepted regions, got %d", summary.Accepted)
	}
}

func TestPipelineRestoresDetectionOrder(t *testing.T) {
	sheet := fillSheet(900, 600, white)
	paintRect(sheet, image.Rect(50, 50, 200, 200), red)
	paintRect(sheet, image.Rect(500, 50, 650, 200), green)
	paintRect(sheet, image.Rect(50, 350, 200, 500), blue)

	// Completion order is forced to be the reverse of detection order.
	delays := map[uint8]time.Duration{
		255: 60 * time.Millisecond, // red, detected first
		0:   30 * time.Millisecond, // green
	}
	keyer := NewChromaKeyMatter()
	slowMatter := matterFunc(func(ctx context.Context, img image.Image) (image.Image, error) {
		c := centerColor(img)
		if d, ok := delays[c.R]; ok && c.B == 0 {
			time.Sleep(d)
		}
		return keyer.Remove(ctx, img)
	})

	opts := DefaultOptions()
	opts.Workers = 3
	pipeline := NewPipeline(slowMatter, opts)

	collector := NewBufferCollector()
	summary, err := pipeline.Run(context.Background(), sheet, collector)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if summary.Produced != 3 {
		t.Fatalf("Expected 3 stickers, got %d", summary.Produced)
	}

	wantOrder := []uint8{'r', 'g', 'b'}
	entries := collector.Entries()
	for i, channel := range wantOrder {
		img, err := png.Decode(bytes.NewReader(entries[i].Data))
		if err != nil {
			t.Fatalf("Entry %d: can't decode PNG: %v", i, err)
		}
		c := centerColor(img)
		var got uint8
		switch {
		case c.R > 200 && c.G < 50:
			got = 'r'
		case c.G > 200:
			got = 'g'
		case c.B > 200:
			got = 'b'
		}
		if got != channel {
			t.Errorf("Entry %d: expected sticker %q by detection order, got %q (color %+v)", i, channel, got, c)
		}
	}
}

func TestPipelineIsolatesMatterFailure(t *testing.T) {
	sheet := fillSheet(900, 300, white)
	paintRect(sheet, image.Rect(50, 50, 200, 200), red)
	paintRect(sheet, image.Rect(500, 50, 650, 200), green)

	keyer := NewChromaKeyMatter()
	failingMatter := matterFunc(func(ctx context.Context, img image.Image) (image.Image, error) {
		if c := centerColor(img); c.G > 200 {
			return nil, errors.New("model unavailable")
		}
		return keyer.Remove(ctx, img)
	})

	pipeline := NewDefaultPipeline(failingMatter)
	collector := NewBufferCollector()
	summary, err := pipeline.Run(context.Background(), sheet, collector)
	if err != nil {
		t.Fatalf("Expected the batch to survive a region failure, got %v", err)
	}

	if summary.Produced != 1 || summary.Failed != 1 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 {
		t.Fatalf("Expected 1 recorded failure, got %d", len(summary.Failures))
	}
	failure := summary.Failures[0]
	if failure.Index != 1 {
		t.Errorf("Expected the second region to fail, got index %d", failure.Index)
	}
	if !bytes.Contains([]byte(failure.Reason), []byte("matting failed")) {
		t.Errorf("Expected a matting failure reason, got %q", failure.Reason)
	}

	entries := collector.Entries()
	if len(entries) != 1 || entries[0].Name != "sticker_01.png" {
		t.Errorf("Expected a single sticker_01.png, got %+v", entries)
	}
}

func TestPipelineDropsDegenerateMatte(t *testing.T) {
	sheet := fillSheet(900, 300, white)
	paintRect(sheet, image.Rect(50, 50, 200, 200), red)
	paintRect(sheet, image.Rect(500, 50, 650, 200), green)

	keyer := NewChromaKeyMatter()
	blankingMatter := matterFunc(func(ctx context.Context, img image.Image) (image.Image, error) {
		if c := centerColor(img); c.G > 200 {
			b := img.Bounds()
			return image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy())), nil
		}
		return keyer.Remove(ctx, img)
	})

	summary, err := NewDefaultPipeline(blankingMatter).Run(context.Background(), sheet, NewBufferCollector())
	if err != nil {
		t.Fatalf("Expected the batch to survive a degenerate matte, got %v", err)
	}
	if summary.Produced != 1 || summary.Failed != 1 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
	if !bytes.Contains([]byte(summary.Failures[0].Reason), []byte("noise floor")) {
		t.Errorf("Expected a degenerate matte reason, got %q", summary.Failures[0].Reason)
	}
}

func TestPipelineGridMode(t *testing.T) {
	sheet := fillSheet(400, 200, white)
	// Only the left cell holds an artwork; the right one is blank background.
	paintRect(sheet, image.Rect(40, 40, 160, 160), black)

	pipeline := NewDefaultPipeline(NewChromaKeyMatter())
	collector := NewBufferCollector()
	summary, err := pipeline.RunGrid(context.Background(), sheet, 2, 1, collector)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.Detected != 2 || summary.Accepted != 2 {
		t.Errorf("Expected both cells accepted, got %+v", summary)
	}
	if summary.Produced != 1 || summary.Failed != 1 {
		t.Errorf("Expected the blank cell dropped, got %+v", summary)
	}

	entries := collector.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 sticker, got %d", len(entries))
	}
	img, err := png.Decode(bytes.NewReader(entries[0].Data))
	if err != nil {
		t.Fatalf("Can't decode sticker: %v", err)
	}
	if img.Bounds().Dx() != 370 || img.Bounds().Dy() != 320 {
		t.Errorf("Expected 370x320 sticker, got %v", img.Bounds())
	}
}

func TestPipelineAbandonedContext(t *testing.T) {
	sheet := fillSheet(500, 500, white)
	paintRect(sheet, image.Rect(100, 100, 300, 300), black)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultPipeline(NewChromaKeyMatter()).Run(ctx, sheet, NewBufferCollector())
	if err == nil {
		t.Fatal("Expected an error for an abandoned batch")
	}
	if errors.Is(err, ErrNoRegions) {
		t.Error("Cancellation must not masquerade as NoRegionsFound")
	}
}

// centerColor samples the pixel at the middle of the image.
func centerColor(img image.Image) color.NRGBA {
	b := img.Bounds()
	r, g, bl, a := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
}
