package api

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/LdDl/sheetcut-go/sheetcut"
)

// HandleSplit accepts a composite sheet upload and responds with a zip
// archive of normalized sticker PNGs. Form fields:
//   - image: the composite sheet (png or jpeg)
//   - mode: "auto" (default) or "grid"
//   - min_area: noise cutoff for auto mode
//   - cols, rows: lattice for grid mode
func HandleSplit(c *gin.Context, config *Config) {
	img, err := decodeUpload(c, config.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := sheetcut.DefaultOptions()
	opts.Workers = config.Workers
	opts.MinArea = intForm(c, "min_area", DefaultMinArea)
	if opts.MinArea < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_area must be non-negative"})
		return
	}
	pipeline := sheetcut.NewPipeline(selectMatter(config), opts)

	var archive bytes.Buffer
	collector := sheetcut.NewZipCollector(&archive)

	var summary *sheetcut.Summary
	mode := c.DefaultPostForm("mode", "auto")
	switch mode {
	case "auto":
		summary, err = pipeline.Run(c.Request.Context(), img, collector)
	case "grid":
		cols := intForm(c, "cols", DefaultGridCols)
		rows := intForm(c, "rows", DefaultGridRows)
		if cols < 1 || rows < 1 || cols > MaxGridDimension || rows > MaxGridDimension {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("grid dimensions must be between 1 and %d", MaxGridDimension)})
			return
		}
		summary, err = pipeline.RunGrid(c.Request.Context(), img, cols, rows, collector)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be auto or grid"})
		return
	}

	if err != nil {
		if errors.Is(err, sheetcut.ErrNoRegions) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":    "no stickers detected, try lowering min_area or using grid mode",
				"detected": summary.Detected,
				"accepted": summary.Accepted,
			})
			return
		}
		log.Printf("Split failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	if err := collector.Close(); err != nil {
		log.Printf("Archive finalization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive packaging failed"})
		return
	}

	log.Printf("Run %s: detected=%d accepted=%d produced=%d failed=%d",
		summary.RunID, summary.Detected, summary.Accepted, summary.Produced, summary.Failed)

	writeSummaryHeaders(c, summary)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", ArchiveFilename))
	c.Data(http.StatusOK, "application/zip", archive.Bytes())
}

// HandleIcons converts a single uploaded artwork into the main image and chat
// tab renditions, bundled as a zip.
func HandleIcons(c *gin.Context, config *Config) {
	img, err := decodeUpload(c, config.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	icons, err := sheetcut.MakeIcons(c.Request.Context(), img, selectMatter(config))
	if err != nil {
		if errors.Is(err, sheetcut.ErrDegenerateMatte) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "background removal left no visible content"})
			return
		}
		log.Printf("Icon conversion failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	var archive bytes.Buffer
	collector := sheetcut.NewZipCollector(&archive)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"main.png", icons.Main},
		{"tab.png", icons.Tab},
	} {
		if err := collector.Collect(entry.name, entry.data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "archive packaging failed"})
			return
		}
	}
	if err := collector.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive packaging failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", IconsArchiveFilename))
	c.Data(http.StatusOK, "application/zip", archive.Bytes())
}

// decodeUpload reads and decodes the multipart "image" field.
func decodeUpload(c *gin.Context, maxSize int64) (image.Image, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return nil, errors.New("no image uploaded")
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, errors.Errorf("image exceeds the %d byte limit", maxSize)
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.New("unreadable image: expected png or jpeg")
	}
	return img, nil
}

// selectMatter picks the matting backend: the configured rembg-compatible
// service when available, the built-in chroma keyer otherwise.
func selectMatter(config *Config) sheetcut.Matter {
	if config.MattingEndpoint != "" {
		return sheetcut.NewHTTPMatter(config.MattingEndpoint)
	}
	return sheetcut.NewChromaKeyMatter()
}

// intForm parses an optional integer form field, falling back to def when the
// field is absent or malformed.
func intForm(c *gin.Context, field string, def int) int {
	raw := c.PostForm(field)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

func writeSummaryHeaders(c *gin.Context, summary *sheetcut.Summary) {
	c.Header("X-Run-Id", summary.RunID.String())
	c.Header("X-Regions-Detected", strconv.Itoa(summary.Detected))
	c.Header("X-Regions-Accepted", strconv.Itoa(summary.Accepted))
	c.Header("X-Stickers-Produced", strconv.Itoa(summary.Produced))
	c.Header("X-Regions-Failed", strconv.Itoa(summary.Failed))
}
