package sheetcut

import (
	"archive/zip"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Collector aggregates named sticker byte buffers for archive packaging.
// The pipeline guarantees unique, stable, order-preserving names so that
// re-running packaging over the same output set is deterministic.
type Collector interface {
	Collect(name string, data []byte) error
}

// StickerName returns the stable archive name for the sticker at the given
// zero-based detection index: sticker_01.png, sticker_02.png, ...
func StickerName(index int) string {
	return fmt.Sprintf("sticker_%02d.png", index+1)
}

// ZipCollector streams collected entries into a zip archive.
type ZipCollector struct {
	zw *zip.Writer
}

// NewZipCollector creates a collector writing the archive to w.
func NewZipCollector(w io.Writer) *ZipCollector {
	return &ZipCollector{zw: zip.NewWriter(w)}
}

// Collect implements Collector, appending one archive entry.
func (c *ZipCollector) Collect(name string, data []byte) error {
	entry, err := c.zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't create archive entry %s", name)
	}
	if _, err := entry.Write(data); err != nil {
		return errors.Wrapf(err, "can't write archive entry %s", name)
	}
	return nil
}

// Close finishes the archive. The collector must not be used afterwards.
func (c *ZipCollector) Close() error {
	return errors.Wrap(c.zw.Close(), "can't finalize archive")
}

// BufferCollector keeps collected entries in memory, in collect order.
type BufferCollector struct {
	mu      sync.Mutex
	entries []BufferedSticker
}

// BufferedSticker is one collected entry.
type BufferedSticker struct {
	Name string
	Data []byte
}

// NewBufferCollector creates an empty in-memory collector.
func NewBufferCollector() *BufferCollector {
	return &BufferCollector{}
}

// Collect implements Collector.
func (c *BufferCollector) Collect(name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, BufferedSticker{Name: name, Data: data})
	return nil
}

// Entries returns the collected stickers in collect order.
// Be careful: this is not a copy, but a reference to the internal slice.
func (c *BufferCollector) Entries() []BufferedSticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}
