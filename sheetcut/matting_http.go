package sheetcut

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPMatter calls a rembg-compatible background removal service: the crop is
// posted as a PNG and the response body is the matted PNG.
type HTTPMatter struct {
	// Endpoint is the full URL of the removal endpoint, e.g.
	// http://localhost:7000/api/remove
	Endpoint string
	// Client is the HTTP client used for requests. Defaults to a client with
	// DefaultMattingTimeout when nil.
	Client *http.Client
}

// DefaultMattingTimeout bounds a single matting round trip. Model inference
// is the dominant cost of the whole batch, so the budget is generous.
const DefaultMattingTimeout = 60 * time.Second

// NewHTTPMatter creates an HTTP matter for the given endpoint.
func NewHTTPMatter(endpoint string) *HTTPMatter {
	return &HTTPMatter{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: DefaultMattingTimeout},
	}
}

// Remove implements Matter.
func (m *HTTPMatter) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, errors.Wrap(err, "can't encode crop for matting request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, &body)
	if err != nil {
		return nil, errors.Wrap(err, "can't build matting request")
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "image/png")

	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultMattingTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "matting request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("matting service returned status %d: %s", resp.StatusCode, string(payload))
	}

	matted, err := png.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "can't decode matting response")
	}
	return matted, nil
}
