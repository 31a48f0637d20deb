package magic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MagicPath is the server path scans are posted to.
const MagicPath = "/bcmagic/magic/"

// Endpoint sends a scan and returns the server's instruction
type Endpoint interface {
	Submit(ctx context.Context, ev ScanEvent) (*Response, error)
}

// HTTPEndpoint implements Endpoint against a barcode magic server
type HTTPEndpoint struct {
	url    string
	client *http.Client
}

// NewHTTPEndpoint creates an endpoint posting to baseURL + MagicPath
func NewHTTPEndpoint(baseURL string, client *http.Client) *HTTPEndpoint {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPEndpoint{
		url:    strings.TrimSuffix(baseURL, "/") + MagicPath,
		client: client,
	}
}

// Submit posts text and bcm_mode as a form and decodes the answer
func (e *HTTPEndpoint) Submit(ctx context.Context, ev ScanEvent) (*Response, error) {
	form := url.Values{}
	form.Set("text", ev.Text)
	form.Set("bcm_mode", ev.Mode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling barcode magic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("barcode magic error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return DecodeResponse(resp.Body)
}
