// Package ocr adapts external OCR engines into one fixed result type.
// Downstream stages never branch on engine identity.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paperlens/paperlens/internal/provider"
)

// Result is the normalized OCR output shared by every engine shape.
type Result struct {
	Text       string
	Confidence float64
	Language   string
	Words      []Word
}

// Word is a recognized token with its page-coordinate bounding box.
type Word struct {
	Text       string
	Confidence float64
	BBox       BBox
}

// BBox is an axis-aligned box in page pixels.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Client calls one OCR engine over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ExtractFile reads path and runs Extract on its contents.
func (c *Client) ExtractFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read document: %w", err)
	}
	return c.Extract(ctx, data)
}

// Extract posts document bytes to the engine and normalizes the response.
func (c *Client) Extract(ctx context.Context, document []byte) (Result, error) {
	start := time.Now()
	raw, status, err := provider.SendBytes(ctx, c.http, c.baseURL+"/process", document, "application/octet-stream", c.logger)
	if err != nil {
		c.logger.Error("ocr.extract.failed", "status", status, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{}, fmt.Errorf("ocr engine: %w", err)
	}

	res, err := NormalizeResponse(raw)
	if err != nil {
		c.logger.Error("ocr.extract.decode_error", "error", err, "raw_bytes", len(raw))
		return Result{}, err
	}

	c.logger.Info("ocr.extract.completed",
		"text_len", len(res.Text),
		"words", len(res.Words),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Healthy pings the engine. Failures are reported, never fatal.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ocr health: status %d", resp.StatusCode)
	}
	return nil
}
