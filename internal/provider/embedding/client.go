// Package embedding calls the external text-embedding service.
package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paperlens/paperlens/internal/provider"
)

// maxInputChars truncates texts (in characters) before the call; the service
// rejects longer inputs and classification quality plateaus well before this.
const maxInputChars = 2000

type request struct {
	Texts []string `json:"texts"`
}

type response struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Client calls the embedding service over HTTP.
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
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	truncated := make([]string, len(texts))
	for i, t := range texts {
		if utf8.RuneCountInString(t) > maxInputChars {
			runes := []rune(t)
			t = string(runes[:maxInputChars])
		}
		truncated[i] = t
	}

	raw, status, err := provider.SendJSON(ctx, c.http, c.baseURL+"/embed", request{Texts: truncated}, nil, c.logger)
	if err != nil {
		c.logger.Error("embedding.embed.failed", "status", status, "error", err)
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// Healthy pings the service.
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
		return fmt.Errorf("embedding health: status %d", resp.StatusCode)
	}
	return nil
}
