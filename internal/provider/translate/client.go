// Package translate calls the machine-translation gateway. Translation is
// best-effort: callers degrade to original-language processing on failure.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paperlens/paperlens/internal/provider"
	"github.com/paperlens/paperlens/internal/textproc"
)

// Result carries the translated text plus the gateway's self-assessment,
// blended with the local quality check.
type Result struct {
	Text       string
	Confidence float64
	Provider   string
	Quality    QualityReport
}

// Request mirrors the gateway's POST body.
type Request struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider,omitempty"`
}

type response struct {
	TranslatedText string  `json:"translated_text"`
	Confidence     float64 `json:"confidence"`
	Provider       string  `json:"provider"`
}

// Client calls the translation gateway over HTTP.
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
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Translate sends text segment by segment and reassembles the result. The
// gateway handles short chunks much better than whole scanned letters.
func (c *Client) Translate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	segments := textproc.Segment(req.Text, textproc.DefaultSegmentLength)

	var out strings.Builder
	var confSum float64
	providerName := req.Provider
	for i, seg := range segments {
		segReq := req
		segReq.Text = seg
		raw, status, err := provider.SendJSON(ctx, c.http, c.baseURL+"/translate", segReq, nil, c.logger)
		if err != nil {
			c.logger.Error("translate.segment.failed",
				"segment", i, "segments", len(segments), "status", status, "error", err)
			return Result{}, fmt.Errorf("translate segment %d/%d: %w", i+1, len(segments), err)
		}
		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return Result{}, fmt.Errorf("decode translation response: %w", err)
		}
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(resp.TranslatedText)
		confSum += resp.Confidence
		if resp.Provider != "" {
			providerName = resp.Provider
		}
	}

	res := Result{
		Text:     out.String(),
		Provider: providerName,
	}
	if len(segments) > 0 {
		res.Confidence = confSum / float64(len(segments))
	}

	// Local quality check dampens the gateway's self-reported confidence.
	res.Quality = CheckQuality(req.Text, res.Text)
	res.Confidence = res.Confidence * res.Quality.Score

	c.logger.Info("translate.completed",
		"segments", len(segments),
		"provider", res.Provider,
		"confidence", res.Confidence,
		"quality_issues", len(res.Quality.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Healthy pings the gateway.
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
		return fmt.Errorf("translate health: status %d", resp.StatusCode)
	}
	return nil
}
