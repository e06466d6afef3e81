// Package classify determines the document type from two independent signals:
// keyword density and semantic-embedding similarity against per-type label
// embeddings, fused by an agreement-boosting policy.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paperlens/paperlens/constants"
)

// Fusion policy constants. Inherited heuristics; configuration defaults, not
// a derivation.
const (
	shortCircuitConf = 0.8
	agreementDivisor = 1.5
	disagreeKwFloor  = 0.5
	disagreeEmbCeil  = 0.7
)

// Result is the classifier's verdict for one document.
type Result struct {
	Type                constants.DocumentType
	Confidence          float64
	MatchedKeywords     []string
	EmbeddingSimilarity *float64
	FallbackUsed        bool
}

// Classifier fuses the keyword scorer with the embedding scorer.
type Classifier struct {
	cache    *LabelCache
	embedder Embedder
	logger   *slog.Logger
}

func NewClassifier(cache *LabelCache, embedder Embedder, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cache: cache, embedder: embedder, logger: logger}
}

// Classify runs the keyword scorer, short-circuits on high confidence, and
// otherwise consults the embedding scorer. Embedding-service failure falls
// back to the keyword result with FallbackUsed set; only a label-embedding
// dimension mismatch is a hard error.
func (c *Classifier) Classify(ctx context.Context, text string) (Result, error) {
	labels := c.cache.Labels()
	kw := keywordScore(text, labels)

	if kw.Confidence >= shortCircuitConf {
		c.logger.Debug("classify.keyword_short_circuit", "type", kw.Type, "confidence", kw.Confidence)
		return kw, nil
	}

	emb, err := c.embeddingScore(ctx, text, labels)
	if err != nil {
		if isDimensionMismatch(err) {
			return Result{}, err
		}
		c.logger.Warn("classify.embedding_fallback", "error", err)
		kw.FallbackUsed = true
		return kw, nil
	}

	return fuse(kw, emb), nil
}

func fuse(kw, emb Result) Result {
	if kw.Type == emb.Type {
		boosted := (kw.Confidence + emb.Confidence) / agreementDivisor
		if boosted > 1 {
			boosted = 1
		}
		return Result{
			Type:                kw.Type,
			Confidence:          boosted,
			MatchedKeywords:     kw.MatchedKeywords,
			EmbeddingSimilarity: emb.EmbeddingSimilarity,
		}
	}
	if kw.Confidence > disagreeKwFloor && emb.Confidence < disagreeEmbCeil {
		kw.EmbeddingSimilarity = emb.EmbeddingSimilarity
		return kw
	}
	return emb
}

// embeddingScore embeds the text and picks the most similar label embedding.
func (c *Classifier) embeddingScore(ctx context.Context, text string, labels []Label) (Result, error) {
	if c.embedder == nil {
		return Result{}, fmt.Errorf("no embedder configured")
	}
	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return Result{}, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return Result{}, fmt.Errorf("embedding service returned no vector")
	}
	docVec := vectors[0]

	best := Result{Type: constants.OtherDocument}
	found := false
	for _, label := range labels {
		if len(label.Embedding) == 0 {
			continue
		}
		sim, err := Cosine(docVec, label.Embedding)
		if err != nil {
			return Result{}, &dimensionMismatchError{cause: err, label: label.Type}
		}
		if !found || sim > *bestSim(&best) {
			s := sim
			best = Result{Type: label.Type, Confidence: sim, EmbeddingSimilarity: &s}
			found = true
		}
	}
	if !found {
		return Result{}, fmt.Errorf("no label embeddings available")
	}
	return best, nil
}

func bestSim(r *Result) *float64 {
	if r.EmbeddingSimilarity == nil {
		zero := 0.0
		return &zero
	}
	return r.EmbeddingSimilarity
}

type dimensionMismatchError struct {
	cause error
	label constants.DocumentType
}

func (e *dimensionMismatchError) Error() string {
	return fmt.Sprintf("label %s: %v", e.label, e.cause)
}

func (e *dimensionMismatchError) Unwrap() error { return e.cause }

func isDimensionMismatch(err error) bool {
	var dm *dimensionMismatchError
	return errors.As(err, &dm)
}
