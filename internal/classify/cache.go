package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Embedder produces one vector per input text. Satisfied by the embedding
// provider client.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// LabelCache holds the label set and its embeddings. It is the only state
// shared across concurrent pipeline runs: read-mostly, populated at startup,
// refreshed explicitly after a label upsert.
type LabelCache struct {
	mu     sync.RWMutex
	labels []Label

	source       LabelSource
	embedder     Embedder
	snapshotPath string
	logger       *slog.Logger
}

func NewLabelCache(source LabelSource, embedder Embedder, snapshotPath string, logger *slog.Logger) *LabelCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelCache{
		source:       source,
		embedder:     embedder,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// snapshotEntry pins a cached vector to the sentence it embeds. A keyword
// change alters the representative sentence, which invalidates the entry and
// forces a re-embed on the next Load.
type snapshotEntry struct {
	Sentence string    `msgpack:"sentence"`
	Vector   []float64 `msgpack:"vector"`
}

// Load lists labels from the source and fills in missing embeddings, first
// from the on-disk snapshot, then from the embedding service. A dead embedding
// service leaves embeddings empty; the classifier then runs keyword-only.
func (c *LabelCache) Load(ctx context.Context) error {
	labels, err := c.source.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("list labels: %w", err)
	}

	snapshot := c.readSnapshot()
	var missing []int
	for i := range labels {
		if len(labels[i].Embedding) > 0 {
			continue
		}
		entry, ok := snapshot[string(labels[i].Type)]
		if ok && entry.Sentence == RepresentativeSentence(labels[i]) {
			labels[i].Embedding = entry.Vector
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) > 0 && c.embedder != nil {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = RepresentativeSentence(labels[i])
		}
		vectors, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			c.logger.Warn("classify.cache.embed_failed",
				"missing", len(missing), "error", err)
		} else {
			for j, i := range missing {
				labels[i].Embedding = vectors[j]
			}
		}
	}

	c.mu.Lock()
	c.labels = labels
	c.mu.Unlock()

	c.writeSnapshot(labels)
	c.logger.Info("classify.cache.loaded", "labels", len(labels))
	return nil
}

// Refresh re-reads the label set. Called after an admin label upsert.
func (c *LabelCache) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// Labels returns a copy of the current label set.
func (c *LabelCache) Labels() []Label {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Label, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *LabelCache) readSnapshot() map[string]snapshotEntry {
	if c.snapshotPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		return nil
	}
	var snapshot map[string]snapshotEntry
	if err := msgpack.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("classify.cache.snapshot_corrupt", "path", c.snapshotPath, "error", err)
		return nil
	}
	return snapshot
}

func (c *LabelCache) writeSnapshot(labels []Label) {
	if c.snapshotPath == "" {
		return
	}
	snapshot := make(map[string]snapshotEntry, len(labels))
	for _, l := range labels {
		if len(l.Embedding) > 0 {
			snapshot[string(l.Type)] = snapshotEntry{
				Sentence: RepresentativeSentence(l),
				Vector:   l.Embedding,
			}
		}
	}
	if len(snapshot) == 0 {
		return
	}
	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("classify.cache.snapshot_encode_failed", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.snapshotPath), 0o755); err != nil {
		c.logger.Warn("classify.cache.snapshot_dir_failed", "error", err)
		return
	}
	if err := os.WriteFile(c.snapshotPath, data, 0o644); err != nil {
		c.logger.Warn("classify.cache.snapshot_write_failed", "path", c.snapshotPath, "error", err)
	}
}
