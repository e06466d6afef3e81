package classify

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/constants"
)

// mutableLabels returns copies so Load never mutates the source in place,
// matching how the labels table behaves.
type mutableLabels struct {
	labels []Label
}

func (m *mutableLabels) ListLabels(context.Context) ([]Label, error) {
	out := make([]Label, len(m.labels))
	copy(out, m.labels)
	return out, nil
}

func TestLabelCacheSnapshotReuseAndInvalidation(t *testing.T) {
	ctx := context.Background()
	snapshotPath := filepath.Join(t.TempDir(), "label-embeddings.msgpack")

	source := &mutableLabels{labels: []Label{
		{Type: constants.UtilityBill, Keywords: []string{"kilowatt"}},
	}}
	embedder := &fakeEmbedder{vectors: [][]float64{{1, 0}}}
	cache := NewLabelCache(source, embedder, snapshotPath, nil)

	require.NoError(t, cache.Load(ctx))
	require.Equal(t, 1, embedder.calls)
	require.Equal(t, []float64{1, 0}, cache.Labels()[0].Embedding)

	// unchanged keywords: the on-disk vector is reused, no embed call
	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, []float64{1, 0}, cache.Labels()[0].Embedding)

	// changed keywords alter the representative sentence, so the snapshot
	// entry no longer applies and the label is re-embedded
	source.labels = []Label{
		{Type: constants.UtilityBill, Keywords: []string{"water usage", "sewer charge", "gallons"}},
	}
	embedder.vectors = [][]float64{{0, 1}}
	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 2, embedder.calls)
	assert.Equal(t, []float64{0, 1}, cache.Labels()[0].Embedding)
}
