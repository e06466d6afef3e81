package classify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/constants"
)

type fakeEmbedder struct {
	vectors [][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float64, len(texts))
	for i := range out {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func testLabels() []Label {
	return []Label{
		{
			Type:      constants.UtilityBill,
			Keywords:  []string{"kilowatt", "billing period", "meter reading"},
			Embedding: []float64{1, 0},
		},
		{
			Type:      constants.USCISNotice,
			Keywords:  []string{"uscis", "receipt number", "form i-"},
			Embedding: []float64{0, 1},
		},
	}
}

func loadedCache(t *testing.T, labels []Label) *LabelCache {
	t.Helper()
	cache := NewLabelCache(StaticLabels(labels), nil, "", nil)
	require.NoError(t, cache.Load(context.Background()))
	return cache
}

func TestClassifyKeywordShortCircuitSkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	c := NewClassifier(loadedCache(t, testLabels()), embedder, nil)

	text := "Your billing period ended. Meter reading shows 412 kilowatt hours used."
	res, err := c.Classify(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, constants.UtilityBill, res.Type)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.Len(t, res.MatchedKeywords, 3)
	assert.Equal(t, 0, embedder.calls)
	assert.False(t, res.FallbackUsed)
}

func TestClassifyFusesKeywordAndEmbedding(t *testing.T) {
	// Two keyword hits score 0.7, below the short circuit, so the embedding
	// scorer runs. The document vector matches the utility bill label exactly.
	embedder := &fakeEmbedder{vectors: [][]float64{{1, 0}}}
	c := NewClassifier(loadedCache(t, testLabels()), embedder, nil)

	text := "billing period and meter reading enclosed"
	res, err := c.Classify(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, constants.UtilityBill, res.Type)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	require.NotNil(t, res.EmbeddingSimilarity)
	assert.InDelta(t, 1.0, *res.EmbeddingSimilarity, 1e-9)
	assert.Equal(t, 1, embedder.calls)
}

func TestFuseAgreementBoost(t *testing.T) {
	sim := 0.6
	tests := []struct {
		name string
		kw   float64
		emb  float64
		want float64
	}{
		{name: "strong agreement caps at one", kw: 0.9, emb: 0.6, want: 1.0},
		{name: "moderate agreement boosts", kw: 0.5, emb: 0.4, want: 0.6},
		{name: "weak agreement stays low", kw: 0.3, emb: 0.3, want: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw := Result{Type: constants.USCISNotice, Confidence: tt.kw}
			emb := Result{Type: constants.USCISNotice, Confidence: tt.emb, EmbeddingSimilarity: &sim}
			got := fuse(kw, emb)
			assert.Equal(t, constants.USCISNotice, got.Type)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
		})
	}
}

func TestFuseDisagreement(t *testing.T) {
	sim := 0.5
	kw := Result{Type: constants.USCISNotice, Confidence: 0.7, MatchedKeywords: []string{"uscis", "receipt number"}}
	emb := Result{Type: constants.IRSNotice, Confidence: 0.5, EmbeddingSimilarity: &sim}

	got := fuse(kw, emb)
	assert.Equal(t, constants.USCISNotice, got.Type)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
	assert.Equal(t, &sim, got.EmbeddingSimilarity)

	// A confident embedding overrides a weak keyword signal.
	strong := 0.92
	emb = Result{Type: constants.IRSNotice, Confidence: 0.92, EmbeddingSimilarity: &strong}
	kw = Result{Type: constants.USCISNotice, Confidence: 0.5}
	got = fuse(kw, emb)
	assert.Equal(t, constants.IRSNotice, got.Type)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
}

func TestClassifyEmbeddingFailureFallsBackToKeywords(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("connection refused")}
	c := NewClassifier(loadedCache(t, testLabels()), embedder, nil)

	res, err := c.Classify(context.Background(), "receipt number enclosed with this letter")

	require.NoError(t, err)
	assert.Equal(t, constants.USCISNotice, res.Type)
	assert.True(t, res.FallbackUsed)
	assert.Nil(t, res.EmbeddingSimilarity)
}

func TestClassifyZeroKeywordHitsFallbackType(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("connection refused")}
	c := NewClassifier(loadedCache(t, testLabels()), embedder, nil)

	res, err := c.Classify(context.Background(), "nothing recognizable here")

	require.NoError(t, err)
	assert.Equal(t, constants.OtherDocument, res.Type)
	assert.InDelta(t, 0.1, res.Confidence, 1e-9)
	assert.True(t, res.FallbackUsed)
}

func TestClassifyDimensionMismatchIsHardError(t *testing.T) {
	// Labels carry 2-dim embeddings; the service answers with 3 dims.
	embedder := &fakeEmbedder{vectors: [][]float64{{1, 0, 0}}}
	c := NewClassifier(loadedCache(t, testLabels()), embedder, nil)

	_, err := c.Classify(context.Background(), "billing period enclosed")
	require.Error(t, err)
	assert.True(t, isDimensionMismatch(err))
}

func TestSeedLabelsParse(t *testing.T) {
	labels, err := SeedLabels()
	require.NoError(t, err)
	require.NotEmpty(t, labels)
	seen := make(map[constants.DocumentType]bool)
	for _, l := range labels {
		assert.NotEmpty(t, l.Keywords, "label %s has no keywords", l.Type)
		assert.False(t, seen[l.Type], "duplicate label %s", l.Type)
		seen[l.Type] = true
	}
}

func TestRepresentativeSentenceMentionsKeywords(t *testing.T) {
	s := RepresentativeSentence(Label{
		Type:     constants.UtilityBill,
		Keywords: []string{"kilowatt", "billing period"},
	})
	assert.Contains(t, s, "utility bill")
	assert.Contains(t, s, "kilowatt")
	assert.Contains(t, s, "billing period")
}
