package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedTruncatesOnRuneBoundary(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = req.Texts
		_ = json.NewEncoder(w).Encode(response{Embeddings: [][]float64{{1, 0}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	long := strings.Repeat("é", maxInputChars+50)
	vecs, err := c.Embed(context.Background(), []string{long})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	require.Len(t, received, 1)
	assert.True(t, utf8.ValidString(received[0]))
	assert.Equal(t, maxInputChars, utf8.RuneCountInString(received[0]))
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(response{Embeddings: [][]float64{{1, 0}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")
}
