package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// newServer fakes /api/embed, answering each input with [len(input), 1, 0].
// drop removes that many embeddings from every reply.
func newServer(t *testing.T, status, drop int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte("nope"))
				return
			}
			var req embedRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.True(t, req.Truncate)

			resp := embedResponse{Model: req.Model}
			for _, in := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float64{float64(len(in)), 1, 0})
			}
			resp.Embeddings = resp.Embeddings[:len(resp.Embeddings)-drop]
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://ollama:11434/"})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "http://ollama:11434", svc.baseURL)
	assert.False(t, svc.client.Throttled())
}

func TestEmbed(t *testing.T) {
	srv := newServer(t, http.StatusOK, 0)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL, RequestsPerSecond: 100})

	vec, err := svc.Embed(context.Background(), "abcd")

	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1, 0}, vec)
}

func TestEmbedBatch_OneRequest(t *testing.T) {
	srv := newServer(t, http.StatusOK, 0)
	svc := NewEmbeddingService(Config{BaseURL: srv.URL})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "abc"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(3), vecs[1][0])
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:0"})

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, 1).URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusInternalServerError, 0).URL})
		_, err := svc.Embed(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusTooManyRequests, 0).URL})
		_, err := svc.Embed(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}

func TestPing(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, 0).URL})
	assert.NoError(t, svc.Ping(context.Background()))
}
