package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what does rs429358 mean?", req["prompt"])
		assert.Equal(t, float64(512), req["max_length"])
		assert.InDelta(t, 0.3, req["temperature"], 1e-9)

		json.NewEncoder(w).Encode(map[string]string{"generated_text": "APOE risk variant."})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	text, err := client.Generate(context.Background(), "what does rs429358 mean?", 512)
	require.NoError(t, err)
	assert.Equal(t, "APOE risk variant.", text)
}

func TestEmbeddings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var req map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req["texts"])

		json.NewEncoder(w).Encode(map[string][][]float64{
			"embeddings": {{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	vectors, err := client.Embeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vectors[0])
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxRetries: 1}, testLogger())
	_, err := client.Generate(context.Background(), "prompt", 64)
	assert.Error(t, err)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, MaxRetries: 1, RateLimit: 1000}, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Generate(ctx, "prompt", 64)
		require.Error(t, err)
	}

	// The breaker is now open; the request must fail without reaching the
	// server.
	server.Close()
	_, err := client.Generate(ctx, "prompt", 64)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	assert.NoError(t, client.Health(context.Background()))
}
