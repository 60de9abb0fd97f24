package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentActivation/internal/config"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

func TestNewOllamaClientRequiresModel(t *testing.T) {
	t.Parallel()

	_, err := NewOllamaClient(config.OllamaConfig{URL: "http://localhost:11434"})
	require.Error(t, err)
}

func TestOllamaGenerateText(t *testing.T) {
	t.Parallel()

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","created_at":"2024-01-01T00:00:00Z",` +
			`"message":{"role":"assistant","content":"Grow pipeline with smarter lead scoring."},"done":true}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(config.OllamaConfig{URL: srv.URL, TextModel: "llama3.2"})
	require.NoError(t, err)
	assert.False(t, client.SupportsVision())
	assert.Equal(t, domain.TierLocal, client.Tier())

	text, err := client.GenerateText(context.Background(), "describe", ports.GenerationContext{})
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "lead scoring"), text)
	assert.Equal(t, "llama3.2", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "describe", got.Messages[0].Content)
}

func TestOllamaServerDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewOllamaClient(config.OllamaConfig{URL: srv.URL, TextModel: "llama3.2", VisionModel: "qwen2.5vl"})
	require.NoError(t, err)
	require.True(t, client.SupportsVision())

	_, err = client.DescribeImage(context.Background(), domain.Image{MIMEType: "image/png", Data: []byte("png")}, "p", ports.GenerationContext{})
	require.Error(t, err)
	var pErr *domain.ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "ollama", pErr.Provider)
}
