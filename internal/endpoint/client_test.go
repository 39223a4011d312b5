package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/v1", "test-key")
}

func modelsHandler(ids ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		type m struct {
			ID     string `json:"id"`
			Object string `json:"object"`
		}
		var data []m
		for _, id := range ids {
			data = append(data, m{ID: id, Object: "model"})
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}
}

func TestModels(t *testing.T) {
	c := fakeServer(t, modelsHandler("qwen3-vl-30b-instruct"))
	ids, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen3-vl-30b-instruct"}, ids)
}

func TestHasModel(t *testing.T) {
	c := fakeServer(t, modelsHandler("a", "b"))
	ok, err := c.HasModel(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasModel(context.Background(), "c")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.HasModel(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok, "empty name matches any served model")
}

func TestWaitReady_BecomesReady(t *testing.T) {
	var calls atomic.Int32
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		modelsHandler("m")(w, r)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.WaitReady(ctx, "m", 10*time.Millisecond))
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitReady_ContextExpires(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading", http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.WaitReady(ctx, "m", 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSmokeChat(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "Say hi.", req.Messages[0].Content)

		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1", "object": "chat.completion", "model": req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "Hi!"}, "finish_reason": "stop"},
			},
		})
	})
	out, err := c.SmokeChat(context.Background(), "qwen3-vl-30b-instruct")
	require.NoError(t, err)
	assert.Equal(t, "Hi!", out)
}

func TestSmokeEmbedding(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		vec := make([]float32, 4096)
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vec},
			},
		})
	})
	dim, err := c.SmokeEmbedding(context.Background(), "qwen3-embedding-8b")
	require.NoError(t, err)
	assert.Equal(t, 4096, dim)
}
