package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRuntimeClient runs the client against an httptest stand-in for the
// Ollama native API.
func TestRuntimeClient(t *testing.T) {
	var captured []GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			_, _ = w.Write([]byte(`{"version":"0.5.0"}`))
		case "/api/generate":
			var req GenerateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			captured = append(captured, req)
			if !req.Stream {
				_, _ = w.Write([]byte(`{"response":"","done":true}`))
				return
			}
			_, _ = w.Write([]byte("{\"response\":\"Hel\",\"done\":false}\n\n{\"response\":\"lo\",\"done\":false}\n{\"response\":\"\",\"done\":true}\n"))
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"gemma:2b","size":42}]}`))
		case "/api/pull":
			_, _ = w.Write([]byte("{\"status\":\"pulling manifest\"}\n{\"status\":\"success\"}\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL+"/", "10m")
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, client.Ping(ctx))
	})

	t.Run("Load sends keep_alive without prompt", func(t *testing.T) {
		captured = nil
		require.NoError(t, client.Load(ctx, "gemma:2b"))

		require.Len(t, captured, 1)
		assert.Equal(t, "gemma:2b", captured[0].Model)
		assert.Empty(t, captured[0].Prompt)
		assert.Equal(t, "10m", captured[0].KeepAlive)
	})

	t.Run("Unload sends zero keep_alive", func(t *testing.T) {
		captured = nil
		require.NoError(t, client.Unload(ctx, "gemma:2b"))

		require.Len(t, captured, 1)
		assert.EqualValues(t, 0, captured[0].KeepAlive)
	})

	t.Run("GenerateStream", func(t *testing.T) {
		captured = nil
		var chunks []string
		err := client.GenerateStream(ctx, GenerateRequest{Model: "gemma:2b", Prompt: "user: hi\nmodel: "}, func(s string) {
			chunks = append(chunks, s)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"Hel", "lo"}, chunks)
		require.Len(t, captured, 1)
		assert.True(t, captured[0].Stream)
	})

	t.Run("ListModels", func(t *testing.T) {
		list, err := client.ListModels(ctx)

		require.NoError(t, err)
		require.Len(t, list.Models, 1)
		assert.Equal(t, "gemma:2b", list.Models[0].Name)
	})

	t.Run("PullModel", func(t *testing.T) {
		ch := make(chan PullStatus)
		var statuses []string
		done := make(chan error, 1)
		go func() { done <- client.PullModel(ctx, &PullModelRequest{Name: "gemma:2b"}, ch) }()

		for s := range ch {
			statuses = append(statuses, s.Status)
		}

		require.NoError(t, <-done)
		assert.Equal(t, []string{"pulling manifest", "success"}, statuses)
	})
}

func TestRuntimeClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, "")
	err := client.Load(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestRuntimeClient_StreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{\"response\":\"par\",\"done\":false}\n{\"error\":\"out of memory\"}\n"))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, "")
	var chunks []string
	err := client.GenerateStream(context.Background(), GenerateRequest{Model: "m"}, func(s string) { chunks = append(chunks, s) })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
	assert.Equal(t, []string{"par"}, chunks)
}

func TestRuntimeClient_StreamCutShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{\"response\":\"par\",\"done\":false}\n"))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, "")
	var chunks []string
	err := client.GenerateStream(context.Background(), GenerateRequest{Model: "m"}, func(s string) { chunks = append(chunks, s) })

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []string{"par"}, chunks)
}
