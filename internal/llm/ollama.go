package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RuntimeClient talks to the native API of a local Ollama runtime. It backs
// the on-device engine and the model catalog.
type RuntimeClient struct {
	client    *http.Client
	url       string
	keepAlive string
}

func NewRuntimeClient(url, keepAlive string) *RuntimeClient {
	return &RuntimeClient{
		client:    &http.Client{},
		url:       strings.TrimRight(url, "/"),
		keepAlive: keepAlive,
	}
}

// GenerateRequest is the body of /api/generate.
type GenerateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt,omitempty"`
	System    string         `json:"system,omitempty"`
	Stream    bool           `json:"stream"`
	KeepAlive any            `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type ModelDetails struct {
	Format            string `json:"format"`
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

type Model struct {
	Name       string       `json:"name"`
	ModifiedAt string       `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

type ListModelsResponse struct {
	Models []Model `json:"models"`
}

type PullModelRequest struct {
	Name   string `json:"name" validate:"required"`
	Stream bool   `json:"stream"`
}

type PullStatus struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Ping checks that the runtime is reachable.
func (c *RuntimeClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return nil
}

// Load asks the runtime to bring a model into memory. A generate request
// without a prompt loads the model and returns immediately.
func (c *RuntimeClient) Load(ctx context.Context, modelName string) error {
	req := GenerateRequest{Model: modelName, Stream: false}
	if c.keepAlive != "" {
		req.KeepAlive = c.keepAlive
	}
	return c.postAndDiscard(ctx, "/api/generate", req)
}

// Unload evicts a model from memory.
func (c *RuntimeClient) Unload(ctx context.Context, modelName string) error {
	return c.postAndDiscard(ctx, "/api/generate", GenerateRequest{Model: modelName, KeepAlive: 0})
}

// GenerateStream runs a streaming completion and hands every partial response
// to onChunk in order.
func (c *RuntimeClient) GenerateStream(ctx context.Context, req GenerateRequest, onChunk func(string)) error {
	req.Stream = true
	if req.KeepAlive == nil && c.keepAlive != "" {
		req.KeepAlive = c.keepAlive
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/generate", req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("could not decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("runtime error: %s", chunk.Error)
		}
		if chunk.Response != "" {
			onChunk(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream ended before the runtime finished: %w", io.ErrUnexpectedEOF)
}

func (c *RuntimeClient) ListModels(ctx context.Context) (*ListModelsResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var list ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("could not decode model list: %w", err)
	}
	return &list, nil
}

// PullModel downloads a model and reports progress on ch. ch is closed when
// the pull ends.
func (c *RuntimeClient) PullModel(ctx context.Context, req *PullModelRequest, ch chan<- PullStatus) error {
	defer close(ch)
	req.Stream = true
	resp, err := c.do(ctx, http.MethodPost, "/api/pull", req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var status PullStatus
		if err := json.Unmarshal(line, &status); err != nil {
			status = PullStatus{Error: "Failed to decode stream chunk"}
		}
		select {
		case ch <- status:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (c *RuntimeClient) postAndDiscard(ctx context.Context, path string, body any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do sends a JSON request and returns the response if the status is 200.
func (c *RuntimeClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api returned non-200 status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	return resp, nil
}
