package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// EngineRequest is one on-device generation.
type EngineRequest struct {
	Prompt      string
	System      string
	Temperature *float64
	TopP        *float64
}

// Engine is a loaded on-device model. Implementations may also implement
// io.Closer to release the model.
type Engine interface {
	Generate(ctx context.Context, req EngineRequest, onChunk func(string)) error
}

// EngineLoader loads a model into an Engine. Loading is expensive.
type EngineLoader interface {
	Load(ctx context.Context, modelName string) (Engine, error)
}

type pendingLoad struct {
	modelName string
	done      chan struct{}
	err       error
}

// EngineManager owns the single on-device engine instance shared by every
// session. At most one load runs at a time and at most one engine is kept.
type EngineManager struct {
	loader EngineLoader

	mu        sync.Mutex
	engine    Engine
	modelName string
	pending   *pendingLoad
}

func NewEngineManager(loader EngineLoader) *EngineManager {
	return &EngineManager{loader: loader}
}

// Acquire returns the engine for modelName, loading it if needed. Callers
// that arrive during a load wait for it and then re-check, so concurrent
// requests for the same model share one load.
func (m *EngineManager) Acquire(ctx context.Context, modelName string) (Engine, error) {
	for {
		m.mu.Lock()
		if m.engine != nil && m.modelName == modelName {
			engine := m.engine
			m.mu.Unlock()
			return engine, nil
		}

		if p := m.pending; p != nil {
			m.mu.Unlock()
			select {
			case <-p.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			// A failed load of the same model is reported to its waiters unless
			// it was only the requester giving up.
			if p.err != nil && p.modelName == modelName && !isContextErr(p.err) {
				return nil, p.err
			}
			continue
		}

		p := &pendingLoad{modelName: modelName, done: make(chan struct{})}
		m.pending = p
		previous, previousName := m.engine, m.modelName
		m.engine, m.modelName = nil, ""
		m.mu.Unlock()

		// Generations still running on the previous engine are not waited for.
		if previous != nil {
			slog.Info("Evicting on-device engine.", "model", previousName, "next_model", modelName)
			closeEngine(previous)
		}

		slog.Info("Loading on-device engine.", "model", modelName)
		engine, err := m.loader.Load(ctx, modelName)
		if err != nil {
			err = fmt.Errorf("load engine %q: %w", modelName, err)
		}

		m.mu.Lock()
		if err == nil {
			m.engine, m.modelName = engine, modelName
		}
		p.err = err
		m.pending = nil
		close(p.done)
		m.mu.Unlock()

		if err != nil {
			slog.Error("Failed to load on-device engine.", "model", modelName, "error", err)
			return nil, err
		}
		return engine, nil
	}
}

// Release closes the current engine, if any.
func (m *EngineManager) Release() {
	m.mu.Lock()
	engine := m.engine
	m.engine, m.modelName = nil, ""
	m.mu.Unlock()

	if engine != nil {
		closeEngine(engine)
	}
}

// Loaded reports the model name of the cached engine.
func (m *EngineManager) Loaded() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelName, m.engine != nil
}

func closeEngine(engine Engine) {
	if c, ok := engine.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close on-device engine.", "error", err)
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// RuntimeLoader loads engines on the local Ollama runtime.
type RuntimeLoader struct {
	client *RuntimeClient
}

func NewRuntimeLoader(client *RuntimeClient) *RuntimeLoader {
	return &RuntimeLoader{client: client}
}

func (l *RuntimeLoader) Load(ctx context.Context, modelName string) (Engine, error) {
	if modelName == "" {
		return nil, errors.New("no model selected")
	}
	if err := l.client.Load(ctx, modelName); err != nil {
		return nil, err
	}
	return &runtimeEngine{client: l.client, modelName: modelName}, nil
}

type runtimeEngine struct {
	client    *RuntimeClient
	modelName string
}

func (e *runtimeEngine) Generate(ctx context.Context, req EngineRequest, onChunk func(string)) error {
	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		options["top_p"] = *req.TopP
	}
	genReq := GenerateRequest{
		Model:  e.modelName,
		Prompt: req.Prompt,
		System: req.System,
	}
	if len(options) > 0 {
		genReq.Options = options
	}
	return e.client.GenerateStream(ctx, genReq, onChunk)
}

// Close unloads the model from the runtime.
func (e *runtimeEngine) Close() error {
	return e.client.Unload(context.Background(), e.modelName)
}
