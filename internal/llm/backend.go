package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"multichat/backend/internal/model"
)

// DefaultPrompt is the system prompt used when a platform has none.
const DefaultPrompt = "Your task is to answer my questions precisely."

var ErrUnknownBackend = errors.New("llm: no adapter registered for backend")

// Adapter streams one completion from one backend.
//
// The returned channel yields Loading, zero or more Success chunks, at most one
// Error and exactly one Done, and is closed afterwards. Failures are reported
// in-band; the channel is never left open.
type Adapter interface {
	StreamCompletion(ctx context.Context, question model.Message, history []model.Message, platform model.Platform) <-chan model.APIState
}

// Stream runs producer in a goroutine and turns it into an APIState stream.
// Every chunk passed to emit becomes a Success event; a returned error
// becomes an Error event.
func Stream(ctx context.Context, producer func(emit func(string)) error) <-chan model.APIState {
	ch := make(chan model.APIState, 8)
	go func() {
		defer close(ch)

		send := func(st model.APIState) bool {
			select {
			case ch <- st:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(model.Loading()) {
			return
		}

		stopped := false
		err := producer(func(chunk string) {
			if stopped || chunk == "" {
				return
			}
			stopped = !send(model.Success(chunk))
		})
		if err != nil && !stopped {
			send(model.Failure(err.Error()))
		}
		// Done must reach the consumer even after cancellation so it can settle
		// the slot; the buffer usually has room for it.
		select {
		case ch <- model.Done():
		default:
			send(model.Done())
		}
	}()
	return ch
}

// Registry maps backends to their adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[model.APIType]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[model.APIType]Adapter)}
}

func (r *Registry) Register(api model.APIType, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[api] = adapter
}

func (r *Registry) Get(api model.APIType) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[api]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, api)
	}
	return adapter, nil
}

// Types lists the registered backends in display order.
func (r *Registry) Types() []model.APIType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]model.APIType, 0, len(r.adapters))
	for _, t := range model.APITypes() {
		if _, ok := r.adapters[t]; ok {
			types = append(types, t)
		}
	}
	return slices.Clip(types)
}
