package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multichat/backend/internal/database"
	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
	"multichat/backend/internal/repository"
	"multichat/backend/internal/service"
)

func setupStore(t *testing.T) *service.ChatService {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return service.NewChatService(repository.NewSQLiteChatRepository(db))
}

// staticPlatforms serves a fixed platform list.
type staticPlatforms struct {
	platforms []model.Platform
}

func (s *staticPlatforms) FetchPlatforms(context.Context) ([]model.Platform, error) {
	return s.platforms, nil
}

func (s *staticPlatforms) EnabledPlatforms(context.Context) ([]model.APIType, error) {
	var enabled []model.APIType
	for _, p := range s.platforms {
		if p.Enabled {
			enabled = append(enabled, p.Name)
		}
	}
	return enabled, nil
}

func allPlatforms() *staticPlatforms {
	return &staticPlatforms{platforms: []model.Platform{
		{Name: model.APIOllama, Enabled: true, APIURL: "http://localhost:11434"},
		{Name: model.APIOnDevice, Enabled: true},
	}}
}

// streamCall is one StreamCompletion invocation driven by the test.
type streamCall struct {
	question model.Message
	history  []model.Message
	platform model.Platform
	ch       chan model.APIState
}

// reply streams chunks followed by Done and closes the stream.
func (c *streamCall) reply(chunks ...string) {
	c.ch <- model.Loading()
	for _, chunk := range chunks {
		c.ch <- model.Success(chunk)
	}
	c.ch <- model.Done()
	close(c.ch)
}

func (c *streamCall) fail(message string) {
	c.ch <- model.Loading()
	c.ch <- model.Failure(message)
	c.ch <- model.Done()
	close(c.ch)
}

// scriptedAdapter hands every stream to the test to drive by hand.
type scriptedAdapter struct {
	calls chan *streamCall
}

func newScriptedAdapter() *scriptedAdapter {
	return &scriptedAdapter{calls: make(chan *streamCall, 16)}
}

func (a *scriptedAdapter) StreamCompletion(_ context.Context, question model.Message, history []model.Message, platform model.Platform) <-chan model.APIState {
	c := &streamCall{question: question, history: history, platform: platform, ch: make(chan model.APIState)}
	a.calls <- c
	return c.ch
}

func (a *scriptedAdapter) next(t *testing.T) *streamCall {
	t.Helper()
	select {
	case c := <-a.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("backend was not called")
		return nil
	}
}

func (a *scriptedAdapter) pendingCalls() int {
	return len(a.calls)
}

// answeringAdapter answers every question immediately.
type answeringAdapter struct {
	chunks []string
}

func (a *answeringAdapter) StreamCompletion(ctx context.Context, _ model.Message, _ []model.Message, _ model.Platform) <-chan model.APIState {
	return llm.Stream(ctx, func(emit func(string)) error {
		for _, c := range a.chunks {
			emit(c)
		}
		return nil
	})
}

func registry(adapters map[model.APIType]llm.Adapter) *llm.Registry {
	r := llm.NewRegistry()
	for api, a := range adapters {
		r.Register(api, a)
	}
	return r
}

func newSession(store service.ChatStore, platforms service.PlatformSource, adapters *llm.Registry, room model.ChatRoom, messages []model.Message) *service.ChatSession {
	return service.NewChatSession("test-session", room, messages, service.SessionDeps{
		Chats:     store,
		Platforms: platforms,
		Adapters:  adapters,
	})
}

func snapshot(t *testing.T, s *service.ChatSession) model.SessionSnapshot {
	t.Helper()
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

// waitFor polls the session until cond holds and returns that snapshot.
func waitFor(t *testing.T, s *service.ChatSession, cond func(model.SessionSnapshot) bool) model.SessionSnapshot {
	t.Helper()
	var snap model.SessionSnapshot
	require.Eventually(t, func() bool {
		got, err := s.Snapshot(context.Background())
		if err != nil {
			return false
		}
		snap = got
		return cond(got)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func isIdle(snap model.SessionSnapshot) bool { return snap.Idle }

func contents(messages []model.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = string(m.Platform) + ":" + m.Content
	}
	return out
}
