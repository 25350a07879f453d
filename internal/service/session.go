package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	app_errors "multichat/backend/internal/errors"
	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
)

// ChatStore is the persistence a session needs.
type ChatStore interface {
	SaveChat(ctx context.Context, room model.ChatRoom, messages []model.Message) (model.ChatRoom, error)
	FetchMessages(ctx context.Context, chatID int64) ([]model.Message, error)
	UpdateChatTitle(ctx context.Context, chatID int64, title string) error
}

// PlatformSource provides the current backend configuration.
type PlatformSource interface {
	FetchPlatforms(ctx context.Context) ([]model.Platform, error)
}

// AdapterSource resolves a backend to its adapter.
type AdapterSource interface {
	Get(api model.APIType) (llm.Adapter, error)
}

var errSessionClosed = fmt.Errorf("%w: session closed", app_errors.ErrNotFound)

type backendEvent struct {
	api   model.APIType
	gen   uint64
	state model.APIState
}

type streamHandle struct {
	gen    uint64
	cancel context.CancelFunc
}

type dispatchJob struct {
	api      model.APIType
	adapter  llm.Adapter
	platform model.Platform
}

// ChatSession orchestrates one chat room. A single run loop owns all state:
// caller commands and backend stream events are both applied there, so every
// slot has exactly one writer.
type ChatSession struct {
	id        string
	chats     ChatStore
	platforms PlatformSource
	adapters  AdapterSource
	logger    *slog.Logger
	now       func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan func()
	events    chan backendEvent
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the run loop.
	room      model.ChatRoom
	messages  []model.Message
	question  string
	user      model.Message
	pending   map[model.APIType]model.Message
	loading   map[model.APIType]model.LoadingState
	idle      bool
	lastError string
	streams   map[model.APIType]streamHandle
	gen       uint64
	subs      map[int]chan model.SessionSnapshot
	nextSub   int
}

// SessionDeps are the collaborators of a ChatSession.
type SessionDeps struct {
	Chats     ChatStore
	Platforms PlatformSource
	Adapters  AdapterSource
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewChatSession starts a session over room with its saved transcript.
func NewChatSession(id string, room model.ChatRoom, messages []model.Message, deps SessionDeps) *ChatSession {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &ChatSession{
		id:        id,
		chats:     deps.Chats,
		platforms: deps.Platforms,
		adapters:  deps.Adapters,
		logger:    logger.With("session_id", id),
		now:       now,
		ctx:       ctx,
		cancel:    cancel,
		cmds:      make(chan func()),
		events:    make(chan backendEvent),
		done:      make(chan struct{}),
		room:      room,
		messages:  slices.Clone(messages),
		pending:   make(map[model.APIType]model.Message),
		loading:   make(map[model.APIType]model.LoadingState),
		idle:      true,
		streams:   make(map[model.APIType]streamHandle),
		subs:      make(map[int]chan model.SessionSnapshot),
	}
	if s.messages == nil {
		s.messages = []model.Message{}
	}
	for _, api := range room.EnabledPlatforms {
		s.loading[api] = model.LoadingIdle
	}
	s.clearPending()

	go s.run()
	return s
}

func (s *ChatSession) ID() string { return s.id }

func (s *ChatSession) run() {
	defer close(s.done)
	defer s.shutdown()

	for {
		select {
		case cmd := <-s.cmds:
			cmd()
		case ev := <-s.events:
			s.fold(ev)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ChatSession) shutdown() {
	for api, h := range s.streams {
		h.cancel()
		delete(s.streams, api)
	}
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.logger.Debug("Chat session stopped")
}

// call runs fn on the run loop and waits for its result.
func (s *ChatSession) call(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case s.cmds <- func() { reply <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errSessionClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every in-flight stream and stops the session. A round cut
// short this way is never saved.
func (s *ChatSession) Close() {
	s.closeOnce.Do(s.cancel)
	<-s.done
}

// Ask starts a round: the question is sent to every enabled backend.
func (s *ChatSession) Ask(ctx context.Context, text string) error {
	return s.call(ctx, func() error {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: question is empty", app_errors.ErrValidation)
		}
		if !s.idle {
			return fmt.Errorf("%w: a round is still in progress", app_errors.ErrConflict)
		}
		jobs, err := s.prepare(ctx, s.room.EnabledPlatforms)
		if err != nil {
			return err
		}

		s.user = model.Message{ChatID: s.room.ID, Content: text, CreatedAt: s.now().Unix()}
		s.question = ""
		s.clearBackendSlots()
		s.start(jobs, s.user, s.messages)
		s.publish()
		return nil
	})
}

// UpdateQuestion sets the input buffer.
func (s *ChatSession) UpdateQuestion(ctx context.Context, text string) error {
	return s.call(ctx, func() error {
		s.question = text
		s.publish()
		return nil
	})
}

// Retry asks one backend again. The other backends keep their answers unless
// they are still streaming. When the session is idle the last round is
// reopened: its question and answers leave the transcript and go back into
// the pending slots, so saving updates the existing rows.
func (s *ChatSession) Retry(ctx context.Context, message model.Message) error {
	return s.call(ctx, func() error {
		api := message.Platform
		if message.IsUser() {
			return fmt.Errorf("%w: only answers can be retried", app_errors.ErrValidation)
		}
		if !slices.Contains(s.room.EnabledPlatforms, api) {
			return fmt.Errorf("%w: %s is not enabled in this chat", app_errors.ErrValidation, api)
		}
		if s.loading[api] == model.LoadingLoading {
			return fmt.Errorf("%w: %s is still answering", app_errors.ErrConflict, api)
		}
		jobs, err := s.prepare(ctx, []model.APIType{api})
		if err != nil {
			return err
		}

		// The retried row is found in the transcript, never taken from the
		// caller, so a mismatched id cannot overwrite another backend's answer.
		slotID := s.pending[api].ID
		if s.idle {
			qi := lastUserIndex(s.messages)
			if qi < 0 {
				return fmt.Errorf("%w: there is no question to retry", app_errors.ErrValidation)
			}
			answers := s.messages[qi+1:]
			own := -1
			for i, m := range answers {
				if m.Platform == api {
					own = i
				}
			}
			slotID = 0
			if own >= 0 {
				slotID = answers[own].ID
			}
			if message.ID != 0 && message.ID != slotID {
				return fmt.Errorf("%w: message %d is not the latest %s answer", app_errors.ErrValidation, message.ID, api)
			}

			s.user = s.messages[qi]
			for _, other := range s.room.EnabledPlatforms {
				if other == api || s.loading[other] == model.LoadingLoading {
					continue
				}
				s.pending[other] = s.emptySlot(other)
				for _, m := range answers {
					if m.Platform == other {
						s.pending[other] = m
					}
				}
			}
			s.messages = slices.Clone(s.messages[:qi])
		}

		slot := s.emptySlot(api)
		slot.ID = slotID
		s.pending[api] = slot
		s.start(jobs, s.user, s.messages)
		s.publish()
		return nil
	})
}

// Edit replaces a question: the transcript is cut at the edited message and a
// new round starts from the edited text.
func (s *ChatSession) Edit(ctx context.Context, message model.Message) error {
	return s.call(ctx, func() error {
		if !message.IsUser() {
			return fmt.Errorf("%w: only questions can be edited", app_errors.ErrValidation)
		}
		if strings.TrimSpace(message.Content) == "" {
			return fmt.Errorf("%w: question is empty", app_errors.ErrValidation)
		}
		if !s.idle {
			return fmt.Errorf("%w: a round is still in progress", app_errors.ErrConflict)
		}
		jobs, err := s.prepare(ctx, s.room.EnabledPlatforms)
		if err != nil {
			return err
		}

		s.messages = truncateAt(s.messages, message)
		s.user = model.Message{ChatID: s.room.ID, Content: message.Content, CreatedAt: s.now().Unix()}
		s.question = ""
		s.clearBackendSlots()
		s.start(jobs, s.user, s.messages)
		s.publish()
		return nil
	})
}

// UpdateTitle renames a saved chat.
func (s *ChatSession) UpdateTitle(ctx context.Context, title string) error {
	return s.call(ctx, func() error {
		if s.room.ID == 0 {
			return fmt.Errorf("%w: chat has not been saved yet", app_errors.ErrValidation)
		}
		if err := s.chats.UpdateChatTitle(ctx, s.room.ID, title); err != nil {
			return err
		}
		s.room.Title = model.NormalizeTitle(strings.TrimSpace(title))
		s.publish()
		return nil
	})
}

// Export renders the transcript as Markdown.
func (s *ChatSession) Export(ctx context.Context) (string, string, error) {
	var filename, markdown string
	err := s.call(ctx, func() error {
		filename, markdown = ExportChat(s.room, s.messages, s.now())
		return nil
	})
	return filename, markdown, err
}

func (s *ChatSession) Snapshot(ctx context.Context) (model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	err := s.call(ctx, func() error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

func (s *ChatSession) Subscribe(ctx context.Context) (<-chan model.SessionSnapshot, error) {
	ch := make(chan model.SessionSnapshot, 1)
	var id int
	err := s.call(ctx, func() error {
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
		ch <- s.snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = s.call(context.Background(), func() error {
				if c, ok := s.subs[id]; ok {
					delete(s.subs, id)
					close(c)
				}
				return nil
			})
		case <-s.done:
		}
	}()
	return ch, nil
}

// prepare resolves platform settings and adapters for apis. Platforms are
// fetched fresh for every round.
func (s *ChatSession) prepare(ctx context.Context, apis []model.APIType) ([]dispatchJob, error) {
	if len(apis) == 0 {
		return nil, fmt.Errorf("%w: no platforms are enabled for this chat", app_errors.ErrValidation)
	}
	platforms, err := s.platforms.FetchPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch platforms: %w", err)
	}

	jobs := make([]dispatchJob, 0, len(apis))
	for _, api := range apis {
		idx := slices.IndexFunc(platforms, func(p model.Platform) bool { return p.Name == api })
		if idx < 0 {
			return nil, fmt.Errorf("%w: no settings for %s", app_errors.ErrMisconfigured, api)
		}
		adapter, err := s.adapters.Get(api)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", app_errors.ErrMisconfigured, err)
		}
		jobs = append(jobs, dispatchJob{api: api, adapter: adapter, platform: platforms[idx]})
	}
	return jobs, nil
}

// start flips every job's backend to Loading and launches its stream.
func (s *ChatSession) start(jobs []dispatchJob, question model.Message, history []model.Message) {
	history = slices.Clone(history)
	for _, job := range jobs {
		if h, ok := s.streams[job.api]; ok {
			h.cancel()
		}
		s.gen++
		ctx, cancel := context.WithCancel(s.ctx)
		s.streams[job.api] = streamHandle{gen: s.gen, cancel: cancel}
		s.loading[job.api] = model.LoadingLoading
		go s.consume(ctx, job, s.gen, question, history)
	}
	s.idle = s.computeIdle()
	s.logger.Info("Dispatched question", "chat_id", s.room.ID, "backends", len(jobs))
}

// consume forwards one backend's stream to the run loop. A stream that ends
// without Done is completed here so the backend never stays Loading.
func (s *ChatSession) consume(ctx context.Context, job dispatchJob, gen uint64, question model.Message, history []model.Message) {
	sawDone := false
	for st := range job.adapter.StreamCompletion(ctx, question, history, job.platform) {
		if st.Type == model.StateDone {
			sawDone = true
		}
		if !s.emit(backendEvent{api: job.api, gen: gen, state: st}) {
			return
		}
	}
	if !sawDone {
		s.emit(backendEvent{api: job.api, gen: gen, state: model.Done()})
	}
}

func (s *ChatSession) emit(ev backendEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// fold applies one stream event. Events from superseded streams are dropped.
func (s *ChatSession) fold(ev backendEvent) {
	h, ok := s.streams[ev.api]
	if !ok || h.gen != ev.gen {
		return
	}

	switch ev.state.Type {
	case model.StateLoading:
		return
	case model.StateSuccess:
		m := s.pending[ev.api]
		m.Content += ev.state.Text
		s.pending[ev.api] = m
	case model.StateError:
		m := s.pending[ev.api]
		m.Content = ev.state.Text
		s.pending[ev.api] = m
		s.logger.Warn("Backend returned an error", "backend", ev.api, "error", ev.state.Text)
	case model.StateDone:
		h.cancel()
		delete(s.streams, ev.api)
		s.loading[ev.api] = model.LoadingIdle
		wasIdle := s.idle
		s.idle = s.computeIdle()
		if !wasIdle && s.idle {
			s.reconcile()
		}
	}
	s.publish()
}

func (s *ChatSession) computeIdle() bool {
	for _, state := range s.loading {
		if state == model.LoadingLoading {
			return false
		}
	}
	return true
}

// reconcile appends the finished round to the transcript and saves it.
// Pending slots are cleared whether or not saving succeeds.
func (s *ChatSession) reconcile() {
	defer s.clearPending()

	if s.ctx.Err() != nil || strings.TrimSpace(s.user.Content) == "" {
		return
	}

	round := make([]model.Message, 0, len(s.room.EnabledPlatforms)+1)
	user := s.user
	user.ChatID = s.room.ID
	round = append(round, user)
	for _, api := range s.room.EnabledPlatforms {
		m := s.pending[api]
		m.ChatID = s.room.ID
		m.Platform = api
		round = append(round, m)
	}
	messages := append(slices.Clone(s.messages), round...)
	s.messages = messages

	room, err := s.chats.SaveChat(s.ctx, s.room, messages)
	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to save chat", "chat_id", s.room.ID, "error", err)
		return
	}
	s.room = room

	saved, err := s.chats.FetchMessages(s.ctx, room.ID)
	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("Failed to reload chat", "chat_id", room.ID, "error", err)
		return
	}
	s.messages = saved
	s.lastError = ""
	s.logger.Info("Saved round", "chat_id", room.ID, "messages", len(saved))
}

func (s *ChatSession) emptySlot(api model.APIType) model.Message {
	return model.Message{ChatID: s.room.ID, Platform: api, CreatedAt: s.now().Unix()}
}

// clearBackendSlots empties every backend slot for a fresh round.
func (s *ChatSession) clearBackendSlots() {
	for _, api := range s.room.EnabledPlatforms {
		s.pending[api] = s.emptySlot(api)
	}
}

func (s *ChatSession) clearPending() {
	s.user = model.Message{ChatID: s.room.ID}
	for _, api := range s.room.EnabledPlatforms {
		s.pending[api] = model.Message{ChatID: s.room.ID, Platform: api}
	}
}

func (s *ChatSession) snapshot() model.SessionSnapshot {
	return model.SessionSnapshot{
		SessionID: s.id,
		Room:      s.room,
		Messages:  slices.Clone(s.messages),
		Question:  s.question,
		User:      s.user,
		Pending:   maps.Clone(s.pending),
		Loading:   maps.Clone(s.loading),
		Idle:      s.idle,
		LastError: s.lastError,
	}
}

// publish hands the current snapshot to every subscriber, replacing any
// snapshot the subscriber has not read yet.
func (s *ChatSession) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func lastUserIndex(messages []model.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsUser() {
			return i
		}
	}
	return -1
}

// truncateAt drops the edited question and everything after it. Saved
// questions are found by id; otherwise ordering by timestamp then id decides.
func truncateAt(messages []model.Message, edited model.Message) []model.Message {
	if edited.ID != 0 {
		if i := slices.IndexFunc(messages, func(m model.Message) bool { return m.ID == edited.ID }); i >= 0 {
			return slices.Clone(messages[:i])
		}
	}
	kept := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		before := m.CreatedAt < edited.CreatedAt ||
			(m.CreatedAt == edited.CreatedAt && m.ID != 0 && edited.ID != 0 && m.ID < edited.ID)
		if before {
			kept = append(kept, m)
		}
	}
	return kept
}
