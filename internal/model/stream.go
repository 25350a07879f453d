package model

// StateType tags an APIState.
type StateType int

const (
	StateLoading StateType = iota
	StateSuccess
	StateError
	StateDone
)

func (t StateType) String() string {
	switch t {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// APIState is one event of a backend's response stream.
// A stream is Loading, any number of Success, an optional Error, then Done.
type APIState struct {
	Type StateType `json:"type"`
	Text string    `json:"text,omitempty"`
}

func Loading() APIState { return APIState{Type: StateLoading} }

func Success(text string) APIState { return APIState{Type: StateSuccess, Text: text} }

func Failure(message string) APIState { return APIState{Type: StateError, Text: message} }

func Done() APIState { return APIState{Type: StateDone} }

// LoadingState is the per-backend progress of a round.
type LoadingState string

const (
	LoadingIdle    LoadingState = "idle"
	LoadingLoading LoadingState = "loading"
)

// SessionSnapshot is the observable state of a chat session.
type SessionSnapshot struct {
	SessionID string                   `json:"session_id"`
	Room      ChatRoom                 `json:"room"`
	Messages  []Message                `json:"messages"`
	Question  string                   `json:"question"`
	User      Message                  `json:"user_message"`
	Pending   map[APIType]Message      `json:"pending"`
	Loading   map[APIType]LoadingState `json:"loading"`
	Idle      bool                     `json:"idle"`
	LastError string                   `json:"last_error,omitempty"`
}
