package voice

type EventKind int

const (
	EventOpened EventKind = iota + 1
	EventTurn
	EventError
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventTurn:
		return "turn"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TranscriptionEvent is what a recognition session reports upward. Only the
// fields relevant to Kind are set.
type TranscriptionEvent struct {
	Kind      EventKind
	SessionID string
	Text      string
	IsFinal   bool
	Message   string
	Code      int
	Reason    string
}

func OpenedEvent(sessionID string) TranscriptionEvent {
	return TranscriptionEvent{Kind: EventOpened, SessionID: sessionID}
}

func TurnEvent(text string, isFinal bool) TranscriptionEvent {
	return TranscriptionEvent{Kind: EventTurn, Text: text, IsFinal: isFinal}
}

func ErrorEvent(message string) TranscriptionEvent {
	return TranscriptionEvent{Kind: EventError, Message: message}
}

func ClosedEvent(code int, reason string) TranscriptionEvent {
	return TranscriptionEvent{Kind: EventClosed, Code: code, Reason: reason}
}
