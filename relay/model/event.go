package model

// EventType tags canonical stream events.
type EventType int

const (
	EventTextDelta EventType = iota
	EventDone
	EventError
)

// StreamEvent is one element of the canonical token stream. A stream emits
// zero or more TextDelta events followed by exactly one terminal event
// (Done or Error).
type StreamEvent struct {
	Type      EventType
	Text      string
	Err       string
	Retryable bool
}

func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

func TextDelta(text string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Text: text}
}

func Done() StreamEvent {
	return StreamEvent{Type: EventDone}
}

func ErrorEvent(msg string, retryable bool) StreamEvent {
	return StreamEvent{Type: EventError, Err: msg, Retryable: retryable}
}
