package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DOCUMENT_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers and by the
// subscriber when reconstructing events off the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the war room.
const (
	TypeDocumentProcessed = "DOCUMENT_PROCESSED"
	TypeDocumentFailed    = "DOCUMENT_FAILED"
	TypeExchangeCompleted = "EXCHANGE_COMPLETED"
)

func NewDocumentProcessed(documentID, userID, title string) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentProcessed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
			"title":       title,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailed(documentID, userID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewExchangeCompleted(sessionID, userID, threadKey string) BaseEvent {
	return BaseEvent{
		Type: TypeExchangeCompleted,
		Data: map[string]interface{}{
			"chat_session_id": sessionID,
			"user_id":         userID,
			"thread_key":      threadKey,
		},
		OccurredAt: time.Now(),
	}
}
