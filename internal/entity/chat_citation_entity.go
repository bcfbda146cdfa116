package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	DocumentId    uuid.UUID
	CreatedAt     time.Time

	// Relationships
	ChatMessage *ChatMessage
	Document    *Document
}
