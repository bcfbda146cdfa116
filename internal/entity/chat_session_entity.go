package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one operator workspace. The conversation inside it is
// sliced into threads by scope key, not stored as a single sequence.
type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
