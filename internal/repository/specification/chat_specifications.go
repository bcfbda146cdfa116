package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// ByThreadKey pins messages to the scope-session thread they were appended under.
type ByThreadKey struct {
	ThreadKey string
}

func (s ByThreadKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_key = ?", s.ThreadKey)
}
