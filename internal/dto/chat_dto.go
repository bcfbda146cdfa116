package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id       uuid.UUID `json:"id"`
	Greeting string    `json:"greeting"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type CitationDTO struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
}

type ThinkingStepDTO struct {
	Step       int    `json:"step"`
	Thought    string `json:"thought"`
	DurationMS int64  `json:"duration_ms"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	Citations []CitationDTO `json:"citations,omitempty"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID   `json:"chat_session_id" validate:"required"`
	Message       string      `json:"message" validate:"required"`
	Room          string      `json:"room,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	MissionId     *uuid.UUID  `json:"mission_id,omitempty"`
	Persona       string      `json:"persona,omitempty"`
	ActiveContext []uuid.UUID `json:"active_context,omitempty" validate:"max=20"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID     `json:"id"`
	Message   string        `json:"message"`
	Role      string        `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	Citations []CitationDTO `json:"citations,omitempty"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID             `json:"chat_session_id"`
	ThreadKey     string                `json:"thread_key"`
	Sent          *SendChatResponseChat `json:"sent"`
	Reply         *SendChatResponseChat `json:"reply"`
	Thinking      []ThinkingStepDTO     `json:"thinking,omitempty"`
}

type NewSessionRequest struct {
	ChatSessionId uuid.UUID  `json:"chat_session_id" validate:"required"`
	Room          string     `json:"room,omitempty"`
	Mode          string     `json:"mode,omitempty"`
	MissionId     *uuid.UUID `json:"mission_id,omitempty"`
}

type SwitchScopeRequest struct {
	ChatSessionId uuid.UUID   `json:"chat_session_id" validate:"required"`
	Room          string      `json:"room" validate:"required,oneof=war-room missions"`
	Mode          string      `json:"mode,omitempty"`
	MissionId     *uuid.UUID  `json:"mission_id,omitempty"`
	Persona       string      `json:"persona,omitempty"`
	ActiveContext []uuid.UUID `json:"active_context,omitempty" validate:"max=20"`
}

type SwitchScopeResponse struct {
	ThreadKey string `json:"thread_key"`
}

type GetSuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}
