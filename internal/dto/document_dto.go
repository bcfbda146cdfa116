package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title     string     `json:"title" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	MissionId *uuid.UUID `json:"mission_id,omitempty"`
}

type CreateDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	ProcessingStatus string    `json:"processing_status"`
}

type ShowDocumentResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	MissionId        *uuid.UUID `json:"mission_id,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	AiSummary        *string    `json:"ai_summary,omitempty"`
	AiKeywords       []string   `json:"ai_keywords,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ProcessingStatus string    `json:"processing_status"`
	AiSummary        *string   `json:"ai_summary,omitempty"`
	AiKeywords       []string  `json:"ai_keywords,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type UpdateDocumentRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type UpdateDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	ProcessingStatus string    `json:"processing_status"`
}

// PublishEmbedDocumentMessage is the ingestion bus payload.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type SemanticSearchResult struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Chunk      string    `json:"chunk"`
	Similarity float64   `json:"similarity"`
}
