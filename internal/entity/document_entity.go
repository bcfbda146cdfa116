package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	MissionId        *uuid.UUID
	Title            string
	Content          string
	ProcessingStatus string
	AiSummary        *string
	AiKeywords       []string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
