package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMissionRequest struct {
	Name      string `json:"name" validate:"required,max=128"`
	Objective string `json:"objective"`
}

type CreateMissionResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowMissionResponse struct {
	Id            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Objective     string     `json:"objective"`
	DocumentCount int64      `json:"document_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type UpdateMissionRequest struct {
	Id        uuid.UUID
	Name      string `json:"name" validate:"required,max=128"`
	Objective string `json:"objective"`
}
