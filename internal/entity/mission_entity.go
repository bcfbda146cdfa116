package entity

import (
	"time"

	"github.com/google/uuid"
)

type Mission struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Objective string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
