package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	MissionId        *uuid.UUID     `gorm:"type:uuid;index"`
	Title            string         `gorm:"type:varchar(255);not null"`
	Content          string         `gorm:"type:text"`
	ProcessingStatus string         `gorm:"type:varchar(32);not null;default:'pending';index"`
	AiSummary        *string        `gorm:"type:text"`
	AiKeywords       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
