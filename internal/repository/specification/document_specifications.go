package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByMissionID struct {
	MissionID *uuid.UUID
}

func (s ByMissionID) Apply(db *gorm.DB) *gorm.DB {
	if s.MissionID == nil {
		return db.Where("mission_id IS NULL")
	}
	return db.Where("mission_id = ?", s.MissionID)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByProcessingStatus struct {
	Status string
}

func (s ByProcessingStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processing_status = ?", s.Status)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}

// DocumentSearchQuery filters documents by title or content (case-insensitive)
type DocumentSearchQuery struct {
	Query string
}

func (s DocumentSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}
