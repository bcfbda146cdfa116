package mapper

import (
	"encoding/json"
	"time"

	"war-room-be/internal/entity"
	"war-room-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var keywords []string
	if len(d.AiKeywords) > 0 {
		// Keywords are stored as a jsonb array; a decode failure just yields no keywords.
		_ = json.Unmarshal(d.AiKeywords, &keywords)
	}

	return &entity.Document{
		Id:               d.Id,
		UserId:           d.UserId,
		MissionId:        d.MissionId,
		Title:            d.Title,
		Content:          d.Content,
		ProcessingStatus: d.ProcessingStatus,
		AiSummary:        d.AiSummary,
		AiKeywords:       keywords,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
		IsDeleted:        d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var keywords datatypes.JSON
	if d.AiKeywords != nil {
		raw, err := json.Marshal(d.AiKeywords)
		if err == nil {
			keywords = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:               d.Id,
		UserId:           d.UserId,
		MissionId:        d.MissionId,
		Title:            d.Title,
		Content:          d.Content,
		ProcessingStatus: d.ProcessingStatus,
		AiSummary:        d.AiSummary,
		AiKeywords:       keywords,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *DocumentMapper) ToModels(docs []*entity.Document) []*model.Document {
	models := make([]*model.Document, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}
