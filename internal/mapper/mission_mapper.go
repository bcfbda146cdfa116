package mapper

import (
	"time"

	"war-room-be/internal/entity"
	"war-room-be/internal/model"

	"gorm.io/gorm"
)

type MissionMapper struct{}

func NewMissionMapper() *MissionMapper {
	return &MissionMapper{}
}

func (m *MissionMapper) ToEntity(ms *model.Mission) *entity.Mission {
	if ms == nil {
		return nil
	}

	var deletedAt *time.Time
	if ms.DeletedAt.Valid {
		t := ms.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !ms.UpdatedAt.IsZero() {
		t := ms.UpdatedAt
		updatedAt = &t
	}

	return &entity.Mission{
		Id:        ms.Id,
		UserId:    ms.UserId,
		Name:      ms.Name,
		Objective: ms.Objective,
		CreatedAt: ms.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: ms.DeletedAt.Valid,
	}
}

func (m *MissionMapper) ToModel(ms *entity.Mission) *model.Mission {
	if ms == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if ms.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *ms.DeletedAt, Valid: true}
	} else if ms.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if ms.UpdatedAt != nil {
		updatedAt = *ms.UpdatedAt
	}

	return &model.Mission{
		Id:        ms.Id,
		UserId:    ms.UserId,
		Name:      ms.Name,
		Objective: ms.Objective,
		CreatedAt: ms.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *MissionMapper) ToEntities(missions []*model.Mission) []*entity.Mission {
	entities := make([]*entity.Mission, len(missions))
	for i, ms := range missions {
		entities[i] = m.ToEntity(ms)
	}
	return entities
}
