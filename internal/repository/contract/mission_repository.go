package contract

import (
	"context"

	"war-room-be/internal/entity"
	"war-room-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MissionRepository interface {
	Create(ctx context.Context, mission *entity.Mission) error
	Update(ctx context.Context, mission *entity.Mission) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Mission, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Mission, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
