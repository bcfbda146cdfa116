package service

import (
	"context"
	"fmt"
	"time"

	"war-room-be/internal/dto"
	"war-room-be/internal/entity"
	"war-room-be/internal/repository/specification"
	"war-room-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IMissionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateMissionRequest) (*dto.CreateMissionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowMissionResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowMissionResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateMissionRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type missionService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMissionService(uowFactory unitofwork.RepositoryFactory) IMissionService {
	return &missionService{
		uowFactory: uowFactory,
	}
}

func (s *missionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateMissionRequest) (*dto.CreateMissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	mission := entity.Mission{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      req.Name,
		Objective: req.Objective,
		CreatedAt: time.Now(),
	}

	if err := uow.MissionRepository().Create(ctx, &mission); err != nil {
		return nil, err
	}

	return &dto.CreateMissionResponse{Id: mission.Id}, nil
}

func (s *missionService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowMissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	mission, err := uow.MissionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, nil // Not found
	}

	docCount, err := uow.DocumentRepository().Count(ctx,
		specification.ByMissionID{MissionID: &mission.Id},
	)
	if err != nil {
		return nil, err
	}

	return &dto.ShowMissionResponse{
		Id:            mission.Id,
		Name:          mission.Name,
		Objective:     mission.Objective,
		DocumentCount: docCount,
		CreatedAt:     mission.CreatedAt,
		UpdatedAt:     mission.UpdatedAt,
	}, nil
}

func (s *missionService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowMissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	missions, err := uow.MissionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ShowMissionResponse, 0, len(missions))
	for _, m := range missions {
		response = append(response, &dto.ShowMissionResponse{
			Id:        m.Id,
			Name:      m.Name,
			Objective: m.Objective,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return response, nil
}

func (s *missionService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateMissionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	mission, err := uow.MissionRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if mission == nil {
		return fmt.Errorf("mission not found or access denied")
	}

	mission.Name = req.Name
	mission.Objective = req.Objective
	return uow.MissionRepository().Update(ctx, mission)
}

func (s *missionService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	mission, err := uow.MissionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if mission == nil {
		return fmt.Errorf("mission not found or access denied")
	}

	// Documents keep their mission_id; the mission itself is soft deleted.
	return uow.MissionRepository().Delete(ctx, id)
}
