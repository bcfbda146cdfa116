package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"war-room-be/internal/constant"
	"war-room-be/internal/dto"
	"war-room-be/internal/entity"
	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/repository/specification"
	"war-room-be/internal/repository/unitofwork"
	"war-room-be/pkg/embedding"
	pktNats "war-room-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID, missionId *uuid.UUID) ([]*dto.ListDocumentsResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	SemanticSearch(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SemanticSearchResult, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.MissionId != nil {
		mission, err := uow.MissionRepository().FindOne(ctx,
			specification.ByID{ID: *req.MissionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if mission == nil {
			return nil, fmt.Errorf("mission not found or access denied")
		}
	}

	document := entity.Document{
		Id:               uuid.New(),
		UserId:           userId,
		MissionId:        req.MissionId,
		Title:            req.Title,
		Content:          req.Content,
		ProcessingStatus: constant.ProcessingStatusPending,
		CreatedAt:        time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.publishEmbedMessage(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{
		Id:               document.Id,
		ProcessingStatus: document.ProcessingStatus,
	}, nil
}

func (s *documentService) publishEmbedMessage(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.PublishEmbedDocumentMessage{DocumentId: documentId}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, msgJson)
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil // Not found
	}

	return &dto.ShowDocumentResponse{
		Id:               document.Id,
		Title:            document.Title,
		Content:          document.Content,
		MissionId:        document.MissionId,
		ProcessingStatus: document.ProcessingStatus,
		AiSummary:        document.AiSummary,
		AiKeywords:       document.AiKeywords,
		CreatedAt:        document.CreatedAt,
		UpdatedAt:        document.UpdatedAt,
	}, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, missionId *uuid.UUID) ([]*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if missionId != nil {
		specs = append(specs, specification.ByMissionID{MissionID: missionId})
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ListDocumentsResponse, 0, len(documents))
	for _, d := range documents {
		response = append(response, &dto.ListDocumentsResponse{
			Id:               d.Id,
			Title:            d.Title,
			ProcessingStatus: d.ProcessingStatus,
			AiSummary:        d.AiSummary,
			AiKeywords:       d.AiKeywords,
			CreatedAt:        d.CreatedAt,
		})
	}
	return response, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fmt.Errorf("document not found or access denied")
	}

	document.Title = req.Title
	document.Content = req.Content
	// Content changed, embeddings and derived fields are stale again.
	document.ProcessingStatus = constant.ProcessingStatusPending
	document.AiSummary = nil
	document.AiKeywords = nil

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	if err := s.publishEmbedMessage(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateDocumentResponse{
		Id:               document.Id,
		ProcessingStatus: document.ProcessingStatus,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) SemanticSearch(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SemanticSearchResult, error) {
	res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, 10, userId, 0.3)
	if err != nil {
		return nil, err
	}

	if len(scored) == 0 {
		return []*dto.SemanticSearchResult{}, nil
	}

	docIds := make([]uuid.UUID, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, sc := range scored {
		if !seen[sc.Embedding.DocumentId] {
			seen[sc.Embedding.DocumentId] = true
			docIds = append(docIds, sc.Embedding.DocumentId)
		}
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: docIds})
	if err != nil {
		return nil, err
	}
	titleById := make(map[uuid.UUID]string, len(documents))
	for _, d := range documents {
		titleById[d.Id] = d.Title
	}

	results := make([]*dto.SemanticSearchResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, &dto.SemanticSearchResult{
			DocumentId: sc.Embedding.DocumentId,
			Title:      titleById[sc.Embedding.DocumentId],
			Chunk:      sc.Embedding.Chunk,
			Similarity: sc.Similarity,
		})
	}
	return results, nil
}
