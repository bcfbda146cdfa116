package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"war-room-be/internal/constant"
	"war-room-be/internal/dto"
	"war-room-be/internal/entity"
	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/repository/specification"
	"war-room-be/internal/repository/unitofwork"
	"war-room-be/pkg/embedding"
	"war-room-be/pkg/events"
	"war-room-be/pkg/llm"
	pktNats "war-room-be/pkg/nats"
	"war-room-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("Consumer", "Processing document", map[string]interface{}{"document_id": payload.DocumentId})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("Consumer", "Failed to fetch document", map[string]interface{}{"document_id": payload.DocumentId, "error": err.Error()})
		msg.Nack() // Retriable
		return
	}
	if document == nil {
		cs.logger.Warn("Consumer", "Document not found, dropping", map[string]interface{}{"document_id": payload.DocumentId})
		msg.Ack() // Deleted before processing? Ack.
		return
	}

	document.ProcessingStatus = constant.ProcessingStatusProcessing
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.logger.Error("Consumer", "Failed to mark document processing", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if err := cs.processDocument(ctx, uow, document); err != nil {
		cs.logger.Error("Consumer", "Document processing failed", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		document.ProcessingStatus = constant.ProcessingStatusFailed
		if updErr := uow.DocumentRepository().Update(ctx, document); updErr != nil {
			cs.logger.Error("Consumer", "Failed to mark document failed", map[string]interface{}{"error": updErr.Error()})
		}
		cs.publishEvent(ctx, events.NewDocumentFailed(document.Id.String(), document.UserId.String(), err.Error()))
		msg.Ack() // Failure is recorded on the row, retrying would loop
		return
	}

	cs.publishEvent(ctx, events.NewDocumentProcessed(document.Id.String(), document.UserId.String(), document.Title))
	cs.logger.Info("Consumer", "Document processed", map[string]interface{}{"document_id": document.Id})
	msg.Ack()
}

func (cs *consumerService) processDocument(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document) error {
	content := fmt.Sprintf("Document Title: %s\n\n%s", document.Title, document.Content)

	// ChunkSize 1500 chars (~375 tokens) with 200 char overlap
	chunks := utils.SplitText(content, 1500, 200)
	cs.logger.Info("Consumer", "Content split", map[string]interface{}{"document_id": document.Id, "chunks": len(chunks)})

	var newEmbeddings []*entity.DocumentEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}

		newEmbeddings = append(newEmbeddings, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			Chunk:          chunk,
			EmbeddingValue: res.Embedding.Values,
			DocumentId:     document.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	summary, keywords := cs.summarize(ctx, document)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if len(newEmbeddings) > 0 {
		if err := uow.DocumentEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			return err
		}
	}

	document.ProcessingStatus = constant.ProcessingStatusCompleted
	document.AiSummary = summary
	document.AiKeywords = keywords
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}

	return uow.Commit()
}

// summarize asks the model for a short summary and keywords. Both are
// best-effort: a model failure leaves them empty, it never fails ingestion.
func (cs *consumerService) summarize(ctx context.Context, document *entity.Document) (*string, []string) {
	prompt := fmt.Sprintf(`Summarize the following document in at most two sentences, then list up to five keywords.
Reply in exactly this format:
SUMMARY: <summary>
KEYWORDS: <keyword1>, <keyword2>, ...

Document title: %s

%s`, document.Title, document.Content)

	reply, err := cs.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		cs.logger.Warn("Consumer", "Summary generation failed", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		return nil, nil
	}

	var summary *string
	var keywords []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "SUMMARY:"); ok {
			text := strings.TrimSpace(after)
			if text != "" {
				summary = &text
			}
		} else if after, ok := strings.CutPrefix(line, "KEYWORDS:"); ok {
			for _, kw := range strings.Split(after, ",") {
				kw = strings.TrimSpace(kw)
				if kw != "" {
					keywords = append(keywords, kw)
				}
			}
		}
	}
	return summary, keywords
}

func (cs *consumerService) publishEvent(ctx context.Context, evt events.BaseEvent) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("Consumer", "Failed to publish event", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
	}
}
