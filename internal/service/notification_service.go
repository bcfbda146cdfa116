package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/websocket"
	"war-room-be/pkg/events"
	pktNats "war-room-be/pkg/nats"

	"github.com/google/uuid"
)

// NoticeDelivery defines how real-time updates reach the operator.
// Implemented by the WebSocket Hub.
type NoticeDelivery interface {
	Send(userID uuid.UUID, notice websocket.Notice)
	Broadcast(notice websocket.Notice)
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NoticeDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NoticeDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("warroom.>", "notice-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to warroom.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject includes the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "warroom.")
	payload := event.Payload()

	notice, targetUserID, ok := s.buildNotice(typeCode, payload)
	if !ok {
		s.logger.Info("NotificationService", "Ignoring event", map[string]interface{}{"type": typeCode})
		return nil
	}

	if s.delivery == nil {
		return nil
	}

	if targetUserID == uuid.Nil {
		s.delivery.Broadcast(notice)
	} else {
		s.delivery.Send(targetUserID, notice)
	}
	return nil
}

func (s *NotificationService) buildNotice(typeCode string, payload map[string]interface{}) (websocket.Notice, uuid.UUID, bool) {
	userID := uuid.Nil
	if raw, ok := payload["user_id"].(string); ok {
		if uid, err := uuid.Parse(raw); err == nil {
			userID = uid
		}
	}

	switch typeCode {
	case events.TypeDocumentProcessed:
		title, _ := payload["title"].(string)
		return websocket.Notice{
			Type:      "document.processed",
			Title:     "Document ready",
			Message:   fmt.Sprintf("'%s' is indexed and available as context", title),
			Data:      payload,
			CreatedAt: time.Now(),
		}, userID, true

	case events.TypeDocumentFailed:
		return websocket.Notice{
			Type:      "document.failed",
			Title:     "Document processing failed",
			Message:   "A document could not be indexed, check its content and retry",
			Data:      payload,
			CreatedAt: time.Now(),
		}, userID, true

	case events.TypeExchangeCompleted:
		return websocket.Notice{
			Type:      "exchange.completed",
			Title:     "Reply ready",
			Message:   "The assistant finished responding",
			Data:      payload,
			CreatedAt: time.Now(),
		}, userID, true
	}

	return websocket.Notice{}, uuid.Nil, false
}
