package service

import (
	"context"
	"fmt"
	"time"

	"war-room-be/internal/constant"
	"war-room-be/internal/dto"
	"war-room-be/internal/entity"
	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/repository/memory"
	"war-room-be/internal/repository/specification"
	"war-room-be/internal/repository/unitofwork"
	"war-room-be/pkg/embedding"
	"war-room-be/pkg/events"
	pktNats "war-room-be/pkg/nats"
	"war-room-be/pkg/orchestrator"
	"war-room-be/pkg/prompt"
	"war-room-be/pkg/retrieval"
	"war-room-be/pkg/thread"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const sessionTitleMaxLen = 60

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	NewSession(ctx context.Context, userId uuid.UUID, request *dto.NewSessionRequest) (*dto.SwitchScopeResponse, error)
	SwitchScope(ctx context.Context, userId uuid.UUID, request *dto.SwitchScopeRequest) (*dto.SwitchScopeResponse, error)
	GetSuggestions(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSuggestionsResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

// ChatService binds HTTP sessions to the exchange orchestrator. It also acts
// as the orchestrator's MessageSink, making postgres the system of record
// for message ids while the thread store stays the read cache.
type ChatService struct {
	uowFactory        unitofwork.RepositoryFactory
	orch              *orchestrator.Orchestrator
	scopeRepo         *memory.ScopeRepository
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	suggestionCache   *cache.Cache
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	scopeRepo *memory.ScopeRepository,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) *ChatService {
	return &ChatService{
		uowFactory:        uowFactory,
		scopeRepo:         scopeRepo,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		suggestionCache:   cache.New(30*time.Minute, 10*time.Minute),
		logger:            log,
	}
}

// SetOrchestrator finishes wiring. The orchestrator needs this service as
// its message sink, so the two are connected after both exist.
func (cs *ChatService) SetOrchestrator(orch *orchestrator.Orchestrator) {
	cs.orch = orch
}

// AddMessage implements orchestrator.MessageSink. Citations arrive as
// document titles and are resolved back to rows owned by the session's user.
func (cs *ChatService) AddMessage(ctx context.Context, sessionID, threadKey, role, content string, citations []string) (thread.Message, error) {
	sessionUUID, err := uuid.Parse(sessionID)
	if err != nil {
		return thread.Message{}, fmt.Errorf("invalid session id: %w", err)
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionUUID})
	if err != nil {
		return thread.Message{}, err
	}
	if session == nil {
		return thread.Message{}, fmt.Errorf("session %s not found", sessionID)
	}

	msg := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       content,
		Role:          role,
		ThreadKey:     threadKey,
		ChatSessionId: sessionUUID,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &msg); err != nil {
		return thread.Message{}, err
	}

	if len(citations) > 0 {
		var rows []*entity.ChatCitation
		for _, title := range citations {
			doc, err := uow.DocumentRepository().FindOne(ctx,
				specification.ByTitle{Title: title},
				specification.UserOwnedBy{UserID: session.UserId},
			)
			if err != nil || doc == nil {
				continue
			}
			rows = append(rows, &entity.ChatCitation{
				Id:            uuid.New(),
				ChatMessageId: msg.Id,
				DocumentId:    doc.Id,
				CreatedAt:     msg.CreatedAt,
			})
		}
		if err := uow.ChatMessageRepository().CreateCitations(ctx, rows); err != nil {
			cs.logger.Warn("ChatService", "Failed to persist citations", map[string]interface{}{"message_id": msg.Id, "error": err.Error()})
		}
	}

	return thread.Message{
		ID:        msg.Id.String(),
		Role:      role,
		Content:   content,
		Citations: thread.ToCitations(citations),
		CreatedAt: msg.CreatedAt,
	}, nil
}

// DeliverSuggestions caches regenerated follow-ups per thread key. Wired as
// the orchestrator's suggestion callback.
func (cs *ChatService) DeliverSuggestions(key string, suggestions []string) {
	cs.suggestionCache.Set(key, suggestions, cache.DefaultExpiration)
}

func (cs *ChatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Unnamed session",
		CreatedAt: now,
	}

	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: chatSession.Id.String()}
	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       constant.ChatSessionGreeting,
		Role:          constant.ChatMessageRoleAssistant,
		ThreadKey:     scope.Key(),
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Seed the in-memory thread so the first read shows the greeting.
	cs.orch.Store().Append(scope.Key(), thread.Message{
		ID:        greeting.Id.String(),
		Role:      thread.RoleAssistant,
		Content:   greeting.Content,
		CreatedAt: greeting.CreatedAt,
	})

	cs.scopeRepo.Save(&memory.ScopeState{
		SessionID: chatSession.Id.String(),
		Scope:     scope,
	})

	return &dto.CreateSessionResponse{
		Id:       chatSession.Id,
		Greeting: greeting.Content,
	}, nil
}

func (cs *ChatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *ChatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(chatMessages))
	for i, msg := range chatMessages {
		messageIds[i] = msg.Id
	}

	citations, err := uow.ChatMessageRepository().FindCitationsByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}

	citationsByMsgId := make(map[uuid.UUID][]dto.CitationDTO)
	for _, c := range citations {
		if c.Document != nil {
			citationsByMsgId[c.ChatMessageId] = append(citationsByMsgId[c.ChatMessageId], dto.CitationDTO{
				DocumentId: c.DocumentId,
				Title:      c.Document.Title,
			})
		}
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Message:   msg.Content,
			CreatedAt: msg.CreatedAt,
			Citations: citationsByMsgId[msg.Id],
		})
	}
	return resp, nil
}

func (cs *ChatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	scope, persona, active, err := cs.resolveScope(ctx, uow, userId, request)
	if err != nil {
		return nil, err
	}

	firstMessage, err := cs.isFirstUserMessage(ctx, uow, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	outcome, err := cs.orch.Submit(ctx, orchestrator.Request{
		Scope:   scope,
		Persona: persona,
		Text:    request.Message,
		Search:  cs.searchFn(userId),
		Active:  active,
	})
	if err != nil {
		return nil, err
	}

	if firstMessage {
		if err := cs.updateSessionTitle(ctx, uow, session, request.Message); err != nil {
			cs.logger.Warn("ChatService", "Failed to update session title", map[string]interface{}{"session_id": session.Id, "error": err.Error()})
		}
	}

	cs.publishExchangeCompleted(ctx, session.Id, userId, outcome.Key)

	return cs.buildSendResponse(session.Id, outcome), nil
}

func (cs *ChatService) buildSendResponse(sessionId uuid.UUID, outcome *orchestrator.Outcome) *dto.SendChatResponse {
	thinking := make([]dto.ThinkingStepDTO, 0, len(outcome.Trace))
	for _, step := range outcome.Trace {
		thinking = append(thinking, dto.ThinkingStepDTO{
			Step:       step.Step,
			Thought:    step.Thought,
			DurationMS: step.DurationMS,
		})
	}

	return &dto.SendChatResponse{
		ChatSessionId: sessionId,
		ThreadKey:     outcome.Key,
		Sent:          toResponseChat(outcome.UserMessage),
		Reply:         toResponseChat(outcome.AssistantMessage),
		Thinking:      thinking,
	}
}

func toResponseChat(msg thread.Message) *dto.SendChatResponseChat {
	var citations []dto.CitationDTO
	for _, c := range msg.Citations {
		citations = append(citations, dto.CitationDTO{Title: c.Title})
	}

	id, err := uuid.Parse(msg.ID)
	if err != nil {
		id = uuid.New()
	}

	return &dto.SendChatResponseChat{
		Id:        id,
		Message:   msg.Content,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
		Citations: citations,
	}
}

// NewSession clears the thread for the requested scope: the conversation
// restarts while documents and other threads stay untouched.
func (cs *ChatService) NewSession(ctx context.Context, userId uuid.UUID, request *dto.NewSessionRequest) (*dto.SwitchScopeResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return nil, err
	}

	scope, _, _, err := cs.resolveScope(ctx, uow, userId, &dto.SendChatRequest{
		ChatSessionId: request.ChatSessionId,
		Room:          request.Room,
		Mode:          request.Mode,
		MissionId:     request.MissionId,
	})
	if err != nil {
		return nil, err
	}

	key := scope.Key()
	cs.orch.ClearThread(ctx, key)
	cs.suggestionCache.Delete(key)

	if err := uow.ChatMessageRepository().DeleteByThreadKey(ctx, key); err != nil {
		return nil, err
	}

	return &dto.SwitchScopeResponse{ThreadKey: key}, nil
}

func (cs *ChatService) SwitchScope(ctx context.Context, userId uuid.UUID, request *dto.SwitchScopeRequest) (*dto.SwitchScopeResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return nil, err
	}

	scope, _, _, err := cs.resolveScope(ctx, uow, userId, &dto.SendChatRequest{
		ChatSessionId: request.ChatSessionId,
		Room:          request.Room,
		Mode:          request.Mode,
		MissionId:     request.MissionId,
		Persona:       request.Persona,
		ActiveContext: request.ActiveContext,
	})
	if err != nil {
		return nil, err
	}

	activeIds := make([]string, 0, len(request.ActiveContext))
	for _, id := range request.ActiveContext {
		activeIds = append(activeIds, id.String())
	}

	cs.scopeRepo.Save(&memory.ScopeState{
		SessionID:     request.ChatSessionId.String(),
		Scope:         scope,
		Persona:       request.Persona,
		ActiveContext: activeIds,
	})

	return &dto.SwitchScopeResponse{ThreadKey: scope.Key()}, nil
}

func (cs *ChatService) GetSuggestions(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSuggestionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	key := thread.Scope{Room: thread.RoomWarRoom, SessionID: sessionId.String()}.Key()
	if state, ok := cs.scopeRepo.Get(sessionId.String()); ok {
		key = state.Scope.Key()
	}

	if x, found := cs.suggestionCache.Get(key); found {
		return &dto.GetSuggestionsResponse{Suggestions: x.([]string)}, nil
	}
	return &dto.GetSuggestionsResponse{Suggestions: []string{}}, nil
}

func (cs *ChatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.scopeRepo.Delete(request.ChatSessionId.String())
	return nil
}

// verifySession loads the session and checks ownership.
func (cs *ChatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return session, nil
}

// resolveScope merges the request's explicit scope with the cached session
// scope, validating modes and mission ownership.
func (cs *ChatService) resolveScope(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, request *dto.SendChatRequest) (thread.Scope, prompt.Persona, retrieval.ActiveContextSet, error) {
	scope := thread.Scope{Room: thread.RoomWarRoom, SessionID: request.ChatSessionId.String()}
	personaId := ""
	var activeIds []string

	if state, ok := cs.scopeRepo.Get(request.ChatSessionId.String()); ok {
		scope = state.Scope
		scope.SessionID = request.ChatSessionId.String()
		personaId = state.Persona
		activeIds = state.ActiveContext
	}

	if request.Room != "" {
		scope.Room = thread.Room(request.Room)
	}
	if request.Mode != "" {
		if !constant.IsWarRoomMode(request.Mode) {
			return thread.Scope{}, 0, nil, fmt.Errorf("unknown mode: %s", request.Mode)
		}
		scope.Room = thread.RoomWarRoom
		scope.Mode = request.Mode
		scope.Mission = ""
	}
	if request.MissionId != nil {
		mission, err := uow.MissionRepository().FindOne(ctx,
			specification.ByID{ID: *request.MissionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return thread.Scope{}, 0, nil, err
		}
		if mission == nil {
			return thread.Scope{}, 0, nil, fmt.Errorf("mission not found or access denied")
		}
		scope.Room = thread.RoomMissions
		scope.Mission = mission.Id.String()
		scope.Mode = ""
	}

	if request.Persona != "" {
		personaId = request.Persona
	}
	if len(request.ActiveContext) > 0 {
		// Fresh slice: activeIds may alias the cached ScopeState's backing
		// array, and a request-level override must not rewrite it.
		activeIds = make([]string, 0, len(request.ActiveContext))
		for _, id := range request.ActiveContext {
			activeIds = append(activeIds, id.String())
		}
	}

	return scope, prompt.ParsePersona(personaId), retrieval.NewActiveContextSet(activeIds...), nil
}

// searchFn binds the similarity search to one user's corpus.
func (cs *ChatService) searchFn(userId uuid.UUID) retrieval.SearchFn {
	return func(ctx context.Context, query string) ([]retrieval.Chunk, error) {
		res, err := cs.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}

		uow := cs.uowFactory.NewUnitOfWork(ctx)
		scored, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, 5, userId, 0.3)
		if err != nil {
			return nil, err
		}
		if len(scored) == 0 {
			return nil, nil
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

		chunks := make([]retrieval.Chunk, 0, len(scored))
		for _, sc := range scored {
			chunks = append(chunks, retrieval.Chunk{
				DocID:      sc.Embedding.DocumentId.String(),
				DocTitle:   titleById[sc.Embedding.DocumentId],
				Content:    sc.Embedding.Chunk,
				Similarity: sc.Similarity,
			})
		}
		return chunks, nil
	}
}

func (cs *ChatService) isFirstUserMessage(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (bool, error) {
	count, err := uow.ChatMessageRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.FilterBy{Field: "role", Value: constant.ChatMessageRoleUser},
	)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (cs *ChatService) updateSessionTitle(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, firstMessage string) error {
	title := firstMessage
	if len(title) > sessionTitleMaxLen {
		title = title[:sessionTitleMaxLen] + "..."
	}
	session.Title = title
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (cs *ChatService) publishExchangeCompleted(ctx context.Context, sessionId, userId uuid.UUID, threadKey string) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewExchangeCompleted(sessionId.String(), userId.String(), threadKey)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish exchange event", map[string]interface{}{"error": err.Error()})
	}
}
