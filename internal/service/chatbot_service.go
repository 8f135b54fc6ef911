package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartcity-be/internal/constant"
	"smartcity-be/internal/dto"
	"smartcity-be/internal/model"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/repository/memory"
	"smartcity-be/pkg/chatbot"
	"smartcity-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrEmptyChat       = errors.New("chat must not be empty")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionBusy     = errors.New("too many replies pending for this chat session")
)

// TurnDelivery pushes assistant turns to whoever is watching a session.
// Implemented by the WebSocket Hub.
type TurnDelivery interface {
	SendTurn(sessionID string, turn model.ConversationTurn)
}

type IChatbotService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetTranscript(ctx context.Context, sessionID string) ([]model.ConversationTurn, error)
	SendChat(ctx context.Context, sessionID, chat string) (*dto.SendChatResponse, error)
	CloseSession(ctx context.Context, sessionID string) bool
	GetSuggestions(ctx context.Context) []string
}

type chatbotService struct {
	responder  chatbot.Responder
	sessions   *memory.SessionRepository
	delivery   TurnDelivery
	replyDelay time.Duration
	logger     logger.ILogger
}

func NewChatbotService(
	responder chatbot.Responder,
	sessions *memory.SessionRepository,
	delivery TurnDelivery,
	replyDelay time.Duration,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		responder:  responder,
		sessions:   sessions,
		delivery:   delivery,
		replyDelay: replyDelay,
		logger:     log,
	}
}

func (s *chatbotService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := store.NewSession(uuid.NewString(), s.deliver)

	greeting, err := session.Append(model.SpeakerAssistant, constant.ChatGreeting)
	if err != nil {
		return nil, fmt.Errorf("failed to seed greeting: %w", err)
	}
	s.sessions.Save(session)

	s.logger.Info("ChatbotService", "Chat session created", map[string]interface{}{"session_id": session.ID})

	return &dto.CreateSessionResponse{
		Id:         session.ID,
		Transcript: []model.ConversationTurn{greeting},
	}, nil
}

func (s *chatbotService) GetTranscript(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Transcript(), nil
}

// SendChat appends the user's turn right away and schedules the assistant
// reply. Blank input is rejected before anything is appended.
func (s *chatbotService) SendChat(ctx context.Context, sessionID, chat string) (*dto.SendChatResponse, error) {
	query := strings.TrimSpace(chat)
	reply, ok := s.responder.Respond(query)
	if !ok {
		return nil, ErrEmptyChat
	}

	session, found := s.sessions.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}

	// The transcript keeps the user's casing; only matching is case-folded.
	sent, err := session.Submit(query, reply, s.replyDelay)
	switch {
	case errors.Is(err, store.ErrQueueFull):
		return nil, ErrSessionBusy
	case errors.Is(err, store.ErrSessionClosed):
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, err
	}

	// Activity pushes expiry back, unless the session was closed meanwhile.
	s.sessions.Touch(session)

	return &dto.SendChatResponse{
		ChatSessionId: session.ID,
		Sent:          sent,
		ReplyDueAt:    sent.CreatedAt.Add(s.replyDelay),
	}, nil
}

// CloseSession discards the session and any reply still pending for it. It
// reports false when there was nothing to close.
func (s *chatbotService) CloseSession(ctx context.Context, sessionID string) bool {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return false
	}
	s.sessions.Delete(sessionID)
	s.logger.Info("ChatbotService", "Chat session closed", map[string]interface{}{"session_id": sessionID})
	return true
}

func (s *chatbotService) GetSuggestions(ctx context.Context) []string {
	out := make([]string, len(constant.ChatSuggestions))
	copy(out, constant.ChatSuggestions)
	return out
}

func (s *chatbotService) deliver(sessionID string, turn model.ConversationTurn) {
	if s.delivery != nil {
		s.delivery.SendTurn(sessionID, turn)
	}
}
