package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/model/chat"
	"github.com/morningistar/study-buddy/internal/store"
)

var (
	// ErrUnauthenticated is returned when no user is resolved for the call.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConversationNotFound covers both a missing conversation and one
	// owned by a different user; callers cannot distinguish the two.
	ErrConversationNotFound = errors.New("conversation not found")
)

// Events emitted to live-update subscribers.
const (
	EventMessageCreated      = "message.created"
	EventConversationUpdated = "conversation.updated"
)

// Store is the subset of persistence the chat service needs.
type Store interface {
	CreateConversation(ctx context.Context, c chat.Conversation) error
	GetConversation(ctx context.Context, id string) (chat.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)
	AppendMessage(ctx context.Context, m chat.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error)
}

// Scheduler hands a conversation off to the background reply generator.
type Scheduler interface {
	Schedule(conversationID string) error
}

// Notifier fans events out to live-update subscribers of a conversation.
type Notifier interface {
	Broadcast(conversationID, event string, payload interface{})
}

// Service implements conversation and message access with per-user ownership
// checks, plus the internal unauthenticated operations used by the reply
// generator.
type Service struct {
	store     Store
	scheduler Scheduler
	notifier  Notifier
	logger    *zap.Logger
}

// NewService wires the chat service to its collaborators. scheduler and
// notifier may be nil (replies are then never generated / never announced),
// which keeps tests and degraded deployments simple.
func NewService(st Store, scheduler Scheduler, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: st, scheduler: scheduler, notifier: notifier, logger: logger}
}

// SetScheduler installs the reply scheduler after construction. The worker
// pool reads transcripts through this service, so the two are built in
// sequence at startup; call before serving requests.
func (s *Service) SetScheduler(scheduler Scheduler) {
	s.scheduler = scheduler
}

// ListConversations returns every conversation owned by userID, most recent
// activity first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListConversationsByUser(ctx, userID)
}

// CreateConversation starts a new thread owned by userID. LastMessageAt is
// set to creation time so an empty thread still sorts sensibly.
func (s *Service) CreateConversation(ctx context.Context, userID, title string) (chat.Conversation, error) {
	if userID == "" {
		return chat.Conversation{}, ErrUnauthenticated
	}

	now := time.Now().UTC()
	conversation := chat.Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         title,
		LastMessageAt: now,
		CreatedAt:     now,
	}

	if err := s.store.CreateConversation(ctx, conversation); err != nil {
		return chat.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// ListMessages returns the ordered messages of a conversation the user owns.
// The ownership check here is the only authorization control in the system.
func (s *Service) ListMessages(ctx context.Context, userID, conversationID string) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// SendMessage records the user's message, advances the conversation's
// last-activity timestamp and schedules reply generation. It returns as soon
// as the message is committed; the assistant's reply arrives asynchronously.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID, content string) (chat.Message, error) {
	if userID == "" {
		return chat.Message{}, ErrUnauthenticated
	}

	conversation, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return chat.Message{}, err
	}

	message, err := s.append(ctx, conversation, chat.RoleUser, content)
	if err != nil {
		return chat.Message{}, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(conversationID); err != nil {
			// The user message is already committed; the reply simply never
			// arrives for this turn.
			s.logger.Error("failed to schedule reply generation",
				zap.String("conversationID", conversationID),
				zap.Error(err))
		}
	}

	return message, nil
}

// Transcript returns the full ordered history of a conversation without an
// ownership check. It exists solely for the reply generator, which runs
// outside any request context; the conversation ID it receives was already
// validated by the SendMessage call that scheduled it.
func (s *Service) Transcript(ctx context.Context, conversationID string) ([]chat.Message, error) {
	if _, err := s.store.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// AppendAssistantReply persists an assistant message in the conversation,
// copying ownership from the parent. Internal to the reply generator.
func (s *Service) AppendAssistantReply(ctx context.Context, conversationID, content string) (chat.Message, error) {
	conversation, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return chat.Message{}, ErrConversationNotFound
		}
		return chat.Message{}, err
	}
	return s.append(ctx, conversation, chat.RoleAssistant, content)
}

func (s *Service) ownedConversation(ctx context.Context, userID, conversationID string) (chat.Conversation, error) {
	conversation, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return chat.Conversation{}, ErrConversationNotFound
		}
		return chat.Conversation{}, err
	}
	if conversation.UserID != userID {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *Service) append(ctx context.Context, conversation chat.Conversation, role chat.Role, content string) (chat.Message, error) {
	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		UserID:         conversation.UserID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.AppendMessage(ctx, message); err != nil {
		return chat.Message{}, fmt.Errorf("append message: %w", err)
	}

	if s.notifier != nil {
		conversation.LastMessageAt = message.CreatedAt
		s.notifier.Broadcast(conversation.ID, EventMessageCreated, message)
		s.notifier.Broadcast(conversation.ID, EventConversationUpdated, conversation)
	}

	return message, nil
}
