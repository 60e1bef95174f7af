package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository"
)

var ErrEmptyMessage = errors.New("message body is empty")

// MessageService is the single entry point for chat appends. Both the
// command path and the realtime path call Append, so the membership check
// cannot drift between them. The repository underneath stays dumb storage;
// authorization lives here.
type MessageService struct {
	messageRepo repository.MessageRepository
	threadRepo  repository.ThreadRepository
	userRepo    repository.UserRepository
	authz       *Membership
	notifier    Notifier
	presence    PresenceTracker
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	threadRepo repository.ThreadRepository,
	userRepo repository.UserRepository,
	authz *Membership,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		threadRepo:  threadRepo,
		userRepo:    userRepo,
		authz:       authz,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetPresence sets the presence tracker (optional dependency).
func (s *MessageService) SetPresence(p PresenceTracker) {
	s.presence = p
}

// Append authorizes the author against the thread and appends the message.
// The username snapshot comes from the stored user, not from the caller's
// payload. The resulting message shape is identical for both entry paths.
func (s *MessageService) Append(ctx context.Context, threadID, authorID uuid.UUID, body string) (*domain.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrThreadNotFound
	}
	if !s.authz.IsMember(t, authorID) {
		return nil, ErrNotMember
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		UserID:    authorID,
		Username:  author.Username,
		Body:      body,
		Timestamp: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	if s.presence != nil {
		s.presence.Touch(ctx, authorID)
	}

	return msg, nil
}

// History returns the thread's full ordered message log for a member.
func (s *MessageService) History(ctx context.Context, threadID, userID uuid.UUID) ([]domain.Message, error) {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrThreadNotFound
	}
	if !s.authz.IsMember(t, userID) {
		return nil, ErrNotMember
	}

	msgs, err := s.messageRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}
