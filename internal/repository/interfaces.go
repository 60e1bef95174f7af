package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListRegular(ctx context.Context) ([]domain.User, error)
}

type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error)
	ListActive(ctx context.Context, now time.Time) ([]domain.Thread, error)
	Update(ctx context.Context, thread *domain.Thread) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember grants membership and clears any pending request for the
	// user in the same transaction. Both writes use set semantics, so
	// concurrent duplicate calls converge to a single entry.
	AddMember(ctx context.Context, threadID, userID uuid.UUID) error
	// AddPendingRequest is an idempotent set-insert.
	AddPendingRequest(ctx context.Context, threadID, userID uuid.UUID) error
	RemovePendingRequest(ctx context.Context, threadID, userID uuid.UUID) error

	// DeleteExpired removes threads past their expiry together with their
	// messages and returns how many threads went away.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByThread returns messages in ascending timestamp order.
	ListByThread(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error)
	DeleteByThread(ctx context.Context, threadID uuid.UUID) error
}
