package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

// Notifier broadcasts real-time events to connected clients. Every call is
// fire-and-forget: a broadcast failure never rolls back or fails the
// mutation that triggered it.
type Notifier interface {
	// Thread discovery is public, so created/updated go to every client.
	NotifyThreadCreated(t *domain.Thread)
	NotifyThreadUpdated(t *domain.Thread)
	// Scoped to the thread's room.
	NotifyThreadDeleted(threadID uuid.UUID)
	NotifyNewMessage(msg *domain.Message)
	NotifyMembershipChanged(threadID, userID uuid.UUID, username string)
	// Targeted at a single user's private room.
	NotifyJoinRequest(creatorID, threadID uuid.UUID, threadTitle string, userID uuid.UUID, username string)
	NotifyRequestHandled(userID, threadID uuid.UUID, approved bool)
}

// PresenceTracker records recently-active users. Advisory only; failures
// are ignored by callers.
type PresenceTracker interface {
	Touch(ctx context.Context, userID uuid.UUID) error
	CountActive(ctx context.Context) (int64, error)
}
