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

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrNotCreator     = errors.New("only the thread creator can perform this action")
	ErrForbidden      = errors.New("insufficient privilege for this action")
	ErrAlreadyMember  = errors.New("user is already a member of this thread")
	ErrNotMember      = errors.New("user is not a member of this thread")
)

const welcomeMessage = "Thread created! Welcome everyone 👋"

type ThreadService struct {
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	authz       *Membership
	notifier    Notifier
}

func NewThreadService(
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	authz *Membership,
) *ThreadService {
	return &ThreadService{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		authz:       authz,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ThreadService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateThreadInput struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Creator          string    `json:"creator"`
	CreatorID        uuid.UUID `json:"creatorId"`
	Location         string    `json:"location"`
	Tags             []string  `json:"tags"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RequiresApproval *bool     `json:"requiresApproval"`
}

type UpdateThreadInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
}

// Create stores the thread with the creator seeded as its first member and
// appends the welcome message.
func (s *ThreadService) Create(ctx context.Context, input CreateThreadInput) (*domain.Thread, error) {
	requiresApproval := true
	if input.RequiresApproval != nil {
		requiresApproval = *input.RequiresApproval
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	t := &domain.Thread{
		ID:               uuid.New(),
		Title:            input.Title,
		Description:      input.Description,
		Location:         input.Location,
		Tags:             tags,
		CreatorID:        input.CreatorID,
		CreatorUsername:  input.Creator,
		Members:          []uuid.UUID{input.CreatorID},
		PendingRequests:  []uuid.UUID{},
		RequiresApproval: requiresApproval,
		ExpiresAt:        input.ExpiresAt,
		CreatedAt:        time.Now(),
	}

	if err := s.threadRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}

	welcome := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  t.ID,
		UserID:    input.CreatorID,
		Username:  input.Creator,
		Body:      welcomeMessage,
		Timestamp: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, welcome); err != nil {
		return nil, fmt.Errorf("creating welcome message: %w", err)
	}
	t.Chat = []domain.Message{*welcome}

	if s.notifier != nil {
		// The discovery broadcast is global; chat content stays gated
		// behind membership, so it goes out without the chat log.
		public := *t
		public.Chat = []domain.Message{}
		s.notifier.NotifyThreadCreated(&public)
	}

	return t, nil
}

// List returns all non-expired threads. Chat history is populated only for
// threads where the viewer passes the membership check; everyone else gets
// thread metadata with an empty chat. viewerID may be uuid.Nil.
func (s *ThreadService) List(ctx context.Context, viewerID uuid.UUID) ([]domain.Thread, error) {
	threads, err := s.threadRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	for i := range threads {
		t := &threads[i]
		normalize(t)
		if !s.authz.IsMember(t, viewerID) {
			continue
		}
		chat, err := s.messageRepo.ListByThread(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if chat != nil {
			t.Chat = chat
		}
	}

	if threads == nil {
		threads = []domain.Thread{}
	}
	return threads, nil
}

// ListAll returns every active thread with full chat regardless of viewer.
// Admin dashboard only; never exposed on the public listing.
func (s *ThreadService) ListAll(ctx context.Context) ([]domain.Thread, error) {
	threads, err := s.threadRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	for i := range threads {
		t := &threads[i]
		normalize(t)
		chat, err := s.messageRepo.ListByThread(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if chat != nil {
			t.Chat = chat
		}
	}

	if threads == nil {
		threads = []domain.Thread{}
	}
	return threads, nil
}

func (s *ThreadService) Update(ctx context.Context, userID, threadID uuid.UUID, input UpdateThreadInput) (*domain.Thread, error) {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrThreadNotFound
	}
	if t.CreatorID != userID {
		return nil, ErrNotCreator
	}

	t.Title = input.Title
	t.Description = input.Description
	t.Location = input.Location
	t.Tags = input.Tags
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := s.threadRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating thread: %w", err)
	}

	normalize(t)
	if s.notifier != nil {
		s.notifier.NotifyThreadUpdated(t)
	}

	return t, nil
}

func (s *ThreadService) Delete(ctx context.Context, userID, threadID uuid.UUID) error {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrThreadNotFound
	}
	if !s.authz.IsCreatorOrAdmin(t, userID) {
		return ErrForbidden
	}

	if err := s.threadRepo.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("deleting thread: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyThreadDeleted(threadID)
	}

	return nil
}

// RequestJoin runs the join state machine for (thread, user). With approval
// required the user lands in the pending queue; repeat calls are idempotent.
// Without it the user becomes a member immediately. Returns whether the
// caller is now a member.
func (s *ThreadService) RequestJoin(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, ErrThreadNotFound
	}
	if s.authz.IsMember(t, userID) {
		return false, ErrAlreadyMember
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrUserNotFound
	}

	if t.RequiresApproval {
		if t.HasPendingRequest(userID) {
			// Already queued; nothing to do and no duplicate notification.
			return false, nil
		}
		if err := s.threadRepo.AddPendingRequest(ctx, threadID, userID); err != nil {
			return false, fmt.Errorf("adding join request: %w", err)
		}
		if s.notifier != nil {
			s.notifier.NotifyJoinRequest(t.CreatorID, t.ID, t.Title, userID, user.Username)
		}
		return false, nil
	}

	// Fast-join: no approval queue at all.
	if err := s.threadRepo.AddMember(ctx, threadID, userID); err != nil {
		return false, fmt.Errorf("adding member: %w", err)
	}
	if err := s.announceJoin(ctx, threadID, userID, user.Username); err != nil {
		return false, err
	}
	return true, nil
}

// DecideRequest lets the creator approve or reject a pending join request.
// The pending entry is cleared either way; the decision is final.
func (s *ThreadService) DecideRequest(ctx context.Context, threadID, targetID uuid.UUID, approve bool, actingID uuid.UUID) error {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrThreadNotFound
	}
	if t.CreatorID != actingID {
		return ErrNotCreator
	}

	if err := s.threadRepo.RemovePendingRequest(ctx, threadID, targetID); err != nil {
		return fmt.Errorf("removing join request: %w", err)
	}

	if !approve {
		if s.notifier != nil {
			s.notifier.NotifyRequestHandled(targetID, threadID, false)
		}
		return nil
	}

	if err := s.threadRepo.AddMember(ctx, threadID, targetID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	username := "User"
	if user, err := s.userRepo.GetByID(ctx, targetID); err == nil && user != nil {
		username = user.Username
	}
	if err := s.announceJoin(ctx, threadID, targetID, username); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyRequestHandled(targetID, threadID, true)
	}

	return nil
}

// Authorize reports whether userID may read the thread. Used by the
// realtime gateway, which re-validates on every action.
func (s *ThreadService) Authorize(ctx context.Context, threadID, userID uuid.UUID) error {
	t, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrThreadNotFound
	}
	if !s.authz.IsMember(t, userID) {
		return ErrNotMember
	}
	return nil
}

// PurgeExpired hard-deletes threads past expiry together with their
// messages. The store query already hides expired threads, so the sweep is
// cleanup, not correctness.
func (s *ThreadService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.threadRepo.DeleteExpired(ctx, time.Now())
}

// announceJoin appends the synthetic System message for a membership grant
// and fans out both the message and the membership change.
func (s *ThreadService) announceJoin(ctx context.Context, threadID, userID uuid.UUID, username string) error {
	msg := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		UserID:    userID,
		Username:  domain.SystemUsername,
		Body:      fmt.Sprintf("%s joined the thread!", username),
		Timestamp: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("creating join message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
		s.notifier.NotifyMembershipChanged(threadID, userID, username)
	}
	return nil
}

func normalize(t *domain.Thread) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Members == nil {
		t.Members = []uuid.UUID{}
	}
	if t.PendingRequests == nil {
		t.PendingRequests = []uuid.UUID{}
	}
	if t.Chat == nil {
		t.Chat = []domain.Message{}
	}
}
