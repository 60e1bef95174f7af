package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository/memory"
)

type membershipChange struct {
	ThreadID uuid.UUID
	UserID   uuid.UUID
	Username string
}

type joinRequestNote struct {
	CreatorID   uuid.UUID
	ThreadID    uuid.UUID
	ThreadTitle string
	UserID      uuid.UUID
	Username    string
}

type requestHandledNote struct {
	UserID   uuid.UUID
	ThreadID uuid.UUID
	Approved bool
}

// notifierRecorder captures every broadcast so tests can assert on exactly
// what would have gone out over the wire.
type notifierRecorder struct {
	mu sync.Mutex

	created           []domain.Thread
	updated           []domain.Thread
	deleted           []uuid.UUID
	messages          []domain.Message
	membershipChanges []membershipChange
	joinRequests      []joinRequestNote
	handled           []requestHandledNote
}

func (r *notifierRecorder) NotifyThreadCreated(t *domain.Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *t)
}

func (r *notifierRecorder) NotifyThreadUpdated(t *domain.Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, *t)
}

func (r *notifierRecorder) NotifyThreadDeleted(threadID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, threadID)
}

func (r *notifierRecorder) NotifyNewMessage(msg *domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
}

func (r *notifierRecorder) NotifyMembershipChanged(threadID, userID uuid.UUID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.membershipChanges = append(r.membershipChanges, membershipChange{threadID, userID, username})
}

func (r *notifierRecorder) NotifyJoinRequest(creatorID, threadID uuid.UUID, threadTitle string, userID uuid.UUID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinRequests = append(r.joinRequests, joinRequestNote{creatorID, threadID, threadTitle, userID, username})
}

func (r *notifierRecorder) NotifyRequestHandled(userID, threadID uuid.UUID, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, requestHandledNote{userID, threadID, approved})
}

type testEnv struct {
	users    *memory.UserRepo
	threads  *memory.ThreadRepo
	messages *memory.MessageRepo
	authz    *Membership
	notifier *notifierRecorder

	threadSvc  *ThreadService
	messageSvc *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	messages := memory.NewMessageRepo()
	threads := memory.NewThreadRepo()
	threads.Messages = messages

	authz := NewMembership(AdminPrincipal("admin"))
	rec := &notifierRecorder{}

	threadSvc := NewThreadService(threads, messages, users, authz)
	threadSvc.SetNotifier(rec)
	messageSvc := NewMessageService(messages, threads, users, authz)
	messageSvc.SetNotifier(rec)

	return &testEnv{
		users:      users,
		threads:    threads,
		messages:   messages,
		authz:      authz,
		notifier:   rec,
		threadSvc:  threadSvc,
		messageSvc: messageSvc,
	}
}

func (e *testEnv) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) addThread(t *testing.T, creator *domain.User, requiresApproval bool) *domain.Thread {
	t.Helper()
	thread, err := e.threadSvc.Create(context.Background(), CreateThreadInput{
		Title:            "Evening run",
		Description:      "Easy 5k along the river",
		Creator:          creator.Username,
		CreatorID:        creator.ID,
		Location:         "Riverside",
		Tags:             []string{"running"},
		ExpiresAt:        time.Now().Add(2 * time.Hour),
		RequiresApproval: &requiresApproval,
	})
	require.NoError(t, err)
	return thread
}
