// Package memory holds in-memory repository implementations with the same
// set-insert semantics as the postgres ones. They back unit tests and are
// safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLogin = &at
		r.users[id] = u
	}
	return nil
}

func (r *UserRepo) ListRegular(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []domain.User
	for _, u := range r.users {
		if !u.IsAdmin {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

type ThreadRepo struct {
	mu      sync.RWMutex
	threads map[uuid.UUID]domain.Thread

	// Messages is consulted by DeleteExpired/Delete so the cascade matches
	// the postgres behavior. Optional.
	Messages *MessageRepo
}

func NewThreadRepo() *ThreadRepo {
	return &ThreadRepo{threads: make(map[uuid.UUID]domain.Thread)}
}

func cloneThread(t domain.Thread) domain.Thread {
	t.Tags = append([]string(nil), t.Tags...)
	t.Members = append([]uuid.UUID(nil), t.Members...)
	t.PendingRequests = append([]uuid.UUID(nil), t.PendingRequests...)
	t.Chat = nil
	return t
}

func (r *ThreadRepo) Create(_ context.Context, t *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[t.ID] = cloneThread(*t)
	return nil
}

func (r *ThreadRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.threads[id]; ok {
		t = cloneThread(t)
		return &t, nil
	}
	return nil, nil
}

func (r *ThreadRepo) ListActive(_ context.Context, now time.Time) ([]domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var threads []domain.Thread
	for _, t := range r.threads {
		if !t.Expired(now) {
			threads = append(threads, cloneThread(t))
		}
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].CreatedAt.After(threads[j].CreatedAt) })
	return threads, nil
}

func (r *ThreadRepo) Update(_ context.Context, t *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.threads[t.ID]
	if !ok {
		return nil
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Location = t.Location
	cur.Tags = append([]string(nil), t.Tags...)
	r.threads[t.ID] = cur
	return nil
}

func (r *ThreadRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.threads, id)
	r.mu.Unlock()
	if r.Messages != nil {
		return r.Messages.DeleteByThread(ctx, id)
	}
	return nil
}

func (r *ThreadRepo) AddMember(_ context.Context, threadID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return nil
	}
	if !t.HasMember(userID) {
		t.Members = append(append([]uuid.UUID(nil), t.Members...), userID)
	}
	t.PendingRequests = removeID(t.PendingRequests, userID)
	r.threads[threadID] = t
	return nil
}

func (r *ThreadRepo) AddPendingRequest(_ context.Context, threadID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return nil
	}
	if !t.HasPendingRequest(userID) {
		t.PendingRequests = append(append([]uuid.UUID(nil), t.PendingRequests...), userID)
		r.threads[threadID] = t
	}
	return nil
}

func (r *ThreadRepo) RemovePendingRequest(_ context.Context, threadID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[threadID]; ok {
		t.PendingRequests = removeID(t.PendingRequests, userID)
		r.threads[threadID] = t
	}
	return nil
}

func (r *ThreadRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	var expired []uuid.UUID
	for id, t := range r.threads {
		if t.Expired(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.threads, id)
	}
	r.mu.Unlock()

	if r.Messages != nil {
		for _, id := range expired {
			if err := r.Messages.DeleteByThread(ctx, id); err != nil {
				return int64(len(expired)), err
			}
		}
	}
	return int64(len(expired)), nil
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

type MessageRepo struct {
	mu       sync.RWMutex
	messages map[uuid.UUID][]domain.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{messages: make(map[uuid.UUID][]domain.Message)}
}

func (r *MessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ThreadID] = append(r.messages[m.ThreadID], *m)
	return nil
}

func (r *MessageRepo) ListByThread(_ context.Context, threadID uuid.UUID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := append([]domain.Message(nil), r.messages[threadID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID.String() < msgs[j].ID.String()
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (r *MessageRepo) DeleteByThread(_ context.Context, threadID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, threadID)
	return nil
}
