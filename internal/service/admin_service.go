package service

import (
	"context"

	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository"
)

type AdminService struct {
	threads  *ThreadService
	userRepo repository.UserRepository
	presence PresenceTracker
}

func NewAdminService(threads *ThreadService, userRepo repository.UserRepository) *AdminService {
	return &AdminService{threads: threads, userRepo: userRepo}
}

// SetPresence sets the presence tracker (optional dependency).
func (s *AdminService) SetPresence(p PresenceTracker) {
	s.presence = p
}

type DashboardData struct {
	TotalThreads int             `json:"totalThreads"`
	TotalUsers   int             `json:"totalUsers"`
	ActiveUsers  int64           `json:"activeUsers"`
	Threads      []domain.Thread `json:"threads"`
	Users        []domain.User   `json:"users"`
}

// Dashboard aggregates active threads (with full chat), registered users
// and the recently-active user count for the admin view.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardData, error) {
	threads, err := s.threads.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListRegular(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	var active int64
	if s.presence != nil {
		// Presence is advisory; a redis hiccup must not break the dashboard.
		if n, err := s.presence.CountActive(ctx); err == nil {
			active = n
		}
	}

	return &DashboardData{
		TotalThreads: len(threads),
		// The configured admin principal counts as a user.
		TotalUsers:  len(users) + 1,
		ActiveUsers: active,
		Threads:     threads,
		Users:       users,
	}, nil
}
