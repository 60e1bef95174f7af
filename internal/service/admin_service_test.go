package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresence struct {
	active int64
	err    error
}

func (s *stubPresence) Touch(context.Context, uuid.UUID) error { return s.err }

func (s *stubPresence) CountActive(context.Context) (int64, error) { return s.active, s.err }

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	env.addUser(t, "bob")
	env.addThread(t, alice, true)

	svc := NewAdminService(env.threadSvc, env.users)
	svc.SetPresence(&stubPresence{active: 2})

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, data.TotalThreads)
	assert.Equal(t, 3, data.TotalUsers) // two registered plus the admin account
	assert.Equal(t, int64(2), data.ActiveUsers)
	require.Len(t, data.Threads, 1)
	// The admin view gets the full chat regardless of membership.
	assert.Len(t, data.Threads[0].Chat, 1)
	assert.Len(t, data.Users, 2)
}

func TestDashboardPresenceFailureIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdminService(env.threadSvc, env.users)
	svc.SetPresence(&stubPresence{err: errors.New("redis down")})

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), data.ActiveUsers)
}
