package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/konekt/internal/service"
)

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.addUser(t, "alice")
	srv.addUser(t, "bob")
	srv.addThread(t, alice, true)

	rec := srv.do(t, http.MethodGet, "/api/admin/dashboard", nil,
		"Authorization", "Bearer "+srv.adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["totalThreads"])
	assert.Equal(t, float64(3), data["totalUsers"])
	assert.Len(t, data["threads"], 1)
	assert.Len(t, data["users"], 2)

	// Admin sees the chat even without being a member.
	thread := data["threads"].([]any)[0].(map[string]any)
	assert.Len(t, thread["chat"], 1)
}

func TestDashboardEndpointRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)

	// No token at all.
	rec := srv.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = srv.do(t, http.MethodGet, "/api/admin/dashboard", nil,
		"Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token without the admin claim.
	reg, err := srv.authSvc.Register(context.Background(), service.RegisterInput{
		Username: "alice", Password: "secret123",
	})
	require.NoError(t, err)
	rec = srv.do(t, http.MethodGet, "/api/admin/dashboard", nil,
		"Authorization", "Bearer "+reg.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
