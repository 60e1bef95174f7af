package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository/memory"
	"github.com/vedran77/konekt/internal/service"
	"github.com/vedran77/konekt/internal/transport/http/middleware"
)

const (
	testJWTSecret     = "test-secret"
	testAdminUser     = "admin"
	testAdminPassword = "hunter22"
)

type testServer struct {
	mux *http.ServeMux

	users    *memory.UserRepo
	threads  *memory.ThreadRepo
	messages *memory.MessageRepo

	authSvc    *service.AuthService
	threadSvc  *service.ThreadService
	messageSvc *service.MessageService
}

// newTestServer wires the handlers onto the same route patterns the server
// binary registers, backed by in-memory repositories.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepo()
	messages := memory.NewMessageRepo()
	threads := memory.NewThreadRepo()
	threads.Messages = messages

	authz := service.NewMembership(service.AdminPrincipal(testAdminUser))
	authSvc := service.NewAuthService(users, testJWTSecret, testAdminUser, testAdminPassword)
	threadSvc := service.NewThreadService(threads, messages, users, authz)
	messageSvc := service.NewMessageService(messages, threads, users, authz)
	adminSvc := service.NewAdminService(threadSvc, users)

	authHandler := NewAuthHandler(authSvc)
	threadHandler := NewThreadHandler(threadSvc)
	messageHandler := NewMessageHandler(messageSvc)
	adminHandler := NewAdminHandler(adminSvc)

	auth := middleware.Auth(testJWTSecret)
	adminOnly := middleware.AdminOnly()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/threads", threadHandler.Create)
	mux.HandleFunc("GET /api/threads", threadHandler.List)
	mux.HandleFunc("PUT /api/threads/{id}", threadHandler.Update)
	mux.HandleFunc("DELETE /api/threads/{id}", threadHandler.Delete)
	mux.HandleFunc("POST /api/threads/{id}/join", threadHandler.Join)
	mux.HandleFunc("POST /api/threads/{id}/requests", threadHandler.DecideRequest)
	mux.HandleFunc("POST /api/threads/{id}/messages", messageHandler.Send)
	mux.Handle("GET /api/admin/dashboard", auth(adminOnly(http.HandlerFunc(adminHandler.Dashboard))))

	return &testServer{
		mux:        mux,
		users:      users,
		threads:    threads,
		messages:   messages,
		authSvc:    authSvc,
		threadSvc:  threadSvc,
		messageSvc: messageSvc,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *testServer) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *testServer) addThread(t *testing.T, creator *domain.User, requiresApproval bool) *domain.Thread {
	t.Helper()
	thread, err := s.threadSvc.Create(context.Background(), service.CreateThreadInput{
		Title:            "Pickup basketball",
		Description:      "3v3 at the open court",
		Creator:          creator.Username,
		CreatorID:        creator.ID,
		Location:         "Main park",
		Tags:             []string{"sports"},
		ExpiresAt:        time.Now().Add(2 * time.Hour),
		RequiresApproval: &requiresApproval,
	})
	require.NoError(t, err)
	return thread
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	resp, err := s.authSvc.Login(context.Background(), service.LoginInput{
		Username: testAdminUser,
		Password: testAdminPassword,
		IsAdmin:  true,
	})
	require.NoError(t, err)
	return resp.Token
}
