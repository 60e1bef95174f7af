package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/service"
	"nhooyr.io/websocket"
)

// Gateway is the slice of the service layer the realtime path needs. Both
// methods run the same membership authority as the HTTP handlers.
type Gateway interface {
	Authorize(ctx context.Context, threadID, userID uuid.UUID) error
	Append(ctx context.Context, threadID, authorID uuid.UUID, body string) (*domain.Message, error)
}

// NewGateway adapts the thread and message services into a Gateway.
func NewGateway(threads *service.ThreadService, messages *service.MessageService) Gateway {
	return &serviceGateway{threads: threads, messages: messages}
}

type serviceGateway struct {
	threads  *service.ThreadService
	messages *service.MessageService
}

func (g *serviceGateway) Authorize(ctx context.Context, threadID, userID uuid.UUID) error {
	return g.threads.Authorize(ctx, threadID, userID)
}

func (g *serviceGateway) Append(ctx context.Context, threadID, authorID uuid.UUID, body string) (*domain.Message, error) {
	return g.messages.Append(ctx, threadID, authorID, body)
}

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
func ServeWS(hub *Hub, gate Gateway, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		client := NewClient(hub, conn, gate, userID)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

func validateToken(tokenStr, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(sub)
}
