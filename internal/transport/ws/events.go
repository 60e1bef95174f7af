package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeIdentify    = "identify"
	EventTypeJoinThread  = "joinThread"
	EventTypeLeaveThread = "leaveThread"
	EventTypeSendMessage = "sendMessage"
)

// Event types - Server → Client
const (
	EventTypeThreadCreated     = "threadCreated"
	EventTypeThreadUpdated     = "threadUpdated"
	EventTypeThreadDeleted     = "threadDeleted"
	EventTypeNewMessage        = "newMessage"
	EventTypeMembershipChanged = "membershipChanged"
	EventTypeJoinRequest       = "joinRequest"
	EventTypeRequestHandled    = "requestHandled"
	EventTypeUnauthorized      = "unauthorized"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type IdentifyPayload struct {
	UserID uuid.UUID `json:"userId"`
}

type JoinThreadPayload struct {
	ThreadID uuid.UUID `json:"threadId"`
	UserID   uuid.UUID `json:"userId"`
}

type LeaveThreadPayload struct {
	ThreadID uuid.UUID `json:"threadId"`
}

type SendMessagePayload struct {
	ThreadID uuid.UUID `json:"threadId"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
}

// --- Server → Client payloads ---

// MessagePayload reuses the domain shape so the realtime event and the
// command response carry the exact same fields.
type MessagePayload struct {
	domain.Message
}

type ThreadPayload struct {
	domain.Thread
}

type ThreadDeletedPayload struct {
	ThreadID uuid.UUID `json:"threadId"`
}

type MembershipChangedPayload struct {
	ThreadID uuid.UUID `json:"threadId"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

type JoinRequestPayload struct {
	ThreadID    uuid.UUID `json:"threadId"`
	ThreadTitle string    `json:"threadTitle"`
	UserID      uuid.UUID `json:"userId"`
	Username    string    `json:"username"`
}

type RequestHandledPayload struct {
	ThreadID uuid.UUID `json:"threadId"`
	Approved bool      `json:"approved"`
}

type UnauthorizedPayload struct {
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}

// Room keys. A room is either a thread's subscriber group or a single
// user's private channel.
func threadRoom(threadID uuid.UUID) string {
	return "thread:" + threadID.String()
}

func userRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}
