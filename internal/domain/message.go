package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemUsername is the author name used for synthetic membership
// announcements. The message still carries the affected user's id.
const SystemUsername = "System"

type Message struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"threadId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
