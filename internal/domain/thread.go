package domain

import (
	"time"

	"github.com/google/uuid"
)

// Thread is a time-boxed discussion room. CreatorUsername is a snapshot
// taken at creation and never updated if the user renames.
type Thread struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Location         string      `json:"location"`
	Tags             []string    `json:"tags"`
	CreatorID        uuid.UUID   `json:"creatorId"`
	CreatorUsername  string      `json:"creator"`
	Members          []uuid.UUID `json:"members"`
	PendingRequests  []uuid.UUID `json:"pendingRequests"`
	RequiresApproval bool        `json:"requiresApproval"`
	ExpiresAt        time.Time   `json:"expiresAt"`
	CreatedAt        time.Time   `json:"createdAt"`

	// Chat is populated only for members; non-members always see [].
	Chat []Message `json:"chat"`
}

// HasMember reports whether userID is in the members list. The creator is
// always an effective member even when not literally present; callers that
// need the full membership rule go through service.Membership.
func (t *Thread) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// HasPendingRequest reports whether userID is awaiting a join decision.
func (t *Thread) HasPendingRequest(userID uuid.UUID) bool {
	for _, p := range t.PendingRequests {
		if p == userID {
			return true
		}
	}
	return false
}

// Expired reports whether the thread is past its expiry at the given time.
func (t *Thread) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
