package service

import (
	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

// AdminPrincipal derives the stable id of the configured admin account.
// The admin is never a stored user; both entry points compare against this
// single id instead of scattering credential checks.
func AdminPrincipal(username string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("konekt-admin:"+username))
}

// Membership is the single authority answering who may read, post in or
// administer a thread. The HTTP handlers and the websocket gateway both go
// through it so the two paths cannot drift.
type Membership struct {
	adminID uuid.UUID
}

func NewMembership(adminID uuid.UUID) *Membership {
	return &Membership{adminID: adminID}
}

func (m *Membership) AdminID() uuid.UUID {
	return m.adminID
}

func (m *Membership) IsAdmin(userID uuid.UUID) bool {
	return userID != uuid.Nil && userID == m.adminID
}

// IsMember reports whether userID may read and post in the thread. The
// creator counts as a member even when not literally in the members set.
func (m *Membership) IsMember(t *domain.Thread, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	return userID == t.CreatorID || t.HasMember(userID)
}

// IsCreatorOrAdmin reports whether userID may administer the thread.
func (m *Membership) IsCreatorOrAdmin(t *domain.Thread, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	return userID == t.CreatorID || m.IsAdmin(userID)
}
