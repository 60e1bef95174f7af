package ws

import (
	"log"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Every
// method is fire-and-forget; a marshal or delivery problem is logged and
// never propagated back into the mutation that triggered it.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyThreadCreated(t *domain.Thread) {
	evt, err := NewEvent(EventTypeThreadCreated, ThreadPayload{Thread: *t})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastAll(evt)
}

func (n *HubNotifier) NotifyThreadUpdated(t *domain.Thread) {
	evt, err := NewEvent(EventTypeThreadUpdated, ThreadPayload{Thread: *t})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastAll(evt)
}

func (n *HubNotifier) NotifyThreadDeleted(threadID uuid.UUID) {
	evt, err := NewEvent(EventTypeThreadDeleted, ThreadDeletedPayload{ThreadID: threadID})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToThread(threadID, evt)
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeNewMessage, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToThread(msg.ThreadID, evt)
}

func (n *HubNotifier) NotifyMembershipChanged(threadID, userID uuid.UUID, username string) {
	evt, err := NewEvent(EventTypeMembershipChanged, MembershipChangedPayload{
		ThreadID: threadID,
		UserID:   userID,
		Username: username,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToThread(threadID, evt)
}

func (n *HubNotifier) NotifyJoinRequest(creatorID, threadID uuid.UUID, threadTitle string, userID uuid.UUID, username string) {
	evt, err := NewEvent(EventTypeJoinRequest, JoinRequestPayload{
		ThreadID:    threadID,
		ThreadTitle: threadTitle,
		UserID:      userID,
		Username:    username,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(creatorID, evt)
}

func (n *HubNotifier) NotifyRequestHandled(userID, threadID uuid.UUID, approved bool) {
	evt, err := NewEvent(EventTypeRequestHandled, RequestHandledPayload{
		ThreadID: threadID,
		Approved: approved,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(userID, evt)
}
