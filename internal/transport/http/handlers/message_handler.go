package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/service"
	"github.com/vedran77/konekt/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send appends a chat message through the same authorized entry point the
// realtime path uses, so membership is enforced identically on both.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thread ID")
		return
	}

	var body struct {
		UserID  uuid.UUID `json:"userId"`
		Message string    `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	if errs := validator.ValidateMessage(body.Message); errs.HasErrors() {
		writeValidationError(w, errs)
		return
	}

	msg, err := h.messageService.Append(r.Context(), threadID, body.UserID, body.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "Thread not found")
		case errors.Is(err, service.ErrNotMember):
			writeError(w, http.StatusForbidden, "You are not authorized to post in this thread")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "Message is required")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, storageStatus(err), "Error sending message")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"message": msg})
}
