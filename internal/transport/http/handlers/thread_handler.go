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

type ThreadHandler struct {
	threadService *service.ThreadService
}

func NewThreadHandler(threadService *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateThreadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateThread(input.Title, input.Description, input.Location, input.ExpiresAt); errs.HasErrors() {
		writeValidationError(w, errs)
		return
	}
	if input.CreatorID == uuid.Nil || input.Creator == "" {
		writeError(w, http.StatusBadRequest, "Creator is required")
		return
	}

	thread, err := h.threadService.Create(r.Context(), input)
	if err != nil {
		log.Printf("ERROR create thread: %v", err)
		writeError(w, storageStatus(err), "Error creating thread")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"thread": thread})
}

// List is unauthenticated: thread discovery is public. Chat history is
// populated only for the threads where userId passes the membership check.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := uuid.Nil
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		viewerID = id
	}

	threads, err := h.threadService.List(r.Context(), viewerID)
	if err != nil {
		log.Printf("ERROR list threads: %v", err)
		writeError(w, storageStatus(err), "Error fetching threads")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"threads": threads})
}

func (h *ThreadHandler) Update(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thread ID")
		return
	}

	var body struct {
		service.UpdateThreadInput
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	thread, err := h.threadService.Update(r.Context(), body.UserID, threadID, body.UpdateThreadInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "Thread not found")
		case errors.Is(err, service.ErrNotCreator):
			writeError(w, http.StatusForbidden, "Only thread creator can update")
		default:
			log.Printf("ERROR update thread: %v", err)
			writeError(w, storageStatus(err), "Error updating thread")
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "Thread updated successfully",
		"thread":  thread,
	})
}

func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thread ID")
		return
	}

	var body struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.threadService.Delete(r.Context(), body.UserID, threadID); err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "Thread not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "Only the thread creator or an admin can delete this thread")
		default:
			log.Printf("ERROR delete thread: %v", err)
			writeError(w, storageStatus(err), "Error deleting thread")
		}
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Thread deleted"})
}

func (h *ThreadHandler) Join(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thread ID")
		return
	}

	var body struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	joined, err := h.threadService.RequestJoin(r.Context(), threadID, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "Thread not found")
		case errors.Is(err, service.ErrAlreadyMember):
			writeError(w, http.StatusBadRequest, "Already a member")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR join thread: %v", err)
			writeError(w, storageStatus(err), "Error sending join request")
		}
		return
	}

	message := "Join request sent"
	if joined {
		message = "Joined thread"
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"message": message,
		"joined":  joined,
	})
}

func (h *ThreadHandler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	threadID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thread ID")
		return
	}

	var body struct {
		UserID        uuid.UUID `json:"userId"`
		Approve       bool      `json:"approve"`
		CurrentUserID uuid.UUID `json:"currentUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	if err := h.threadService.DecideRequest(r.Context(), threadID, body.UserID, body.Approve, body.CurrentUserID); err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			writeError(w, http.StatusNotFound, "Thread not found")
		case errors.Is(err, service.ErrNotCreator):
			writeError(w, http.StatusForbidden, "Only thread creator can handle requests")
		default:
			log.Printf("ERROR handle join request: %v", err)
			writeError(w, storageStatus(err), "Error handling request")
		}
		return
	}

	message := "User rejected"
	if body.Approve {
		message = "User approved"
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": message})
}
