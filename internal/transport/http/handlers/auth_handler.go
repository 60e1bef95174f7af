package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/vedran77/konekt/internal/service"
	"github.com/vedran77/konekt/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateRegister(input.Username, input.Password); errs.HasErrors() {
		writeValidationError(w, errs)
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "Username already taken. Please choose a different username.")
		} else {
			log.Printf("ERROR register: %v", err)
			writeError(w, storageStatus(err), "Unable to create account. Please try again in a few moments.")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully! Welcome to Konekt!",
		"user":    resp.User,
		"token":   resp.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Username, input.Password); errs.HasErrors() {
		writeValidationError(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "Username not found. Please check your username or create a new account.")
		case errors.Is(err, service.ErrLegacyAccount):
			writeError(w, http.StatusBadRequest, "This account needs to be updated. Please create a new account with a password.")
		case errors.Is(err, service.ErrIncorrectPassword):
			writeError(w, http.StatusUnauthorized, "Incorrect password. Please check your password and try again.")
		case errors.Is(err, service.ErrInvalidAdminCreds):
			writeError(w, http.StatusUnauthorized, "Invalid admin credentials")
		default:
			log.Printf("ERROR login: %v", err)
			writeError(w, storageStatus(err), "Login service temporarily unavailable. Please try again.")
		}
		return
	}

	message := "Login successful! Welcome back!"
	if resp.User.IsAdmin {
		message = "Admin login successful"
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": message,
		"user":    resp.User,
		"token":   resp.Token,
	})
}

// Logout is a stateless acknowledgement; tokens expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "Logged out successfully",
	})
}
