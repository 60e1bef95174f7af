package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository"
	"golang.org/x/crypto/argon2"
)

var (
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrLegacyAccount     = errors.New("account has no password set")
	ErrInvalidAdminCreds = errors.New("invalid admin credentials")
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte

	adminID       uuid.UUID
	adminUsername string
	adminPassword string

	presence PresenceTracker
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret, adminUsername, adminPassword string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     []byte(jwtSecret),
		adminID:       AdminPrincipal(adminUsername),
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// SetPresence sets the presence tracker (optional dependency).
func (s *AuthService) SetPresence(p PresenceTracker) {
	s.presence = p
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	username := NormalizeUsername(input.Username)

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.generateToken(user.ID, user.Username, false, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if input.IsAdmin {
		return s.loginAdmin(input)
	}

	user, err := s.userRepo.GetByUsername(ctx, NormalizeUsername(input.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.HasPassword() {
		return nil, ErrLegacyAccount
	}
	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	token, err := s.generateToken(user.ID, user.Username, user.IsAdmin, 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	// Best effort; a failure here never fails the login.
	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}
	if s.presence != nil {
		s.presence.Touch(ctx, user.ID)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// loginAdmin checks the configured credential pair. The admin is a
// config-bound principal, not a stored user.
func (s *AuthService) loginAdmin(input LoginInput) (*AuthResponse, error) {
	if s.adminPassword == "" {
		return nil, ErrInvalidAdminCreds
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidAdminCreds
	}

	token, err := s.generateToken(s.adminID, s.adminUsername, true, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{
		User:  &domain.User{ID: s.adminID, Username: s.adminUsername, IsAdmin: true},
		Token: token,
	}, nil
}

// NormalizeUsername applies the case normalization used everywhere a handle
// is stored or looked up.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *AuthService) generateToken(userID uuid.UUID, username string, admin bool, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"adm":      admin,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyPassword(password, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
