package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/handler/dto"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	logger *slog.Logger
	users  *service.UserService
	secret []byte
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *slog.Logger, users *service.UserService, secret []byte) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		users:  users,
		secret: secret,
	}
}

// Register creates a new account.
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "Body must be valid JSON")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUser):
			writeError(w, http.StatusBadRequest, "username is already taken", "Pick a different username")
		case errors.Is(err, service.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, "username and password are required", "")
		case errors.Is(err, service.ErrUsernameTooLong):
			writeError(w, http.StatusBadRequest, "username is too long", "Usernames are limited to 50 characters")
		default:
			h.logger.Error("failed to register user",
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
			)
			writeError(w, http.StatusInternalServerError, "internal server error", "")
		}
		return
	}

	h.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("tier", user.Tier),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Tier:      user.Tier,
		CreatedAt: user.CreatedAt,
	})
}

// Login verifies credentials and issues an access token.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "Body must be valid JSON")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		h.logger.Error("failed to authenticate user",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	token, err := auth.IssueToken(user.ID, h.secret)
	if err != nil {
		h.logger.Error("failed to issue token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: token})
}
