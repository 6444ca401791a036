package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/service"
)

// AuthHandler carries the account endpoints: registration, local login,
// and the caller's own profile.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type profileResponse struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// updateProfileResponse wraps the mutated fields in the envelope clients
// were built against; unlike the GET response it carries no email.
type updateProfileResponse struct {
	Message string             `json:"message"`
	User    updatedProfileUser `json:"user"`
}

type updatedProfileUser struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// HandleRegister creates a local account.
//
// HTTP: POST /register
//
// The route sits behind OptionalAuth: anonymous callers can self-register,
// and an authenticated admin can set isAdmin on the new account. The
// service rejects the escalation for anyone else.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	var requester *auth.Principal
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		requester = &p
	}

	if _, err := h.auth.Register(r.Context(), requester, req.Name, req.Email, req.Password, req.IsAdmin); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// HandleLogin authenticates a local account and returns a bearer token.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:   result.Token,
		UserID:  result.UserID,
		IsAdmin: result.IsAdmin,
	})
}

// HandleGetProfile returns the caller's own profile.
//
// HTTP: GET /profile (auth required)
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Access Denied, No Token Provided"))
		return
	}

	user, err := h.auth.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Name:   user.Name,
		Avatar: user.AvatarURL,
		Email:  user.Email,
	})
}

// HandleUpdateProfile updates the caller's display name and avatar.
//
// HTTP: PUT /profile (auth required)
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Access Denied, No Token Provided"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), principal, req.Name, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User:    updatedProfileUser{Name: user.Name, Avatar: user.AvatarURL},
	})
}
