// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate, enforce the
// access rules, and orchestrate; repositories read and write storage.
// Services accept primitives and return domain errors — they know nothing
// about HTTP, so the same rules hold for any caller.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// MinPasswordLength matches the validation rule clients were built against.
const MinPasswordLength = 6

// AuthService is the identity resolver: it owns registration, local login,
// federated login, and profile access, sitting between the HTTP handlers
// and the user store / token / password services.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles what a successful login hands back to the client.
type LoginResult struct {
	Token   string
	UserID  string
	IsAdmin bool
}

// Register creates a local account.
//
// requester is the principal of the caller, nil for anonymous. It only
// matters when isAdmin is requested: minting an admin requires an existing
// admin, checked FIRST — an escalation attempt is rejected before any
// other validation reveals whether the email is taken.
//
// Registration does not auto-login; the created user is returned without
// a token and the client logs in separately.
func (s *AuthService) Register(ctx context.Context, requester *auth.Principal, name, email, password string, isAdmin bool) (*model.User, error) {
	if isAdmin && (requester == nil || !requester.IsAdmin) {
		return nil, apperror.Forbidden("Only admins can create other admins")
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	// Friendly pre-check; the store's unique index is what actually
	// guarantees at most one local account per email under concurrency.
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("User already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return user, nil
}

// Login authenticates a local account and issues a bearer token.
//
// Unknown email, federation-only account, and wrong password all collapse
// into the one generic invalid-credentials error — the response must not
// reveal whether an email is registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !user.HasPassword() || !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{Token: token, UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// LoginFederated resolves a provider-confirmed identity to a user and
// issues a token. First sight of a (provider, subject) pair creates the
// account: no password hash, never admin, the provider's display name and
// email (which may be empty — some accounts hide it).
//
// An email matching an existing local account is NOT merged; the
// federated identity gets its own record. Historical behavior, kept
// deliberately.
func (s *AuthService) LoginFederated(ctx context.Context, provider string, profile *auth.Profile) (*LoginResult, error) {
	if profile == nil || profile.SubjectID == "" {
		return nil, fmt.Errorf("service/auth: federated profile must carry a subject id")
	}

	user, err := s.users.FindOrCreateFederated(ctx, &model.User{
		Name:       profile.Name,
		Email:      strings.ToLower(profile.Email),
		Provider:   provider,
		ProviderID: profile.SubjectID,
		AvatarURL:  profile.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: resolving %s identity %s: %w", provider, profile.SubjectID, err)
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via provider",
		slog.String("provider", provider),
		slog.String("userID", user.ID),
	)

	return &LoginResult{Token: token, UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// GetProfile returns the user record for the given principal's id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}

// UpdateProfile mutates the caller's own record. Ownership is structural:
// the target id IS the principal's id, there is no way to address another
// user's record through this path. Empty fields are left unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, principal auth.Principal, name, avatarURL string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if avatarURL = strings.TrimSpace(avatarURL); avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating user %s: %w", user.ID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return user, nil
}
