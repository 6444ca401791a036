// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account, created either by local registration
// (name/email/password) or by a first-time OAuth login.
//
// PasswordHash is empty for federation-only users — they can never log in
// with a password. Provider/ProviderID identify the linked external
// account; both are empty for local-only users. A user holds at most one
// federated identity, and no two users may claim the same
// (provider, providerID) pair — the repository enforces that with a unique
// index, not application code, so concurrent first-time callbacks are safe.
//
// WHY ProviderID string?
// Google subject ids overflow int64 and Facebook ids are numeric strings;
// providers universally document their ids as opaque strings, so we store
// them verbatim.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	IsAdmin      bool      `json:"isAdmin"   db:"is_admin"`
	Provider     string    `json:"provider,omitempty"   db:"provider"`    // e.g. "google", "facebook"
	ProviderID   string    `json:"providerId,omitempty" db:"provider_id"` // subject id at the provider
	AvatarURL    string    `json:"avatar"    db:"avatar_url"` // may be empty
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the user can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
