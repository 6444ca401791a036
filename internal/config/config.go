// Package config loads the runtime configuration from the environment.
//
// All tunables live here: nothing else in the codebase reads os.Getenv.
// The parsed Config value is handed to each component at construction
// (token service, OAuth providers, server) rather than consulted as a
// process-wide global.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// OAuthProvider holds the credentials for one external identity provider.
// A provider with an empty ClientID is considered unconfigured and its
// routes are not registered.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Config is the full configuration surface of the server.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/storefront.db"`

	// JWTSecret signs every issued bearer token. Must be at least 16
	// characters; generate with: openssl rand -hex 32
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the lifetime of issued bearer tokens. The historical
	// default is one day.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	FacebookAppID       string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret   string `env:"FACEBOOK_APP_SECRET"`
	FacebookCallbackURL string `env:"FACEBOOK_CALLBACK_URL"`

	// Where the federation flow sends the browser after the callback.
	// Success gets ?token=...&userId=... appended; failure gets an error flag.
	OAuthSuccessURL string `env:"OAUTH_SUCCESS_URL" envDefault:"http://localhost:3000/oauth-success"`
	OAuthFailureURL string `env:"OAUTH_FAILURE_URL" envDefault:"http://localhost:3000/login"`
}

// Load reads a .env file if one is present, then parses the environment
// into a Config. A missing .env file is not an error — production supplies
// real environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}

// Google returns the Google OAuth credentials. The callback URL defaults
// to a path on this server when unset, so local development works with
// only the client id/secret exported.
func (c Config) Google() OAuthProvider {
	callback := c.GoogleCallbackURL
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/oauth/google/callback", c.Port)
	}
	return OAuthProvider{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		CallbackURL:  callback,
	}
}

// Facebook returns the Facebook OAuth credentials, with the same callback
// defaulting as Google.
func (c Config) Facebook() OAuthProvider {
	callback := c.FacebookCallbackURL
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/oauth/facebook/callback", c.Port)
	}
	return OAuthProvider{
		ClientID:     c.FacebookAppID,
		ClientSecret: c.FacebookAppSecret,
		CallbackURL:  callback,
	}
}

// Configured reports whether the provider has credentials.
func (p OAuthProvider) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}
