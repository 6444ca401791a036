// Package server is the composition root: it opens the database, builds
// the service and handler layers, mounts the routes, and runs the HTTP
// server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/config"
	"github.com/sakif/storefront/internal/handler"
	"github.com/sakif/storefront/internal/middleware"
	sqliteRepo "github.com/sakif/storefront/internal/repository/sqlite"
	"github.com/sakif/storefront/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during shutdown so the WAL is flushed.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the whole dependency chain. Each layer receives only what it
// needs: services get repository interfaces, handlers get services.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts every endpoint.
//
// Route map:
//
//	POST   /register                      create account (admin flag needs an admin caller)
//	POST   /login                         local login → bearer token
//	GET    /oauth/{provider}              start federated login
//	GET    /oauth/{provider}/callback     finish federated login (redirects)
//	GET    /profile                       own profile            (auth)
//	PUT    /profile                       update own profile     (auth)
//	GET    /api/products[/{id}]           browse catalog
//	POST   /api/products                  create product         (admin)
//	PUT    /api/products/{id}             update product         (admin)
//	DELETE /api/products/{id}             delete product         (admin)
//	GET    /api/cart                      own cart               (auth)
//	GET    /api/cart/calculate            cart totals            (auth)
//	POST   /api/cart                      add item               (auth)
//	PUT    /api/cart/{itemId}             change quantity        (auth)
//	DELETE /api/cart/{itemId}             remove item            (auth)
//	DELETE /api/cart                      clear cart             (auth)
//	POST   /api/orders                    checkout               (auth)
//	GET    /api/orders                    order history          (auth; admins see all)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	catalogSvc := service.NewCatalogService(s.db, s.logger)
	cartSvc := service.NewCartService(s.db, s.db, s.logger)
	orderSvc := service.NewOrderService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	productHandler := handler.NewProductHandler(catalogSvc, s.logger)
	cartHandler := handler.NewCartHandler(cartSvc, s.logger)
	orderHandler := handler.NewOrderHandler(orderSvc, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	requireAdmin := auth.RequireAdmin(tokens)

	// Registration sits behind OptionalAuth: anonymous self-registration
	// works, and an admin's token lets the isAdmin flag through.
	s.router.With(auth.OptionalAuth(tokens)).Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/profile", authHandler.HandleGetProfile)
		r.Put("/profile", authHandler.HandleUpdateProfile)
	})

	// Federated login, one pair of routes per configured provider.
	var providers []*auth.Provider
	if g := s.cfg.Google(); g.Configured() {
		providers = append(providers, auth.NewGoogleProvider(g.ClientID, g.ClientSecret, g.CallbackURL))
	}
	if f := s.cfg.Facebook(); f.Configured() {
		providers = append(providers, auth.NewFacebookProvider(f.ClientID, f.ClientSecret, f.CallbackURL))
	}
	if len(providers) > 0 {
		oauthHandler := handler.NewOAuthHandler(providers, authSvc,
			s.cfg.OAuthSuccessURL, s.cfg.OAuthFailureURL, s.logger)
		s.router.Get("/oauth/{provider}", oauthHandler.HandleLogin)
		s.router.Get("/oauth/{provider}/callback", oauthHandler.HandleCallback)
	} else {
		s.logger.Warn("no OAuth providers configured, federated login disabled")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.HandleList)
		r.Get("/products/{id}", productHandler.HandleGet)
		r.With(requireAdmin).Post("/products", productHandler.HandleCreate)
		r.With(requireAdmin).Put("/products/{id}", productHandler.HandleUpdate)
		r.With(requireAdmin).Delete("/products/{id}", productHandler.HandleDelete)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/cart", cartHandler.HandleGet)
			r.Get("/cart/calculate", cartHandler.HandleCalculate)
			r.Post("/cart", cartHandler.HandleAddItem)
			r.Put("/cart/{itemId}", cartHandler.HandleUpdateItem)
			r.Delete("/cart/{itemId}", cartHandler.HandleRemoveItem)
			r.Delete("/cart", cartHandler.HandleClear)

			r.Post("/orders", orderHandler.HandleCreate)
			r.Get("/orders", orderHandler.HandleList)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
