package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/neomorfeo/gestloc/internal/adapter/auth"
	"github.com/neomorfeo/gestloc/internal/app"
)

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Services    Services
	Files       FileHandlers
	Sessions    *auth.Manager
	Credentials auth.Credentials
	// Middlewares run before the built-in chi stack, outermost first.
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP handler: public login/logout routes, and the JSON
// API plus file routes behind the session middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewMux()
	for _, mw := range cfg.Middlewares {
		router.Use(mw)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post(auth.LoginPath, cfg.Sessions.LoginHandler(cfg.Credentials))
	router.Post("/logout", cfg.Sessions.LogoutHandler)

	router.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.Middleware)

		api := humachi.New(r, huma.DefaultConfig("gestloc", "0.1.0"))
		Register(api, cfg.Services)

		fh := cfg.Files
		if fh.MaxBytes <= 0 {
			fh.MaxBytes = app.DefaultMaxPhotoBytes
		}
		fh.Mount(r)
	})

	return router
}
