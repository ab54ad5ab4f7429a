package handler

import (
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	onboardinghandler "github.com/onboardly/voice-twin/backend/internal/handler/onboarding"
	middlewarePkg "github.com/onboardly/voice-twin/backend/internal/middleware"
	"github.com/onboardly/voice-twin/backend/web"
)

// NewRouter wires HTTP routes to the onboarding services and mounts
// the embedded web console at the root.
func NewRouter(onboardingHandler *onboardinghandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		onboardingHandler.RegisterRoutes(api)
	})

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		log.Printf("[router] embedded web console unavailable: %v", err)
	} else {
		r.Handle("/*", http.FileServer(http.FS(static)))
	}

	return r
}
