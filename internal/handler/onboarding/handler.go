package onboarding

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onboardly/voice-twin/backend/internal/model/persona"
	onboardingservice "github.com/onboardly/voice-twin/backend/internal/service/onboarding"
	"github.com/onboardly/voice-twin/backend/internal/storage"
	"github.com/onboardly/voice-twin/backend/pkg/utils"
)

// SessionFactory creates a fresh session per start request. It is nil
// when the voice stack is not configured.
type SessionFactory func() *onboardingservice.Session

// PersonaSource serves the most recent persona artifact.
type PersonaSource interface {
	LatestPersona() (*persona.Document, string, error)
}

// SessionLister serves past session metadata. May be nil.
type SessionLister interface {
	List(ctx context.Context) ([]storage.SessionRecord, error)
}

// Handler exposes the onboarding API.
type Handler struct {
	registry   *onboardingservice.Registry
	newSession SessionFactory
	personas   PersonaSource
	sessions   SessionLister
}

// New wires the handler.
func New(registry *onboardingservice.Registry, newSession SessionFactory, personas PersonaSource, sessions SessionLister) *Handler {
	return &Handler{
		registry:   registry,
		newSession: newSession,
		personas:   personas,
		sessions:   sessions,
	}
}

// RegisterRoutes attaches the onboarding endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start", h.Start)
	r.Get("/status", h.Status)
	r.Get("/persona/latest", h.LatestPersona)
	r.Get("/sessions", h.Sessions)
}

// Start launches a session and streams its events until DONE or the
// client disconnects.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if h.newSession == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "voice onboarding unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	session := h.newSession()
	if err := h.registry.Begin(session); err != nil {
		if errors.Is(err, onboardingservice.ErrSessionActive) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	defer h.registry.Release(session)

	utils.SetupSSEHeaders(w)

	ctx := r.Context()
	log.Printf("[onboarding] session %s started", session.ID())

	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Run(ctx)
	}()

	for event := range session.Events() {
		utils.SendSSELine(w, flusher, event.Line())
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[onboarding] session %s failed: %v", session.ID(), err)
		return
	}
	log.Printf("[onboarding] session %s stream closed", session.ID())
}

// Status reports the running session, or idle.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if session, ok := h.registry.Active(); ok {
		utils.RespondJSON(w, http.StatusOK, session.Snapshot())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"state": "idle"})
}

// LatestPersona returns the newest saved persona document.
func (h *Handler) LatestPersona(w http.ResponseWriter, r *http.Request) {
	doc, path, err := h.personas.LatestPersona()
	if err != nil {
		if errors.Is(err, storage.ErrNoPersona) {
			utils.RespondError(w, http.StatusNotFound, "no persona generated yet")
			return
		}
		log.Printf("[onboarding] failed to load latest persona: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load persona")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"persona": doc,
		"path":    path,
	})
}

// Sessions lists past sessions from the index, newest first.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		utils.RespondJSON(w, http.StatusOK, []storage.SessionRecord{})
		return
	}

	records, err := h.sessions.List(r.Context())
	if err != nil {
		log.Printf("[onboarding] failed to list sessions: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if records == nil {
		records = []storage.SessionRecord{}
	}
	utils.RespondJSON(w, http.StatusOK, records)
}
