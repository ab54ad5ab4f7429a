package onboarding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onboardly/voice-twin/backend/internal/config"
	"github.com/onboardly/voice-twin/backend/internal/model/persona"
	"github.com/onboardly/voice-twin/backend/internal/prompt"
	onboardingservice "github.com/onboardly/voice-twin/backend/internal/service/onboarding"
	"github.com/onboardly/voice-twin/backend/internal/storage"
)

type scriptedVoice struct {
	replies []string
	next    int
}

func (v *scriptedVoice) Listen(ctx context.Context, sessionID string, duration time.Duration) (string, error) {
	if v.next >= len(v.replies) {
		return "", context.Canceled
	}
	reply := v.replies[v.next]
	v.next++
	return reply, nil
}

func (v *scriptedVoice) Speak(ctx context.Context, sessionID, text string) error {
	return nil
}

type fixedBuilder struct{}

func (fixedBuilder) Build(ctx context.Context, transcript string) *persona.Document {
	return &persona.Document{
		Name:    "Sam",
		Values:  []string{"honesty"},
		Goals:   []string{},
		Hobbies: []string{"hiking"},
	}
}

type memArtifacts struct{}

func (memArtifacts) SaveTranscript(sessionID, transcript string) (string, error) {
	return "transcripts/" + sessionID + ".txt", nil
}

func (memArtifacts) SavePersona(sessionID string, doc *persona.Document) (string, error) {
	return "personas/" + sessionID + ".json", nil
}

type fixedPersonas struct {
	doc *persona.Document
	err error
}

func (f *fixedPersonas) LatestPersona() (*persona.Document, string, error) {
	return f.doc, "personas/persona_20260830_101500.json", f.err
}

func testFactory(replies ...string) SessionFactory {
	return func() *onboardingservice.Session {
		return onboardingservice.NewSession(onboardingservice.Deps{
			Config: config.SessionConfig{
				MaxDuration:  time.Hour,
				ListenWindow: time.Second,
				ReadyWindow:  time.Second,
			},
			Voice:     &scriptedVoice{replies: replies},
			Builder:   fixedBuilder{},
			Prompts:   prompt.NewBuilder("You are Alex.", nil),
			Artifacts: memArtifacts{},
		})
	}
}

func TestStartStreamsSessionEvents(t *testing.T) {
	registry := onboardingservice.NewRegistry()
	h := New(registry, testFactory("start", "goodbye"), &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodPost, "/start", nil)
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"data: AI: ", "data: USER: goodbye", "data: PERSONA: {", "data: DONE"} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q:\n%s", want, body)
		}
	}

	if _, active := registry.Active(); active {
		t.Error("registry slot still held after stream finished")
	}
}

func TestStartConflictsWithActiveSession(t *testing.T) {
	registry := onboardingservice.NewRegistry()
	if err := registry.Begin(&onboardingservice.Session{}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	h := New(registry, testFactory(), &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodPost, "/start", nil)
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestStartUnavailableWithoutVoice(t *testing.T) {
	h := New(onboardingservice.NewRegistry(), nil, &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodPost, "/start", nil)
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStatusIdle(t *testing.T) {
	h := New(onboardingservice.NewRegistry(), nil, &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["state"] != "idle" {
		t.Errorf("state = %q, want idle", body["state"])
	}
}

func TestLatestPersonaNotFound(t *testing.T) {
	h := New(onboardingservice.NewRegistry(), nil, &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodGet, "/persona/latest", nil)
	rec := httptest.NewRecorder()
	h.LatestPersona(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLatestPersonaFound(t *testing.T) {
	doc := &persona.Document{
		Name:    "Grace",
		Values:  []string{"precision"},
		Goals:   []string{},
		Hobbies: []string{"sailing"},
	}
	h := New(onboardingservice.NewRegistry(), nil, &fixedPersonas{doc: doc}, nil)

	req := httptest.NewRequest(http.MethodGet, "/persona/latest", nil)
	rec := httptest.NewRecorder()
	h.LatestPersona(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Persona persona.Document `json:"persona"`
		Path    string           `json:"path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Persona.Name != "Grace" {
		t.Errorf("persona name = %q, want Grace", body.Persona.Name)
	}
	if body.Path == "" {
		t.Error("path missing from response")
	}
}

func TestSessionsWithoutIndex(t *testing.T) {
	h := New(onboardingservice.NewRegistry(), nil, &fixedPersonas{err: storage.ErrNoPersona}, nil)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	h.Sessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var records []storage.SessionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %v, want empty", records)
	}
}
