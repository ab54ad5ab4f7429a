package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/onboardly/voice-twin/backend/internal/config"
	"github.com/onboardly/voice-twin/backend/internal/llm"
	"github.com/onboardly/voice-twin/backend/internal/model/persona"
	sessionmodel "github.com/onboardly/voice-twin/backend/internal/model/session"
	"github.com/onboardly/voice-twin/backend/internal/prompt"
	"github.com/onboardly/voice-twin/backend/internal/storage"
)

// Script lines spoken by the assistant at fixed points of the session.
const (
	greetingLine = "Hey there! I'm Alex — your witty onboarding buddy. Ready for a fun 40-minute chat to build your AI twin? Just say 'start' when you're ready."
	declineLine  = "No worries! Restart me when you're ready."
	beginLine    = "Awesome! Let's begin."
	ceilingLine  = "We've been chatting for a while — let me wrap up and build your AI twin."
	exitAckLine  = "Got it! Thanks for such a great conversation. Let me generate your deep user persona now."
	finalizeLine = "That was awesome! Let me build your deep user persona now."
	completeLine = "Onboarding complete! Your AI twin now understands you deeply. Welcome aboard!"

	// Spoken reply when the language model fails mid-conversation.
	llmFallbackLine = "I'm having trouble thinking right now. Let's try again."
)

// Abbreviated event lines for the long scripted passages.
const (
	greetingEvent = "Hey there! I'm Alex — your witty onboarding buddy..."
	ceilingEvent  = "Session complete. Generating your persona..."
	exitAckEvent  = "Got it! Thanks for such a great conversation..."
	finalizeEvent = "Building your deep user persona..."
)

// exitPhrases end the conversation when any of them appears in the
// user's latest utterance.
var exitPhrases = []string{
	"wrap up", "done", "finish", "stop", "goodbye", "bye", "thank you", "thanks",
	"that's all", "i'm done", "end session", "see you", "take care",
}

// consecutive capture failures tolerated before aborting the session.
const maxListenFailures = 3

// Voice is the audio surface the session talks through.
type Voice interface {
	Listen(ctx context.Context, sessionID string, duration time.Duration) (string, error)
	Speak(ctx context.Context, sessionID, text string) error
}

// PersonaBuilder turns a finished transcript into a persona document.
type PersonaBuilder interface {
	Build(ctx context.Context, transcript string) *persona.Document
}

// ArtifactWriter persists the session's transcript and persona.
type ArtifactWriter interface {
	SaveTranscript(sessionID, transcript string) (string, error)
	SavePersona(sessionID string, doc *persona.Document) (string, error)
}

// SessionIndexer records session metadata. May be nil.
type SessionIndexer interface {
	RecordStart(ctx context.Context, id string, startedAt time.Time) error
	RecordFinish(ctx context.Context, rec storage.SessionRecord) error
}

// Session drives one onboarding conversation from greeting to persona.
type Session struct {
	id        string
	cfg       config.SessionConfig
	voice     Voice
	completer llm.Client
	builder   PersonaBuilder
	prompts   *prompt.Builder
	questions *prompt.QuestionBank
	artifacts ArtifactWriter
	index     SessionIndexer
	rng       *rand.Rand
	clock     func() time.Time

	events chan sessionmodel.Event

	mu         sync.Mutex
	state      sessionmodel.State
	transcript *sessionmodel.Transcript
	startedAt  time.Time
}

// Deps bundles everything a session needs.
type Deps struct {
	Config    config.SessionConfig
	Voice     Voice
	Completer llm.Client
	Builder   PersonaBuilder
	Prompts   *prompt.Builder
	Questions *prompt.QuestionBank
	Artifacts ArtifactWriter
	Index     SessionIndexer

	// Rand and Clock are overridable for tests; nil picks defaults.
	Rand  *rand.Rand
	Clock func() time.Time
}

// NewSession allocates a session with a fresh ID.
func NewSession(deps Deps) *Session {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(clock().UnixNano()))
	}

	return &Session{
		id:         sessionmodel.NewID(clock()),
		cfg:        deps.Config,
		voice:      deps.Voice,
		completer:  deps.Completer,
		builder:    deps.Builder,
		prompts:    deps.Prompts,
		questions:  deps.Questions,
		artifacts:  deps.Artifacts,
		index:      deps.Index,
		rng:        rng,
		clock:      clock,
		events:     make(chan sessionmodel.Event, 32),
		state:      sessionmodel.NotStarted,
		transcript: &sessionmodel.Transcript{},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Events returns the stream of progress events. The channel is closed
// when the session ends.
func (s *Session) Events() <-chan sessionmodel.Event { return s.events }

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	ID        string  `json:"id"`
	State     string  `json:"state"`
	Turns     int     `json:"turns"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Elapsed   float64 `json:"elapsed_seconds"`
}

// Snapshot reports the current session state.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var elapsed time.Duration
	if !s.startedAt.IsZero() {
		elapsed = s.clock().Sub(s.startedAt)
	}
	return Status{
		ID:        s.id,
		State:     string(s.state),
		Turns:     s.transcript.Len(),
		ElapsedMS: elapsed.Milliseconds(),
		Elapsed:   elapsed.Seconds(),
	}
}

func (s *Session) setState(state sessionmodel.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run executes the whole conversation. It closes the event channel on
// return, so callers can range over Events.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.events)

	s.mu.Lock()
	s.startedAt = s.clock()
	start := s.startedAt
	s.mu.Unlock()

	if s.index != nil {
		if err := s.index.RecordStart(ctx, s.id, start); err != nil {
			log.Printf("[session] %s: failed to index start: %v", s.id, err)
		}
	}

	s.setState(sessionmodel.AwaitingReady)
	s.say(ctx, greetingLine, greetingEvent)

	ready, err := s.voice.Listen(ctx, s.id, s.cfg.ReadyWindow)
	if err != nil {
		s.finishIndex(ctx, "error")
		return fmt.Errorf("failed to hear ready confirmation: %w", err)
	}
	if strings.Contains(strings.ToLower(ready), "no") {
		s.setState(sessionmodel.Declined)
		s.say(ctx, declineLine, declineLine)
		s.finishIndex(ctx, "declined")
		log.Printf("[session] %s: declined", s.id)
		return nil
	}

	s.setState(sessionmodel.Active)
	s.say(ctx, beginLine, beginLine)

	if err := s.converse(ctx, start); err != nil {
		s.finishIndex(ctx, "error")
		return err
	}

	return s.finalize(ctx)
}

// converse runs the listen/respond loop until an exit phrase, the time
// ceiling, or a cancelled context ends it.
func (s *Session) converse(ctx context.Context, start time.Time) error {
	asked := make(map[string]bool)
	turns := 0
	listenFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Keep going while under the time ceiling, or until the
		// minimum turn count is reached when one is configured.
		elapsed := s.clock().Sub(start)
		if elapsed >= s.cfg.MaxDuration && turns >= s.cfg.MinTurns {
			s.say(ctx, ceilingLine, ceilingEvent)
			return nil
		}

		userText, err := s.voice.Listen(ctx, s.id, s.cfg.ListenWindow)
		if err != nil {
			listenFailures++
			if listenFailures >= maxListenFailures {
				return fmt.Errorf("giving up after %d capture failures: %w", listenFailures, err)
			}
			log.Printf("[session] %s: capture failed (%d/%d): %v", s.id, listenFailures, maxListenFailures, err)
			continue
		}
		listenFailures = 0

		if strings.TrimSpace(userText) == "" {
			continue
		}

		s.mu.Lock()
		s.transcript.AppendUser(userText)
		s.mu.Unlock()
		s.emit(ctx, sessionmodel.Event{Kind: sessionmodel.EventUser, Text: userText})

		if containsExitPhrase(userText) {
			s.say(ctx, exitAckLine, exitAckEvent)
			return nil
		}

		aiText := s.respond(ctx, userText, asked)

		s.mu.Lock()
		s.transcript.AppendAI(aiText)
		s.mu.Unlock()

		s.speak(ctx, aiText)
		s.emit(ctx, sessionmodel.Event{Kind: sessionmodel.EventAI, Text: aiText})

		turns++
	}
}

// respond picks the next assistant line: a pending personalized
// question most of the time when one is triggered, otherwise a model
// completion.
func (s *Session) respond(ctx context.Context, userText string, asked map[string]bool) string {
	if s.questions != nil {
		s.mu.Lock()
		recent := s.transcript.LastUserTexts(3)
		s.mu.Unlock()

		if q, ok := s.questions.Match(recent, asked); ok && s.rng.Float64() < s.cfg.OverrideProb {
			asked[q.Question] = true
			return q.Question
		}
	}

	s.mu.Lock()
	promptText := s.prompts.Build(s.transcript, userText, s.rng)
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, promptText)
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Printf("[session] %s: completion failed: %v", s.id, err)
		return llmFallbackLine
	}
	return reply
}

// finalize saves artifacts, extracts the persona and emits the final
// events.
func (s *Session) finalize(ctx context.Context) error {
	s.setState(sessionmodel.Finalizing)
	s.say(ctx, finalizeLine, finalizeEvent)

	s.mu.Lock()
	transcriptText := s.transcript.Text()
	turns := s.transcript.Len()
	s.mu.Unlock()

	transcriptPath, err := s.artifacts.SaveTranscript(s.id, transcriptText)
	if err != nil {
		s.finishIndex(ctx, "error")
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	doc := s.builder.Build(ctx, transcriptText)
	personaPath, err := s.artifacts.SavePersona(s.id, doc)
	if err != nil {
		s.finishIndex(ctx, "error")
		return fmt.Errorf("failed to save persona: %w", err)
	}

	if s.index != nil {
		rec := storage.SessionRecord{
			ID:             s.id,
			EndedAt:        s.clock(),
			State:          "completed",
			Turns:          turns,
			TranscriptPath: transcriptPath,
			PersonaPath:    personaPath,
		}
		if err := s.index.RecordFinish(ctx, rec); err != nil {
			log.Printf("[session] %s: failed to index finish: %v", s.id, err)
		}
	}

	s.speak(ctx, completeLine)

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal persona event: %w", err)
	}
	s.emit(ctx, sessionmodel.Event{Kind: sessionmodel.EventPersona, Text: string(payload)})
	s.emit(ctx, sessionmodel.Event{Kind: sessionmodel.EventDone})

	s.setState(sessionmodel.Completed)
	log.Printf("[session] %s: completed with %d turns", s.id, turns)
	return nil
}

// say speaks a scripted line and emits its event form.
func (s *Session) say(ctx context.Context, spoken, event string) {
	s.speak(ctx, spoken)
	s.emit(ctx, sessionmodel.Event{Kind: sessionmodel.EventAI, Text: event})
}

// speak plays a line, logging rather than failing when audio output is
// unavailable.
func (s *Session) speak(ctx context.Context, text string) {
	if err := s.voice.Speak(ctx, s.id, text); err != nil {
		log.Printf("[session] %s: playback failed: %v", s.id, err)
	}
}

func (s *Session) emit(ctx context.Context, event sessionmodel.Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *Session) finishIndex(ctx context.Context, state string) {
	if s.index == nil {
		return
	}
	s.mu.Lock()
	turns := s.transcript.Len()
	s.mu.Unlock()

	rec := storage.SessionRecord{
		ID:      s.id,
		EndedAt: s.clock(),
		State:   state,
		Turns:   turns,
	}
	if err := s.index.RecordFinish(ctx, rec); err != nil {
		log.Printf("[session] %s: failed to index finish: %v", s.id, err)
	}
}

func containsExitPhrase(userText string) bool {
	lowered := strings.ToLower(userText)
	for _, phrase := range exitPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
