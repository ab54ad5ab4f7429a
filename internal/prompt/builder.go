package prompt

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/onboardly/voice-twin/backend/internal/model/session"
)

// HistoryWindow is how many recent turns the completion prompt sees.
const HistoryWindow = 5

// Builder assembles the completion prompt for one turn: system
// instructions, an optional humor-guidance block keyed off the latest
// utterance, and the rolling history terminated by a dangling "AI:"
// cue telling the model where to continue.
type Builder struct {
	systemPrompt string
	humor        HumorTemplates
}

// NewBuilder wires the static documents into a builder.
func NewBuilder(systemPrompt string, humor HumorTemplates) *Builder {
	return &Builder{systemPrompt: systemPrompt, humor: humor}
}

// LoadSystemPrompt reads the system instruction document.
func LoadSystemPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Build renders the prompt for the current transcript state. The
// latest user utterance drives humor-hint selection; rng only breaks
// ties inside the selected humor section.
func (b *Builder) Build(transcript *session.Transcript, latestUserText string, rng *rand.Rand) string {
	parts := []string{b.systemPrompt}

	if hint := SelectHumorHint(b.humor, latestUserText, rng); hint != "" {
		parts = append(parts, fmt.Sprintf("\n# HUMOR GUIDANCE\nWhen appropriate, respond with a tone like this:\n%q", hint))
	}

	parts = append(parts, "\nConversation so far:\n"+historyLines(transcript)+"\nAI:")

	return strings.Join(parts, "\n")
}

func historyLines(transcript *session.Transcript) string {
	var lines []string
	for _, turn := range transcript.Window(HistoryWindow) {
		lines = append(lines, "User: "+turn.UserText)
		if turn.AIText != "" {
			lines = append(lines, "AI: "+turn.AIText)
		}
	}
	return strings.Join(lines, "\n")
}
