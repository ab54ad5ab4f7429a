package prompt

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/onboardly/voice-twin/backend/internal/model/session"
)

func TestBuildWithoutHumor(t *testing.T) {
	transcript := &session.Transcript{}
	transcript.AppendUser("I live in Porto")
	transcript.AppendAI("Porto! What took you there?")

	b := NewBuilder("You are Alex.", nil)
	got := b.Build(transcript, "I live in Porto", rand.New(rand.NewSource(1)))

	if !strings.HasPrefix(got, "You are Alex.") {
		t.Errorf("prompt must start with the system prompt:\n%s", got)
	}
	if strings.Contains(got, "# HUMOR GUIDANCE") {
		t.Errorf("no humor hint expected:\n%s", got)
	}
	if !strings.Contains(got, "User: I live in Porto") {
		t.Errorf("history missing user line:\n%s", got)
	}
	if !strings.Contains(got, "AI: Porto! What took you there?") {
		t.Errorf("history missing assistant line:\n%s", got)
	}
	if !strings.HasSuffix(got, "\nAI:") {
		t.Errorf("prompt must end with the AI cue:\n%s", got)
	}
}

func TestBuildIncludesHumorGuidance(t *testing.T) {
	humor := HumorTemplates{SectionPuns: {"Baking jokes? I knead to stop."}}
	transcript := &session.Transcript{}
	transcript.AppendUser("I got into baking")

	b := NewBuilder("You are Alex.", humor)
	got := b.Build(transcript, "I got into baking", rand.New(rand.NewSource(1)))

	if !strings.Contains(got, "# HUMOR GUIDANCE") {
		t.Errorf("humor block missing:\n%s", got)
	}
	if !strings.Contains(got, `"Baking jokes? I knead to stop."`) {
		t.Errorf("selected example missing:\n%s", got)
	}
}

func TestBuildWindowsHistory(t *testing.T) {
	transcript := &session.Transcript{}
	for i := 0; i < HistoryWindow+3; i++ {
		transcript.AppendUser("utterance " + strings.Repeat("x", i+1))
		transcript.AppendAI("reply " + strings.Repeat("y", i+1))
	}

	b := NewBuilder("You are Alex.", nil)
	got := b.Build(transcript, "anything", rand.New(rand.NewSource(1)))

	if strings.Contains(got, "User: utterance x\n") {
		t.Errorf("oldest turn should have rolled out of the window:\n%s", got)
	}
	if !strings.Contains(got, "utterance "+strings.Repeat("x", HistoryWindow+3)) {
		t.Errorf("newest turn missing:\n%s", got)
	}
}
