package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/onboardly/voice-twin/backend/internal/model/persona"
)

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	dir := t.TempDir()
	store, err := NewArtifactStore(filepath.Join(dir, "transcripts"), filepath.Join(dir, "personas"))
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	return store
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	store := newTestStore(t)

	content := "User: hi\nAI: hello\nUser: that's all"
	path, err := store.SaveTranscript("20260830_101500", content)
	if err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	if filepath.Base(path) != "transcript_20260830_101500.txt" {
		t.Errorf("unexpected transcript filename: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read transcript back: %v", err)
	}
	if string(data) != content {
		t.Errorf("round trip changed content: %q != %q", data, content)
	}
}

func TestSavePersonaAndLoadLatest(t *testing.T) {
	store := newTestStore(t)

	older := &persona.Document{
		Name:    "Ada",
		Values:  []string{"curiosity"},
		Goals:   []string{"ship the prototype"},
		Hobbies: []string{"climbing"},
	}
	newer := &persona.Document{
		Name:    "Grace",
		Values:  []string{"precision"},
		Goals:   []string{},
		Hobbies: []string{"sailing"},
	}

	if _, err := store.SavePersona("20260829_090000", older); err != nil {
		t.Fatalf("SavePersona failed: %v", err)
	}
	if _, err := store.SavePersona("20260830_090000", newer); err != nil {
		t.Fatalf("SavePersona failed: %v", err)
	}

	loaded, path, err := store.LatestPersona()
	if err != nil {
		t.Fatalf("LatestPersona failed: %v", err)
	}
	if filepath.Base(path) != "persona_20260830_090000.json" {
		t.Errorf("latest path = %s, want the newer session", filepath.Base(path))
	}
	if !reflect.DeepEqual(loaded, newer) {
		t.Errorf("loaded persona = %+v, want %+v", loaded, newer)
	}
}

func TestLatestPersonaEmptyDir(t *testing.T) {
	store := newTestStore(t)

	if _, _, err := store.LatestPersona(); !errors.Is(err, ErrNoPersona) {
		t.Fatalf("error = %v, want ErrNoPersona", err)
	}
}
