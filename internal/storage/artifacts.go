package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onboardly/voice-twin/backend/internal/model/persona"
)

// ErrNoPersona is returned when no persona artifact has been written
// yet.
var ErrNoPersona = fmt.Errorf("no persona saved yet")

// ArtifactStore writes session transcripts and persona documents to
// disk. File names embed the session ID, which sorts chronologically,
// so the newest artifact is the lexicographically largest file.
type ArtifactStore struct {
	transcriptDir string
	personaDir    string
}

// NewArtifactStore creates the output directories if needed.
func NewArtifactStore(transcriptDir, personaDir string) (*ArtifactStore, error) {
	for _, dir := range []string{transcriptDir, personaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact dir %s: %w", dir, err)
		}
	}
	return &ArtifactStore{transcriptDir: transcriptDir, personaDir: personaDir}, nil
}

// SaveTranscript writes the rendered transcript and returns its path.
func (s *ArtifactStore) SaveTranscript(sessionID, transcript string) (string, error) {
	path := filepath.Join(s.transcriptDir, fmt.Sprintf("transcript_%s.txt", sessionID))
	if err := os.WriteFile(path, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// SavePersona writes the persona document as indented JSON and returns
// its path.
func (s *ArtifactStore) SavePersona(sessionID string, doc *persona.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal persona: %w", err)
	}

	path := filepath.Join(s.personaDir, fmt.Sprintf("persona_%s.json", sessionID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write persona: %w", err)
	}
	return path, nil
}

// LatestPersona loads the most recently written persona document.
func (s *ArtifactStore) LatestPersona() (*persona.Document, string, error) {
	entries, err := os.ReadDir(s.personaDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read persona dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "persona_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, "", ErrNoPersona
	}
	sort.Strings(names)

	path := filepath.Join(s.personaDir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read persona file: %w", err)
	}

	var doc persona.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("failed to parse persona file %s: %w", path, err)
	}
	return &doc, path, nil
}
