// Package extract distills a finished transcript into a persona
// document via the completion client.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/onboardly/voice-twin/backend/internal/llm"
	"github.com/onboardly/voice-twin/backend/internal/model/persona"
)

// Extractor asks the model for a schema-conforming persona and repairs
// sloppy output. Build never fails past its own boundary: parse and
// completion errors degrade to an error-record persona.
type Extractor struct {
	client llm.Client
}

// New wires the completion client.
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Build extracts the persona for one transcript.
func (e *Extractor) Build(ctx context.Context, transcript string) *persona.Document {
	raw, err := e.client.Complete(ctx, buildPrompt(transcript))
	if err != nil {
		log.Printf("[persona] completion failed: %v", err)
		return persona.ErrorRecord("Could not generate persona", err.Error())
	}

	doc, err := Parse(raw)
	if err != nil {
		log.Printf("[persona] unparsable output: %v", err)
		return persona.ErrorRecord("Could not parse persona", raw)
	}
	return doc
}

// Parse runs the two-stage decode: strict parse of the whole text,
// then strict parse of the span between the first '{' and the last
// '}'. Both stages are exact JSON decodes; only the span selection is
// a repair heuristic.
func Parse(raw string) (*persona.Document, error) {
	var doc persona.Document
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		return &doc, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object span in output")
	}

	doc = persona.Document{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
		return nil, fmt.Errorf("repair parse failed: %w", err)
	}
	return &doc, nil
}

func buildPrompt(transcript string) string {
	return fmt.Sprintf(`Based on the following conversation, extract a deep user persona in JSON format.
Use this schema:
%s

Rules:
- Only use info from the transcript.
- Be concise but insightful.
- Infer values, dreams, struggles from tone and content.

Transcript:
%s

Output only valid JSON:`, persona.SchemaJSON, transcript)
}
