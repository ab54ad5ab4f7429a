package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Question is one record of the question bank. Personalized questions
// carry a trigger keyword; when the keyword shows up in recent user
// speech the question may override the generated reply.
type Question struct {
	Type     string `json:"type"`
	Trigger  string `json:"trigger"`
	Question string `json:"question"`
}

// TypePersonalized marks questions eligible for the reply override.
const TypePersonalized = "personalized"

// QuestionBank holds the records loaded at startup.
type QuestionBank struct {
	questions []Question
}

// LoadQuestionBank parses the question bank document.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	return &QuestionBank{questions: questions}, nil
}

// NewQuestionBank builds a bank from in-memory records.
func NewQuestionBank(questions []Question) *QuestionBank {
	return &QuestionBank{questions: append([]Question(nil), questions...)}
}

// Match returns the first personalized question whose trigger appears
// in the recent user utterances and which is absent from the asked
// set. Matching is case-folded substring search over the joined text.
func (b *QuestionBank) Match(recentUserTexts []string, asked map[string]bool) (Question, bool) {
	recent := strings.ToLower(strings.Join(recentUserTexts, " "))

	for _, q := range b.questions {
		if q.Type != TypePersonalized {
			continue
		}
		if asked[q.Question] {
			continue
		}
		if strings.Contains(recent, strings.ToLower(q.Trigger)) {
			return q, true
		}
	}
	return Question{}, false
}

// Len reports the number of loaded records.
func (b *QuestionBank) Len() int {
	return len(b.questions)
}
