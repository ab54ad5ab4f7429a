package prompt

import (
	"math/rand"
	"testing"
)

const humorDoc = `# HUMOR TEMPLATES — tone examples
# RULES: quoted lines are examples.

# 1. Playful Teasing
"Oh, so coffee is a personality trait now?"
"Snoozing five alarms is basically cardio, right?"

# 2. Dry / Sarcastic
"Minimalism. Because owning two forks is a lifestyle."

# 3. Absurd / Whimsical
"My theory is that socks elope."

# 4. Puns & Wordplay
"Baking jokes? I knead to stop."

# 5. Meta / AI Self-Awareness
"Deep question. Give me a nanosecond."
`

func TestParseHumorTemplates(t *testing.T) {
	templates := ParseHumorTemplates(humorDoc)

	if len(templates) != 5 {
		t.Fatalf("got %d sections, want 5: %v", len(templates), templates)
	}
	if got := len(templates[SectionPlayfulTeasing]); got != 2 {
		t.Errorf("Playful Teasing has %d examples, want 2", got)
	}
	if got := templates[SectionDrySarcastic][0]; got != "Minimalism. Because owning two forks is a lifestyle." {
		t.Errorf("unexpected example: %q", got)
	}
	if _, ok := templates["HUMOR TEMPLATES"]; ok {
		t.Error("commentary header leaked into sections")
	}
}

func TestSelectHumorHintRouting(t *testing.T) {
	templates := ParseHumorTemplates(humorDoc)

	cases := []struct {
		name     string
		userText string
		section  string
	}{
		{"morning gripe", "honestly I hate mornings so much", SectionPlayfulTeasing},
		{"minimalism", "I'm going minimalist this year", SectionDrySarcastic},
		{"whimsy", "that's so silly but I love it", SectionAbsurd},
		{"hobby pun", "I picked up baking during lockdown", SectionPuns},
		{"long question", "do you ever wonder what really makes a person who they are deep down?", SectionMeta},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hint := SelectHumorHint(templates, tc.userText, rand.New(rand.NewSource(1)))
			if hint == "" {
				t.Fatal("no hint selected")
			}
			found := false
			for _, example := range templates[tc.section] {
				if example == hint {
					found = true
				}
			}
			if !found {
				t.Errorf("hint %q not from section %s", hint, tc.section)
			}
		})
	}
}

func TestSelectHumorHintNoMatch(t *testing.T) {
	templates := ParseHumorTemplates(humorDoc)

	if hint := SelectHumorHint(templates, "I work as an accountant", rand.New(rand.NewSource(1))); hint != "" {
		t.Errorf("hint = %q, want empty", hint)
	}
}

func TestSelectHumorHintFunnyFallbackIsDeterministic(t *testing.T) {
	templates := ParseHumorTemplates(humorDoc)

	first := SelectHumorHint(templates, "lol no pressure", rand.New(rand.NewSource(7)))
	second := SelectHumorHint(templates, "lol no pressure", rand.New(rand.NewSource(7)))

	if first == "" {
		t.Fatal("funny fallback selected nothing")
	}
	if first != second {
		t.Errorf("same seed gave %q then %q", first, second)
	}
}

func TestSelectHumorHintEmptySection(t *testing.T) {
	templates := HumorTemplates{SectionPuns: {}}

	if hint := SelectHumorHint(templates, "I love hiking", rand.New(rand.NewSource(1))); hint != "" {
		t.Errorf("hint = %q, want empty for empty section", hint)
	}
}
