package prompt

import (
	"math/rand"
	"sort"
	"strings"
)

// Humor section names as they appear in the template document.
const (
	SectionPlayfulTeasing = "Playful Teasing"
	SectionDrySarcastic   = "Dry / Sarcastic"
	SectionAbsurd         = "Absurd / Whimsical"
	SectionPuns           = "Puns & Wordplay"
	SectionMeta           = "Meta / AI Self-Awareness"
)

type humorRule struct {
	cues    []string
	section string
}

// humorRules route the latest utterance to a humor section. Order
// matters: the first matching rule wins.
var humorRules = []humorRule{
	{cues: []string{"hate mornings", "can't wake up", "coffee first", "not a morning person"}, section: SectionPlayfulTeasing},
	{cues: []string{"simple life", "minimalist", "declutter", "less is more"}, section: SectionDrySarcastic},
	{cues: []string{"absurd", "silly", "doesn't make sense", "just for fun"}, section: SectionAbsurd},
	{cues: []string{"baking", "hiking", "photography", "guitar"}, section: SectionPuns},
}

// funnyCues trigger the fallback rule: when the user is already joking,
// respond in kind with a pick across every section.
var funnyCues = []string{"just kidding", "lol", "only half serious", "tongue in cheek"}

// SelectHumorHint chooses an example phrase for the latest user
// utterance, or "" when no rule matches or the winning section holds
// no examples. The random source only decides which example within
// the selected section; the section itself is a pure function of the
// utterance.
func SelectHumorHint(templates HumorTemplates, userText string, rng *rand.Rand) string {
	lowered := strings.ToLower(userText)

	for _, rule := range humorRules {
		if containsAny(lowered, rule.cues) {
			return pick(templates[rule.section], rng)
		}
	}

	// Long question-shaped utterances get the meta treatment.
	if strings.Contains(lowered, "?") && len(lowered) > 50 {
		return pick(templates[SectionMeta], rng)
	}

	if containsAny(lowered, funnyCues) {
		// Walk sections in sorted order so a seeded source yields a
		// stable choice despite map iteration order.
		names := make([]string, 0, len(templates))
		for name := range templates {
			names = append(names, name)
		}
		sort.Strings(names)

		var all []string
		for _, name := range names {
			all = append(all, templates[name]...)
		}
		return pick(all, rng)
	}

	return ""
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

func pick(examples []string, rng *rand.Rand) string {
	if len(examples) == 0 {
		return ""
	}
	return examples[rng.Intn(len(examples))]
}
