package prompt

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// HumorTemplates maps a humor section name to its example phrases.
// Sections with no examples are valid; a selected empty section just
// contributes no hint.
type HumorTemplates map[string][]string

var humorHeaderRe = regexp.MustCompile(`\d+\.\s*(.+)`)

// ParseHumorTemplates splits a sectioned humor document into named
// example lists. Section headers look like "# 1. Playful Teasing";
// header lines holding a long dash or the word RULES are commentary
// and are skipped. Quoted lines under a header are its examples.
func ParseHumorTemplates(content string) HumorTemplates {
	sections := make(HumorTemplates)
	current := ""

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") {
			if strings.Contains(line, "—") || strings.Contains(line, "RULES") {
				continue
			}
			if m := humorHeaderRe.FindStringSubmatch(line); m != nil {
				current = strings.TrimSpace(m[1])
				sections[current] = []string{}
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if current != "" && strings.HasPrefix(trimmed, `"`) {
			sections[current] = append(sections[current], strings.Trim(trimmed, `"`))
		}
	}

	return sections
}

// LoadHumorTemplates reads and parses the humor template document.
func LoadHumorTemplates(path string) (HumorTemplates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read humor templates: %w", err)
	}
	return ParseHumorTemplates(string(data)), nil
}
