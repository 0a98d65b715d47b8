package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

// Phase is one project phase named in assistant text.
type Phase struct {
	Name  string `json:"name"`
	Weeks int    `json:"weeks,omitempty"`
}

var (
	phasesLineRe = regexp.MustCompile(`(?im)^[^\w\n]*(?:phases|fases)\s*:\s*(.+)$`)
	phaseItemRe  = regexp.MustCompile(`(?i)^(.*?)\s*\((\d+)\s*(?:weeks?|semanas?|w)\)\s*$`)
	phaseSplitRe = regexp.MustCompile(`\s*(?:→|->)\s*`)
)

// ExtractPhases parses the first "Phases:" line of text, e.g.
// "Discovery (2 weeks) → Build (6 weeks)".
func ExtractPhases(text string) []Phase {
	m := phasesLineRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var phases []Phase
	for _, item := range phaseSplitRe.Split(strings.TrimSpace(m[1]), -1) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if pm := phaseItemRe.FindStringSubmatch(item); pm != nil {
			weeks, _ := strconv.Atoi(pm[2])
			phases = append(phases, Phase{Name: strings.TrimSpace(pm[1]), Weeks: weeks})
			continue
		}
		phases = append(phases, Phase{Name: item})
	}
	return phases
}

// CurrentPhase returns the first phase named in the most recent assistant turn
// that lists phases, or "" when none does.
func CurrentPhase(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != RoleAssistant {
			continue
		}
		if phases := ExtractPhases(turns[i].Content); len(phases) > 0 {
			return phases[0].Name
		}
	}
	return ""
}
