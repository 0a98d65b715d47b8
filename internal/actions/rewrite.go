package actions

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

var (
	methodologyLineRe = regexp.MustCompile(`(?im)^([^\w\n]*(?:methodology|metodolog[ií]a)\s*:\s*)(.+)$`)
	teamLineRe        = regexp.MustCompile(`(?im)^([^\w\n]*(?:team|equipo)\s*:\s*)(.+)$`)
	teamItemRe        = regexp.MustCompile(`^(.*?)\s+(x\s*[\d.,]+)$`)
	roleTargetRe      = regexp.MustCompile(`(?i)replace\s*:\s*([^\n,;]+)`)
)

// IsFullProposal reports whether text is a complete proposal carrying a
// labeled methodology field.
func IsFullProposal(text string) bool {
	for _, tag := range Detect(text) {
		if tag == TagProposal {
			return methodologyLineRe.MatchString(text)
		}
	}
	return false
}

// LatestProposal returns the index of the most recent full-proposal assistant
// turn, or -1.
func LatestProposal(turns []conversation.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == conversation.RoleAssistant && IsFullProposal(turns[i].Content) {
			return i
		}
	}
	return -1
}

// LatestRoleSelection returns the index of the most recent assistant turn that
// offered role options, or -1.
func LatestRoleSelection(turns []conversation.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != conversation.RoleAssistant {
			continue
		}
		if strings.Contains(strings.ToLower(turns[i].Content), "roles options") {
			return i
		}
	}
	return -1
}

// RoleTarget returns the role a roles-options turn asks to replace, written
// as "replace: <Role>", or "".
func RoleTarget(text string) string {
	m := roleTargetRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(m[1], ". "))
}

// ReplaceMethodology rewrites the labeled methodology field of a proposal.
func ReplaceMethodology(text, name string) (string, bool) {
	loc := methodologyLineRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[4]] + name + text[loc[5]:], true
}

// ReplaceRole swaps target for role in the team field of a proposal, keeping
// its headcount. With no target, or when target is not in the team, role is
// added with headcount 1 unless it is already there.
func ReplaceRole(text, role, target string) (string, bool) {
	loc := teamLineRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}

	items := strings.Split(text[loc[4]:loc[5]], ",")
	replaced := false
	present := false
	for i, raw := range items {
		item := strings.TrimSpace(raw)
		name, count := item, ""
		if m := teamItemRe.FindStringSubmatch(item); m != nil {
			name, count = m[1], m[2]
		}
		if strings.EqualFold(name, role) {
			present = true
		}
		if !replaced && target != "" && strings.EqualFold(name, target) {
			if count != "" {
				items[i] = role + " " + count
			} else {
				items[i] = role
			}
			replaced = true
			continue
		}
		items[i] = item
	}
	if !replaced && !present {
		items = append(items, role+" x1")
	}

	return text[:loc[4]] + strings.Join(items, ", ") + text[loc[5]:], true
}
