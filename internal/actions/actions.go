// Package actions derives the suggested-action buttons offered after an
// assistant turn. Backend text carries informal marker phrases; each marker is
// a Tag and every Tag maps to its actions through one dispatch table.
package actions

import (
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

type Kind string

const (
	KindAcceptProposal      Kind = "accept-proposal"
	KindRequestChanges      Kind = "request-changes"
	KindChangeMethodology   Kind = "change-methodology"
	KindChangeRoles         Kind = "change-roles"
	KindChangeBudget        Kind = "change-budget"
	KindSelectMethodology   Kind = "select-methodology"
	KindSelectRole          Kind = "select-role"
	KindIncreaseContingency Kind = "increase-contingency"
	KindDecreaseContingency Kind = "decrease-contingency"
	KindSetContingency      Kind = "set-contingency"
	KindSelectDedication    Kind = "select-dedication"
	KindLoadEmployees       Kind = "load-employees"
	KindManualEntry         Kind = "manual-entry"
	KindStartProject        Kind = "start-project"
)

// Action is one suggested button. Value carries a name (methodology, role),
// Number a numeric payload (percentage, dedication factor).
type Action struct {
	Kind   Kind    `json:"kind"`
	Label  string  `json:"label"`
	Value  string  `json:"value,omitempty"`
	Number float64 `json:"number,omitempty"`
}

// Methodologies the backend knows how to plan.
var Methodologies = []string{"Scrum", "Kanban", "Scrumban", "XP", "Lean", "Crystal", "FDD", "DSDM", "SAFe", "DevOps"}

// Roles offered when the backend asks which role to change.
var Roles = []string{"PM", "Tech Lead", "Backend Dev", "Frontend Dev", "QA", "UX/UI", "DevOps", "ML Engineer", "Data Engineer", "Mobile Dev"}

var (
	contingencySteps = []float64{5, 10, 15, 20}
	dedicationSteps  = []float64{0.5, 1, 2}
)

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func proposalActions() []Action {
	return []Action{
		{Kind: KindAcceptProposal, Label: "Accept proposal"},
		{Kind: KindRequestChanges, Label: "Request changes"},
	}
}

func changeActions() []Action {
	return []Action{
		{Kind: KindChangeMethodology, Label: "Change methodology"},
		{Kind: KindChangeRoles, Label: "Change roles"},
		{Kind: KindChangeBudget, Label: "Change budget"},
	}
}

func methodologyActions() []Action {
	out := make([]Action, len(Methodologies))
	for i, m := range Methodologies {
		out[i] = Action{Kind: KindSelectMethodology, Label: m, Value: m}
	}
	return out
}

func roleActions() []Action {
	out := make([]Action, len(Roles))
	for i, r := range Roles {
		out[i] = Action{Kind: KindSelectRole, Label: r, Value: r}
	}
	return out
}

func contingencyActions() []Action {
	out := make([]Action, len(contingencySteps))
	for i, pct := range contingencySteps {
		out[i] = Action{Kind: KindSetContingency, Label: formatNumber(pct) + "%", Number: pct}
	}
	return out
}

func dedicationActions() []Action {
	out := make([]Action, len(dedicationSteps))
	for i, f := range dedicationSteps {
		out[i] = Action{Kind: KindSelectDedication, Label: "x" + formatNumber(f), Number: f}
	}
	return out
}

// Extract returns the actions suggested by one assistant text. It is pure:
// the same text always yields the same actions in the same order.
func Extract(text string) []Action {
	tags := Detect(text)
	set := make(map[Tag]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}

	var out []Action
	seen := make(map[string]bool)
	for _, r := range rules {
		if !set[r.tag] {
			continue
		}
		for _, a := range r.actions() {
			if a.Kind == KindRequestChanges && set[TagChangeOptions] {
				continue
			}
			key := string(a.Kind) + "\x00" + a.Value + "\x00" + formatNumber(a.Number)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

// Derive returns the actions for the latest assistant turn of a history.
func Derive(turns []conversation.Turn) []Action {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == conversation.RoleAssistant {
			return Extract(turns[i].Content)
		}
	}
	return nil
}

// has reports whether actions contains a given kind.
func has(actions []Action, kind Kind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Clean strips marker phrases for display. The stored turn is not changed.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isMarkerLine(trimmed) {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n ")
}
