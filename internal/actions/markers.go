package actions

import "strings"

// Tag is one marker the backend embeds in assistant text.
type Tag int

const (
	TagProposal Tag = iota
	TagChangeOptions
	TagAcceptAfterChanges
	TagMethodologyOptions
	TagRolesOptions
	TagBudgetOptions
	TagContingencyButtons
	TagDedicationOptions
	TagLoadEmployees
	TagManualTemplate
	TagStartProject
)

var tagNames = map[Tag]string{
	TagProposal:           "proposal",
	TagChangeOptions:      "change-options",
	TagAcceptAfterChanges: "accept-after-changes",
	TagMethodologyOptions: "methodology-options",
	TagRolesOptions:       "roles-options",
	TagBudgetOptions:      "budget-options",
	TagContingencyButtons: "contingency-buttons",
	TagDedicationOptions:  "dedication-options",
	TagLoadEmployees:      "load-employees",
	TagManualTemplate:     "manual-template",
	TagStartProject:       "start-project",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}

var (
	proposalWords  = []string{"methodology", "team", "phases", "budget"}
	welcomeMarkers = []string{"welcome", "how can i help"}

	approvedMarker = "proposal approved"

	// The backend asks these questions before starting; they share the
	// trigger phrase but are not a confirmation.
	startQuestions = []string{
		"do you want to start now?",
		"do you want to start the project?",
		"shall we start the project?",
		"want me to start the project?",
	}
)

// sentinels are standalone marker phrases that carry no content of their own.
var sentinels = []string{
	"change options",
	"accept after changes",
	"methodology options",
	"roles options",
	"budget options",
	"contingency buttons",
	"dedication options",
}

type rule struct {
	tag     Tag
	detect  func(lower string) bool
	actions func() []Action
}

func anyOf(markers ...string) func(string) bool {
	return func(lower string) bool {
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
		return false
	}
}

func allOf(words ...string) func(string) bool {
	return func(lower string) bool {
		for _, w := range words {
			if !strings.Contains(lower, w) {
				return false
			}
		}
		return true
	}
}

func one(a Action) func() []Action {
	return func() []Action { return []Action{a} }
}

// rules is evaluated in order; the order is the order buttons are shown.
var rules = []rule{
	{
		tag: TagProposal,
		detect: func(lower string) bool {
			return allOf(proposalWords...)(lower) && !anyOf(welcomeMarkers...)(lower)
		},
		actions: proposalActions,
	},
	{tag: TagChangeOptions, detect: anyOf("change options"), actions: changeActions},
	{tag: TagAcceptAfterChanges, detect: anyOf("accept after changes"), actions: one(Action{Kind: KindAcceptProposal, Label: "Accept proposal"})},
	{tag: TagMethodologyOptions, detect: anyOf("methodology options"), actions: methodologyActions},
	{tag: TagRolesOptions, detect: anyOf("roles options"), actions: roleActions},
	{
		tag:    TagBudgetOptions,
		detect: anyOf("budget options"),
		actions: func() []Action {
			return []Action{
				{Kind: KindIncreaseContingency, Label: "Increase contingency"},
				{Kind: KindDecreaseContingency, Label: "Decrease contingency"},
			}
		},
	},
	{tag: TagContingencyButtons, detect: anyOf("contingency buttons"), actions: contingencyActions},
	{tag: TagDedicationOptions, detect: anyOf("dedication options"), actions: dedicationActions},
	{tag: TagLoadEmployees, detect: anyOf("load employees", "saved employees"), actions: one(Action{Kind: KindLoadEmployees, Label: "Load employees"})},
	{
		tag: TagManualTemplate,
		detect: func(lower string) bool {
			return anyOf("manual template", "enter the team manually")(lower) && !strings.Contains(lower, approvedMarker)
		},
		actions: one(Action{Kind: KindManualEntry, Label: "Enter manually"}),
	},
	{
		tag: TagStartProject,
		detect: func(lower string) bool {
			return strings.Contains(lower, "start the project") && !anyOf(startQuestions...)(lower)
		},
		actions: one(Action{Kind: KindStartProject, Label: "Start project"}),
	},
}

// Detect returns the tags present in text, in rule order.
func Detect(text string) []Tag {
	lower := strings.ToLower(text)
	var tags []Tag
	for _, r := range rules {
		if r.detect(lower) {
			tags = append(tags, r.tag)
		}
	}
	return tags
}

// isMarkerLine reports whether a line is nothing but a sentinel, optionally
// wrapped in brackets.
func isMarkerLine(line string) bool {
	lower := strings.ToLower(strings.Trim(line, "[]()<>:*_ "))
	for _, s := range sentinels {
		if lower == s {
			return true
		}
	}
	return false
}
