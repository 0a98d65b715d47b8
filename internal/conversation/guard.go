package conversation

import "strings"

var (
	rosterLoadedMarkers = []string{"employees loaded", "roster loaded", "loaded your employees"}
	startProjectMarker  = "start the project"

	rosterRequestMarkers = []string{
		"send me the roster",
		"employees as json",
		"roster as json",
		"structured employee data",
	}
)

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether an assistant text is the authoritative final
// proposal: the roster was loaded and the project is being started.
func IsTerminal(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, rosterLoadedMarkers) && strings.Contains(lower, startProjectMarker)
}

// IsRosterRequest reports whether an assistant text is the backend asking for
// the employee roster as structured data. Such turns are never displayed.
func IsRosterRequest(text string) bool {
	return containsAny(strings.ToLower(text), rosterRequestMarkers)
}

// TruncateAtTerminal returns turns up to and including the first terminal
// assistant turn. The input is not modified.
func TruncateAtTerminal(turns []Turn) []Turn {
	for i, t := range turns {
		if t.Role == RoleAssistant && IsTerminal(t.Content) {
			return append([]Turn(nil), turns[:i+1]...)
		}
	}
	return append([]Turn(nil), turns...)
}
