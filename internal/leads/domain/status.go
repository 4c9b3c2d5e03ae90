package domain

const (
	StatusNew        = "new"
	StatusQualified  = "qualified"
	StatusDrafted    = "drafted"
	StatusApproved   = "approved"
	StatusSent       = "sent"
	StatusInProgress = "in_progress"
	StatusContacted  = "contacted"
	StatusIgnored    = "ignored"
)

var knownStatuses = map[string]struct{}{
	StatusNew:        {},
	StatusQualified:  {},
	StatusDrafted:    {},
	StatusApproved:   {},
	StatusSent:       {},
	StatusInProgress: {},
	StatusContacted:  {},
	StatusIgnored:    {},
}

// IsKnownStatus reports whether the value is a member of the closed status set.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

// terminalStatuses are statuses from which no guarded transition may leave.
// Raw operator overrides are still permitted.
var terminalStatuses = map[string]bool{
	StatusSent:    true,
	StatusIgnored: true,
}

// IsTerminalStatus returns true if the status is terminal.
func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// guardedTransitions is the closed set of transitions the pipeline may take
// without an operator override.
var guardedTransitions = map[string]map[string]bool{
	StatusNew: {
		StatusQualified: true,
	},
	StatusQualified: {
		StatusDrafted: true,
	},
	StatusDrafted: {
		StatusApproved: true,
	},
	StatusApproved: {
		StatusSent:    true,
		StatusDrafted: true,
	},
}

// CanTransition reports whether from→to is a valid guarded transition.
// Any non-terminal status may move to ignored.
func CanTransition(from, to string) bool {
	if to == StatusIgnored {
		return !IsTerminalStatus(from)
	}
	return guardedTransitions[from][to]
}

// ValidateTransition returns an InvalidTransition error naming both statuses
// when from→to is not a valid guarded transition, nil otherwise. Raw operator
// overrides bypass this check entirely; see Service.OverrideStatus.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return InvalidTransition(from, to)
	}
	return nil
}
