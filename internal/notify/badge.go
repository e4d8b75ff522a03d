package notify

import "strings"

// Status badges shown in the thread's Status field. The emoji wrapping is
// part of the rendered text; statusWord extracts the bare word for the
// stickiness check.
const (
	StatusNew        = ":weewoo: new :weewoo:"
	StatusOpened     = ":eyes: opened :eyes:"
	StatusReopened   = ":repeat: reopened :repeat:"
	StatusAssigned   = ":technologist: assigned :technologist:"
	StatusReviewing  = ":mag: reviewing :mag:"
	StatusApproved   = ":thumbsup: approved :thumbsup:"
	StatusUnapproved = ":thumbsdown: unapproved :thumbsdown:"
	StatusMerged     = ":rocket: merged :rocket:"
	StatusClosed     = ":headstone: closed :headstone:"
)

const statusFieldHeader = "*Status:*\n"

// noUsers marks an empty assignee or reviewer list in rendered text and in
// message metadata.
const noUsers = "None"

// statusForAction maps a webhook action to the status badge it implies.
// The second return is false for actions that do not change status.
func statusForAction(action string) (string, bool) {
	switch action {
	case "open":
		return StatusOpened, true
	case "reopen":
		return StatusReopened, true
	case "close":
		return StatusClosed, true
	case "approved", "approval":
		return StatusApproved, true
	case "unapproved", "unapproval":
		return StatusUnapproved, true
	case "merge":
		return StatusMerged, true
	}
	return "", false
}

// statusForAssignment derives the badge after an assignee or reviewer change
func statusForAssignment(updateType UpdateType, reviewers string) (string, bool) {
	switch updateType {
	case UpdateAssigneeChange:
		if reviewers == noUsers {
			return StatusAssigned, true
		}
		return StatusReviewing, true
	case UpdateReviewerChange:
		return StatusReviewing, true
	}
	return "", false
}

// statusAfterVacancy derives the badge after the last assignee or reviewer
// was removed. Terminal and approval states are sticky: the vacancy must not
// regress them, so the field is left untouched.
func statusAfterVacancy(currentField, assignees, reviewers string, updateType UpdateType) (string, bool) {
	switch statusWord(currentField) {
	case "approved", "unapproved", "merged", "closed":
		return "", false
	}

	if updateType == UpdateNoAssignees && reviewers != noUsers {
		return StatusReviewing, true
	}
	if updateType == UpdateNoReviewers && assignees != noUsers {
		return StatusAssigned, true
	}
	return StatusOpened, true
}

// statusForNewMR derives the badge for a freshly posted thread
func statusForNewMR(assignees, reviewers string) string {
	if reviewers != noUsers {
		return StatusReviewing
	}
	if assignees != noUsers {
		return StatusAssigned
	}
	return StatusNew
}

// statusWord extracts the descriptive word from a rendered Status field,
// e.g. "*Status:*\n:mag: reviewing :mag:" -> "reviewing".
func statusWord(fieldText string) string {
	badge := strings.TrimPrefix(fieldText, statusFieldHeader)
	parts := strings.Fields(badge)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func statusField(badge string) string {
	return statusFieldHeader + badge
}
