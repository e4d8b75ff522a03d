package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

// assignmentDiff captures who entered and who left a user list between the
// stored snapshot and the incoming event, as rendered mention strings.
type assignmentDiff struct {
	assigned   []string
	unassigned []string
}

// diffAssignments compares two comma-joined mention strings. The initiator's
// own mention is replaced with "themselves" so self-service changes read
// naturally.
func diffAssignments(oldUsers, newUsers, initiatorMention string) assignmentDiff {
	return assignmentDiff{
		assigned:   subtractUsers(newUsers, oldUsers, initiatorMention),
		unassigned: subtractUsers(oldUsers, newUsers, initiatorMention),
	}
}

func subtractUsers(from, exclude, initiatorMention string) []string {
	excluded := strings.Split(exclude, ",")
	var users []string
	for _, user := range strings.Split(from, ",") {
		if user == noUsers || user == "" || containsUser(excluded, user) {
			continue
		}
		if user == initiatorMention {
			user = "themselves"
		}
		users = append(users, user)
	}
	return users
}

func containsUser(users []string, user string) bool {
	for _, u := range users {
		if u == user {
			return true
		}
	}
	return false
}

// actionPhrase builds the verb phrase of an update reply, e.g.
// "Jdoe has <phrase> this merge request".
func actionPhrase(ctx context.Context, event *gitlab.MergeRequestEvent, thread *Thread, mentions *Mentions) string {
	switch event.ObjectAttributes.Action {
	case "open":
		return "opened"
	case "close":
		return "closed"
	case "approved", "approval":
		return "approved"
	case "unapproved", "unapproval":
		return "unapproved"
	case "merge":
		return "merged"
	case "reopen":
		return "reopened"
	case "update":
		return updatePhrase(ctx, event, thread, mentions)
	}
	return "Invalid"
}

func updatePhrase(ctx context.Context, event *gitlab.MergeRequestEvent, thread *Thread, mentions *Mentions) string {
	initiator := mentions.Mention(ctx, event.User.Username)
	assigneeDiff := diffAssignments(thread.OldAssignees(), thread.Assignees(), initiator)
	reviewerDiff := diffAssignments(thread.OldReviewers(), thread.Reviewers(), initiator)

	switch thread.UpdateType() {
	case UpdateTargetChange:
		return "changed the target branch of"

	case UpdateNewCommit:
		commit := event.ObjectAttributes.LastCommit
		return fmt.Sprintf("added a new commit <%s|%s> to", commit.URL, shortCommitID(commit.ID))

	case UpdateAssigneeChange:
		assigned := strings.Join(assigneeDiff.assigned, ",")
		unassigned := strings.Join(assigneeDiff.unassigned, ",")
		switch {
		case assigned != "" && unassigned != "":
			return "assigned " + assigned + " and unassigned " + unassigned + " from"
		case assigned != "":
			return "assigned " + assigned + " to"
		case unassigned != "":
			return "unassigned " + unassigned + " from"
		}

	case UpdateReviewerChange:
		asked := strings.Join(reviewerDiff.assigned, ",")
		unassigned := strings.Join(reviewerDiff.unassigned, ",")
		switch {
		case asked != "" && unassigned != "":
			return "asked " + asked + " for a code review and unassigned " + unassigned + " from reviewers of"
		case asked != "":
			return "asked " + asked + " for a code review of"
		case unassigned != "":
			return "unassigned " + unassigned + " from reviewers of"
		}

	case UpdateNoAssignees:
		return "unassigned " + strings.Join(assigneeDiff.unassigned, ",") + " from"

	case UpdateNoReviewers:
		return "unassigned " + strings.Join(reviewerDiff.unassigned, ",") + " from reviewers of"
	}

	return noUsers
}

func shortCommitID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
