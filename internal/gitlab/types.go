package gitlab

import (
	"strings"
	"time"
)

const mergeRequestKind = "merge_request"

var draftMarkers = []string{"WIP", "Draft"}

// User represents a GitLab user record as it appears in webhook payloads
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Project represents the project a merge request belongs to
type Project struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"web_url"`
}

// Commit represents the last commit attached to a merge request event
type Commit struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StringChange holds the previous and current value of a changed string field
type StringChange struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// UserListChange holds the previous and current value of a changed user list
type UserListChange struct {
	Previous []User `json:"previous"`
	Current  []User `json:"current"`
}

// Changes holds the subset of the webhook changes map the notifier cares about
type Changes struct {
	Title     *StringChange   `json:"title,omitempty"`
	Assignees *UserListChange `json:"assignees,omitempty"`
	Reviewers *UserListChange `json:"reviewers,omitempty"`
}

// ObjectAttributes holds the merge request attributes of a webhook event
type ObjectAttributes struct {
	ID           int     `json:"id"`
	IID          int     `json:"iid"`
	Title        string  `json:"title"`
	Action       string  `json:"action"`
	State        string  `json:"state"`
	SourceBranch string  `json:"source_branch"`
	TargetBranch string  `json:"target_branch"`
	URL          string  `json:"url"`
	UpdatedAt    string  `json:"updated_at"`
	OldRev       string  `json:"oldrev,omitempty"`
	LastCommit   Commit  `json:"last_commit"`
	Target       Project `json:"target"`
}

// MergeRequestEvent represents a GitLab merge request webhook payload
type MergeRequestEvent struct {
	ObjectKind       string           `json:"object_kind"`
	User             User             `json:"user"`
	Project          Project          `json:"project"`
	ObjectAttributes ObjectAttributes `json:"object_attributes"`
	Changes          *Changes         `json:"changes,omitempty"`
	Assignees        []User           `json:"assignees"`
	Reviewers        []User           `json:"reviewers"`
}

// IsMergeRequest reports whether the event carries a merge request payload
func (e *MergeRequestEvent) IsMergeRequest() bool {
	return e.ObjectKind == mergeRequestKind
}

// IsDraft reports whether a merge request title marks it as a draft
func IsDraft(title string) bool {
	for _, marker := range draftMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

// IsReadyTransition reports whether this event is a draft being marked ready:
// an update whose title changed from a draft title to a non-draft one.
func (e *MergeRequestEvent) IsReadyTransition() bool {
	if e.ObjectAttributes.Action != "update" || e.Changes == nil || e.Changes.Title == nil {
		return false
	}
	return IsDraft(e.Changes.Title.Previous) && !IsDraft(e.Changes.Title.Current)
}

// HasNewCommit reports whether the event signals a push to the source branch.
// GitLab includes oldrev only when the MR head moved.
func (e *MergeRequestEvent) HasNewCommit() bool {
	return e.ObjectAttributes.OldRev != ""
}

// updatedAtLayouts covers the two timestamp formats GitLab emits in
// merge request webhooks, depending on version and endpoint.
var updatedAtLayouts = []string{
	"2006-01-02 15:04:05 MST",
	time.RFC3339,
}

// UpdatedAtTime parses the event's updated_at timestamp
func (e *MergeRequestEvent) UpdatedAtTime() (time.Time, bool) {
	for _, layout := range updatedAtLayouts {
		if t, err := time.Parse(layout, e.ObjectAttributes.UpdatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
