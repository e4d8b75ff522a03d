package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

// UpdateType classifies what changed in a thread on an update event
type UpdateType string

const (
	UpdateNone           UpdateType = ""
	UpdateTargetChange   UpdateType = "target_change"
	UpdateNewCommit      UpdateType = "new_commit"
	UpdateAssigneeChange UpdateType = "assignee_change"
	UpdateReviewerChange UpdateType = "reviewer_change"
	UpdateNoAssignees    UpdateType = "no_assignees"
	UpdateNoReviewers    UpdateType = "no_reviewers"
)

// Block and field positions inside a thread-start message. The renderer
// writes this layout and the classifier edits it by offset; messages already
// sitting in channel history were posted with it, so it must not change.
const (
	branchBlockIndex = 1
	fieldsBlockIndex = 3

	statusFieldIndex     = 1
	lastUpdateFieldIndex = 2
	assigneesFieldIndex  = 3
	reviewersFieldIndex  = 4

	minThreadBlocks = 4
	minThreadFields = 5
)

const lastUpdateFormat = "2 Jan 15:04"

// Thread is the working copy of a located thread-start message. Mutations go
// straight into the underlying slack.Message, which is shared with the
// history cache: later events in this process see the updated snapshot.
type Thread struct {
	msg    *slack.Message
	branch *slack.SectionBlock
	fields []*slack.TextBlockObject

	updateType UpdateType

	targetBranch string
	assignees    string
	reviewers    string
	oldAssignees string
	oldReviewers string
}

// NewThread wraps a thread-start message located in channel history.
// It fails when the message does not carry the expected block layout.
func NewThread(msg *slack.Message) (*Thread, error) {
	blocks := msg.Blocks.BlockSet
	if len(blocks) < minThreadBlocks {
		return nil, fmt.Errorf("thread message has %d blocks, want at least %d", len(blocks), minThreadBlocks)
	}

	branch, ok := blocks[branchBlockIndex].(*slack.SectionBlock)
	if !ok {
		return nil, fmt.Errorf("thread block %d is not a section", branchBlockIndex)
	}
	fieldsBlock, ok := blocks[fieldsBlockIndex].(*slack.SectionBlock)
	if !ok {
		return nil, fmt.Errorf("thread block %d is not a section", fieldsBlockIndex)
	}
	if len(fieldsBlock.Fields) < minThreadFields {
		return nil, fmt.Errorf("thread fields block has %d fields, want %d", len(fieldsBlock.Fields), minThreadFields)
	}

	if msg.Metadata.EventPayload == nil {
		msg.Metadata.EventPayload = map[string]interface{}{}
	}

	assignees := payloadString(msg.Metadata.EventPayload, payloadKeyAssignees)
	reviewers := payloadString(msg.Metadata.EventPayload, payloadKeyReviewers)

	return &Thread{
		msg:          msg,
		branch:       branch,
		fields:       fieldsBlock.Fields,
		targetBranch: payloadString(msg.Metadata.EventPayload, payloadKeyTargetBranch),
		assignees:    assignees,
		reviewers:    reviewers,
		oldAssignees: assignees,
		oldReviewers: reviewers,
	}, nil
}

// TS returns the thread anchor timestamp
func (t *Thread) TS() string {
	return t.msg.Timestamp
}

// Blocks returns the (possibly mutated) message blocks
func (t *Thread) Blocks() []slack.Block {
	return t.msg.Blocks.BlockSet
}

// Metadata returns the (possibly mutated) message metadata
func (t *Thread) Metadata() slack.SlackMetadata {
	return t.msg.Metadata
}

// UpdateType returns the classification decided by Apply
func (t *Thread) UpdateType() UpdateType {
	return t.updateType
}

// Assignees returns the current assignees mention string
func (t *Thread) Assignees() string {
	return t.assignees
}

// Reviewers returns the current reviewers mention string
func (t *Thread) Reviewers() string {
	return t.reviewers
}

// OldAssignees returns the assignees mention string before Apply
func (t *Thread) OldAssignees() string {
	return t.oldAssignees
}

// OldReviewers returns the reviewers mention string before Apply
func (t *Thread) OldReviewers() string {
	return t.oldReviewers
}

// Apply classifies the incoming event against the stored snapshot and
// mutates the thread message to reflect it.
//
// Classification is a strict priority cascade: target change beats a new
// commit, which beats assignee changes, which beat reviewer changes. The
// first matching rule wins and the rest are skipped for this event; the
// order is observable in the notification text, so it must stay fixed.
func (t *Thread) Apply(ctx context.Context, event *gitlab.MergeRequestEvent, mentions *Mentions) {
	newAssignees := t.assignees
	newReviewers := t.reviewers
	if event.Changes != nil {
		if event.Changes.Assignees != nil {
			newAssignees = mentions.JoinUsers(ctx, event.Changes.Assignees.Current)
		} else if event.Changes.Reviewers != nil {
			newReviewers = mentions.JoinUsers(ctx, event.Changes.Reviewers.Current)
		}
	}

	attrs := &event.ObjectAttributes
	switch {
	case t.targetBranch != attrs.TargetBranch:
		t.updateType = UpdateTargetChange
		t.setTargetBranch(attrs.SourceBranch, attrs.TargetBranch)
	case event.HasNewCommit():
		t.updateType = UpdateNewCommit
	case t.assignees != newAssignees:
		t.setAssignees(newAssignees)
		if newAssignees != noUsers {
			t.updateType = UpdateAssigneeChange
		} else {
			t.updateType = UpdateNoAssignees
		}
	case t.reviewers != newReviewers:
		t.setReviewers(newReviewers)
		if newReviewers != noUsers {
			t.updateType = UpdateReviewerChange
		} else {
			t.updateType = UpdateNoReviewers
		}
	}

	// New commits and retargets never move the status badge
	if t.updateType != UpdateNewCommit && t.updateType != UpdateTargetChange {
		t.applyStatus(event)
	}
	t.setLastUpdate(event)
}

func (t *Thread) applyStatus(event *gitlab.MergeRequestEvent) {
	var status string
	var ok bool

	switch {
	case event.ObjectAttributes.Action != "update":
		status, ok = statusForAction(event.ObjectAttributes.Action)
	case t.updateType == UpdateAssigneeChange || t.updateType == UpdateReviewerChange:
		status, ok = statusForAssignment(t.updateType, t.reviewers)
	case t.updateType == UpdateNoAssignees || t.updateType == UpdateNoReviewers:
		status, ok = statusAfterVacancy(t.fields[statusFieldIndex].Text, t.assignees, t.reviewers, t.updateType)
	}

	if ok {
		t.fields[statusFieldIndex].Text = statusField(status)
	}
}

func (t *Thread) setTargetBranch(source, target string) {
	t.targetBranch = target
	t.msg.Metadata.EventPayload[payloadKeyTargetBranch] = target
	t.branch.Text.Text = fmt.Sprintf("`%s` → `%s`", source, target)
}

func (t *Thread) setAssignees(assignees string) {
	t.assignees = assignees
	t.msg.Metadata.EventPayload[payloadKeyAssignees] = assignees
	t.fields[assigneesFieldIndex].Text = "*Assignees:*\n" + assignees
}

func (t *Thread) setReviewers(reviewers string) {
	t.reviewers = reviewers
	t.msg.Metadata.EventPayload[payloadKeyReviewers] = reviewers
	t.fields[reviewersFieldIndex].Text = "*Reviewers:*\n" + reviewers
}

func (t *Thread) setLastUpdate(event *gitlab.MergeRequestEvent) {
	when, ok := event.UpdatedAtTime()
	if !ok {
		return
	}
	t.fields[lastUpdateFieldIndex].Text = "*Last Update:*\n" + when.Format(lastUpdateFormat)
}
