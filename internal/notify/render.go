package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/redhat-data-and-ai/mr-notifier/internal/chat"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

// NewMRMessage renders the thread-start message for a freshly opened merge
// request, or for a draft that was just marked ready. The block layout is
// positional and shared with the classifier (see thread.go).
func NewMRMessage(ctx context.Context, event *gitlab.MergeRequestEvent, mentions *Mentions, isReady bool) chat.Message {
	attrs := &event.ObjectAttributes

	assignees := mentions.JoinUsers(ctx, event.Assignees)
	reviewers := mentions.JoinUsers(ctx, event.Reviewers)

	openText := "has created a new merge request:"
	if isReady {
		openText = "has marked merge request as ready:"
	}

	intro := fmt.Sprintf("%s %s <%s|!%d>: %s",
		mentions.Mention(ctx, event.User.Username), openText, attrs.URL, attrs.IID, attrs.Title)
	branch := fmt.Sprintf("`%s` → `%s`", attrs.SourceBranch, attrs.TargetBranch)

	fields := []*slack.TextBlockObject{
		markdown(fmt.Sprintf("*Project:*\n<%s|%s>", attrs.Target.WebURL, attrs.Target.Name)),
		markdown(statusField(statusForNewMR(assignees, reviewers))),
		markdown("*Last Update:*\n" + lastUpdateText(event)),
		markdown("*Assignees:*\n" + assignees),
		markdown("*Reviewers:*\n" + reviewers),
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(markdown(intro), nil, nil),
		slack.NewSectionBlock(markdown(branch), nil, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(nil, fields, nil),
	}

	return chat.Message{
		Blocks: blocks,
		Metadata: slack.SlackMetadata{
			EventType: eventTypeCreated,
			EventPayload: map[string]interface{}{
				payloadKeyMRID:         attrs.ID,
				payloadKeyTargetBranch: attrs.TargetBranch,
				payloadKeyAssignees:    assignees,
				payloadKeyReviewers:    reviewers,
			},
		},
	}
}

// UpdateReply renders the human-readable threaded reply describing an update
func UpdateReply(event *gitlab.MergeRequestEvent, phrase, threadTS string) chat.Message {
	text := fmt.Sprintf("%s has %s this merge request", capitalize(event.User.Username), phrase)

	return chat.Message{
		Blocks: []slack.Block{
			slack.NewSectionBlock(markdown(text), nil, nil),
		},
		Metadata: slack.SlackMetadata{
			EventType: eventTypeUpdated,
			EventPayload: map[string]interface{}{
				payloadKeyMRID: event.ObjectAttributes.ID,
			},
		},
		ThreadTS: threadTS,
	}
}

// EditedThreadMessage packages a mutated thread snapshot for chat.update
func EditedThreadMessage(thread *Thread) chat.Message {
	return chat.Message{
		Blocks:   thread.Blocks(),
		Metadata: thread.Metadata(),
	}
}

func lastUpdateText(event *gitlab.MergeRequestEvent) string {
	when, ok := event.UpdatedAtTime()
	if !ok {
		return event.ObjectAttributes.UpdatedAt
	}
	return when.Format(lastUpdateFormat)
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}
