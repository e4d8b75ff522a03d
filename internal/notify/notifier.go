package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/redhat-data-and-ai/mr-notifier/internal/chat"
	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
	apperrors "github.com/redhat-data-and-ai/mr-notifier/internal/errors"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
)

// Notifier turns merge request webhook events into Slack thread activity.
// There is no cross-event locking: two events for the same MR processed
// concurrently can interleave, which is accepted for single-process
// deployment (the Slack message store is the only state).
type Notifier struct {
	cfg      *config.Config
	client   chat.Client
	history  *chat.HistoryCache
	mentions *Mentions
}

// New creates a notifier
func New(cfg *config.Config, client chat.Client, users *chat.UserDirectory, history *chat.HistoryCache) *Notifier {
	return &Notifier{
		cfg:      cfg,
		client:   client,
		history:  history,
		mentions: NewMentions(users),
	}
}

// HandleMergeRequest processes one webhook delivery for the given team
func (n *Notifier) HandleMergeRequest(ctx context.Context, event *gitlab.MergeRequestEvent, team string) error {
	if !event.IsMergeRequest() {
		return apperrors.NewValidationError(apperrors.ErrInvalidEvent,
			fmt.Sprintf("enable the MR webhook on project: %s", event.Project.WebURL))
	}

	if n.cfg.Features.ExcludeDrafts && gitlab.IsDraft(event.ObjectAttributes.Title) {
		return apperrors.NewValidationError(apperrors.ErrDraftSuppressed,
			"draft MR, no Slack update will be sent")
	}

	channelID, ok := n.cfg.ChannelID(team)
	if !ok {
		return apperrors.NewValidationError(apperrors.ErrUnknownTeam,
			fmt.Sprintf("no channel configured for team %q", team))
	}

	isReady := n.cfg.Features.NotifyOnReady && event.IsReadyTransition()

	if event.ObjectAttributes.Action == "open" || isReady {
		return n.postNewThread(ctx, event, channelID, isReady)
	}
	return n.updateThread(ctx, event, channelID)
}

func (n *Notifier) postNewThread(ctx context.Context, event *gitlab.MergeRequestEvent, channelID string, isReady bool) error {
	message := NewMRMessage(ctx, event, n.mentions, isReady)

	if _, err := n.client.PostMessage(ctx, channelID, message); err != nil {
		return apperrors.NewSlackError("chat.postMessage", err)
	}

	logging.MRInfo(event.ObjectAttributes.ID,
		"Posted new MR thread to the channel. Clearing channel history cache.",
		zap.String("channel", channelID))
	n.history.Invalidate(channelID)
	return nil
}

func (n *Notifier) updateThread(ctx context.Context, event *gitlab.MergeRequestEvent, channelID string) error {
	mrID := event.ObjectAttributes.ID

	history, err := n.history.Messages(ctx, channelID)
	if err != nil {
		return apperrors.NewSlackError("conversations.history", err)
	}

	start := FindThreadStart(mrID, history)
	if start == nil {
		return apperrors.NewValidationError(apperrors.ErrThreadNotFound,
			fmt.Sprintf("no thread found for MR %d", mrID))
	}

	thread, err := NewThread(start)
	if err != nil {
		return apperrors.NewValidationError(apperrors.ErrThreadNotFound, err.Error())
	}

	thread.Apply(ctx, event, n.mentions)

	// Announce the change in the thread. A no-op "update" action has nothing
	// to announce; every other action gets a reply even when nothing in the
	// snapshot moved.
	action := event.ObjectAttributes.Action
	if thread.UpdateType() != UpdateNone || action != "update" {
		phrase := actionPhrase(ctx, event, thread, n.mentions)
		reply := UpdateReply(event, phrase, thread.TS())
		if _, err := n.client.PostMessage(ctx, channelID, reply); err != nil {
			return apperrors.NewSlackError("chat.postMessage", err)
		}
	}

	if err := n.client.UpdateMessage(ctx, channelID, thread.TS(), EditedThreadMessage(thread)); err != nil {
		return apperrors.NewSlackError("chat.update", err)
	}

	logging.MRInfo(mrID, "Updated MR thread",
		zap.String("channel", channelID),
		zap.String("update_type", string(thread.UpdateType())),
		zap.String("action", action))
	return nil
}
