package chat

import (
	"context"
	"errors"
	"time"

	"github.com/slack-go/slack"

	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
)

// Message is an outbound Slack message. ThreadTS, when set, anchors the
// message as a reply inside an existing thread.
type Message struct {
	Blocks   []slack.Block
	Metadata slack.SlackMetadata
	ThreadTS string
	Text     string
}

// Client is the surface of the Slack Web API the notifier depends on
type Client interface {
	PostMessage(ctx context.Context, channelID string, msg Message) (string, error)
	UpdateMessage(ctx context.Context, channelID, ts string, msg Message) error
	GetUsers(ctx context.Context) ([]slack.User, error)
	GetHistory(ctx context.Context, channelID string, limit int) ([]slack.Message, error)
}

// WebClient implements Client against the Slack Web API.
// Every call retries exactly once when Slack reports a rate limit.
type WebClient struct {
	api *slack.Client
}

// NewWebClient creates a Slack Web API client. The app token is optional and
// only required when the Socket Mode listener is used.
func NewWebClient(botToken, appToken string) *WebClient {
	opts := []slack.Option{}
	if appToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(appToken))
	}
	return &WebClient{api: slack.New(botToken, opts...)}
}

// API exposes the underlying slack-go client for the Socket Mode listener
func (c *WebClient) API() *slack.Client {
	return c.api
}

// PostMessage posts a message and returns its timestamp
func (c *WebClient) PostMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	var ts string
	err := withRateLimitRetry(ctx, func() error {
		var err error
		_, ts, err = c.api.PostMessageContext(ctx, channelID, msg.options()...)
		return err
	})
	return ts, err
}

// UpdateMessage edits a previously posted message in place
func (c *WebClient) UpdateMessage(ctx context.Context, channelID, ts string, msg Message) error {
	return withRateLimitRetry(ctx, func() error {
		_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, ts, msg.options()...)
		return err
	})
}

// GetUsers fetches the full workspace user list
func (c *WebClient) GetUsers(ctx context.Context) ([]slack.User, error) {
	var users []slack.User
	err := withRateLimitRetry(ctx, func() error {
		var err error
		users, err = c.api.GetUsersContext(ctx)
		return err
	})
	return users, err
}

// GetHistory fetches a channel's most recent messages with their metadata
func (c *WebClient) GetHistory(ctx context.Context, channelID string, limit int) ([]slack.Message, error) {
	var messages []slack.Message
	err := withRateLimitRetry(ctx, func() error {
		resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID:          channelID,
			Limit:              limit,
			IncludeAllMetadata: true,
		})
		if err != nil {
			return err
		}
		messages = resp.Messages
		return nil
	})
	return messages, err
}

func (m Message) options() []slack.MsgOption {
	opts := []slack.MsgOption{
		slack.MsgOptionText(m.Text, false),
		slack.MsgOptionBlocks(m.Blocks...),
		slack.MsgOptionMetadata(m.Metadata),
		slack.MsgOptionDisableLinkUnfurl(),
	}
	if m.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(m.ThreadTS))
	}
	return opts
}

// withRateLimitRetry runs fn and retries it a single time after the delay
// Slack indicates. Any other failure is returned as-is; the webhook sender
// has no retry logic, so repeated attempts would only duplicate messages.
func withRateLimitRetry(ctx context.Context, fn func() error) error {
	err := fn()

	var rateLimited *slack.RateLimitedError
	if !errors.As(err, &rateLimited) {
		return err
	}

	logging.Warn("Slack rate limit hit, retrying once after %v", rateLimited.RetryAfter)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateLimited.RetryAfter):
	}

	return fn()
}
