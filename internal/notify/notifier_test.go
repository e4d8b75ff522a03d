package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/mr-notifier/internal/chat"
	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
	apperrors "github.com/redhat-data-and-ai/mr-notifier/internal/errors"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

// fakeChat records outbound Slack traffic for assertions
type fakeChat struct {
	users   []slack.User
	history map[string][]slack.Message

	posted  []postedMessage
	updated []updatedMessage

	postErr      error
	historyCalls int
	usersCalls   int
}

type postedMessage struct {
	channel string
	msg     chat.Message
}

type updatedMessage struct {
	channel string
	ts      string
	msg     chat.Message
}

func (f *fakeChat) PostMessage(_ context.Context, channelID string, msg chat.Message) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, postedMessage{channel: channelID, msg: msg})
	return "100.200", nil
}

func (f *fakeChat) UpdateMessage(_ context.Context, channelID, ts string, msg chat.Message) error {
	f.updated = append(f.updated, updatedMessage{channel: channelID, ts: ts, msg: msg})
	return nil
}

func (f *fakeChat) GetUsers(_ context.Context) ([]slack.User, error) {
	f.usersCalls++
	return f.users, nil
}

func (f *fakeChat) GetHistory(_ context.Context, channelID string, _ int) ([]slack.Message, error) {
	f.historyCalls++
	return f.history[channelID], nil
}

func testUsers() []slack.User {
	return []slack.User{
		{ID: "U123", Name: "jdoe", Profile: slack.UserProfile{DisplayName: "John Doe"}},
		{ID: "UALICE", Name: "alice", Profile: slack.UserProfile{DisplayName: "Alice"}},
		{ID: "UBOB", Name: "bob", Profile: slack.UserProfile{DisplayName: "Bob"}},
	}
}

func newTestChat() *fakeChat {
	return &fakeChat{
		users:   testUsers(),
		history: map[string][]slack.Message{},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Features: config.FeatureConfig{
			ExcludeDrafts: true,
			NotifyOnReady: true,
		},
		Mappings: config.Mappings{
			TeamChannels: map[string]string{"payments": "C123"},
			Usernames:    map[string]string{},
		},
	}
}

func newTestNotifier(client *fakeChat) *Notifier {
	cfg := testConfig()
	users := chat.NewUserDirectory(client, cfg.Mappings.Usernames)
	return New(cfg, client, users, chat.NewHistoryCache(client))
}

func testMentions(client *fakeChat) *Mentions {
	return NewMentions(chat.NewUserDirectory(client, map[string]string{}))
}

func testEvent(action string) *gitlab.MergeRequestEvent {
	return &gitlab.MergeRequestEvent{
		ObjectKind: "merge_request",
		User:       gitlab.User{Name: "John Doe", Username: "jdoe"},
		Project:    gitlab.Project{ID: 1, Name: "billing", WebURL: "https://git.example.com/payments/billing"},
		ObjectAttributes: gitlab.ObjectAttributes{
			ID:           42,
			IID:          7,
			Title:        "Add invoice rounding",
			Action:       action,
			SourceBranch: "feature/rounding",
			TargetBranch: "main",
			URL:          "https://git.example.com/payments/billing/-/merge_requests/7",
			UpdatedAt:    "2024-03-05 14:30:00 UTC",
			LastCommit: gitlab.Commit{
				ID:  "abcdef1234567890",
				URL: "https://git.example.com/payments/billing/-/commit/abcdef1234567890",
			},
			Target: gitlab.Project{Name: "billing", WebURL: "https://git.example.com/payments/billing"},
		},
	}
}

// threadStartMessage renders a thread-start message the same way the bot
// posts it, so classifier tests exercise the real positional layout.
func threadStartMessage(t *testing.T, client *fakeChat, event *gitlab.MergeRequestEvent) slack.Message {
	t.Helper()
	rendered := NewMRMessage(context.Background(), event, testMentions(client), false)
	return slack.Message{Msg: slack.Msg{
		Timestamp: "111.222",
		Metadata:  rendered.Metadata,
		Blocks:    slack.Blocks{BlockSet: rendered.Blocks},
	}}
}

func TestHandleMergeRequest_RejectsNonMREvents(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	event := testEvent("open")
	event.ObjectKind = "push"

	err := notifier.HandleMergeRequest(context.Background(), event, "payments")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, client.posted)
	assert.Zero(t, client.historyCalls)
	assert.Zero(t, client.usersCalls)
}

func TestHandleMergeRequest_SuppressesDrafts(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	event := testEvent("update")
	event.ObjectAttributes.Title = "Draft: Add invoice rounding"

	err := notifier.HandleMergeRequest(context.Background(), event, "payments")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, client.posted)
}

func TestHandleMergeRequest_RejectsUnknownTeam(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("open"), "nosuchteam")

	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnknownTeam, appErr.Code)
}

func TestHandleMergeRequest_OpenPostsNewThread(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("open"), "payments")

	require.NoError(t, err)
	require.Len(t, client.posted, 1)
	assert.Equal(t, "C123", client.posted[0].channel)

	msg := client.posted[0].msg
	assert.Equal(t, "mr_created", msg.Metadata.EventType)
	assert.Equal(t, 42, msg.Metadata.EventPayload["mr_id"])
	assert.Equal(t, "None", msg.Metadata.EventPayload["assignees"])
	assert.Equal(t, "None", msg.Metadata.EventPayload["reviewers"])

	fields := msg.Blocks[fieldsBlockIndex].(*slack.SectionBlock).Fields
	assert.Equal(t, statusField(StatusNew), fields[statusFieldIndex].Text)
}

func TestHandleMergeRequest_ReadyTransitionPostsNewThread(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	event := testEvent("update")
	event.Changes = &gitlab.Changes{
		Title: &gitlab.StringChange{
			Previous: "Draft: Add invoice rounding",
			Current:  "Add invoice rounding",
		},
	}

	err := notifier.HandleMergeRequest(context.Background(), event, "payments")

	require.NoError(t, err)
	require.Len(t, client.posted, 1)

	intro := client.posted[0].msg.Blocks[0].(*slack.SectionBlock).Text.Text
	assert.Contains(t, intro, "has marked merge request as ready:")
	assert.Equal(t, "mr_created", client.posted[0].msg.Metadata.EventType)
}

func TestHandleMergeRequest_UpdateWithoutThreadFails(t *testing.T) {
	client := newTestChat()
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("update"), "payments")

	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrThreadNotFound, appErr.Code)
	assert.Empty(t, client.posted)
	assert.Empty(t, client.updated)
}

func TestHandleMergeRequest_NewCommitUpdatesThread(t *testing.T) {
	client := newTestChat()
	client.history["C123"] = []slack.Message{threadStartMessage(t, client, testEvent("open"))}
	notifier := newTestNotifier(client)

	event := testEvent("update")
	event.ObjectAttributes.OldRev = "0123456789abcdef"
	event.ObjectAttributes.UpdatedAt = "2024-03-06 09:15:00 UTC"

	err := notifier.HandleMergeRequest(context.Background(), event, "payments")
	require.NoError(t, err)

	// Reply announces the commit with a truncated id
	require.Len(t, client.posted, 1)
	reply := client.posted[0].msg
	assert.Equal(t, "111.222", reply.ThreadTS)
	replyText := reply.Blocks[0].(*slack.SectionBlock).Text.Text
	assert.Contains(t, replyText, "Jdoe has added a new commit")
	assert.Contains(t, replyText, "|abcdef12>")

	// Thread message edited in place: timestamp moved, status untouched
	require.Len(t, client.updated, 1)
	assert.Equal(t, "111.222", client.updated[0].ts)
	fields := client.updated[0].msg.Blocks[fieldsBlockIndex].(*slack.SectionBlock).Fields
	assert.Equal(t, "*Last Update:*\n6 Mar 09:15", fields[lastUpdateFieldIndex].Text)
	assert.Equal(t, statusField(StatusNew), fields[statusFieldIndex].Text)
}

func TestHandleMergeRequest_PlainUpdateWithNoChangeSkipsReply(t *testing.T) {
	client := newTestChat()
	client.history["C123"] = []slack.Message{threadStartMessage(t, client, testEvent("open"))}
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("update"), "payments")
	require.NoError(t, err)

	// Nothing to announce, but the in-place edit still happens
	assert.Empty(t, client.posted)
	require.Len(t, client.updated, 1)
}

func TestHandleMergeRequest_MergeAlwaysGetsReply(t *testing.T) {
	client := newTestChat()
	client.history["C123"] = []slack.Message{threadStartMessage(t, client, testEvent("open"))}
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("merge"), "payments")
	require.NoError(t, err)

	require.Len(t, client.posted, 1)
	replyText := client.posted[0].msg.Blocks[0].(*slack.SectionBlock).Text.Text
	assert.Equal(t, "Jdoe has merged this merge request", replyText)

	require.Len(t, client.updated, 1)
	fields := client.updated[0].msg.Blocks[fieldsBlockIndex].(*slack.SectionBlock).Fields
	assert.Equal(t, statusField(StatusMerged), fields[statusFieldIndex].Text)
}

func TestHandleMergeRequest_SlackFailureIsNotValidation(t *testing.T) {
	client := newTestChat()
	client.postErr = errors.New("channel_not_found")
	notifier := newTestNotifier(client)

	err := notifier.HandleMergeRequest(context.Background(), testEvent("open"), "payments")

	require.Error(t, err)
	assert.False(t, apperrors.IsValidation(err))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSlackAPIFailed, appErr.Code)
}
