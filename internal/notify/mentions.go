package notify

import (
	"context"
	"strings"

	"github.com/redhat-data-and-ai/mr-notifier/internal/chat"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

// Mentions renders GitLab users as Slack mention strings
type Mentions struct {
	users *chat.UserDirectory
}

// NewMentions creates a mention renderer backed by the user directory
func NewMentions(users *chat.UserDirectory) *Mentions {
	return &Mentions{users: users}
}

// Mention renders one GitLab username as a Slack mention. An unresolvable
// username degrades to plain "@username" text rather than failing the
// notification.
func (m *Mentions) Mention(ctx context.Context, username string) string {
	if id, ok := m.users.ResolveUserID(ctx, username); ok {
		return "<@" + id + ">"
	}
	return "@" + username
}

// JoinUsers renders a GitLab user list as a comma-joined mention string,
// or the None sentinel for an empty list.
func (m *Mentions) JoinUsers(ctx context.Context, users []gitlab.User) string {
	if len(users) == 0 {
		return noUsers
	}
	mentions := make([]string, 0, len(users))
	for _, user := range users {
		mentions = append(mentions, m.Mention(ctx, user.Username))
	}
	return strings.Join(mentions, ",")
}
