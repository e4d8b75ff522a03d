package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/slack-go/slack"

	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
)

// UserDirectory resolves GitLab usernames to Slack user ids against a cached
// workspace user list. The cache has no TTL; it is populated on first use and
// cleared only on membership change events, so correctness depends entirely
// on those invalidation signals arriving.
type UserDirectory struct {
	client  Client
	mapping map[string]string // GitLab username -> Slack username

	mu     sync.Mutex
	users  []slack.User
	loaded bool
}

// NewUserDirectory creates a user directory backed by the given client.
// The mapping translates GitLab usernames that differ from Slack handles.
func NewUserDirectory(client Client, mapping map[string]string) *UserDirectory {
	return &UserDirectory{
		client:  client,
		mapping: mapping,
	}
}

// ResolveUserID looks up the Slack user id for a GitLab username. The
// username is remapped first, then matched case-insensitively against each
// user's handle and display name. A miss is not an error.
func (d *UserDirectory) ResolveUserID(ctx context.Context, username string) (string, bool) {
	if mapped, ok := d.mapping[username]; ok {
		username = mapped
	}
	username = strings.ToLower(username)

	users, err := d.load(ctx)
	if err != nil {
		logging.Error("Failed to fetch Slack user list: %v", err)
		return "", false
	}

	for _, user := range users {
		if username == strings.ToLower(user.Name) || username == strings.ToLower(user.Profile.DisplayName) {
			return user.ID, true
		}
	}
	return "", false
}

// Invalidate clears the cached user list so the next lookup refetches it
func (d *UserDirectory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = nil
	d.loaded = false
}

func (d *UserDirectory) load(ctx context.Context) ([]slack.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return d.users, nil
	}

	users, err := d.client.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	d.users = users
	d.loaded = true
	return users, nil
}
