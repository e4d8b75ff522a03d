package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	users      []slack.User
	usersErr   error
	usersCalls int

	history      map[string][]slack.Message
	historyCalls int
}

func (f *fakeClient) PostMessage(_ context.Context, _ string, _ Message) (string, error) {
	return "1.0", nil
}

func (f *fakeClient) UpdateMessage(_ context.Context, _, _ string, _ Message) error {
	return nil
}

func (f *fakeClient) GetUsers(_ context.Context) ([]slack.User, error) {
	f.usersCalls++
	return f.users, f.usersErr
}

func (f *fakeClient) GetHistory(_ context.Context, channelID string, _ int) ([]slack.Message, error) {
	f.historyCalls++
	return f.history[channelID], nil
}

func workspaceUsers() []slack.User {
	return []slack.User{
		{ID: "U1", Name: "jdoe", Profile: slack.UserProfile{DisplayName: "John Doe"}},
		{ID: "U2", Name: "asmith", Profile: slack.UserProfile{DisplayName: "Anna"}},
	}
}

func TestResolveUserID_MatchesHandleCaseInsensitively(t *testing.T) {
	client := &fakeClient{users: workspaceUsers()}
	directory := NewUserDirectory(client, nil)

	id, ok := directory.ResolveUserID(context.Background(), "JDoe")
	require.True(t, ok)
	assert.Equal(t, "U1", id)
}

func TestResolveUserID_MatchesDisplayName(t *testing.T) {
	client := &fakeClient{users: workspaceUsers()}
	directory := NewUserDirectory(client, nil)

	id, ok := directory.ResolveUserID(context.Background(), "anna")
	require.True(t, ok)
	assert.Equal(t, "U2", id)
}

func TestResolveUserID_AppliesUsernameMapping(t *testing.T) {
	client := &fakeClient{users: workspaceUsers()}
	directory := NewUserDirectory(client, map[string]string{"john.doe": "jdoe"})

	id, ok := directory.ResolveUserID(context.Background(), "john.doe")
	require.True(t, ok)
	assert.Equal(t, "U1", id)
}

func TestResolveUserID_MissIsNotAnError(t *testing.T) {
	client := &fakeClient{users: workspaceUsers()}
	directory := NewUserDirectory(client, nil)

	_, ok := directory.ResolveUserID(context.Background(), "nobody")
	assert.False(t, ok)
}

func TestResolveUserID_FetchFailureDegradesToMiss(t *testing.T) {
	client := &fakeClient{usersErr: errors.New("ratelimited")}
	directory := NewUserDirectory(client, nil)

	_, ok := directory.ResolveUserID(context.Background(), "jdoe")
	assert.False(t, ok)
}

func TestUserDirectory_CachesUntilInvalidated(t *testing.T) {
	client := &fakeClient{users: workspaceUsers()}
	directory := NewUserDirectory(client, nil)

	directory.ResolveUserID(context.Background(), "jdoe")
	directory.ResolveUserID(context.Background(), "asmith")
	assert.Equal(t, 1, client.usersCalls)

	directory.Invalidate()
	directory.ResolveUserID(context.Background(), "jdoe")
	assert.Equal(t, 2, client.usersCalls)
}
