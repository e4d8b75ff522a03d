package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	for _, envVar := range []string{
		"SLACK_BOT_TOKEN", "SLACK_APP_TOKEN", "GITLAB_BASE_URL", "GITLAB_TOKEN",
		"GITLAB_WEBHOOK_TOKEN", "PORT", "LOG_LEVEL", "EXCLUDE_DRAFTS",
		"NOTIFY_WHEN_MR_READY", "MAPPINGS_PATH",
	} {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gitlab.com", cfg.GitLab.BaseURL)
	assert.Equal(t, "", cfg.GitLab.WebhookToken)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.True(t, cfg.Features.ExcludeDrafts)
	assert.True(t, cfg.Features.NotifyOnReady)
	assert.Empty(t, cfg.Mappings.TeamChannels)
	assert.False(t, cfg.HasWebhookToken())
	assert.False(t, cfg.HasAppToken())
	assert.Equal(t, "Disabled (INSECURE)", cfg.WebhookSecurityMode())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("GITLAB_BASE_URL", "https://gitlab.example.com")
	t.Setenv("GITLAB_WEBHOOK_TOKEN", "hook-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("EXCLUDE_DRAFTS", "false")
	t.Setenv("MAPPINGS_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "https://gitlab.example.com", cfg.GitLab.BaseURL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Features.ExcludeDrafts)
	assert.True(t, cfg.HasWebhookToken())
	assert.Equal(t, "Token verification enabled", cfg.WebhookSecurityMode())
}

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	content := `
team_channels:
  payments: C123
  platform: C456
usernames:
  john.doe: jdoe
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	mappings, err := LoadMappings(path)
	require.NoError(t, err)
	assert.Equal(t, "C123", mappings.TeamChannels["payments"])
	assert.Equal(t, "jdoe", mappings.Usernames["john.doe"])
}

func TestLoadMappings_MissingFileIsEmpty(t *testing.T) {
	mappings, err := LoadMappings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, mappings.TeamChannels)
	assert.NotNil(t, mappings.Usernames)
	assert.Empty(t, mappings.TeamChannels)
}

func TestLoadMappings_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("team_channels: ["), 0o600))

	_, err := LoadMappings(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Slack:  SlackConfig{BotToken: "xoxb-test"},
		GitLab: GitLabConfig{BaseURL: "https://gitlab.com"},
		Server: ServerConfig{Port: "3000"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Slack.BotToken = ""
	assert.Error(t, cfg.Validate())
}

func TestChannelID(t *testing.T) {
	cfg := &Config{Mappings: Mappings{TeamChannels: map[string]string{"payments": "C123"}}}

	id, ok := cfg.ChannelID("payments")
	assert.True(t, ok)
	assert.Equal(t, "C123", id)

	_, ok = cfg.ChannelID("unknown")
	assert.False(t, ok)
}
