package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration
type Config struct {
	Slack    SlackConfig
	GitLab   GitLabConfig
	Server   ServerConfig
	Features FeatureConfig
	Mappings Mappings
}

// SlackConfig holds Slack API credentials
type SlackConfig struct {
	BotToken string `validate:"required"` // xoxb-... bot token
	AppToken string // xapp-... app-level token, needed for Socket Mode membership events
}

// GitLabConfig holds GitLab API and webhook configuration
type GitLabConfig struct {
	BaseURL      string `validate:"required,url"`
	Token        string // API token, only needed by the hooksync utility
	WebhookToken string // shared secret checked against X-Gitlab-Token; empty disables the check
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string `validate:"required"`
	LogLevel string
}

// FeatureConfig holds notification feature flags
type FeatureConfig struct {
	ExcludeDrafts bool // suppress notifications for draft MRs
	NotifyOnReady bool // post a fresh thread when a draft is marked ready
}

// Load loads configuration from environment variables and the mappings file
func Load() (*Config, error) {
	cfg := &Config{
		Slack: SlackConfig{
			BotToken: getEnv("SLACK_BOT_TOKEN", ""),
			AppToken: getEnv("SLACK_APP_TOKEN", ""),
		},
		GitLab: GitLabConfig{
			BaseURL:      getEnv("GITLAB_BASE_URL", "https://gitlab.com"),
			Token:        getEnv("GITLAB_TOKEN", ""),
			WebhookToken: getEnv("GITLAB_WEBHOOK_TOKEN", ""),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Features: FeatureConfig{
			ExcludeDrafts: getEnvBool("EXCLUDE_DRAFTS", true),
			NotifyOnReady: getEnvBool("NOTIFY_WHEN_MR_READY", true),
		},
	}

	mappings, err := LoadMappings(getEnv("MAPPINGS_PATH", "mappings.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Mappings = *mappings

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// HasWebhookToken returns true if a webhook shared secret is configured
func (c *Config) HasWebhookToken() bool {
	return c.GitLab.WebhookToken != ""
}

// HasAppToken returns true if a Slack app-level token is configured
func (c *Config) HasAppToken() bool {
	return c.Slack.AppToken != ""
}

// WebhookSecurityMode returns a description of the current webhook security mode
func (c *Config) WebhookSecurityMode() string {
	if !c.HasWebhookToken() {
		return "Disabled (INSECURE)"
	}
	return "Token verification enabled"
}

// ChannelID resolves a team name to its Slack channel id
func (c *Config) ChannelID(team string) (string, bool) {
	id, ok := c.Mappings.TeamChannels[team]
	return id, ok
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
