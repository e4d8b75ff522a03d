package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mappings holds the team and username lookup tables loaded from YAML.
// Team names arrive on the webhook query string; channel ids are Slack ids.
type Mappings struct {
	TeamChannels map[string]string `yaml:"team_channels"`
	Usernames    map[string]string `yaml:"usernames"`
}

// LoadMappings loads team-channel and username mappings from a YAML file.
// A missing file is not an error: the service starts with empty mappings
// and every team lookup fails until the file is provided.
func LoadMappings(path string) (*Mappings, error) {
	mappings := &Mappings{
		TeamChannels: map[string]string{},
		Usernames:    map[string]string{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return mappings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, mappings); err != nil {
		return nil, fmt.Errorf("failed to parse mappings YAML %s: %w", path, err)
	}

	if mappings.TeamChannels == nil {
		mappings.TeamChannels = map[string]string{}
	}
	if mappings.Usernames == nil {
		mappings.Usernames = map[string]string{}
	}

	return mappings, nil
}
