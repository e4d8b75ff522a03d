package gitlab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
)

// Client handles GitLab API operations for webhook management
type Client struct {
	config config.GitLabConfig
	http   *http.Client
}

// NewClient creates a new GitLab API client
func NewClient(cfg config.GitLabConfig) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// GroupProject is a project listed under a GitLab group
type GroupProject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProjectHook is a webhook registered on a GitLab project
type ProjectHook struct {
	ID                  int    `json:"id"`
	URL                 string `json:"url"`
	MergeRequestsEvents bool   `json:"merge_requests_events"`
	PushEvents          bool   `json:"push_events"`
}

// HookSettings is the webhook configuration sent on create and update
type HookSettings struct {
	URL                 string `json:"url"`
	Token               string `json:"token,omitempty"`
	MergeRequestsEvents bool   `json:"merge_requests_events"`
	PushEvents          bool   `json:"push_events"`
}

// ListGroupProjects fetches the non-archived projects of a group
func (c *Client) ListGroupProjects(group string) ([]GroupProject, error) {
	path := fmt.Sprintf("/groups/%s/projects?archived=false&per_page=100", url.PathEscape(group))

	var projects []GroupProject
	if err := c.do("GET", path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListProjectHooks fetches the webhooks registered on a project
func (c *Client) ListProjectHooks(projectID int) ([]ProjectHook, error) {
	var hooks []ProjectHook
	if err := c.do("GET", fmt.Sprintf("/projects/%d/hooks", projectID), nil, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// AddProjectHook registers a new webhook on a project
func (c *Client) AddProjectHook(projectID int, settings HookSettings) error {
	return c.do("POST", fmt.Sprintf("/projects/%d/hooks", projectID), &settings, nil)
}

// EditProjectHook updates an existing webhook on a project
func (c *Client) EditProjectHook(projectID, hookID int, settings HookSettings) error {
	return c.do("PUT", fmt.Sprintf("/projects/%d/hooks/%d", projectID, hookID), &settings, nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	apiURL := strings.TrimRight(c.config.BaseURL, "/") + "/api/v4" + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiURL, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PRIVATE-TOKEN", c.config.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitLab API error %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
