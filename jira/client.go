package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tfhttp "github.com/randalmurphal/ticketflow/http"
)

// Client talks to one Jira instance.
type Client struct {
	cfg  *Config
	http *tfhttp.Client
}

// NewClient creates a Jira client from a validated config.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := tfhttp.NewClient(tfhttp.ClientConfig{
		Client:        &http.Client{Timeout: cfg.Timeout},
		BaseURL:       strings.TrimSuffix(cfg.URL, "/"),
		ServiceName:   "jira",
		MaxRetries:    cfg.MaxRetries,
		BeforeRequest: cfg.applyAuth,
	})

	return &Client{cfg: cfg, http: httpClient}, nil
}

// CreateIssue files a new issue and returns its key. A string Description
// is converted to ADF when the instance speaks API v3.
func (c *Client) CreateIssue(ctx context.Context, fields IssueFields) (*CreatedIssue, error) {
	fields.Description = c.description(fields.Description)

	var created CreatedIssue
	if err := c.http.Post(ctx, c.path("issue"), CreateIssueRequest{Fields: fields}, &created); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &created, nil
}

// UpdateIssue overwrites the given fields on an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields IssueFields) error {
	fields.Description = c.description(fields.Description)

	if err := c.http.Put(ctx, c.path("issue/"+key), UpdateIssueRequest{Fields: fields}, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", key, ErrIssueNotFound)
		}
		return fmt.Errorf("update issue %s: %w", key, err)
	}
	return nil
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	var issue Issue
	if err := c.http.Get(ctx, c.path("issue/"+key), &issue); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrIssueNotFound)
		}
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}
	return &issue, nil
}

// SearchIssues runs a JQL query.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) (*SearchResult, error) {
	req := SearchRequest{
		JQL:        jql,
		MaxResults: maxResults,
		Fields:     []string{"summary", "labels", "status"},
	}
	var result SearchResult
	if err := c.http.Post(ctx, c.path("search"), req, &result); err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	return &result, nil
}

// SearchIterator pages through a JQL query lazily.
func (c *Client) SearchIterator(jql string, pageSize int) *tfhttp.PageIterator[Issue] {
	if pageSize <= 0 {
		pageSize = 50
	}
	return tfhttp.NewPageIterator(func(ctx context.Context, page int) ([]Issue, bool, error) {
		req := SearchRequest{
			JQL:        jql,
			StartAt:    page * pageSize,
			MaxResults: pageSize,
			Fields:     []string{"summary", "labels", "status"},
		}
		var result SearchResult
		if err := c.http.Post(ctx, c.path("search"), req, &result); err != nil {
			return nil, false, fmt.Errorf("search issues: %w", err)
		}
		hasMore := req.StartAt+len(result.Issues) < result.Total
		return result.Issues, hasMore, nil
	})
}

// BrowseURL returns the human-facing URL for an issue key.
func (c *Client) BrowseURL(key string) string {
	return strings.TrimSuffix(c.cfg.URL, "/") + "/browse/" + key
}

func (c *Client) path(endpoint string) string {
	version := "3"
	if c.cfg.Version() == APIVersionV2 {
		version = "2"
	}
	return fmt.Sprintf("/rest/api/%s/%s", version, endpoint)
}

// description normalizes the description field for the instance's API
// version. v3 requires ADF; v2 takes the string as-is.
func (c *Client) description(desc any) any {
	text, ok := desc.(string)
	if !ok {
		return desc
	}
	if text == "" {
		return nil
	}
	if c.cfg.Version() == APIVersionV2 {
		return text
	}
	return TextToADF(text)
}

func isNotFound(err error) bool {
	return errors.Is(err, tfhttp.ErrNotFound)
}
