package tracker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHub files issues in a GitHub repository. Issue.Project is ignored;
// the owner/repo pair fixed at construction is the project. Priority and
// components are carried as labels since GitHub issues have neither.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub creates a GitHub tracker for owner/repo.
func NewGitHub(ctx context.Context, token, owner, repo string) *GitHub {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GitHub{client: github.NewClient(tc), owner: owner, repo: repo}
}

// NewGitHubWithClient creates a GitHub tracker over an existing client.
// Useful for tests and GitHub Enterprise setups.
func NewGitHubWithClient(client *github.Client, owner, repo string) *GitHub {
	return &GitHub{client: client, owner: owner, repo: repo}
}

// CreateIssue implements Tracker.
func (g *GitHub) CreateIssue(ctx context.Context, issue Issue) (*Created, error) {
	req := &github.IssueRequest{
		Title:  github.String(issue.Summary),
		Body:   github.String(issue.Description),
		Labels: githubLabels(issue),
	}
	created, _, err := g.client.Issues.Create(ctx, g.owner, g.repo, req)
	if err != nil {
		return nil, fmt.Errorf("github create issue: %w", err)
	}
	return &Created{
		Key: fmt.Sprintf("%s/%s#%d", g.owner, g.repo, created.GetNumber()),
		URL: created.GetHTMLURL(),
	}, nil
}

// UpdateIssue implements Tracker. Key must be the "owner/repo#N" form
// returned by CreateIssue.
func (g *GitHub) UpdateIssue(ctx context.Context, key string, issue Issue) error {
	number, err := issueNumber(key)
	if err != nil {
		return err
	}
	req := &github.IssueRequest{
		Title:  github.String(issue.Summary),
		Body:   github.String(issue.Description),
		Labels: githubLabels(issue),
	}
	if _, _, err := g.client.Issues.Edit(ctx, g.owner, g.repo, number, req); err != nil {
		return fmt.Errorf("github update issue %s: %w", key, err)
	}
	return nil
}

// FindByContentHash implements HashSearcher by searching for the dedup
// label.
func (g *GitHub) FindByContentHash(ctx context.Context, hash string) (*Created, error) {
	query := fmt.Sprintf("repo:%s/%s is:issue label:%q", g.owner, g.repo, HashLabel(hash))
	result, _, err := g.client.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}
	if len(result.Issues) == 0 {
		return nil, nil
	}
	found := result.Issues[0]
	return &Created{
		Key: fmt.Sprintf("%s/%s#%d", g.owner, g.repo, found.GetNumber()),
		URL: found.GetHTMLURL(),
	}, nil
}

func githubLabels(issue Issue) *[]string {
	labels := append([]string{}, issue.Labels...)
	if issue.Type != "" {
		labels = append(labels, "type:"+strings.ToLower(issue.Type))
	}
	if issue.Priority != "" {
		labels = append(labels, "priority:"+strings.ToLower(issue.Priority))
	}
	for _, c := range issue.Components {
		labels = append(labels, "component:"+c)
	}
	return &labels
}

func issueNumber(key string) (int, error) {
	idx := strings.LastIndex(key, "#")
	if idx < 0 {
		return 0, fmt.Errorf("malformed issue key %q", key)
	}
	number, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed issue key %q: %w", key, err)
	}
	return number, nil
}
