package tracker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gitlab "github.com/xanzy/go-gitlab"
)

// GitLab files issues in a GitLab project. Issue.Project is ignored; the
// project ID fixed at construction wins. Priority and components become
// labels, matching the GitHub backend.
type GitLab struct {
	client    *gitlab.Client
	projectID string
}

// NewGitLab creates a GitLab tracker. baseURL is empty for gitlab.com.
func NewGitLab(token, baseURL, projectID string) (*GitLab, error) {
	var (
		client *gitlab.Client
		err    error
	)
	if baseURL != "" {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	} else {
		client, err = gitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}
	return &GitLab{client: client, projectID: projectID}, nil
}

// CreateIssue implements Tracker.
func (g *GitLab) CreateIssue(ctx context.Context, issue Issue) (*Created, error) {
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(issue.Summary),
		Description: gitlab.Ptr(issue.Description),
	}
	if labels := gitlabLabels(issue); len(labels) > 0 {
		opts.Labels = gitlab.Ptr(gitlab.LabelOptions(labels))
	}
	created, _, err := g.client.Issues.CreateIssue(g.projectID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("gitlab create issue: %w", err)
	}
	return &Created{
		Key: fmt.Sprintf("%s#%d", g.projectID, created.IID),
		URL: created.WebURL,
	}, nil
}

// UpdateIssue implements Tracker.
func (g *GitLab) UpdateIssue(ctx context.Context, key string, issue Issue) error {
	iid, err := gitlabIID(key)
	if err != nil {
		return err
	}
	opts := &gitlab.UpdateIssueOptions{
		Title:       gitlab.Ptr(issue.Summary),
		Description: gitlab.Ptr(issue.Description),
	}
	if labels := gitlabLabels(issue); len(labels) > 0 {
		opts.Labels = gitlab.Ptr(gitlab.LabelOptions(labels))
	}
	if _, _, err := g.client.Issues.UpdateIssue(g.projectID, iid, opts, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("gitlab update issue %s: %w", key, err)
	}
	return nil
}

// FindByContentHash implements HashSearcher by listing issues carrying
// the dedup label.
func (g *GitLab) FindByContentHash(ctx context.Context, hash string) (*Created, error) {
	opts := &gitlab.ListProjectIssuesOptions{
		Labels:      gitlab.Ptr(gitlab.LabelOptions{HashLabel(hash)}),
		ListOptions: gitlab.ListOptions{PerPage: 1},
	}
	issues, _, err := g.client.Issues.ListProjectIssues(g.projectID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("gitlab list issues: %w", err)
	}
	if len(issues) == 0 {
		return nil, nil
	}
	return &Created{
		Key: fmt.Sprintf("%s#%d", g.projectID, issues[0].IID),
		URL: issues[0].WebURL,
	}, nil
}

func gitlabLabels(issue Issue) []string {
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
	return labels
}

func gitlabIID(key string) (int, error) {
	idx := strings.LastIndex(key, "#")
	if idx < 0 {
		return 0, fmt.Errorf("malformed issue key %q", key)
	}
	iid, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed issue key %q: %w", key, err)
	}
	return iid, nil
}
